package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/talentops/onboard/internal/clock"
	"github.com/talentops/onboard/service/messaging"
	qmem "github.com/talentops/onboard/service/messaging/memory"
)

// Service wraps a transition-event queue with a publisher and an optional
// consumer loop.
type Service struct {
	queue  messaging.Queue[Event]
	logger *zap.Logger
}

// Option customises the event service.
type Option func(*Service)

// WithQueue overrides the default in-memory queue.
func WithQueue(queue messaging.Queue[Event]) Option {
	return func(s *Service) { s.queue = queue }
}

// WithLogger sets the logger used by the consumer loop.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates an event service with an in-memory queue by default.
func New(options ...Option) *Service {
	ret := &Service{
		queue:  qmem.NewQueue[Event](qmem.DefaultConfig()),
		logger: zap.NewNop(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Publish enqueues a transition event, stamping it with the current time.
// Failures are logged, never propagated - observers are advisory.
func (s *Service) Publish(ctx context.Context, anEvent *Event) {
	if anEvent.CreatedAt.IsZero() {
		anEvent.CreatedAt = clock.Now()
	}
	if err := s.queue.Publish(ctx, anEvent); err != nil {
		s.logger.Warn("failed to publish transition event",
			zap.String("topic", anEvent.Topic),
			zap.String("processId", anEvent.ProcessID),
			zap.Error(err))
	}
}

// Queue exposes the underlying queue for custom consumers.
func (s *Service) Queue() messaging.Queue[Event] { return s.queue }

// Listen consumes events until ctx is cancelled, invoking handler for each.
// A handler error negatively acknowledges the message, which requeues it up
// to the retry limit and then parks it on the dead letter list. Listen runs
// on the caller's goroutine; start it with `go svc.Listen(...)`.
func (s *Service) Listen(ctx context.Context, handler func(*Event) error) {
	for {
		msg, err := s.queue.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("failed to consume transition event", zap.Error(err))
			continue
		}
		if msg == nil {
			continue
		}
		if err := handler(msg.T()); err != nil {
			s.logger.Warn("event handler failed",
				zap.String("topic", msg.T().Topic),
				zap.String("processId", msg.T().ProcessID),
				zap.Error(err))
			_ = msg.Nack(err)
			continue
		}
		_ = msg.Ack()
	}
}
