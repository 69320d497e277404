// Package engine implements the activation engine: the single transition
// primitive that advances an onboarding process through its step chain,
// suspends it at wait-for-callback steps and tracks per-step failure
// without corrupting overall process state.
package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/talentops/onboard/internal/idgen"
	"github.com/talentops/onboard/metrics"
	"github.com/talentops/onboard/model"
	"github.com/talentops/onboard/registry"
	"github.com/talentops/onboard/service/dao"
	"github.com/talentops/onboard/service/event"
	"github.com/talentops/onboard/tracing"
)

// Service owns all writes of process status and position. Transitions for a
// single process id are serialised through a per-id lock; different
// processes proceed in parallel.
type Service struct {
	registry  *registry.Registry
	processes dao.Service[string, model.Process]
	events    *event.Service
	metrics   *metrics.Metrics
	logger    *zap.Logger
	locks     *keyedMutex
}

// Option customises the engine.
type Option func(*Service)

// WithLogger sets the structured logger; defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithEvents attaches a transition-event publisher.
func WithEvents(events *event.Service) Option {
	return func(s *Service) { s.events = events }
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates an activation engine over the supplied step registry and
// process store.
func New(reg *registry.Registry, processes dao.Service[string, model.Process], options ...Option) (*Service, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if processes == nil {
		return nil, fmt.Errorf("process store is required")
	}
	s := &Service{
		registry:  reg,
		processes: processes,
		logger:    zap.NewNop(),
		locks:     newKeyedMutex(),
	}
	for _, option := range options {
		option(s)
	}
	if s.events == nil {
		s.events = event.New()
	}
	return s, nil
}

// Start validates the intake fields, creates a process in pending status
// positioned at the first step, and immediately activates that step.
func (s *Service) Start(ctx context.Context, intake model.Intake, actor model.Actor) (proc *model.Process, err error) {
	ctx, span := tracing.StartSpan(ctx, "engine.Start", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	if err = intake.Validate(); err != nil {
		return nil, err
	}
	first := s.registry.First()
	if first.RequiredCapability != "" && !actor.HasCapability(first.RequiredCapability) {
		return nil, &AuthorizationError{Actor: actor.ID, Capability: first.RequiredCapability}
	}

	proc = model.NewProcess(idgen.New(), intake, first.Name)
	span.WithAttributes(map[string]string{"process.id": proc.ID})

	if err = s.processes.Save(ctx, proc); err != nil {
		return nil, fmt.Errorf("failed to save process: %w", err)
	}
	s.metrics.ProcessStarted()
	s.logger.Info("process started",
		zap.String("processId", proc.ID),
		zap.String("actor", actor.ID))

	return s.Activate(ctx, proc.ID, first.Name, actor, nil)
}

// Activate executes stepName for the given process and applies the
// resulting transition. It is the single transition primitive: manual
// resumes, operator retries and validated callback resumption all pass
// through here. On success for non-terminal steps the engine chains
// directly into the successor without re-checking authorization, stopping
// once it reaches a human-input step or a wait-for-callback step has been
// entered and suspended.
func (s *Service) Activate(ctx context.Context, processID, stepName string, actor model.Actor, fields map[string]string) (proc *model.Process, err error) {
	ctx, span := tracing.StartSpan(ctx, "engine.Activate "+stepName, "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"process.id": processID, "step": stepName})

	def, err := s.registry.Lookup(stepName)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(processID)
	defer unlock()

	proc, err = s.processes.Load(ctx, processID)
	if err != nil {
		return nil, err
	}
	proc, err = s.activate(ctx, proc, def, actor, fields)
	if err != nil {
		return nil, err
	}
	// Snapshot so callers never observe later transitions mid-serialisation.
	return proc.Clone(), nil
}

// Resume re-activates a suspended wait-for-callback step on behalf of a
// validated external event. The record function validates the event against
// the loaded state and applies its mutation; it runs under the same
// per-process lock as the transition itself, so no concurrent Cancel or
// Activate can commit between the load and the save. An error from record
// aborts before anything is written.
func (s *Service) Resume(ctx context.Context, processID, stepName string, record func(*model.Process) error) (proc *model.Process, err error) {
	ctx, span := tracing.StartSpan(ctx, "engine.Resume "+stepName, "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"process.id": processID, "step": stepName})

	def, err := s.registry.Lookup(stepName)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(processID)
	defer unlock()

	proc, err = s.processes.Load(ctx, processID)
	if err != nil {
		return nil, err
	}
	if err = record(proc); err != nil {
		return nil, err
	}
	// The recorded event survives even if the subsequent transition is
	// rejected as a duplicate.
	if err = s.processes.Save(ctx, proc); err != nil {
		return nil, fmt.Errorf("failed to save process %s: %w", processID, err)
	}
	proc, err = s.activate(ctx, proc, def, model.System, nil)
	if err != nil {
		return nil, err
	}
	return proc.Clone(), nil
}

// activate runs the step chain while holding the per-process lock. Chained
// successors run with the system actor so capability checks apply only to
// the externally requested step.
func (s *Service) activate(ctx context.Context, proc *model.Process, def *registry.Definition, actor model.Actor, fields map[string]string) (*model.Process, error) {
	for {
		// Authorization gate, mandatory before any side effect.
		if def.RequiredCapability != "" && !actor.HasCapability(def.RequiredCapability) {
			s.metrics.Activation(def.Name, metrics.OutcomeRejected)
			return nil, &AuthorizationError{Actor: actor.ID, Capability: def.RequiredCapability}
		}

		// Transition guard: only the step the process is positioned at may
		// run, and never after cancellation.
		if proc.GetStatus() == model.StatusCancelled || proc.GetCurrentStep() != def.Name {
			s.metrics.Activation(def.Name, metrics.OutcomeRejected)
			return nil, &InvalidTransitionError{
				ProcessID: proc.ID,
				Requested: def.Name,
				Current:   proc.GetCurrentStep(),
			}
		}

		// Execute the step action: automatic steps call the gateway,
		// human-input steps persist the supplied field updates.
		if def.Action != nil {
			if err := def.Action(ctx, proc, fields); err != nil {
				// Rejected input is the caller's error, not a step failure:
				// nothing is recorded and nothing persists.
				var validation *model.ValidationError
				if errors.As(err, &validation) {
					s.metrics.Activation(def.Name, metrics.OutcomeRejected)
					return nil, err
				}
				return nil, s.failStep(ctx, proc, def, err)
			}
		}

		if proc.GetStatus() == model.StatusError {
			proc.ClearError()
		}

		// A wait-for-callback step whose awaited event has not arrived
		// suspends: status moves to the waiting label and the position stays
		// on this exact step until an external callback re-activates it.
		if def.Kind == registry.KindWaitForCallback && !def.Ready(proc) {
			proc.SetStatus(def.Waiting)
			if err := s.persist(ctx, proc, def); err != nil {
				return nil, err
			}
			s.metrics.Activation(def.Name, metrics.OutcomeSuspended)
			s.publish(ctx, event.TopicProcessSuspended, proc, def.Name, "")
			s.logger.Info("process suspended",
				zap.String("processId", proc.ID),
				zap.String("step", def.Name),
				zap.String("status", string(def.Waiting)))
			return proc, nil
		}

		// Terminal step completed.
		if def.Next == "" {
			proc.Advance(model.StepCompleted, model.StatusCompleted)
			if err := s.persist(ctx, proc, def); err != nil {
				return nil, err
			}
			s.metrics.Activation(def.Name, metrics.OutcomeCompleted)
			s.metrics.ProcessFinished(true)
			s.publish(ctx, event.TopicProcessCompleted, proc, def.Name, "")
			s.logger.Info("process completed", zap.String("processId", proc.ID))
			return proc, nil
		}

		next, err := s.registry.Lookup(def.Next)
		if err != nil {
			return nil, err
		}
		proc.Advance(next.Name, def.Completed)
		if err := s.persist(ctx, proc, def); err != nil {
			return nil, err
		}
		s.metrics.Activation(def.Name, metrics.OutcomeCompleted)
		s.publish(ctx, event.TopicStepCompleted, proc, def.Name, "")
		s.publish(ctx, event.TopicStepEntered, proc, next.Name, "")

		// Human-input steps are never chained into: the process parks on
		// them until an authorized actor activates them explicitly.
		if next.Kind == registry.KindHumanInput {
			s.logger.Info("process awaiting human input",
				zap.String("processId", proc.ID),
				zap.String("step", next.Name))
			return proc, nil
		}

		// Auto-chain into the successor with no further authorization
		// re-check; the loop's wait-for-callback branch stops the chain
		// after that step has been entered.
		def, actor, fields = next, model.System, nil
	}
}

// failStep records the failure, preserving the step position for an
// idempotent operator retry, and surfaces a StepExecutionError.
func (s *Service) failStep(ctx context.Context, proc *model.Process, def *registry.Definition, cause error) error {
	proc.RecordError(cause)
	if err := s.processes.Save(ctx, proc); err != nil {
		// The external call may have succeeded while the failure record did
		// not persist; flag for operator reconciliation.
		s.logger.Error("failed to persist error state",
			zap.String("processId", proc.ID),
			zap.String("step", def.Name),
			zap.NamedError("stepError", cause),
			zap.Error(err))
	}
	s.metrics.Activation(def.Name, metrics.OutcomeFailed)
	s.publish(ctx, event.TopicStepFailed, proc, def.Name, cause.Error())
	s.logger.Warn("step execution failed",
		zap.String("processId", proc.ID),
		zap.String("step", def.Name),
		zap.Error(cause))
	return &StepExecutionError{Step: def.Name, Err: cause}
}

// persist saves the process; the correlation id recorded by the step action
// and the status/position update reach storage in the same write, which is
// what keeps external side effects at-most-once per step attempt.
func (s *Service) persist(ctx context.Context, proc *model.Process, def *registry.Definition) error {
	if err := s.processes.Save(ctx, proc); err != nil {
		s.logger.Error("failed to persist transition; external state may be ahead of the record",
			zap.String("processId", proc.ID),
			zap.String("step", def.Name),
			zap.String("docSubmissionId", proc.DocSubmissionID),
			zap.String("accountUserId", proc.AccountUserID),
			zap.String("trainingEnrollmentId", proc.TrainingEnrollmentID),
			zap.Error(err))
		return fmt.Errorf("failed to save process %s: %w", proc.ID, err)
	}
	return nil
}

// Cancel terminates a non-terminal process. Cancellation requires its own
// capability and is permitted from any non-terminal state, including error.
func (s *Service) Cancel(ctx context.Context, processID string, actor model.Actor) (proc *model.Process, err error) {
	ctx, span := tracing.StartSpan(ctx, "engine.Cancel", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	if !actor.HasCapability(model.CapCancelOnboarding) {
		return nil, &AuthorizationError{Actor: actor.ID, Capability: model.CapCancelOnboarding}
	}

	unlock := s.locks.Lock(processID)
	defer unlock()

	proc, err = s.processes.Load(ctx, processID)
	if err != nil {
		return nil, err
	}
	if proc.Terminal() {
		return nil, &InvalidTransitionError{
			ProcessID: processID,
			Requested: model.StepCancelled,
			Current:   proc.GetCurrentStep(),
		}
	}

	proc.Advance(model.StepCancelled, model.StatusCancelled)
	if err = s.processes.Save(ctx, proc); err != nil {
		return nil, fmt.Errorf("failed to save process %s: %w", processID, err)
	}
	s.metrics.ProcessFinished(false)
	s.publish(ctx, event.TopicProcessCancelled, proc, "", "")
	s.logger.Info("process cancelled",
		zap.String("processId", processID),
		zap.String("actor", actor.ID))
	return proc.Clone(), nil
}

// Get returns a point-in-time snapshot of the process.
func (s *Service) Get(ctx context.Context, processID string) (*model.Process, error) {
	proc, err := s.processes.Load(ctx, processID)
	if err != nil {
		return nil, err
	}
	return proc.Clone(), nil
}

// List returns snapshots of processes matching the optional filters.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Process, error) {
	processes, err := s.processes.List(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Process, 0, len(processes))
	for _, proc := range processes {
		out = append(out, proc.Clone())
	}
	return out, nil
}

// Registry exposes the immutable step chain.
func (s *Service) Registry() *registry.Registry { return s.registry }

// Store exposes the process store; the callback resolver shares it so both
// observe the same records.
func (s *Service) Store() dao.Service[string, model.Process] { return s.processes }

func (s *Service) publish(ctx context.Context, topic string, proc *model.Process, step, errMsg string) {
	s.events.Publish(ctx, &event.Event{
		Topic:     topic,
		ProcessID: proc.ID,
		Step:      step,
		Status:    proc.GetStatus(),
		Error:     errMsg,
	})
}

// IsNotFound reports whether err denotes a missing process record.
func IsNotFound(err error) bool {
	return errors.Is(err, dao.ErrNotFound)
}
