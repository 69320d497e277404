// Package callback translates inbound external events - a document signed,
// a training completed - into activation of the suspended step, after
// validating the event against the recorded correlation id.
//
// Duplicate deliveries are expected from webhook providers and are absorbed
// silently; mismatched correlation ids are rejected and logged as potential
// security events.
package callback

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/talentops/onboard/engine"
	"github.com/talentops/onboard/metrics"
	"github.com/talentops/onboard/model"
	"github.com/talentops/onboard/tracing"
)

// Result carries the process state after a callback was handled.
// AlreadyProcessed marks a duplicate delivery: the event was valid but the
// process had already moved past the awaited step, so no transition ran.
type Result struct {
	Process          *model.Process
	AlreadyProcessed bool
}

// Resolver validates external events and resumes suspended processes
// through the activation engine.
type Resolver struct {
	engine  *engine.Service
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option customises the resolver.
type Option func(*Resolver)

// WithLogger sets the structured logger; defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// New creates a resolver bound to the engine whose store it shares.
func New(eng *engine.Service, options ...Option) *Resolver {
	r := &Resolver{engine: eng, logger: zap.NewNop()}
	for _, option := range options {
		option(r)
	}
	return r
}

// ResolveDocumentCallback handles a document-signing event. The submitted
// submission id must equal the recorded one; on match the signed document
// reference is stored and the suspended sign_contract step is re-activated
// exactly once. Validation and the artifact write run under the engine's
// per-process lock so they cannot interleave with a concurrent transition.
func (r *Resolver) ResolveDocumentCallback(ctx context.Context, processID, submissionID, artifactRef string) (result *Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "callback.ResolveDocument", "SERVER")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"process.id": processID})

	return r.resume(ctx, processID, engine.StepSignContract, func(proc *model.Process) error {
		if proc.DocSubmission() == "" || proc.DocSubmission() != submissionID {
			r.metrics.CallbackRejected()
			r.logger.Warn("document callback correlation mismatch",
				zap.String("processId", processID),
				zap.String("submittedId", submissionID))
			return &CorrelationMismatchError{ProcessID: processID, Field: "docSubmissionId"}
		}
		// First valid delivery wins; a redelivery never rewrites the artifact.
		if proc.SignedContract() == "" {
			proc.SetSignedContract(artifactRef)
		}
		return nil
	})
}

// ResolveTrainingCallback handles a training-completion event, validated
// against the recorded enrollment id.
func (r *Resolver) ResolveTrainingCallback(ctx context.Context, processID, enrollmentID string) (result *Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "callback.ResolveTraining", "SERVER")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"process.id": processID})

	return r.resume(ctx, processID, engine.StepScheduleTraining, func(proc *model.Process) error {
		if proc.TrainingEnrollment() == "" || proc.TrainingEnrollment() != enrollmentID {
			r.metrics.CallbackRejected()
			r.logger.Warn("training callback correlation mismatch",
				zap.String("processId", processID),
				zap.String("submittedId", enrollmentID))
			return &CorrelationMismatchError{ProcessID: processID, Field: "trainingEnrollmentId"}
		}
		if !proc.TrainingDone() {
			proc.MarkTrainingCompleted()
		}
		return nil
	})
}

// resume hands the validated event to the engine, which runs record and the
// step activation under one per-process lock. A transition guard rejection
// means the process already moved on - the delivery is a duplicate and is
// absorbed rather than surfaced as an error.
func (r *Resolver) resume(ctx context.Context, processID, stepName string, record func(*model.Process) error) (*Result, error) {
	proc, err := r.engine.Resume(ctx, processID, stepName, record)
	if err != nil {
		var invalid *engine.InvalidTransitionError
		if errors.As(err, &invalid) {
			r.metrics.CallbackAbsorbed()
			r.logger.Info("duplicate callback absorbed",
				zap.String("processId", processID),
				zap.String("step", stepName))
			current, loadErr := r.engine.Get(ctx, processID)
			if loadErr != nil {
				return nil, loadErr
			}
			return &Result{Process: current, AlreadyProcessed: true}, nil
		}
		return nil, err
	}
	return &Result{Process: proc}, nil
}
