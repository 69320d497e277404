package engine

import "fmt"

// InvalidTransitionError rejects an activation that does not match the
// process position, including re-entrant activation, out-of-order resumes
// and duplicate external callbacks racing a manual resume. No state change
// accompanies it.
type InvalidTransitionError struct {
	ProcessID string
	Requested string
	Current   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("process %s: cannot activate step %q while positioned at %q",
		e.ProcessID, e.Requested, e.Current)
}

// AuthorizationError rejects an actor lacking the capability a step
// declares. The check happens before any side effect.
type AuthorizationError struct {
	Actor      string
	Capability string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("actor %q does not hold capability %q", e.Actor, e.Capability)
}

// StepExecutionError wraps a failed external call. The process is marked
// with error status and the step position is preserved so that the step can
// be retried by re-activating it once the underlying cause is fixed.
type StepExecutionError struct {
	Step string
	Err  error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepExecutionError) Unwrap() error { return e.Err }
