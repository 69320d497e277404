package model

import (
	"sync"
	"time"

	"github.com/talentops/onboard/internal/clock"
)

// Status is the coarse, user-facing projection of a process. The precise
// state-machine position is CurrentStep.
type Status string

const (
	StatusPending             Status = "pending"
	StatusInProgress          Status = "in_progress"
	StatusWaitingForSignature Status = "waiting_for_signature"
	StatusAccountProvisioned  Status = "account_provisioned"
	StatusTrainingScheduled   Status = "training_scheduled"
	StatusCompleted           Status = "completed"
	StatusCancelled           Status = "cancelled"
	StatusError               Status = "error"
)

// CurrentStep sentinels used at terminal states instead of a step name.
const (
	StepCompleted = "completed"
	StepCancelled = "cancelled"
)

// Process represents one onboarding instance tracked by the state machine.
//
// Ownership rules:
//   - the activation engine is the only writer of Status/CurrentStep,
//   - correlation ids are written once, as a side effect of a step the
//     engine invoked synchronously, and are immutable afterwards - they are
//     the sole credential used to validate a later callback.
type Process struct {
	ID          string `json:"id"`
	CurrentStep string `json:"currentStep"`
	Status      Status `json:"status"`

	// Intake fields are set once at creation and never mutated afterwards
	// (verify_information may correct them before the first automatic step).
	Intake Intake `json:"intake"`

	// Artifact references produced by steps.
	OfferLetterRef    string `json:"offerLetterRef,omitempty"`
	SignedContractRef string `json:"signedContractRef,omitempty"`

	// External correlation ids, write-once.
	DocSubmissionID      string `json:"docSubmissionId,omitempty"`
	AccountUserID        string `json:"accountUserId,omitempty"`
	TrainingEnrollmentID string `json:"trainingEnrollmentId,omitempty"`

	// TrainingCompleted records the training callback so that a resumed
	// schedule_training step can distinguish "enrolled, still waiting" from
	// "course finished".
	TrainingCompleted bool `json:"trainingCompleted,omitempty"`

	LastError string `json:"lastError,omitempty"`

	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`

	mu sync.RWMutex
}

// NewProcess creates a process positioned at firstStep in pending status.
func NewProcess(id string, intake Intake, firstStep string) *Process {
	now := clock.Now()
	return &Process{
		ID:          id,
		CurrentStep: firstStep,
		Status:      StatusPending,
		Intake:      intake,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Terminal reports whether the process reached a terminal state.
func (p *Process) Terminal() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status == StatusCompleted || p.Status == StatusCancelled
}

// GetStatus returns the current status under lock.
func (p *Process) GetStatus() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// GetCurrentStep returns the precise state-machine position under lock.
func (p *Process) GetCurrentStep() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.CurrentStep
}

// SetStatus updates the coarse status and the bookkeeping timestamps.
func (p *Process) SetStatus(status Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = status
	switch status {
	case StatusCompleted, StatusCancelled:
		now := clock.Now()
		p.FinishedAt = &now
	}
	p.UpdatedAt = clock.Now()
}

// Advance moves the position to step and applies the associated status.
func (p *Process) Advance(step string, status Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CurrentStep = step
	p.Status = status
	switch status {
	case StatusCompleted, StatusCancelled:
		now := clock.Now()
		p.FinishedAt = &now
	}
	p.UpdatedAt = clock.Now()
}

// RecordError marks the process as requiring operator intervention. The
// position is left unchanged so the failing step can be retried.
func (p *Process) RecordError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = StatusError
	if err != nil {
		p.LastError = err.Error()
	}
	p.UpdatedAt = clock.Now()
}

// ClearError resets the error marker before a retry attempt.
func (p *Process) ClearError() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.LastError = ""
	p.UpdatedAt = clock.Now()
}

// SetDocSubmission records the document-signing correlation id and the
// offer-letter artifact. The id is write-once; a second call with a
// different value is rejected.
func (p *Process) SetDocSubmission(submissionID, offerLetterRef string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.DocSubmissionID != "" && p.DocSubmissionID != submissionID {
		return &ImmutableFieldError{Field: "docSubmissionId"}
	}
	p.DocSubmissionID = submissionID
	p.OfferLetterRef = offerLetterRef
	p.UpdatedAt = clock.Now()
	return nil
}

// SetAccountUserID records the identity-provisioning correlation id, write-once.
func (p *Process) SetAccountUserID(userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.AccountUserID != "" && p.AccountUserID != userID {
		return &ImmutableFieldError{Field: "accountUserId"}
	}
	p.AccountUserID = userID
	p.UpdatedAt = clock.Now()
	return nil
}

// SetTrainingEnrollmentID records the training correlation id, write-once.
func (p *Process) SetTrainingEnrollmentID(enrollmentID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.TrainingEnrollmentID != "" && p.TrainingEnrollmentID != enrollmentID {
		return &ImmutableFieldError{Field: "trainingEnrollmentId"}
	}
	p.TrainingEnrollmentID = enrollmentID
	p.UpdatedAt = clock.Now()
	return nil
}

// ApplyIntakeUpdates applies human-supplied field corrections, keyed by the
// intake JSON field names, and re-validates the result. Only permitted
// before the first automatic step runs.
func (p *Process) ApplyIntakeUpdates(fields map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	updated := p.Intake
	for name, value := range fields {
		switch name {
		case "firstName":
			updated.FirstName = value
		case "lastName":
			updated.LastName = value
		case "email":
			updated.Email = value
		case "phone":
			updated.Phone = value
		case "positionTitle":
			updated.PositionTitle = value
		case "department":
			updated.Department = value
		case "startDate":
			updated.StartDate = value
		default:
			return &ValidationError{Issues: []string{"unknown intake field " + name}}
		}
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	p.Intake = updated
	p.UpdatedAt = clock.Now()
	return nil
}

// SetSignedContract records the signed document artifact delivered by the
// document callback.
func (p *Process) SetSignedContract(ref string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SignedContractRef = ref
	p.UpdatedAt = clock.Now()
}

// SignedContract returns the signed document reference under lock; callback
// delivery can write it concurrently with an activation reading it.
func (p *Process) SignedContract() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.SignedContractRef
}

// TrainingDone reports the training-completion flag under lock.
func (p *Process) TrainingDone() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.TrainingCompleted
}

// DocSubmission returns the document-signing correlation id under lock.
func (p *Process) DocSubmission() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.DocSubmissionID
}

// TrainingEnrollment returns the training correlation id under lock.
func (p *Process) TrainingEnrollment() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.TrainingEnrollmentID
}

// MarkTrainingCompleted records the training-completion callback.
func (p *Process) MarkTrainingCompleted() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.TrainingCompleted = true
	p.UpdatedAt = clock.Now()
}

// Clone creates a deep copy so that callers can inspect a snapshot without
// racing against engine transitions.
func (p *Process) Clone() *Process {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	clone := &Process{
		ID:                   p.ID,
		CurrentStep:          p.CurrentStep,
		Status:               p.Status,
		Intake:               p.Intake,
		OfferLetterRef:       p.OfferLetterRef,
		SignedContractRef:    p.SignedContractRef,
		DocSubmissionID:      p.DocSubmissionID,
		AccountUserID:        p.AccountUserID,
		TrainingEnrollmentID: p.TrainingEnrollmentID,
		TrainingCompleted:    p.TrainingCompleted,
		LastError:            p.LastError,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
	if p.FinishedAt != nil {
		t := *p.FinishedAt
		clone.FinishedAt = &t
	}
	return clone
}
