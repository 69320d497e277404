package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talentops/onboard/gateway/gatewaytest"
	"github.com/talentops/onboard/model"
	"github.com/talentops/onboard/service/dao"
	"github.com/talentops/onboard/service/dao/process/memory"
)

var (
	hrActor = model.Actor{ID: "hr-1", Capabilities: []string{
		model.CapStartOnboarding,
		model.CapApproveOnboarding,
		model.CapCancelOnboarding,
	}}
	intruder = model.Actor{ID: "intruder"}
)

func testIntake() model.Intake {
	return model.Intake{
		FirstName:     "Ana",
		LastName:      "Silva",
		Email:         "ana.silva@example.com",
		Phone:         "+1-555-0101",
		PositionTitle: "Backend Engineer",
		Department:    "Platform",
		StartDate:     "2026-09-14",
	}
}

func newTestEngine(t *testing.T) (*Service, *gatewaytest.Mock) {
	t.Helper()
	gw := &gatewaytest.Mock{}
	reg, err := NewOnboardingRegistry(gw, OnboardingConfig{
		OfferLetterTemplate: "templates/offer-letter",
		TrainingCourse:      "courses/new-hire",
	})
	assert.NoError(t, err)
	svc, err := New(reg, memory.New())
	assert.NoError(t, err)
	return svc, gw
}

func TestStartParksOnVerification(t *testing.T) {
	svc, gw := newTestEngine(t)
	ctx := context.Background()

	proc, err := svc.Start(ctx, testIntake(), hrActor)
	assert.NoError(t, err)
	assert.Equal(t, StepVerifyInformation, proc.GetCurrentStep())
	assert.Equal(t, model.StatusPending, proc.GetStatus())
	assert.Zero(t, gw.Calls(), "no external call before verification")
}

func TestStartRejectsInvalidIntake(t *testing.T) {
	svc, _ := newTestEngine(t)

	intake := testIntake()
	intake.Email = "broken"
	_, err := svc.Start(context.Background(), intake, hrActor)

	var validation *model.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestStartRequiresCapability(t *testing.T) {
	svc, _ := newTestEngine(t)

	_, err := svc.Start(context.Background(), testIntake(), intruder)
	var authz *AuthorizationError
	assert.ErrorAs(t, err, &authz)
	assert.Equal(t, model.CapStartOnboarding, authz.Capability)

	// Nothing was created.
	processes, err := svc.List(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, processes)
}

func TestVerificationChainsToSuspension(t *testing.T) {
	svc, gw := newTestEngine(t)
	ctx := context.Background()

	proc, err := svc.Start(ctx, testIntake(), hrActor)
	assert.NoError(t, err)

	// Approving verification chains through offer-letter generation and
	// suspends at the signature wait.
	proc, err = svc.Activate(ctx, proc.ID, StepVerifyInformation, hrActor, map[string]string{
		"department": "Infrastructure",
	})
	assert.NoError(t, err)
	assert.Equal(t, StepSignContract, proc.GetCurrentStep())
	assert.Equal(t, model.StatusWaitingForSignature, proc.GetStatus())
	assert.Equal(t, "Infrastructure", proc.Intake.Department)
	assert.NotEmpty(t, proc.DocSubmissionID)
	assert.NotEmpty(t, proc.OfferLetterRef)
	assert.Equal(t, 1, gw.SigningCalls)
	assert.Equal(t, 1, gw.Calls())
}

func TestActivateRejectsWrongStep(t *testing.T) {
	svc, gw := newTestEngine(t)
	ctx := context.Background()

	proc, err := svc.Start(ctx, testIntake(), hrActor)
	assert.NoError(t, err)
	proc, err = svc.Activate(ctx, proc.ID, StepVerifyInformation, hrActor, nil)
	assert.NoError(t, err)
	calls := gw.Calls()

	// Re-activating the already completed step must not re-run anything.
	_, err = svc.Activate(ctx, proc.ID, StepVerifyInformation, hrActor, nil)
	var invalid *InvalidTransitionError
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, StepVerifyInformation, invalid.Requested)
	assert.Equal(t, StepSignContract, invalid.Current)
	assert.Equal(t, calls, gw.Calls())

	// Activating a future step is equally rejected.
	_, err = svc.Activate(ctx, proc.ID, StepProvisionAccount, model.System, nil)
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, calls, gw.Calls())
}

func TestActivateRequiresCapability(t *testing.T) {
	svc, gw := newTestEngine(t)
	ctx := context.Background()

	proc, err := svc.Start(ctx, testIntake(), hrActor)
	assert.NoError(t, err)

	_, err = svc.Activate(ctx, proc.ID, StepVerifyInformation, intruder, nil)
	var authz *AuthorizationError
	assert.ErrorAs(t, err, &authz)
	assert.Equal(t, model.CapApproveOnboarding, authz.Capability)
	assert.Zero(t, gw.Calls())

	// The rejection left the process untouched.
	current, err := svc.Get(ctx, proc.ID)
	assert.NoError(t, err)
	assert.Equal(t, StepVerifyInformation, current.GetCurrentStep())
}

func TestActivateUnknownStep(t *testing.T) {
	svc, _ := newTestEngine(t)

	_, err := svc.Activate(context.Background(), "p-x", "imaginary_step", hrActor, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown step")
}

func TestFullLifecycle(t *testing.T) {
	svc, gw := newTestEngine(t)
	ctx := context.Background()

	proc, err := svc.Start(ctx, testIntake(), hrActor)
	assert.NoError(t, err)
	proc, err = svc.Activate(ctx, proc.ID, StepVerifyInformation, hrActor, nil)
	assert.NoError(t, err)

	// Signed contract arrives; resumption chains through account
	// provisioning and suspends at training.
	stored, err := svc.Store().Load(ctx, proc.ID)
	assert.NoError(t, err)
	stored.SetSignedContract("contracts/signed.pdf")
	assert.NoError(t, svc.Store().Save(ctx, stored))

	proc, err = svc.Activate(ctx, proc.ID, StepSignContract, model.System, nil)
	assert.NoError(t, err)
	assert.Equal(t, StepScheduleTraining, proc.GetCurrentStep())
	assert.Equal(t, model.StatusTrainingScheduled, proc.GetStatus())
	assert.NotEmpty(t, proc.AccountUserID)
	assert.NotEmpty(t, proc.TrainingEnrollmentID)
	assert.Equal(t, 1, gw.AccountCalls)
	assert.Equal(t, 1, gw.TrainingCalls)

	// Training completes; the chain runs to the terminal step without
	// calling the training provider a second time.
	stored, err = svc.Store().Load(ctx, proc.ID)
	assert.NoError(t, err)
	stored.MarkTrainingCompleted()
	assert.NoError(t, svc.Store().Save(ctx, stored))

	proc, err = svc.Activate(ctx, proc.ID, StepScheduleTraining, model.System, nil)
	assert.NoError(t, err)
	assert.Equal(t, model.StepCompleted, proc.GetCurrentStep())
	assert.Equal(t, model.StatusCompleted, proc.GetStatus())
	assert.True(t, proc.Terminal())
	assert.NotNil(t, proc.FinishedAt)
	assert.Equal(t, 3, gw.Calls())
}

func TestActivateRejectsInvalidFieldUpdates(t *testing.T) {
	svc, gw := newTestEngine(t)
	ctx := context.Background()

	proc, err := svc.Start(ctx, testIntake(), hrActor)
	assert.NoError(t, err)

	_, err = svc.Activate(ctx, proc.ID, StepVerifyInformation, hrActor, map[string]string{
		"email": "not-an-email",
	})
	var validation *model.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Zero(t, gw.Calls())

	// Bad input is the caller's problem: the record carries no error state
	// and the step accepts a corrected retry.
	stored, err := svc.Get(ctx, proc.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.GetStatus())
	assert.Equal(t, StepVerifyInformation, stored.GetCurrentStep())
	assert.Empty(t, stored.LastError)

	proc, err = svc.Activate(ctx, proc.ID, StepVerifyInformation, hrActor, map[string]string{
		"email": "ana.silva@corp.example.com",
	})
	assert.NoError(t, err)
	assert.Equal(t, model.StatusWaitingForSignature, proc.GetStatus())
	assert.Equal(t, "ana.silva@corp.example.com", proc.Intake.Email)
}

func TestStepFailurePreservesPositionForRetry(t *testing.T) {
	svc, gw := newTestEngine(t)
	ctx := context.Background()

	proc, err := svc.Start(ctx, testIntake(), hrActor)
	assert.NoError(t, err)

	gw.SigningErr = errors.New("document provider down")
	_, err = svc.Activate(ctx, proc.ID, StepVerifyInformation, hrActor, nil)

	var execution *StepExecutionError
	assert.ErrorAs(t, err, &execution)
	assert.Equal(t, StepGenerateOfferLetter, execution.Step)

	failed, err := svc.Get(ctx, proc.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusError, failed.GetStatus())
	assert.Equal(t, StepGenerateOfferLetter, failed.GetCurrentStep())
	assert.Contains(t, failed.LastError, "document provider down")

	// Retry of the same step succeeds once the provider recovers.
	gw.SigningErr = nil
	proc, err = svc.Activate(ctx, proc.ID, StepGenerateOfferLetter, model.System, nil)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusWaitingForSignature, proc.GetStatus())
	assert.Empty(t, proc.LastError)
}

func TestCancel(t *testing.T) {
	svc, _ := newTestEngine(t)
	ctx := context.Background()

	proc, err := svc.Start(ctx, testIntake(), hrActor)
	assert.NoError(t, err)

	_, err = svc.Cancel(ctx, proc.ID, intruder)
	var authz *AuthorizationError
	assert.ErrorAs(t, err, &authz)

	proc, err = svc.Cancel(ctx, proc.ID, hrActor)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, proc.GetStatus())
	assert.Equal(t, model.StepCancelled, proc.GetCurrentStep())

	// Cancelled processes accept no further transitions.
	var invalid *InvalidTransitionError
	_, err = svc.Cancel(ctx, proc.ID, hrActor)
	assert.ErrorAs(t, err, &invalid)
	_, err = svc.Activate(ctx, proc.ID, StepVerifyInformation, hrActor, nil)
	assert.ErrorAs(t, err, &invalid)
}

func TestListFiltersByStatus(t *testing.T) {
	svc, _ := newTestEngine(t)
	ctx := context.Background()

	first, err := svc.Start(ctx, testIntake(), hrActor)
	assert.NoError(t, err)
	second, err := svc.Start(ctx, testIntake(), hrActor)
	assert.NoError(t, err)
	_, err = svc.Cancel(ctx, second.ID, hrActor)
	assert.NoError(t, err)

	pending, err := svc.List(ctx, dao.NewParameter("Status", string(model.StatusPending)))
	assert.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)

	all, err := svc.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetNotFound(t *testing.T) {
	svc, _ := newTestEngine(t)

	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, IsNotFound(err))
}
