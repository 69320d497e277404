package engine

import (
	"context"

	"github.com/talentops/onboard/gateway"
	"github.com/talentops/onboard/model"
	"github.com/talentops/onboard/registry"
)

// Step names of the onboarding chain.
const (
	StepStart               = "start"
	StepVerifyInformation   = "verify_information"
	StepGenerateOfferLetter = "generate_offer_letter"
	StepSignContract        = "sign_contract"
	StepProvisionAccount    = "provision_account"
	StepScheduleTraining    = "schedule_training"
	StepCompleteOnboarding  = "complete_onboarding"
)

// OnboardingConfig carries the provider references the automatic steps need.
type OnboardingConfig struct {
	// OfferLetterTemplate identifies the document template used for the
	// signing request.
	OfferLetterTemplate string `json:"offerLetterTemplate" yaml:"offerLetterTemplate"`
	// TrainingCourse identifies the course every new hire is enrolled in.
	TrainingCourse string `json:"trainingCourse" yaml:"trainingCourse"`
}

// OnboardingSteps builds the step table of the standard onboarding chain,
// binding the automatic step actions to the supplied gateway. The table is
// assembled once at bootstrap; no handler is resolved by name at runtime.
func OnboardingSteps(gw gateway.Service, config OnboardingConfig) []*registry.Definition {
	return []*registry.Definition{
		{
			Name:               StepStart,
			Kind:               registry.KindHumanInput,
			Next:               StepVerifyInformation,
			RequiredCapability: model.CapStartOnboarding,
			Completed:          model.StatusPending,
			Action:             applyIntakeUpdates,
		},
		{
			Name:               StepVerifyInformation,
			Kind:               registry.KindHumanInput,
			Next:               StepGenerateOfferLetter,
			RequiredCapability: model.CapApproveOnboarding,
			Completed:          model.StatusPending,
			Action:             applyIntakeUpdates,
		},
		{
			Name:      StepGenerateOfferLetter,
			Kind:      registry.KindAutomatic,
			Next:      StepSignContract,
			Completed: model.StatusInProgress,
			Action:    generateOfferLetter(gw, config.OfferLetterTemplate),
		},
		{
			Name:      StepSignContract,
			Kind:      registry.KindWaitForCallback,
			Next:      StepProvisionAccount,
			Completed: model.StatusInProgress,
			Waiting:   model.StatusWaitingForSignature,
			Ready: func(proc *model.Process) bool {
				return proc.SignedContract() != ""
			},
		},
		{
			Name:      StepProvisionAccount,
			Kind:      registry.KindAutomatic,
			Next:      StepScheduleTraining,
			Completed: model.StatusAccountProvisioned,
			Action:    provisionAccount(gw),
		},
		{
			Name:      StepScheduleTraining,
			Kind:      registry.KindWaitForCallback,
			Next:      StepCompleteOnboarding,
			Completed: model.StatusTrainingScheduled,
			Waiting:   model.StatusTrainingScheduled,
			Action:    enrollInTraining(gw, config.TrainingCourse),
			Ready: func(proc *model.Process) bool {
				return proc.TrainingDone()
			},
		},
		{
			Name:               StepCompleteOnboarding,
			Kind:               registry.KindAutomatic,
			RequiredCapability: model.CapCompleteOnboarding,
			Completed:          model.StatusCompleted,
		},
	}
}

// NewOnboardingRegistry builds and validates the standard chain.
func NewOnboardingRegistry(gw gateway.Service, config OnboardingConfig) (*registry.Registry, error) {
	return registry.New(OnboardingSteps(gw, config)...)
}

// applyIntakeUpdates persists human-supplied field corrections.
func applyIntakeUpdates(_ context.Context, proc *model.Process, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return proc.ApplyIntakeUpdates(fields)
}

// generateOfferLetter opens a signing request for the offer letter and
// records the submission id, the credential for the later document callback.
func generateOfferLetter(gw gateway.Service, templateRef string) registry.ActionFunc {
	return func(ctx context.Context, proc *model.Process, _ map[string]string) error {
		response, err := gw.CreateSigningRequest(ctx, &gateway.SigningRequest{
			TemplateRef: templateRef,
			Fields: map[string]string{
				"first_name":     proc.Intake.FirstName,
				"last_name":      proc.Intake.LastName,
				"position_title": proc.Intake.PositionTitle,
				"start_date":     proc.Intake.StartDate,
			},
		})
		if err != nil {
			return err
		}
		return proc.SetDocSubmission(response.SubmissionID, response.DownloadURL)
	}
}

// provisionAccount creates the directory account and records the user id.
func provisionAccount(gw gateway.Service) registry.ActionFunc {
	return func(ctx context.Context, proc *model.Process, _ map[string]string) error {
		response, err := gw.ProvisionAccount(ctx, &gateway.AccountRequest{
			PrincipalName: proc.Intake.Email,
			DisplayName:   proc.Intake.FullName(),
		})
		if err != nil {
			return err
		}
		return proc.SetAccountUserID(response.UserID)
	}
}

// enrollInTraining creates the course enrollment exactly once: when the
// suspended step is re-activated by the training callback the enrollment id
// is already recorded and the gateway is not called again.
func enrollInTraining(gw gateway.Service, courseRef string) registry.ActionFunc {
	return func(ctx context.Context, proc *model.Process, _ map[string]string) error {
		if proc.TrainingEnrollment() != "" {
			return nil
		}
		response, err := gw.EnrollInTraining(ctx, &gateway.TrainingRequest{
			Email:     proc.Intake.Email,
			FirstName: proc.Intake.FirstName,
			LastName:  proc.Intake.LastName,
			CourseRef: courseRef,
		})
		if err != nil {
			return err
		}
		return proc.SetTrainingEnrollmentID(response.EnrollmentID)
	}
}
