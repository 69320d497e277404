// Package gateway defines the boundary contract to the external providers
// the onboarding workflow depends on: document generation/signing, identity
// provisioning and training enrollment. The core depends only on this
// contract; concrete clients live in sub-packages and are injected at
// bootstrap - there is no ambient global client.
package gateway

import "context"

// SigningRequest asks the document provider to generate an offer letter and
// open a signing request for it.
type SigningRequest struct {
	TemplateRef string            `json:"templateRef"`
	Fields      map[string]string `json:"fields"`
}

// SigningResponse carries the durable correlation id used to validate the
// later signing callback, plus a download URL for the generated document.
type SigningResponse struct {
	SubmissionID string `json:"submissionId"`
	DownloadURL  string `json:"downloadUrl"`
}

// AccountRequest asks the directory provider to create a user account.
type AccountRequest struct {
	PrincipalName string `json:"principalName"`
	DisplayName   string `json:"displayName"`
}

// AccountResponse carries the provisioned account id.
type AccountResponse struct {
	UserID string `json:"userId"`
}

// TrainingRequest asks the learning provider to enroll a person in a course.
type TrainingRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	CourseRef string `json:"courseRef"`
}

// TrainingResponse carries the enrollment correlation id used to validate
// the later training-completion callback.
type TrainingResponse struct {
	EnrollmentID string `json:"enrollmentId"`
}

// Service is the consumed interface of the external providers. Every call
// is synchronous, may fail, and is NOT assumed idempotent - the engine never
// repeats a call for one step unless the step is explicitly re-activated
// after an error status.
type Service interface {
	CreateSigningRequest(ctx context.Context, request *SigningRequest) (*SigningResponse, error)
	ProvisionAccount(ctx context.Context, request *AccountRequest) (*AccountResponse, error)
	EnrollInTraining(ctx context.Context, request *TrainingRequest) (*TrainingResponse, error)
}
