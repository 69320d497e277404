// Package handlers provides HTTP handlers for the onboarding server.
//
// Each handler is in its own file and implements http.Handler. Handlers
// depend on narrow interfaces rather than the concrete engine so they can
// be tested with lightweight fakes.
package handlers

import (
	"context"

	"github.com/talentops/onboard/callback"
	"github.com/talentops/onboard/model"
	"github.com/talentops/onboard/service/dao"
)

// ProcessEngine drives the onboarding state machine.
type ProcessEngine interface {
	Start(ctx context.Context, intake model.Intake, actor model.Actor) (*model.Process, error)
	Activate(ctx context.Context, processID, stepName string, actor model.Actor, fields map[string]string) (*model.Process, error)
	Cancel(ctx context.Context, processID string, actor model.Actor) (*model.Process, error)
	Get(ctx context.Context, processID string) (*model.Process, error)
	List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Process, error)
}

// CallbackResolver resumes suspended processes from external events.
type CallbackResolver interface {
	ResolveDocumentCallback(ctx context.Context, processID, submissionID, artifactRef string) (*callback.Result, error)
	ResolveTrainingCallback(ctx context.Context, processID, enrollmentID string) (*callback.Result, error)
}
