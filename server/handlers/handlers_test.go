package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talentops/onboard/callback"
	"github.com/talentops/onboard/engine"
	"github.com/talentops/onboard/model"
	"github.com/talentops/onboard/registry"
	"github.com/talentops/onboard/service/dao"
)

type fakeEngine struct {
	proc      *model.Process
	processes []*model.Process
	err       error

	lastStep   string
	lastActor  model.Actor
	lastFields map[string]string
}

func (f *fakeEngine) Start(_ context.Context, intake model.Intake, actor model.Actor) (*model.Process, error) {
	f.lastActor = actor
	if f.err != nil {
		return nil, f.err
	}
	return f.proc, nil
}

func (f *fakeEngine) Activate(_ context.Context, processID, stepName string, actor model.Actor, fields map[string]string) (*model.Process, error) {
	f.lastStep = stepName
	f.lastActor = actor
	f.lastFields = fields
	if f.err != nil {
		return nil, f.err
	}
	return f.proc, nil
}

func (f *fakeEngine) Cancel(_ context.Context, processID string, actor model.Actor) (*model.Process, error) {
	f.lastActor = actor
	if f.err != nil {
		return nil, f.err
	}
	return f.proc, nil
}

func (f *fakeEngine) Get(_ context.Context, processID string) (*model.Process, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.proc, nil
}

func (f *fakeEngine) List(_ context.Context, parameters ...*dao.Parameter) ([]*model.Process, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.processes, nil
}

type fakeResolver struct {
	result *callback.Result
	err    error

	lastSubmissionID string
	lastEnrollmentID string
}

func (f *fakeResolver) ResolveDocumentCallback(_ context.Context, processID, submissionID, artifactRef string) (*callback.Result, error) {
	f.lastSubmissionID = submissionID
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeResolver) ResolveTrainingCallback(_ context.Context, processID, enrollmentID string) (*callback.Result, error) {
	f.lastEnrollmentID = enrollmentID
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testProcess() *model.Process {
	return model.NewProcess("p-1", model.Intake{FirstName: "Ana"}, "verify_information")
}

func TestStartHandler(t *testing.T) {
	eng := &fakeEngine{proc: testProcess()}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/processes", strings.NewReader(
		`{"intake":{"firstName":"Ana","lastName":"Silva"}}`))
	req.Header.Set("X-Actor-Id", "hr-1")
	req.Header.Set("X-Actor-Capabilities", "can_start_onboarding, can_cancel_onboarding")

	NewStartHandler(eng).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "hr-1", eng.lastActor.ID)
	assert.Equal(t, []string{"can_start_onboarding", "can_cancel_onboarding"}, eng.lastActor.Capabilities)

	var proc model.Process
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &proc))
	assert.Equal(t, "p-1", proc.ID)
}

func TestStartHandlerInvalidJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/processes", strings.NewReader("{"))

	NewStartHandler(&fakeEngine{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON")
}

func TestActivateHandler(t *testing.T) {
	eng := &fakeEngine{proc: testProcess()}
	mux := http.NewServeMux()
	mux.Handle("POST /processes/{id}/activate", NewActivateHandler(eng))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/processes/p-1/activate", strings.NewReader(
		`{"step":"verify_information","fields":{"department":"Infrastructure"}}`))
	req.Header.Set("X-Actor-Id", "hr-1")
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "verify_information", eng.lastStep)
	assert.Equal(t, map[string]string{"department": "Infrastructure"}, eng.lastFields)
}

func TestActivateHandlerRequiresStep(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("POST /processes/{id}/activate", NewActivateHandler(&fakeEngine{}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/processes/p-1/activate", strings.NewReader(`{}`))
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "step is required")
}

func TestErrorStatusMapping(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{
			name:   "validation",
			err:    &model.ValidationError{Issues: []string{"email is required"}},
			status: http.StatusBadRequest,
		},
		{
			name:   "correlation mismatch",
			err:    &callback.CorrelationMismatchError{ProcessID: "p-1", Field: "docSubmissionId"},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown step",
			err:    registry.ErrUnknownStep,
			status: http.StatusBadRequest,
		},
		{
			name:   "authorization",
			err:    &engine.AuthorizationError{Actor: "x", Capability: "can_start_onboarding"},
			status: http.StatusForbidden,
		},
		{
			name:   "not found",
			err:    dao.ErrNotFound,
			status: http.StatusNotFound,
		},
		{
			name:   "invalid transition",
			err:    &engine.InvalidTransitionError{ProcessID: "p-1"},
			status: http.StatusConflict,
		},
		{
			name:   "immutable field",
			err:    &model.ImmutableFieldError{Field: "accountUserId"},
			status: http.StatusConflict,
		},
		{
			name:   "step execution",
			err:    &engine.StepExecutionError{Step: "provision_account", Err: errors.New("down")},
			status: http.StatusBadGateway,
		},
		{
			name:   "unclassified",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, statusFor(tc.err))
		})
	}
}

func TestGetProcessHandlerNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("GET /processes/{id}", NewGetProcessHandler(&fakeEngine{err: dao.ErrNotFound}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/processes/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProcessesHandler(t *testing.T) {
	eng := &fakeEngine{processes: []*model.Process{testProcess()}}
	rec := httptest.NewRecorder()

	NewListProcessesHandler(eng).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/processes?status=pending", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp ListResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Processes, 1)
}

func TestListProcessesHandlerEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	NewListProcessesHandler(&fakeEngine{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/processes", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"processes":[]`)
}

func TestDocumentCallbackHandler(t *testing.T) {
	resolver := &fakeResolver{result: &callback.Result{Process: testProcess()}}
	mux := http.NewServeMux()
	mux.Handle("POST /processes/{id}/callbacks/document", NewDocumentCallbackHandler(resolver))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/processes/p-1/callbacks/document", strings.NewReader(
		`{"submissionId":"sub-001","documentUrl":"contracts/signed.pdf"}`))
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sub-001", resolver.lastSubmissionID)

	var resp CallbackResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.AlreadyProcessed)
}

func TestDocumentCallbackHandlerDuplicate(t *testing.T) {
	resolver := &fakeResolver{result: &callback.Result{Process: testProcess(), AlreadyProcessed: true}}
	mux := http.NewServeMux()
	mux.Handle("POST /processes/{id}/callbacks/document", NewDocumentCallbackHandler(resolver))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/processes/p-1/callbacks/document", strings.NewReader(
		`{"submissionId":"sub-001"}`))
	mux.ServeHTTP(rec, req)

	// Duplicates answer 200 so the provider stops retrying.
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp CallbackResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.AlreadyProcessed)
}

func TestTrainingCallbackHandlerRequiresEnrollmentID(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("POST /processes/{id}/callbacks/training", NewTrainingCallbackHandler(&fakeResolver{}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/processes/p-1/callbacks/training", strings.NewReader(`{}`))
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "enrollmentId is required")
}

func TestCancelHandler(t *testing.T) {
	proc := testProcess()
	proc.Advance(model.StepCancelled, model.StatusCancelled)
	eng := &fakeEngine{proc: proc}

	mux := http.NewServeMux()
	mux.Handle("POST /processes/{id}/cancel", NewCancelHandler(eng))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/processes/p-1/cancel", nil)
	req.Header.Set("X-Actor-Id", "hr-1")
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hr-1", eng.lastActor.ID)
}
