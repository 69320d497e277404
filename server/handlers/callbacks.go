package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/talentops/onboard/callback"
	"github.com/talentops/onboard/model"
)

// DocumentCallbackRequest is the webhook payload of the document provider.
type DocumentCallbackRequest struct {
	SubmissionID string `json:"submissionId"`
	DocumentURL  string `json:"documentUrl"`
}

// TrainingCallbackRequest is the webhook payload of the training provider.
type TrainingCallbackRequest struct {
	EnrollmentID string `json:"enrollmentId"`
}

// CallbackResponse reports how an external event was handled. Duplicate
// deliveries answer 200 with alreadyProcessed=true so providers stop
// retrying.
type CallbackResponse struct {
	Process          *model.Process `json:"process"`
	AlreadyProcessed bool           `json:"alreadyProcessed"`
}

// DocumentCallbackHandler resumes a process waiting for a signed contract.
type DocumentCallbackHandler struct {
	resolver CallbackResolver
}

// NewDocumentCallbackHandler creates a new DocumentCallbackHandler.
func NewDocumentCallbackHandler(resolver CallbackResolver) *DocumentCallbackHandler {
	return &DocumentCallbackHandler{resolver: resolver}
}

// ServeHTTP implements http.Handler.
func (h *DocumentCallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req DocumentCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("invalid JSON: %v", err),
		})
		return
	}
	if req.SubmissionID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "submissionId is required"})
		return
	}

	result, err := h.resolver.ResolveDocumentCallback(r.Context(), r.PathValue("id"), req.SubmissionID, req.DocumentURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCallbackResult(w, result)
}

// TrainingCallbackHandler resumes a process waiting for training completion.
type TrainingCallbackHandler struct {
	resolver CallbackResolver
}

// NewTrainingCallbackHandler creates a new TrainingCallbackHandler.
func NewTrainingCallbackHandler(resolver CallbackResolver) *TrainingCallbackHandler {
	return &TrainingCallbackHandler{resolver: resolver}
}

// ServeHTTP implements http.Handler.
func (h *TrainingCallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req TrainingCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("invalid JSON: %v", err),
		})
		return
	}
	if req.EnrollmentID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "enrollmentId is required"})
		return
	}

	result, err := h.resolver.ResolveTrainingCallback(r.Context(), r.PathValue("id"), req.EnrollmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCallbackResult(w, result)
}

func writeCallbackResult(w http.ResponseWriter, result *callback.Result) {
	writeJSON(w, http.StatusOK, CallbackResponse{
		Process:          result.Process,
		AlreadyProcessed: result.AlreadyProcessed,
	})
}
