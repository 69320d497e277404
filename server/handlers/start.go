package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/talentops/onboard/model"
)

// StartRequest defines the request body for POST /processes.
type StartRequest struct {
	Intake model.Intake `json:"intake"`
}

// StartHandler creates a new onboarding process.
type StartHandler struct {
	engine ProcessEngine
}

// NewStartHandler creates a new StartHandler.
func NewStartHandler(engine ProcessEngine) *StartHandler {
	return &StartHandler{engine: engine}
}

// ServeHTTP implements http.Handler.
func (h *StartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("invalid JSON: %v", err),
		})
		return
	}

	proc, err := h.engine.Start(r.Context(), req.Intake, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, proc)
}
