package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ActivateRequest defines the request body for POST /processes/{id}/activate.
type ActivateRequest struct {
	Step   string            `json:"step"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ActivateHandler executes a named step of a process on behalf of the
// request actor.
type ActivateHandler struct {
	engine ProcessEngine
}

// NewActivateHandler creates a new ActivateHandler.
func NewActivateHandler(engine ProcessEngine) *ActivateHandler {
	return &ActivateHandler{engine: engine}
}

// ServeHTTP implements http.Handler.
func (h *ActivateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("invalid JSON: %v", err),
		})
		return
	}
	if req.Step == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "step is required"})
		return
	}

	proc, err := h.engine.Activate(r.Context(), r.PathValue("id"), req.Step, actorFromRequest(r), req.Fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proc)
}
