package handlers

import "net/http"

// GetProcessHandler returns a single process by id.
type GetProcessHandler struct {
	engine ProcessEngine
}

// NewGetProcessHandler creates a new GetProcessHandler.
func NewGetProcessHandler(engine ProcessEngine) *GetProcessHandler {
	return &GetProcessHandler{engine: engine}
}

// ServeHTTP implements http.Handler.
func (h *GetProcessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	proc, err := h.engine.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proc)
}
