package handlers

import "net/http"

// CancelHandler cancels a running process.
type CancelHandler struct {
	engine ProcessEngine
}

// NewCancelHandler creates a new CancelHandler.
func NewCancelHandler(engine ProcessEngine) *CancelHandler {
	return &CancelHandler{engine: engine}
}

// ServeHTTP implements http.Handler.
func (h *CancelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	proc, err := h.engine.Cancel(r.Context(), r.PathValue("id"), actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proc)
}
