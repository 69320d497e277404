package handlers

import (
	"net/http"

	"github.com/talentops/onboard/model"
	"github.com/talentops/onboard/service/dao"
)

// ListResponse defines the response body for GET /processes.
type ListResponse struct {
	Processes []*model.Process `json:"processes"`
}

// ListProcessesHandler returns processes, optionally filtered by status.
type ListProcessesHandler struct {
	engine ProcessEngine
}

// NewListProcessesHandler creates a new ListProcessesHandler.
func NewListProcessesHandler(engine ProcessEngine) *ListProcessesHandler {
	return &ListProcessesHandler{engine: engine}
}

// ServeHTTP implements http.Handler.
func (h *ListProcessesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var parameters []*dao.Parameter
	if statuses := r.URL.Query()["status"]; len(statuses) > 0 {
		parameters = append(parameters, dao.NewParameter("Status", statuses...))
	}

	processes, err := h.engine.List(r.Context(), parameters...)
	if err != nil {
		writeError(w, err)
		return
	}
	if processes == nil {
		processes = []*model.Process{}
	}
	writeJSON(w, http.StatusOK, ListResponse{Processes: processes})
}
