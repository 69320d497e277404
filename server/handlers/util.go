package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/talentops/onboard/callback"
	"github.com/talentops/onboard/engine"
	"github.com/talentops/onboard/model"
	"github.com/talentops/onboard/registry"
	"github.com/talentops/onboard/service/dao"
)

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var (
		validation *model.ValidationError
		immutable  *model.ImmutableFieldError
		mismatch   *callback.CorrelationMismatchError
		authz      *engine.AuthorizationError
		transition *engine.InvalidTransitionError
		execution  *engine.StepExecutionError
	)
	switch {
	case errors.As(err, &validation),
		errors.As(err, &mismatch),
		errors.Is(err, registry.ErrUnknownStep):
		return http.StatusBadRequest
	case errors.As(err, &authz):
		return http.StatusForbidden
	case errors.Is(err, dao.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &transition), errors.As(err, &immutable):
		return http.StatusConflict
	case errors.As(err, &execution):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// actorFromRequest builds the acting identity from request headers. The
// X-Actor-Capabilities header carries a comma-separated capability list.
// A header-supplied "system" id grants no special powers; only the engine
// itself acts as the system identity.
func actorFromRequest(r *http.Request) model.Actor {
	actor := model.Actor{ID: r.Header.Get("X-Actor-Id")}
	if raw := r.Header.Get("X-Actor-Capabilities"); raw != "" {
		for _, cap := range strings.Split(raw, ",") {
			if cap = strings.TrimSpace(cap); cap != "" {
				actor.Capabilities = append(actor.Capabilities, cap)
			}
		}
	}
	return actor
}
