package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "portal-api/internal/pkg/errors"
	"portal-api/internal/services"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type quotaDeniedResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Current int64  `json:"current"`
	Limit   int64  `json:"limit"`
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// writeServiceError maps service failures onto the API's error contract.
// Quota and reconnect conditions are user-actionable, never 500s.
func writeServiceError(w http.ResponseWriter, err error) {
	var quotaErr *services.QuotaError
	if errors.As(err, &quotaErr) {
		writeJSON(w, http.StatusForbidden, quotaDeniedResponse{
			Error:   quotaErr.Result.Reason,
			Code:    "quota_exceeded",
			Current: quotaErr.Result.Current,
			Limit:   quotaErr.Result.Limit,
		})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotConnected):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error: "Provider is not connected",
			Code:  "not_connected",
		})
	case errors.Is(err, apperrors.ErrAuth):
		// The provider rejected the stored token; reconnecting fixes it,
		// retrying does not.
		writeJSON(w, http.StatusConflict, errorResponse{
			Error: "Provider authorization is no longer valid, please reconnect",
			Code:  "reconnect_required",
		})
	case errors.Is(err, apperrors.ErrProvider):
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error: "Storage provider is temporarily unavailable, please try again",
			Code:  "provider_error",
		})
	case errors.Is(err, apperrors.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
	case errors.Is(err, services.ErrNotPortalOwner), errors.Is(err, services.ErrNotTeamOwner):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "Forbidden"})
	case errors.Is(err, services.ErrUnsupportedProvider):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Unsupported provider"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}
