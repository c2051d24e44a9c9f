package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"portal-api/internal/models"
	"portal-api/internal/repository"
	"portal-api/internal/services"

	"github.com/gorilla/mux"
)

// OAuthHandler manages storage provider connections.
type OAuthHandler struct {
	tokenService services.TokenService
}

func NewOAuthHandler(tokenService services.TokenService) *OAuthHandler {
	return &OAuthHandler{
		tokenService: tokenService,
	}
}

type connectRequest struct {
	Code string `json:"code"`
}

type connectionResponse struct {
	Provider  string `json:"provider"`
	Connected bool   `json:"connected"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// Connect exchanges the authorization code returned by the provider and
// stores the credential, replacing any previous one for the pair.
func (h *OAuthHandler) Connect(w http.ResponseWriter, r *http.Request) {
	user, ok := services.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	provider := models.OAuthProvider(mux.Vars(r)["provider"])
	if !models.ValidProvider(provider) {
		http.Error(w, "Unsupported provider", http.StatusBadRequest)
		return
	}

	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		http.Error(w, "Authorization code is required", http.StatusBadRequest)
		return
	}

	if err := h.tokenService.Connect(r.Context(), user.ID, provider, req.Code); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, connectionResponse{
		Provider:  string(provider),
		Connected: true,
	})
}

// Disconnect deletes the stored credential for the provider.
func (h *OAuthHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	user, ok := services.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	provider := models.OAuthProvider(mux.Vars(r)["provider"])
	if !models.ValidProvider(provider) {
		http.Error(w, "Unsupported provider", http.StatusBadRequest)
		return
	}

	err := h.tokenService.Disconnect(r.Context(), user.ID, provider)
	if errors.Is(err, repository.ErrCredentialNotFound) {
		// Already disconnected; nothing to undo.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Connections lists which providers the user has connected.
func (h *OAuthHandler) Connections(w http.ResponseWriter, r *http.Request) {
	user, ok := services.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	credentials, err := h.tokenService.Connections(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	connections := make([]connectionResponse, 0, len(credentials))
	for _, c := range credentials {
		conn := connectionResponse{Provider: string(c.Provider), Connected: true}
		if c.ExpiresAt != nil {
			conn.ExpiresAt = c.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		connections = append(connections, conn)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"connections": connections})
}
