package handlers

import (
	"net/http"

	"portal-api/internal/models"
	"portal-api/internal/services"

	"github.com/gorilla/mux"
)

// StorageHandler exposes the provider-agnostic file operations.
type StorageHandler struct {
	storageService services.StorageService
}

func NewStorageHandler(storageService services.StorageService) *StorageHandler {
	return &StorageHandler{
		storageService: storageService,
	}
}

// ListFiles godoc
// @Summary List files in the user's connected provider
// @Tags storage
// @Produce json
// @Param provider path string true "Provider (google or dropbox)"
// @Success 200 {object} map[string]interface{}
// @Router /storage/{provider}/files [get]
func (h *StorageHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
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

	files, err := h.storageService.ListFiles(r.Context(), user.ID, provider)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

// DeleteFile godoc
// @Summary Delete a file at the provider
// @Tags storage
// @Param provider path string true "Provider (google or dropbox)"
// @Param id path string true "Provider file ID"
// @Success 204
// @Router /storage/{provider}/files/{id} [delete]
func (h *StorageHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	user, ok := services.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	provider := models.OAuthProvider(vars["provider"])
	if !models.ValidProvider(provider) {
		http.Error(w, "Unsupported provider", http.StatusBadRequest)
		return
	}

	if err := h.storageService.DeleteFile(r.Context(), user.ID, provider, vars["id"]); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
