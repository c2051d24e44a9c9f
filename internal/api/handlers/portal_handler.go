package handlers

import (
	"encoding/json"
	"net/http"

	"portal-api/internal/models"
	"portal-api/internal/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type PortalHandler struct {
	portalService services.PortalService
}

func NewPortalHandler(portalService services.PortalService) *PortalHandler {
	return &PortalHandler{
		portalService: portalService,
	}
}

type createPortalRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type setDomainRequest struct {
	Domain *string `json:"domain"`
}

type attachFileRequest struct {
	Provider       string `json:"provider"`
	ProviderFileID string `json:"provider_file_id"`
	Name           string `json:"name"`
	SizeBytes      int64  `json:"size_bytes"`
}

// CreatePortal godoc
// @Summary Create a portal
// @Tags portals
// @Accept json
// @Produce json
// @Param portal body createPortalRequest true "Portal details"
// @Success 201 {object} models.Portal
// @Failure 403 {object} quotaDeniedResponse
// @Router /portals [post]
func (h *PortalHandler) CreatePortal(w http.ResponseWriter, r *http.Request) {
	user, subscription, ok := requireUserAndSubscription(w, r)
	if !ok {
		return
	}

	var req createPortalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Slug == "" {
		http.Error(w, "Name and slug are required", http.StatusBadRequest)
		return
	}

	portal, err := h.portalService.CreatePortal(r.Context(), user.ID, subscription.PlanType, req.Name, req.Slug)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, portal)
}

func (h *PortalHandler) ListPortals(w http.ResponseWriter, r *http.Request) {
	user, ok := services.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	portals, err := h.portalService.ListPortals(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"portals": portals})
}

// SetCustomDomain assigns or clears a portal's custom domain. Assignment is
// gated on the plan's domain ceiling.
func (h *PortalHandler) SetCustomDomain(w http.ResponseWriter, r *http.Request) {
	user, subscription, ok := requireUserAndSubscription(w, r)
	if !ok {
		return
	}

	portalID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid portal ID", http.StatusBadRequest)
		return
	}

	var req setDomainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.portalService.SetCustomDomain(r.Context(), user.ID, subscription.PlanType, portalID, req.Domain); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AttachFile registers a provider file on the portal; gated on the storage
// byte ceiling.
func (h *PortalHandler) AttachFile(w http.ResponseWriter, r *http.Request) {
	user, subscription, ok := requireUserAndSubscription(w, r)
	if !ok {
		return
	}

	portalID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid portal ID", http.StatusBadRequest)
		return
	}

	var req attachFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProviderFileID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	provider := models.OAuthProvider(req.Provider)
	if !models.ValidProvider(provider) {
		http.Error(w, "Unsupported provider", http.StatusBadRequest)
		return
	}

	file := &models.PortalFile{
		PortalID:       portalID,
		Provider:       provider,
		ProviderFileID: req.ProviderFileID,
		Name:           req.Name,
		SizeBytes:      req.SizeBytes,
	}

	if err := h.portalService.AttachFile(r.Context(), user.ID, subscription.PlanType, file); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, file)
}

func (h *PortalHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	if _, ok := services.UserFromContext(r.Context()); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	portalID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid portal ID", http.StatusBadRequest)
		return
	}

	files, err := h.portalService.ListFiles(r.Context(), portalID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

func (h *PortalHandler) DeletePortal(w http.ResponseWriter, r *http.Request) {
	user, ok := services.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	portalID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid portal ID", http.StatusBadRequest)
		return
	}

	if err := h.portalService.DeletePortal(r.Context(), user.ID, portalID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// requireUserAndSubscription pulls both context values or writes the
// appropriate error.
func requireUserAndSubscription(w http.ResponseWriter, r *http.Request) (*models.User, *models.Subscription, bool) {
	user, ok := services.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, nil, false
	}
	subscription, ok := services.SubscriptionFromContext(r.Context())
	if !ok {
		http.Error(w, "Subscription not found", http.StatusForbidden)
		return nil, nil, false
	}
	return user, subscription, true
}
