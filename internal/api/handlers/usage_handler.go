package handlers

import (
	"net/http"

	"portal-api/internal/services"
)

// UsageHandler reports current usage against the plan's ceilings so the UI
// can render "X of Y used". Every snapshot is computed fresh per request.
type UsageHandler struct {
	quotaService services.QuotaService
}

func NewUsageHandler(quotaService services.QuotaService) *UsageHandler {
	return &UsageHandler{
		quotaService: quotaService,
	}
}

type usageResponse struct {
	Plan          string                `json:"plan"`
	Portals       *services.QuotaResult `json:"portals"`
	TeamMembers   *services.QuotaResult `json:"team_members"`
	CustomDomains *services.QuotaResult `json:"custom_domains"`
	StorageBytes  *services.QuotaResult `json:"storage_bytes"`
}

// GetUsage godoc
// @Summary Current usage against plan limits
// @Tags usage
// @Produce json
// @Success 200 {object} usageResponse
// @Router /usage [get]
func (h *UsageHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	user, subscription, ok := requireUserAndSubscription(w, r)
	if !ok {
		return
	}

	ctx := r.Context()

	portals, err := h.quotaService.CheckPortalLimit(ctx, user.ID, subscription.PlanType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	teamMembers, err := h.quotaService.CheckTeamMemberLimit(ctx, user.ID, subscription.PlanType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	customDomains, err := h.quotaService.CheckCustomDomainLimit(ctx, user.ID, subscription.PlanType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	storageBytes, err := h.quotaService.CheckStorageLimit(ctx, user.ID, subscription.PlanType)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, usageResponse{
		Plan:          string(subscription.PlanType),
		Portals:       portals,
		TeamMembers:   teamMembers,
		CustomDomains: customDomains,
		StorageBytes:  storageBytes,
	})
}
