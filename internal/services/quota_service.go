package services

import (
	"context"
	"fmt"

	"portal-api/internal/config"
	"portal-api/internal/models"
	"portal-api/internal/repository"

	"github.com/google/uuid"
)

// QuotaResult reports one quota evaluation. Current and Limit are returned
// so callers can render "X of Y used"; Limit is -1 for unlimited plans.
type QuotaResult struct {
	Allowed bool   `json:"allowed"`
	Current int64  `json:"current"`
	Limit   int64  `json:"limit"`
	Reason  string `json:"reason,omitempty"`
}

// QuotaError carries a denied evaluation so handlers can surface the
// current/limit pair to the end user.
type QuotaError struct {
	Result *QuotaResult
}

func (e *QuotaError) Error() string {
	return e.Result.Reason
}

// QuotaService evaluates current usage against plan ceilings. Every check
// counts fresh from the store; results are never cached, so a check always
// reflects persisted state at call time. Checks only compute; the caller
// performing the mutation must check immediately before it and reject on a
// denial. Two concurrent creations can both pass and overrun the ceiling by
// one; that bounded overrun is accepted.
type QuotaService interface {
	CheckPortalLimit(ctx context.Context, userID uuid.UUID, plan models.SubscriptionPlan) (*QuotaResult, error)
	CheckTeamMemberLimit(ctx context.Context, userID uuid.UUID, plan models.SubscriptionPlan) (*QuotaResult, error)
	CheckCustomDomainLimit(ctx context.Context, userID uuid.UUID, plan models.SubscriptionPlan) (*QuotaResult, error)
	CheckStorageLimit(ctx context.Context, userID uuid.UUID, plan models.SubscriptionPlan) (*QuotaResult, error)
}

type quotaService struct {
	portalRepo     repository.PortalRepository
	portalFileRepo repository.PortalFileRepository
	teamRepo       repository.TeamRepository
	planLimits     *config.PlanLimitConfig
}

func NewQuotaService(
	portalRepo repository.PortalRepository,
	portalFileRepo repository.PortalFileRepository,
	teamRepo repository.TeamRepository,
	planLimits *config.PlanLimitConfig,
) QuotaService {
	return &quotaService{
		portalRepo:     portalRepo,
		portalFileRepo: portalFileRepo,
		teamRepo:       teamRepo,
		planLimits:     planLimits,
	}
}

func (s *quotaService) CheckPortalLimit(ctx context.Context, userID uuid.UUID, plan models.SubscriptionPlan) (*QuotaResult, error) {
	current, err := s.portalRepo.CountByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	limit := int64(s.planLimits.ForPlan(plan).MaxPortals)
	return evaluate(current, limit, "portal"), nil
}

func (s *quotaService) CheckTeamMemberLimit(ctx context.Context, userID uuid.UUID, plan models.SubscriptionPlan) (*QuotaResult, error) {
	members, err := s.teamRepo.CountMembersByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The owner occupies a seat on every plan.
	current := members + 1
	limit := int64(s.planLimits.ForPlan(plan).MaxTeamMembers)
	return evaluate(current, limit, "team member"), nil
}

func (s *quotaService) CheckCustomDomainLimit(ctx context.Context, userID uuid.UUID, plan models.SubscriptionPlan) (*QuotaResult, error) {
	current, err := s.portalRepo.CountCustomDomainsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	limit := int64(s.planLimits.ForPlan(plan).MaxCustomDomains)
	return evaluate(current, limit, "custom domain"), nil
}

func (s *quotaService) CheckStorageLimit(ctx context.Context, userID uuid.UUID, plan models.SubscriptionPlan) (*QuotaResult, error) {
	current, err := s.portalFileRepo.SumSizeByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	limit := s.planLimits.ForPlan(plan).MaxStorageBytes
	return evaluate(current, limit, "storage byte"), nil
}

// evaluate applies the shared ceiling rule: equality denies, and the
// unlimited sentinel always allows.
func evaluate(current, limit int64, resource string) *QuotaResult {
	if limit == config.Unlimited {
		return &QuotaResult{Allowed: true, Current: current, Limit: config.Unlimited}
	}

	result := &QuotaResult{
		Allowed: current < limit,
		Current: current,
		Limit:   limit,
	}
	if !result.Allowed {
		result.Reason = fmt.Sprintf("%s limit reached (%d of %d used)", resource, current, limit)
	}
	return result
}
