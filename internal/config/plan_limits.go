package config

import "portal-api/internal/models"

// Unlimited marks a plan ceiling that is never enforced.
const Unlimited = -1

// PlanLimits are the per-plan resource ceilings. Immutable at runtime.
type PlanLimits struct {
	MaxPortals       int
	MaxTeamMembers   int   // seats, the owner counts as one
	MaxCustomDomains int
	MaxStorageBytes  int64
}

type PlanLimitConfig struct {
	Limits map[models.SubscriptionPlan]PlanLimits
}

func NewPlanLimitConfig() *PlanLimitConfig {
	return &PlanLimitConfig{
		Limits: map[models.SubscriptionPlan]PlanLimits{
			models.FreePlan: {
				MaxPortals:       3,
				MaxTeamMembers:   2,
				MaxCustomDomains: 1,
				MaxStorageBytes:  1 << 30, // 1 GB
			},
			models.ProPlan: {
				MaxPortals:       25,
				MaxTeamMembers:   10,
				MaxCustomDomains: 5,
				MaxStorageBytes:  50 << 30, // 50 GB
			},
			models.EnterprisePlan: {
				MaxPortals:       Unlimited,
				MaxTeamMembers:   Unlimited,
				MaxCustomDomains: Unlimited,
				MaxStorageBytes:  Unlimited,
			},
		},
	}
}

// ForPlan returns the ceilings for a plan, falling back to the free tier for
// unknown plan values.
func (c *PlanLimitConfig) ForPlan(plan models.SubscriptionPlan) PlanLimits {
	if limits, ok := c.Limits[plan]; ok {
		return limits
	}
	return c.Limits[models.FreePlan]
}
