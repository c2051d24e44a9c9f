package services

import (
	"context"
	"testing"

	"portal-api/internal/config"
	"portal-api/internal/models"
	"portal-api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePortalRepo struct {
	repository.PortalRepository
	portals int64
	domains int64
}

func (f *fakePortalRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return f.portals, nil
}

func (f *fakePortalRepo) CountCustomDomainsByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return f.domains, nil
}

type fakePortalFileRepo struct {
	repository.PortalFileRepository
	bytes int64
}

func (f *fakePortalFileRepo) SumSizeByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return f.bytes, nil
}

type fakeTeamRepo struct {
	repository.TeamRepository
	members int64
}

func (f *fakeTeamRepo) CountMembersByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return f.members, nil
}

func newQuotaFixture(portals, domains, members, bytes int64) QuotaService {
	return NewQuotaService(
		&fakePortalRepo{portals: portals, domains: domains},
		&fakePortalFileRepo{bytes: bytes},
		&fakeTeamRepo{members: members},
		config.NewPlanLimitConfig(),
	)
}

func TestCheckPortalLimitBelowCeiling(t *testing.T) {
	// Free plan allows 3 portals; at 2 the next create passes.
	service := newQuotaFixture(2, 0, 0, 0)

	result, err := service.CheckPortalLimit(context.Background(), uuid.New(), models.FreePlan)

	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, int64(2), result.Current)
	assert.Equal(t, int64(3), result.Limit)
	assert.Empty(t, result.Reason)
}

func TestCheckPortalLimitAtCeilingDenies(t *testing.T) {
	// Equality denies: 3 of 3 used means no more portals.
	service := newQuotaFixture(3, 0, 0, 0)

	result, err := service.CheckPortalLimit(context.Background(), uuid.New(), models.FreePlan)

	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, int64(3), result.Current)
	assert.Equal(t, int64(3), result.Limit)
	assert.NotEmpty(t, result.Reason)
}

func TestCheckTeamMemberLimitCountsOwnerSeat(t *testing.T) {
	// One member plus the owner fills the free plan's 2 seats.
	service := newQuotaFixture(0, 0, 1, 0)

	result, err := service.CheckTeamMemberLimit(context.Background(), uuid.New(), models.FreePlan)

	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, int64(2), result.Current)
	assert.Equal(t, int64(2), result.Limit)
}

func TestCheckTeamMemberLimitOwnerOnly(t *testing.T) {
	service := newQuotaFixture(0, 0, 0, 0)

	result, err := service.CheckTeamMemberLimit(context.Background(), uuid.New(), models.FreePlan)

	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, int64(1), result.Current)
}

func TestCheckCustomDomainLimit(t *testing.T) {
	service := newQuotaFixture(0, 1, 0, 0)

	result, err := service.CheckCustomDomainLimit(context.Background(), uuid.New(), models.FreePlan)

	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, int64(1), result.Current)
	assert.Equal(t, int64(1), result.Limit)
}

func TestCheckStorageLimitBoundary(t *testing.T) {
	free := config.NewPlanLimitConfig().ForPlan(models.FreePlan)

	service := newQuotaFixture(0, 0, 0, free.MaxStorageBytes-1)
	result, err := service.CheckStorageLimit(context.Background(), uuid.New(), models.FreePlan)
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	service = newQuotaFixture(0, 0, 0, free.MaxStorageBytes)
	result, err = service.CheckStorageLimit(context.Background(), uuid.New(), models.FreePlan)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, free.MaxStorageBytes, result.Current)
}

func TestUnlimitedPlanAlwaysAllows(t *testing.T) {
	service := newQuotaFixture(100000, 5000, 9000, 1<<50)
	ctx := context.Background()
	userID := uuid.New()

	for name, check := range map[string]func() (*QuotaResult, error){
		"portals": func() (*QuotaResult, error) {
			return service.CheckPortalLimit(ctx, userID, models.EnterprisePlan)
		},
		"team members": func() (*QuotaResult, error) {
			return service.CheckTeamMemberLimit(ctx, userID, models.EnterprisePlan)
		},
		"custom domains": func() (*QuotaResult, error) {
			return service.CheckCustomDomainLimit(ctx, userID, models.EnterprisePlan)
		},
		"storage": func() (*QuotaResult, error) {
			return service.CheckStorageLimit(ctx, userID, models.EnterprisePlan)
		},
	} {
		result, err := check()
		require.NoError(t, err, name)
		assert.True(t, result.Allowed, name)
		assert.Equal(t, int64(config.Unlimited), result.Limit, name)
	}
}

func TestUnknownPlanFallsBackToFree(t *testing.T) {
	service := newQuotaFixture(3, 0, 0, 0)

	result, err := service.CheckPortalLimit(context.Background(), uuid.New(), models.SubscriptionPlan("LEGACY"))

	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, int64(3), result.Limit)
}
