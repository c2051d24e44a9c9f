package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"portal-api/internal/models"
	"portal-api/internal/oauth"
	"portal-api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCredentialRepo struct {
	records map[string]*models.OAuthCredential
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{records: make(map[string]*models.OAuthCredential)}
}

func credentialKey(userID uuid.UUID, provider models.OAuthProvider) string {
	return fmt.Sprintf("%s/%s", userID, provider)
}

func (f *fakeCredentialRepo) Get(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider) (*models.OAuthCredential, error) {
	record, ok := f.records[credentialKey(userID, provider)]
	if !ok {
		return nil, repository.ErrCredentialNotFound
	}
	copied := *record
	return &copied, nil
}

func (f *fakeCredentialRepo) Upsert(ctx context.Context, credential *models.OAuthCredential) error {
	f.records[credentialKey(credential.UserID, credential.Provider)] = credential
	return nil
}

func (f *fakeCredentialRepo) UpdateToken(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider, accessToken string, expiresAt *time.Time) error {
	record, ok := f.records[credentialKey(userID, provider)]
	if !ok {
		return repository.ErrCredentialNotFound
	}
	record.AccessToken = accessToken
	record.ExpiresAt = expiresAt
	return nil
}

func (f *fakeCredentialRepo) Delete(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider) error {
	key := credentialKey(userID, provider)
	if _, ok := f.records[key]; !ok {
		return repository.ErrCredentialNotFound
	}
	delete(f.records, key)
	return nil
}

func (f *fakeCredentialRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.OAuthCredential, error) {
	var out []models.OAuthCredential
	for _, record := range f.records {
		if record.UserID == userID {
			out = append(out, *record)
		}
	}
	return out, nil
}

type fakeOAuthClient struct {
	token        *oauth.Token
	err          error
	refreshCalls int
}

func (f *fakeOAuthClient) Exchange(ctx context.Context, code string) (*oauth.Token, error) {
	return f.token, f.err
}

func (f *fakeOAuthClient) Refresh(ctx context.Context, refreshToken string) (*oauth.Token, error) {
	f.refreshCalls++
	return f.token, f.err
}

type noopAuditLog struct{}

func (noopAuditLog) GetAuditLogs(ctx context.Context, page, pageSize int) ([]models.AuditLog, int64, error) {
	return nil, 0, nil
}

func (noopAuditLog) CreateAuditLog(ctx context.Context, userID, action, entityType, entityID, details string) error {
	return nil
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func TestGetValidTokenNotConnected(t *testing.T) {
	repo := newFakeCredentialRepo()
	service := NewTokenService(repo, oauth.Registry{}, noopAuditLog{})

	token, err := service.GetValidToken(context.Background(), uuid.New(), models.ProviderGoogle)

	// Not connected is a normal state, not an error.
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestGetValidTokenReturnsStoredWhenNotExpired(t *testing.T) {
	userID := uuid.New()
	repo := newFakeCredentialRepo()
	repo.records[credentialKey(userID, models.ProviderGoogle)] = &models.OAuthCredential{
		UserID:      userID,
		Provider:    models.ProviderGoogle,
		AccessToken: "T1",
		ExpiresAt:   timePtr(time.Now().Add(time.Hour)),
	}
	client := &fakeOAuthClient{}
	service := NewTokenService(repo, oauth.Registry{models.ProviderGoogle: client}, noopAuditLog{})

	token, err := service.GetValidToken(context.Background(), userID, models.ProviderGoogle)

	require.NoError(t, err)
	assert.Equal(t, "T1", token)
	assert.Zero(t, client.refreshCalls)
}

func TestGetValidTokenNonExpiringCredential(t *testing.T) {
	userID := uuid.New()
	repo := newFakeCredentialRepo()
	repo.records[credentialKey(userID, models.ProviderDropbox)] = &models.OAuthCredential{
		UserID:      userID,
		Provider:    models.ProviderDropbox,
		AccessToken: "T1",
	}
	client := &fakeOAuthClient{}
	service := NewTokenService(repo, oauth.Registry{models.ProviderDropbox: client}, noopAuditLog{})

	token, err := service.GetValidToken(context.Background(), userID, models.ProviderDropbox)

	require.NoError(t, err)
	assert.Equal(t, "T1", token)
	assert.Zero(t, client.refreshCalls)
}

func TestGetValidTokenRefreshesExpired(t *testing.T) {
	userID := uuid.New()
	repo := newFakeCredentialRepo()
	repo.records[credentialKey(userID, models.ProviderGoogle)] = &models.OAuthCredential{
		UserID:       userID,
		Provider:     models.ProviderGoogle,
		AccessToken:  "T1",
		RefreshToken: strPtr("R1"),
		ExpiresAt:    timePtr(time.Now().Add(-10 * time.Second)),
	}
	client := &fakeOAuthClient{token: &oauth.Token{
		AccessToken: "T2",
		ExpiresAt:   timePtr(time.Now().Add(time.Hour)),
	}}
	service := NewTokenService(repo, oauth.Registry{models.ProviderGoogle: client}, noopAuditLog{})

	token, err := service.GetValidToken(context.Background(), userID, models.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "T2", token)
	require.Equal(t, 1, client.refreshCalls)

	// The new token was persisted: a second call inside its validity
	// window returns it without another refresh.
	token, err = service.GetValidToken(context.Background(), userID, models.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "T2", token)
	assert.Equal(t, 1, client.refreshCalls)
}

func TestGetValidTokenRefreshFailureLeavesRecord(t *testing.T) {
	userID := uuid.New()
	repo := newFakeCredentialRepo()
	repo.records[credentialKey(userID, models.ProviderGoogle)] = &models.OAuthCredential{
		UserID:       userID,
		Provider:     models.ProviderGoogle,
		AccessToken:  "T1",
		RefreshToken: strPtr("R1"),
		ExpiresAt:    timePtr(time.Now().Add(-10 * time.Second)),
	}
	client := &fakeOAuthClient{err: fmt.Errorf("refresh token revoked")}
	service := NewTokenService(repo, oauth.Registry{models.ProviderGoogle: client}, noopAuditLog{})

	token, err := service.GetValidToken(context.Background(), userID, models.ProviderGoogle)

	// Refresh failure looks exactly like "not connected" to the caller.
	require.NoError(t, err)
	assert.Empty(t, token)

	// The stale record stays in place.
	record, err := repo.Get(context.Background(), userID, models.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "T1", record.AccessToken)
}

func TestGetValidTokenExpiredWithoutRefreshToken(t *testing.T) {
	userID := uuid.New()
	repo := newFakeCredentialRepo()
	repo.records[credentialKey(userID, models.ProviderDropbox)] = &models.OAuthCredential{
		UserID:      userID,
		Provider:    models.ProviderDropbox,
		AccessToken: "T1",
		ExpiresAt:   timePtr(time.Now().Add(-time.Minute)),
	}
	client := &fakeOAuthClient{}
	service := NewTokenService(repo, oauth.Registry{models.ProviderDropbox: client}, noopAuditLog{})

	token, err := service.GetValidToken(context.Background(), userID, models.ProviderDropbox)

	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Zero(t, client.refreshCalls)
}

func TestConnectStoresCredential(t *testing.T) {
	userID := uuid.New()
	repo := newFakeCredentialRepo()
	client := &fakeOAuthClient{token: &oauth.Token{
		AccessToken:  "A1",
		RefreshToken: "R1",
		ExpiresAt:    timePtr(time.Now().Add(time.Hour)),
	}}
	service := NewTokenService(repo, oauth.Registry{models.ProviderGoogle: client}, noopAuditLog{})

	require.NoError(t, service.Connect(context.Background(), userID, models.ProviderGoogle, "code"))

	record, err := repo.Get(context.Background(), userID, models.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "A1", record.AccessToken)
	require.NotNil(t, record.RefreshToken)
	assert.Equal(t, "R1", *record.RefreshToken)
}

func TestDisconnectRemovesCredential(t *testing.T) {
	userID := uuid.New()
	repo := newFakeCredentialRepo()
	repo.records[credentialKey(userID, models.ProviderDropbox)] = &models.OAuthCredential{
		UserID:      userID,
		Provider:    models.ProviderDropbox,
		AccessToken: "T1",
	}
	service := NewTokenService(repo, oauth.Registry{}, noopAuditLog{})

	require.NoError(t, service.Disconnect(context.Background(), userID, models.ProviderDropbox))

	_, err := repo.Get(context.Background(), userID, models.ProviderDropbox)
	assert.ErrorIs(t, err, repository.ErrCredentialNotFound)
}
