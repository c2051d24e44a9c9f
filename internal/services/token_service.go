package services

import (
	"context"
	"errors"
	"time"

	"portal-api/internal/logger"
	"portal-api/internal/models"
	"portal-api/internal/oauth"
	"portal-api/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrUnsupportedProvider = errors.New("unsupported storage provider")

// TokenService owns the credential lifecycle for storage providers: connect
// (code exchange), disconnect, and handing out a currently-valid access
// token, refreshing transparently when the stored one has expired.
type TokenService interface {
	// GetValidToken returns a usable access token for the pair, or "" when
	// the provider is not connected or cannot be refreshed. The two cases
	// are deliberately indistinguishable to the caller; logs tell them
	// apart.
	GetValidToken(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider) (string, error)
	Connect(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider, code string) error
	Disconnect(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider) error
	Connections(ctx context.Context, userID uuid.UUID) ([]models.OAuthCredential, error)
}

type tokenService struct {
	credentialRepo repository.CredentialRepository
	providers      oauth.Registry
	auditLog       AuditLogService
	now            func() time.Time
}

func NewTokenService(credentialRepo repository.CredentialRepository, providers oauth.Registry, auditLog AuditLogService) TokenService {
	return &tokenService{
		credentialRepo: credentialRepo,
		providers:      providers,
		auditLog:       auditLog,
		now:            time.Now,
	}
}

func (s *tokenService) GetValidToken(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider) (string, error) {
	credential, err := s.credentialRepo.Get(ctx, userID, provider)
	if errors.Is(err, repository.ErrCredentialNotFound) {
		// Not connected is a normal state, not an error.
		return "", nil
	}
	if err != nil {
		return "", err
	}

	if !credential.ExpiredAt(s.now()) {
		return credential.AccessToken, nil
	}

	// Expired: refresh exactly once. Concurrent callers may each refresh
	// independently; every successful refresh yields a valid token and the
	// store keeps the most recent writer.
	if credential.RefreshToken == nil || *credential.RefreshToken == "" {
		logger.LogEvent(logrus.WarnLevel, "Access token expired with no refresh token stored", logrus.Fields{
			"user_id":  userID.String(),
			"provider": string(provider),
		})
		return "", nil
	}

	client, ok := s.providers.ForProvider(provider)
	if !ok {
		logger.LogEvent(logrus.ErrorLevel, "No OAuth client configured for provider", logrus.Fields{
			"provider": string(provider),
		})
		return "", nil
	}

	token, err := client.Refresh(ctx, *credential.RefreshToken)
	if err != nil {
		// The stale record stays in place; the caller sees the same "" as
		// a never-connected user so provider error detail never leaks.
		logger.LogEvent(logrus.WarnLevel, "Token refresh failed", logrus.Fields{
			"user_id":  userID.String(),
			"provider": string(provider),
			"error":    err.Error(),
		})
		return "", nil
	}

	if err := s.credentialRepo.UpdateToken(ctx, userID, provider, token.AccessToken, token.ExpiresAt); err != nil {
		return "", err
	}

	return token.AccessToken, nil
}

func (s *tokenService) Connect(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider, code string) error {
	client, ok := s.providers.ForProvider(provider)
	if !ok {
		return ErrUnsupportedProvider
	}

	token, err := client.Exchange(ctx, code)
	if err != nil {
		return err
	}

	credential := &models.OAuthCredential{
		UserID:      userID,
		Provider:    provider,
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
	}
	if token.RefreshToken != "" {
		credential.RefreshToken = &token.RefreshToken
	}

	if err := s.credentialRepo.Upsert(ctx, credential); err != nil {
		return err
	}

	if err := s.auditLog.CreateAuditLog(ctx, userID.String(), "connect", "oauth_credential", string(provider), ""); err != nil {
		logger.LogEvent(logrus.WarnLevel, "Failed to write audit log", logrus.Fields{"error": err.Error()})
	}

	return nil
}

func (s *tokenService) Disconnect(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider) error {
	if err := s.credentialRepo.Delete(ctx, userID, provider); err != nil {
		return err
	}

	if err := s.auditLog.CreateAuditLog(ctx, userID.String(), "disconnect", "oauth_credential", string(provider), ""); err != nil {
		logger.LogEvent(logrus.WarnLevel, "Failed to write audit log", logrus.Fields{"error": err.Error()})
	}

	return nil
}

func (s *tokenService) Connections(ctx context.Context, userID uuid.UUID) ([]models.OAuthCredential, error) {
	return s.credentialRepo.ListByUser(ctx, userID)
}
