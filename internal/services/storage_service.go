package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"portal-api/internal/logger"
	"portal-api/internal/models"
	apperrors "portal-api/internal/pkg/errors"
	"portal-api/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// listingCacheTTL is short on purpose: listings are a convenience cache,
// quota math never reads them.
const listingCacheTTL = 30 * time.Second

// StorageService drives provider file operations through the token
// lifecycle: obtain a valid token, pick the provider variant, perform the
// call.
type StorageService interface {
	ListFiles(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider) ([]storage.File, error)
	DeleteFile(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider, fileID string) error
}

type storageService struct {
	tokenService TokenService
	providers    storage.Registry
	cache        CacheService
	auditLog     AuditLogService
}

func NewStorageService(
	tokenService TokenService,
	providers storage.Registry,
	cache CacheService,
	auditLog AuditLogService,
) StorageService {
	return &storageService{
		tokenService: tokenService,
		providers:    providers,
		cache:        cache,
		auditLog:     auditLog,
	}
}

func (s *storageService) ListFiles(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider) ([]storage.File, error) {
	p, ok := s.providers.ForProvider(provider)
	if !ok {
		return nil, ErrUnsupportedProvider
	}

	token, err := s.tokenService.GetValidToken(ctx, userID, provider)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, apperrors.ErrNotConnected
	}

	cacheKey := listingCacheKey(userID, provider)
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		var files []storage.File
		if err := json.Unmarshal([]byte(cached), &files); err == nil {
			return files, nil
		}
	}

	files, err := p.List(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, files, listingCacheTTL); err != nil {
		logger.LogEvent(logrus.DebugLevel, "Failed to cache file listing", logrus.Fields{"error": err.Error()})
	}

	return files, nil
}

func (s *storageService) DeleteFile(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider, fileID string) error {
	p, ok := s.providers.ForProvider(provider)
	if !ok {
		return ErrUnsupportedProvider
	}

	token, err := s.tokenService.GetValidToken(ctx, userID, provider)
	if err != nil {
		return err
	}
	if token == "" {
		return apperrors.ErrNotConnected
	}

	if err := p.Delete(ctx, token, fileID); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, listingCacheKey(userID, provider)); err != nil {
		logger.LogEvent(logrus.DebugLevel, "Failed to invalidate file listing cache", logrus.Fields{"error": err.Error()})
	}

	if err := s.auditLog.CreateAuditLog(ctx, userID.String(), "delete", "provider_file", fileID, string(provider)); err != nil {
		logger.LogEvent(logrus.WarnLevel, "Failed to write audit log", logrus.Fields{"error": err.Error()})
	}

	return nil
}

func listingCacheKey(userID uuid.UUID, provider models.OAuthProvider) string {
	return fmt.Sprintf("storage:listing:%s:%s", userID, provider)
}
