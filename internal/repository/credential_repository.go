package repository

import (
	"context"
	"errors"
	"portal-api/internal/models"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CredentialRepository is the token store accessor. It is the only component
// that touches the oauth_credentials table.
type CredentialRepository interface {
	Get(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider) (*models.OAuthCredential, error)
	Upsert(ctx context.Context, credential *models.OAuthCredential) error
	UpdateToken(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider, accessToken string, expiresAt *time.Time) error
	Delete(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.OAuthCredential, error)
}

var ErrCredentialNotFound = errors.New("credential not found")

type credentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Get(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider) (*models.OAuthCredential, error) {
	var credential models.OAuthCredential

	err := r.db.WithContext(ctx).
		First(&credential, "user_id = ? AND provider = ?", userID, provider).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}

	return &credential, nil
}

// Upsert replaces any existing record for the (user, provider) pair. A new
// authorization strictly supersedes the old one.
func (r *credentialRepository) Upsert(ctx context.Context, credential *models.OAuthCredential) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "provider"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"access_token", "refresh_token", "expires_at", "updated_at",
			}),
		}).
		Create(credential).Error
}

// UpdateToken overwrites the access token and expiry after a refresh.
// Last writer wins; a newer token always supersedes an older one.
func (r *credentialRepository) UpdateToken(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider, accessToken string, expiresAt *time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.OAuthCredential{}).
		Where("user_id = ? AND provider = ?", userID, provider).
		Updates(map[string]interface{}{
			"access_token": accessToken,
			"expires_at":   expiresAt,
			"updated_at":   time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

func (r *credentialRepository) Delete(ctx context.Context, userID uuid.UUID, provider models.OAuthProvider) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		Delete(&models.OAuthCredential{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

func (r *credentialRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.OAuthCredential, error) {
	var credentials []models.OAuthCredential

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("provider ASC").
		Find(&credentials).Error

	return credentials, err
}
