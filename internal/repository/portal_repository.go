package repository

import (
	"context"
	"portal-api/internal/models"
	"portal-api/internal/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PortalRepository interface {
	Create(ctx context.Context, portal *models.Portal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Portal, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Portal, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	CountCustomDomainsByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	SetCustomDomain(ctx context.Context, id uuid.UUID, domain *string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type portalRepository struct {
	db *gorm.DB
}

func NewPortalRepository(db *gorm.DB) PortalRepository {
	return &portalRepository{db: db}
}

func (r *portalRepository) Create(ctx context.Context, portal *models.Portal) error {
	result := r.db.WithContext(ctx).Create(portal)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to create portal")
	}
	return nil
}

func (r *portalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Portal, error) {
	var portal models.Portal
	result := r.db.WithContext(ctx).First(&portal, "id = ?", id)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(result.Error, "failed to get portal by ID")
	}

	return &portal, nil
}

func (r *portalRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Portal, error) {
	var portals []models.Portal

	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&portals).Error

	return portals, err
}

func (r *portalRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Portal{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	return count, err
}

func (r *portalRepository) CountCustomDomainsByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Portal{}).
		Where("owner_id = ? AND custom_domain IS NOT NULL", ownerID).
		Count(&count).Error
	return count, err
}

func (r *portalRepository) SetCustomDomain(ctx context.Context, id uuid.UUID, domain *string) error {
	result := r.db.WithContext(ctx).Model(&models.Portal{}).
		Where("id = ?", id).
		Update("custom_domain", domain)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to set custom domain")
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (r *portalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Portal{}, "id = ?", id)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete portal")
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound
	}
	return nil
}
