package repository

import (
	"context"
	"portal-api/internal/models"
	"portal-api/internal/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PortalFileRepository interface {
	Create(ctx context.Context, file *models.PortalFile) error
	ListByPortal(ctx context.Context, portalID uuid.UUID) ([]models.PortalFile, error)
	SumSizeByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type portalFileRepository struct {
	db *gorm.DB
}

func NewPortalFileRepository(db *gorm.DB) PortalFileRepository {
	return &portalFileRepository{db: db}
}

func (r *portalFileRepository) Create(ctx context.Context, file *models.PortalFile) error {
	result := r.db.WithContext(ctx).Create(file)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to create portal file")
	}
	return nil
}

func (r *portalFileRepository) ListByPortal(ctx context.Context, portalID uuid.UUID) ([]models.PortalFile, error) {
	var files []models.PortalFile

	err := r.db.WithContext(ctx).
		Where("portal_id = ?", portalID).
		Order("name ASC").
		Find(&files).Error

	return files, err
}

// SumSizeByOwner is the byte-accurate storage usage across all of the owner's
// portals.
func (r *portalFileRepository) SumSizeByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var total int64

	err := r.db.WithContext(ctx).Model(&models.PortalFile{}).
		Joins("JOIN portals ON portals.id = portal_files.portal_id").
		Where("portals.owner_id = ? AND portals.deleted_at IS NULL", ownerID).
		Select("COALESCE(SUM(portal_files.size_bytes), 0)").
		Scan(&total).Error

	return total, err
}

func (r *portalFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PortalFile{}, "id = ?", id)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete portal file")
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound
	}
	return nil
}
