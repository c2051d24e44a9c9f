package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PortalFile is a provider file attached to a portal. SizeBytes is recorded
// at attach time and feeds the storage quota sum.
type PortalFile struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PortalID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"portal_id"`
	Provider       OAuthProvider  `gorm:"type:varchar(20);not null" json:"provider"`
	ProviderFileID string         `gorm:"type:varchar(255);not null" json:"provider_file_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	SizeBytes      int64          `gorm:"not null;default:0" json:"size_bytes"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Portal         Portal         `gorm:"foreignKey:PortalID" json:"-"`
}

func (PortalFile) TableName() string {
	return "portal_files"
}

func (f *PortalFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}

	now := time.Now()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = now
	}

	return nil
}

func (f *PortalFile) BeforeUpdate(tx *gorm.DB) error {
	f.UpdatedAt = time.Now()
	return nil
}
