package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OAuthProvider string

const (
	ProviderGoogle  OAuthProvider = "google"
	ProviderDropbox OAuthProvider = "dropbox"
)

// ValidProvider reports whether p names a supported storage provider.
func ValidProvider(p OAuthProvider) bool {
	return p == ProviderGoogle || p == ProviderDropbox
}

// OAuthCredential holds the stored token material for one user/provider pair.
// At most one active record exists per (user, provider); refreshes overwrite
// AccessToken and ExpiresAt in place.
type OAuthCredential struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_user_provider" json:"user_id"`
	Provider     OAuthProvider `gorm:"type:varchar(20);not null;uniqueIndex:idx_user_provider" json:"provider"`
	AccessToken  string        `gorm:"type:text;not null" json:"-"`
	RefreshToken *string       `gorm:"type:text" json:"-"`
	ExpiresAt    *time.Time    `gorm:"default:null" json:"expires_at"` // nil means non-expiring
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	User         User          `gorm:"foreignKey:UserID" json:"-"`
}

func (OAuthCredential) TableName() string {
	return "oauth_credentials"
}

func (c *OAuthCredential) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	return nil
}

func (c *OAuthCredential) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = time.Now()
	return nil
}

// ExpiredAt reports whether the access token needs a refresh at the given
// instant. A credential without an expiry never expires.
func (c *OAuthCredential) ExpiredAt(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !c.ExpiresAt.After(now)
}
