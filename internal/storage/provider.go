package storage

import (
	"context"
	"net/http"
	"time"

	"portal-api/internal/models"
)

// File is the provider-neutral listing entry.
type File struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
	IsFolder   bool      `json:"is_folder"`
}

// Provider is the uniform capability set over heterogeneous storage APIs.
// Implementations encapsulate the wire specifics of one provider; callers
// never branch on provider identity beyond picking the variant.
//
// List fails with errors.ErrAuth when the provider rejects the token and
// errors.ErrProvider on other failures. Delete of an already-absent remote
// file succeeds, keeping deletion idempotent.
type Provider interface {
	List(ctx context.Context, token string) ([]File, error)
	Delete(ctx context.Context, token, fileID string) error
}

type Registry map[models.OAuthProvider]Provider

func NewRegistry(httpClient *http.Client) Registry {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return Registry{
		models.ProviderGoogle:  NewGoogleDriveProvider(httpClient),
		models.ProviderDropbox: NewDropboxProvider(httpClient),
	}
}

func (r Registry) ForProvider(provider models.OAuthProvider) (Provider, bool) {
	p, ok := r[provider]
	return p, ok
}
