package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"portal-api/internal/config"
	"portal-api/internal/models"
	apperrors "portal-api/internal/pkg/errors"
)

// Token is the material returned by a provider token endpoint. ExpiresAt is
// nil when the provider issued a non-expiring token.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

// Client exchanges authorization codes and refresh tokens with one
// provider's token endpoint.
type Client interface {
	Exchange(ctx context.Context, code string) (*Token, error)
	Refresh(ctx context.Context, refreshToken string) (*Token, error)
}

// Registry maps a provider to its token endpoint client.
type Registry map[models.OAuthProvider]Client

func NewRegistry(cfg *config.OAuthConfig, httpClient *http.Client) Registry {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	registry := Registry{}
	if client, ok := cfg.ForProvider(models.ProviderGoogle); ok {
		registry[models.ProviderGoogle] = NewGoogleClient(client, httpClient)
	}
	if client, ok := cfg.ForProvider(models.ProviderDropbox); ok {
		registry[models.ProviderDropbox] = NewDropboxClient(client, httpClient)
	}
	return registry
}

func (r Registry) ForProvider(provider models.OAuthProvider) (Client, bool) {
	client, ok := r[provider]
	return client, ok
}

// tokenResponse is the common OAuth2 token endpoint envelope.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// postTokenRequest submits a form-encoded token request and decodes the
// standard envelope. A 4xx means the grant was rejected (revoked or invalid
// token), which callers must treat differently from transport failures.
func postTokenRequest(ctx context.Context, httpClient *http.Client, endpoint string, form url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, fmt.Errorf("%w: token endpoint returned %d", apperrors.ErrAuth, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: token endpoint returned %d", apperrors.ErrProvider, resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding token response: %v", apperrors.ErrProvider, err)
	}
	if body.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response missing access_token", apperrors.ErrProvider)
	}

	token := &Token{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
	}
	if body.ExpiresIn > 0 {
		expiresAt := time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
		token.ExpiresAt = &expiresAt
	}
	return token, nil
}
