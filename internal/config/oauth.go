package config

import "portal-api/internal/models"

// OAuthClientConfig holds the client credentials registered with each
// storage provider.
type OAuthClientConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type OAuthConfig struct {
	Clients map[models.OAuthProvider]OAuthClientConfig
}

func NewOAuthConfig() *OAuthConfig {
	return &OAuthConfig{
		Clients: map[models.OAuthProvider]OAuthClientConfig{
			models.ProviderGoogle: {
				ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
				ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
				RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
			},
			models.ProviderDropbox: {
				ClientID:     getEnv("DROPBOX_CLIENT_ID", ""),
				ClientSecret: getEnv("DROPBOX_CLIENT_SECRET", ""),
				RedirectURL:  getEnv("DROPBOX_REDIRECT_URL", ""),
			},
		},
	}
}

func (c *OAuthConfig) ForProvider(provider models.OAuthProvider) (OAuthClientConfig, bool) {
	client, ok := c.Clients[provider]
	return client, ok
}
