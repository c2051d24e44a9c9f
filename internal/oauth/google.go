package oauth

import (
	"context"
	"net/http"
	"net/url"

	"portal-api/internal/config"
)

const googleTokenEndpoint = "https://oauth2.googleapis.com/token"

type GoogleClient struct {
	clientID     string
	clientSecret string
	redirectURL  string
	endpoint     string
	httpClient   *http.Client
}

func NewGoogleClient(cfg config.OAuthClientConfig, httpClient *http.Client) *GoogleClient {
	return &GoogleClient{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURL:  cfg.RedirectURL,
		endpoint:     googleTokenEndpoint,
		httpClient:   httpClient,
	}
}

func (c *GoogleClient) Exchange(ctx context.Context, code string) (*Token, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"redirect_uri":  {c.redirectURL},
	}
	return postTokenRequest(ctx, c.httpClient, c.endpoint, form)
}

func (c *GoogleClient) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}
	return postTokenRequest(ctx, c.httpClient, c.endpoint, form)
}
