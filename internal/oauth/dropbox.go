package oauth

import (
	"context"
	"net/http"
	"net/url"

	"portal-api/internal/config"
)

const dropboxTokenEndpoint = "https://api.dropboxapi.com/oauth2/token"

type DropboxClient struct {
	clientID     string
	clientSecret string
	redirectURL  string
	endpoint     string
	httpClient   *http.Client
}

func NewDropboxClient(cfg config.OAuthClientConfig, httpClient *http.Client) *DropboxClient {
	return &DropboxClient{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURL:  cfg.RedirectURL,
		endpoint:     dropboxTokenEndpoint,
		httpClient:   httpClient,
	}
}

func (c *DropboxClient) Exchange(ctx context.Context, code string) (*Token, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"redirect_uri":  {c.redirectURL},
	}
	return postTokenRequest(ctx, c.httpClient, c.endpoint, form)
}

func (c *DropboxClient) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}
	return postTokenRequest(ctx, c.httpClient, c.endpoint, form)
}
