package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "portal-api/internal/pkg/errors"
)

const dropboxBaseURL = "https://api.dropboxapi.com"

type DropboxProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewDropboxProvider(httpClient *http.Client) *DropboxProvider {
	return &DropboxProvider{
		baseURL:    dropboxBaseURL,
		httpClient: httpClient,
	}
}

type dropboxEntry struct {
	Tag            string    `json:".tag"`
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Size           int64     `json:"size"`
	ServerModified time.Time `json:"server_modified"`
}

type dropboxListResponse struct {
	Entries []dropboxEntry `json:"entries"`
	Cursor  string         `json:"cursor"`
	HasMore bool           `json:"has_more"`
}

func (p *DropboxProvider) List(ctx context.Context, token string) ([]File, error) {
	var files []File

	endpoint := p.baseURL + "/2/files/list_folder"
	body := map[string]interface{}{"path": "", "recursive": false}

	for {
		page, err := p.listPage(ctx, token, endpoint, body)
		if err != nil {
			return nil, err
		}

		for _, e := range page.Entries {
			files = append(files, File{
				ID:         e.ID,
				Name:       e.Name,
				Size:       e.Size,
				ModifiedAt: e.ServerModified,
				IsFolder:   e.Tag == "folder",
			})
		}

		if !page.HasMore {
			return files, nil
		}
		endpoint = p.baseURL + "/2/files/list_folder/continue"
		body = map[string]interface{}{"cursor": page.Cursor}
	}
}

func (p *DropboxProvider) listPage(ctx context.Context, token, endpoint string, body map[string]interface{}) (*dropboxListResponse, error) {
	resp, err := p.post(ctx, token, endpoint, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: dropbox returned 401", apperrors.ErrAuth)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: dropbox list returned %d", apperrors.ErrProvider, resp.StatusCode)
	}

	var page dropboxListResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: decoding dropbox list: %v", apperrors.ErrProvider, err)
	}
	return &page, nil
}

func (p *DropboxProvider) Delete(ctx context.Context, token, fileID string) error {
	resp, err := p.post(ctx, token, p.baseURL+"/2/files/delete_v2", map[string]interface{}{"path": fileID})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: dropbox returned 401", apperrors.ErrAuth)
	case http.StatusConflict:
		// A lookup conflict means the path no longer exists; deletion is
		// idempotent so treat it as done.
		raw, _ := io.ReadAll(resp.Body)
		if strings.Contains(string(raw), "not_found") || strings.Contains(string(raw), "path_lookup") {
			return nil
		}
		return fmt.Errorf("%w: dropbox delete conflict: %s", apperrors.ErrProvider, string(raw))
	default:
		return fmt.Errorf("%w: dropbox delete returned %d", apperrors.ErrProvider, resp.StatusCode)
	}
}

func (p *DropboxProvider) post(ctx context.Context, token, endpoint string, body map[string]interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrProvider, err)
	}
	return resp, nil
}
