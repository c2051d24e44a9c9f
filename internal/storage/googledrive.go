package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "portal-api/internal/pkg/errors"
)

const (
	googleDriveBaseURL    = "https://www.googleapis.com"
	googleDriveFolderMime = "application/vnd.google-apps.folder"
)

type GoogleDriveProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewGoogleDriveProvider(httpClient *http.Client) *GoogleDriveProvider {
	return &GoogleDriveProvider{
		baseURL:    googleDriveBaseURL,
		httpClient: httpClient,
	}
}

type driveFile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Size         string `json:"size"` // Drive returns int64 as a string
	ModifiedTime string `json:"modifiedTime"`
	MimeType     string `json:"mimeType"`
}

type driveFileList struct {
	Files         []driveFile `json:"files"`
	NextPageToken string      `json:"nextPageToken"`
}

func (p *GoogleDriveProvider) List(ctx context.Context, token string) ([]File, error) {
	var files []File
	pageToken := ""

	for {
		query := url.Values{
			"pageSize": {"1000"},
			"fields":   {"nextPageToken,files(id,name,size,modifiedTime,mimeType)"},
		}
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		endpoint := p.baseURL + "/drive/v3/files?" + query.Encode()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrProvider, err)
		}

		var page driveFileList
		decodeErr := json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: drive returned 401", apperrors.ErrAuth)
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("%w: drive list returned %d", apperrors.ErrProvider, resp.StatusCode)
		case decodeErr != nil:
			return nil, fmt.Errorf("%w: decoding drive list: %v", apperrors.ErrProvider, decodeErr)
		}

		for _, f := range page.Files {
			size, _ := strconv.ParseInt(f.Size, 10, 64) // folders carry no size
			modified, _ := time.Parse(time.RFC3339, f.ModifiedTime)
			files = append(files, File{
				ID:         f.ID,
				Name:       f.Name,
				Size:       size,
				ModifiedAt: modified,
				IsFolder:   f.MimeType == googleDriveFolderMime,
			})
		}

		if page.NextPageToken == "" {
			return files, nil
		}
		pageToken = page.NextPageToken
	}
}

func (p *GoogleDriveProvider) Delete(ctx context.Context, token, fileID string) error {
	endpoint := p.baseURL + "/drive/v3/files/" + url.PathEscape(fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrProvider, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusNotFound:
		// Already gone at the provider: deletion is idempotent.
		return nil
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: drive returned 401", apperrors.ErrAuth)
	default:
		return fmt.Errorf("%w: drive delete returned %d", apperrors.ErrProvider, resp.StatusCode)
	}
}
