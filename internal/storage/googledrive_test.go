package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "portal-api/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDriveProvider(server *httptest.Server) *GoogleDriveProvider {
	provider := NewGoogleDriveProvider(server.Client())
	provider.baseURL = server.URL
	return provider
}

func TestGoogleDriveList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.Equal(t, "/drive/v3/files", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"files": [
				{"id": "f1", "name": "report.pdf", "size": "2048", "modifiedTime": "2025-05-01T10:00:00Z", "mimeType": "application/pdf"},
				{"id": "d1", "name": "Invoices", "modifiedTime": "2025-04-01T09:00:00Z", "mimeType": "application/vnd.google-apps.folder"}
			]
		}`))
	}))
	defer server.Close()

	files, err := newDriveProvider(server).List(context.Background(), "token-1")

	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "f1", files[0].ID)
	assert.Equal(t, "report.pdf", files[0].Name)
	assert.Equal(t, int64(2048), files[0].Size)
	assert.False(t, files[0].IsFolder)
	assert.True(t, files[1].IsFolder)
	assert.Zero(t, files[1].Size)
}

func TestGoogleDriveListPagination(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("pageToken") == "" {
			w.Write([]byte(`{"files": [{"id": "f1", "name": "a", "size": "1", "mimeType": "text/plain"}], "nextPageToken": "p2"}`))
			return
		}
		w.Write([]byte(`{"files": [{"id": "f2", "name": "b", "size": "2", "mimeType": "text/plain"}]}`))
	}))
	defer server.Close()

	files, err := newDriveProvider(server).List(context.Background(), "t")

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, files, 2)
	assert.Equal(t, "f2", files[1].ID)
}

func TestGoogleDriveListInvalidToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newDriveProvider(server).List(context.Background(), "bad")

	// Token rejection must be distinguishable from a transient failure.
	assert.ErrorIs(t, err, apperrors.ErrAuth)
}

func TestGoogleDriveListServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newDriveProvider(server).List(context.Background(), "t")

	assert.ErrorIs(t, err, apperrors.ErrProvider)
}

func TestGoogleDriveDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/drive/v3/files/f1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	assert.NoError(t, newDriveProvider(server).Delete(context.Background(), "t", "f1"))
}

func TestGoogleDriveDeleteAlreadyGone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	// Deleting a file the provider no longer has is a success.
	assert.NoError(t, newDriveProvider(server).Delete(context.Background(), "t", "gone"))
}

func TestGoogleDriveDeleteInvalidToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	assert.ErrorIs(t, newDriveProvider(server).Delete(context.Background(), "t", "f1"), apperrors.ErrAuth)
}
