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

func newDropbox(server *httptest.Server) *DropboxProvider {
	provider := NewDropboxProvider(server.Client())
	provider.baseURL = server.URL
	return provider
}

func TestDropboxList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/2/files/list_folder", r.URL.Path)
		w.Write([]byte(`{
			"entries": [
				{".tag": "file", "id": "id:a1", "name": "notes.txt", "size": 512, "server_modified": "2025-05-01T10:00:00Z"},
				{".tag": "folder", "id": "id:b2", "name": "Shared"}
			],
			"has_more": false
		}`))
	}))
	defer server.Close()

	files, err := newDropbox(server).List(context.Background(), "tok")

	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "id:a1", files[0].ID)
	assert.Equal(t, int64(512), files[0].Size)
	assert.False(t, files[0].IsFolder)
	assert.True(t, files[1].IsFolder)
}

func TestDropboxListPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/2/files/list_folder" {
			w.Write([]byte(`{"entries": [{".tag": "file", "id": "id:1", "name": "a", "size": 1}], "cursor": "c1", "has_more": true}`))
			return
		}
		assert.Equal(t, "/2/files/list_folder/continue", r.URL.Path)
		w.Write([]byte(`{"entries": [{".tag": "file", "id": "id:2", "name": "b", "size": 2}], "has_more": false}`))
	}))
	defer server.Close()

	files, err := newDropbox(server).List(context.Background(), "tok")

	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "id:2", files[1].ID)
}

func TestDropboxListInvalidToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newDropbox(server).List(context.Background(), "bad")
	assert.ErrorIs(t, err, apperrors.ErrAuth)
}

func TestDropboxDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/files/delete_v2", r.URL.Path)
		w.Write([]byte(`{"metadata": {".tag": "file", "name": "notes.txt"}}`))
	}))
	defer server.Close()

	assert.NoError(t, newDropbox(server).Delete(context.Background(), "tok", "id:a1"))
}

func TestDropboxDeleteAlreadyGone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error_summary": "path_lookup/not_found/", "error": {".tag": "path_lookup"}}`))
	}))
	defer server.Close()

	// Absent at the provider means the delete already happened.
	assert.NoError(t, newDropbox(server).Delete(context.Background(), "tok", "id:gone"))
}

func TestDropboxDeleteOtherConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error_summary": "too_many_write_operations/"}`))
	}))
	defer server.Close()

	assert.ErrorIs(t, newDropbox(server).Delete(context.Background(), "tok", "id:a1"), apperrors.ErrProvider)
}

func TestDropboxDeleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	assert.ErrorIs(t, newDropbox(server).Delete(context.Background(), "tok", "id:a1"), apperrors.ErrProvider)
}
