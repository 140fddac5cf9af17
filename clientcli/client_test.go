package clientcli_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/aimage"
	"github.com/sagarc03/aimage/clientcli"
	aimagehttp "github.com/sagarc03/aimage/http"
	"github.com/sagarc03/aimage/memory"
)

const (
	testUser = "admin"
	testPass = "secret"
	testID   = "A1B2C3D4E5F64A7B8C9D0E1F2A3B4C5D"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDRfake")

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func newClient(t *testing.T, endpoint string) *clientcli.Client {
	t.Helper()
	client, err := clientcli.New(&clientcli.Config{
		Endpoint: endpoint,
		Username: testUser,
		Password: testPass,
	})
	require.NoError(t, err)
	return client
}

func TestNew(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := clientcli.New(nil)
		assert.ErrorIs(t, err, clientcli.ErrConfigRequired)
	})

	t.Run("empty endpoint uses default", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("trailing slash removed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/images", r.URL.Path)
		}))
		defer server.Close()

		client := newClient(t, server.URL+"/")
		_, err := client.List(context.Background())
		require.NoError(t, err)
	})
}

func TestClient_Upload(t *testing.T) {
	t.Run("sends basic auth and detected type", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/images", r.URL.Path)
			assert.Equal(t, "image/png", r.Header.Get("Content-Type"))

			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, testUser, user)
			assert.Equal(t, testPass, pass)

			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.Equal(t, pngBytes, body)

			w.Header().Set("Location", "/images/"+testID)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte("Image uploaded successfully!\nID: " + testID))
		}))
		defer server.Close()

		localPath := writeFile(t, "cat.bin", pngBytes)

		results, err := newClient(t, server.URL).Upload(context.Background(), clientcli.UploadOptions{
			Paths: []string{localPath},
		})
		require.NoError(t, err)
		require.Len(t, results, 1)

		assert.NoError(t, results[0].Err)
		assert.Equal(t, testID, results[0].ID)
		assert.Equal(t, "/images/"+testID, results[0].Location)
		assert.Equal(t, int64(len(pngBytes)), results[0].Size)
	})

	t.Run("id from body without location", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte("Image uploaded successfully!\nID: " + testID))
		}))
		defer server.Close()

		results, err := newClient(t, server.URL).Upload(context.Background(), clientcli.UploadOptions{
			Paths:       []string{writeFile(t, "cat.png", pngBytes)},
			ContentType: "image/jpeg",
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, testID, results[0].ID)
		assert.Equal(t, "image/jpeg", results[0].ContentType)
	})

	t.Run("continues after a failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
			_, _ = w.Write([]byte(`{"error": "unsupported_media_type", "message": "Media type is not an allowed image type"}`))
		}))
		defer server.Close()

		results, err := newClient(t, server.URL).Upload(context.Background(), clientcli.UploadOptions{
			Paths: []string{filepath.Join(t.TempDir(), "missing.png"), writeFile(t, "a.png", pngBytes)},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Error(t, results[0].Err)
		assert.ErrorIs(t, results[1].Err, clientcli.ErrUnsupportedMediaType)
		assert.True(t, clientcli.HasUploadErrors(results))

		var apiErr *clientcli.APIError
		require.True(t, errors.As(results[1].Err, &apiErr))
		assert.Equal(t, "unsupported_media_type", apiErr.Code)
	})

	t.Run("no paths", func(t *testing.T) {
		_, err := newClient(t, "http://localhost").Upload(context.Background(), clientcli.UploadOptions{})
		assert.ErrorIs(t, err, clientcli.ErrNoPaths)
	})
}

func TestClient_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/images/" + testID, "/images/" + testID + "/data":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngBytes)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": "not_found", "message": "Image not found"}`))
		}
	}))
	defer server.Close()

	client := newClient(t, server.URL)

	t.Run("to explicit path", func(t *testing.T) {
		localPath := filepath.Join(t.TempDir(), "nested", "out.png")

		result, body, err := client.Download(context.Background(), clientcli.DownloadOptions{
			ID:        testID,
			LocalPath: localPath,
		})
		require.NoError(t, err)
		assert.Nil(t, body)
		assert.Equal(t, int64(len(pngBytes)), result.Size)

		content, err := os.ReadFile(localPath)
		require.NoError(t, err)
		assert.Equal(t, pngBytes, content)
	})

	t.Run("default name uses content type extension", func(t *testing.T) {
		t.Chdir(t.TempDir())

		result, _, err := client.Download(context.Background(), clientcli.DownloadOptions{ID: testID, Raw: true})
		require.NoError(t, err)
		assert.Equal(t, testID+".png", result.LocalPath)
		assert.FileExists(t, testID+".png")
	})

	t.Run("stdout", func(t *testing.T) {
		result, body, err := client.Download(context.Background(), clientcli.DownloadOptions{ID: testID, LocalPath: "-"})
		require.NoError(t, err)
		require.NotNil(t, body)
		defer func() { _ = body.Close() }()

		content, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, pngBytes, content)
		assert.Equal(t, "-", result.LocalPath)
	})

	t.Run("not found", func(t *testing.T) {
		_, _, err := client.Download(context.Background(), clientcli.DownloadOptions{ID: "missing"})
		assert.ErrorIs(t, err, clientcli.ErrNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		_, _, err := client.Download(context.Background(), clientcli.DownloadOptions{})
		assert.ErrorIs(t, err, clientcli.ErrEmptyID)
	})
}

func TestClient_Delete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/images/"+testID {
			_, _ = w.Write([]byte("Image deleted successfully!"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	results, err := newClient(t, server.URL).Delete(context.Background(), clientcli.DeleteOptions{
		IDs: []string{testID, "missing"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Deleted)
	assert.False(t, results[1].Deleted)
	assert.ErrorIs(t, results[1].Err, clientcli.ErrNotFound)
	assert.True(t, clientcli.HasDeleteErrors(results))

	_, err = newClient(t, server.URL).Delete(context.Background(), clientcli.DeleteOptions{})
	assert.ErrorIs(t, err, clientcli.ErrNoIDs)
}

func TestClient_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "unauthorized", "message": "Valid credentials required"}`))
	}))
	defer server.Close()

	_, err := newClient(t, server.URL).List(context.Background())
	assert.ErrorIs(t, err, clientcli.ErrUnauthorized)
	assert.Contains(t, err.Error(), "Valid credentials required")
}

func TestClient_AgainstServer(t *testing.T) {
	validator, err := aimage.NewMediaTypeValidator(aimage.DefaultAllowedSubtypes)
	require.NoError(t, err)
	verifier, err := aimage.NewCredentialVerifier(testUser, testPass)
	require.NoError(t, err)

	service := aimage.NewImageService(memory.NewStore(), validator, aimage.ServiceConfig{})
	handler := aimagehttp.NewHandler(&aimagehttp.HandlerConfig{Verifier: verifier}, service)
	server := httptest.NewServer(handler.Router())
	defer server.Close()

	ctx := context.Background()
	client := newClient(t, server.URL)

	list, err := client.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list.IDs)

	uploads, err := client.Upload(ctx, clientcli.UploadOptions{
		Paths: []string{writeFile(t, "one.png", pngBytes), writeFile(t, "two.png", pngBytes)},
	})
	require.NoError(t, err)
	require.Len(t, uploads, 2)
	require.NoError(t, uploads[0].Err)
	require.NoError(t, uploads[1].Err)
	assert.NotEqual(t, uploads[0].ID, uploads[1].ID)

	list, err = client.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{uploads[0].ID, uploads[1].ID}, list.IDs)

	meta, err := client.Metadata(ctx, uploads[0].ID)
	require.NoError(t, err)
	assert.Equal(t, uploads[0].ID, meta.ID)

	deletes, err := client.Delete(ctx, clientcli.DeleteOptions{IDs: []string{uploads[0].ID}})
	require.NoError(t, err)
	assert.False(t, clientcli.HasDeleteErrors(deletes))

	_, err = client.Metadata(ctx, uploads[0].ID)
	assert.ErrorIs(t, err, clientcli.ErrNotFound)

	wrong, err := clientcli.New(&clientcli.Config{Endpoint: server.URL, Username: testUser, Password: "nope"})
	require.NoError(t, err)
	_, err = wrong.List(ctx)
	assert.ErrorIs(t, err, clientcli.ErrUnauthorized)
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/png", clientcli.DetectContentType(writeFile(t, "noext", pngBytes)))
	assert.Equal(t, "image/jpeg", clientcli.DetectContentType(writeFile(t, "photo.jpg", []byte("not really a jpeg"))))
	assert.Equal(t, "application/octet-stream", clientcli.DetectContentType(writeFile(t, "blob", []byte("plain"))))
}
