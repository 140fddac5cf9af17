package http_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sagarc03/aimage"
	aimagehttp "github.com/sagarc03/aimage/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func TestBasicAuth_Valid(t *testing.T) {
	verifier, err := aimage.NewCredentialVerifier("admin", "pw")
	require.NoError(t, err)

	wrapped := aimagehttp.BasicAuth(verifier, "test")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/images", nil)
	req.SetBasicAuth("admin", "pw")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Empty(t, rec.Header().Get("WWW-Authenticate"))
}

func TestBasicAuth_BcryptPassword(t *testing.T) {
	hash, err := aimage.HashPassword("pw")
	require.NoError(t, err)

	verifier, err := aimage.NewCredentialVerifier("admin", hash)
	require.NoError(t, err)

	wrapped := aimagehttp.BasicAuth(verifier, "test")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/images", nil)
	req.SetBasicAuth("admin", "pw")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBasicAuth_Rejected(t *testing.T) {
	verifier, err := aimage.NewCredentialVerifier("admin", "pw")
	require.NoError(t, err)

	handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not be called")
	})
	wrapped := aimagehttp.BasicAuth(verifier, "images")(handler)

	req := httptest.NewRequest(http.MethodGet, "/images", nil)
	req.SetBasicAuth("admin", "wrong")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Basic realm="images", charset="UTF-8"`, rec.Header().Get("WWW-Authenticate"))

	var resp aimagehttp.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "unauthorized", resp.Error)
}

func TestBasicAuth_NilVerifierRejects(t *testing.T) {
	wrapped := aimagehttp.BasicAuth(nil, "images")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/images", nil)
	req.SetBasicAuth("admin", "pw")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	wrapped := aimagehttp.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/abc", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/images/abc", entry["path"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
	assert.EqualValues(t, len("short and stout"), entry["bytes"])
}
