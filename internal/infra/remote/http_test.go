package remote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPUploader_Success(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	up, err := NewHTTPUploader(Config{URL: srv.URL})
	require.NoError(t, err)

	err = up.Upload(context.Background(), strings.NewReader("payload bytes"))
	require.NoError(t, err)
	assert.Equal(t, "payload bytes", string(received))
}

func TestHTTPUploader_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status": 272}`))
	}))
	defer srv.Close()

	up, err := NewHTTPUploader(Config{URL: srv.URL})
	require.NoError(t, err)

	err = up.Upload(context.Background(), strings.NewReader("payload"))
	require.Error(t, err)

	var uerr *UploadError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, http.StatusServiceUnavailable, uerr.HTTPStatus)
	assert.True(t, uerr.HasHTTPStatus())
	assert.Equal(t, 272, uerr.Status)
}

func TestHTTPUploader_ErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	up, err := NewHTTPUploader(Config{URL: srv.URL})
	require.NoError(t, err)

	err = up.Upload(context.Background(), strings.NewReader("payload"))
	var uerr *UploadError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, http.StatusNotFound, uerr.HTTPStatus)
	assert.Equal(t, 0, uerr.Status)
}

func TestHTTPUploader_ConnectionError(t *testing.T) {
	// A server that is immediately closed guarantees a refused connection.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	up, err := NewHTTPUploader(Config{URL: url})
	require.NoError(t, err)

	err = up.Upload(context.Background(), strings.NewReader("payload"))
	require.Error(t, err)

	var uerr *UploadError
	require.True(t, errors.As(err, &uerr))
	assert.False(t, uerr.HasHTTPStatus())
}

func TestHTTPUploader_AuthHeader(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	up, err := NewHTTPUploader(Config{URL: srv.URL, AuthToken: "secret"})
	require.NoError(t, err)

	require.NoError(t, up.Upload(context.Background(), strings.NewReader("p")))
	assert.Equal(t, "Bearer secret", auth)
}

func TestNewHTTPUploader_RequiresURL(t *testing.T) {
	_, err := NewHTTPUploader(Config{})
	assert.Error(t, err)
}
