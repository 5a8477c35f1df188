package engine_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-register/internal/config"
	"github.com/tartampluch/go-register/internal/engine"
)

func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	body := "BEGIN:VCARD\nVERSION:3.0\nFN:Test\nEND:VCARD"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "secretary", user)
		assert.Equal(t, "hunter2", pass)
		assert.Equal(t, config.UserAgent, r.Header.Get(config.HeaderUserAgent))
		_, _ = w.Write([]byte(body))
	}))
	defer ts.Close()

	rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL+"/book.vcf?token=abc", "secretary", "hunter2")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestHTTPFetcher_Fetch_NoCredentials(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := r.BasicAuth()
		assert.False(t, ok, "anonymous fetch must not send an Authorization header")
	}))
	defer ts.Close()

	rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "", "")
	require.NoError(t, err)
	_ = rc.Close()
}

func TestHTTPFetcher_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    string
	}{
		{"NotFound", http.StatusNotFound, "404"},
		{"ServerError", http.StatusInternalServerError, "500"},
		{"Unauthorized", http.StatusUnauthorized, "401"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer ts.Close()

			rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "", "")
			require.Error(t, err)
			assert.Nil(t, rc)
			assert.Contains(t, err.Error(), tt.wantErr)

			var statusErr *engine.StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.statusCode, statusErr.Code)
		})
	}
}

func TestHTTPFetcher_Fetch_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := engine.NewHTTPFetcher().Fetch(ctx, ts.URL, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPFetcher_Fetch_RejectsBadURLs(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{"control character", string([]byte{0x7f}), config.ErrInvalidURL},
		{"ftp scheme", "ftp://example.com/book.vcf", config.ErrProtocol},
		{"file scheme", "file:///etc/passwd", config.ErrProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.NewHTTPFetcher().Fetch(context.Background(), tt.url, "", "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
