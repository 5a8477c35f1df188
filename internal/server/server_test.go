package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-register/internal/config"
)

func do(t *testing.T, h http.Handler, method, path string, header http.Header) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Result()
}

func TestHandler_ServesBothFeeds(t *testing.T) {
	srv := NewFeedServer("0")
	ics := []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR")
	snapshot := []byte(`{"last_update":"2025-01-01 10:00","members":[],"messages":[]}`)
	srv.UpdateCalendar(ics)
	srv.UpdateSnapshot(snapshot)
	h := srv.Handler()

	tests := []struct {
		path string
		mime string
		body []byte
	}{
		{config.RouteCalendar, config.MimeTextCalendar, ics},
		{config.RouteSnapshot, config.MimeJSON, snapshot},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := do(t, h, http.MethodGet, tt.path, nil)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.mime, resp.Header.Get(config.HeaderContentType))
			assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
			assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")
			assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.body, body)
		})
	}
}

func TestHandler_UnknownPath(t *testing.T) {
	srv := NewFeedServer("0")
	srv.UpdateCalendar([]byte("X"))

	resp := do(t, srv.Handler(), http.MethodGet, "/secret.json", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestHandler_Caching checks If-None-Match returns 304 with an empty body.
func TestHandler_Caching(t *testing.T) {
	srv := NewFeedServer("0")
	srv.UpdateCalendar([]byte("DATA_VERSION_1"))
	h := srv.Handler()

	first := do(t, h, http.MethodGet, "/", nil)
	etag := first.Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag)

	resp := do(t, h, http.MethodGet, "/", http.Header{config.HeaderIfNoneMatch: {etag}})
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

func TestHandler_IfModifiedSince(t *testing.T) {
	srv := NewFeedServer("0")
	srv.UpdateSnapshot([]byte("{}"))
	h := srv.Handler()

	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	resp := do(t, h, http.MethodGet, config.RouteSnapshot, http.Header{config.HeaderIfModifiedSince: {future}})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)

	past := time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)
	resp = do(t, h, http.MethodGet, config.RouteSnapshot, http.Header{config.HeaderIfModifiedSince: {past}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_Head(t *testing.T) {
	srv := NewFeedServer("0")
	srv.UpdateCalendar([]byte("BODY"))

	resp := do(t, srv.Handler(), http.MethodHead, "/", nil)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	srv := NewFeedServer("0")

	resp := do(t, srv.Handler(), http.MethodPost, "/", nil)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, config.AllowedMethods, resp.Header.Get(config.HeaderAllow))
}

// TestHandler_Initializing expects 503 until a feed has been rendered once.
func TestHandler_Initializing(t *testing.T) {
	srv := NewFeedServer("0")
	srv.UpdateCalendar([]byte("ready"))

	resp := do(t, srv.Handler(), http.MethodGet, config.RouteSnapshot, nil)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))
}

// TestServer_RaceCondition is meaningful under -race.
func TestServer_RaceCondition(t *testing.T) {
	srv := NewFeedServer("0")
	h := srv.Handler()
	var wg sync.WaitGroup
	end := time.Now().Add(300 * time.Millisecond)

	for w := 0; w < 5; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; time.Now().Before(end); i++ {
				srv.UpdateCalendar([]byte(fmt.Sprintf("VERSION:%d-%d", id, i)))
				srv.UpdateSnapshot([]byte(fmt.Sprintf(`{"v":"%d-%d"}`, id, i)))
				time.Sleep(time.Microsecond)
			}
		}(w)
	}

	for r := 0; r < 20; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			path := config.RouteCalendar
			if r%2 == 1 {
				path = config.RouteSnapshot
			}
			for time.Now().Before(end) {
				req := httptest.NewRequest(http.MethodGet, path, nil)
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)
				if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
					t.Errorf("unexpected status during race test: %d", w.Code)
				}
			}
		}(r)
	}

	wg.Wait()
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", config.LocalhostBindAddr+":0")
	require.NoError(t, err)
	defer func() { _ = l.Close() }()
	_, port, err := net.SplitHostPort(l.Addr().String())
	require.NoError(t, err)
	return port
}

// TestServer_Lifecycle binds a real listener and checks graceful shutdown.
func TestServer_Lifecycle(t *testing.T) {
	port := freePort(t)
	srv := NewFeedServer(port)
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() { errChan <- srv.Start(ctx) }()

	url := "http://127.0.0.1:" + port + "/"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond)

	resp, err := http.Get(url)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()

	srv.UpdateCalendar([]byte("BEGIN:VCALENDAR\nEND:VCALENDAR"))

	resp, err = http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "BEGIN:VCALENDAR")

	cancel()
	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server shutdown timed out")
	}
}

func TestServer_StartRequiresPort(t *testing.T) {
	err := NewFeedServer("").Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPortRequired)
}
