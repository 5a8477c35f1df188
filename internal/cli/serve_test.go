package cli

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-register/internal/config"
	"github.com/tartampluch/go-register/internal/register"
	"github.com/tartampluch/go-register/internal/server"
)

var testNow = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

func testApp() *App {
	return &App{
		clock:    register.FixedClock(testNow),
		tr:       NewTranslator(config.DefaultLanguage),
		settings: config.Settings{RefreshMin: 0},
	}
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(w.Result().Body)
	require.NoError(t, err)
	return w.Code, string(body)
}

func TestRefreshFeeds_PicksUpOtherWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.json")
	store, err := register.Open(path)
	require.NoError(t, err)
	_, err = store.Add(register.Candidate{Name: "Ngozi", Birthday: register.Birthday{Year: 1980, Month: time.March, Day: 12}})
	require.NoError(t, err)

	a := testApp()
	srv := server.NewFeedServer("0")
	require.NoError(t, a.refreshFeeds(store, srv))

	code, body := get(t, srv.Handler(), config.RouteCalendar)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Birthday: Ngozi (44)")

	code, body = get(t, srv.Handler(), config.RouteSnapshot)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"last_update": "2024-03-10 08:00"`)

	// A second process adds a member; the next refresh must see it.
	other, err := register.Open(path)
	require.NoError(t, err)
	_, err = other.Add(register.Candidate{Name: "Tunde"})
	require.NoError(t, err)

	require.NoError(t, a.refreshFeeds(store, srv))
	_, body = get(t, srv.Handler(), config.RouteSnapshot)
	assert.Contains(t, body, "Tunde")
}

func TestRefreshFeeds_CorruptFileKeepsLastGoodFeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.json")
	store, err := register.Open(path)
	require.NoError(t, err)
	_, err = store.Add(register.Candidate{Name: "Ngozi"})
	require.NoError(t, err)

	a := testApp()
	srv := server.NewFeedServer("0")
	require.NoError(t, a.refreshFeeds(store, srv))

	require.NoError(t, writeFile(path, "[broken"))
	err = a.refreshFeeds(store, srv)
	assert.ErrorIs(t, err, register.ErrCorruptStore)

	code, body := get(t, srv.Handler(), config.RouteSnapshot)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Ngozi")
}

func TestBackgroundWorker(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		backgroundWorker(ctx, 5*time.Millisecond, func() error {
			calls.Add(1)
			return assert.AnError
		})
		close(done)
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond,
		"errors must not stop the worker")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestRefreshInterval(t *testing.T) {
	a := testApp()
	assert.Equal(t, time.Duration(config.DefaultRefreshMin)*time.Minute, a.refreshInterval())

	a.settings.RefreshMin = 5
	assert.Equal(t, 5*time.Minute, a.refreshInterval())
}
