package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-register/internal/config"
)

// cacheItem stores one rendered document and its HTTP caching metadata.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123, as HTTP headers require
}

// feed is a single served document. Reads are lock-free; updates swap the
// whole item so a reader never sees a half-written document.
type feed struct {
	route string
	mime  string
	cache atomic.Pointer[cacheItem]
}

// FeedServer publishes the birthday calendar and the portal snapshot on localhost.
type FeedServer struct {
	Port string

	calendar feed
	snapshot feed
}

func NewFeedServer(port string) *FeedServer {
	s := &FeedServer{Port: port}
	s.calendar.route, s.calendar.mime = config.RouteCalendar, config.MimeTextCalendar
	s.snapshot.route, s.snapshot.mime = config.RouteSnapshot, config.MimeJSON
	return s
}

// Handler routes both feeds. Any other path is a 404.
func (s *FeedServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteCalendar+"{$}", func(w http.ResponseWriter, r *http.Request) {
		s.serve(&s.calendar, w, r)
	})
	mux.HandleFunc(config.RouteSnapshot, func(w http.ResponseWriter, r *http.Request) {
		s.serve(&s.snapshot, w, r)
	})
	return mux
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *FeedServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)
	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// UpdateCalendar replaces the served ICS document.
func (s *FeedServer) UpdateCalendar(data []byte) { s.calendar.update(data) }

// UpdateSnapshot replaces the served portal snapshot.
func (s *FeedServer) UpdateSnapshot(data []byte) { s.snapshot.update(data) }

func (f *feed) update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	f.cache.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyRoute, f.route,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

func (s *FeedServer) serve(f *feed, w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	item := f.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, f.mime)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		clientTime, cerr := time.Parse(http.TimeFormat, since)
		serverTime, serr := time.Parse(http.TimeFormat, item.lastModified)
		if cerr == nil && serr == nil && !serverTime.After(clientTime) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}
