package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-register/internal/config"
)

// VCardFetcher retrieves a remote address book.
type VCardFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// StatusError reports a non-200 answer from the address book server.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", config.ErrFetchStatus, e.Status)
}

// HTTPFetcher downloads address books over HTTP(S) with optional Basic Auth.
type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{Timeout: config.HTTPTimeout},
	}
}

// redactedURL drops the query and credentials; CardDAV links often carry tokens there.
func redactedURL(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}

// Fetch returns the response body capped at config.MaxHTTPResponseSize.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	log := slog.With(config.LogKeyComponent, config.CompFetcher, config.LogKeyURL, redactedURL(u))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchRequest, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchStatus, config.LogKeyStatus, resp.StatusCode)
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	log.Info(config.MsgFetchStart, config.LogKeySizeBytes, resp.ContentLength)

	// Reads stop at the cap; Close still reaches the real body.
	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, config.MaxHTTPResponseSize), resp.Body}, nil
}
