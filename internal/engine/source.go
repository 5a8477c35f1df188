package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tartampluch/go-register/internal/config"
	"github.com/tartampluch/go-register/internal/register"
)

// Source names where an import reads its vCards from. Exactly one of
// LocalPath and WebURL is expected.
type Source struct {
	LocalPath string
	WebURL    string
	WebUser   string
	WebPass   string
}

// Importer turns a vCard source into register candidates.
type Importer struct {
	Fetcher VCardFetcher
}

// Import opens src and decodes every usable contact from it.
func (imp *Importer) Import(ctx context.Context, src Source) ([]register.Candidate, ImportStats, error) {
	rc, err := imp.open(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ImportStats{}, ctx.Err()
		}
		return nil, ImportStats{}, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = rc.Close() }()

	candidates, stats, err := DecodeContacts(ctx, rc)
	if err != nil {
		return nil, stats, err
	}

	slog.Info(config.MsgImportDone,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.Processed),
			slog.Int(config.LogKeyFound, stats.Accepted),
			slog.Int(config.LogKeySkipped, stats.Skipped),
		))
	return candidates, stats, nil
}

func (imp *Importer) open(ctx context.Context, src Source) (io.ReadCloser, error) {
	switch {
	case src.LocalPath != "" && src.WebURL != "":
		return nil, errors.New(config.ErrImportArgs)
	case src.LocalPath != "":
		return os.Open(src.LocalPath)
	case src.WebURL != "":
		if imp.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return imp.Fetcher.Fetch(ctx, src.WebURL, src.WebUser, src.WebPass)
	default:
		return nil, errors.New(config.ErrImportArgs)
	}
}
