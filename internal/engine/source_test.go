package engine_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-register/internal/config"
	"github.com/tartampluch/go-register/internal/engine"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if rc := args.Get(0); rc != nil {
		return rc.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

const twoCards = "BEGIN:VCARD\nVERSION:3.0\nFN:First\nEND:VCARD\nBEGIN:VCARD\nVERSION:3.0\nFN:Second\nBDAY:2001-01-01\nEND:VCARD\n"

func TestImporter_Local(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.vcf")
	require.NoError(t, os.WriteFile(path, []byte(twoCards), config.FilePermUserRW))

	imp := &engine.Importer{}
	got, stats, err := imp.Import(context.Background(), engine.Source{LocalPath: path})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 2, stats.Accepted)
}

func TestImporter_Web(t *testing.T) {
	f := new(MockFetcher)
	f.On("Fetch", mock.Anything, "https://dav.example.org/book", "sec", "pw").
		Return(io.NopCloser(strings.NewReader(twoCards)), nil)

	imp := &engine.Importer{Fetcher: f}
	got, _, err := imp.Import(context.Background(), engine.Source{WebURL: "https://dav.example.org/book", WebUser: "sec", WebPass: "pw"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	f.AssertExpectations(t)
}

func TestImporter_WebError(t *testing.T) {
	f := new(MockFetcher)
	f.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("network unreachable"))

	imp := &engine.Importer{Fetcher: f}
	_, _, err := imp.Import(context.Background(), engine.Source{WebURL: "https://x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network unreachable")
	assert.Contains(t, err.Error(), config.ErrVCardParse)
}

func TestImporter_BadSources(t *testing.T) {
	tests := []struct {
		name    string
		imp     *engine.Importer
		src     engine.Source
		wantErr string
	}{
		{"none", &engine.Importer{}, engine.Source{}, config.ErrImportArgs},
		{"both", &engine.Importer{}, engine.Source{LocalPath: "a.vcf", WebURL: "https://x"}, config.ErrImportArgs},
		{"no fetcher", &engine.Importer{}, engine.Source{WebURL: "https://x"}, config.ErrFetcherMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.imp.Import(context.Background(), tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestImporter_MissingFile(t *testing.T) {
	_, _, err := (&engine.Importer{}).Import(context.Background(), engine.Source{LocalPath: filepath.Join(t.TempDir(), "absent.vcf")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImporter_ContextCancellation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.vcf")
	require.NoError(t, os.WriteFile(path, []byte(twoCards), config.FilePermUserRW))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := (&engine.Importer{}).Import(ctx, engine.Source{LocalPath: path})
	assert.Equal(t, context.Canceled, err)
}
