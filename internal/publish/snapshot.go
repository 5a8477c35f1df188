package publish

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tartampluch/go-register/internal/config"
	"github.com/tartampluch/go-register/internal/register"
)

// Snapshot is the document read by the online portal.
type Snapshot struct {
	LastUpdate string            `json:"last_update"`
	Members    []register.Member `json:"members"`
	Messages   []string          `json:"messages"`
}

// NewSnapshot stamps members with now. Nil slices encode as [] so the portal
// never sees null.
func NewSnapshot(members []register.Member, now time.Time) Snapshot {
	if members == nil {
		members = []register.Member{}
	}
	return Snapshot{
		LastUpdate: now.Format(config.DateFormatSnapshot),
		Members:    members,
		Messages:   []string{},
	}
}

// Encode renders the snapshot the way the member file is rendered.
func (s Snapshot) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", config.JSONIndent)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSnapshotEncode, err)
	}
	return buf.Bytes(), nil
}

// WriteSnapshot replaces path atomically.
func WriteSnapshot(path string, s Snapshot) (err error) {
	data, err := s.Encode()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, config.DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSnapshotWrite, err)
	}

	tmp, err := os.CreateTemp(dir, config.TempFilePattern)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSnapshotWrite, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSnapshotWrite, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSnapshotWrite, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSnapshotWrite, err)
	}
	// The portal is public; the snapshot stays readable by the web server user.
	if err = os.Chmod(tmp.Name(), config.FilePermPublic); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSnapshotWrite, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSnapshotWrite, err)
	}

	slog.Info(config.MsgSnapshotWritten,
		config.LogKeyComponent, config.CompPublish,
		config.LogKeyPath, path,
		config.LogKeyCount, len(s.Members))
	return nil
}
