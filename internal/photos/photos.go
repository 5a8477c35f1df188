// Package photos keeps member pictures in a flat directory. The register only
// stores the returned reference and never interprets it.
package photos

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/tartampluch/go-register/internal/config"
)

// Library stores photos under Dir on Fs.
type Library struct {
	Fs  afero.Fs
	Dir string
}

// NewLibrary returns a library on the real filesystem.
func NewLibrary(dir string) *Library {
	return &Library{Fs: afero.NewOsFs(), Dir: dir}
}

// Import copies src into the library under a fresh name and returns the
// reference to record. Existing photos are never overwritten.
func (l *Library) Import(src string) (string, error) {
	in, err := l.Fs.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %s", config.ErrPhotoMissing, src)
		}
		return "", fmt.Errorf("%s: %w", config.ErrPhotoCopy, err)
	}
	defer func() { _ = in.Close() }()

	if err := l.Fs.MkdirAll(l.Dir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	ref := uuid.NewString() + strings.ToLower(filepath.Ext(src))
	dst := filepath.Join(l.Dir, ref)

	out, err := l.Fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, config.FilePermUserRW)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrPhotoCopy, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = l.Fs.Remove(dst)
		return "", fmt.Errorf("%s: %w", config.ErrPhotoCopy, err)
	}
	if err := out.Close(); err != nil {
		_ = l.Fs.Remove(dst)
		return "", fmt.Errorf("%s: %w", config.ErrPhotoCopy, err)
	}

	slog.Info(config.MsgPhotoImported,
		config.LogKeyComponent, config.CompPhotos,
		config.LogKeyRef, ref)
	return ref, nil
}

// Path resolves a reference. References are bare file names; anything that
// could escape Dir is rejected.
func (l *Library) Path(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) || ref == "." || ref == ".." {
		return "", fmt.Errorf("%s: %q", config.ErrPhotoRef, ref)
	}
	return filepath.Join(l.Dir, ref), nil
}

// Exists reports whether the referenced photo is present.
func (l *Library) Exists(ref string) bool {
	p, err := l.Path(ref)
	if err != nil {
		return false
	}
	ok, err := afero.Exists(l.Fs, p)
	return err == nil && ok
}

// Remove deletes the referenced photo. A missing file is not an error.
func (l *Library) Remove(ref string) error {
	p, err := l.Path(ref)
	if err != nil {
		return err
	}
	if err := l.Fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
