// Package fs implements the file operations of a task on the local filesystem.
package fs

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/harvest/internal/core/domain"
	"go.trai.ch/harvest/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileSystem = (*FileSystem)(nil)

// FileSystem implements ports.FileSystem using the os package.
type FileSystem struct{}

// New creates a new FileSystem.
func New() *FileSystem {
	return &FileSystem{}
}

// Exists reports whether path exists.
// A missing path is not an error; any other stat failure is.
func (f *FileSystem) Exists(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.With(zerr.Wrap(err, "failed to stat path"), "path", path)
	}
	return true, nil
}

// EnsureDir creates path and any missing parents.
func (f *FileSystem) EnsureDir(path string) error {
	if err := os.MkdirAll(path, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", path)
	}
	return nil
}

// Move relocates src to dst. It renames when possible and falls back to
// copy-and-remove when src and dst live on different devices.
func (f *FileSystem) Move(src, dst string) error {
	if err := f.EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return zerr.With(zerr.With(zerr.Wrap(err, "failed to rename file"), "src", src), "dst", dst)
	}

	if _, err := f.Copy(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove moved file"), "path", src)
	}
	return nil
}

// Copy copies src to dst and returns the XXHash of the copied content.
// The content is written to a temporary file next to dst and renamed into place,
// so dst is either absent or complete.
func (f *FileSystem) Copy(src, dst string) (string, error) {
	in, err := os.Open(src) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open file"), "path", src)
	}
	defer in.Close() //nolint:errcheck // Best effort close in defer

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create file"), "path", dst)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	digest := xxhash.New()
	if _, err := io.Copy(io.MultiWriter(tmp, digest), in); err != nil {
		_ = tmp.Close()
		return "", zerr.With(zerr.Wrap(err, "failed to copy file content"), "path", src)
	}
	if err := tmp.Close(); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to write file"), "path", dst)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to set file mode"), "path", dst)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to write file"), "path", dst)
	}

	return fmt.Sprintf("%016x", digest.Sum64()), nil
}
