package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// FsStorage keeps content as files on an afero filesystem: in memory for
// tests and throwaway servers, on disk for the local backend.
type FsStorage struct {
	fs afero.Fs
}

// NewFsStorage roots storage at root on fs. An empty root uses fs as is.
func NewFsStorage(fs afero.Fs, root string) *FsStorage {
	if root != "" {
		fs = afero.NewBasePathFs(fs, root)
	}
	return &FsStorage{fs: fs}
}

func (s *FsStorage) EnsureBucket(ctx context.Context) error {
	return s.fs.MkdirAll("/", 0o755)
}

func (s *FsStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	name, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return fmt.Errorf("failed to create parent of %s: %w", key, err)
	}

	// Write to a sibling then rename, so readers never see partial content.
	tmp := name + ".partial"
	f, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	n, err := io.Copy(f, contextReader{ctx: ctx, r: reader})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && size >= 0 && n != size {
		err = fmt.Errorf("short write: %d of %d bytes", n, size)
	}
	if err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to upload object: %w", err)
	}
	// A leftover empty directory may sit where the file goes.
	if info, err := s.fs.Stat(name); err == nil && info.IsDir() {
		if err := s.removeEmptyDir(name); err != nil {
			_ = s.fs.Remove(tmp)
			return fmt.Errorf("failed to upload object: %s is a non-empty directory", key)
		}
	}
	if err := s.fs.Rename(tmp, name); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

func (s *FsStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	name, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to download object: %w", err)
	}
	return f, nil
}

func (s *FsStorage) Delete(ctx context.Context, key string) error {
	name, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	s.pruneParents(name)
	return nil
}

// pruneParents removes the directories above name that are now empty.
func (s *FsStorage) pruneParents(name string) {
	for dir := path.Dir(name); dir != "/" && dir != "."; dir = path.Dir(dir) {
		if err := s.removeEmptyDir(dir); err != nil {
			return
		}
	}
}

// removeEmptyDir removes dir only when it has no entries.
func (s *FsStorage) removeEmptyDir(dir string) error {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		return fmt.Errorf("directory %s is not empty", dir)
	}
	return s.fs.Remove(dir)
}

func (s *FsStorage) Exists(ctx context.Context, key string) (bool, error) {
	name, err := cleanKey(key)
	if err != nil {
		return false, err
	}
	info, err := s.fs.Stat(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return !info.IsDir(), nil
}

// cleanKey maps a key onto an absolute slash path and rejects traversal.
func cleanKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", fmt.Errorf("invalid storage key %q", key)
		}
	}
	return path.Clean("/" + key), nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
