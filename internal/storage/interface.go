package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Download for a key that holds no content.
var ErrNotFound = errors.New("storage: object not found")

// ObjectStorage keeps object content addressed by key. Metadata (names,
// directories, content types) lives in the repository, not here.
type ObjectStorage interface {
	// EnsureBucket prepares the backing bucket or directory.
	EnsureBucket(ctx context.Context) error

	// Upload stores size bytes from reader under key, replacing any content.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download opens the content under key. ErrNotFound when missing.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key holds content.
	Exists(ctx context.Context, key string) (bool, error)
}
