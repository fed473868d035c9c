package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStorage(t *testing.T, s ObjectStorage) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.EnsureBucket(ctx))

	key := "innoida/my-bucket/docs/hello.txt"
	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Download(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Upload(ctx, key, bytes.NewReader([]byte("Hello, World!")), 13, "text/plain"))
	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", string(data))

	require.NoError(t, s.Upload(ctx, key, bytes.NewReader([]byte("v2")), 2, "text/plain"))
	rc, err = s.Download(ctx, key)
	require.NoError(t, err)
	data, _ = io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "v2", string(data))

	ok, err = s.Exists(ctx, "innoida/my-bucket/docs")
	require.NoError(t, err)
	assert.False(t, ok, "a directory is not an object")

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))
	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFsStorage_Memory(t *testing.T) {
	s, err := NewStorage(&Config{Backend: BackendMemory})
	require.NoError(t, err)
	exerciseStorage(t, s)
}

func TestFsStorage_Local(t *testing.T) {
	root := t.TempDir()
	s, err := NewStorage(&Config{Backend: BackendLocal, Root: root})
	require.NoError(t, err)
	exerciseStorage(t, s)

	require.NoError(t, s.Upload(context.Background(), "a/b.txt", bytes.NewReader([]byte("x")), 1, ""))
	assert.FileExists(t, filepath.Join(root, "a", "b.txt"))
}

func TestFsStorage_FileReplacesDeletedDirectory(t *testing.T) {
	ctx := context.Background()
	for name, fs := range map[string]afero.Fs{
		"os":     afero.NewOsFs(),
		"memory": afero.NewMemMapFs(),
	} {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			s := NewFsStorage(fs, root)
			require.NoError(t, s.EnsureBucket(ctx))

			require.NoError(t, s.Upload(ctx, "innoida/b/docs/a.txt", bytes.NewReader([]byte("a")), 1, ""))
			require.NoError(t, s.Upload(ctx, "innoida/b/keep.txt", bytes.NewReader([]byte("k")), 1, ""))
			require.NoError(t, s.Delete(ctx, "innoida/b/docs/a.txt"))

			_, err := fs.Stat(filepath.Join(root, "innoida", "b", "docs"))
			assert.ErrorIs(t, err, os.ErrNotExist, "empty parent is pruned")
			ok, err := s.Exists(ctx, "innoida/b/keep.txt")
			require.NoError(t, err)
			assert.True(t, ok, "non-empty parent stays")

			require.NoError(t, s.Upload(ctx, "innoida/b/docs", bytes.NewReader([]byte("now a file")), 10, ""))
			rc, err := s.Download(ctx, "innoida/b/docs")
			require.NoError(t, err)
			data, _ := io.ReadAll(rc)
			rc.Close()
			assert.Equal(t, "now a file", string(data))
		})
	}
}

func TestFsStorage_UploadOverEmptyDirectory(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "innoida", "b", "docs"), 0o755))

	s := NewFsStorage(afero.NewOsFs(), root)
	require.NoError(t, s.Upload(ctx, "innoida/b/docs", bytes.NewReader([]byte("x")), 1, ""))
	ok, err := s.Exists(ctx, "innoida/b/docs")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "innoida", "b", "full", "sub"), 0o755))
	assert.Error(t, s.Upload(ctx, "innoida/b/full", bytes.NewReader([]byte("x")), 1, ""))
	_, err = os.Stat(filepath.Join(root, "innoida", "b", "full.partial"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFsStorage_ShortWriteRejected(t *testing.T) {
	s := NewFsStorage(afero.NewMemMapFs(), "")
	err := s.Upload(context.Background(), "k", bytes.NewReader([]byte("abc")), 10, "")
	assert.Error(t, err)

	ok, err := s.Exists(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFsStorage_CanceledUpload(t *testing.T) {
	s := NewFsStorage(afero.NewMemMapFs(), "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Upload(ctx, "k", bytes.NewReader([]byte("abc")), 3, ""), context.Canceled)
}

func TestCleanKey(t *testing.T) {
	got, err := cleanKey("innoida/b/a..b.txt")
	require.NoError(t, err)
	assert.Equal(t, "/innoida/b/a..b.txt", got)

	for _, bad := range []string{"", "../etc/passwd", "a/../../b"} {
		_, err := cleanKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewStorage_Selection(t *testing.T) {
	s, err := NewStorage(&Config{})
	require.NoError(t, err)
	assert.IsType(t, &FsStorage{}, s)

	_, err = NewStorage(&Config{Backend: BackendLocal})
	assert.Error(t, err)

	_, err = NewStorage(&Config{Backend: "tape"})
	assert.Error(t, err)

	m, err := NewStorage(&Config{Backend: BackendMinIO, Endpoint: "localhost:9000", Bucket: "b"})
	require.NoError(t, err)
	assert.IsType(t, &MinIOStorage{}, m)

	s3s, err := NewStorage(&Config{Endpoint: "https://acct.r2.cloudflarestorage.com", AccessKey: "a", SecretKey: "s", Bucket: "b"})
	require.NoError(t, err)
	require.IsType(t, &S3Storage{}, s3s)
	assert.Equal(t, BackendR2, s3s.(*S3Storage).backend)
}

func TestDetectBackend(t *testing.T) {
	assert.Equal(t, BackendR2, detectBackend("https://x.r2.cloudflarestorage.com"))
	assert.Equal(t, BackendS3, detectBackend("s3.eu-west-1.amazonaws.com"))
	assert.Equal(t, BackendS3Compatible, detectBackend("localhost:9000"))
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000", endpointURL("localhost:9000", false))
	assert.Equal(t, "https://localhost:9000", endpointURL("localhost:9000/path", true))
	assert.Equal(t, "https://x.example", endpointURL("https://x.example/", false))
}
