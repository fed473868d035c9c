package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/uthos/internal/api"
	"github.com/timmy/uthos/internal/config"
	"github.com/timmy/uthos/internal/logger"
	"github.com/timmy/uthos/internal/repository"
	"github.com/timmy/uthos/internal/storage"
	"github.com/timmy/uthos/objectstorage"
)

const testToken = "cli-token"

func startDevServer(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	homedir.DisableCache = true
	log := logger.Discard()

	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		AutoMigrate: true,
	}, log)
	require.NoError(t, err)

	srv := httptest.NewUnstartedServer(nil)
	cfg := &config.ServerConfig{
		Mode:        "test",
		Token:       testToken,
		PublicURL:   "http://" + srv.Listener.Addr().String() + "/v2",
		MaxUploadMB: 4,
	}
	svc, err := api.NewServices(db, storage.NewFsStorage(afero.NewMemMapFs(), ""), cfg, log)
	require.NoError(t, err)
	srv.Config.Handler = api.SetupRouter(svc, cfg, log)
	srv.Start()
	t.Cleanup(func() {
		srv.Close()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return srv.URL + "/v2"
}

// uthos runs one CLI invocation against endpoint and returns its stdout.
func uthos(t *testing.T, endpoint string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{
		"--endpoint", endpoint,
		"--token", testToken,
		"--dc", "innoida",
		"--log-level", "error",
	}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_BucketAndFiles(t *testing.T) {
	endpoint := startDevServer(t)

	out, err := uthos(t, endpoint, "bucket", "create", "cli-bucket", "--size", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "bucket cli-bucket created in innoida")

	_, err = uthos(t, endpoint, "bucket", "exists", "cli-bucket")
	require.NoError(t, err)
	_, err = uthos(t, endpoint, "bucket", "exists", "nope")
	assert.Error(t, err)

	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("bravo!"), 0o644))

	out, err = uthos(t, endpoint, "file", "upload", "cli-bucket", a, b, "--dir", "docs", "-c", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2 of 2 files uploaded")

	out, err = uthos(t, endpoint, "file", "put", "cli-bucket", "/notes/today.md", "--data", "# today")
	require.NoError(t, err)
	assert.Contains(t, out, "notes/today.md stored in cli-bucket (7 bytes)")

	out, err = uthos(t, endpoint, "-o", "json", "file", "list", "cli-bucket", "docs")
	require.NoError(t, err)
	var entries []objectstorage.ObjectEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt", entries[0].Name)
	assert.Equal(t, "b.txt", entries[1].Name)

	out, err = uthos(t, endpoint, "file", "list", "cli-bucket")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "docs")
	assert.Contains(t, out, "notes")

	out, err = uthos(t, endpoint, "file", "get", "cli-bucket", "docs/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "bravo!", out)

	saved := filepath.Join(dir, "saved.txt")
	_, err = uthos(t, endpoint, "file", "get", "cli-bucket", "docs/a.txt", "-O", saved)
	require.NoError(t, err)
	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	out, err = uthos(t, endpoint, "file", "url", "cli-bucket", "docs/a.txt", "--expire", "never")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, endpoint+"/shared/"), out)

	_, err = uthos(t, endpoint, "file", "delete", "cli-bucket", "docs/a.txt")
	require.NoError(t, err)
	_, err = uthos(t, endpoint, "dir", "delete", "cli-bucket", "docs")
	require.NoError(t, err)
	_, err = uthos(t, endpoint, "file", "get", "cli-bucket", "docs/b.txt")
	assert.True(t, objectstorage.IsNotFound(err))

	_, err = uthos(t, endpoint, "bucket", "delete", "cli-bucket")
	assert.ErrorContains(t, err, "--yes")
	_, err = uthos(t, endpoint, "bucket", "delete", "cli-bucket", "--yes")
	require.NoError(t, err)
}

func TestCLI_KeysAndPermissions(t *testing.T) {
	endpoint := startDevServer(t)

	_, err := uthos(t, endpoint, "bucket", "create", "team-bucket")
	require.NoError(t, err)

	out, err := uthos(t, endpoint, "-o", "json", "key", "create", "deploy")
	require.NoError(t, err)
	var key objectstorage.AccessKey
	require.NoError(t, json.Unmarshal([]byte(out), &key))
	require.NotEmpty(t, key.AccessKey)
	require.NotEmpty(t, key.SecretKey)

	_, err = uthos(t, endpoint, "permission", "set", "team-bucket", key.AccessKey, "write")
	require.NoError(t, err)
	_, err = uthos(t, endpoint, "permission", "set", "team-bucket", key.AccessKey, "owner")
	assert.ErrorIs(t, err, objectstorage.ErrInvalidArgument)

	_, err = uthos(t, endpoint, "policy", "set", "team-bucket", "public")
	require.NoError(t, err)

	out, err = uthos(t, endpoint, "key", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "deploy")
	assert.NotContains(t, out, key.SecretKey)

	_, err = uthos(t, endpoint, "key", "disable", "deploy")
	require.NoError(t, err)
}

func TestCLI_Validation(t *testing.T) {
	endpoint := startDevServer(t)

	_, err := uthos(t, endpoint, "-o", "yaml", "bucket", "list")
	assert.ErrorContains(t, err, "unknown output format")

	_, err = uthos(t, endpoint, "file", "upload", "b", "x", "y", "--as", "z")
	assert.ErrorContains(t, err, "--as needs exactly one file")

	_, err = uthos(t, endpoint, "file", "url", "b", "f", "--expire", "1w")
	assert.ErrorIs(t, err, objectstorage.ErrInvalidArgument)
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	reportError(&buf, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())

	buf.Reset()
	reportError(&buf, &objectstorage.Error{Kind: objectstorage.KindAPI, StatusCode: 404, Message: "gone", RequestID: "req-1"})
	assert.Contains(t, buf.String(), "(request id req-1)")
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "1.0 KiB", humanBytes("1024"))
	assert.Equal(t, "5 B", humanBytes("5"))
	assert.Equal(t, "lots", humanBytes("lots"))
}
