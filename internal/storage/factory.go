package storage

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// Backend names a storage implementation.
type Backend string

const (
	BackendMemory       Backend = "memory"
	BackendLocal        Backend = "local"
	BackendMinIO        Backend = "minio"
	BackendS3           Backend = "s3"
	BackendR2           Backend = "r2"
	BackendS3Compatible Backend = "s3compatible"
)

// Config selects and configures a backend.
type Config struct {
	Backend   Backend
	Root      string // local backend directory
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
}

// NewStorage creates the ObjectStorage named by cfg.Backend. An empty backend
// with an endpoint is detected from the endpoint host; with neither it is
// memory.
func NewStorage(cfg *Config) (ObjectStorage, error) {
	backend := cfg.Backend
	if backend == "" {
		if cfg.Endpoint == "" {
			backend = BackendMemory
		} else {
			backend = detectBackend(cfg.Endpoint)
		}
	}

	switch backend {
	case BackendMemory:
		return NewFsStorage(afero.NewMemMapFs(), ""), nil
	case BackendLocal:
		if cfg.Root == "" {
			return nil, fmt.Errorf("local storage requires a root directory")
		}
		return NewFsStorage(afero.NewOsFs(), cfg.Root), nil
	case BackendMinIO:
		return NewMinIOStorage(&MinIOConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
		})
	case BackendS3, BackendR2, BackendS3Compatible:
		c := *cfg
		c.Backend = backend
		return NewS3Storage(&c)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// detectBackend guesses the flavour of an S3 endpoint from its host.
func detectBackend(endpoint string) Backend {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return BackendR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return BackendS3
	default:
		return BackendS3Compatible
	}
}
