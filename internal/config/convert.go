package config

import (
	"github.com/sirupsen/logrus"

	"github.com/timmy/uthos/internal/logger"
	"github.com/timmy/uthos/internal/storage"
	"github.com/timmy/uthos/objectstorage"
)

// ObjectStorage converts the client section for objectstorage.New.
func (c ClientConfig) ObjectStorage(log logrus.FieldLogger) objectstorage.ClientConfig {
	return objectstorage.ClientConfig{
		Token:     c.Token,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Endpoint:  c.Endpoint,
		Timeout:   c.Timeout,
		Logger:    log,
	}
}

// LoggerOptions converts the log section for logger.New.
func (l LogConfig) LoggerOptions(service string) logger.Options {
	opts := logger.DefaultOptions()
	opts.ServiceName = service
	opts.Level = l.Level
	opts.Format = l.Format
	opts.File = l.File
	opts.FileOnly = l.FileOnly
	if l.MaxSizeMB > 0 {
		opts.MaxSizeMB = l.MaxSizeMB
	}
	if l.MaxBackups > 0 {
		opts.MaxBackups = l.MaxBackups
	}
	if l.MaxAgeDays > 0 {
		opts.MaxAgeDays = l.MaxAgeDays
	}
	opts.Compress = l.Compress
	return opts
}

// Storage converts the blob section for storage.NewStorage.
func (b BlobConfig) Storage() *storage.Config {
	return &storage.Config{
		Backend:   storage.Backend(b.Backend),
		Root:      b.Root,
		Endpoint:  b.Endpoint,
		AccessKey: b.AccessKey,
		SecretKey: b.SecretKey,
		UseSSL:    b.UseSSL,
		Bucket:    b.Bucket,
		Region:    b.Region,
	}
}
