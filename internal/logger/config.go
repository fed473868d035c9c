package logger

import (
	"io"
	"os"
	"strconv"
)

// Options describes where and how a Logger writes.
type Options struct {
	Level       string    // debug, info, warn, error
	Format      string    // json, text
	Output      io.Writer // overrides Stdout/File when set
	ServiceName string

	// File enables a rotated log file next to (or instead of) stdout.
	File     string
	FileOnly bool

	// Rotation, passed to lumberjack.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultOptions logs JSON at info level to stdout.
func DefaultOptions() Options {
	return Options{
		Level:       "info",
		Format:      "json",
		ServiceName: "uthos",
		MaxSizeMB:   100,
		MaxBackups:  7,
		MaxAgeDays:  30,
		Compress:    true,
	}
}

// OptionsFromEnv reads LOG_* variables on top of DefaultOptions. It exists for
// bootstrapping, before the full configuration has been loaded.
func OptionsFromEnv() Options {
	o := DefaultOptions()
	o.Level = getEnv("LOG_LEVEL", o.Level)
	o.Format = getEnv("LOG_FORMAT", o.Format)
	o.ServiceName = getEnv("SERVICE_NAME", o.ServiceName)
	o.File = getEnv("LOG_FILE", "")
	o.FileOnly = getEnvBool("LOG_FILE_ONLY", false)
	o.MaxSizeMB = getEnvInt("LOG_MAX_SIZE", o.MaxSizeMB)
	o.MaxBackups = getEnvInt("LOG_MAX_BACKUPS", o.MaxBackups)
	o.MaxAgeDays = getEnvInt("LOG_MAX_AGE", o.MaxAgeDays)
	o.Compress = getEnvBool("LOG_COMPRESS", o.Compress)
	return o
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	i, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return i
}
