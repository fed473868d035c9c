package logger

import (
	"context"
	"time"
)

// Entry carries metric fields (duration_ms, status, size, count) for one
// log line.
//
//	logger.With(logger.Fields{"count": 3}).WithDuration(d).Info(ctx, "listed buckets")
type Entry struct {
	logger *Logger
	fields Fields
}

// With starts an Entry on the default logger.
func With(fields Fields) *Entry {
	return &Entry{logger: GetDefault(), fields: fields}
}

// With merges more fields into a copy of e.
func (e *Entry) With(fields Fields) *Entry {
	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Entry{logger: e.logger, fields: merged}
}

func (e *Entry) WithField(key string, value interface{}) *Entry {
	return e.With(Fields{key: value})
}

// WithDuration records d in milliseconds.
func (e *Entry) WithDuration(d time.Duration) *Entry {
	return e.WithField(FieldDurationMs, d.Milliseconds())
}

func (e *Entry) WithCount(count int) *Entry {
	return e.WithField(FieldCount, count)
}

func (e *Entry) WithSize(size int64) *Entry {
	return e.WithField(FieldSize, size)
}

// WithStatus records an HTTP status code.
func (e *Entry) WithStatus(status int) *Entry {
	return e.WithField(FieldStatus, status)
}

// target prefers the context's logger so request fields are kept.
func (e *Entry) target(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*Logger); ok {
			return l
		}
	}
	return e.logger
}

func (e *Entry) Debug(ctx context.Context, format string, args ...interface{}) {
	e.target(ctx).WithFields(e.fields).Debugf(format, args...)
}

func (e *Entry) Info(ctx context.Context, format string, args ...interface{}) {
	e.target(ctx).WithFields(e.fields).Infof(format, args...)
}

func (e *Entry) Warn(ctx context.Context, format string, args ...interface{}) {
	e.target(ctx).WithFields(e.fields).Warnf(format, args...)
}

func (e *Entry) Error(ctx context.Context, format string, args ...interface{}) {
	e.target(ctx).WithFields(e.fields).Errorf(format, args...)
}
