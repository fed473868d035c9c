package logger

import (
	"context"
	"sync"
)

type contextKey struct{}

var loggerKey = contextKey{}

var (
	defaultLogger   *Logger
	defaultLoggerMu sync.RWMutex
)

func init() {
	defaultLogger = New(DefaultOptions())
}

// GetDefault returns the process-wide logger.
func GetDefault() *Logger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger replaces the process-wide logger. nil is ignored.
func SetDefaultLogger(l *Logger) {
	if l == nil {
		return
	}
	defaultLoggerMu.Lock()
	defaultLogger = l
	defaultLoggerMu.Unlock()
}

// WithContext returns a copy of ctx carrying l.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger carried by ctx, or the default logger.
func FromContext(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*Logger); ok {
			return l
		}
	}
	return GetDefault()
}

// WithField returns a context whose logger carries one more field.
func WithField(ctx context.Context, key string, value interface{}) context.Context {
	return FromContext(ctx).WithField(key, value).WithContext(ctx)
}

// WithFields returns a context whose logger carries the given fields.
func WithFields(ctx context.Context, fields Fields) context.Context {
	return FromContext(ctx).WithFields(fields).WithContext(ctx)
}

func SetRequestID(ctx context.Context, id string) context.Context {
	return WithField(ctx, FieldRequestID, id)
}

func SetComponent(ctx context.Context, name string) context.Context {
	return WithField(ctx, FieldComponent, name)
}

func SetOperation(ctx context.Context, op string) context.Context {
	return WithField(ctx, FieldOperation, op)
}

// SetBucket tags the context with the data center and bucket an operation
// targets.
func SetBucket(ctx context.Context, dc, bucket string) context.Context {
	return WithFields(ctx, Fields{FieldDC: dc, FieldBucket: bucket})
}

// GetFieldString returns a string field of the context's logger, or "".
func GetFieldString(ctx context.Context, key string) string {
	val, ok := FromContext(ctx).Data[key]
	if !ok {
		return ""
	}
	str, _ := val.(string)
	return str
}

func GetRequestID(ctx context.Context) string {
	return GetFieldString(ctx, FieldRequestID)
}

func GetOperation(ctx context.Context) string {
	return GetFieldString(ctx, FieldOperation)
}

// GetFields copies every field of the context's logger.
func GetFields(ctx context.Context) Fields {
	data := FromContext(ctx).Data
	fields := make(Fields, len(data))
	for k, v := range data {
		fields[k] = v
	}
	return fields
}
