package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/timmy/uthos/internal/logger"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-Id"

// LoggerMiddleware returns a Gin middleware that injects a request-scoped logger.
// The caller's X-Request-Id is kept when present so client and server logs
// line up.
// Parameters:
//   - log: base logger to enrich with request fields.
// Returns:
//   - gin.HandlerFunc: middleware handler.
func LoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.GetDefault()
	}
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := log.WithContext(c.Request.Context())
		ctx = logger.SetComponent(ctx, "devserver")
		ctx = logger.SetRequestID(ctx, requestID)
		if route := c.FullPath(); route != "" {
			ctx = logger.SetOperation(ctx, c.Request.Method+" "+route)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Set("logger", logger.FromContext(ctx))
		c.Header(HeaderRequestID, requestID)

		logger.CtxDebug(ctx, "request started: method=%s, path=%s, client_ip=%s",
			c.Request.Method, path, c.ClientIP())

		c.Next()

		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}

		entry := logger.With(logger.Fields{
			logger.FieldMethod:   c.Request.Method,
			logger.FieldPath:     fullPath,
			logger.FieldClientIP: c.ClientIP(),
		}).
			WithStatus(c.Writer.Status()).
			WithDuration(time.Since(start)).
			WithSize(int64(c.Writer.Size()))

		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Warn(ctx, "request failed")
			return
		}
		entry.Info(ctx, "request completed")
	}
}

// GetLogger extracts logger from Gin context or request context.
// Parameters:
//   - c: Gin request context.
// Returns:
//   - *logger.Logger: request-scoped logger or default logger.
func GetLogger(c *gin.Context) *logger.Logger {
	if l, exists := c.Get("logger"); exists {
		if log, ok := l.(*logger.Logger); ok {
			return log
		}
	}
	return logger.FromContext(c.Request.Context())
}
