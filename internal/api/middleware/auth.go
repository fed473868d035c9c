package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/timmy/uthos/internal/domain"
	"github.com/timmy/uthos/internal/logger"
	"github.com/timmy/uthos/internal/service"
)

const principalKey = "principal"

// Authenticator resolves request credentials to a caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token, accessKey, secretKey string) (*service.Principal, error)
}

// Authorizer decides whether a caller may act on a bucket.
type Authorizer interface {
	Authorize(ctx context.Context, p *service.Principal, dc, bucket string, want domain.PermissionLevel) error
}

// Auth rejects requests without valid credentials. Accepted forms are
// "Authorization: Bearer <token>" or the X-Access-Key and X-Secret-Key pair.
func Auth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		p, err := authn.Authenticate(c.Request.Context(), token, c.GetHeader("X-Access-Key"), c.GetHeader("X-Secret-Key"))
		if err != nil {
			if !errors.Is(err, service.ErrUnauthorized) {
				_ = c.Error(err)
				AbortError(c, http.StatusInternalServerError, "internal_error", "authentication failed")
				return
			}
			AbortError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid credentials")
			return
		}

		c.Set(principalKey, p)
		ctx := logger.WithField(c.Request.Context(), "principal", p.Name)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RootOnly lets through callers holding the root credentials.
func RootOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if p := GetPrincipal(c); p == nil || !p.Root {
			AbortError(c, http.StatusForbidden, "forbidden", "this operation needs root credentials")
			return
		}
		c.Next()
	}
}

// BucketAccess checks the caller's grant on the :dc/:name bucket of the route.
func BucketAccess(authz Authorizer, want domain.PermissionLevel) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := authz.Authorize(c.Request.Context(), GetPrincipal(c), c.Param("dc"), c.Param("name"), want)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, service.ErrUnauthorized):
			AbortError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid credentials")
		case errors.Is(err, service.ErrForbidden):
			AbortError(c, http.StatusForbidden, "forbidden", "access key lacks "+string(want)+" permission on this bucket")
		default:
			_ = c.Error(err)
			AbortError(c, http.StatusInternalServerError, "internal_error", "authorization failed")
		}
	}
}

// GetPrincipal returns the authenticated caller, or nil.
func GetPrincipal(c *gin.Context) *service.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(*service.Principal); ok {
			return p
		}
	}
	return nil
}

// AbortError stops the chain with the error envelope of the API.
func AbortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"status":     "error",
		"code":       code,
		"message":    message,
		"request_id": requestID(c),
	})
}

// requestID prefers the id bound to the request logger over the echoed header.
func requestID(c *gin.Context) string {
	if id := logger.GetRequestID(c.Request.Context()); id != "" {
		return id
	}
	return c.Writer.Header().Get(HeaderRequestID)
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
