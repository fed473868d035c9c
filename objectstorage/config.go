package objectstorage

import (
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultEndpoint is the production API base URL. Overriding it is meant
	// for testing against a local emulator.
	DefaultEndpoint = "https://api.utho.com/v2"

	// DefaultTimeout bounds every request when ClientConfig.Timeout is zero.
	DefaultTimeout = 30 * time.Second

	// Version is reported in the default User-Agent.
	Version = "0.3.0"
)

const (
	headerAuthorization = "Authorization"
	headerAccessKey     = "X-Access-Key"
	headerSecretKey     = "X-Secret-Key"
	headerRequestID     = "X-Request-Id"
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerUserAgent     = "User-Agent"

	contentTypeJSON        = "application/json"
	contentTypeOctetStream = "application/octet-stream"
)

// AuthMode identifies which credential set a client sends.
type AuthMode string

const (
	AuthBearer  AuthMode = "bearer"
	AuthKeyPair AuthMode = "keypair"
)

// ClientConfig holds connection parameters for a Client.
type ClientConfig struct {
	// Token is a bearer API token. Takes precedence over the key pair.
	Token string

	// AccessKey and SecretKey form the alternate credential set. Both are
	// required when Token is empty.
	AccessKey string
	SecretKey string

	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration

	// Endpoint is the API base URL. Defaults to DefaultEndpoint.
	Endpoint string

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Logger receives request traces and configuration warnings. Output is
	// discarded when nil.
	Logger logrus.FieldLogger
}

// AuthMode reports the credential set this configuration resolves to, or ""
// when none is complete.
func (c ClientConfig) AuthMode() AuthMode {
	switch {
	case strings.TrimSpace(c.Token) != "":
		return AuthBearer
	case strings.TrimSpace(c.AccessKey) != "" && strings.TrimSpace(c.SecretKey) != "":
		return AuthKeyPair
	default:
		return ""
	}
}

// Validate checks the credential invariant and the endpoint/timeout values.
func (c ClientConfig) Validate() error {
	_, err := c.resolve()
	return err
}

// resolve validates the configuration and returns a copy with defaults applied.
func (c ClientConfig) resolve() (ClientConfig, error) {
	c.Token = strings.TrimSpace(c.Token)
	c.AccessKey = strings.TrimSpace(c.AccessKey)
	c.SecretKey = strings.TrimSpace(c.SecretKey)

	if c.AuthMode() == "" {
		switch {
		case c.AccessKey != "":
			return c, &ConfigurationError{Field: "secret_key", Reason: "required when access_key is set and no token is given"}
		case c.SecretKey != "":
			return c, &ConfigurationError{Field: "access_key", Reason: "required when secret_key is set and no token is given"}
		default:
			return c, &ConfigurationError{Field: "credentials", Reason: "a token or an access_key/secret_key pair is required"}
		}
	}

	if c.Timeout < 0 {
		return c, &ConfigurationError{Field: "timeout", Reason: "must not be negative"}
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}

	c.Endpoint = strings.TrimRight(strings.TrimSpace(c.Endpoint), "/")
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return c, &ConfigurationError{Field: "endpoint", Reason: err.Error()}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return c, &ConfigurationError{Field: "endpoint", Reason: "must be an absolute http(s) URL"}
	}

	if c.UserAgent == "" {
		c.UserAgent = "uthos-go/" + Version
	}
	if c.Logger == nil {
		c.Logger = discardLogger()
	}
	return c, nil
}

// authHeaders derives the credential headers. Only one mode is ever emitted.
func (c ClientConfig) authHeaders() map[string]string {
	switch c.AuthMode() {
	case AuthBearer:
		return map[string]string{headerAuthorization: "Bearer " + strings.TrimSpace(c.Token)}
	case AuthKeyPair:
		return map[string]string{
			headerAccessKey: strings.TrimSpace(c.AccessKey),
			headerSecretKey: strings.TrimSpace(c.SecretKey),
		}
	default:
		return map[string]string{}
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
