package objectstorage

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Client talks to the object storage API. It is safe for concurrent use: its
// configuration, derived auth headers and transport are read-only after New.
type Client struct {
	http *resty.Client
	cfg  ClientConfig
	auth map[string]string
	log  logrus.FieldLogger
}

// New validates cfg and builds a client. A *ConfigurationError is returned
// when no complete credential set is present.
func New(cfg ClientConfig) (*Client, error) {
	resolved, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	log := resolved.Logger.WithField("component", "objectstorage")

	if resolved.Endpoint != DefaultEndpoint {
		log.WithField("endpoint", resolved.Endpoint).
			Warn("custom endpoint configured; intended for testing only")
	}
	if cfg.AccessKey != "" && resolved.AuthMode() == AuthBearer {
		log.Debug("both token and access key pair configured, using token")
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(resolved.Endpoint)
	httpClient.SetTimeout(resolved.Timeout)
	httpClient.SetHeader(headerUserAgent, resolved.UserAgent)
	httpClient.SetLogger(log)
	httpClient.OnAfterResponse(traceResponse(log))
	httpClient.OnError(traceError(log))

	return &Client{
		http: httpClient,
		cfg:  resolved,
		auth: resolved.authHeaders(),
		log:  log,
	}, nil
}

// Endpoint returns the resolved API base URL.
func (c *Client) Endpoint() string {
	return c.cfg.Endpoint
}

// AuthMode returns the credential set the client sends.
func (c *Client) AuthMode() AuthMode {
	return c.cfg.AuthMode()
}

// call describes one API request. At most one of jsonBody and form is set.
type call struct {
	op       string
	method   string
	path     string
	query    url.Values
	jsonBody interface{}
	form     *multipartBody
}

// headers returns the body-specific headers of the call.
func (r call) headers() map[string]string {
	switch {
	case r.form != nil:
		return map[string]string{headerContentType: r.form.contentType}
	case r.jsonBody != nil:
		return map[string]string{headerContentType: contentTypeJSON}
	default:
		return nil
	}
}

// do is the single dispatch path. It returns the raw body of a 2xx response
// and a normalized *Error otherwise.
func (c *Client) do(ctx context.Context, r call) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	headers := mergeHeaders(
		c.auth,
		map[string]string{
			headerAccept:    contentTypeJSON,
			headerRequestID: uuid.New().String(),
		},
		r.headers(),
	)

	req := c.http.R().
		SetContext(ctx).
		SetHeaders(headers)
	if len(r.query) > 0 {
		req.SetQueryParamsFromValues(r.query)
	}
	switch {
	case r.form != nil:
		req.SetBody(r.form.data)
	case r.jsonBody != nil:
		req.SetBody(r.jsonBody)
	}

	c.log.WithFields(logrus.Fields{
		"operation":  r.op,
		"method":     r.method,
		"path":       r.path,
		"request_id": headers[headerRequestID],
	}).Debug("dispatching request")

	resp, err := req.Execute(r.method, r.path)
	if nerr := normalizeError(resp, err); nerr != nil {
		return nil, nerr
	}
	return resp.Body(), nil
}

// mergeHeaders layers header maps left to right; later layers win on keys
// that are equal after canonicalization. Inputs are never modified.
func mergeHeaders(layers ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, layer := range layers {
		for k, v := range layer {
			merged[http.CanonicalHeaderKey(k)] = v
		}
	}
	return merged
}

func traceResponse(log logrus.FieldLogger) resty.ResponseMiddleware {
	return func(_ *resty.Client, resp *resty.Response) error {
		entry := log.WithFields(logrus.Fields{
			"method":      resp.Request.Method,
			"url":         resp.Request.URL,
			"status":      resp.StatusCode(),
			"duration_ms": resp.Time().Milliseconds(),
			"request_id":  resp.Request.Header.Get(headerRequestID),
		})
		if resp.IsError() {
			entry.Debug("request failed")
			return nil
		}
		entry.Debug("request completed")
		return nil
	}
}

func traceError(log logrus.FieldLogger) resty.ErrorHook {
	return func(req *resty.Request, err error) {
		log.WithFields(logrus.Fields{
			"method":     req.Method,
			"url":        req.URL,
			"request_id": req.Header.Get(headerRequestID),
		}).WithError(err).Debug("transport failure")
	}
}

// escapePath joins escaped path segments under the API base.
func escapePath(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(escaped, "/")
}

func bucketPath(dc, bucket string, rest ...string) string {
	segments := append([]string{"objectstorage", dc, "bucket", bucket}, rest...)
	return escapePath(segments...) + "/"
}

func requireBucket(dc, bucket string) error {
	if strings.TrimSpace(dc) == "" {
		return invalidArgument("dc", "data center slug is required")
	}
	if strings.TrimSpace(bucket) == "" {
		return invalidArgument("bucket", "bucket name is required")
	}
	return nil
}
