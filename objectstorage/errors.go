package objectstorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Sentinel errors for use with errors.Is.
var (
	ErrConfiguration   = errors.New("objectstorage: invalid configuration")
	ErrInvalidArgument = errors.New("objectstorage: invalid argument")
	ErrNotFound        = errors.New("objectstorage: not found")
	ErrTimeout         = errors.New("objectstorage: timeout")
)

// Error codes set on transport-side failures.
const (
	CodeTimeout   = "timeout"
	CodeCanceled  = "canceled"
	CodeTransport = "transport_error"
	CodeDecode    = "invalid_response"
)

// ConfigurationError reports a ClientConfig that cannot produce a client.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("objectstorage: invalid configuration: %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// InvalidArgumentError reports an argument rejected before any request is sent.
type InvalidArgumentError struct {
	Argument string
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("objectstorage: invalid argument %s: %s", e.Argument, e.Reason)
}

// Is reports whether target is ErrInvalidArgument.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func invalidArgument(arg, format string, args ...interface{}) error {
	return &InvalidArgumentError{Argument: arg, Reason: fmt.Sprintf(format, args...)}
}

// Kind classifies a normalized remote failure.
type Kind int

const (
	// KindTransport covers network level failures: timeouts, DNS, refused
	// connections, cancelled contexts and unreadable responses.
	KindTransport Kind = iota + 1
	// KindAPI covers non-2xx responses from the service.
	KindAPI
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAPI:
		return "api"
	default:
		return "unknown"
	}
}

// Error is the normalized shape of every failed remote call. Callers never see
// the transport library's own error types.
type Error struct {
	Kind       Kind
	Code       string
	Message    string
	StatusCode int
	RequestID  string
	Timeout    bool
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("objectstorage: ")
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d", e.StatusCode)
		if e.Code != "" {
			fmt.Fprintf(&b, ", code %s", e.Code)
		}
		b.WriteString(")")
	} else if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.RequestID != "" {
		fmt.Fprintf(&b, " [request_id=%s]", e.RequestID)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches ErrNotFound for API 404s and ErrTimeout for timeouts.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindAPI && e.StatusCode == http.StatusNotFound
	case ErrTimeout:
		return e.Timeout
	}
	return false
}

// IsNotFound reports whether err is an API error with status 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTimeout reports whether err is a transport timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// StatusCode returns the HTTP status of an API error, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// apiErrorBody is the loosest shape the service uses for error payloads.
type apiErrorBody struct {
	Status    string      `json:"status"`
	Code      interface{} `json:"code"`
	Message   string      `json:"message"`
	Error     string      `json:"error"`
	Detail    string      `json:"detail"`
	RequestID string      `json:"request_id"`
	ReqID     string      `json:"requestId"`
}

// normalizeError is the single place where transport results become errors.
// It returns nil for 2xx responses.
func normalizeError(resp *resty.Response, err error) error {
	if err != nil {
		var normalized *Error
		if errors.As(err, &normalized) {
			return normalized
		}
		return newTransportError(err)
	}
	if resp == nil {
		return &Error{Kind: KindTransport, Code: CodeTransport, Message: "no response received"}
	}
	if resp.IsSuccess() {
		return nil
	}
	return newAPIError(resp.StatusCode(), resp.Header(), resp.Body())
}

func newTransportError(err error) *Error {
	e := &Error{Kind: KindTransport, Code: CodeTransport, Message: err.Error(), Err: err}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		e.Code, e.Timeout = CodeTimeout, true
	case errors.As(err, &netErr) && netErr.Timeout():
		e.Code, e.Timeout = CodeTimeout, true
	case errors.Is(err, context.Canceled):
		e.Code = CodeCanceled
	}
	return e
}

func newAPIError(status int, header http.Header, body []byte) *Error {
	e := &Error{
		Kind:       KindAPI,
		StatusCode: status,
		Code:       strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_")),
	}
	if header != nil {
		e.RequestID = header.Get(headerRequestID)
	}

	var parsed apiErrorBody
	if len(body) > 0 && json.Unmarshal(body, &parsed) == nil {
		if code := codeString(parsed.Code); code != "" {
			e.Code = code
		}
		switch {
		case parsed.Message != "":
			e.Message = parsed.Message
		case parsed.Error != "":
			e.Message = parsed.Error
		case parsed.Detail != "":
			e.Message = parsed.Detail
		}
		if parsed.RequestID != "" {
			e.RequestID = parsed.RequestID
		} else if parsed.ReqID != "" {
			e.RequestID = parsed.ReqID
		}
	} else if len(body) > 0 {
		e.Message = truncate(strings.TrimSpace(string(body)), 512)
	}

	if e.Message == "" {
		e.Message = fmt.Sprintf("HTTP %d", status)
	}
	return e
}

func codeString(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return fmt.Sprintf("%d", int64(c))
	default:
		return fmt.Sprint(c)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
