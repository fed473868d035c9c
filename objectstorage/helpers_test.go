package objectstorage

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

type cannedResponse struct {
	status int
	body   string
	header map[string]string
}

// fakeAPI records every request and answers with the configured response.
type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	resp     cannedResponse
	server   *httptest.Server
}

func newFakeAPI(t *testing.T, status int, body string) *fakeAPI {
	t.Helper()
	f := &fakeAPI{resp: cannedResponse{status: status, body: body}}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   data,
		})
		resp := f.resp
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		for k, v := range resp.header {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.status)
		_, _ = io.WriteString(w, resp.body)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) respond(status int, body string, header map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resp = cannedResponse{status: status, body: body, header: header}
}

func (f *fakeAPI) endpoint() string {
	return f.server.URL + "/v2"
}

func (f *fakeAPI) tokenClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(ClientConfig{Token: "tok-123", Endpoint: f.endpoint()})
	require.NoError(t, err)
	return c
}

func (f *fakeAPI) keyClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(ClientConfig{AccessKey: "AK", SecretKey: "SK", Endpoint: f.endpoint()})
	require.NoError(t, err)
	return c
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAPI) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests, "no request reached the server")
	return f.requests[len(f.requests)-1]
}

type formPart struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

func parseForm(t *testing.T, contentType string, body []byte) []formPart {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	mr := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	var parts []formPart
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(p)
		require.NoError(t, err)
		parts = append(parts, formPart{
			Field:       p.FormName(),
			Filename:    p.FileName(),
			ContentType: p.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return parts
}

func partsNamed(parts []formPart, field string) []formPart {
	var out []formPart
	for _, p := range parts {
		if p.Field == field {
			out = append(out, p)
		}
	}
	return out
}
