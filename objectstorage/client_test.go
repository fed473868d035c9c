package objectstorage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_BearerHeaders(t *testing.T) {
	api := newFakeAPI(t, 200, `{"data":[]}`)
	c := api.tokenClient(t)

	_, err := c.ListBuckets(t.Context(), "innoida")
	require.NoError(t, err)

	req := api.last(t)
	assert.Equal(t, "Bearer tok-123", req.Header.Get("Authorization"))
	assert.Empty(t, req.Header.Get("X-Access-Key"))
	assert.Empty(t, req.Header.Get("X-Secret-Key"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.NotEmpty(t, req.Header.Get("X-Request-Id"))
	assert.Equal(t, "uthos-go/"+Version, req.Header.Get("User-Agent"))
}

func TestClient_KeyPairHeaders(t *testing.T) {
	api := newFakeAPI(t, 200, `{"data":[]}`)
	c := api.keyClient(t)

	_, err := c.ListAccessKeys(t.Context(), "innoida")
	require.NoError(t, err)

	req := api.last(t)
	assert.Empty(t, req.Header.Get("Authorization"))
	assert.Equal(t, "AK", req.Header.Get("X-Access-Key"))
	assert.Equal(t, "SK", req.Header.Get("X-Secret-Key"))
}

func TestClient_BothCredentialSetsSendsBearerOnly(t *testing.T) {
	api := newFakeAPI(t, 200, `{"data":[]}`)
	c, err := New(ClientConfig{Token: "tok", AccessKey: "AK", SecretKey: "SK", Endpoint: api.endpoint()})
	require.NoError(t, err)

	_, err = c.ListBuckets(t.Context(), "innoida")
	require.NoError(t, err)

	req := api.last(t)
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	assert.Empty(t, req.Header.Get("X-Access-Key"))
}

func TestClient_Routes(t *testing.T) {
	tests := []struct {
		name   string
		call   func(c *Client) error
		method string
		path   string
	}{
		{
			name:   "ListBuckets",
			call:   func(c *Client) error { _, err := c.ListBuckets(context.Background(), "innoida"); return err },
			method: http.MethodGet,
			path:   "/v2/objectstorage/innoida/bucket/",
		},
		{
			name: "CreateBucket",
			call: func(c *Client) error {
				_, err := c.CreateBucket(context.Background(), CreateBucketRequest{DC: "innoida", Name: "b", Size: 250})
				return err
			},
			method: http.MethodPost,
			path:   "/v2/objectstorage/bucket/create/",
		},
		{
			name:   "GetBucketDetails",
			call:   func(c *Client) error { _, err := c.GetBucketDetails(context.Background(), "innoida", "b"); return err },
			method: http.MethodGet,
			path:   "/v2/objectstorage/innoida/bucket/b/",
		},
		{
			name:   "DeleteBucket",
			call:   func(c *Client) error { return c.DeleteBucket(context.Background(), "innoida", "b") },
			method: http.MethodDelete,
			path:   "/v2/objectstorage/innoida/bucket/b/delete/",
		},
		{
			name:   "ListAccessKeys",
			call:   func(c *Client) error { _, err := c.ListAccessKeys(context.Background(), "innoida"); return err },
			method: http.MethodGet,
			path:   "/v2/objectstorage/innoida/accesskeys/",
		},
		{
			name:   "CreateAccessKey",
			call:   func(c *Client) error { _, err := c.CreateAccessKey(context.Background(), "innoida", "ci"); return err },
			method: http.MethodPost,
			path:   "/v2/objectstorage/innoida/accesskey/create/",
		},
		{
			name:   "ModifyAccessKey",
			call:   func(c *Client) error { return c.ModifyAccessKey(context.Background(), "innoida", "ci", AccessKeyDisable) },
			method: http.MethodPost,
			path:   "/v2/objectstorage/innoida/accesskey/ci/status/",
		},
		{
			name:   "UpdatePolicy",
			call:   func(c *Client) error { return c.UpdatePolicy(context.Background(), "innoida", "b", PolicyPublic) },
			method: http.MethodPost,
			path:   "/v2/objectstorage/innoida/bucket/b/policy/public/",
		},
		{
			name: "UpdatePermission",
			call: func(c *Client) error {
				return c.UpdatePermission(context.Background(), "innoida", "b", PermissionRead, "ci")
			},
			method: http.MethodPost,
			path:   "/v2/objectstorage/innoida/bucket/b/permission/",
		},
		{
			name:   "CreateDirectory",
			call:   func(c *Client) error { return c.CreateDirectory(context.Background(), "innoida", "b", "docs/2024") },
			method: http.MethodPost,
			path:   "/v2/objectstorage/innoida/bucket/b/createdirectory/",
		},
		{
			name:   "ListObjects",
			call:   func(c *Client) error { _, err := c.ListObjects(context.Background(), "innoida", "b"); return err },
			method: http.MethodGet,
			path:   "/v2/objectstorage/innoida/bucket/b/objects/",
		},
		{
			name:   "DeleteFile",
			call:   func(c *Client) error { return c.DeleteFile(context.Background(), "innoida", "b", "docs/a.txt") },
			method: http.MethodDelete,
			path:   "/v2/objectstorage/innoida/bucket/b/delete/object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t, 200, `{"status":"success","data":[]}`)
			c := api.tokenClient(t)
			// data:[] does not decode into single resources; those calls
			// only need the route checked
			_ = tt.call(c)

			req := api.last(t)
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.path, req.Path)
		})
	}
}

func TestClient_JSONBodies(t *testing.T) {
	api := newFakeAPI(t, 200, `{"status":"success"}`)
	c := api.tokenClient(t)

	_, err := c.CreateBucket(t.Context(), CreateBucketRequest{DC: "innoida", Name: "b", Size: 250, Billing: "hourly"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"dcslug":"innoida","name":"b","size":250,"billing":"hourly"}`, string(api.last(t).Body))
	assert.Equal(t, "application/json", api.last(t).Header.Get("Content-Type"))

	require.NoError(t, c.UpdatePermission(t.Context(), "innoida", "b", PermissionWrite, "ci"))
	assert.JSONEq(t, `{"accesskey":"ci","type":"write"}`, string(api.last(t).Body))

	require.NoError(t, c.ModifyAccessKey(t.Context(), "innoida", "ci", AccessKeyRemove))
	assert.JSONEq(t, `{"status":"remove"}`, string(api.last(t).Body))

	require.NoError(t, c.CreateDirectory(t.Context(), "innoida", "b", "/docs/"))
	assert.JSONEq(t, `{"path":"docs"}`, string(api.last(t).Body))
}

func TestCreateBucket_EchoesRequestOnBareSuccess(t *testing.T) {
	api := newFakeAPI(t, 200, `{"status":"success"}`)
	c := api.tokenClient(t)

	b, err := c.CreateBucket(t.Context(), CreateBucketRequest{DC: "innoida", Name: "b", Size: 250, Billing: "monthly"})
	require.NoError(t, err)
	assert.Equal(t, "b", b.Name)
	assert.Equal(t, "innoida", b.DCSlug)
	assert.Equal(t, "monthly", b.Billing)
}

func TestCreateBucket_EchoesRequestOnEmptyBody(t *testing.T) {
	api := newFakeAPI(t, 200, ``)
	b, err := api.tokenClient(t).CreateBucket(t.Context(), CreateBucketRequest{DC: "innoida", Name: "b", Size: 250})
	require.NoError(t, err)
	assert.Equal(t, "b", b.Name)
}

func TestCreateBucket_MalformedSuccessBody(t *testing.T) {
	for _, body := range []string{`<html>gateway says hi</html>`, `{"data": 42}`, `[1,2]`} {
		api := newFakeAPI(t, 200, body)
		b, err := api.tokenClient(t).CreateBucket(t.Context(), CreateBucketRequest{DC: "innoida", Name: "bkt", Size: 10})
		assert.Nil(t, b, body)
		var e *Error
		require.True(t, errors.As(err, &e), body)
		assert.Equal(t, CodeDecode, e.Code, body)
	}
}

func TestCreateBucket_RejectsNonPositiveSize(t *testing.T) {
	api := newFakeAPI(t, 200, `{}`)
	c := api.tokenClient(t)

	_, err := c.CreateBucket(t.Context(), CreateBucketRequest{DC: "innoida", Name: "b"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 0, api.count())
}

func TestClient_EnvelopeShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"DataWrapped", `{"status":"success","data":[{"name":"a"},{"name":"b"}]}`, []string{"a", "b"}},
		{"RawArray", `[{"name":"a"}]`, []string{"a"}},
		{"Keyed", `{"buckets":[{"name":"c","size":"250","object_count":3}]}`, []string{"c"}},
		{"DataNull", `{"status":"success","data":null}`, []string{}},
		{"Empty", ``, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t, 200, tt.body)
			c := api.tokenClient(t)

			buckets, err := c.ListBuckets(t.Context(), "innoida")
			require.NoError(t, err)

			names := []string{}
			for _, b := range buckets {
				names = append(names, b.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestClient_QuantityAcceptsStringsAndNumbers(t *testing.T) {
	api := newFakeAPI(t, 200, `{"data":{"name":"b","size":"250","object_count":12}}`)
	c := api.tokenClient(t)

	b, err := c.GetBucketDetails(t.Context(), "innoida", "b")
	require.NoError(t, err)

	size, err := b.Size.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(250), size)
	count, err := b.ObjectCount.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
}

func TestClient_NotFoundNormalized(t *testing.T) {
	api := newFakeAPI(t, 200, `{}`)
	api.respond(http.StatusNotFound,
		`{"status":"error","code":"bucket_not_found","message":"Bucket does not exist"}`,
		map[string]string{"X-Request-Id": "req-42"})
	c := api.tokenClient(t)

	_, err := c.GetBucketDetails(t.Context(), "innoida", "missing")
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindAPI, apiErr.Kind)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "bucket_not_found", apiErr.Code)
	assert.Equal(t, "Bucket does not exist", apiErr.Message)
	assert.Equal(t, "req-42", apiErr.RequestID)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsTimeout(err))
	assert.Equal(t, 404, StatusCode(err))
	assert.Contains(t, err.Error(), "request_id=req-42")
}

func TestClient_RawErrorBody(t *testing.T) {
	api := newFakeAPI(t, 200, `{}`)
	api.respond(http.StatusInternalServerError, "upstream exploded", nil)
	c := api.tokenClient(t)

	err := c.DeleteBucket(t.Context(), "innoida", "b")

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.StatusCode)
	assert.Equal(t, "internal_server_error", apiErr.Code)
	assert.Equal(t, "upstream exploded", apiErr.Message)
	assert.False(t, IsNotFound(err))
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c, err := New(ClientConfig{Token: "tok", Endpoint: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.ListBuckets(t.Context(), "innoida")
	require.Error(t, err)

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, KindTransport, e.Kind)
	assert.Equal(t, CodeTimeout, e.Code)
	assert.True(t, IsTimeout(err))
	assert.Equal(t, 0, e.StatusCode)
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	c, err := New(ClientConfig{Token: "tok", Endpoint: endpoint})
	require.NoError(t, err)

	_, err = c.ListBuckets(t.Context(), "innoida")

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, KindTransport, e.Kind)
	assert.Equal(t, CodeTransport, e.Code)
	assert.False(t, IsTimeout(err))
	assert.NotNil(t, e.Unwrap())
}

func TestClient_CanceledContext(t *testing.T) {
	api := newFakeAPI(t, 200, `{"data":[]}`)
	c := api.tokenClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListBuckets(ctx, "innoida")

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, CodeCanceled, e.Code)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBucketExists(t *testing.T) {
	t.Run("Present", func(t *testing.T) {
		api := newFakeAPI(t, 200, `{"data":{"name":"b"}}`)
		ok, err := api.tokenClient(t).BucketExists(t.Context(), "innoida", "b")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("NotFoundIsFalse", func(t *testing.T) {
		api := newFakeAPI(t, http.StatusNotFound, `{"message":"not found"}`)
		ok, err := api.tokenClient(t).BucketExists(t.Context(), "innoida", "b")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ServerErrorPropagates", func(t *testing.T) {
		api := newFakeAPI(t, http.StatusInternalServerError, `{"message":"boom"}`)
		ok, err := api.tokenClient(t).BucketExists(t.Context(), "innoida", "b")
		require.Error(t, err)
		assert.False(t, ok)
		assert.Equal(t, 500, StatusCode(err))
	})

	t.Run("ForbiddenPropagates", func(t *testing.T) {
		api := newFakeAPI(t, http.StatusForbidden, `{"message":"no"}`)
		_, err := api.tokenClient(t).BucketExists(t.Context(), "innoida", "b")
		assert.Equal(t, 403, StatusCode(err))
	})
}

func TestGetSharableURL(t *testing.T) {
	t.Run("NeverIsOneYear", func(t *testing.T) {
		api := newFakeAPI(t, 200, `{"data":{"url":"https://cdn.example/x"}}`)
		u, err := api.tokenClient(t).GetSharableURL(t.Context(), "innoida", "b", "docs/a.txt", ExpireNever)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/x", u)

		req := api.last(t)
		assert.Equal(t, "/v2/objectstorage/innoida/bucket/b/download", req.Path)
		assert.Equal(t, "1y", req.Query.Get("expire"))
		assert.Equal(t, "docs/a.txt", req.Query.Get("path"))
	})

	t.Run("ExplicitDuration", func(t *testing.T) {
		api := newFakeAPI(t, 200, `"https://cdn.example/y"`)
		u, err := api.tokenClient(t).GetSharableURL(t.Context(), "innoida", "b", "a.txt", "7d")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/y", u)
		assert.Equal(t, "7d", api.last(t).Query.Get("expire"))
	})

	t.Run("InvalidDurationSendsNothing", func(t *testing.T) {
		api := newFakeAPI(t, 200, `{}`)
		_, err := api.tokenClient(t).GetSharableURL(t.Context(), "innoida", "b", "a.txt", "forever")
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Equal(t, 0, api.count())
	})

	t.Run("MissingURLIsDecodeError", func(t *testing.T) {
		api := newFakeAPI(t, 200, `{"status":"success"}`)
		_, err := api.tokenClient(t).GetSharableURL(t.Context(), "innoida", "b", "a.txt", "1h")
		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, CodeDecode, e.Code)
	})
}

func TestGetObject_OneHour(t *testing.T) {
	api := newFakeAPI(t, 200, `{"signed_url":"https://cdn.example/z"}`)
	u, err := api.tokenClient(t).GetObject(t.Context(), "innoida", "b", "docs/z.txt")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/z", u)
	assert.Equal(t, "1h", api.last(t).Query.Get("expire"))
}

func TestListObjectsIn_SendsPath(t *testing.T) {
	api := newFakeAPI(t, 200, `{"data":{"objects":[{"name":"a.txt","type":"file","size":3},{"name":"sub","type":"directory"}]}}`)
	entries, err := api.tokenClient(t).ListObjectsIn(t.Context(), "innoida", "b", "/docs/")
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.False(t, entries[0].IsDir())
	assert.True(t, entries[1].IsDir())
	assert.Equal(t, "docs", api.last(t).Query.Get("path"))
}

func TestDeleteFile_RejectsDirectoryPaths(t *testing.T) {
	api := newFakeAPI(t, 200, `{}`)
	c := api.tokenClient(t)

	assert.ErrorIs(t, c.DeleteFile(t.Context(), "innoida", "b", "docs/"), ErrInvalidArgument)
	assert.ErrorIs(t, c.DeleteFile(t.Context(), "innoida", "b", ""), ErrInvalidArgument)
	assert.Equal(t, 0, api.count())

	require.NoError(t, c.DeleteDirectory(t.Context(), "innoida", "b", "docs/"))
	assert.Equal(t, "docs", api.last(t).Query.Get("path"))
}

func TestClient_ArgumentValidation(t *testing.T) {
	api := newFakeAPI(t, 200, `{}`)
	c := api.tokenClient(t)
	ctx := t.Context()

	assert.ErrorIs(t, c.UpdatePolicy(ctx, "innoida", "b", Policy("secret")), ErrInvalidArgument)
	assert.ErrorIs(t, c.UpdatePermission(ctx, "innoida", "b", PermissionLevel("admin"), "ci"), ErrInvalidArgument)
	assert.ErrorIs(t, c.ModifyAccessKey(ctx, "innoida", "ci", AccessKeyStatus("pause")), ErrInvalidArgument)
	_, err := c.ListBuckets(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 0, api.count())
}
