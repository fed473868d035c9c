package objectstorage

import (
	"bytes"
	"context"
	"net/http"
	"strings"
)

// ListBuckets returns the buckets in a data center.
func (c *Client) ListBuckets(ctx context.Context, dc string) ([]Bucket, error) {
	if strings.TrimSpace(dc) == "" {
		return nil, invalidArgument("dc", "data center slug is required")
	}
	body, err := c.do(ctx, call{
		op:     "list_buckets",
		method: http.MethodGet,
		path:   escapePath("objectstorage", dc, "bucket") + "/",
	})
	if err != nil {
		return nil, err
	}
	return decodeList[Bucket](body, "buckets")
}

// CreateBucket creates a bucket and returns the service's view of it. When
// the service answers without a body the request fields are echoed back.
func (c *Client) CreateBucket(ctx context.Context, req CreateBucketRequest) (*Bucket, error) {
	if err := requireBucket(req.DC, req.Name); err != nil {
		return nil, err
	}
	if req.Size <= 0 {
		return nil, invalidArgument("size", "must be positive, got %d", req.Size)
	}
	body, err := c.do(ctx, call{
		op:       "create_bucket",
		method:   http.MethodPost,
		path:     "/objectstorage/bucket/create/",
		jsonBody: req,
	})
	if err != nil {
		return nil, err
	}

	echo := &Bucket{Name: req.Name, DCSlug: req.DC, Billing: req.Billing}
	if len(bytes.TrimSpace(body)) == 0 {
		return echo, nil
	}
	bucket, err := decodeOne[Bucket](body)
	if err != nil {
		return nil, err
	}
	if bucket.Name == "" {
		// Some deployments answer {"status":"success"} only.
		return echo, nil
	}
	return &bucket, nil
}

// GetBucketDetails returns one bucket. A missing bucket is an *Error with
// StatusCode 404.
func (c *Client) GetBucketDetails(ctx context.Context, dc, name string) (*Bucket, error) {
	if err := requireBucket(dc, name); err != nil {
		return nil, err
	}
	body, err := c.do(ctx, call{
		op:     "get_bucket",
		method: http.MethodGet,
		path:   bucketPath(dc, name),
	})
	if err != nil {
		return nil, err
	}
	bucket, err := decodeOne[Bucket](body)
	if err != nil {
		return nil, err
	}
	return &bucket, nil
}

// DeleteBucket deletes a bucket. The call is never retried; deleting twice
// may or may not fail depending on the service.
func (c *Client) DeleteBucket(ctx context.Context, dc, name string) error {
	if err := requireBucket(dc, name); err != nil {
		return err
	}
	_, err := c.do(ctx, call{
		op:     "delete_bucket",
		method: http.MethodDelete,
		path:   bucketPath(dc, name, "delete"),
	})
	return err
}

// BucketExists reports whether GetBucketDetails succeeds. Only a 404 maps to
// false; every other failure is returned unchanged.
func (c *Client) BucketExists(ctx context.Context, dc, name string) (bool, error) {
	_, err := c.GetBucketDetails(ctx, dc, name)
	switch {
	case err == nil:
		return true, nil
	case IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// UpdatePolicy sets the public access policy of a bucket.
func (c *Client) UpdatePolicy(ctx context.Context, dc, name string, policy Policy) error {
	if err := requireBucket(dc, name); err != nil {
		return err
	}
	if !policy.Valid() {
		return invalidArgument("policy", "%q is not one of public, private, upload", policy)
	}
	_, err := c.do(ctx, call{
		op:     "update_policy",
		method: http.MethodPost,
		path:   bucketPath(dc, name, "policy", string(policy)),
	})
	return err
}

type permissionRequest struct {
	AccessKey string `json:"accesskey"`
	Type      string `json:"type"`
}

// UpdatePermission grants an access key a permission level on a bucket.
// PermissionNone revokes it.
func (c *Client) UpdatePermission(ctx context.Context, dc, name string, level PermissionLevel, accessKey string) error {
	if err := requireBucket(dc, name); err != nil {
		return err
	}
	if !level.Valid() {
		return invalidArgument("level", "%q is not one of read, write, full, none", level)
	}
	if strings.TrimSpace(accessKey) == "" {
		return invalidArgument("accesskey", "is required")
	}
	_, err := c.do(ctx, call{
		op:       "update_permission",
		method:   http.MethodPost,
		path:     bucketPath(dc, name, "permission"),
		jsonBody: permissionRequest{AccessKey: accessKey, Type: string(level)},
	})
	return err
}
