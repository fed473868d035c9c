package objectstorage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

type createDirectoryRequest struct {
	Path string `json:"path"`
}

// CreateDirectory creates dirPath (nested segments allowed) in a bucket.
func (c *Client) CreateDirectory(ctx context.Context, dc, bucket, dirPath string) error {
	if err := requireBucket(dc, bucket); err != nil {
		return err
	}
	dirPath = strings.Trim(dirPath, "/")
	if dirPath == "" {
		return invalidArgument("path", "directory path is required")
	}
	_, err := c.do(ctx, call{
		op:       "create_directory",
		method:   http.MethodPost,
		path:     bucketPath(dc, bucket, "createdirectory"),
		jsonBody: createDirectoryRequest{Path: dirPath},
	})
	return err
}

// ListObjects lists the root of a bucket.
//
// The service is known to return an empty list for buckets that do hold
// objects. An empty result is not proof of absence.
func (c *Client) ListObjects(ctx context.Context, dc, bucket string) ([]ObjectEntry, error) {
	return c.ListObjectsIn(ctx, dc, bucket, "")
}

// ListObjectsIn lists one directory of a bucket. The ListObjects caveat applies.
func (c *Client) ListObjectsIn(ctx context.Context, dc, bucket, dir string) ([]ObjectEntry, error) {
	if err := requireBucket(dc, bucket); err != nil {
		return nil, err
	}
	var query url.Values
	if dir = strings.Trim(dir, "/"); dir != "" {
		query = url.Values{"path": []string{dir}}
	}
	body, err := c.do(ctx, call{
		op:     "list_objects",
		method: http.MethodGet,
		path:   bucketPath(dc, bucket, "objects"),
		query:  query,
	})
	if err != nil {
		return nil, err
	}
	return decodeList[ObjectEntry](body, "objects", "files")
}

// DeleteFile deletes one object.
func (c *Client) DeleteFile(ctx context.Context, dc, bucket, objectPath string) error {
	objectPath = strings.TrimLeft(objectPath, "/")
	if objectPath == "" || strings.HasSuffix(objectPath, "/") {
		return invalidArgument("path", "%q does not name a file", objectPath)
	}
	return c.deleteObject(ctx, "delete_file", dc, bucket, objectPath)
}

// DeleteDirectory deletes a directory. It uses the same endpoint as
// DeleteFile, with no trailing object name.
func (c *Client) DeleteDirectory(ctx context.Context, dc, bucket, dirPath string) error {
	dirPath = strings.Trim(dirPath, "/")
	if dirPath == "" {
		return invalidArgument("path", "directory path is required")
	}
	return c.deleteObject(ctx, "delete_directory", dc, bucket, dirPath)
}

func (c *Client) deleteObject(ctx context.Context, op, dc, bucket, objectPath string) error {
	if err := requireBucket(dc, bucket); err != nil {
		return err
	}
	_, err := c.do(ctx, call{
		op:     op,
		method: http.MethodDelete,
		path:   strings.TrimSuffix(bucketPath(dc, bucket, "delete"), "/") + "/object",
		query:  url.Values{"path": []string{objectPath}},
	})
	return err
}

var errEmptyURL = errors.New("response holds no url")

type sharableURLResponse struct {
	URL       string `json:"url"`
	SignedURL string `json:"signed_url"`
	Link      string `json:"link"`
}

// GetSharableURL returns a time-bounded download link. duration follows
// <integer><s|m|h|d|M|y>; "never" is sent as "1y", the longest bounded
// lifetime, so the link still expires.
func (c *Client) GetSharableURL(ctx context.Context, dc, bucket, file, duration string) (string, error) {
	if err := requireBucket(dc, bucket); err != nil {
		return "", err
	}
	file = strings.TrimLeft(file, "/")
	if file == "" {
		return "", invalidArgument("file", "object path is required")
	}
	expire, err := NormalizeExpiry(duration)
	if err != nil {
		return "", err
	}

	body, err := c.do(ctx, call{
		op:     "get_sharable_url",
		method: http.MethodGet,
		path:   strings.TrimSuffix(bucketPath(dc, bucket, "download"), "/"),
		query:  url.Values{"path": []string{file}, "expire": []string{expire}},
	})
	if err != nil {
		return "", err
	}
	return decodeURL(body)
}

// GetObject returns a one hour download link for dir/filename.
func (c *Client) GetObject(ctx context.Context, dc, bucket, filename string) (string, error) {
	return c.GetSharableURL(ctx, dc, bucket, filename, DefaultObjectExpiry)
}

// GetObjectFor is GetObject with an explicit link lifetime.
func (c *Client) GetObjectFor(ctx context.Context, dc, bucket, filename, duration string) (string, error) {
	return c.GetSharableURL(ctx, dc, bucket, filename, duration)
}

// decodeURL accepts the link as a bare JSON string or inside an object.
func decodeURL(body []byte) (string, error) {
	payload := unwrapEnvelope(body)
	if len(payload) == 0 {
		return "", decodeError(errEmptyURL)
	}
	if payload[0] == '"' {
		var s string
		if err := json.Unmarshal(payload, &s); err != nil {
			return "", decodeError(err)
		}
		if s == "" {
			return "", decodeError(errEmptyURL)
		}
		return s, nil
	}
	var resp sharableURLResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return "", decodeError(err)
	}
	for _, u := range []string{resp.URL, resp.SignedURL, resp.Link} {
		if u != "" {
			return u, nil
		}
	}
	return "", decodeError(errEmptyURL)
}
