package objectstorage

import (
	"context"
	"net/http"
	"strings"
)

// ListAccessKeys returns the access keys of a data center.
func (c *Client) ListAccessKeys(ctx context.Context, dc string) ([]AccessKey, error) {
	if strings.TrimSpace(dc) == "" {
		return nil, invalidArgument("dc", "data center slug is required")
	}
	body, err := c.do(ctx, call{
		op:     "list_access_keys",
		method: http.MethodGet,
		path:   escapePath("objectstorage", dc, "accesskeys") + "/",
	})
	if err != nil {
		return nil, err
	}
	return decodeList[AccessKey](body, "accesskeys", "keys")
}

type createAccessKeyRequest struct {
	Name string `json:"accesskey_name"`
}

// CreateAccessKey creates a named access key. The returned SecretKey is only
// ever shown once.
func (c *Client) CreateAccessKey(ctx context.Context, dc, name string) (*AccessKey, error) {
	if strings.TrimSpace(dc) == "" {
		return nil, invalidArgument("dc", "data center slug is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, invalidArgument("name", "access key name is required")
	}
	body, err := c.do(ctx, call{
		op:       "create_access_key",
		method:   http.MethodPost,
		path:     escapePath("objectstorage", dc, "accesskey", "create") + "/",
		jsonBody: createAccessKeyRequest{Name: name},
	})
	if err != nil {
		return nil, err
	}
	key, err := decodeOne[AccessKey](body)
	if err != nil {
		return nil, err
	}
	if key.Name == "" {
		key.Name = name
	}
	return &key, nil
}

type accessKeyStatusRequest struct {
	Status string `json:"status"`
}

// ModifyAccessKey enables, disables or removes an access key.
func (c *Client) ModifyAccessKey(ctx context.Context, dc, name string, status AccessKeyStatus) error {
	if strings.TrimSpace(dc) == "" {
		return invalidArgument("dc", "data center slug is required")
	}
	if strings.TrimSpace(name) == "" {
		return invalidArgument("name", "access key name is required")
	}
	if !status.Valid() {
		return invalidArgument("status", "%q is not one of enable, disable, remove", status)
	}
	_, err := c.do(ctx, call{
		op:       "modify_access_key",
		method:   http.MethodPost,
		path:     escapePath("objectstorage", dc, "accesskey", name, "status") + "/",
		jsonBody: accessKeyStatusRequest{Status: string(status)},
	})
	return err
}
