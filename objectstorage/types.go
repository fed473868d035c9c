package objectstorage

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Quantity is a size or count as reported by the service, which sends some
// of them as numbers and some as strings.
type Quantity string

// UnmarshalJSON accepts a JSON number, string or null.
func (q *Quantity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*q = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*q = Quantity(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*q = Quantity(n)
	}
	return nil
}

// Int64 parses the quantity as an integer.
func (q Quantity) Int64() (int64, error) {
	return strconv.ParseInt(string(q), 10, 64)
}

// Bucket is the service's description of a bucket. Fields are passed through
// as returned.
type Bucket struct {
	Name        string   `json:"name"`
	DCSlug      string   `json:"dcslug,omitempty"`
	Size        Quantity `json:"size,omitempty"`
	Status      string   `json:"status,omitempty"`
	Billing     string   `json:"billing,omitempty"`
	Policy      string   `json:"policy,omitempty"`
	ObjectCount Quantity `json:"object_count,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
}

// CreateBucketRequest is the payload of CreateBucket.
type CreateBucketRequest struct {
	DC      string `json:"dcslug"`
	Name    string `json:"name"`
	Size    int    `json:"size"`
	Billing string `json:"billing,omitempty"`
}

// AccessKey describes an access key. SecretKey is only populated by
// CreateAccessKey.
type AccessKey struct {
	Name      string `json:"name"`
	AccessKey string `json:"accesskey,omitempty"`
	SecretKey string `json:"secretkey,omitempty"`
	Status    string `json:"status,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ObjectEntry is one file or directory in a bucket listing.
type ObjectEntry struct {
	Name       string   `json:"name"`
	Path       string   `json:"path,omitempty"`
	Type       string   `json:"type,omitempty"`
	Size       Quantity `json:"size,omitempty"`
	ModifiedAt string   `json:"modified_at,omitempty"`
}

// IsDir reports whether the entry is a directory.
func (o ObjectEntry) IsDir() bool {
	return o.Type == "directory" || o.Type == "dir" || o.Type == "folder"
}

// Policy is the public access policy of a bucket.
type Policy string

const (
	PolicyPublic  Policy = "public"
	PolicyPrivate Policy = "private"
	PolicyUpload  Policy = "upload"
)

// Valid reports whether p is a policy the service accepts.
func (p Policy) Valid() bool {
	switch p {
	case PolicyPublic, PolicyPrivate, PolicyUpload:
		return true
	}
	return false
}

// PermissionLevel is the access an access key is granted on a bucket.
type PermissionLevel string

const (
	PermissionRead  PermissionLevel = "read"
	PermissionWrite PermissionLevel = "write"
	PermissionFull  PermissionLevel = "full"
	PermissionNone  PermissionLevel = "none"
)

// Valid reports whether l is a permission level the service accepts.
func (l PermissionLevel) Valid() bool {
	switch l {
	case PermissionRead, PermissionWrite, PermissionFull, PermissionNone:
		return true
	}
	return false
}

// AccessKeyStatus is the target state of ModifyAccessKey. AccessKeyRemove is
// terminal.
type AccessKeyStatus string

const (
	AccessKeyEnable  AccessKeyStatus = "enable"
	AccessKeyDisable AccessKeyStatus = "disable"
	AccessKeyRemove  AccessKeyStatus = "remove"
)

// Valid reports whether s is a status the service accepts.
func (s AccessKeyStatus) Valid() bool {
	switch s {
	case AccessKeyEnable, AccessKeyDisable, AccessKeyRemove:
		return true
	}
	return false
}
