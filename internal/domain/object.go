package domain

import (
	"strings"
	"time"
)

// ObjectType tells files and directories apart.
type ObjectType string

const (
	ObjectTypeFile      ObjectType = "file"
	ObjectTypeDirectory ObjectType = "directory"
)

// Object is a file or directory inside a bucket. Dir is the parent directory
// ("" for the bucket root); (DC, Bucket, Dir, Name) is unique.
type Object struct {
	ID          string     `gorm:"type:text;primaryKey" json:"-"`
	DC          string     `gorm:"type:text;not null;index:idx_objects_path,unique" json:"-"`
	Bucket      string     `gorm:"type:text;not null;index:idx_objects_path,unique" json:"-"`
	Dir         string     `gorm:"type:text;not null;index:idx_objects_path,unique" json:"-"`
	Name        string     `gorm:"type:text;not null;index:idx_objects_path,unique" json:"name"`
	Path        string     `gorm:"type:text;not null" json:"path"`
	Type        ObjectType `gorm:"type:text;not null" json:"type"`
	Size        int64      `json:"size"`
	ContentType string     `gorm:"type:text" json:"content_type,omitempty"`
	StorageKey  string     `gorm:"type:text" json:"-"`
	MD5Hash     string     `gorm:"type:text" json:"etag,omitempty"`
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"modified_at"`
}

func (Object) TableName() string {
	return "objects"
}

// IsDir reports whether the object is a directory.
func (o Object) IsDir() bool {
	return o.Type == ObjectTypeDirectory
}

// ObjectPath joins a directory and a name.
func ObjectPath(dir, name string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// StorageKey is where the content of dc/bucket/path lives in the blob store.
func StorageKey(dc, bucket, path string) string {
	return dc + "/" + bucket + "/" + strings.TrimLeft(path, "/")
}
