package objectstorage

import (
	"fmt"
	"strings"
)

// SplitObjectPath splits a combined object path on its last "/". Everything
// after it is the object name, everything before it the directory. Leading
// slashes are ignored, so "/a.txt" and "a.txt" both target the bucket root.
//
//	"documents/report.pdf" -> ("documents", "report.pdf")
//	"report.pdf"           -> ("", "report.pdf")
func SplitObjectPath(p string) (dir, name string) {
	p = strings.TrimLeft(p, "/")
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return "", p
	}
	return p[:idx], p[idx+1:]
}

// JoinObjectPath is the inverse of SplitObjectPath.
func JoinObjectPath(dir, name string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// ResourcePath addresses an object as dcslug/bucket[/dir]/name.
type ResourcePath struct {
	DC     string
	Bucket string
	Dir    string
	Name   string
}

// ParseResourcePath parses "dc/bucket[/dir...]/name". The object part is
// optional: "dc/bucket" addresses the bucket itself.
func ParseResourcePath(s string) (ResourcePath, error) {
	parts := strings.SplitN(strings.Trim(s, "/"), "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ResourcePath{}, invalidArgument("path", "expected dcslug/bucket[/object], got %q", s)
	}
	rp := ResourcePath{DC: parts[0], Bucket: parts[1]}
	if len(parts) == 3 {
		rp.Dir, rp.Name = SplitObjectPath(parts[2])
	}
	return rp, nil
}

// ObjectPath returns the in-bucket path (dir/name).
func (p ResourcePath) ObjectPath() string {
	return JoinObjectPath(p.Dir, p.Name)
}

func (p ResourcePath) String() string {
	if obj := p.ObjectPath(); obj != "" {
		return fmt.Sprintf("%s/%s/%s", p.DC, p.Bucket, obj)
	}
	return p.DC + "/" + p.Bucket
}
