package objectstorage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

const (
	formFieldFile = "file"
	formFieldPath = "path"
)

// UploadContent is the payload of an upload: either Bytes or NamedFile.
type UploadContent interface {
	isUploadContent()
}

// Bytes is an in-memory buffer. It is always sent as
// application/octet-stream. Filename is only used when the upload path has
// no object name of its own.
type Bytes struct {
	Data     []byte
	Filename string
}

func (Bytes) isUploadContent() {}

// NamedFile is a file-like handle read fully before the request is built.
// ContentType is inferred from Filename, then from the content, when empty.
type NamedFile struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

func (NamedFile) isUploadContent() {}

// FromFile wraps an open file, naming it after its base name.
func FromFile(f *os.File) NamedFile {
	if f == nil {
		return NamedFile{}
	}
	return NamedFile{Reader: f, Filename: filepath.Base(f.Name())}
}

// filePart is the resolved form of any UploadContent.
type filePart struct {
	filename    string
	contentType string
	data        []byte
}

// multipartBody is an encoded form ready for dispatch.
type multipartBody struct {
	data        []byte
	contentType string
}

// uploadRequest is the outcome of the path builder.
type uploadRequest struct {
	dir  string
	name string
	body *multipartBody
}

// resolveContent is the only place the UploadContent variants are told apart.
func resolveContent(content UploadContent) (*filePart, error) {
	switch c := content.(type) {
	case nil:
		return nil, invalidArgument("content", "must be Bytes or NamedFile, got nil")
	case Bytes:
		return &filePart{filename: c.Filename, contentType: contentTypeOctetStream, data: c.Data}, nil
	case *Bytes:
		if c == nil {
			return nil, invalidArgument("content", "nil *Bytes")
		}
		return resolveContent(*c)
	case NamedFile:
		if c.Reader == nil {
			return nil, invalidArgument("content", "NamedFile has no reader")
		}
		data, err := io.ReadAll(c.Reader)
		if err != nil {
			return nil, invalidArgument("content", "read %s: %v", c.Filename, err)
		}
		return &filePart{
			filename:    c.Filename,
			contentType: inferContentType(c.ContentType, c.Filename, data),
			data:        data,
		}, nil
	case *NamedFile:
		if c == nil {
			return nil, invalidArgument("content", "nil *NamedFile")
		}
		return resolveContent(*c)
	default:
		return nil, invalidArgument("content", "unsupported type %T", content)
	}
}

func inferContentType(explicit, filename string, data []byte) string {
	if explicit != "" {
		return explicit
	}
	if ext := path.Ext(filename); ext != "" {
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
	}
	if len(data) > 0 {
		return mimetype.Detect(data).String()
	}
	return contentTypeOctetStream
}

// buildUpload splits objectPath and encodes the multipart form. It performs
// no I/O beyond reading the content handle.
func buildUpload(content UploadContent, objectPath string) (*uploadRequest, error) {
	part, err := resolveContent(content)
	if err != nil {
		return nil, err
	}

	dir, name := SplitObjectPath(objectPath)
	if name == "" {
		name = path.Base(part.filename)
	}
	if name == "" || name == "." || name == "/" {
		return nil, invalidArgument("path", "%q has no object name and the content has no filename", objectPath)
	}
	part.filename = name

	body, err := encodeMultipart(part, dir)
	if err != nil {
		return nil, err
	}
	return &uploadRequest{dir: dir, name: name, body: body}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeMultipart writes the "file" part and, only for non-root targets, the
// "path" part. An empty "path" field would make the service create a
// directory named "" or nest the file under its own name.
func encodeMultipart(part *filePart, dir string) (*multipartBody, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		formFieldFile, quoteEscaper.Replace(part.filename)))
	h.Set(headerContentType, part.contentType)
	pw, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("objectstorage: create file part: %w", err)
	}
	if _, err := pw.Write(part.data); err != nil {
		return nil, fmt.Errorf("objectstorage: write file part: %w", err)
	}

	if dir != "" {
		if err := w.WriteField(formFieldPath, dir); err != nil {
			return nil, fmt.Errorf("objectstorage: write path field: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("objectstorage: close multipart writer: %w", err)
	}
	return &multipartBody{data: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}

// UploadFile uploads content to objectPath ("dir/.../name" or "name") in the
// bucket. Malformed content fails before any request is sent.
func (c *Client) UploadFile(ctx context.Context, dc, bucket string, content UploadContent, objectPath string) error {
	if err := requireBucket(dc, bucket); err != nil {
		return err
	}
	upload, err := buildUpload(content, objectPath)
	if err != nil {
		return err
	}

	c.log.WithFields(logrus.Fields{
		"dc":     dc,
		"bucket": bucket,
		"dir":    upload.dir,
		"name":   upload.name,
		"size":   len(upload.body.data),
	}).Debug("uploading object")

	_, err = c.do(ctx, call{
		op:     "upload_file",
		method: http.MethodPost,
		path:   bucketPath(dc, bucket, "upload"),
		form:   upload.body,
	})
	return err
}

// PutObject uploads content as dir/filename. Pass []byte(s) for text.
func (c *Client) PutObject(ctx context.Context, dc, bucket, filename string, content []byte, dir string) error {
	if strings.TrimSpace(filename) == "" {
		return invalidArgument("filename", "is required")
	}
	return c.UploadFile(ctx, dc, bucket, Bytes{Data: content, Filename: filename}, JoinObjectPath(dir, filename))
}
