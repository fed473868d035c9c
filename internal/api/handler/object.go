package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/timmy/uthos/internal/api/middleware"
	"github.com/timmy/uthos/internal/service"
)

// ObjectHandler handles file, directory and shared link endpoints.
type ObjectHandler struct {
	objects     *service.ObjectService
	metrics     *middleware.Metrics
	maxUploadMB int
}

// NewObjectHandler creates a new object handler.
// Parameters:
//   - objects: object service instance.
//   - maxUploadMB: largest accepted upload body; 0 means unlimited.
//   - metrics: optional, counts uploaded bytes.
// Returns:
//   - *ObjectHandler: initialized handler.
func NewObjectHandler(objects *service.ObjectService, maxUploadMB int, metrics *middleware.Metrics) *ObjectHandler {
	return &ObjectHandler{objects: objects, metrics: metrics, maxUploadMB: maxUploadMB}
}

type createDirectoryRequest struct {
	Path string `json:"path" binding:"required"`
}

// CreateDirectory handles POST /objectstorage/:dc/bucket/:name/createdirectory/.
func (h *ObjectHandler) CreateDirectory(c *gin.Context) {
	var req createDirectoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.objects.CreateDirectory(c.Request.Context(), c.Param("dc"), c.Param("name"), req.Path); err != nil {
		fail(c, err)
		return
	}
	done(c, "directory created")
}

// List handles GET /objectstorage/:dc/bucket/:name/objects/?path=dir.
func (h *ObjectHandler) List(c *gin.Context) {
	objects, err := h.objects.List(c.Request.Context(), c.Param("dc"), c.Param("name"), c.Query("path"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, objects)
}

// Upload handles POST /objectstorage/:dc/bucket/:name/upload/. The form
// carries the content in "file" and the optional target directory in "path".
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ObjectHandler) Upload(c *gin.Context) {
	if h.maxUploadMB > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(h.maxUploadMB)<<20)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.AbortError(c, http.StatusRequestEntityTooLarge, "payload_too_large",
				fmt.Sprintf("upload exceeds %d MB", h.maxUploadMB))
			return
		}
		badRequest(c, "multipart field \"file\" is required: "+err.Error())
		return
	}
	f, err := header.Open()
	if err != nil {
		fail(c, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer f.Close()

	obj, err := h.objects.Upload(c.Request.Context(), service.UploadInput{
		DC:          c.Param("dc"),
		Bucket:      c.Param("name"),
		Dir:         c.PostForm("path"),
		Name:        header.Filename,
		Content:     f,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.metrics.AddUploaded(obj.Size)
	ok(c, obj)
}

// Delete handles DELETE /objectstorage/:dc/bucket/:name/delete/object?path=p.
// p may name a file or a directory.
func (h *ObjectHandler) Delete(c *gin.Context) {
	if err := h.objects.Delete(c.Request.Context(), c.Param("dc"), c.Param("name"), c.Query("path")); err != nil {
		fail(c, err)
		return
	}
	done(c, "object deleted")
}

// Share handles GET /objectstorage/:dc/bucket/:name/download?path=p&expire=d.
func (h *ObjectHandler) Share(c *gin.Context) {
	res, err := h.objects.Share(c.Request.Context(), c.Param("dc"), c.Param("name"), c.Query("path"), c.DefaultQuery("expire", "1h"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

// Download handles GET /shared/:token and streams the file behind a link.
// It needs no credentials; the token is the capability.
func (h *ObjectHandler) Download(c *gin.Context) {
	obj, rc, err := h.objects.Open(c.Request.Context(), c.Param("token"))
	if err != nil {
		fail(c, err)
		return
	}
	defer rc.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, obj.Size, contentType, rc, map[string]string{
		"Content-Disposition": "attachment; filename=" + strconv.Quote(obj.Name),
		"ETag":                strconv.Quote(obj.MD5Hash),
	})
}
