package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/timmy/uthos/internal/service"
)

// BucketHandler handles bucket, policy and permission endpoints.
type BucketHandler struct {
	buckets *service.BucketService
}

// NewBucketHandler creates a new bucket handler.
// Parameters:
//   - buckets: bucket service instance.
// Returns:
//   - *BucketHandler: initialized handler.
func NewBucketHandler(buckets *service.BucketService) *BucketHandler {
	return &BucketHandler{buckets: buckets}
}

// List handles GET /objectstorage/:dc/bucket/.
func (h *BucketHandler) List(c *gin.Context) {
	buckets, err := h.buckets.List(c.Request.Context(), c.Param("dc"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, buckets)
}

// Create handles POST /objectstorage/bucket/create/.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *BucketHandler) Create(c *gin.Context) {
	var req service.CreateBucketInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	bucket, err := h.buckets.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, bucket)
}

// Get handles GET /objectstorage/:dc/bucket/:name/.
func (h *BucketHandler) Get(c *gin.Context) {
	bucket, err := h.buckets.Get(c.Request.Context(), c.Param("dc"), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, bucket)
}

// Delete handles DELETE /objectstorage/:dc/bucket/:name/delete/.
func (h *BucketHandler) Delete(c *gin.Context) {
	if err := h.buckets.Delete(c.Request.Context(), c.Param("dc"), c.Param("name")); err != nil {
		fail(c, err)
		return
	}
	done(c, "bucket deleted")
}

// UpdatePolicy handles POST /objectstorage/:dc/bucket/:name/policy/:policy/.
func (h *BucketHandler) UpdatePolicy(c *gin.Context) {
	if err := h.buckets.UpdatePolicy(c.Request.Context(), c.Param("dc"), c.Param("name"), c.Param("policy")); err != nil {
		fail(c, err)
		return
	}
	done(c, "policy updated")
}

type permissionRequest struct {
	AccessKey string `json:"accesskey" binding:"required"`
	Type      string `json:"type" binding:"required"`
}

// UpdatePermission handles POST /objectstorage/:dc/bucket/:name/permission/.
func (h *BucketHandler) UpdatePermission(c *gin.Context) {
	var req permissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	err := h.buckets.UpdatePermission(c.Request.Context(), c.Param("dc"), c.Param("name"), req.AccessKey, req.Type)
	if err != nil {
		fail(c, err)
		return
	}
	done(c, "permission updated")
}

// Grants handles GET /objectstorage/:dc/bucket/:name/permission/.
func (h *BucketHandler) Grants(c *gin.Context) {
	grants, err := h.buckets.Grants(c.Request.Context(), c.Param("dc"), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, grants)
}
