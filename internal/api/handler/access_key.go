package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/timmy/uthos/internal/service"
)

// AccessKeyHandler handles access key endpoints.
type AccessKeyHandler struct {
	keys *service.AccessKeyService
}

// NewAccessKeyHandler creates a new access key handler.
func NewAccessKeyHandler(keys *service.AccessKeyService) *AccessKeyHandler {
	return &AccessKeyHandler{keys: keys}
}

// List handles GET /objectstorage/:dc/accesskeys/. Secrets are never listed.
func (h *AccessKeyHandler) List(c *gin.Context) {
	keys, err := h.keys.List(c.Request.Context(), c.Param("dc"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, keys)
}

type createAccessKeyRequest struct {
	Name string `json:"accesskey_name" binding:"required"`
}

// Create handles POST /objectstorage/:dc/accesskey/create/.
func (h *AccessKeyHandler) Create(c *gin.Context) {
	var req createAccessKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	key, err := h.keys.Create(c.Request.Context(), c.Param("dc"), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, key)
}

type accessKeyStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Modify handles POST /objectstorage/:dc/accesskey/:name/status/.
func (h *AccessKeyHandler) Modify(c *gin.Context) {
	var req accessKeyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.keys.Modify(c.Request.Context(), c.Param("dc"), c.Param("name"), req.Status); err != nil {
		fail(c, err)
		return
	}
	done(c, "access key updated")
}
