package public

import (
	"errors"
	"strings"
	"time"

	"github.com/creative-products/internal/http/response"
	"github.com/creative-products/internal/storage"

	"github.com/gin-gonic/gin"
)

// ServeFile 校验签名后下发资源文件
// 路径、过期时间与签名三者任一不符都拒绝
func (h *Handler) ServeFile(c *gin.Context) {
	relPath := strings.TrimPrefix(c.Param("path"), "/")
	expires := c.Query("expires")
	signature := c.Query("signature")

	if err := h.Store.VerifySignedRequest(relPath, expires, signature, time.Now()); err != nil {
		switch {
		case errors.Is(err, storage.ErrURLExpired):
			response.Gone(c, "download link expired")
		case errors.Is(err, storage.ErrPathInvalid), errors.Is(err, storage.ErrSignatureInvalid):
			response.Error(c, response.CodeForbidden, "invalid download link")
		default:
			response.Error(c, response.CodeForbidden, "invalid download link")
		}
		return
	}

	abs, err := h.Store.ResolvePath(relPath)
	if err != nil {
		response.Error(c, response.CodeForbidden, "invalid download link")
		return
	}
	if !h.Store.Exists(relPath) {
		response.NotFound(c, "file not found")
		return
	}
	c.FileAttachment(abs, filenameOf(relPath))
}

func filenameOf(relPath string) string {
	if idx := strings.LastIndex(relPath, "/"); idx >= 0 {
		return relPath[idx+1:]
	}
	return relPath
}
