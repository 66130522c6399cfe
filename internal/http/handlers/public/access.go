package public

import (
	"github.com/creative-products/internal/http/response"
	"github.com/creative-products/internal/service"

	"github.com/gin-gonic/gin"
)

// accessView 访问令牌详情响应（不暴露存储路径）
func accessView(info *service.AccessInfo) gin.H {
	view := gin.H{
		"order_no":       info.Order.OrderNo,
		"product_title":  info.Product.Title,
		"delivery_type":  info.Product.DeliveryType,
		"download_count": info.Delivery.DownloadCount,
		"expires_at":     info.Delivery.ExpiresAt,
		"issued_at":      info.Delivery.CreatedAt,
	}
	if info.RemainingDownloads != nil {
		view["remaining_downloads"] = *info.RemainingDownloads
	}
	if info.Delivery.LastAccessedAt != nil {
		view["last_accessed_at"] = info.Delivery.LastAccessedAt
	}
	return view
}

// GetAccess 查询访问授权详情
func (h *Handler) GetAccess(c *gin.Context) {
	info, err := h.DeliveryService.VerifyAccess(c.Param("token"), getUserID(c))
	if err != nil {
		respondWithMappedError(c, err, accessErrorRules)
		return
	}
	response.Success(c, accessView(info))
}

// DownloadAccess 消耗一次下载并返回限时签名地址
func (h *Handler) DownloadAccess(c *gin.Context) {
	signedURL, info, err := h.DeliveryService.ReleaseAsset(c.Param("token"), getUserID(c))
	if err != nil {
		respondWithMappedError(c, err, accessErrorRules)
		return
	}

	view := accessView(info)
	view["download_url"] = signedURL
	response.Success(c, view)
}
