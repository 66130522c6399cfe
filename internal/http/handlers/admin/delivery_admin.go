package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/creative-products/internal/http/response"
	"github.com/creative-products/internal/logger"
	"github.com/creative-products/internal/repository"
	"github.com/creative-products/internal/service"

	"github.com/gin-gonic/gin"
)

// ListDeliveries 交付授权列表 (Admin)
func (h *Handler) ListDeliveries(c *gin.Context) {
	page, pageSize := pageParams(c)
	filter := repository.DeliveryListFilter{
		Page:     page,
		PageSize: pageSize,
	}
	if raw := strings.TrimSpace(c.Query("order_id")); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.OrderID = uint(id)
		}
	}
	if raw := strings.TrimSpace(c.Query("revoked")); raw != "" {
		revoked := raw == "true" || raw == "1"
		filter.Revoked = &revoked
	}

	deliveries, total, err := h.DeliveryService.ListAdmin(filter)
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to load deliveries")
		return
	}
	response.SuccessWithPage(c, deliveries, response.NewPagination(page, pageSize, total))
}

// RevokeDelivery 撤销交付授权
// 撤销立即生效且不可恢复，重复撤销返回冲突
func (h *Handler) RevokeDelivery(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	if err := h.DeliveryService.Revoke(id); err != nil {
		switch {
		case errors.Is(err, service.ErrGrantNotFound):
			response.NotFound(c, service.ErrGrantNotFound.Error())
		case errors.Is(err, service.ErrGrantAlreadyRevoked):
			response.Error(c, response.CodeConflict, service.ErrGrantAlreadyRevoked.Error())
		default:
			logger.Errorw("admin_delivery_revoke_failed", "delivery_id", id, "error", err)
			response.Error(c, response.CodeInternal, "internal error")
		}
		return
	}

	logger.Infow("admin_delivery_revoked", "delivery_id", id, "admin_id", adminID)
	response.Success(c, nil)
}
