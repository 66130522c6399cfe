package admin

import (
	"errors"
	"strings"
	"time"

	"github.com/creative-products/internal/http/response"
	"github.com/creative-products/internal/logger"
	"github.com/creative-products/internal/repository"
	"github.com/creative-products/internal/service"

	"github.com/gin-gonic/gin"
)

// ListOrders 订单列表 (Admin)
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := pageParams(c)
	filter := repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		PaymentStatus: strings.TrimSpace(c.Query("payment_status")),
		OrderNo:       strings.TrimSpace(c.Query("order_no")),
		GuestEmail:    strings.ToLower(strings.TrimSpace(c.Query("guest_email"))),
	}
	if from, err := time.Parse(time.RFC3339, c.Query("created_from")); err == nil {
		filter.CreatedFrom = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("created_to")); err == nil {
		filter.CreatedTo = &to
	}

	orders, total, err := h.OrderService.ListAdmin(filter)
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to load orders")
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetOrder 订单详情 (Admin)
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.OrderService.GetByID(id)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	if order == nil {
		response.NotFound(c, service.ErrOrderNotFound.Error())
		return
	}
	response.Success(c, order)
}

// ApproveOrder 人工确认线下支付，确认成功即签发交付授权
func (h *Handler) ApproveOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	delivery, err := h.OrderService.ApproveOffline(id, adminID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	logger.Infow("admin_order_approved", "order_id", id, "admin_id", adminID)
	response.Success(c, gin.H{
		"order_id":   id,
		"access_url": delivery.AccessURL,
		"expires_at": delivery.ExpiresAt,
	})
}

func respondOrderError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, service.ErrOrderNotFound):
		response.NotFound(c, service.ErrOrderNotFound.Error())
	case errors.Is(err, service.ErrOrderNotPending):
		response.Error(c, response.CodeConflict, service.ErrOrderNotPending.Error())
	default:
		logger.Errorw("admin_order_request_failed", "error", err)
		response.Error(c, response.CodeInternal, "internal error")
	}
}
