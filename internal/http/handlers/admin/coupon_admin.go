package admin

import (
	"strings"
	"time"

	"github.com/creative-products/internal/constants"
	"github.com/creative-products/internal/http/response"
	"github.com/creative-products/internal/logger"
	"github.com/creative-products/internal/models"
	"github.com/creative-products/internal/repository"
	"github.com/creative-products/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CouponRequest 优惠券创建/更新请求
type CouponRequest struct {
	Code           string       `json:"code" binding:"required"`
	Description    string       `json:"description"`
	DiscountType   string       `json:"discount_type" binding:"required"`
	DiscountValue  models.Money `json:"discount_value"`
	MinOrderAmount models.Money `json:"min_order_amount"`
	MaxUses        *int         `json:"max_uses"`
	OneTimePerUser bool         `json:"one_time_per_user"`
	IsActive       *bool        `json:"is_active"`
	IsFeatured     bool         `json:"is_featured"`
	ExpiresAt      *time.Time   `json:"expires_at"`
}

func (r *CouponRequest) apply(coupon *models.Coupon) {
	coupon.Code = service.NormalizeCode(r.Code)
	coupon.Description = r.Description
	coupon.DiscountType = r.DiscountType
	coupon.DiscountValue = r.DiscountValue
	coupon.MinOrderAmount = r.MinOrderAmount
	coupon.MaxUses = r.MaxUses
	coupon.OneTimePerUser = r.OneTimePerUser
	coupon.IsFeatured = r.IsFeatured
	coupon.ExpiresAt = r.ExpiresAt
	if r.IsActive != nil {
		coupon.IsActive = *r.IsActive
	}
}

func (r *CouponRequest) valid() bool {
	switch r.DiscountType {
	case constants.CouponTypePercentage:
		return r.DiscountValue.Decimal.IsPositive() &&
			r.DiscountValue.Decimal.LessThanOrEqual(decimal.NewFromInt(100))
	case constants.CouponTypeFixed:
		return r.DiscountValue.Decimal.IsPositive()
	default:
		return false
	}
}

// ListCoupons 优惠券列表 (Admin)
func (h *Handler) ListCoupons(c *gin.Context) {
	page, pageSize := pageParams(c)
	filter := repository.CouponListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     service.NormalizeCode(c.Query("code")),
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		active := raw == "true" || raw == "1"
		filter.IsActive = &active
	}

	coupons, total, err := h.CouponRepo.List(filter)
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to load coupons")
		return
	}
	response.SuccessWithPage(c, coupons, response.NewPagination(page, pageSize, total))
}

// GetCoupon 优惠券详情 (Admin)
func (h *Handler) GetCoupon(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	coupon, err := h.CouponRepo.GetByID(id)
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to load coupon")
		return
	}
	if coupon == nil {
		response.NotFound(c, "coupon not found")
		return
	}
	response.Success(c, coupon)
}

// CreateCoupon 创建优惠券
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.valid() {
		response.Error(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	coupon := &models.Coupon{IsActive: true}
	req.apply(coupon)
	if err := h.CouponRepo.Create(coupon); err != nil {
		logger.Errorw("admin_coupon_create_failed", "code", coupon.Code, "error", err)
		response.Error(c, response.CodeInternal, "failed to create coupon")
		return
	}
	response.Success(c, coupon)
}

// UpdateCoupon 更新优惠券
func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.valid() {
		response.Error(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	coupon, err := h.CouponRepo.GetByID(id)
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to load coupon")
		return
	}
	if coupon == nil {
		response.NotFound(c, "coupon not found")
		return
	}

	req.apply(coupon)
	if err := h.CouponRepo.Update(coupon); err != nil {
		logger.Errorw("admin_coupon_update_failed", "coupon_id", id, "error", err)
		response.Error(c, response.CodeInternal, "failed to update coupon")
		return
	}
	response.Success(c, coupon)
}

// DeleteCoupon 删除优惠券（软删除，不影响已用记录）
func (h *Handler) DeleteCoupon(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.CouponRepo.Delete(id); err != nil {
		logger.Errorw("admin_coupon_delete_failed", "coupon_id", id, "error", err)
		response.Error(c, response.CodeInternal, "failed to delete coupon")
		return
	}
	response.Success(c, nil)
}
