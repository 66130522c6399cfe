package public

import (
	"github.com/creative-products/internal/http/response"
	"github.com/creative-products/internal/models"

	"github.com/gin-gonic/gin"
)

// ValidateCouponRequest 优惠券试算请求
type ValidateCouponRequest struct {
	Code     string       `json:"code" binding:"required"`
	Subtotal models.Money `json:"subtotal" binding:"required"`
}

// ValidateCoupon 校验优惠码并返回折扣试算
func (h *Handler) ValidateCoupon(c *gin.Context) {
	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	quote, err := h.CouponService.Validate(req.Code, req.Subtotal, getUserID(c))
	if err != nil {
		respondWithMappedError(c, err, couponErrorRules)
		return
	}

	response.Success(c, gin.H{
		"code":     quote.Coupon.Code,
		"discount": quote.Discount,
		"message":  quote.Message,
	})
}
