package public

import (
	"github.com/creative-products/internal/http/response"
	"github.com/creative-products/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest 结算请求
// 已登录用户无需携带 guest 字段，游客必须提供姓名与邮箱
type CheckoutRequest struct {
	ProductIDs  []uint `json:"product_ids" binding:"required,min=1"`
	GuestName   string `json:"guest_name"`
	GuestEmail  string `json:"guest_email"`
	CouponCode  string `json:"coupon_code"`
	PaymentMode string `json:"payment_mode"`
}

// Checkout 创建订单并发起支付
func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	result, err := h.PaymentService.Checkout(c.Request.Context(), service.CheckoutInput{
		ProductIDs:  req.ProductIDs,
		UserID:      getUserID(c),
		GuestName:   req.GuestName,
		GuestEmail:  req.GuestEmail,
		CouponCode:  req.CouponCode,
		PaymentMode: req.PaymentMode,
	})
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules)
		return
	}

	response.Success(c, result)
}
