package public

import (
	"github.com/creative-products/internal/http/response"

	"github.com/gin-gonic/gin"
)

// VerifyPaymentRequest 支付回传确认请求（托管收银台回跳后由前端提交）
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// VerifyPayment 校验网关签名并确认支付
func (h *Handler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	confirmation, err := h.PaymentService.VerifyPayment(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		respondWithMappedError(c, err, paymentErrorRules)
		return
	}

	response.Success(c, confirmation)
}
