package public

import (
	"errors"

	"github.com/creative-products/internal/http/response"
	"github.com/creative-products/internal/logger"
	"github.com/creative-products/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			response.Error(c, rule.code, rule.target.Error())
			return
		}
	}
	logger.Errorw("request_failed", "path", c.Request.URL.Path, "error", err)
	response.Error(c, response.CodeInternal, "internal error")
}

var productErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound},
	{target: service.ErrProductInactive, code: response.CodeNotFound},
}

var couponErrorRules = []mappedHandlerError{
	{target: service.ErrCouponNotFound, code: response.CodeBadRequest},
	{target: service.ErrCouponExpired, code: response.CodeBadRequest},
	{target: service.ErrCouponUsageLimit, code: response.CodeBadRequest},
	{target: service.ErrCouponAlreadyUsed, code: response.CodeBadRequest},
	{target: service.ErrCouponMinAmount, code: response.CodeBadRequest},
}

var checkoutErrorRules = append([]mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeBadRequest},
	{target: service.ErrProductInactive, code: response.CodeBadRequest},
	{target: service.ErrPayerInfoInvalid, code: response.CodeBadRequest},
}, couponErrorRules...)

var orderErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound},
}

var paymentErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentSignature, code: response.CodeBadRequest},
	{target: service.ErrPaymentMismatched, code: response.CodeNotFound},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound},
}

// 访问令牌的拒绝原因逐一映射，令牌不存在与格式非法统一归入未找到
var accessErrorRules = []mappedHandlerError{
	{target: service.ErrGrantNotFound, code: response.CodeNotFound},
	{target: service.ErrGrantRevoked, code: response.CodeForbidden},
	{target: service.ErrGrantExpired, code: response.CodeGone},
	{target: service.ErrGrantOwnerMismatch, code: response.CodeForbidden},
	{target: service.ErrGrantDownloadLimit, code: response.CodeForbidden},
	{target: service.ErrAssetUnavailable, code: response.CodeInternal},
}

var userAuthErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized},
	{target: service.ErrUserDisabled, code: response.CodeForbidden},
	{target: service.ErrUserExists, code: response.CodeBadRequest},
	{target: service.ErrPayerInfoInvalid, code: response.CodeBadRequest},
}
