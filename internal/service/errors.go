package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// 认证相关错误
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("email already registered")
	ErrUserDisabled       = errors.New("account disabled")
	ErrCaptchaInvalid     = errors.New("captcha invalid")
)

// 商品相关错误
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrProductInactive  = errors.New("product not available")
	ErrAssetUnavailable = errors.New("asset unavailable")
)

// 优惠券相关错误
var (
	ErrCouponNotFound    = errors.New("invalid coupon code")
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrCouponUsageLimit  = errors.New("coupon usage limit reached")
	ErrCouponAlreadyUsed = errors.New("coupon already used")
	ErrCouponMinAmount   = errors.New("minimum order amount not met")
)

// 订单与支付相关错误
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotPending   = errors.New("order is not awaiting payment")
	ErrPayerInfoInvalid  = errors.New("payer information invalid")
	ErrPaymentSignature  = errors.New("payment signature verification failed")
	ErrPaymentMismatched = errors.New("payment does not match any order")
)

// 交付授权相关错误
var (
	ErrGrantNotFound       = errors.New("access link not found")
	ErrGrantRevoked        = errors.New("access has been revoked")
	ErrGrantExpired        = errors.New("access has expired")
	ErrGrantOwnerMismatch  = errors.New("access belongs to another account")
	ErrGrantDownloadLimit  = errors.New("download limit reached")
	ErrGrantAlreadyRevoked = errors.New("access already revoked")
)

// isDuplicateKeyError 判断是否唯一约束冲突
// 驱动开启错误翻译时命中 gorm.ErrDuplicatedKey，否则回退匹配
// sqlite（"UNIQUE constraint failed"）与 postgres（"duplicate key"/23505）的报错文本
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint") ||
		strings.Contains(message, "duplicate key") ||
		strings.Contains(message, "23505")
}
