package constants

// 订单支付状态常量
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// 支付方式常量
const (
	PaymentModeOnline  = "online"
	PaymentModeOffline = "offline"
)

// 商品交付类型常量
const (
	DeliveryTypeFile         = "file"
	DeliveryTypeFolder       = "folder"
	DeliveryTypeExternalLink = "external_link"
	DeliveryTypeTimeLimited  = "time_limited"
)

// 优惠券类型常量
const (
	CouponTypePercentage = "percentage"
	CouponTypeFixed      = "fixed"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 队列与任务名称常量
const (
	QueueDefault            = "default"
	TaskOrderPaymentTimeout = "order:payment_timeout"
)

// 默认币种（支付网关以最小货币单位收款）
const DefaultCurrency = "INR"

// 签名下载链接有效期（秒）
const SignedURLTTLSeconds = 300
