package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
// 价格与交付条款在下单时快照到订单上，后续商品编辑不影响已售订单
type Order struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                          // 主键
	OrderNo           string         `gorm:"uniqueIndex;not null" json:"order_no"`                          // 订单编号（ORD-YYYYMMDD-XXXXX）
	ProductID         uint           `gorm:"index;not null" json:"product_id"`                              // 商品ID
	UserID            uint           `gorm:"index" json:"user_id,omitempty"`                                // 用户ID（游客订单为 0）
	GuestName         string         `gorm:"type:varchar(100)" json:"guest_name,omitempty"`                 // 游客姓名
	GuestEmail        string         `gorm:"index" json:"guest_email,omitempty"`                            // 游客邮箱
	Amount            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`           // 实付金额
	Currency          string         `gorm:"not null;default:'INR'" json:"currency"`                        // 币种
	PaymentMode       string         `gorm:"type:varchar(20);not null" json:"payment_mode"`                 // 支付方式（online/offline）
	PaymentStatus     string         `gorm:"index;not null;default:'pending'" json:"payment_status"`        // 支付状态（pending/paid/failed）
	GatewayOrderID    string         `gorm:"index" json:"gateway_order_id,omitempty"`                       // 网关订单号
	GatewayPaymentID  string         `json:"gateway_payment_id,omitempty"`                                  // 网关支付流水号
	CouponID          *uint          `gorm:"index" json:"coupon_id,omitempty"`                              // 优惠券ID
	CouponDiscount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"coupon_discount"`  // 优惠金额
	AccessExpiryHours *int           `json:"access_expiry_hours,omitempty"`                                 // 交付有效期快照（小时）
	DownloadLimit     *int           `json:"download_limit,omitempty"`                                      // 下载上限快照
	PaidAt            *time.Time     `gorm:"index" json:"paid_at,omitempty"`                                // 支付时间
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt         time.Time      `json:"updated_at"`                                                    // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	// 关联
	Product  Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`  // 商品快照来源
	Delivery *Delivery `gorm:"foreignKey:OrderID" json:"delivery,omitempty"`   // 交付授权（支付后存在）
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// IsGuest 判断是否游客订单
func (o *Order) IsGuest() bool {
	return o != nil && o.UserID == 0
}
