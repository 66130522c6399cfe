package models

import "time"

// CouponUsage 优惠券使用记录
// 仅在 one_time_per_user 优惠券被注册用户使用时写入，(coupon_id, user_id) 唯一
type CouponUsage struct {
	ID       uint      `gorm:"primarykey" json:"id"`                                     // 主键
	CouponID uint      `gorm:"uniqueIndex:idx_coupon_user;not null" json:"coupon_id"`    // 优惠券ID
	UserID   uint      `gorm:"uniqueIndex:idx_coupon_user;not null" json:"user_id"`      // 用户ID
	OrderID  uint      `gorm:"index;not null" json:"order_id"`                           // 订单ID
	UsedAt   time.Time `gorm:"index" json:"used_at"`                                     // 使用时间
}

// TableName 指定表名
func (CouponUsage) TableName() string {
	return "coupon_usages"
}
