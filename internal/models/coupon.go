package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon 优惠券
type Coupon struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                          // 主键
	Code           string         `gorm:"uniqueIndex;not null" json:"code"`                              // 优惠码（统一大写）
	Description    string         `gorm:"type:text" json:"description"`                                  // 描述
	DiscountType   string         `gorm:"not null" json:"discount_type"`                                 // 类型（percentage/fixed）
	DiscountValue  Money          `gorm:"type:decimal(20,2);not null" json:"discount_value"`             // 数值（百分比或固定金额）
	MinOrderAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_order_amount"` // 使用门槛
	MaxUses        *int           `json:"max_uses,omitempty"`                                            // 总使用上限（空为不限）
	UsesCount      int            `gorm:"not null;default:0" json:"uses_count"`                          // 已使用次数
	OneTimePerUser bool           `gorm:"not null;default:false" json:"one_time_per_user"`               // 每人仅限一次
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`                        // 是否启用
	IsFeatured     bool           `gorm:"not null;default:false" json:"is_featured"`                     // 是否推荐展示
	ExpiresAt      *time.Time     `gorm:"index" json:"expires_at,omitempty"`                             // 失效时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                                                    // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}
