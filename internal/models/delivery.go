package models

import "time"

// Delivery 交付授权表
// 订单支付成功时一次性生成，作为访问数字商品的唯一凭证；
// 只允许访问校验修改计数字段，撤销由管理端置位，记录永不删除
type Delivery struct {
	ID             uint       `gorm:"primarykey" json:"id"`                       // 主键
	OrderID        uint       `gorm:"uniqueIndex;not null" json:"order_id"`       // 订单ID（一单一授权）
	SecureToken    string     `gorm:"uniqueIndex;not null" json:"-"`              // 访问令牌（加密随机，不返回给列表接口）
	AccessURL      string     `gorm:"type:text" json:"access_url"`                // 访问链接
	ExpiresAt      *time.Time `gorm:"index" json:"expires_at,omitempty"`          // 绝对过期时间（空为永久）
	DownloadLimit  *int       `json:"download_limit,omitempty"`                   // 下载上限（空为不限）
	DownloadCount  int        `gorm:"not null;default:0" json:"download_count"`   // 已下载次数（单调递增）
	Revoked        bool       `gorm:"not null;default:false" json:"revoked"`      // 是否已撤销
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`                 // 最近访问时间
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`                    // 创建时间
	UpdatedAt      time.Time  `json:"updated_at"`                                 // 更新时间

	// 关联
	Order *Order `gorm:"foreignKey:OrderID" json:"order,omitempty"` // 所属订单
}

// TableName 指定表名
func (Delivery) TableName() string {
	return "deliveries"
}
