package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                        // 主键
	Title             string         `gorm:"not null" json:"title"`                                       // 标题
	Slug              string         `gorm:"uniqueIndex;not null" json:"slug"`                            // 唯一标识
	Description       string         `gorm:"type:text" json:"description"`                                // 描述
	Price             Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`         // 售价
	DeliveryType      string         `gorm:"type:varchar(20);not null;default:'file'" json:"delivery_type"` // 交付类型（file/folder/external_link/time_limited）
	StoragePath       string         `gorm:"type:text" json:"-"`                                          // 存储路径或外部链接（不返回给前端）
	AccessExpiryHours *int           `json:"access_expiry_hours,omitempty"`                               // 访问有效期（小时，空为永久）
	DownloadLimit     *int           `json:"download_limit,omitempty"`                                    // 下载次数上限（空为不限）
	IsActive          bool           `gorm:"default:true;index" json:"is_active"`                         // 是否上架
	SortOrder         int            `gorm:"default:0;index" json:"sort_order"`                           // 排序权重
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt         time.Time      `json:"updated_at"`                                                  // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
