package repository

import (
	"errors"
	"time"

	"github.com/creative-products/internal/models"

	"gorm.io/gorm"
)

// DeliveryRepository 交付授权数据访问接口
type DeliveryRepository interface {
	Create(delivery *models.Delivery) error
	GetByID(id uint) (*models.Delivery, error)
	GetByOrderID(orderID uint) (*models.Delivery, error)
	GetBySecureToken(token string) (*models.Delivery, error)
	List(filter DeliveryListFilter) ([]models.Delivery, int64, error)
	Revoke(id uint) (bool, error)
	ConsumeDownload(id uint, accessedAt time.Time) (bool, error)
	WithTx(tx *gorm.DB) *GormDeliveryRepository
}

// GormDeliveryRepository GORM 实现
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewDeliveryRepository 创建交付授权仓库
func NewDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDeliveryRepository) WithTx(tx *gorm.DB) *GormDeliveryRepository {
	if tx == nil {
		return r
	}
	return &GormDeliveryRepository{db: tx}
}

// Create 创建交付授权
func (r *GormDeliveryRepository) Create(delivery *models.Delivery) error {
	return r.db.Create(delivery).Error
}

// GetByID 根据ID获取交付授权
func (r *GormDeliveryRepository) GetByID(id uint) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.Preload("Order").First(&delivery, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &delivery, nil
}

// GetByOrderID 根据订单ID获取交付授权
func (r *GormDeliveryRepository) GetByOrderID(orderID uint) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.Where("order_id = ?", orderID).First(&delivery).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &delivery, nil
}

// GetBySecureToken 根据访问令牌获取交付授权（带订单与商品）
func (r *GormDeliveryRepository) GetBySecureToken(token string) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.Preload("Order").Preload("Order.Product").
		Where("secure_token = ?", token).First(&delivery).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &delivery, nil
}

// List 管理端交付授权列表
func (r *GormDeliveryRepository) List(filter DeliveryListFilter) ([]models.Delivery, int64, error) {
	query := r.db.Model(&models.Delivery{})

	if filter.OrderID > 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Revoked != nil {
		query = query.Where("revoked = ?", *filter.Revoked)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var deliveries []models.Delivery
	if err := query.Preload("Order").Order("id desc").Find(&deliveries).Error; err != nil {
		return nil, 0, err
	}
	return deliveries, total, nil
}

// Revoke 撤销交付授权（条件更新，重复撤销返回 false）
func (r *GormDeliveryRepository) Revoke(id uint) (bool, error) {
	result := r.db.Model(&models.Delivery{}).
		Where("id = ? AND revoked = ?", id, false).
		Update("revoked", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ConsumeDownload 消耗一次下载额度（条件更新，额度耗尽时返回 false）
// download_limit 为空表示不限次数，计数仍然递增用于审计
func (r *GormDeliveryRepository) ConsumeDownload(id uint, accessedAt time.Time) (bool, error) {
	result := r.db.Model(&models.Delivery{}).
		Where("id = ?", id).
		Where("download_limit IS NULL OR download_count < download_limit").
		Updates(map[string]interface{}{
			"download_count":   gorm.Expr("download_count + ?", 1),
			"last_accessed_at": accessedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
