package repository

import (
	"errors"
	"time"

	"github.com/creative-products/internal/constants"
	"github.com/creative-products/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	GetByIDAndUser(id uint, userID uint) (*models.Order, error)
	ListByGatewayOrderID(gatewayOrderID string) ([]models.Order, error)
	ListByUser(filter OrderListFilter) ([]models.Order, int64, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	ListExpiredPending(before time.Time, limit int) ([]models.Order, error)
	SetGatewayOrderID(ids []uint, gatewayOrderID string) error
	MarkPaid(id uint, gatewayPaymentID string, paidAt time.Time) (bool, error)
	MarkFailed(id uint) (bool, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单
func (r *GormOrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Product").Preload("Delivery").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo 根据订单号获取订单
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Product").Preload("Delivery").
		Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDAndUser 获取用户订单详情
func (r *GormOrderRepository) GetByIDAndUser(id uint, userID uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Product").Preload("Delivery").
		Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListByGatewayOrderID 获取同一网关订单下的全部本地订单
// 多商品一次结算会生成多个本地订单并共享网关订单号
func (r *GormOrderRepository) ListByGatewayOrderID(gatewayOrderID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Product").
		Where("gateway_order_id = ?", gatewayOrderID).
		Order("id asc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByUser 获取用户订单列表
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Where("user_id = ?", filter.UserID)
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []models.Order
	if err := query.Preload("Product").Preload("Delivery").
		Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListAdmin 管理端订单列表
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})

	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	if filter.GuestEmail != "" {
		query = query.Where("guest_email = ?", filter.GuestEmail)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []models.Order
	if err := query.Preload("Product").Preload("Delivery").
		Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListExpiredPending 获取已超时的待支付订单
func (r *GormOrderRepository) ListExpiredPending(before time.Time, limit int) ([]models.Order, error) {
	query := r.db.Where("payment_status = ? AND created_at < ?", constants.PaymentStatusPending, before)
	if limit > 0 {
		query = query.Limit(limit)
	}
	var orders []models.Order
	if err := query.Order("id asc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// SetGatewayOrderID 批量回写网关订单号
func (r *GormOrderRepository) SetGatewayOrderID(ids []uint, gatewayOrderID string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.Order{}).
		Where("id IN ?", ids).
		Update("gateway_order_id", gatewayOrderID).Error
}

// MarkPaid 将待支付订单置为已支付（条件更新，返回是否发生状态翻转）
// 只有 payment_status 仍为 pending 的行会被更新，保证并发回调下仅一次生效
func (r *GormOrderRepository) MarkPaid(id uint, gatewayPaymentID string, paidAt time.Time) (bool, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, constants.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status":     constants.PaymentStatusPaid,
			"gateway_payment_id": gatewayPaymentID,
			"paid_at":            paidAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkFailed 将待支付订单置为失败（条件更新，返回是否发生状态翻转）
func (r *GormOrderRepository) MarkFailed(id uint) (bool, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, constants.PaymentStatusPending).
		Update("payment_status", constants.PaymentStatusFailed)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
