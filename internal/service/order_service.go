package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/creative-products/internal/config"
	"github.com/creative-products/internal/constants"
	"github.com/creative-products/internal/logger"
	"github.com/creative-products/internal/models"
	"github.com/creative-products/internal/repository"

	"gorm.io/gorm"
)

const orderNoSuffixChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
const orderNoCreateRetries = 3

// OrderService 订单服务
type OrderService struct {
	cfg             *config.Config
	db              *gorm.DB
	orderRepo       repository.OrderRepository
	deliveryService *DeliveryService
}

// NewOrderService 创建订单服务
func NewOrderService(cfg *config.Config, db *gorm.DB, orderRepo repository.OrderRepository, deliveryService *DeliveryService) *OrderService {
	return &OrderService{
		cfg:             cfg,
		db:              db,
		orderRepo:       orderRepo,
		deliveryService: deliveryService,
	}
}

// GenerateOrderNo 生成订单号
// 格式: ORD-YYYYMMDD-XXXXX，后缀为 5 位大写 base36 随机串
func GenerateOrderNo(now time.Time) (string, error) {
	suffix := make([]byte, 5)
	max := big.NewInt(int64(len(orderNoSuffixChars)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = orderNoSuffixChars[n.Int64()]
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), string(suffix)), nil
}

// ValidatePayer 校验付款人信息
// 付款人身份二选一：登录用户不得再携带游客信息，游客必须提供姓名与合法邮箱
func ValidatePayer(userID uint, guestName, guestEmail string) error {
	name := strings.TrimSpace(guestName)
	email := strings.TrimSpace(guestEmail)
	if userID != 0 {
		if name != "" || email != "" {
			return ErrPayerInfoInvalid
		}
		return nil
	}
	if name == "" {
		return ErrPayerInfoInvalid
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrPayerInfoInvalid
	}
	return nil
}

// CreateTx 在事务内创建订单，订单号冲突时重新生成
// 每次尝试包在嵌套事务（保存点）里：唯一冲突只回滚本次插入，
// 不会让外层事务进入 aborted 状态，重试才可能成功
func (s *OrderService) CreateTx(tx *gorm.DB, order *models.Order) error {
	var lastErr error
	for i := 0; i < orderNoCreateRetries; i++ {
		orderNo, err := GenerateOrderNo(time.Now())
		if err != nil {
			return err
		}
		order.OrderNo = orderNo
		err = tx.Transaction(func(inner *gorm.DB) error {
			return s.orderRepo.WithTx(inner).Create(order)
		})
		if err == nil {
			return nil
		}
		if !isDuplicateKeyError(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// MarkPaid 将订单置为已支付并签发交付授权
// 状态翻转与授权签发在同一事务内完成：要么都生效，要么都不生效。
// 条件更新保证并发确认下只有一次翻转，重复确认返回已存在的授权
func (s *OrderService) MarkPaid(orderID uint, gatewayPaymentID string) (*models.Delivery, bool, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, false, err
	}
	if order == nil {
		return nil, false, ErrOrderNotFound
	}

	var delivery *models.Delivery
	flipped := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		ok, err := s.orderRepo.WithTx(tx).MarkPaid(orderID, gatewayPaymentID, now)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		flipped = true
		delivery, err = s.deliveryService.IssueGrantTx(tx, order, now)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if flipped {
		logger.Infow("order_marked_paid",
			"order_id", orderID,
			"order_no", order.OrderNo,
			"gateway_payment_id", gatewayPaymentID,
			"delivery_id", delivery.ID,
		)
		return delivery, true, nil
	}

	// 订单已不是待支付状态：重复确认时返回既有授权
	existing, err := s.deliveryService.GetByOrderID(orderID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// ApproveOffline 管理员人工确认线下支付，复用在线支付的成交路径
// 与 MarkPaid 同一幂等契约：重复确认已支付订单返回既有授权，不报错
func (s *OrderService) ApproveOffline(orderID uint, adminID uint) (*models.Delivery, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.PaymentStatus == constants.PaymentStatusFailed {
		return nil, ErrOrderNotPending
	}

	delivery, flipped, err := s.MarkPaid(orderID, "")
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		// 读取后被并发置为失败
		return nil, ErrOrderNotPending
	}
	if flipped {
		logger.Infow("order_offline_approved", "order_id", orderID, "admin_id", adminID)
	}
	return delivery, nil
}

// MarkExpired 将超时未支付的订单置为失败
// 条件更新保证不会覆盖已支付订单
func (s *OrderService) MarkExpired(orderID uint) (bool, error) {
	return s.orderRepo.MarkFailed(orderID)
}

// GetByID 获取订单
func (s *OrderService) GetByID(id uint) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// GetByOrderNo 按订单号获取订单
func (s *OrderService) GetByOrderNo(orderNo string) (*models.Order, error) {
	return s.orderRepo.GetByOrderNo(strings.TrimSpace(orderNo))
}

// GetForUser 获取用户自己的订单
func (s *OrderService) GetForUser(id, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListForUser 用户订单列表
func (s *OrderService) ListForUser(userID uint, page, pageSize int) ([]models.Order, int64, error) {
	return s.orderRepo.ListByUser(repository.OrderListFilter{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	})
}

// ListAdmin 管理端订单列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// PaymentExpireDuration 支付超时时长
func (s *OrderService) PaymentExpireDuration() time.Duration {
	minutes := 15
	if s.cfg != nil && s.cfg.Order.PaymentExpireMinutes > 0 {
		minutes = s.cfg.Order.PaymentExpireMinutes
	}
	return time.Duration(minutes) * time.Minute
}
