package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/creative-products/internal/constants"
	"github.com/creative-products/internal/models"
	"github.com/creative-products/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponQuote 优惠券试算结果
type CouponQuote struct {
	Coupon   *models.Coupon `json:"coupon"`
	Discount models.Money   `json:"discount"`
	Message  string         `json:"message"`
}

// CouponService 优惠券服务
type CouponService struct {
	couponRepo repository.CouponRepository
	usageRepo  repository.CouponUsageRepository
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository, usageRepo repository.CouponUsageRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		usageRepo:  usageRepo,
	}
}

// NormalizeCode 统一优惠码格式（去空白并大写）
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate 校验优惠券并试算折扣
// 校验顺序固定：存在且启用 → 未过期 → 总次数未用尽 → 每人一次未用过 → 满足使用门槛
func (s *CouponService) Validate(code string, subtotal models.Money, userID uint) (*CouponQuote, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, ErrCouponNotFound
	}

	coupon, err := s.couponRepo.GetByCode(normalized)
	if err != nil {
		return nil, err
	}
	if coupon == nil || !coupon.IsActive {
		return nil, ErrCouponNotFound
	}

	if coupon.ExpiresAt != nil && time.Now().After(*coupon.ExpiresAt) {
		return nil, ErrCouponExpired
	}

	if coupon.MaxUses != nil && coupon.UsesCount >= *coupon.MaxUses {
		return nil, ErrCouponUsageLimit
	}

	if coupon.OneTimePerUser && userID != 0 {
		count, err := s.usageRepo.CountByUser(coupon.ID, userID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrCouponAlreadyUsed
		}
	}

	if subtotal.Decimal.LessThan(coupon.MinOrderAmount.Decimal) {
		return nil, ErrCouponMinAmount
	}

	discount := CalculateDiscount(coupon, subtotal)
	return &CouponQuote{
		Coupon:   coupon,
		Discount: discount,
		Message:  discountMessage(coupon),
	}, nil
}

// CalculateDiscount 计算折扣金额，结果不超过小计
func CalculateDiscount(coupon *models.Coupon, subtotal models.Money) models.Money {
	var discount decimal.Decimal
	switch coupon.DiscountType {
	case constants.CouponTypePercentage:
		discount = subtotal.Decimal.
			Mul(coupon.DiscountValue.Decimal).
			Div(decimal.NewFromInt(100)).
			Round(2)
	case constants.CouponTypeFixed:
		discount = coupon.DiscountValue.Decimal
	default:
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal.Decimal) {
		discount = subtotal.Decimal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return models.NewMoneyFromDecimal(discount)
}

func discountMessage(coupon *models.Coupon) string {
	value := coupon.DiscountValue.Decimal.String()
	if coupon.DiscountType == constants.CouponTypePercentage {
		return fmt.Sprintf("%s%% off applied!", value)
	}
	return fmt.Sprintf("₹%s off applied!", value)
}

// ListFeatured 获取前台展示的优惠券
func (s *CouponService) ListFeatured(limit int) ([]models.Coupon, error) {
	return s.couponRepo.ListFeatured(limit)
}

// RedeemInTx 在订单事务内核销优惠券
// 条件递增使用次数关闭了并发下超卖的窗口；每人一次的优惠券同时写入使用记录，
// 唯一索引保证同一用户并发下单只有一笔成功
func (s *CouponService) RedeemInTx(tx *gorm.DB, coupon *models.Coupon, userID, orderID uint) error {
	ok, err := s.couponRepo.WithTx(tx).IncrementUsesCount(coupon.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCouponUsageLimit
	}

	if coupon.OneTimePerUser && userID != 0 {
		usage := &models.CouponUsage{
			CouponID: coupon.ID,
			UserID:   userID,
			OrderID:  orderID,
			UsedAt:   time.Now(),
		}
		if err := s.usageRepo.WithTx(tx).Create(usage); err != nil {
			// 唯一索引 (coupon_id, user_id) 冲突即该用户已用过；其余错误原样上抛
			if isDuplicateKeyError(err) {
				return ErrCouponAlreadyUsed
			}
			return err
		}
	}
	return nil
}
