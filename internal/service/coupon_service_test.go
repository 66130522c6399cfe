package service

import (
	"errors"
	"testing"
	"time"

	"github.com/creative-products/internal/models"

	"gorm.io/gorm"
)

func (env *serviceTestEnv) createCoupon(t *testing.T, mutate func(*models.Coupon)) *models.Coupon {
	t.Helper()
	coupon := &models.Coupon{
		Code:           "SAVE20",
		DiscountType:   "percentage",
		DiscountValue:  mustMoney(t, "20"),
		MinOrderAmount: mustMoney(t, "0"),
		IsActive:       true,
	}
	if mutate != nil {
		mutate(coupon)
	}
	if err := env.couponRepo.Create(coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	return coupon
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  save20 "); got != "SAVE20" {
		t.Fatalf("expected SAVE20, got %q", got)
	}
}

func TestValidatePercentageCoupon(t *testing.T) {
	env := setupServiceTest(t)
	env.createCoupon(t, nil)

	quote, err := env.couponService.Validate("save20", mustMoney(t, "1000"), 0)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if quote.Discount.Decimal.String() != "200" {
		t.Fatalf("expected discount 200, got %s", quote.Discount.Decimal.String())
	}
	if quote.Message != "20% off applied!" {
		t.Fatalf("unexpected message %q", quote.Message)
	}
}

func TestValidateFixedCouponClampedToSubtotal(t *testing.T) {
	env := setupServiceTest(t)
	env.createCoupon(t, func(c *models.Coupon) {
		c.Code = "FLAT500"
		c.DiscountType = "fixed"
		c.DiscountValue = mustMoney(t, "500")
	})

	quote, err := env.couponService.Validate("FLAT500", mustMoney(t, "300"), 0)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !quote.Discount.Decimal.Equal(mustMoney(t, "300").Decimal) {
		t.Fatalf("expected discount clamped to 300, got %s", quote.Discount.Decimal.String())
	}
	if quote.Message != "₹500 off applied!" {
		t.Fatalf("unexpected message %q", quote.Message)
	}
}

func TestValidateRejectsUnknownAndInactive(t *testing.T) {
	env := setupServiceTest(t)
	env.createCoupon(t, func(c *models.Coupon) {
		c.Code = "DISABLED"
		c.IsActive = false
	})

	if _, err := env.couponService.Validate("NOPE", mustMoney(t, "100"), 0); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound, got %v", err)
	}
	if _, err := env.couponService.Validate("DISABLED", mustMoney(t, "100"), 0); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound for inactive, got %v", err)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	env := setupServiceTest(t)
	past := time.Now().Add(-time.Hour)
	env.createCoupon(t, func(c *models.Coupon) {
		c.ExpiresAt = &past
	})

	if _, err := env.couponService.Validate("SAVE20", mustMoney(t, "100"), 0); !errors.Is(err, ErrCouponExpired) {
		t.Fatalf("expected ErrCouponExpired, got %v", err)
	}
}

func TestValidateRejectsExhausted(t *testing.T) {
	env := setupServiceTest(t)
	env.createCoupon(t, func(c *models.Coupon) {
		c.MaxUses = intRef(2)
		c.UsesCount = 2
	})

	if _, err := env.couponService.Validate("SAVE20", mustMoney(t, "100"), 0); !errors.Is(err, ErrCouponUsageLimit) {
		t.Fatalf("expected ErrCouponUsageLimit, got %v", err)
	}
}

func TestValidateRejectsSecondUsePerUser(t *testing.T) {
	env := setupServiceTest(t)
	coupon := env.createCoupon(t, func(c *models.Coupon) {
		c.OneTimePerUser = true
	})
	usage := &models.CouponUsage{CouponID: coupon.ID, UserID: 7, OrderID: 1, UsedAt: time.Now()}
	if err := env.couponUsageRepo.Create(usage); err != nil {
		t.Fatalf("create usage failed: %v", err)
	}

	if _, err := env.couponService.Validate("SAVE20", mustMoney(t, "100"), 7); !errors.Is(err, ErrCouponAlreadyUsed) {
		t.Fatalf("expected ErrCouponAlreadyUsed, got %v", err)
	}
	// A different user is unaffected.
	if _, err := env.couponService.Validate("SAVE20", mustMoney(t, "100"), 8); err != nil {
		t.Fatalf("expected success for other user, got %v", err)
	}
}

func TestValidateRejectsBelowMinimum(t *testing.T) {
	env := setupServiceTest(t)
	env.createCoupon(t, func(c *models.Coupon) {
		c.MinOrderAmount = mustMoney(t, "500")
	})

	if _, err := env.couponService.Validate("SAVE20", mustMoney(t, "499"), 0); !errors.Is(err, ErrCouponMinAmount) {
		t.Fatalf("expected ErrCouponMinAmount, got %v", err)
	}
	if _, err := env.couponService.Validate("SAVE20", mustMoney(t, "500"), 0); err != nil {
		t.Fatalf("expected success at exact minimum, got %v", err)
	}
}

func TestRedeemInTxStopsAtMaxUses(t *testing.T) {
	env := setupServiceTest(t)
	coupon := env.createCoupon(t, func(c *models.Coupon) {
		c.MaxUses = intRef(2)
	})

	for i := 0; i < 2; i++ {
		err := env.db.Transaction(func(tx *gorm.DB) error {
			return env.couponService.RedeemInTx(tx, coupon, 0, uint(i+1))
		})
		if err != nil {
			t.Fatalf("redeem %d failed: %v", i+1, err)
		}
	}

	err := env.db.Transaction(func(tx *gorm.DB) error {
		return env.couponService.RedeemInTx(tx, coupon, 0, 3)
	})
	if !errors.Is(err, ErrCouponUsageLimit) {
		t.Fatalf("expected ErrCouponUsageLimit on third redeem, got %v", err)
	}

	fresh, err := env.couponRepo.GetByID(coupon.ID)
	if err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if fresh.UsesCount != 2 {
		t.Fatalf("expected uses_count 2, got %d", fresh.UsesCount)
	}
}

func TestRedeemInTxOneTimePerUserUniqueness(t *testing.T) {
	env := setupServiceTest(t)
	coupon := env.createCoupon(t, func(c *models.Coupon) {
		c.OneTimePerUser = true
	})

	err := env.db.Transaction(func(tx *gorm.DB) error {
		return env.couponService.RedeemInTx(tx, coupon, 5, 1)
	})
	if err != nil {
		t.Fatalf("first redeem failed: %v", err)
	}

	err = env.db.Transaction(func(tx *gorm.DB) error {
		return env.couponService.RedeemInTx(tx, coupon, 5, 2)
	})
	if !errors.Is(err, ErrCouponAlreadyUsed) {
		t.Fatalf("expected ErrCouponAlreadyUsed on duplicate usage row, got %v", err)
	}
}

func TestRedeemInTxSurfacesStorageErrors(t *testing.T) {
	env := setupServiceTest(t)
	coupon := env.createCoupon(t, func(c *models.Coupon) {
		c.OneTimePerUser = true
	})

	// A broken usage table is an infrastructure failure, not a business
	// rejection.
	if err := env.db.Migrator().DropTable(&models.CouponUsage{}); err != nil {
		t.Fatalf("drop usage table failed: %v", err)
	}

	err := env.db.Transaction(func(tx *gorm.DB) error {
		return env.couponService.RedeemInTx(tx, coupon, 5, 1)
	})
	if err == nil {
		t.Fatalf("expected an error from the missing usage table")
	}
	if errors.Is(err, ErrCouponAlreadyUsed) {
		t.Fatalf("storage failure must not masquerade as ErrCouponAlreadyUsed")
	}
}
