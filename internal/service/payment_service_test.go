package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/creative-products/internal/models"
	"github.com/creative-products/internal/payment/razorpay"
)

func (env *serviceTestEnv) paymentService(t *testing.T) *PaymentService {
	t.Helper()
	env.cfg.Razorpay.KeyID = "rzp_test_key"
	env.cfg.Razorpay.KeySecret = "rzp_test_secret"
	env.cfg.Razorpay.Currency = "INR"
	productService := NewProductService(env.productRepo)
	return NewPaymentService(env.cfg, env.db, env.orderRepo, productService, env.couponService, env.orderService, nil)
}

func TestCheckoutOfflineAllocatesDiscountProportionally(t *testing.T) {
	env := setupServiceTest(t)
	svc := env.paymentService(t)

	cheap := env.createProduct(t, func(p *models.Product) { p.Price = mustMoney(t, "300") })
	pricey := env.createProduct(t, func(p *models.Product) { p.Price = mustMoney(t, "700") })
	env.createCoupon(t, func(c *models.Coupon) {
		c.Code = "FLAT100"
		c.DiscountType = "fixed"
		c.DiscountValue = mustMoney(t, "100")
	})

	result, err := svc.Checkout(context.Background(), CheckoutInput{
		ProductIDs:  []uint{cheap.ID, pricey.ID},
		GuestName:   "Asha Rao",
		GuestEmail:  "asha@example.com",
		CouponCode:  "flat100",
		PaymentMode: "offline",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if len(result.Orders) != 2 {
		t.Fatalf("expected one order per product, got %d", len(result.Orders))
	}
	if !result.Total.Decimal.Equal(mustMoney(t, "900").Decimal) {
		t.Fatalf("expected total 900, got %s", result.Total.Decimal.String())
	}
	// 100 split 30/70 across a 300/700 cart, remainder to the last item.
	if !result.Orders[0].CouponDiscount.Decimal.Equal(mustMoney(t, "30").Decimal) {
		t.Fatalf("expected first share 30, got %s", result.Orders[0].CouponDiscount.Decimal.String())
	}
	if !result.Orders[1].CouponDiscount.Decimal.Equal(mustMoney(t, "70").Decimal) {
		t.Fatalf("expected second share 70, got %s", result.Orders[1].CouponDiscount.Decimal.String())
	}
	if !result.Orders[0].Amount.Decimal.Equal(mustMoney(t, "270").Decimal) {
		t.Fatalf("expected first amount 270, got %s", result.Orders[0].Amount.Decimal.String())
	}

	fresh, err := env.couponRepo.GetByCode("FLAT100")
	if err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if fresh.UsesCount != 1 {
		t.Fatalf("expected coupon redeemed once per checkout, got %d", fresh.UsesCount)
	}
}

func TestCheckoutRejectsBadPayerAndProducts(t *testing.T) {
	env := setupServiceTest(t)
	svc := env.paymentService(t)

	active := env.createProduct(t, nil)
	inactive := env.createProduct(t, func(p *models.Product) { p.IsActive = false })

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		ProductIDs: []uint{active.ID},
		GuestName:  "",
		GuestEmail: "asha@example.com",
	})
	if !errors.Is(err, ErrPayerInfoInvalid) {
		t.Fatalf("expected ErrPayerInfoInvalid, got %v", err)
	}

	_, err = svc.Checkout(context.Background(), CheckoutInput{
		ProductIDs:  []uint{inactive.ID},
		GuestName:   "Asha Rao",
		GuestEmail:  "asha@example.com",
		PaymentMode: "offline",
	})
	if !errors.Is(err, ErrProductInactive) {
		t.Fatalf("expected ErrProductInactive, got %v", err)
	}

	_, err = svc.Checkout(context.Background(), CheckoutInput{
		ProductIDs:  []uint{9999},
		GuestName:   "Asha Rao",
		GuestEmail:  "asha@example.com",
		PaymentMode: "offline",
	})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCheckoutRejectsMixedPayerForms(t *testing.T) {
	env := setupServiceTest(t)
	svc := env.paymentService(t)
	product := env.createProduct(t, nil)

	// A logged-in caller posting guest fields carries two payer identities.
	_, err := svc.Checkout(context.Background(), CheckoutInput{
		ProductIDs:  []uint{product.ID},
		UserID:      7,
		GuestName:   "Asha Rao",
		GuestEmail:  "asha@example.com",
		PaymentMode: "offline",
	})
	if !errors.Is(err, ErrPayerInfoInvalid) {
		t.Fatalf("expected ErrPayerInfoInvalid, got %v", err)
	}

	result, err := svc.Checkout(context.Background(), CheckoutInput{
		ProductIDs:  []uint{product.ID},
		UserID:      7,
		PaymentMode: "offline",
	})
	if err != nil {
		t.Fatalf("authenticated checkout failed: %v", err)
	}
	order := result.Orders[0]
	if order.UserID != 7 || order.GuestName != "" || order.GuestEmail != "" {
		t.Fatalf("expected user payer only, got user=%d guest=%q/%q",
			order.UserID, order.GuestName, order.GuestEmail)
	}
}

func TestConcurrentCheckoutsRedeemSingleUseCouponOnce(t *testing.T) {
	env := setupServiceTest(t)
	svc := env.paymentService(t)
	product := env.createProduct(t, nil)
	env.createCoupon(t, func(c *models.Coupon) {
		c.Code = "ONCE"
		c.MaxUses = intRef(1)
	})

	const attempts = 10
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Checkout(context.Background(), CheckoutInput{
				ProductIDs:  []uint{product.ID},
				GuestName:   fmt.Sprintf("Guest %d", i),
				GuestEmail:  fmt.Sprintf("guest%d@example.com", i),
				CouponCode:  "ONCE",
				PaymentMode: "offline",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrCouponUsageLimit):
		default:
			t.Fatalf("unexpected checkout error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one checkout to win the coupon, got %d", succeeded)
	}

	var orders int64
	env.db.Model(&models.Order{}).Count(&orders)
	if orders != 1 {
		t.Fatalf("expected losing checkouts rolled back, got %d orders", orders)
	}
	fresh, err := env.couponRepo.GetByCode("ONCE")
	if err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if fresh.UsesCount != 1 {
		t.Fatalf("expected uses_count 1, got %d", fresh.UsesCount)
	}
}

func TestCheckoutInvalidCouponLeavesNoOrders(t *testing.T) {
	env := setupServiceTest(t)
	svc := env.paymentService(t)
	product := env.createProduct(t, nil)

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		ProductIDs:  []uint{product.ID},
		GuestName:   "Asha Rao",
		GuestEmail:  "asha@example.com",
		CouponCode:  "NOPE",
		PaymentMode: "offline",
	})
	if !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound, got %v", err)
	}

	var count int64
	env.db.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no orders persisted, got %d", count)
	}
}

func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	env := setupServiceTest(t)
	svc := env.paymentService(t)

	_, err := svc.VerifyPayment("order_X", "pay_Y", "deadbeef")
	if !errors.Is(err, ErrPaymentSignature) {
		t.Fatalf("expected ErrPaymentSignature, got %v", err)
	}
}

func TestVerifyPaymentConfirmsAllLinkedOrders(t *testing.T) {
	env := setupServiceTest(t)
	svc := env.paymentService(t)

	first := env.createPendingOrder(t, env.createProduct(t, nil), nil)
	second := env.createPendingOrder(t, env.createProduct(t, nil), nil)
	gatewayOrderID := "order_MULTI1"
	if err := env.orderRepo.SetGatewayOrderID([]uint{first.ID, second.ID}, gatewayOrderID); err != nil {
		t.Fatalf("set gateway order id failed: %v", err)
	}

	signature := razorpay.Sign(gatewayOrderID, "pay_MULTI1", env.cfg.Razorpay.KeySecret)
	confirmation, err := svc.VerifyPayment(gatewayOrderID, "pay_MULTI1", signature)
	if err != nil {
		t.Fatalf("verify payment failed: %v", err)
	}
	if len(confirmation.Orders) != 2 || len(confirmation.Deliveries) != 2 {
		t.Fatalf("expected 2 orders and 2 deliveries, got %d/%d", len(confirmation.Orders), len(confirmation.Deliveries))
	}
	for _, order := range confirmation.Orders {
		if order.PaymentStatus != "paid" {
			t.Fatalf("expected order %d paid, got %s", order.ID, order.PaymentStatus)
		}
	}

	// Replaying the confirmation returns the same grants without reissuing.
	replay, err := svc.VerifyPayment(gatewayOrderID, "pay_MULTI1", signature)
	if err != nil {
		t.Fatalf("replay verify failed: %v", err)
	}
	if len(replay.Deliveries) != 2 {
		t.Fatalf("expected replay to return existing deliveries, got %d", len(replay.Deliveries))
	}
	var count int64
	env.db.Model(&models.Delivery{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 deliveries total after replay, got %d", count)
	}
}

func TestVerifyPaymentUnknownGatewayOrder(t *testing.T) {
	env := setupServiceTest(t)
	svc := env.paymentService(t)

	signature := razorpay.Sign("order_GHOST", "pay_GHOST", env.cfg.Razorpay.KeySecret)
	_, err := svc.VerifyPayment("order_GHOST", "pay_GHOST", signature)
	if !errors.Is(err, ErrPaymentMismatched) {
		t.Fatalf("expected ErrPaymentMismatched, got %v", err)
	}
}
