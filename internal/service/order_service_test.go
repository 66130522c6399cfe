package service

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/creative-products/internal/models"

	"gorm.io/gorm"
)

func TestGenerateOrderNoFormat(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^ORD-20260314-[0-9A-Z]{5}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		orderNo, err := GenerateOrderNo(now)
		if err != nil {
			t.Fatalf("generate order no failed: %v", err)
		}
		if !pattern.MatchString(orderNo) {
			t.Fatalf("order no %q does not match format", orderNo)
		}
		seen[orderNo] = true
	}
	if len(seen) < 45 {
		t.Fatalf("suffixes look non-random: %d unique out of 50", len(seen))
	}
}

func TestValidatePayer(t *testing.T) {
	cases := []struct {
		name    string
		userID  uint
		gName   string
		gEmail  string
		wantErr bool
	}{
		{"logged in user without guest fields", 3, "", "", false},
		{"logged in user with guest name rejected", 3, "Asha Rao", "", true},
		{"logged in user with guest email rejected", 3, "", "asha@example.com", true},
		{"logged in user with both guest fields rejected", 3, "Asha Rao", "asha@example.com", true},
		{"guest with valid info", 0, "Asha Rao", "asha@example.com", false},
		{"guest missing name", 0, "", "asha@example.com", true},
		{"guest missing email", 0, "Asha Rao", "", true},
		{"guest malformed email", 0, "Asha Rao", "not-an-email", true},
		{"guest email with display name", 0, "Asha Rao", "Asha <asha@example.com>", true},
	}
	for _, tc := range cases {
		err := ValidatePayer(tc.userID, tc.gName, tc.gEmail)
		if tc.wantErr && !errors.Is(err, ErrPayerInfoInvalid) {
			t.Fatalf("%s: expected ErrPayerInfoInvalid, got %v", tc.name, err)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
	}
}

func TestMarkPaidIssuesGrantOnce(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, nil)
	order := env.createPendingOrder(t, product, nil)

	delivery, flipped, err := env.orderService.MarkPaid(order.ID, "pay_ABC123")
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if !flipped {
		t.Fatalf("expected first confirmation to flip the order")
	}
	if delivery == nil || delivery.SecureToken == "" {
		t.Fatalf("expected delivery with secure token")
	}

	// A duplicate confirmation must not issue a second grant.
	again, flipped, err := env.orderService.MarkPaid(order.ID, "pay_ABC123")
	if err != nil {
		t.Fatalf("second mark paid failed: %v", err)
	}
	if flipped {
		t.Fatalf("expected second confirmation to be a no-op")
	}
	if again == nil || again.ID != delivery.ID {
		t.Fatalf("expected the existing delivery to be returned")
	}

	var count int64
	env.db.Model(&models.Delivery{}).Where("order_id = ?", order.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one delivery, got %d", count)
	}

	fresh, err := env.orderRepo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if fresh.PaymentStatus != "paid" {
		t.Fatalf("expected status paid, got %s", fresh.PaymentStatus)
	}
	if fresh.GatewayPaymentID != "pay_ABC123" {
		t.Fatalf("expected gateway payment id recorded, got %q", fresh.GatewayPaymentID)
	}
	if fresh.PaidAt == nil {
		t.Fatalf("expected paid_at set")
	}
}

func TestGrantSnapshotsOrderTerms(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, func(p *models.Product) {
		p.AccessExpiryHours = intRef(48)
		p.DownloadLimit = intRef(3)
	})
	order := env.createPendingOrder(t, product, nil)

	delivery, _, err := env.orderService.MarkPaid(order.ID, "pay_SNAP")
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if delivery.ExpiresAt == nil {
		t.Fatalf("expected expiry from access_expiry_hours snapshot")
	}
	lifetime := time.Until(*delivery.ExpiresAt)
	if lifetime < 47*time.Hour || lifetime > 49*time.Hour {
		t.Fatalf("expected ~48h lifetime, got %s", lifetime)
	}
	if delivery.DownloadLimit == nil || *delivery.DownloadLimit != 3 {
		t.Fatalf("expected download limit snapshot 3")
	}
	if delivery.AccessURL == "" {
		t.Fatalf("expected access url")
	}
}

func TestMarkExpiredLeavesPaidOrdersAlone(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, nil)

	pending := env.createPendingOrder(t, product, nil)
	expired, err := env.orderService.MarkExpired(pending.ID)
	if err != nil {
		t.Fatalf("mark expired failed: %v", err)
	}
	if !expired {
		t.Fatalf("expected pending order to expire")
	}

	paid := env.createPendingOrder(t, product, nil)
	if _, _, err := env.orderService.MarkPaid(paid.ID, "pay_RACE"); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	expired, err = env.orderService.MarkExpired(paid.ID)
	if err != nil {
		t.Fatalf("mark expired on paid order failed: %v", err)
	}
	if expired {
		t.Fatalf("expiry must not clobber a paid order")
	}

	fresh, _ := env.orderRepo.GetByID(paid.ID)
	if fresh.PaymentStatus != "paid" {
		t.Fatalf("expected paid order to stay paid, got %s", fresh.PaymentStatus)
	}
}

func TestApproveOfflineIsIdempotent(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, nil)
	order := env.createPendingOrder(t, product, func(o *models.Order) {
		o.PaymentMode = "offline"
	})

	delivery, err := env.orderService.ApproveOffline(order.ID, 1)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if delivery == nil {
		t.Fatalf("expected delivery issued on approval")
	}

	// A duplicate admin click is a no-op success returning the existing grant.
	again, err := env.orderService.ApproveOffline(order.ID, 1)
	if err != nil {
		t.Fatalf("repeat approval failed: %v", err)
	}
	if again == nil || again.ID != delivery.ID {
		t.Fatalf("expected the existing delivery on repeat approval")
	}
	var count int64
	env.db.Model(&models.Delivery{}).Where("order_id = ?", order.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected one delivery after repeat approval, got %d", count)
	}

	if _, err := env.orderService.ApproveOffline(9999, 1); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestApproveOfflineRejectsFailedOrder(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, nil)
	order := env.createPendingOrder(t, product, func(o *models.Order) {
		o.PaymentMode = "offline"
	})
	if _, err := env.orderService.MarkExpired(order.ID); err != nil {
		t.Fatalf("mark expired failed: %v", err)
	}

	if _, err := env.orderService.ApproveOffline(order.ID, 1); !errors.Is(err, ErrOrderNotPending) {
		t.Fatalf("expected ErrOrderNotPending for failed order, got %v", err)
	}
}

func TestCreateTxRetriesAfterDuplicateOrderNo(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, nil)
	existing := env.createPendingOrder(t, product, nil)

	err := env.db.Transaction(func(tx *gorm.DB) error {
		// A colliding insert inside a savepoint must not poison the
		// enclosing transaction.
		dup := &models.Order{
			ProductID:     product.ID,
			OrderNo:       existing.OrderNo,
			GuestName:     "Asha Rao",
			GuestEmail:    "asha@example.com",
			Amount:        product.Price,
			Currency:      "INR",
			PaymentMode:   "online",
			PaymentStatus: "pending",
		}
		insertErr := tx.Transaction(func(inner *gorm.DB) error {
			return env.orderRepo.WithTx(inner).Create(dup)
		})
		if insertErr == nil {
			t.Fatalf("expected unique violation on duplicate order no")
		}
		if !isDuplicateKeyError(insertErr) {
			t.Fatalf("expected duplicate key classification, got %v", insertErr)
		}

		fresh := &models.Order{
			ProductID:     product.ID,
			GuestName:     "Asha Rao",
			GuestEmail:    "asha@example.com",
			Amount:        product.Price,
			Currency:      "INR",
			PaymentMode:   "online",
			PaymentStatus: "pending",
		}
		return env.orderService.CreateTx(tx, fresh)
	})
	if err != nil {
		t.Fatalf("transaction should survive the collision, got %v", err)
	}

	var count int64
	env.db.Model(&models.Order{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 orders, got %d", count)
	}
}
