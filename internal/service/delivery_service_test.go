package service

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creative-products/internal/models"
)

// paidDelivery marks the order paid and returns the issued grant.
func (env *serviceTestEnv) paidDelivery(t *testing.T, mutateProduct func(*models.Product), mutateOrder func(*models.Order)) *models.Delivery {
	t.Helper()
	product := env.createProduct(t, mutateProduct)
	order := env.createPendingOrder(t, product, mutateOrder)
	delivery, flipped, err := env.orderService.MarkPaid(order.ID, "pay_TEST")
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if !flipped {
		t.Fatalf("expected order to flip to paid")
	}
	return delivery
}

func TestVerifyAccessHappyPath(t *testing.T) {
	env := setupServiceTest(t)
	delivery := env.paidDelivery(t, nil, nil)

	info, err := env.deliveryService.VerifyAccess(delivery.SecureToken, 0)
	if err != nil {
		t.Fatalf("verify access failed: %v", err)
	}
	if info.Product == nil || info.Order == nil {
		t.Fatalf("expected order and product loaded")
	}
	if info.RemainingDownloads != nil {
		t.Fatalf("unlimited grant should have nil remaining downloads")
	}
}

func TestVerifyAccessUnknownToken(t *testing.T) {
	env := setupServiceTest(t)

	if _, err := env.deliveryService.VerifyAccess("no-such-token", 0); !errors.Is(err, ErrGrantNotFound) {
		t.Fatalf("expected ErrGrantNotFound, got %v", err)
	}
	if _, err := env.deliveryService.VerifyAccess("   ", 0); !errors.Is(err, ErrGrantNotFound) {
		t.Fatalf("expected ErrGrantNotFound for blank token, got %v", err)
	}
}

func TestVerifyAccessRevokedWinsOverExpired(t *testing.T) {
	env := setupServiceTest(t)
	delivery := env.paidDelivery(t, nil, nil)

	past := time.Now().Add(-time.Hour)
	env.db.Model(&models.Delivery{}).Where("id = ?", delivery.ID).
		Updates(map[string]interface{}{"revoked": true, "expires_at": past})

	if _, err := env.deliveryService.VerifyAccess(delivery.SecureToken, 0); !errors.Is(err, ErrGrantRevoked) {
		t.Fatalf("expected revocation to take precedence, got %v", err)
	}
}

func TestVerifyAccessExpired(t *testing.T) {
	env := setupServiceTest(t)
	delivery := env.paidDelivery(t, nil, nil)

	past := time.Now().Add(-time.Minute)
	env.db.Model(&models.Delivery{}).Where("id = ?", delivery.ID).Update("expires_at", past)

	if _, err := env.deliveryService.VerifyAccess(delivery.SecureToken, 0); !errors.Is(err, ErrGrantExpired) {
		t.Fatalf("expected ErrGrantExpired, got %v", err)
	}
}

func TestVerifyAccessOwnerMismatch(t *testing.T) {
	env := setupServiceTest(t)
	delivery := env.paidDelivery(t, nil, func(o *models.Order) {
		o.UserID = 11
		o.GuestName = ""
		o.GuestEmail = ""
	})

	// Another logged-in user is rejected.
	if _, err := env.deliveryService.VerifyAccess(delivery.SecureToken, 12); !errors.Is(err, ErrGrantOwnerMismatch) {
		t.Fatalf("expected ErrGrantOwnerMismatch, got %v", err)
	}
	// The owner passes.
	if _, err := env.deliveryService.VerifyAccess(delivery.SecureToken, 11); err != nil {
		t.Fatalf("owner access failed: %v", err)
	}
	// Anonymous requests pass: the token itself is the credential.
	if _, err := env.deliveryService.VerifyAccess(delivery.SecureToken, 0); err != nil {
		t.Fatalf("anonymous access failed: %v", err)
	}
}

func TestVerifyAccessGuestOrderIgnoresRequester(t *testing.T) {
	env := setupServiceTest(t)
	delivery := env.paidDelivery(t, nil, nil)

	// A logged-in user opening a guest-order link is fine.
	if _, err := env.deliveryService.VerifyAccess(delivery.SecureToken, 42); err != nil {
		t.Fatalf("guest order access by logged-in user failed: %v", err)
	}
}

func TestReleaseAssetExhaustsLimitExactly(t *testing.T) {
	env := setupServiceTest(t)
	delivery := env.paidDelivery(t, func(p *models.Product) {
		p.DownloadLimit = intRef(2)
	}, nil)

	for i := 0; i < 2; i++ {
		url, info, err := env.deliveryService.ReleaseAsset(delivery.SecureToken, 0)
		if err != nil {
			t.Fatalf("release %d failed: %v", i+1, err)
		}
		if !strings.Contains(url, "signature=") || !strings.Contains(url, "expires=") {
			t.Fatalf("expected signed url, got %q", url)
		}
		if info.Delivery.DownloadCount != i+1 {
			t.Fatalf("expected download count %d, got %d", i+1, info.Delivery.DownloadCount)
		}
	}

	if _, _, err := env.deliveryService.ReleaseAsset(delivery.SecureToken, 0); !errors.Is(err, ErrGrantDownloadLimit) {
		t.Fatalf("expected ErrGrantDownloadLimit on third release, got %v", err)
	}

	var fresh models.Delivery
	if err := env.db.First(&fresh, delivery.ID).Error; err != nil {
		t.Fatalf("reload delivery failed: %v", err)
	}
	if fresh.DownloadCount != 2 {
		t.Fatalf("expected count to stop at 2, got %d", fresh.DownloadCount)
	}
	if fresh.LastAccessedAt == nil {
		t.Fatalf("expected last_accessed_at set")
	}
}

func TestReleaseAssetExternalLinkReturnsStoredURL(t *testing.T) {
	env := setupServiceTest(t)
	delivery := env.paidDelivery(t, func(p *models.Product) {
		p.DeliveryType = "external_link"
		p.StoragePath = "https://example.com/course/start"
	}, nil)

	url, info, err := env.deliveryService.ReleaseAsset(delivery.SecureToken, 0)
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if url != "https://example.com/course/start" {
		t.Fatalf("expected the stored external url verbatim, got %q", url)
	}
	// External links still consume download quota.
	if info.Delivery.DownloadCount != 1 {
		t.Fatalf("expected download counted, got %d", info.Delivery.DownloadCount)
	}
}

func TestConcurrentReleasesNeverExceedLimit(t *testing.T) {
	env := setupServiceTest(t)
	delivery := env.paidDelivery(t, func(p *models.Product) {
		p.DownloadLimit = intRef(3)
	}, nil)

	const attempts = 6
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, results[i] = env.deliveryService.ReleaseAsset(delivery.SecureToken, 0)
		}(i)
	}
	wg.Wait()

	granted, limited := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			granted++
		case errors.Is(err, ErrGrantDownloadLimit):
			limited++
		default:
			t.Fatalf("unexpected release error: %v", err)
		}
	}
	if granted != 3 || limited != 3 {
		t.Fatalf("expected exactly 3 grants and 3 denials, got %d/%d", granted, limited)
	}

	var fresh models.Delivery
	if err := env.db.First(&fresh, delivery.ID).Error; err != nil {
		t.Fatalf("reload delivery failed: %v", err)
	}
	if fresh.DownloadCount != 3 {
		t.Fatalf("expected final count 3, got %d", fresh.DownloadCount)
	}
}

func TestReleaseAssetUnlimitedKeepsCounting(t *testing.T) {
	env := setupServiceTest(t)
	delivery := env.paidDelivery(t, nil, nil)

	for i := 0; i < 5; i++ {
		if _, _, err := env.deliveryService.ReleaseAsset(delivery.SecureToken, 0); err != nil {
			t.Fatalf("release %d failed: %v", i+1, err)
		}
	}

	var fresh models.Delivery
	if err := env.db.First(&fresh, delivery.ID).Error; err != nil {
		t.Fatalf("reload delivery failed: %v", err)
	}
	if fresh.DownloadCount != 5 {
		t.Fatalf("expected audit counter 5, got %d", fresh.DownloadCount)
	}
}

func TestReleaseAssetMissingStoragePath(t *testing.T) {
	env := setupServiceTest(t)
	delivery := env.paidDelivery(t, func(p *models.Product) {
		p.StoragePath = ""
	}, nil)

	if _, _, err := env.deliveryService.ReleaseAsset(delivery.SecureToken, 0); !errors.Is(err, ErrAssetUnavailable) {
		t.Fatalf("expected ErrAssetUnavailable, got %v", err)
	}
}

func TestRevokeIsTerminalAndIdempotentCheck(t *testing.T) {
	env := setupServiceTest(t)
	delivery := env.paidDelivery(t, nil, nil)

	if err := env.deliveryService.Revoke(delivery.ID); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if err := env.deliveryService.Revoke(delivery.ID); !errors.Is(err, ErrGrantAlreadyRevoked) {
		t.Fatalf("expected ErrGrantAlreadyRevoked, got %v", err)
	}
	if err := env.deliveryService.Revoke(9999); !errors.Is(err, ErrGrantNotFound) {
		t.Fatalf("expected ErrGrantNotFound, got %v", err)
	}

	if _, err := env.deliveryService.VerifyAccess(delivery.SecureToken, 0); !errors.Is(err, ErrGrantRevoked) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
}
