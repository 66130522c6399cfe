package storage

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(Options{
		Dir:              t.TempDir(),
		SignSecret:       "test-sign-secret",
		SignedTTLSeconds: 300,
		BaseURL:          "https://shop.example.com",
	})
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}
	return store
}

func TestSignedURLRoundTrip(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	signed, err := store.SignedURL("products/guide.pdf", now)
	if err != nil {
		t.Fatalf("sign url failed: %v", err)
	}
	if !strings.HasPrefix(signed, "https://shop.example.com/files/products/guide.pdf?") {
		t.Fatalf("unexpected signed url: %s", signed)
	}

	parsed, err := url.Parse(signed)
	if err != nil {
		t.Fatalf("parse signed url failed: %v", err)
	}
	expires := parsed.Query().Get("expires")
	signature := parsed.Query().Get("signature")

	if err := store.VerifySignedRequest("products/guide.pdf", expires, signature, now); err != nil {
		t.Fatalf("fresh signed url rejected: %v", err)
	}
}

func TestSignedURLExpiry(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	signed, _ := store.SignedURL("products/guide.pdf", now)
	parsed, _ := url.Parse(signed)
	expires := parsed.Query().Get("expires")
	signature := parsed.Query().Get("signature")

	expiresAt, _ := strconv.ParseInt(expires, 10, 64)
	late := time.Unix(expiresAt+1, 0)
	if err := store.VerifySignedRequest("products/guide.pdf", expires, signature, late); !errors.Is(err, ErrURLExpired) {
		t.Fatalf("expected ErrURLExpired after ttl, got %v", err)
	}

	// 恰好在过期时刻仍然有效
	boundary := time.Unix(expiresAt, 0)
	if err := store.VerifySignedRequest("products/guide.pdf", expires, signature, boundary); err != nil {
		t.Fatalf("url at expiry boundary rejected: %v", err)
	}
}

func TestSignedURLTampering(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	signed, _ := store.SignedURL("products/guide.pdf", now)
	parsed, _ := url.Parse(signed)
	expires := parsed.Query().Get("expires")
	signature := parsed.Query().Get("signature")

	if err := store.VerifySignedRequest("products/other.pdf", expires, signature, now); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("signature for different path accepted: %v", err)
	}

	farFuture := strconv.FormatInt(now.Add(24*time.Hour).Unix(), 10)
	if err := store.VerifySignedRequest("products/guide.pdf", farFuture, signature, now); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("signature with extended expiry accepted: %v", err)
	}
}

func TestResolvePathRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	bad := []string{"", "..", "../secret", "products/../../etc/passwd"}
	for _, p := range bad {
		if _, err := store.ResolvePath(p); !errors.Is(err, ErrPathInvalid) {
			t.Fatalf("path %q should be rejected, got %v", p, err)
		}
	}

	if _, err := store.ResolvePath("products/guide.pdf"); err != nil {
		t.Fatalf("valid path rejected: %v", err)
	}
}
