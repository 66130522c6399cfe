package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestToSubunits(t *testing.T) {
	cases := []struct {
		amount string
		want   int64
	}{
		{"199.99", 19999},
		{"1000", 100000},
		{"0.01", 1},
		{"10.005", 1001},
		{"10.004", 1000},
	}
	for _, tc := range cases {
		amount, err := decimal.NewFromString(tc.amount)
		if err != nil {
			t.Fatalf("parse amount %s failed: %v", tc.amount, err)
		}
		if got := ToSubunits(amount); got != tc.want {
			t.Fatalf("ToSubunits(%s) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}

func TestCreateOrder(t *testing.T) {
	var gotPath, gotAuthUser, gotAuthPass string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuthUser, gotAuthPass, _ = r.BasicAuth()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "order_Nxyz123",
			"amount":   19999,
			"currency": "INR",
			"receipt":  "ORD-20260115-A1B2C",
			"status":   "created",
		})
	}))
	defer server.Close()

	cfg := &Config{KeyID: "rzp_test_key", KeySecret: "secret", BaseURL: server.URL}
	order, err := CreateOrder(context.Background(), cfg, CreateInput{
		Amount:  decimal.RequireFromString("199.99"),
		Receipt: "ORD-20260115-A1B2C",
		Notes:   map[string]string{"order_no": "ORD-20260115-A1B2C"},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if gotPath != "/v1/orders" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAuthUser != "rzp_test_key" || gotAuthPass != "secret" {
		t.Fatalf("unexpected basic auth: %s / %s", gotAuthUser, gotAuthPass)
	}
	if amount, ok := gotBody["amount"].(float64); !ok || int64(amount) != 19999 {
		t.Fatalf("unexpected amount in request: %v", gotBody["amount"])
	}
	if gotBody["currency"] != "INR" {
		t.Fatalf("unexpected currency in request: %v", gotBody["currency"])
	}
	if order.ID != "order_Nxyz123" {
		t.Fatalf("unexpected gateway order id: %s", order.ID)
	}
	if order.Status != "created" {
		t.Fatalf("unexpected gateway order status: %s", order.Status)
	}
}

func TestCreateOrderRejectsGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	cfg := &Config{KeyID: "rzp_test_key", KeySecret: "bad", BaseURL: server.URL}
	_, err := CreateOrder(context.Background(), cfg, CreateInput{
		Amount:  decimal.NewFromInt(100),
		Receipt: "ORD-20260115-A1B2C",
	})
	if err == nil {
		t.Fatalf("expected error on http 401")
	}
}

func TestVerifySignature(t *testing.T) {
	cfg := &Config{KeyID: "rzp_test_key", KeySecret: "secret"}

	sig := Sign("order_Nxyz123", "pay_Nabc456", "secret")
	if err := VerifySignature(cfg, "order_Nxyz123", "pay_Nabc456", sig); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}

	if err := VerifySignature(cfg, "order_Nxyz123", "pay_Nabc456", "deadbeef"); err == nil {
		t.Fatalf("tampered signature accepted")
	}
	if err := VerifySignature(cfg, "order_other", "pay_Nabc456", sig); err == nil {
		t.Fatalf("signature over different order accepted")
	}
	if err := VerifySignature(cfg, "order_Nxyz123", "pay_Nabc456", ""); err == nil {
		t.Fatalf("empty signature accepted")
	}
}

func TestSignKnownVector(t *testing.T) {
	// HMAC-SHA256("order_id|payment_id", "secret") 的十六进制结果应当稳定
	got := Sign("order_id", "payment_id", "secret")
	if len(got) != 64 {
		t.Fatalf("signature should be 64 hex chars, got %d", len(got))
	}
	if got != Sign("order_id", "payment_id", "secret") {
		t.Fatalf("signature not deterministic")
	}
}
