package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid    = errors.New("razorpay config invalid")
	ErrRequestFailed    = errors.New("razorpay request failed")
	ErrResponseInvalid  = errors.New("razorpay response invalid")
	ErrSignatureInvalid = errors.New("razorpay signature invalid")
)

const defaultBaseURL = "https://api.razorpay.com"

// Config Razorpay 配置
type Config struct {
	KeyID     string `json:"key_id"`     // API Key ID
	KeySecret string `json:"key_secret"` // API Key Secret
	BaseURL   string `json:"base_url"`   // 网关地址，默认官方地址
	Currency  string `json:"currency"`   // 币种，默认 INR
}

// CreateInput 创建网关订单输入
type CreateInput struct {
	Amount   decimal.Decimal // 主币单位金额（卢比）
	Currency string
	Receipt  string
	Notes    map[string]string
}

// GatewayOrder 网关订单
type GatewayOrder struct {
	ID       string                 // 网关订单 ID（order_xxx）
	Amount   int64                  // 最小币单位金额（派萨）
	Currency string
	Receipt  string
	Status   string
	Raw      map[string]interface{} // 原始响应
}

// ValidateConfig 校验配置
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.KeyID) == "" {
		return fmt.Errorf("%w: key_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.KeySecret) == "" {
		return fmt.Errorf("%w: key_secret is required", ErrConfigInvalid)
	}
	return nil
}

func (c *Config) baseURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	return base
}

func (c *Config) currency() string {
	cur := strings.ToUpper(strings.TrimSpace(c.Currency))
	if cur == "" {
		cur = "INR"
	}
	return cur
}

// ToSubunits 将主币金额转换为最小币单位（四舍五入）
// 例如 199.99 卢比 -> 19999 派萨
func ToSubunits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// CreateOrder 在网关创建支付订单
func CreateOrder(ctx context.Context, cfg *Config, input CreateInput) (*GatewayOrder, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if input.Receipt == "" || input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: receipt and positive amount required", ErrConfigInvalid)
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = cfg.currency()
	}

	params := map[string]interface{}{
		"amount":   ToSubunits(input.Amount),
		"currency": currency,
		"receipt":  input.Receipt,
	}
	if len(input.Notes) > 0 {
		params["notes"] = input.Notes
	}

	endpoint := cfg.baseURL() + "/v1/orders"
	respBytes, err := postJSON(ctx, cfg, endpoint, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	var resp struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Receipt  string `json:"receipt"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: missing order id", ErrResponseInvalid)
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(respBytes, &raw)

	return &GatewayOrder{
		ID:       resp.ID,
		Amount:   resp.Amount,
		Currency: resp.Currency,
		Receipt:  resp.Receipt,
		Status:   resp.Status,
		Raw:      raw,
	}, nil
}

// Sign 计算支付回传签名
// 摘要对象为 "<order_id>|<payment_id>"，HMAC-SHA256 后小写十六进制编码
func Sign(orderID, paymentID, keySecret string) string {
	mac := hmac.New(sha256.New, []byte(keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature 验证支付回传签名（恒定时间比较）
func VerifySignature(cfg *Config, orderID, paymentID, signature string) error {
	if cfg == nil || strings.TrimSpace(cfg.KeySecret) == "" {
		return ErrConfigInvalid
	}
	if orderID == "" || paymentID == "" || signature == "" {
		return ErrSignatureInvalid
	}
	expected := Sign(orderID, paymentID, cfg.KeySecret)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature)))) {
		return ErrSignatureInvalid
	}
	return nil
}

func postJSON(ctx context.Context, cfg *Config, endpoint string, params map[string]interface{}) ([]byte, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(cfg.KeyID, cfg.KeySecret)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
