package service

import (
	"context"
	"strings"

	"github.com/creative-products/internal/config"
	"github.com/creative-products/internal/constants"
	"github.com/creative-products/internal/logger"
	"github.com/creative-products/internal/models"
	"github.com/creative-products/internal/payment/razorpay"
	"github.com/creative-products/internal/queue"
	"github.com/creative-products/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckoutInput 结算输入
type CheckoutInput struct {
	ProductIDs  []uint
	UserID      uint
	GuestName   string
	GuestEmail  string
	CouponCode  string
	PaymentMode string // online / offline
}

// CheckoutResult 结算结果
type CheckoutResult struct {
	Orders         []models.Order `json:"orders"`
	Subtotal       models.Money   `json:"subtotal"`
	Discount       models.Money   `json:"discount"`
	Total          models.Money   `json:"total"`
	CouponMessage  string         `json:"coupon_message,omitempty"`
	GatewayKeyID   string         `json:"gateway_key_id,omitempty"`
	GatewayOrderID string         `json:"gateway_order_id,omitempty"`
	GatewayAmount  int64          `json:"gateway_amount,omitempty"` // 最小币单位
	Currency       string         `json:"currency"`
}

// PaymentConfirmation 支付确认结果
type PaymentConfirmation struct {
	Orders     []models.Order    `json:"orders"`
	Deliveries []models.Delivery `json:"deliveries"`
}

// PaymentService 支付服务
// 负责结算编排：商品校验、优惠核销、订单落库、网关下单与支付回传确认
type PaymentService struct {
	cfg            *config.Config
	db             *gorm.DB
	orderRepo      repository.OrderRepository
	productService *ProductService
	couponService  *CouponService
	orderService   *OrderService
	queueClient    *queue.Client
}

// NewPaymentService 创建支付服务
func NewPaymentService(
	cfg *config.Config,
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	productService *ProductService,
	couponService *CouponService,
	orderService *OrderService,
	queueClient *queue.Client,
) *PaymentService {
	return &PaymentService{
		cfg:            cfg,
		db:             db,
		orderRepo:      orderRepo,
		productService: productService,
		couponService:  couponService,
		orderService:   orderService,
		queueClient:    queueClient,
	}
}

func (s *PaymentService) gatewayConfig() *razorpay.Config {
	return &razorpay.Config{
		KeyID:     s.cfg.Razorpay.KeyID,
		KeySecret: s.cfg.Razorpay.KeySecret,
		BaseURL:   s.cfg.Razorpay.BaseURL,
		Currency:  s.cfg.Razorpay.Currency,
	}
}

// Checkout 结算下单
// 一次结算可包含多个商品，每个商品生成一个订单；在线支付时所有订单共享同一网关订单号。
// 优惠券核销与订单创建在同一事务内完成
func (s *PaymentService) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if err := ValidatePayer(input.UserID, input.GuestName, input.GuestEmail); err != nil {
		return nil, err
	}
	if len(input.ProductIDs) == 0 {
		return nil, ErrProductNotFound
	}

	mode := strings.TrimSpace(input.PaymentMode)
	if mode == "" {
		mode = constants.PaymentModeOnline
	}

	// 付款人二选一：登录下单不落游客字段
	guestName := ""
	guestEmail := ""
	if input.UserID == 0 {
		guestName = strings.TrimSpace(input.GuestName)
		guestEmail = strings.TrimSpace(input.GuestEmail)
	}

	products := make([]*models.Product, 0, len(input.ProductIDs))
	subtotal := decimal.Zero
	for _, id := range input.ProductIDs {
		product, err := s.productService.GetPurchasable(id)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
		subtotal = subtotal.Add(product.Price.Decimal)
	}
	subtotalMoney := models.NewMoneyFromDecimal(subtotal)

	var quote *CouponQuote
	if strings.TrimSpace(input.CouponCode) != "" {
		var err error
		quote, err = s.couponService.Validate(input.CouponCode, subtotalMoney, input.UserID)
		if err != nil {
			return nil, err
		}
	}

	discount := decimal.Zero
	if quote != nil {
		discount = quote.Discount.Decimal
	}
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	shares := allocateDiscount(products, discount)

	orders := make([]models.Order, 0, len(products))
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i, product := range products {
			amount := product.Price.Decimal.Sub(shares[i])
			order := models.Order{
				ProductID:      product.ID,
				UserID:         input.UserID,
				GuestName:      guestName,
				GuestEmail:     guestEmail,
				Amount:         models.NewMoneyFromDecimal(amount),
				Currency:       constants.DefaultCurrency,
				PaymentMode:    mode,
				PaymentStatus:  constants.PaymentStatusPending,
				CouponDiscount: models.NewMoneyFromDecimal(shares[i]),
				// 商品交付条款快照，支付后修改商品不影响已成交订单
				AccessExpiryHours: product.AccessExpiryHours,
				DownloadLimit:     product.DownloadLimit,
			}
			if quote != nil {
				order.CouponID = &quote.Coupon.ID
			}
			if err := s.orderService.CreateTx(tx, &order); err != nil {
				return err
			}
			orders = append(orders, order)
		}

		if quote != nil {
			if err := s.couponService.RedeemInTx(tx, quote.Coupon, input.UserID, orders[0].ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{
		Orders:   orders,
		Subtotal: subtotalMoney,
		Discount: models.NewMoneyFromDecimal(discount),
		Total:    models.NewMoneyFromDecimal(total),
		Currency: constants.DefaultCurrency,
	}
	if quote != nil {
		result.CouponMessage = quote.Message
	}

	if mode == constants.PaymentModeOnline {
		gatewayOrder, err := razorpay.CreateOrder(ctx, s.gatewayConfig(), razorpay.CreateInput{
			Amount:  total,
			Receipt: orders[0].OrderNo,
			Notes:   map[string]string{"order_no": orders[0].OrderNo},
		})
		if err != nil {
			s.failOrders(orders)
			return nil, err
		}

		ids := make([]uint, 0, len(orders))
		for i := range orders {
			orders[i].GatewayOrderID = gatewayOrder.ID
			ids = append(ids, orders[i].ID)
		}
		if err := s.orderRepo.SetGatewayOrderID(ids, gatewayOrder.ID); err != nil {
			return nil, err
		}
		result.GatewayKeyID = s.cfg.Razorpay.KeyID
		result.GatewayOrderID = gatewayOrder.ID
		result.GatewayAmount = gatewayOrder.Amount
	}

	expire := s.orderService.PaymentExpireDuration()
	for _, order := range orders {
		if err := s.queueClient.EnqueueOrderPaymentTimeout(queue.OrderPaymentTimeoutPayload{OrderID: order.ID}, expire); err != nil {
			logger.Warnw("checkout_enqueue_timeout_failed", "order_id", order.ID, "error", err)
		}
	}

	logger.Infow("checkout_created",
		"order_count", len(orders),
		"subtotal", subtotalMoney.String(),
		"total", result.Total.String(),
		"mode", mode,
	)
	return result, nil
}

// VerifyPayment 校验支付回传并确认订单
// 签名不合法时直接拒绝，不触达任何订单状态
func (s *PaymentService) VerifyPayment(gatewayOrderID, gatewayPaymentID, signature string) (*PaymentConfirmation, error) {
	if err := razorpay.VerifySignature(s.gatewayConfig(), gatewayOrderID, gatewayPaymentID, signature); err != nil {
		logger.Warnw("payment_signature_rejected", "gateway_order_id", gatewayOrderID)
		return nil, ErrPaymentSignature
	}

	orders, err := s.orderRepo.ListByGatewayOrderID(gatewayOrderID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrPaymentMismatched
	}

	confirmation := &PaymentConfirmation{}
	for _, order := range orders {
		delivery, _, err := s.orderService.MarkPaid(order.ID, gatewayPaymentID)
		if err != nil {
			return nil, err
		}
		refreshed, err := s.orderRepo.GetByID(order.ID)
		if err != nil {
			return nil, err
		}
		if refreshed != nil {
			confirmation.Orders = append(confirmation.Orders, *refreshed)
		}
		if delivery != nil {
			confirmation.Deliveries = append(confirmation.Deliveries, *delivery)
		}
	}
	return confirmation, nil
}

func (s *PaymentService) failOrders(orders []models.Order) {
	for _, order := range orders {
		if _, err := s.orderRepo.MarkFailed(order.ID); err != nil {
			logger.Warnw("checkout_mark_failed_error", "order_id", order.ID, "error", err)
		}
	}
}

// allocateDiscount 将折扣按商品价格比例分摊，余数归入最后一项
func allocateDiscount(products []*models.Product, discount decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(products))
	if discount.LessThanOrEqual(decimal.Zero) || len(products) == 0 {
		return shares
	}

	subtotal := decimal.Zero
	for _, p := range products {
		subtotal = subtotal.Add(p.Price.Decimal)
	}
	if subtotal.LessThanOrEqual(decimal.Zero) {
		return shares
	}

	allocated := decimal.Zero
	for i, p := range products {
		if i == len(products)-1 {
			shares[i] = discount.Sub(allocated)
			break
		}
		share := discount.Mul(p.Price.Decimal).Div(subtotal).Round(2)
		shares[i] = share
		allocated = allocated.Add(share)
	}
	return shares
}
