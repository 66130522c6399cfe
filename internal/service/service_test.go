package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/creative-products/internal/config"
	"github.com/creative-products/internal/models"
	"github.com/creative-products/internal/repository"
	"github.com/creative-products/internal/storage"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func mustMoney(t *testing.T, value string) models.Money {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse money %q failed: %v", value, err)
	}
	return models.NewMoneyFromDecimal(d)
}

func intRef(v int) *int { return &v }

type serviceTestEnv struct {
	db              *gorm.DB
	cfg             *config.Config
	store           *storage.Store
	productRepo     *repository.GormProductRepository
	orderRepo       *repository.GormOrderRepository
	couponRepo      *repository.GormCouponRepository
	couponUsageRepo *repository.GormCouponUsageRepository
	deliveryRepo    *repository.GormDeliveryRepository
	couponService   *CouponService
	deliveryService *DeliveryService
	orderService    *OrderService
}

func setupServiceTest(t *testing.T) *serviceTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	// 共享内存库不支持多写连接，单连接下写入串行但读-改竞态仍然存在
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.Coupon{},
		&models.CouponUsage{},
		&models.Delivery{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.App.BaseURL = "http://localhost:8080"
	cfg.Order.PaymentExpireMinutes = 15

	store, err := storage.NewStore(storage.Options{
		Dir:              t.TempDir(),
		SignSecret:       "service-test-sign-secret",
		SignedTTLSeconds: 300,
		BaseURL:          cfg.App.BaseURL,
	})
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}

	env := &serviceTestEnv{
		db:              db,
		cfg:             cfg,
		store:           store,
		productRepo:     repository.NewProductRepository(db),
		orderRepo:       repository.NewOrderRepository(db),
		couponRepo:      repository.NewCouponRepository(db),
		couponUsageRepo: repository.NewCouponUsageRepository(db),
		deliveryRepo:    repository.NewDeliveryRepository(db),
	}
	env.couponService = NewCouponService(env.couponRepo, env.couponUsageRepo)
	env.deliveryService = NewDeliveryService(cfg, env.deliveryRepo, store)
	env.orderService = NewOrderService(cfg, db, env.orderRepo, env.deliveryService)
	return env
}

func (env *serviceTestEnv) createProduct(t *testing.T, mutate func(*models.Product)) *models.Product {
	t.Helper()
	product := &models.Product{
		Title:        "Test Asset",
		Slug:         fmt.Sprintf("test-asset-%d", time.Now().UnixNano()),
		Price:        mustMoney(t, "500"),
		DeliveryType: "file",
		StoragePath:  "assets/test-asset.zip",
		IsActive:     true,
	}
	if mutate != nil {
		mutate(product)
	}
	if err := env.productRepo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func (env *serviceTestEnv) createPendingOrder(t *testing.T, product *models.Product, mutate func(*models.Order)) *models.Order {
	t.Helper()
	order := &models.Order{
		ProductID:         product.ID,
		GuestName:         "Asha Rao",
		GuestEmail:        "asha@example.com",
		Amount:            product.Price,
		Currency:          "INR",
		PaymentMode:       "online",
		PaymentStatus:     "pending",
		AccessExpiryHours: product.AccessExpiryHours,
		DownloadLimit:     product.DownloadLimit,
	}
	if mutate != nil {
		mutate(order)
	}
	err := env.db.Transaction(func(tx *gorm.DB) error {
		return env.orderService.CreateTx(tx, order)
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}
