package main

import (
	"time"

	"github.com/creative-products/internal/config"
	"github.com/creative-products/internal/constants"
	"github.com/creative-products/internal/logger"
	"github.com/creative-products/internal/models"

	"github.com/shopspring/decimal"
)

func intPtr(v int) *int { return &v }

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 示例商品
	products := []models.Product{
		{
			Title:        "Lightroom Preset Pack - Moody Portraits",
			Slug:         "lightroom-preset-moody-portraits",
			Description:  "25 hand-tuned Lightroom presets for moody portrait edits. Works with LR Classic and mobile.",
			Price:        models.NewMoneyFromDecimal(decimal.NewFromInt(499)),
			DeliveryType: constants.DeliveryTypeFile,
			StoragePath:  "presets/moody-portraits.zip",
			IsActive:     true,
			SortOrder:    30,
		},
		{
			Title:         "Icon Library - 1200 SVG Icons",
			Slug:          "icon-library-1200-svg",
			Description:   "Complete SVG icon library with source files. Five downloads per purchase.",
			Price:         models.NewMoneyFromDecimal(decimal.NewFromInt(899)),
			DeliveryType:  constants.DeliveryTypeFile,
			StoragePath:   "icons/icon-library-v3.zip",
			DownloadLimit: intPtr(5),
			IsActive:      true,
			SortOrder:     20,
		},
		{
			Title:             "Video Course - Figma for Developers",
			Slug:              "figma-for-developers-course",
			Description:       "6-hour video course, streaming access for 30 days.",
			Price:             models.NewMoneyFromDecimal(decimal.NewFromInt(1999)),
			DeliveryType:      constants.DeliveryTypeTimeLimited,
			StoragePath:       "courses/figma-for-developers/index.m3u8",
			AccessExpiryHours: intPtr(24 * 30),
			IsActive:          true,
			SortOrder:         10,
		},
		{
			Title:        "Notion Template - Freelance OS",
			Slug:         "notion-template-freelance-os",
			Description:  "All-in-one Notion workspace for freelancers. Delivered as a duplication link.",
			Price:        models.NewMoneyFromDecimal(decimal.NewFromInt(299)),
			DeliveryType: constants.DeliveryTypeExternalLink,
			StoragePath:  "https://notion.so/templates/freelance-os-duplicate",
			IsActive:     true,
			SortOrder:    5,
		},
	}

	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", product.Slug)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Slug)
		}
	}

	// 示例优惠券
	launchExpiry := time.Now().AddDate(0, 3, 0)
	coupons := []models.Coupon{
		{
			Code:           "SAVE20",
			Description:    "20% off any order",
			DiscountType:   constants.CouponTypePercentage,
			DiscountValue:  models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
			MinOrderAmount: models.NewMoneyFromDecimal(decimal.Zero),
			IsActive:       true,
			IsFeatured:     true,
			ExpiresAt:      &launchExpiry,
		},
		{
			Code:           "FLAT100",
			Description:    "₹100 off orders above ₹500",
			DiscountType:   constants.CouponTypeFixed,
			DiscountValue:  models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			MinOrderAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
			MaxUses:        intPtr(200),
			IsActive:       true,
			IsFeatured:     true,
		},
		{
			Code:           "WELCOME10",
			Description:    "10% off your first order, one use per account",
			DiscountType:   constants.CouponTypePercentage,
			DiscountValue:  models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			MinOrderAmount: models.NewMoneyFromDecimal(decimal.Zero),
			OneTimePerUser: true,
			IsActive:       true,
		},
	}

	for _, coupon := range coupons {
		var existing models.Coupon
		if err := models.DB.Where("code = ?", coupon.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&coupon).Error; err != nil {
				stdLog.Printf("Failed to create coupon %s: %v", coupon.Code, err)
			} else {
				stdLog.Printf("Created coupon: %s", coupon.Code)
			}
		} else {
			stdLog.Printf("Coupon already exists: %s", coupon.Code)
		}
	}

	stdLog.Println("Seed data loaded successfully!")
}
