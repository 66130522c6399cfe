package router

import (
	"fmt"
	"strings"

	"github.com/creative-products/internal/cache"
	"github.com/creative-products/internal/config"
	adminhandlers "github.com/creative-products/internal/http/handlers/admin"
	publichandlers "github.com/creative-products/internal/http/handlers/public"
	"github.com/creative-products/internal/logger"
	"github.com/creative-products/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 构建路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "cp"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}
	accessRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:access", redisPrefix),
		WindowSeconds: cfg.Security.AccessRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.AccessRateLimit.MaxAttempts,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		apiV1.GET("/products", publicHandler.GetProducts)
		apiV1.GET("/products/:slug", publicHandler.GetProductBySlug)
		apiV1.GET("/coupons/featured", publicHandler.GetFeaturedCoupons)
		apiV1.GET("/captcha", publicHandler.GetImageCaptcha)

		// 结算与支付（登录可选，游客可下单）
		optionalAuth := UserJWTOptionalMiddleware(cfg.UserJWT.SecretKey, c.UserRepo)
		apiV1.POST("/coupons/validate", optionalAuth, publicHandler.ValidateCoupon)
		apiV1.POST("/checkout", optionalAuth, publicHandler.Checkout)
		apiV1.POST("/payments/verify", publicHandler.VerifyPayment)

		// 交付访问（令牌即凭证，限流防枚举）
		accessLimit := RateLimitMiddleware(redisClient, accessRule, KeyByPathToken("token"))
		apiV1.GET("/access/:token", optionalAuth, accessLimit, publicHandler.GetAccess)
		apiV1.POST("/access/:token/download", optionalAuth, accessLimit, publicHandler.DownloadAccess)

		// 签名文件下发
		apiV1.GET("/files/*path", publicHandler.ServeFile)

		// 用户认证
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login",
				RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")),
				publicHandler.Login,
			)
		}

		// 用户中心
		me := apiV1.Group("/me")
		me.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			me.GET("", publicHandler.Me)
			me.GET("/orders", publicHandler.MyOrders)
			me.GET("/orders/:id", publicHandler.MyOrder)
		}

		// 管理端
		admin := apiV1.Group("/admin")
		{
			admin.POST("/login",
				RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP),
				adminHandler.Login,
			)

			authorized := admin.Group("")
			authorized.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			authorized.Use(AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/me", adminHandler.Me)

				authorized.GET("/products", adminHandler.ListProducts)
				authorized.GET("/products/:id", adminHandler.GetProduct)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)

				authorized.GET("/coupons", adminHandler.ListCoupons)
				authorized.GET("/coupons/:id", adminHandler.GetCoupon)
				authorized.POST("/coupons", adminHandler.CreateCoupon)
				authorized.PUT("/coupons/:id", adminHandler.UpdateCoupon)
				authorized.DELETE("/coupons/:id", adminHandler.DeleteCoupon)

				authorized.GET("/orders", adminHandler.ListOrders)
				authorized.GET("/orders/:id", adminHandler.GetOrder)
				authorized.POST("/orders/:id/approve", adminHandler.ApproveOrder)

				authorized.GET("/deliveries", adminHandler.ListDeliveries)
				authorized.POST("/deliveries/:id/revoke", adminHandler.RevokeDelivery)

				authorized.GET("/users", adminHandler.ListUsers)
				authorized.GET("/users/:id", adminHandler.GetUser)
				authorized.PUT("/users/:id/status", adminHandler.UpdateUserStatus)

				authorized.GET("/authz/roles", adminHandler.ListRoles)
				authorized.POST("/authz/roles", adminHandler.CreateRole)
				authorized.GET("/authz/admins", adminHandler.ListAdmins)
				authorized.POST("/authz/admins", adminHandler.CreateAdmin)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAdminRoles)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
