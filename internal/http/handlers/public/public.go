package public

import (
	"strconv"
	"strings"
	"time"

	"github.com/creative-products/internal/cache"
	"github.com/creative-products/internal/http/response"
	"github.com/creative-products/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	publicProductsCacheKey = "public:products"
	publicProductsCacheTTL = 30 * time.Second
)

// PublicProductView 公共商品响应结构（不暴露存储路径）
type PublicProductView struct {
	ID                uint         `json:"id"`
	Title             string       `json:"title"`
	Slug              string       `json:"slug"`
	Description       string       `json:"description"`
	Price             models.Money `json:"price"`
	DeliveryType      string       `json:"delivery_type"`
	AccessExpiryHours *int         `json:"access_expiry_hours,omitempty"`
	DownloadLimit     *int         `json:"download_limit,omitempty"`
}

func toPublicProductView(p models.Product) PublicProductView {
	return PublicProductView{
		ID:                p.ID,
		Title:             p.Title,
		Slug:              p.Slug,
		Description:       p.Description,
		Price:             p.Price,
		DeliveryType:      p.DeliveryType,
		AccessExpiryHours: p.AccessExpiryHours,
		DownloadLimit:     p.DownloadLimit,
	}
}

// GetProducts 获取在售商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	search := strings.TrimSpace(c.Query("search"))

	type cachedPage struct {
		Views []PublicProductView `json:"views"`
		Total int64               `json:"total"`
	}
	cacheKey := ""
	if search == "" {
		cacheKey = publicProductsCacheKey + ":" + strconv.Itoa(page) + ":" + strconv.Itoa(pageSize)
		var cached cachedPage
		if hit, err := cache.GetJSON(c.Request.Context(), cacheKey, &cached); err == nil && hit {
			response.SuccessWithPage(c, cached.Views, response.NewPagination(page, pageSize, cached.Total))
			return
		}
	}

	products, total, err := h.ProductService.ListActive(page, pageSize, search)
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to load products")
		return
	}

	views := make([]PublicProductView, 0, len(products))
	for _, p := range products {
		views = append(views, toPublicProductView(p))
	}

	if cacheKey != "" {
		_ = cache.SetJSON(c.Request.Context(), cacheKey, cachedPage{Views: views, Total: total}, publicProductsCacheTTL)
	}
	response.SuccessWithPage(c, views, response.NewPagination(page, pageSize, total))
}

// GetProductBySlug 获取在售商品详情
func (h *Handler) GetProductBySlug(c *gin.Context) {
	product, err := h.ProductService.GetActiveBySlug(c.Param("slug"))
	if err != nil {
		respondWithMappedError(c, err, productErrorRules)
		return
	}
	response.Success(c, toPublicProductView(*product))
}

// GetFeaturedCoupons 获取推荐展示的优惠券
func (h *Handler) GetFeaturedCoupons(c *gin.Context) {
	coupons, err := h.CouponService.ListFeatured(10)
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to load coupons")
		return
	}
	views := make([]gin.H, 0, len(coupons))
	for _, coupon := range coupons {
		views = append(views, gin.H{
			"code":             coupon.Code,
			"description":      coupon.Description,
			"discount_type":    coupon.DiscountType,
			"discount_value":   coupon.DiscountValue,
			"min_order_amount": coupon.MinOrderAmount,
			"expires_at":       coupon.ExpiresAt,
		})
	}
	response.Success(c, views)
}

// GetImageCaptcha 获取管理端登录图片验证码
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	if !h.CaptchaService.Enabled() {
		response.Success(c, gin.H{"enabled": false})
		return
	}
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to generate captcha")
		return
	}
	response.Success(c, gin.H{
		"enabled":      true,
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}
