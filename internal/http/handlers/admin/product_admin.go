package admin

import (
	"errors"
	"strings"

	"github.com/creative-products/internal/http/response"
	"github.com/creative-products/internal/logger"
	"github.com/creative-products/internal/models"
	"github.com/creative-products/internal/repository"
	"github.com/creative-products/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductRequest 商品创建/更新请求
type ProductRequest struct {
	Title             string       `json:"title" binding:"required"`
	Slug              string       `json:"slug" binding:"required"`
	Description       string       `json:"description"`
	Price             models.Money `json:"price"`
	DeliveryType      string       `json:"delivery_type" binding:"required"`
	StoragePath       string       `json:"storage_path"`
	AccessExpiryHours *int         `json:"access_expiry_hours"`
	DownloadLimit     *int         `json:"download_limit"`
	IsActive          *bool        `json:"is_active"`
	SortOrder         int          `json:"sort_order"`
}

func (r *ProductRequest) apply(product *models.Product) {
	product.Title = strings.TrimSpace(r.Title)
	product.Slug = strings.ToLower(strings.TrimSpace(r.Slug))
	product.Description = r.Description
	product.Price = r.Price
	product.DeliveryType = r.DeliveryType
	product.StoragePath = strings.TrimSpace(r.StoragePath)
	product.AccessExpiryHours = r.AccessExpiryHours
	product.DownloadLimit = r.DownloadLimit
	product.SortOrder = r.SortOrder
	if r.IsActive != nil {
		product.IsActive = *r.IsActive
	}
}

// ListProducts 商品列表 (Admin)
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := pageParams(c)
	products, total, err := h.ProductService.ListAdmin(repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		response.Error(c, response.CodeInternal, "failed to load products")
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetProduct 商品详情 (Admin)
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	product, err := h.ProductService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.NotFound(c, service.ErrProductNotFound.Error())
			return
		}
		response.Error(c, response.CodeInternal, "failed to load product")
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	product := &models.Product{IsActive: true}
	req.apply(product)
	if err := h.ProductService.Create(product); err != nil {
		logger.Errorw("admin_product_create_failed", "slug", product.Slug, "error", err)
		response.Error(c, response.CodeInternal, "failed to create product")
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品
// 已售订单携带价格与交付条款快照，编辑商品不影响既有订单与授权
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.CodeBadRequest, "invalid request parameters")
		return
	}

	product, err := h.ProductService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.NotFound(c, service.ErrProductNotFound.Error())
			return
		}
		response.Error(c, response.CodeInternal, "failed to load product")
		return
	}

	req.apply(product)
	if err := h.ProductService.Update(product); err != nil {
		logger.Errorw("admin_product_update_failed", "product_id", id, "error", err)
		response.Error(c, response.CodeInternal, "failed to update product")
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品（软删除）
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.ProductService.Delete(id); err != nil {
		logger.Errorw("admin_product_delete_failed", "product_id", id, "error", err)
		response.Error(c, response.CodeInternal, "failed to delete product")
		return
	}
	response.Success(c, nil)
}
