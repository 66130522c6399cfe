package service

import (
	"strings"

	"github.com/creative-products/internal/models"
	"github.com/creative-products/internal/repository"
)

// ProductService 商品服务
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// ListActive 获取在售商品列表
func (s *ProductService) ListActive(page, pageSize int, search string) ([]models.Product, int64, error) {
	return s.productRepo.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		Search:     strings.TrimSpace(search),
		OnlyActive: true,
	})
}

// GetActiveBySlug 获取在售商品详情
func (s *ProductService) GetActiveBySlug(slug string) (*models.Product, error) {
	product, err := s.productRepo.GetBySlug(strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.IsActive {
		return nil, ErrProductInactive
	}
	return product, nil
}

// GetPurchasable 获取可购买商品（下单前校验）
func (s *ProductService) GetPurchasable(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.IsActive {
		return nil, ErrProductInactive
	}
	return product, nil
}

// ListAdmin 管理端商品列表
func (s *ProductService) ListAdmin(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.productRepo.List(filter)
}

// Create 创建商品
func (s *ProductService) Create(product *models.Product) error {
	return s.productRepo.Create(product)
}

// Update 更新商品
func (s *ProductService) Update(product *models.Product) error {
	return s.productRepo.Update(product)
}

// Delete 删除商品
func (s *ProductService) Delete(id uint) error {
	return s.productRepo.Delete(id)
}

// GetByID 获取商品
func (s *ProductService) GetByID(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}
