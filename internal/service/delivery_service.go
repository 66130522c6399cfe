package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/creative-products/internal/config"
	"github.com/creative-products/internal/constants"
	"github.com/creative-products/internal/logger"
	"github.com/creative-products/internal/models"
	"github.com/creative-products/internal/repository"
	"github.com/creative-products/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessInfo 访问校验结果
type AccessInfo struct {
	Delivery           *models.Delivery `json:"delivery"`
	Order              *models.Order    `json:"order"`
	Product            *models.Product  `json:"product"`
	RemainingDownloads *int             `json:"remaining_downloads,omitempty"` // 空为不限次数
}

// DeliveryService 交付授权服务
// 负责授权签发、访问校验与资源释放，是数字商品交付的唯一入口
type DeliveryService struct {
	cfg          *config.Config
	deliveryRepo repository.DeliveryRepository
	store        *storage.Store
}

// NewDeliveryService 创建交付授权服务
func NewDeliveryService(cfg *config.Config, deliveryRepo repository.DeliveryRepository, store *storage.Store) *DeliveryService {
	return &DeliveryService{
		cfg:          cfg,
		deliveryRepo: deliveryRepo,
		store:        store,
	}
}

// IssueGrantTx 在订单事务内签发交付授权
// 过期时间与下载上限取自订单上的商品条款快照，支付后修改商品不影响已签发的授权
func (s *DeliveryService) IssueGrantTx(tx *gorm.DB, order *models.Order, now time.Time) (*models.Delivery, error) {
	token := uuid.NewString()

	var expiresAt *time.Time
	if order.AccessExpiryHours != nil && *order.AccessExpiryHours > 0 {
		t := now.Add(time.Duration(*order.AccessExpiryHours) * time.Hour)
		expiresAt = &t
	}

	delivery := &models.Delivery{
		OrderID:       order.ID,
		SecureToken:   token,
		AccessURL:     s.buildAccessURL(token),
		ExpiresAt:     expiresAt,
		DownloadLimit: order.DownloadLimit,
		DownloadCount: 0,
		Revoked:       false,
	}
	if err := s.deliveryRepo.WithTx(tx).Create(delivery); err != nil {
		return nil, err
	}
	return delivery, nil
}

func (s *DeliveryService) buildAccessURL(token string) string {
	base := strings.TrimRight(strings.TrimSpace(s.cfg.App.BaseURL), "/")
	return fmt.Sprintf("%s/access/%s", base, token)
}

// VerifyAccess 校验访问令牌
// 判定顺序固定：令牌存在 → 未撤销 → 未过期 → 归属匹配 → 下载额度未耗尽
// 游客订单不做归属校验，未登录访问用户订单同样放行（令牌即凭证）
func (s *DeliveryService) VerifyAccess(token string, userID uint) (*AccessInfo, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, ErrGrantNotFound
	}

	delivery, err := s.deliveryRepo.GetBySecureToken(trimmed)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		return nil, ErrGrantNotFound
	}
	if delivery.Revoked {
		return nil, ErrGrantRevoked
	}
	if delivery.ExpiresAt != nil && time.Now().After(*delivery.ExpiresAt) {
		return nil, ErrGrantExpired
	}
	if userID != 0 && delivery.Order != nil && delivery.Order.UserID != 0 && delivery.Order.UserID != userID {
		return nil, ErrGrantOwnerMismatch
	}
	if delivery.DownloadLimit != nil && delivery.DownloadCount >= *delivery.DownloadLimit {
		return nil, ErrGrantDownloadLimit
	}

	info := &AccessInfo{Delivery: delivery}
	if delivery.Order != nil {
		info.Order = delivery.Order
		info.Product = &delivery.Order.Product
	}
	if delivery.DownloadLimit != nil {
		remaining := *delivery.DownloadLimit - delivery.DownloadCount
		info.RemainingDownloads = &remaining
	}
	return info, nil
}

// ReleaseAsset 消耗一次下载并返回资源地址
// 文件类商品返回限时签名下载链接，外链类商品直接返回存储的外部地址。
// 额度扣减是条件更新，并发释放不会超出下载上限
func (s *DeliveryService) ReleaseAsset(token string, userID uint) (string, *AccessInfo, error) {
	info, err := s.VerifyAccess(token, userID)
	if err != nil {
		return "", nil, err
	}
	if info.Product == nil {
		return "", nil, ErrAssetUnavailable
	}
	assetPath := strings.TrimSpace(info.Product.StoragePath)
	if assetPath == "" {
		return "", nil, ErrAssetUnavailable
	}

	now := time.Now()
	ok, err := s.deliveryRepo.ConsumeDownload(info.Delivery.ID, now)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, ErrGrantDownloadLimit
	}
	info.Delivery.DownloadCount++
	if info.RemainingDownloads != nil {
		remaining := *info.Delivery.DownloadLimit - info.Delivery.DownloadCount
		info.RemainingDownloads = &remaining
	}

	assetURL := assetPath
	if info.Product.DeliveryType != constants.DeliveryTypeExternalLink {
		assetURL, err = s.store.SignedURL(assetPath, now)
		if err != nil {
			logger.Errorw("delivery_sign_url_failed", "delivery_id", info.Delivery.ID, "error", err)
			return "", nil, ErrAssetUnavailable
		}
	}

	logger.Infow("delivery_asset_released",
		"delivery_id", info.Delivery.ID,
		"order_id", info.Delivery.OrderID,
		"delivery_type", info.Product.DeliveryType,
		"download_count", info.Delivery.DownloadCount,
	)
	return assetURL, info, nil
}

// Revoke 撤销交付授权
func (s *DeliveryService) Revoke(deliveryID uint) error {
	delivery, err := s.deliveryRepo.GetByID(deliveryID)
	if err != nil {
		return err
	}
	if delivery == nil {
		return ErrGrantNotFound
	}
	ok, err := s.deliveryRepo.Revoke(deliveryID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrGrantAlreadyRevoked
	}
	logger.Infow("delivery_revoked", "delivery_id", deliveryID, "order_id", delivery.OrderID)
	return nil
}

// GetByOrderID 获取订单的交付授权
func (s *DeliveryService) GetByOrderID(orderID uint) (*models.Delivery, error) {
	return s.deliveryRepo.GetByOrderID(orderID)
}

// ListAdmin 管理端交付授权列表
func (s *DeliveryService) ListAdmin(filter repository.DeliveryListFilter) ([]models.Delivery, int64, error) {
	return s.deliveryRepo.List(filter)
}
