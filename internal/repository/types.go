package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page       int
	PageSize   int
	Search     string
	OnlyActive bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	PaymentStatus string
	OrderNo       string
	GuestEmail    string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// CouponListFilter 查询优惠券列表的过滤条件
type CouponListFilter struct {
	Page     int
	PageSize int
	Code     string
	IsActive *bool
}

// DeliveryListFilter 查询交付授权列表的过滤条件
type DeliveryListFilter struct {
	Page     int
	PageSize int
	OrderID  uint
	Revoked  *bool
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Status   string
}
