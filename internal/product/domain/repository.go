package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, id int64) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Product, error)
	FindIDBySlug(ctx context.Context, db *gorm.DB, slug string) (int64, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]Product, error)
	NameTaken(ctx context.Context, db *gorm.DB, name string, exceptID int64) (bool, error)
	SlugTaken(ctx context.Context, db *gorm.DB, slug string, exceptID int64) (bool, error)

	// FirstCouponShopNowURLs returns, per product, the shop-now url of its lowest-id coupon that has one.
	FirstCouponShopNowURLs(ctx context.Context, db *gorm.DB, productIDs []int64) (map[int64]string, error)
	CouponIDs(ctx context.Context, db *gorm.DB, productID int64) ([]int64, error)
	DeleteCoupons(ctx context.Context, db *gorm.DB, productID int64) error
}
