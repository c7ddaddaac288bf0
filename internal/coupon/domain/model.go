package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Coupon struct {
	ID         int64   `gorm:"primaryKey;autoIncrement:false"`
	ProductID  int64   `gorm:"not null;index:ix_product_coupons_product;uniqueIndex:ux_product_coupons_product_code,priority:1"`
	Title      string  `gorm:"type:varchar(255);not null"`
	Code       *string `gorm:"type:varchar(50);uniqueIndex:ux_product_coupons_product_code,priority:2"`
	Discount   string  `gorm:"type:varchar(50);not null"`
	ShopNowURL *string `gorm:"column:shop_now_url;type:text"`
	Likes      int64   `gorm:"not null;default:0"`
	Dislikes   int64   `gorm:"not null;default:0"`
	UsedCount  int64   `gorm:"not null;default:0"`
	UsedToday  int64   `gorm:"not null;default:0;check:chk_product_coupons_used_today,used_today <= used_count"`
	// LastResetDate is the reference-timezone date of the last counter mutation.
	LastResetDate datatypes.Date `gorm:"not null"`
	CreatedAt     time.Time      `gorm:"not null"`
	UpdatedAt     time.Time      `gorm:"not null"`
}

func (Coupon) TableName() string { return "product_coupons" }
