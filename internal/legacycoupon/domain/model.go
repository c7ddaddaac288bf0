package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Coupon is a standalone promotional code that is not tied to a product.
type Coupon struct {
	ID    int64  `gorm:"primaryKey;autoIncrement:false"`
	Title string `gorm:"type:varchar(255);not null"`
	Code  string `gorm:"type:varchar(50);not null;uniqueIndex:ux_coupons_code"`
	// DiscountHundredths holds the percentage scaled by 100, so 12.50% is 1250.
	DiscountHundredths int64          `gorm:"column:discount_hundredths;not null"`
	ExpiryDate         datatypes.Date `gorm:"not null"`
	CreatedAt          time.Time      `gorm:"not null"`
	UpdatedAt          time.Time      `gorm:"not null"`
}

func (Coupon) TableName() string { return "coupons" }
