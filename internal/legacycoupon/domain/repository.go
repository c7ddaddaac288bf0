package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, coupon *Coupon) error
	Update(ctx context.Context, db *gorm.DB, coupon *Coupon) error
	Delete(ctx context.Context, db *gorm.DB, id int64) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Coupon, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]Coupon, error)
	CodeTaken(ctx context.Context, db *gorm.DB, code string, exceptID int64) (bool, error)
}
