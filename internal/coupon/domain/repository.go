package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, coupon *Coupon) error
	Update(ctx context.Context, db *gorm.DB, coupon *Coupon) error
	Delete(ctx context.Context, db *gorm.DB, id int64) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Coupon, error)
	FindAll(ctx context.Context, db *gorm.DB, productID *int64) ([]Coupon, error)
	ProductExists(ctx context.Context, db *gorm.DB, productID int64) (bool, error)
	CodeTaken(ctx context.Context, db *gorm.DB, productID int64, code string, exceptID int64) (bool, error)

	// IncrementUsage applies one use server-side: used_today restarts at 1 when
	// last_reset_date differs from today. Reports false when no row matched.
	IncrementUsage(ctx context.Context, db *gorm.DB, id int64, today time.Time, now time.Time) (bool, error)
	IncrementCounter(ctx context.Context, db *gorm.DB, id int64, counter Counter, now time.Time) (bool, error)
	// ResetUsedToday zeroes used_today on every coupon and returns the ids it touched.
	ResetUsedToday(ctx context.Context, db *gorm.DB, now time.Time) ([]int64, error)
}

type Counter string

const (
	CounterLikes    Counter = "likes"
	CounterDislikes Counter = "dislikes"
)
