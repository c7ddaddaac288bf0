package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error

	RecordUsage(ctx context.Context, id string) (*UsageResponse, error)
	RecordLike(ctx context.Context, id string) (*LikesResponse, error)
	RecordDislike(ctx context.Context, id string) (*DislikesResponse, error)
	// ResetDailyUsage zeroes used_today for every coupon regardless of last_reset_date.
	ResetDailyUsage(ctx context.Context) (int64, error)
}

type ListRequest struct {
	ProductID string
}

type CreateRequest struct {
	Product    string  `json:"product"`
	Title      string  `json:"title"`
	Code       *string `json:"code"`
	Discount   string  `json:"discount"`
	ShopNowURL *string `json:"shop_now_url"`
}

// UpdateRequest backs PUT and PATCH. Counters are never writable here.
type UpdateRequest struct {
	ID         string  `json:"-"`
	Partial    bool    `json:"-"`
	Product    *string `json:"product"`
	Title      *string `json:"title"`
	Code       *string `json:"code"`
	Discount   *string `json:"discount"`
	ShopNowURL *string `json:"shop_now_url"`
}

// Response is the v1 coupon representation.
type Response struct {
	ID            string    `json:"id"`
	Product       string    `json:"product"`
	Title         string    `json:"title"`
	Code          *string   `json:"code"`
	Discount      string    `json:"discount"`
	ShopNowURL    *string   `json:"shop_now_url"`
	Likes         int64     `json:"likes"`
	Dislikes      int64     `json:"dislikes"`
	UsedCount     int64     `json:"used_count"`
	UsedToday     int64     `json:"used_today"`
	LastResetDate string    `json:"last_reset_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type UsageResponse struct {
	UsedCount int64 `json:"used_count"`
	UsedToday int64 `json:"used_today"`
}

type LikesResponse struct {
	Likes int64 `json:"likes"`
}

type DislikesResponse struct {
	Dislikes int64 `json:"dislikes"`
}

const DateLayout = "2006-01-02"

var (
	ErrNotFound        = errors.New("not_found")
	ErrInvalidProduct  = errors.New("invalid_product")
	ErrProductNotFound = errors.New("product_not_found")
	ErrInvalidTitle    = errors.New("invalid_title")
	ErrInvalidCode     = errors.New("invalid_code")
	ErrInvalidDiscount = errors.New("invalid_discount")
	ErrInvalidURL      = errors.New("invalid_url")
	ErrDuplicateCode   = errors.New("duplicate_code")
)
