package domain

import (
	"context"
	"encoding/json"
	"errors"
)

type Service interface {
	List(ctx context.Context) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

// CreateRequest accepts discount as a JSON number or a numeric string.
type CreateRequest struct {
	Title      string      `json:"title"`
	Code       string      `json:"code"`
	Discount   json.Number `json:"discount"`
	ExpiryDate string      `json:"expiry_date"`
}

// UpdateRequest backs PUT and PATCH; PUT requires every field.
type UpdateRequest struct {
	ID         string       `json:"-"`
	Partial    bool         `json:"-"`
	Title      *string      `json:"title"`
	Code       *string      `json:"code"`
	Discount   *json.Number `json:"discount"`
	ExpiryDate *string      `json:"expiry_date"`
}

type Response struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Code       string `json:"code"`
	Discount   string `json:"discount"`
	ExpiryDate string `json:"expiry_date"`
}

const DateLayout = "2006-01-02"

var (
	ErrNotFound          = errors.New("not_found")
	ErrInvalidTitle      = errors.New("invalid_title")
	ErrInvalidCode       = errors.New("invalid_code")
	ErrInvalidDiscount   = errors.New("invalid_discount")
	ErrInvalidExpiryDate = errors.New("invalid_expiry_date")
	ErrDuplicateCode     = errors.New("duplicate_code")
)
