package domain

import (
	"context"
	"errors"
)

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) error
}

type SubmitRequest struct {
	StoreName    string `json:"store_name"`
	Website      string `json:"website"`
	DiscountCode string `json:"discount_code"`
	Description  string `json:"description"`
}

var (
	ErrInvalidStoreName = errors.New("invalid_store_name")
	ErrInvalidWebsite   = errors.New("invalid_website")
	ErrNoRecipients     = errors.New("no_recipients")
)
