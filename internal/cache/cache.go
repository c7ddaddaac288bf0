package cache

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// ErrUnavailable is returned by stores that cannot reach their backend.
var ErrUnavailable = errors.New("cache_unavailable")

// Cache is a byte-oriented key/value store with per-entry expiry.
// A missing or expired key yields found=false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// representationVersion prefixes every key so a change to the cached
// JSON shape can be rolled out without flushing the store.
const representationVersion = "v1:"

const (
	ResourceProductList   = "product_list"
	ResourceProductDetail = "product_detail"
	ResourceCouponList    = "coupon_list"
	ResourceCouponDetail  = "coupon_detail"

	ResourceLegacyCouponList   = "legacy_coupon_list"
	ResourceLegacyCouponDetail = "legacy_coupon_detail"
)

func ProductListKey() string {
	return representationVersion + "product_list_all"
}

func ProductDetailKey(id int64) string {
	return representationVersion + "product_detail_" + strconv.FormatInt(id, 10)
}

func CouponListKey() string {
	return representationVersion + "coupon_list_all"
}

func CouponDetailKey(id int64) string {
	return representationVersion + "coupon_detail_" + strconv.FormatInt(id, 10)
}

// Standalone /coupons/ resource.
func LegacyCouponListKey() string {
	return representationVersion + "legacy_coupon_list_all"
}

func LegacyCouponDetailKey(id int64) string {
	return representationVersion + "legacy_coupon_detail_" + strconv.FormatInt(id, 10)
}
