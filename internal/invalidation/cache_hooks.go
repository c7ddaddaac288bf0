package invalidation

import (
	"context"

	"github.com/smallbiznis/eragon/internal/cache"
	"github.com/smallbiznis/eragon/internal/observability/metrics"
	"go.uber.org/zap"
)

// KeysFor lists the cache keys made stale by evt. Product pages embed the
// first coupon's shop_now_url, so coupon events naming products drop the
// product list and those product details too.
func KeysFor(evt Event) []string {
	switch evt.Entity {
	case EntityProduct:
		return []string{
			cache.ProductListKey(),
			cache.ProductDetailKey(evt.ID),
			cache.CouponListKey(),
		}
	case EntityCoupon:
		keys := []string{
			cache.CouponListKey(),
			cache.CouponDetailKey(evt.ID),
		}
		if len(evt.ProductIDs) == 0 {
			return keys
		}
		keys = append(keys, cache.ProductListKey())
		seen := make(map[int64]struct{}, len(evt.ProductIDs))
		for _, productID := range evt.ProductIDs {
			if _, ok := seen[productID]; ok {
				continue
			}
			seen[productID] = struct{}{}
			keys = append(keys, cache.ProductDetailKey(productID))
		}
		return keys
	case EntityLegacyCoupon:
		return []string{
			cache.LegacyCouponListKey(),
			cache.LegacyCouponDetailKey(evt.ID),
		}
	default:
		return nil
	}
}

// RegisterCacheHooks wires cache key deletion to every product and coupon event.
func RegisterCacheHooks(registry *Registry, store cache.Cache, log *zap.Logger, m *metrics.Metrics) {
	log = log.Named("invalidation")
	drop := func(ctx context.Context, evt Event) {
		keys := KeysFor(evt)
		if err := store.Delete(ctx, keys...); err != nil {
			log.Warn("cache invalidation failed",
				zap.String("entity", string(evt.Entity)),
				zap.String("kind", string(evt.Kind)),
				zap.Int64("id", evt.ID),
				zap.Strings("keys", keys),
				zap.Error(err),
			)
			return
		}
		m.RecordCacheInvalidation(ctx, string(evt.Entity), len(keys))
	}
	registry.On(EntityProduct, drop)
	registry.On(EntityCoupon, drop)
	registry.On(EntityLegacyCoupon, drop)
}
