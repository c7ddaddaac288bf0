package service

import (
	"context"

	"github.com/smallbiznis/eragon/internal/cache"
	"github.com/smallbiznis/eragon/internal/coupon/domain"
	"github.com/smallbiznis/eragon/internal/invalidation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecordUsage applies one use of the coupon. The increment and the lazy daily
// rollover happen in a single UPDATE so concurrent uses never lose a count.
func (s *Service) RecordUsage(ctx context.Context, id string) (*domain.UsageResponse, error) {
	couponID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	today := s.today(now)

	var item *domain.Coupon
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.repo.IncrementUsage(ctx, tx, couponID, today, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
		item, err = s.repo.FindByID(ctx, tx, couponID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCounterWrite(ctx, couponID, "use")
	return &domain.UsageResponse{UsedCount: item.UsedCount, UsedToday: item.UsedToday}, nil
}

func (s *Service) RecordLike(ctx context.Context, id string) (*domain.LikesResponse, error) {
	item, err := s.bump(ctx, id, domain.CounterLikes, "like")
	if err != nil {
		return nil, err
	}
	return &domain.LikesResponse{Likes: item.Likes}, nil
}

func (s *Service) RecordDislike(ctx context.Context, id string) (*domain.DislikesResponse, error) {
	item, err := s.bump(ctx, id, domain.CounterDislikes, "dislike")
	if err != nil {
		return nil, err
	}
	return &domain.DislikesResponse{Dislikes: item.Dislikes}, nil
}

// ResetDailyUsage forces used_today to zero on every coupon.
func (s *Service) ResetDailyUsage(ctx context.Context) (int64, error) {
	now := s.clock.Now().UTC()

	var ids []int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		ids, err = s.repo.ResetUsedToday(ctx, tx, now)
		return err
	})
	if err != nil {
		return 0, err
	}

	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, cache.CouponListKey())
	for _, id := range ids {
		keys = append(keys, cache.CouponDetailKey(id))
	}
	s.dropKeys(ctx, keys...)
	for _, id := range ids {
		s.hooks.Dispatch(ctx, invalidation.Event{Entity: invalidation.EntityCoupon, Kind: invalidation.KindUpdated, ID: id})
	}

	s.log.Info("daily coupon usage reset", zap.Int("coupons", len(ids)))
	return int64(len(ids)), nil
}

func (s *Service) bump(ctx context.Context, id string, counter domain.Counter, action string) (*domain.Coupon, error) {
	couponID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()

	var item *domain.Coupon
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.repo.IncrementCounter(ctx, tx, couponID, counter, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
		item, err = s.repo.FindByID(ctx, tx, couponID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCounterWrite(ctx, couponID, action)
	return item, nil
}

// afterCounterWrite drops the affected keys right away, then lets the
// registered hooks run their own invalidation for the same event.
func (s *Service) afterCounterWrite(ctx context.Context, couponID int64, action string) {
	s.dropKeys(ctx, cache.CouponDetailKey(couponID), cache.CouponListKey())
	s.hooks.Dispatch(ctx, invalidation.Event{Entity: invalidation.EntityCoupon, Kind: invalidation.KindUpdated, ID: couponID})
	s.metrics.RecordCouponEvent(ctx, action)
}

func (s *Service) dropKeys(ctx context.Context, keys ...string) {
	if err := s.cache.Store().Delete(ctx, keys...); err != nil {
		s.log.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
