package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/eragon/internal/cache"
	"github.com/smallbiznis/eragon/internal/clock"
	"github.com/smallbiznis/eragon/internal/config"
	"github.com/smallbiznis/eragon/internal/invalidation"
	"github.com/smallbiznis/eragon/internal/legacycoupon/domain"
	"github.com/smallbiznis/eragon/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxDiscountHundredths is the largest value that fits five digits with two decimals.
const maxDiscountHundredths = 99999

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Cache *cache.ReadThrough
	TTL   *config.CacheTTLHolder
	Hooks invalidation.Dispatcher
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
	cache *cache.ReadThrough
	ttl   *config.CacheTTLHolder
	hooks invalidation.Dispatcher
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("legacycoupon.service"),
		repo:  p.Repo,
		genID: p.GenID,
		cache: p.Cache,
		ttl:   p.TTL,
		hooks: p.Hooks,
		clock: p.Clock,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	ttl := s.ttl.Get().Coupons.ListTTL
	return cache.Fetch(ctx, s.cache, cache.ResourceLegacyCouponList, cache.LegacyCouponListKey(), ttl,
		func(ctx context.Context) ([]domain.Response, error) {
			items, err := s.repo.FindAll(ctx, s.db)
			if err != nil {
				return nil, err
			}
			resp := make([]domain.Response, 0, len(items))
			for i := range items {
				resp = append(resp, toResponse(&items[i]))
			}
			return resp, nil
		})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	couponID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ttl := s.ttl.Get().Coupons.DetailTTL
	resp, err := cache.Fetch(ctx, s.cache, cache.ResourceLegacyCouponDetail, cache.LegacyCouponDetailKey(couponID), ttl,
		func(ctx context.Context) (domain.Response, error) {
			item, err := s.repo.FindByID(ctx, s.db, couponID)
			if err != nil {
				return domain.Response{}, err
			}
			if item == nil {
				return domain.Response{}, domain.ErrNotFound
			}
			return toResponse(item), nil
		})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	title, err := normalizeTitle(req.Title)
	if err != nil {
		return nil, err
	}
	code, err := normalizeCode(req.Code)
	if err != nil {
		return nil, err
	}
	discount, err := ParseDiscount(req.Discount)
	if err != nil {
		return nil, err
	}
	expiry, err := parseExpiryDate(req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	item := &domain.Coupon{
		ID:                 s.genID.Generate().Int64(),
		Title:              title,
		Code:               code,
		DiscountHundredths: discount,
		ExpiryDate:         datatypes.Date(expiry),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureCodeFree(ctx, tx, item); err != nil {
			return err
		}
		return s.repo.Create(ctx, tx, item)
	})
	if err != nil {
		return nil, translateWriteErr(err)
	}

	s.hooks.Dispatch(ctx, invalidation.Event{Entity: invalidation.EntityLegacyCoupon, Kind: invalidation.KindCreated, ID: item.ID})
	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	couponID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	if !req.Partial {
		switch {
		case req.Title == nil:
			return nil, domain.ErrInvalidTitle
		case req.Code == nil:
			return nil, domain.ErrInvalidCode
		case req.Discount == nil:
			return nil, domain.ErrInvalidDiscount
		case req.ExpiryDate == nil:
			return nil, domain.ErrInvalidExpiryDate
		}
	}

	var updated *domain.Coupon
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, couponID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		if req.Title != nil {
			if item.Title, err = normalizeTitle(*req.Title); err != nil {
				return err
			}
		}
		if req.Code != nil {
			if item.Code, err = normalizeCode(*req.Code); err != nil {
				return err
			}
		}
		if req.Discount != nil {
			if item.DiscountHundredths, err = ParseDiscount(*req.Discount); err != nil {
				return err
			}
		}
		if req.ExpiryDate != nil {
			expiry, err := parseExpiryDate(*req.ExpiryDate)
			if err != nil {
				return err
			}
			item.ExpiryDate = datatypes.Date(expiry)
		}
		if err := s.ensureCodeFree(ctx, tx, item); err != nil {
			return err
		}

		item.UpdatedAt = s.clock.Now().UTC()
		if err := s.repo.Update(ctx, tx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, translateWriteErr(err)
	}

	s.hooks.Dispatch(ctx, invalidation.Event{Entity: invalidation.EntityLegacyCoupon, Kind: invalidation.KindUpdated, ID: updated.ID})
	resp := toResponse(updated)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	couponID, err := parseID(id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, s.db, couponID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	s.hooks.Dispatch(ctx, invalidation.Event{Entity: invalidation.EntityLegacyCoupon, Kind: invalidation.KindDeleted, ID: couponID})
	return nil
}

func (s *Service) ensureCodeFree(ctx context.Context, tx *gorm.DB, item *domain.Coupon) error {
	taken, err := s.repo.CodeTaken(ctx, tx, item.Code, item.ID)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrDuplicateCode
	}
	return nil
}

func toResponse(c *domain.Coupon) domain.Response {
	return domain.Response{
		ID:         snowflake.ID(c.ID).String(),
		Title:      c.Title,
		Code:       c.Code,
		Discount:   FormatDiscount(c.DiscountHundredths),
		ExpiryDate: time.Time(c.ExpiryDate).Format(domain.DateLayout),
	}
}

// ParseDiscount reads a non-negative decimal with at most three integer
// digits and two fraction digits and returns it in hundredths.
func ParseDiscount(raw json.Number) (int64, error) {
	value := strings.TrimSpace(raw.String())
	if value == "" || strings.HasPrefix(value, "-") || strings.HasPrefix(value, "+") {
		return 0, domain.ErrInvalidDiscount
	}
	whole, frac, hasFrac := strings.Cut(value, ".")
	if whole == "" || len(whole) > 3 || !allDigits(whole) {
		return 0, domain.ErrInvalidDiscount
	}
	if hasFrac && (frac == "" || len(frac) > 2 || !allDigits(frac)) {
		return 0, domain.ErrInvalidDiscount
	}
	for len(frac) < 2 {
		frac += "0"
	}
	n, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil || n > maxDiscountHundredths {
		return 0, domain.ErrInvalidDiscount
	}
	return n, nil
}

// FormatDiscount renders hundredths with exactly two decimals, e.g. "12.50".
func FormatDiscount(hundredths int64) string {
	return fmt.Sprintf("%d.%02d", hundredths/100, hundredths%100)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func normalizeTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" || len(title) > 255 {
		return "", domain.ErrInvalidTitle
	}
	return title, nil
}

func normalizeCode(raw string) (string, error) {
	code := strings.TrimSpace(raw)
	if code == "" || len(code) > 50 {
		return "", domain.ErrInvalidCode
	}
	return code, nil
}

func parseExpiryDate(raw string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, domain.ErrInvalidExpiryDate
	}
	return t, nil
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrNotFound
	}
	return id.Int64(), nil
}

func translateWriteErr(err error) error {
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrDuplicateCode
	}
	return err
}
