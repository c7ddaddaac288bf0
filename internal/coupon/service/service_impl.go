package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/eragon/internal/cache"
	"github.com/smallbiznis/eragon/internal/clock"
	"github.com/smallbiznis/eragon/internal/config"
	"github.com/smallbiznis/eragon/internal/coupon/domain"
	"github.com/smallbiznis/eragon/internal/invalidation"
	"github.com/smallbiznis/eragon/internal/observability/metrics"
	"github.com/smallbiznis/eragon/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Config  config.Config
	GenID   *snowflake.Node
	Repo    domain.Repository
	Cache   *cache.ReadThrough
	TTL     *config.CacheTTLHolder
	Hooks   invalidation.Dispatcher
	Clock   clock.Clock
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	genID    *snowflake.Node
	cache    *cache.ReadThrough
	ttl      *config.CacheTTLHolder
	hooks    invalidation.Dispatcher
	clock    clock.Clock
	location *time.Location
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("coupon.service"),
		repo:     p.Repo,
		genID:    p.GenID,
		cache:    p.Cache,
		ttl:      p.TTL,
		hooks:    p.Hooks,
		clock:    p.Clock,
		location: p.Config.Location(),
		metrics:  p.Metrics,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	if raw := strings.TrimSpace(req.ProductID); raw != "" {
		productID, err := snowflake.ParseString(raw)
		if err != nil || productID <= 0 {
			return nil, domain.ErrInvalidProduct
		}
		pid := productID.Int64()
		return s.loadList(ctx, &pid)
	}

	ttl := s.ttl.Get().Coupons.ListTTL
	return cache.Fetch(ctx, s.cache, cache.ResourceCouponList, cache.CouponListKey(), ttl,
		func(ctx context.Context) ([]domain.Response, error) {
			return s.loadList(ctx, nil)
		})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	couponID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	ttl := s.ttl.Get().Coupons.DetailTTL
	resp, err := cache.Fetch(ctx, s.cache, cache.ResourceCouponDetail, cache.CouponDetailKey(couponID), ttl,
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
	productID, err := parseProductID(req.Product)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	discount := strings.TrimSpace(req.Discount)
	if discount == "" || len(discount) > 50 {
		return nil, domain.ErrInvalidDiscount
	}
	code, err := normalizeCode(req.Code)
	if err != nil {
		return nil, err
	}
	shopNowURL, err := normalizeURL(req.ShopNowURL)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	item := &domain.Coupon{
		ID:            s.genID.Generate().Int64(),
		ProductID:     productID,
		Title:         title,
		Code:          code,
		Discount:      discount,
		ShopNowURL:    shopNowURL,
		LastResetDate: datatypes.Date(s.today(now)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureWritable(ctx, tx, item); err != nil {
			return err
		}
		return s.repo.Create(ctx, tx, item)
	})
	if err != nil {
		return nil, translateWriteErr(err)
	}

	s.hooks.Dispatch(ctx, invalidation.Event{
		Entity:     invalidation.EntityCoupon,
		Kind:       invalidation.KindCreated,
		ID:         item.ID,
		ProductIDs: []int64{item.ProductID},
	})
	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	couponID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	if !req.Partial && (req.Product == nil || req.Title == nil || req.Discount == nil) {
		switch {
		case req.Product == nil:
			return nil, domain.ErrInvalidProduct
		case req.Title == nil:
			return nil, domain.ErrInvalidTitle
		default:
			return nil, domain.ErrInvalidDiscount
		}
	}

	var (
		updated   *domain.Coupon
		productID int64
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, couponID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		productID = item.ProductID

		if req.Product != nil {
			productID, err := parseProductID(*req.Product)
			if err != nil {
				return err
			}
			item.ProductID = productID
		}
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				return domain.ErrInvalidTitle
			}
			item.Title = title
		}
		if req.Discount != nil {
			discount := strings.TrimSpace(*req.Discount)
			if discount == "" || len(discount) > 50 {
				return domain.ErrInvalidDiscount
			}
			item.Discount = discount
		}
		if req.Code != nil {
			code, err := normalizeCode(req.Code)
			if err != nil {
				return err
			}
			item.Code = code
		}
		if req.ShopNowURL != nil {
			shopNowURL, err := normalizeURL(req.ShopNowURL)
			if err != nil {
				return err
			}
			item.ShopNowURL = shopNowURL
		}
		if err := s.ensureWritable(ctx, tx, item); err != nil {
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

	s.hooks.Dispatch(ctx, invalidation.Event{
		Entity:     invalidation.EntityCoupon,
		Kind:       invalidation.KindUpdated,
		ID:         updated.ID,
		ProductIDs: []int64{productID, updated.ProductID},
	})
	resp := toResponse(updated)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	couponID, err := parseID(id)
	if err != nil {
		return err
	}
	var productID int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, couponID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		deleted, err := s.repo.Delete(ctx, tx, couponID)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrNotFound
		}
		productID = item.ProductID
		return nil
	})
	if err != nil {
		return err
	}
	s.hooks.Dispatch(ctx, invalidation.Event{
		Entity:     invalidation.EntityCoupon,
		Kind:       invalidation.KindDeleted,
		ID:         couponID,
		ProductIDs: []int64{productID},
	})
	return nil
}

func (s *Service) ensureWritable(ctx context.Context, tx *gorm.DB, item *domain.Coupon) error {
	exists, err := s.repo.ProductExists(ctx, tx, item.ProductID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrProductNotFound
	}
	if item.Code == nil {
		return nil
	}
	taken, err := s.repo.CodeTaken(ctx, tx, item.ProductID, *item.Code, item.ID)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrDuplicateCode
	}
	return nil
}

func (s *Service) loadList(ctx context.Context, productID *int64) ([]domain.Response, error) {
	items, err := s.repo.FindAll(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

// today is the reference-timezone calendar date of now, as UTC midnight.
func (s *Service) today(now time.Time) time.Time {
	loc := s.location
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toResponse(c *domain.Coupon) domain.Response {
	return domain.Response{
		ID:            snowflake.ID(c.ID).String(),
		Product:       snowflake.ID(c.ProductID).String(),
		Title:         c.Title,
		Code:          c.Code,
		Discount:      c.Discount,
		ShopNowURL:    c.ShopNowURL,
		Likes:         c.Likes,
		Dislikes:      c.Dislikes,
		UsedCount:     c.UsedCount,
		UsedToday:     c.UsedToday,
		LastResetDate: time.Time(c.LastResetDate).Format(domain.DateLayout),
		CreatedAt:     c.CreatedAt.UTC(),
		UpdatedAt:     c.UpdatedAt.UTC(),
	}
}

// parseID treats an id that cannot name a row the same as a missing row.
func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrNotFound
	}
	return id.Int64(), nil
}

func parseProductID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidProduct
	}
	return id.Int64(), nil
}

func normalizeCode(code *string) (*string, error) {
	if code == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*code)
	if value == "" {
		return nil, nil
	}
	if len(value) > 50 {
		return nil, domain.ErrInvalidCode
	}
	return &value, nil
}

func normalizeURL(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}
	u, err := url.ParseRequestURI(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, domain.ErrInvalidURL
	}
	return &value, nil
}

func translateWriteErr(err error) error {
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrDuplicateCode
	}
	return err
}
