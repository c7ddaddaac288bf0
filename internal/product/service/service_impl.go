package service

import (
	"context"
	"net/mail"
	"net/url"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/eragon/internal/cache"
	"github.com/smallbiznis/eragon/internal/clock"
	"github.com/smallbiznis/eragon/internal/config"
	"github.com/smallbiznis/eragon/internal/invalidation"
	"github.com/smallbiznis/eragon/internal/product/domain"
	"github.com/smallbiznis/eragon/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

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
		log:   p.Log.Named("product.service"),
		repo:  p.Repo,
		genID: p.GenID,
		cache: p.Cache,
		ttl:   p.TTL,
		hooks: p.Hooks,
		clock: p.Clock,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	ttl := s.ttl.Get().Products.ListTTL
	return cache.Fetch(ctx, s.cache, cache.ResourceProductList, cache.ProductListKey(), ttl, s.loadList)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.getByID(ctx, productID)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Response, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, domain.ErrNotFound
	}
	id, err := s.repo.FindIDBySlug(ctx, s.db, slug)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, domain.ErrNotFound
	}
	return s.getByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now().UTC()
	p := &domain.Product{
		ID:        s.genID.Generate().Int64(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyFields(p, req.Fields); err != nil {
		return nil, err
	}
	// The slug is derived once, at creation, and only when none was given.
	if req.Slug == nil || strings.TrimSpace(*req.Slug) == "" {
		p.Slug = domain.Slugify(name)
		if p.Slug == "" {
			return nil, domain.ErrInvalidSlug
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureUnique(ctx, tx, p); err != nil {
			return err
		}
		return s.repo.Create(ctx, tx, p)
	})
	if err != nil {
		return nil, translateWriteErr(err)
	}

	s.hooks.Dispatch(ctx, invalidation.Event{Entity: invalidation.EntityProduct, Kind: invalidation.KindCreated, ID: p.ID})
	return s.respond(ctx, p)
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	productID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	if !req.Partial && req.Name == nil {
		return nil, domain.ErrInvalidName
	}

	var updated *domain.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return domain.ErrInvalidName
			}
			item.Name = name
		}
		if err := applyFields(item, req.Fields); err != nil {
			return err
		}
		if req.Slug != nil && strings.TrimSpace(*req.Slug) == "" {
			return domain.ErrInvalidSlug
		}
		if err := s.ensureUnique(ctx, tx, item); err != nil {
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

	s.hooks.Dispatch(ctx, invalidation.Event{Entity: invalidation.EntityProduct, Kind: invalidation.KindUpdated, ID: updated.ID})
	return s.respond(ctx, updated)
}

// Delete removes the product and every coupon it owns in one transaction.
func (s *Service) Delete(ctx context.Context, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}

	var couponIDs []int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := s.repo.CouponIDs(ctx, tx, productID)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteCoupons(ctx, tx, productID); err != nil {
			return err
		}
		deleted, err := s.repo.Delete(ctx, tx, productID)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrNotFound
		}
		couponIDs = ids
		return nil
	})
	if err != nil {
		return err
	}

	for _, couponID := range couponIDs {
		s.hooks.Dispatch(ctx, invalidation.Event{
			Entity:     invalidation.EntityCoupon,
			Kind:       invalidation.KindDeleted,
			ID:         couponID,
			ProductIDs: []int64{productID},
		})
	}
	s.hooks.Dispatch(ctx, invalidation.Event{Entity: invalidation.EntityProduct, Kind: invalidation.KindDeleted, ID: productID})
	s.log.Info("product deleted", zap.Int64("product_id", productID), zap.Int("coupons", len(couponIDs)))
	return nil
}

func (s *Service) Sitemap(ctx context.Context) ([]domain.SitemapEntry, error) {
	items, err := s.repo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SitemapEntry, 0, len(items))
	for _, item := range items {
		out = append(out, domain.SitemapEntry{ID: item.ID, Slug: item.Slug, UpdatedAt: item.UpdatedAt})
	}
	return out, nil
}

func (s *Service) getByID(ctx context.Context, id int64) (*domain.Response, error) {
	ttl := s.ttl.Get().Products.DetailTTL
	resp, err := cache.Fetch(ctx, s.cache, cache.ResourceProductDetail, cache.ProductDetailKey(id), ttl,
		func(ctx context.Context) (domain.Response, error) {
			item, err := s.repo.FindByID(ctx, s.db, id)
			if err != nil {
				return domain.Response{}, err
			}
			if item == nil {
				return domain.Response{}, domain.ErrNotFound
			}
			urls, err := s.repo.FirstCouponShopNowURLs(ctx, s.db, []int64{id})
			if err != nil {
				return domain.Response{}, err
			}
			return toResponse(item, urls), nil
		})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *Service) loadList(ctx context.Context) ([]domain.Response, error) {
	items, err := s.repo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	urls, err := s.repo.FirstCouponShopNowURLs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i], urls))
	}
	return resp, nil
}

func (s *Service) respond(ctx context.Context, p *domain.Product) (*domain.Response, error) {
	urls, err := s.repo.FirstCouponShopNowURLs(ctx, s.db, []int64{p.ID})
	if err != nil {
		return nil, err
	}
	resp := toResponse(p, urls)
	return &resp, nil
}

func (s *Service) ensureUnique(ctx context.Context, tx *gorm.DB, p *domain.Product) error {
	taken, err := s.repo.NameTaken(ctx, tx, p.Name, p.ID)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrDuplicateName
	}
	taken, err = s.repo.SlugTaken(ctx, tx, p.Slug, p.ID)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrDuplicateSlug
	}
	return nil
}

// translateWriteErr maps a unique-constraint race that slipped past ensureUnique.
func translateWriteErr(err error) error {
	if err == nil || !db.IsDuplicateKeyErr(err) {
		return err
	}
	if strings.Contains(strings.ToLower(err.Error()), "slug") {
		return domain.ErrDuplicateSlug
	}
	return domain.ErrDuplicateName
}

func applyFields(p *domain.Product, f domain.Fields) error {
	if f.Slug != nil {
		if value := strings.TrimSpace(*f.Slug); value != "" {
			if !domain.ValidSlug(value) {
				return domain.ErrInvalidSlug
			}
			p.Slug = value
		}
	}
	if f.IsSignupStore != nil {
		p.IsSignupStore = *f.IsSignupStore
	}
	if f.Title != nil {
		p.Title = strings.TrimSpace(*f.Title)
	}
	if f.Subtitle != nil {
		p.Subtitle = strings.TrimSpace(*f.Subtitle)
	}
	if f.SubSubtitle != nil {
		p.SubSubtitle = strings.TrimSpace(*f.SubSubtitle)
	}
	if f.Logo != nil {
		p.Logo = optional(f.Logo)
	}

	urls := []struct {
		in  *string
		out **string
	}{
		{f.LogoURL, &p.LogoURL},
		{f.MainAffiliateURL, &p.MainAffiliateURL},
		{f.SocialFacebookURL, &p.Social.FacebookURL},
		{f.SocialTwitterURL, &p.Social.TwitterURL},
		{f.SocialInstagramURL, &p.Social.InstagramURL},
	}
	for _, u := range urls {
		if u.in == nil {
			continue
		}
		value := optional(u.in)
		if value != nil && !validURL(*value) {
			return domain.ErrInvalidURL
		}
		*u.out = value
	}

	texts := []struct {
		in  *string
		out **string
	}{
		{f.FooterSectionEffortlessSavingsTitle, &p.Footer.EffortlessSavingsTitle},
		{f.FooterSectionEffortlessSavingsDescription, &p.Footer.EffortlessSavingsDescription},
		{f.FooterSectionHowToUseTitle, &p.Footer.HowToUseTitle},
		{f.FooterSectionHowToUseSteps, &p.Footer.HowToUseSteps},
		{f.FooterSectionHowToUseNote, &p.Footer.HowToUseNote},
		{f.FooterSectionTipsTitle, &p.Footer.TipsTitle},
		{f.FooterSectionTipsList, &p.Footer.TipsList},
		{f.FooterSectionContactTitle, &p.Footer.ContactTitle},
		{f.FooterSectionContactDescription, &p.Footer.ContactDescription},
		{f.FooterContactPhone, &p.Footer.ContactPhone},
		{f.FooterContactWhatsapp, &p.Footer.ContactWhatsapp},
	}
	for _, t := range texts {
		if t.in != nil {
			*t.out = optional(t.in)
		}
	}

	if f.FooterContactEmail != nil {
		value := optional(f.FooterContactEmail)
		if value != nil {
			if _, err := mail.ParseAddress(*value); err != nil {
				return domain.ErrInvalidEmail
			}
		}
		p.Footer.ContactEmail = value
	}
	return nil
}

func toResponse(p *domain.Product, shopNowURLs map[int64]string) domain.Response {
	resp := domain.Response{
		ID:               snowflake.ID(p.ID).String(),
		Name:             p.Name,
		Slug:             p.Slug,
		IsSignupStore:    p.IsSignupStore,
		Logo:             p.Logo,
		LogoURL:          p.LogoURL,
		Title:            p.Title,
		Subtitle:         p.Subtitle,
		SubSubtitle:      p.SubSubtitle,
		MainAffiliateURL: p.MainAffiliateURL,

		FooterSectionEffortlessSavingsTitle:       p.Footer.EffortlessSavingsTitle,
		FooterSectionEffortlessSavingsDescription: p.Footer.EffortlessSavingsDescription,
		FooterSectionHowToUseTitle:                p.Footer.HowToUseTitle,
		FooterSectionHowToUseSteps:                p.Footer.HowToUseSteps,
		FooterSectionHowToUseNote:                 p.Footer.HowToUseNote,
		FooterSectionTipsTitle:                    p.Footer.TipsTitle,
		FooterSectionTipsList:                     p.Footer.TipsList,
		FooterSectionContactTitle:                 p.Footer.ContactTitle,
		FooterSectionContactDescription:           p.Footer.ContactDescription,
		FooterContactPhone:                        p.Footer.ContactPhone,
		FooterContactEmail:                        p.Footer.ContactEmail,
		FooterContactWhatsapp:                     p.Footer.ContactWhatsapp,

		SocialFacebookURL:  p.Social.FacebookURL,
		SocialTwitterURL:   p.Social.TwitterURL,
		SocialInstagramURL: p.Social.InstagramURL,

		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}

	switch {
	case p.MainAffiliateURL != nil && *p.MainAffiliateURL != "":
		resp.ProductShopNowURL = p.MainAffiliateURL
	default:
		if u, ok := shopNowURLs[p.ID]; ok && u != "" {
			resp.ProductShopNowURL = &u
		}
	}
	return resp
}

// parseID treats an id that cannot name a row the same as a missing row.
func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrNotFound
	}
	return id.Int64(), nil
}

func optional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
