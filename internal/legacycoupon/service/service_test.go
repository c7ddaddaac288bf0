package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/eragon/internal/cache"
	"github.com/smallbiznis/eragon/internal/clock"
	"github.com/smallbiznis/eragon/internal/config"
	"github.com/smallbiznis/eragon/internal/invalidation"
	"github.com/smallbiznis/eragon/internal/legacycoupon/domain"
	"github.com/smallbiznis/eragon/internal/legacycoupon/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   *Service
	store *cache.MemoryCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&domain.Coupon{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	store := cache.NewMemoryCache()
	registry := invalidation.NewRegistry()
	invalidation.RegisterCacheHooks(registry, store, zap.NewNop(), nil)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Cache: cache.NewReadThrough(store, zap.NewNop(), nil),
		TTL:   config.NewStaticCacheTTLHolder(config.DefaultCacheTTLConfig()),
		Hooks: registry,
		Clock: clock.NewFakeClock(time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)),
	}).(*Service)
	return &fixture{svc: svc, store: store}
}

func (f *fixture) cached(t *testing.T, key string) bool {
	t.Helper()
	_, found, err := f.store.Get(context.Background(), key)
	require.NoError(t, err)
	return found
}

func welcome() domain.CreateRequest {
	return domain.CreateRequest{
		Title:      "Welcome",
		Code:       "WELCOME10",
		Discount:   json.Number("10"),
		ExpiryDate: "2024-12-31",
	}
}

func TestCreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, welcome())
	require.NoError(t, err)
	assert.Equal(t, "10.00", created.Discount)
	assert.Equal(t, "2024-12-31", created.ExpiryDate)

	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = f.svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, welcome())
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, welcome())
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	cases := []struct {
		name   string
		mutate func(*domain.CreateRequest)
		want   error
	}{
		{"blank title", func(r *domain.CreateRequest) { r.Title = " " }, domain.ErrInvalidTitle},
		{"blank code", func(r *domain.CreateRequest) { r.Code = "" }, domain.ErrInvalidCode},
		{"missing discount", func(r *domain.CreateRequest) { r.Discount = "" }, domain.ErrInvalidDiscount},
		{"too many decimals", func(r *domain.CreateRequest) { r.Discount = "1.234" }, domain.ErrInvalidDiscount},
		{"too many digits", func(r *domain.CreateRequest) { r.Discount = "1000" }, domain.ErrInvalidDiscount},
		{"bad date", func(r *domain.CreateRequest) { r.ExpiryDate = "31/12/2024" }, domain.ErrInvalidExpiryDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := welcome()
			req.Code = "OTHER"
			tc.mutate(&req)
			_, err := f.svc.Create(ctx, req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseDiscount(t *testing.T) {
	for raw, want := range map[string]int64{"0": 0, "10": 1000, "12.5": 1250, "999.99": 99999, "7.05": 705} {
		got, err := ParseDiscount(json.Number(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	assert.Equal(t, "12.50", FormatDiscount(1250))
	assert.Equal(t, "0.05", FormatDiscount(5))

	for _, raw := range []string{"-1", "1e2", "1.", ".5", "abc"} {
		_, err := ParseDiscount(json.Number(raw))
		assert.ErrorIs(t, err, domain.ErrInvalidDiscount, raw)
	}
}

func TestUpdateReplaceAndPatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, welcome())
	require.NoError(t, err)

	title := "Welcome back"
	_, err = f.svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Title: &title})
	assert.ErrorIs(t, err, domain.ErrInvalidCode, "PUT needs every field")

	discount := json.Number("15.5")
	patched, err := f.svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Partial: true, Discount: &discount})
	require.NoError(t, err)
	assert.Equal(t, "15.50", patched.Discount)
	assert.Equal(t, "Welcome", patched.Title)

	code, expiry := "BACK20", "2025-01-31"
	replaced, err := f.svc.Update(ctx, domain.UpdateRequest{
		ID: created.ID, Title: &title, Code: &code, Discount: &discount, ExpiryDate: &expiry,
	})
	require.NoError(t, err)
	assert.Equal(t, "BACK20", replaced.Code)
	assert.Equal(t, "2025-01-31", replaced.ExpiryDate)

	_, err = f.svc.Update(ctx, domain.UpdateRequest{ID: snowflake.ID(42).String(), Partial: true, Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWritesDropCachedPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, welcome())
	require.NoError(t, err)

	_, err = f.svc.List(ctx)
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, created.ID)
	require.NoError(t, err)

	parsed, _ := snowflake.ParseString(created.ID)
	detailKey := cache.LegacyCouponDetailKey(parsed.Int64())
	require.True(t, f.cached(t, cache.LegacyCouponListKey()))
	require.True(t, f.cached(t, detailKey))

	title := "Renamed"
	_, err = f.svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Partial: true, Title: &title})
	require.NoError(t, err)
	assert.False(t, f.cached(t, cache.LegacyCouponListKey()))
	assert.False(t, f.cached(t, detailKey))

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Renamed", list[0].Title)

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	assert.False(t, f.cached(t, cache.LegacyCouponListKey()))
	assert.ErrorIs(t, f.svc.Delete(ctx, created.ID), domain.ErrNotFound)

	list, err = f.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
