package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang/mock/gomock"
	apikeydomain "github.com/smallbiznis/eragon/internal/apikey/domain"
	apikeyrepo "github.com/smallbiznis/eragon/internal/apikey/repository"
	apikeyservice "github.com/smallbiznis/eragon/internal/apikey/service"
	"github.com/smallbiznis/eragon/internal/cache"
	"github.com/smallbiznis/eragon/internal/clock"
	"github.com/smallbiznis/eragon/internal/config"
	couponrepo "github.com/smallbiznis/eragon/internal/coupon/repository"
	couponservice "github.com/smallbiznis/eragon/internal/coupon/service"
	"github.com/smallbiznis/eragon/internal/invalidation"
	legacycouponrepo "github.com/smallbiznis/eragon/internal/legacycoupon/repository"
	legacycouponservice "github.com/smallbiznis/eragon/internal/legacycoupon/service"
	"github.com/smallbiznis/eragon/internal/migration"
	productrepo "github.com/smallbiznis/eragon/internal/product/repository"
	productservice "github.com/smallbiznis/eragon/internal/product/service"
	"github.com/smallbiznis/eragon/internal/providers/email"
	emailmock "github.com/smallbiznis/eragon/internal/providers/email/mock"
	"github.com/smallbiznis/eragon/internal/ratelimit"
	"github.com/smallbiznis/eragon/internal/sitemap"
	submissionservice "github.com/smallbiznis/eragon/internal/submission/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	srv    *Server
	clock  *clock.FakeClock
	store  *cache.MemoryCache
	mailer *emailmock.MockProvider
	token  string
}

func newTestEnv(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(migration.Models()...))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.SiteDomain == "" {
		cfg.SiteDomain = "deals.example.com"
	}
	if len(cfg.Email.Recipients) == 0 {
		cfg.Email.Recipients = []string{"owner@example.com"}
	}

	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC))
	store := cache.NewMemoryCache()
	registry := invalidation.NewRegistry()
	invalidation.RegisterCacheHooks(registry, store, log, nil)
	readThrough := cache.NewReadThrough(store, log, nil)
	ttl := config.NewStaticCacheTTLHolder(config.DefaultCacheTTLConfig())

	products := productservice.New(productservice.Params{
		DB: db, Log: log, GenID: node, Repo: productrepo.Provide(),
		Cache: readThrough, TTL: ttl, Hooks: registry, Clock: fake,
	})
	coupons := couponservice.New(couponservice.Params{
		DB: db, Log: log, Config: cfg, GenID: node, Repo: couponrepo.Provide(),
		Cache: readThrough, TTL: ttl, Hooks: registry, Clock: fake,
	})
	legacyCoupons := legacycouponservice.New(legacycouponservice.Params{
		DB: db, Log: log, GenID: node, Repo: legacycouponrepo.Provide(),
		Cache: readThrough, TTL: ttl, Hooks: registry, Clock: fake,
	})
	apiKeys := apikeyservice.New(apikeyservice.Params{
		DB: db, Log: log, GenID: node, Repo: apikeyrepo.Provide(), Clock: fake,
	})

	ctrl := gomock.NewController(t)
	mailer := emailmock.NewMockProvider(ctrl)

	srv := &Server{
		engine:          gin.New(),
		cfg:             cfg,
		productSvc:      products,
		couponSvc:       coupons,
		legacyCouponSvc: legacyCoupons,
		apiKeySvc:       apiKeys,
		submissionSvc: submissionservice.New(submissionservice.Params{
			Log: log, Config: cfg, Email: mailer,
		}),
		sitemap:        sitemap.New(sitemap.Params{Config: cfg, Products: products}),
		counterLimiter: ratelimit.NewCounterLimiter(cfg, nil, log),
	}
	srv.engine.Use(ErrorHandlingMiddleware())
	srv.registerRoutes()

	secret, err := apiKeys.Create(context.Background(), apikeydomain.CreateRequest{Name: "tests"})
	require.NoError(t, err)

	return &testEnv{srv: srv, clock: fake, store: store, mailer: mailer, token: secret.APIKey}
}

func (e *testEnv) do(t *testing.T, method, path, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("Authorization", "Token "+e.token)
	}
	resp := httptest.NewRecorder()
	e.srv.engine.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var out errorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	if len(out.Error.Errors) > 0 {
		return out.Error.Errors[0].Code
	}
	return out.Error.Type
}

func (e *testEnv) createProduct(t *testing.T, name string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/products/", fmt.Sprintf(`{"name":%q}`, name), true)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode(t, resp)["id"].(string)
}

func (e *testEnv) createCoupon(t *testing.T, productID, code string) string {
	t.Helper()
	body := fmt.Sprintf(`{"product":%q,"title":"10%% off","code":%q,"discount":"10%%"}`, productID, code)
	resp := e.do(t, http.MethodPost, "/productcoupon/", body, true)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode(t, resp)["id"].(string)
}

func TestAcmeCouponLifecycle(t *testing.T) {
	env := newTestEnv(t, config.Config{})

	resp := env.do(t, http.MethodPost, "/products/", `{"name":"Acme"}`, true)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	product := decode(t, resp)
	assert.Equal(t, "acme", product["slug"])
	productID := product["id"].(string)

	resp = env.do(t, http.MethodPost, "/productcoupon/", fmt.Sprintf(`{"product":%q,"title":"10%% off","code":"ACME10","discount":"10%%"}`, productID), true)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	coupon := decode(t, resp)
	assert.EqualValues(t, 0, coupon["used_count"])
	assert.EqualValues(t, 0, coupon["used_today"])
	couponID := coupon["id"].(string)

	resp = env.do(t, http.MethodPost, "/productcoupon/"+couponID+"/use/", "", false)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.JSONEq(t, `{"used_count":1,"used_today":1}`, resp.Body.String())

	env.clock.Advance(24 * time.Hour)

	resp = env.do(t, http.MethodPost, "/productcoupon/"+couponID+"/use/", "", false)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.JSONEq(t, `{"used_count":2,"used_today":1}`, resp.Body.String())

	resp = env.do(t, http.MethodGet, "/productcoupon/"+couponID+"/", "", false)
	require.Equal(t, http.StatusOK, resp.Code)
	detail := decode(t, resp)
	assert.Equal(t, "2024-03-11", detail["last_reset_date"])
	assert.EqualValues(t, 2, detail["used_count"])
}

func TestProductReads(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	id := env.createProduct(t, "Café Deluxe")

	resp := env.do(t, http.MethodGet, "/products/", "", false)
	require.Equal(t, http.StatusOK, resp.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0]["id"])

	resp = env.do(t, http.MethodGet, "/products/"+id+"/", "", false)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Café Deluxe", decode(t, resp)["name"])

	resp = env.do(t, http.MethodGet, "/products/by_slug/cafe-deluxe/", "", false)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, id, decode(t, resp)["id"])

	resp = env.do(t, http.MethodGet, "/products/by_slug/missing/", "", false)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = env.do(t, http.MethodGet, "/products/999/", "", false)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "not_found", errorCode(t, resp))

	for _, path := range []string{"/products/abc/", "/products/99999999999999999999/", "/productcoupon/abc/"} {
		resp = env.do(t, http.MethodGet, path, "", false)
		assert.Equal(t, http.StatusNotFound, resp.Code, path)
		assert.Equal(t, "not_found", errorCode(t, resp), path)
	}
}

func TestTrailingSlashRedirect(t *testing.T) {
	env := newTestEnv(t, config.Config{})

	resp := env.do(t, http.MethodGet, "/products", "", false)
	assert.Equal(t, http.StatusMovedPermanently, resp.Code)
	assert.Equal(t, "/products/", resp.Header().Get("Location"))
}

func TestWritesRequireAPIKey(t *testing.T) {
	env := newTestEnv(t, config.Config{})

	resp := env.do(t, http.MethodPost, "/products/", `{"name":"Acme"}`, false)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	req := httptest.NewRequest(http.MethodPost, "/products/", bytes.NewBufferString(`{"name":"Acme"}`))
	req.Header.Set("Authorization", "Token ek_live_wrong")
	rec := httptest.NewRecorder()
	env.srv.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/products/", bytes.NewBufferString(`{"name":"Acme"}`))
	req.Header.Set("Authorization", "Bearer "+env.token)
	rec = httptest.NewRecorder()
	env.srv.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp = env.do(t, http.MethodPost, "/productcoupon/reset_daily_usage/", "", false)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestParseAuthorization(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Token abc", "abc", true},
		{"Bearer abc", "abc", true},
		{"  Token   abc  ", "abc", true},
		{"Basic abc", "", false},
		{"Token", "", false},
		{"", "", false},
		{"Token a b", "", false},
	}
	for _, tc := range cases {
		got, ok := parseAuthorization(tc.header)
		assert.Equal(t, tc.ok, ok, tc.header)
		assert.Equal(t, tc.want, got, tc.header)
	}
}

func TestProductValidationErrors(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	env.createProduct(t, "Acme")

	resp := env.do(t, http.MethodPost, "/products/", `{"name":"Acme"}`, true)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	var out errorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.Equal(t, "validation_error", out.Error.Type)
	require.Len(t, out.Error.Errors, 1)
	assert.Equal(t, "name", out.Error.Errors[0].Field)
	assert.Equal(t, "duplicate_name", out.Error.Errors[0].Code)

	resp = env.do(t, http.MethodPost, "/products/", `{"name":`, true)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "invalid_request", errorCode(t, resp))
}

func TestProductUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	id := env.createProduct(t, "Acme")
	couponID := env.createCoupon(t, id, "ACME10")

	resp := env.do(t, http.MethodGet, "/products/"+id+"/", "", false)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = env.do(t, http.MethodPatch, "/products/"+id+"/", `{"title":"Best deals"}`, true)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "Best deals", decode(t, resp)["title"])

	resp = env.do(t, http.MethodGet, "/products/"+id+"/", "", false)
	assert.Equal(t, "Best deals", decode(t, resp)["title"])

	resp = env.do(t, http.MethodPut, "/products/"+id+"/", `{"title":"No name"}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "invalid_name", errorCode(t, resp))

	resp = env.do(t, http.MethodDelete, "/products/"+id+"/", "", true)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = env.do(t, http.MethodGet, "/products/"+id+"/", "", false)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	resp = env.do(t, http.MethodGet, "/productcoupon/"+couponID+"/", "", false)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCouponEndpoints(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	acme := env.createProduct(t, "Acme")
	other := env.createProduct(t, "Other")
	id := env.createCoupon(t, acme, "ACME10")
	env.createCoupon(t, other, "OTHER5")

	resp := env.do(t, http.MethodGet, "/productcoupon/", "", false)
	require.Equal(t, http.StatusOK, resp.Code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	resp = env.do(t, http.MethodGet, "/productcoupon/?product="+acme, "", false)
	require.Equal(t, http.StatusOK, resp.Code)
	var filtered []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, id, filtered[0]["id"])

	resp = env.do(t, http.MethodPost, "/productcoupon/"+id+"/like/", "", false)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"likes":1}`, resp.Body.String())

	resp = env.do(t, http.MethodPost, "/productcoupon/"+id+"/dislike/", "", false)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"dislikes":1}`, resp.Body.String())

	resp = env.do(t, http.MethodPatch, "/productcoupon/"+id+"/", `{"title":"15% off"}`, true)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "15% off", decode(t, resp)["title"])

	resp = env.do(t, http.MethodPost, "/productcoupon/", fmt.Sprintf(`{"product":%q,"title":"dup","code":"ACME10","discount":"5"}`, acme), true)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "duplicate_code", errorCode(t, resp))

	resp = env.do(t, http.MethodPost, "/productcoupon/", `{"product":"12345","title":"x","discount":"5"}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "product_not_found", errorCode(t, resp))

	resp = env.do(t, http.MethodPost, "/productcoupon/999/use/", "", false)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = env.do(t, http.MethodDelete, "/productcoupon/"+id+"/", "", true)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	resp = env.do(t, http.MethodGet, "/productcoupon/"+id+"/", "", false)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUseInvalidatesCachedDetail(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	id := env.createCoupon(t, env.createProduct(t, "Acme"), "ACME10")

	resp := env.do(t, http.MethodGet, "/productcoupon/"+id+"/", "", false)
	require.Equal(t, http.StatusOK, resp.Code)
	sid, err := snowflake.ParseString(id)
	require.NoError(t, err)
	_, found, err := env.store.Get(context.Background(), cache.CouponDetailKey(sid.Int64()))
	require.NoError(t, err)
	require.True(t, found)

	resp = env.do(t, http.MethodPost, "/productcoupon/"+id+"/use/", "", false)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = env.do(t, http.MethodGet, "/productcoupon/"+id+"/", "", false)
	assert.EqualValues(t, 1, decode(t, resp)["used_today"])
}

func TestCouponCreateRefreshesProductShopNowURL(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	productID := env.createProduct(t, "Acme")

	resp := env.do(t, http.MethodGet, "/products/"+productID+"/", "", false)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Nil(t, decode(t, resp)["product_shop_now_url"])
	resp = env.do(t, http.MethodGet, "/products/", "", false)
	require.Equal(t, http.StatusOK, resp.Code)

	body := fmt.Sprintf(`{"product":%q,"title":"10%% off","discount":"10%%","shop_now_url":"https://acme.example/deal"}`, productID)
	resp = env.do(t, http.MethodPost, "/productcoupon/", body, true)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = env.do(t, http.MethodGet, "/products/"+productID+"/", "", false)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "https://acme.example/deal", decode(t, resp)["product_shop_now_url"])

	resp = env.do(t, http.MethodGet, "/products/", "", false)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "https://acme.example/deal", list[0]["product_shop_now_url"])
}

func TestStandaloneCouponEndpoints(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	body := `{"title":"Welcome","code":"WELCOME10","discount":"12.5","expiry_date":"2024-12-31"}`

	resp := env.do(t, http.MethodPost, "/coupons/", body, false)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = env.do(t, http.MethodPost, "/coupons/", body, true)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decode(t, resp)
	assert.Equal(t, "12.50", created["discount"])
	id := created["id"].(string)

	resp = env.do(t, http.MethodPost, "/coupons/", body, true)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "duplicate_code", errorCode(t, resp))

	resp = env.do(t, http.MethodPost, "/coupons/", `{"title":"x","code":"X","discount":10,"expiry_date":"soon"}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "invalid_expiry_date", errorCode(t, resp))

	resp = env.do(t, http.MethodGet, "/coupons/", "", false)
	require.Equal(t, http.StatusOK, resp.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list, 1)

	resp = env.do(t, http.MethodPatch, "/coupons/"+id+"/", `{"discount":20}`, true)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = env.do(t, http.MethodGet, "/coupons/"+id+"/", "", false)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "20.00", decode(t, resp)["discount"])

	resp = env.do(t, http.MethodDelete, "/coupons/"+id+"/", "", true)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	resp = env.do(t, http.MethodGet, "/coupons/"+id+"/", "", false)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	resp = env.do(t, http.MethodGet, "/coupons/abc/", "", false)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestResetDailyUsage(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	id := env.createCoupon(t, env.createProduct(t, "Acme"), "ACME10")
	env.do(t, http.MethodPost, "/productcoupon/"+id+"/use/", "", false)
	env.do(t, http.MethodPost, "/productcoupon/"+id+"/use/", "", false)

	resp := env.do(t, http.MethodPost, "/productcoupon/reset_daily_usage/", "", true)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.JSONEq(t, `{"reset":1}`, resp.Body.String())

	resp = env.do(t, http.MethodGet, "/productcoupon/"+id+"/", "", false)
	detail := decode(t, resp)
	assert.EqualValues(t, 0, detail["used_today"])
	assert.EqualValues(t, 2, detail["used_count"])
}

func TestCounterRateLimit(t *testing.T) {
	env := newTestEnv(t, config.Config{
		RateLimit: config.RateLimitConfig{Enabled: true, CounterRate: 0.01, CounterBurst: 2},
	})
	id := env.createCoupon(t, env.createProduct(t, "Acme"), "ACME10")

	for i := 0; i < 2; i++ {
		resp := env.do(t, http.MethodPost, "/productcoupon/"+id+"/like/", "", false)
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := env.do(t, http.MethodPost, "/productcoupon/"+id+"/like/", "", false)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", errorCode(t, resp))

	resp = env.do(t, http.MethodGet, "/productcoupon/"+id+"/", "", false)
	assert.EqualValues(t, 2, decode(t, resp)["likes"])
}

func TestSubmitStore(t *testing.T) {
	env := newTestEnv(t, config.Config{})

	env.mailer.EXPECT().
		Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg email.Message) error {
			assert.Equal(t, "New Store Submission", msg.Subject)
			assert.Equal(t, []string{"owner@example.com"}, msg.To)
			assert.Contains(t, msg.TextBody, "Store: Acme")
			return nil
		})

	resp := env.do(t, http.MethodPost, "/submitstore/", `{"store_name":"Acme","website":"https://acme.test","discount_code":"ACME10","description":"great"}`, false)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"success":true}`, resp.Body.String())
}

func TestSubmitStoreDeliveryFailure(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	env.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

	resp := env.do(t, http.MethodPost, "/submitstore/", `{"store_name":"Acme","website":"https://acme.test"}`, false)
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	body := decode(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "smtp down", body["error"])
}

func TestSubmitStoreValidation(t *testing.T) {
	env := newTestEnv(t, config.Config{})

	resp := env.do(t, http.MethodPost, "/submitstore/", `{"website":"https://acme.test"}`, false)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "invalid_store_name", errorCode(t, resp))
}

func TestSitemapAndHome(t *testing.T) {
	env := newTestEnv(t, config.Config{})
	id := env.createProduct(t, "Acme")

	resp := env.do(t, http.MethodGet, "/sitemap.xml", "", false)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Type"), "application/xml")
	assert.Contains(t, resp.Body.String(), fmt.Sprintf("<loc>https://deals.example.com/store/%s/acme/</loc>", id))
	assert.Contains(t, resp.Body.String(), "<loc>https://deals.example.com/submit-store/</loc>")

	resp = env.do(t, http.MethodGet, "/", "", false)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, welcomeMessage, resp.Body.String())
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{apikeydomain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{gorm.ErrRecordNotFound, http.StatusNotFound, "not_found"},
		{ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{ErrServiceUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{apikeydomain.ErrInvalidName, http.StatusBadRequest, "validation_error"},
	}
	for _, tc := range cases {
		status, payload := mapError(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.kind, payload.Type, tc.err.Error())
	}

	kind, code := classifyErrorForLog(apikeydomain.ErrInvalidKeyID)
	assert.Equal(t, "validation_error", kind)
	assert.Equal(t, "invalid_key_id", code)
	assert.Equal(t, "key_id", validationErrorField(code))
}

func TestCORSConfig(t *testing.T) {
	all := corsConfig(config.Config{CORSAllowedOrigins: []string{"*"}})
	assert.True(t, all.AllowAllOrigins)
	assert.Empty(t, all.AllowOrigins)

	some := corsConfig(config.Config{CORSAllowedOrigins: []string{"https://deals.example.com"}})
	assert.False(t, some.AllowAllOrigins)
	assert.Equal(t, []string{"https://deals.example.com"}, some.AllowOrigins)
	assert.Contains(t, some.AllowHeaders, "Authorization")
}
