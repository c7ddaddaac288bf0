package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CACHE_DRIVER", "")
	t.Setenv("APP_TIMEZONE", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, CacheDriverRedis, cfg.Cache.Driver)
	assert.Equal(t, "coupon_backend_cache", cfg.Cache.KeyPrefix)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CACHE_DRIVER", "Memory")
	t.Setenv("SUBMISSION_RECIPIENTS", "a@example.com, b@example.com,")
	t.Setenv("RATE_LIMIT_ENABLED", "yes")
	t.Setenv("DAILY_RESET_CHECK_INTERVAL", "5")

	cfg := Load()

	assert.Equal(t, CacheDriverMemory, cfg.Cache.Driver)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Email.Recipients)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 5*time.Second, cfg.DailyReset.CheckInterval)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := Config{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestValidateCacheTTLConfig(t *testing.T) {
	require.NoError(t, validateCacheTTLConfig(DefaultCacheTTLConfig()))

	cfg := DefaultCacheTTLConfig()
	cfg.Products.ListTTL = 0
	assert.Error(t, validateCacheTTLConfig(cfg))

	cfg = DefaultCacheTTLConfig()
	cfg.Coupons.DetailTTL = 48 * time.Hour
	assert.Error(t, validateCacheTTLConfig(cfg))
}

func TestStaticCacheTTLHolder(t *testing.T) {
	holder := NewStaticCacheTTLHolder(DefaultCacheTTLConfig())
	assert.Equal(t, 60*time.Second, holder.Get().Coupons.ListTTL)
	assert.Equal(t, 15*time.Minute, holder.Get().Products.DetailTTL)
}

func loadCacheTTLFile(t *testing.T, body string) (CacheTTLConfig, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	v := newCacheTTLViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	return readCacheTTLConfig(v)
}

func TestCacheTTLFileValuesAreSeconds(t *testing.T) {
	cfg, err := loadCacheTTLFile(t, `
cache:
  products:
    listTTL: 900
  coupons:
    listTTL: 60
    detailTTL: 90s
`)
	require.NoError(t, err)

	assert.Equal(t, 900*time.Second, cfg.Products.ListTTL)
	assert.Equal(t, 15*time.Minute, cfg.Products.DetailTTL)
	assert.Equal(t, 60*time.Second, cfg.Coupons.ListTTL)
	assert.Equal(t, 90*time.Second, cfg.Coupons.DetailTTL)
}

func TestCacheTTLEnvValuesAreSeconds(t *testing.T) {
	t.Setenv("ERAGON_CACHE_COUPONS_LISTTTL", "60")
	t.Setenv("ERAGON_CACHE_PRODUCTS_DETAILTTL", "2m")

	cfg, err := readCacheTTLConfig(newCacheTTLViper())
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.Coupons.ListTTL)
	assert.Equal(t, 2*time.Minute, cfg.Products.DetailTTL)
	assert.Equal(t, DefaultCacheTTLConfig().Coupons.DetailTTL, cfg.Coupons.DetailTTL)
}

func TestCacheTTLRejectsUnitlessGarbage(t *testing.T) {
	_, err := loadCacheTTLFile(t, `
cache:
  coupons:
    listTTL: soon
`)
	assert.Error(t, err)
}
