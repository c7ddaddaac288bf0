package config

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ResourceTTL is the lifetime of the cached list and detail representations of one resource.
type ResourceTTL struct {
	ListTTL   time.Duration `mapstructure:"listTTL"`
	DetailTTL time.Duration `mapstructure:"detailTTL"`
}

type CacheTTLConfig struct {
	Products ResourceTTL `mapstructure:"products"`
	Coupons  ResourceTTL `mapstructure:"coupons"`
}

func DefaultCacheTTLConfig() CacheTTLConfig {
	return CacheTTLConfig{
		Products: ResourceTTL{ListTTL: 15 * time.Minute, DetailTTL: 15 * time.Minute},
		Coupons:  ResourceTTL{ListTTL: 60 * time.Second, DetailTTL: 60 * time.Second},
	}
}

type CacheTTLHolder struct {
	current atomic.Value // holds CacheTTLConfig
}

// NewStaticCacheTTLHolder returns a holder that never reloads.
func NewStaticCacheTTLHolder(cfg CacheTTLConfig) *CacheTTLHolder {
	holder := &CacheTTLHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewCacheTTLHolder() (*CacheTTLHolder, error) {
	v := newCacheTTLViper()
	v.SetConfigName("cache")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/eragon")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	watch := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		watch = false
	}

	cfg, err := readCacheTTLConfig(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticCacheTTLHolder(cfg)
	if !watch {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := readCacheTTLConfig(v)
		if err != nil {
			log.Printf("[cache-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[cache-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// newCacheTTLViper binds the ERAGON_CACHE_* environment and the defaults, in seconds.
func newCacheTTLViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("ERAGON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultCacheTTLConfig()
	v.SetDefault("cache.products.listTTL", int(defaults.Products.ListTTL/time.Second))
	v.SetDefault("cache.products.detailTTL", int(defaults.Products.DetailTTL/time.Second))
	v.SetDefault("cache.coupons.listTTL", int(defaults.Coupons.ListTTL/time.Second))
	v.SetDefault("cache.coupons.detailTTL", int(defaults.Coupons.DetailTTL/time.Second))
	return v
}

func (h *CacheTTLHolder) Get() CacheTTLConfig {
	return h.current.Load().(CacheTTLConfig)
}

func readCacheTTLConfig(v *viper.Viper) (CacheTTLConfig, error) {
	var cfg CacheTTLConfig
	fields := []struct {
		key string
		dst *time.Duration
	}{
		{"cache.products.listTTL", &cfg.Products.ListTTL},
		{"cache.products.detailTTL", &cfg.Products.DetailTTL},
		{"cache.coupons.listTTL", &cfg.Coupons.ListTTL},
		{"cache.coupons.detailTTL", &cfg.Coupons.DetailTTL},
	}
	for _, f := range fields {
		ttl, err := parseTTL(v.Get(f.key))
		if err != nil {
			return CacheTTLConfig{}, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = ttl
	}
	if err := validateCacheTTLConfig(cfg); err != nil {
		return CacheTTLConfig{}, err
	}
	return cfg, nil
}

// parseTTL reads a bare number as seconds. Strings must either be a number
// or a duration with an explicit unit such as "90s" or "15m".
func parseTTL(raw interface{}) (time.Duration, error) {
	switch val := raw.(type) {
	case nil:
		return 0, errors.New("missing ttl")
	case time.Duration:
		return val, nil
	case int:
		return time.Duration(val) * time.Second, nil
	case int64:
		return time.Duration(val) * time.Second, nil
	case uint64:
		return time.Duration(val) * time.Second, nil
	case float64:
		return time.Duration(val * float64(time.Second)), nil
	case string:
		trimmed := strings.TrimSpace(val)
		if secs, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
		d, err := time.ParseDuration(trimmed)
		if err != nil {
			return 0, fmt.Errorf("invalid ttl %q", val)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("invalid ttl %v", raw)
	}
}

func validateCacheTTLConfig(cfg CacheTTLConfig) error {
	checks := map[string]time.Duration{
		"cache.products.listTTL":   cfg.Products.ListTTL,
		"cache.products.detailTTL": cfg.Products.DetailTTL,
		"cache.coupons.listTTL":    cfg.Coupons.ListTTL,
		"cache.coupons.detailTTL":  cfg.Coupons.DetailTTL,
	}
	for key, ttl := range checks {
		if ttl <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	if cfg.Coupons.ListTTL > 24*time.Hour || cfg.Coupons.DetailTTL > 24*time.Hour {
		return errors.New("coupon cache ttl must not exceed one day")
	}
	return nil
}
