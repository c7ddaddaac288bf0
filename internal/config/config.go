package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	// Timezone is the reference timezone used to decide which calendar day a coupon use belongs to.
	Timezone           string
	SiteDomain         string
	CORSAllowedOrigins []string
	AdminAPIKey        string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	Cache      CacheDriverConfig
	Email      EmailConfig
	RateLimit  RateLimitConfig
	DailyReset DailyResetConfig

	OTLPEndpoint string
}

type CacheDriverConfig struct {
	Driver        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	Recipients   []string
}

type RateLimitConfig struct {
	Enabled      bool
	CounterRate  float64
	CounterBurst int
}

type DailyResetConfig struct {
	Enabled       bool
	CheckInterval time.Duration
}

const (
	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
	CacheDriverNone   = "none"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:            getenv("APP_SERVICE", "eragon"),
		AppVersion:         getenv("APP_VERSION", "0.1.0"),
		Environment:        getenv("ENVIRONMENT", "development"),
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		Timezone:           getenv("APP_TIMEZONE", "UTC"),
		SiteDomain:         strings.TrimSpace(getenv("SITE_DOMAIN", "localhost:5173")),
		CORSAllowedOrigins: parseList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		AdminAPIKey:        strings.TrimSpace(getenv("ADMIN_API_KEY", "")),
		OTLPEndpoint:       getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "eragon"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "eragon.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 600),

		Cache: CacheDriverConfig{
			Driver:        normalizeCacheDriver(getenv("CACHE_DRIVER", CacheDriverRedis)),
			RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "127.0.0.1:6379")),
			RedisPassword: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			RedisDB:       getenvInt("REDIS_DB", 1),
			KeyPrefix:     strings.TrimSpace(getenv("CACHE_KEY_PREFIX", "coupon_backend_cache")),
		},
		Email: EmailConfig{
			SMTPHost:     getenv("SMTP_HOST", "localhost"),
			SMTPPort:     getenvInt("SMTP_PORT", 587),
			SMTPUsername: strings.TrimSpace(getenv("SMTP_USERNAME", "")),
			SMTPPassword: strings.TrimSpace(getenv("SMTP_PASSWORD", "")),
			SMTPFrom:     strings.TrimSpace(getenv("SMTP_FROM", "no-reply@localhost")),
			Recipients:   parseList(getenv("SUBMISSION_RECIPIENTS", "")),
		},
		RateLimit: RateLimitConfig{
			Enabled:      getenvBool("RATE_LIMIT_ENABLED", false),
			CounterRate:  getenvFloat("RATE_LIMIT_COUNTER_RATE", 1),
			CounterBurst: getenvInt("RATE_LIMIT_COUNTER_BURST", 10),
		},
		DailyReset: DailyResetConfig{
			Enabled:       getenvBool("DAILY_RESET_ENABLED", false),
			CheckInterval: time.Duration(getenvInt("DAILY_RESET_CHECK_INTERVAL", 60)) * time.Second,
		},
	}

	return cfg
}

// Location resolves the reference timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func normalizeCacheDriver(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case CacheDriverMemory, CacheDriverNone:
		return value
	default:
		return CacheDriverRedis
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
