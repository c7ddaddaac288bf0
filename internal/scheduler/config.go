package scheduler

import (
	"time"

	"github.com/smallbiznis/eragon/internal/config"
)

// Config controls the daily reset loop.
type Config struct {
	Enabled       bool
	CheckInterval time.Duration
	JobTimeout    time.Duration
	// LockTTL outlives the day so peers that wake late still see the date as taken.
	LockTTL  time.Duration
	Location *time.Location
}

func DefaultConfig() Config {
	return Config{
		CheckInterval: time.Minute,
		JobTimeout:    5 * time.Minute,
		LockTTL:       26 * time.Hour,
		Location:      time.UTC,
	}
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		Enabled:       cfg.DailyReset.Enabled,
		CheckInterval: cfg.DailyReset.CheckInterval,
		Location:      cfg.Location(),
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.CheckInterval <= 0 {
		c.CheckInterval = defaults.CheckInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	if c.Location == nil {
		c.Location = defaults.Location
	}
	return c
}
