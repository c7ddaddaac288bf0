package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/smallbiznis/eragon/internal/clock"
	coupondomain "github.com/smallbiznis/eragon/internal/coupon/domain"
	obsmetrics "github.com/smallbiznis/eragon/internal/observability/metrics"
	"github.com/smallbiznis/eragon/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	jobDailyReset     = "daily_usage_reset"
	keyDailyResetLock = "coupon:daily_reset:%s"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log     *zap.Logger
	Coupons coupondomain.Service
	Locker  *ratelimit.Locker
	Clock   clock.Clock
	Config  Config
	Metrics *obsmetrics.JobMetrics `optional:"true"`
}

// Scheduler runs the bulk used_today reset once per reference-timezone day.
// The lazy rollover on each use stays authoritative; this only keeps idle
// coupons from reporting yesterday's count.
type Scheduler struct {
	log     *zap.Logger
	cfg     Config
	coupons coupondomain.Service
	locker  *ratelimit.Locker
	clock   clock.Clock
	metrics *obsmetrics.JobMetrics

	mu       sync.Mutex
	lastDate string
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Coupons == nil || p.Locker == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	s := &Scheduler{
		log:     p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:     cfg,
		coupons: p.Coupons,
		locker:  p.Locker,
		clock:   p.Clock,
		metrics: p.Metrics,
	}
	// Starting mid-day must not wipe the counters of the current day.
	s.lastDate = s.currentDate()
	return s, nil
}

func (s *Scheduler) currentDate() string {
	return s.clock.Now().In(s.cfg.Location).Format("2006-01-02")
}

// RunOnce triggers the reset when the reference date moved since the last check.
// It reports whether this instance performed the reset. A failed attempt leaves
// the date unclaimed so the next tick retries it.
func (s *Scheduler) RunOnce(parent context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := s.currentDate()
	if date == s.lastDate {
		return false, nil
	}

	log := s.log.With(zap.String("job", jobDailyReset), zap.String("date", date))
	start := s.clock.Now()

	key := fmt.Sprintf(keyDailyResetLock, date)
	token, acquired, err := s.locker.TryLock(parent, key, s.cfg.LockTTL)
	if err != nil {
		s.metrics.ObserveRun(jobDailyReset, obsmetrics.ClassifyJobError(err), s.clock.Now().Sub(start), 0)
		return false, fmt.Errorf("%s: lock: %w", jobDailyReset, err)
	}
	if !acquired {
		log.Debug("daily reset already claimed by another instance")
		s.metrics.ObserveRun(jobDailyReset, obsmetrics.JobResultSkipped, s.clock.Now().Sub(start), 0)
		s.lastDate = date
		return false, nil
	}

	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	affected, err := s.coupons.ResetDailyUsage(ctx)
	took := s.clock.Now().Sub(start)
	s.metrics.ObserveRun(jobDailyReset, obsmetrics.ClassifyJobError(err), took, affected)
	if err != nil {
		log.Warn("daily reset failed", zap.Duration("took", took), zap.Error(err))
		if relErr := s.locker.Release(parent, key, token); relErr != nil {
			log.Warn("daily reset lock release failed", zap.Error(relErr))
		}
		return false, fmt.Errorf("%s: %w", jobDailyReset, err)
	}

	s.lastDate = date
	log.Info("daily reset finished", zap.Int64("coupons", affected), zap.Duration("took", took))
	return true, nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
	}
}
