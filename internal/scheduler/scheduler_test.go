package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/smallbiznis/eragon/internal/clock"
	coupondomain "github.com/smallbiznis/eragon/internal/coupon/domain"
	obsmetrics "github.com/smallbiznis/eragon/internal/observability/metrics"
	"github.com/smallbiznis/eragon/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCoupons struct {
	coupondomain.Service
	calls    atomic.Int32
	affected int64
	err      error
}

func (f *fakeCoupons) ResetDailyUsage(context.Context) (int64, error) {
	f.calls.Add(1)
	return f.affected, f.err
}

func newTestScheduler(t *testing.T, fake *clock.FakeClock, coupons coupondomain.Service, locker *ratelimit.Locker, loc *time.Location) (*Scheduler, *prometheus.Registry) {
	t.Helper()

	registry := prometheus.NewRegistry()
	oldRegisterer := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = registry
	t.Cleanup(func() { prometheus.DefaultRegisterer = oldRegisterer })

	jobMetrics, err := obsmetrics.NewJobMetrics(obsmetrics.Config{ServiceName: "eragon", Environment: "test"})
	require.NoError(t, err)

	s, err := New(Params{
		Log:     zap.NewNop(),
		Coupons: coupons,
		Locker:  locker,
		Clock:   fake,
		Config:  Config{Location: loc},
		Metrics: jobMetrics,
	})
	require.NoError(t, err)
	return s, registry
}

func counterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.Metric {
			if labelsMatch(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(metric *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, pair := range metric.GetLabel() {
		if want, ok := labels[pair.GetName()]; ok {
			if want != pair.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(labels)
}

func TestRunOnceWaitsForDateChange(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC))
	coupons := &fakeCoupons{affected: 4}
	s, registry := newTestScheduler(t, fake, coupons, ratelimit.NewLocker(nil), time.UTC)
	ctx := context.Background()

	ran, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, ran, "starting mid-day must not reset")

	fake.Advance(9 * time.Hour)
	ran, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, int32(1), coupons.calls.Load())

	ran, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, ran)

	assert.Equal(t, float64(1), counterValue(t, registry, "eragon_job_runs_total", map[string]string{"job": jobDailyReset, "result": obsmetrics.JobResultSuccess}))
	assert.Equal(t, float64(4), counterValue(t, registry, "eragon_job_rows_affected_total", map[string]string{"job": jobDailyReset}))
}

func TestRunOnceUsesReferenceTimezone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	// 03:00 UTC on June 2 is still June 1 at UTC-5.
	fake := clock.NewFakeClock(time.Date(2024, 6, 2, 3, 0, 0, 0, time.UTC))
	coupons := &fakeCoupons{}
	s, _ := newTestScheduler(t, fake, coupons, ratelimit.NewLocker(nil), loc)

	fake.Advance(time.Hour)
	ran, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)

	fake.Advance(1 * time.Hour)
	ran, err = s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestRunOnceSkipsWhenPeerHoldsLock(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC))
	locker := ratelimit.NewLocker(nil)
	first := &fakeCoupons{}
	second := &fakeCoupons{}
	a, registry := newTestScheduler(t, fake, first, locker, time.UTC)
	b, err := New(Params{Log: zap.NewNop(), Coupons: second, Locker: locker, Clock: fake})
	require.NoError(t, err)

	fake.Advance(time.Hour)
	ranA, err := a.RunOnce(context.Background())
	require.NoError(t, err)
	ranB, err := b.RunOnce(context.Background())
	require.NoError(t, err)

	assert.True(t, ranA)
	assert.False(t, ranB)
	assert.Equal(t, int32(1), first.calls.Load())
	assert.Equal(t, int32(0), second.calls.Load())
	assert.Equal(t, float64(1), counterValue(t, registry, "eragon_job_runs_total", map[string]string{"job": jobDailyReset, "result": obsmetrics.JobResultSuccess}))
}

func TestRunOnceReportsFailure(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC))
	boom := errors.New("db down")
	s, registry := newTestScheduler(t, fake, &fakeCoupons{err: boom}, ratelimit.NewLocker(nil), time.UTC)

	fake.Advance(time.Hour)
	ran, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, ran)
	assert.Equal(t, float64(1), counterValue(t, registry, "eragon_job_runs_total", map[string]string{"job": jobDailyReset, "result": obsmetrics.JobResultError}))
}

func TestRunOnceRetriesAfterFailure(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC))
	coupons := &fakeCoupons{err: errors.New("db down"), affected: 2}
	s, registry := newTestScheduler(t, fake, coupons, ratelimit.NewLocker(nil), time.UTC)
	ctx := context.Background()

	fake.Advance(time.Hour)
	_, err := s.RunOnce(ctx)
	require.Error(t, err)

	coupons.err = nil
	ran, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, ran, "the lock must be released and the date left unclaimed")
	assert.Equal(t, int32(2), coupons.calls.Load())

	ran, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Equal(t, float64(1), counterValue(t, registry, "eragon_job_runs_total", map[string]string{"job": jobDailyReset, "result": obsmetrics.JobResultSuccess}))
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
