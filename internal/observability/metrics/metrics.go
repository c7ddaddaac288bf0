package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics holds the domain instruments.
type Metrics struct {
	couponEvents      metric.Int64Counter
	cacheLookups      metric.Int64Counter
	cacheInvalidation metric.Int64Counter
	rateLimitDenied   metric.Int64Counter
}

// NewProvider registers the global meter provider, a noop one when export is disabled.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))),
	)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return provider.Shutdown(ctx)
			},
		})
	}
	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "eragon"
	}
	meter := provider.Meter(name)

	couponEvents, err := meter.Int64Counter("eragon_coupon_events_total",
		metric.WithDescription("Coupon counter increments by action"))
	if err != nil {
		return nil, err
	}
	cacheLookups, err := meter.Int64Counter("eragon_cache_lookups_total",
		metric.WithDescription("Read-through cache lookups by resource and result"))
	if err != nil {
		return nil, err
	}
	cacheInvalidation, err := meter.Int64Counter("eragon_cache_invalidations_total",
		metric.WithDescription("Cache keys deleted by change hooks"))
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("eragon_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		couponEvents:      couponEvents,
		cacheLookups:      cacheLookups,
		cacheInvalidation: cacheInvalidation,
		rateLimitDenied:   rateLimitDenied,
	}, nil
}

// RecordCouponEvent counts a use, like or dislike.
func (m *Metrics) RecordCouponEvent(ctx context.Context, action string) {
	if m == nil {
		return
	}
	m.couponEvents.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("action", action),
	)...))
}

func (m *Metrics) RecordCacheLookup(ctx context.Context, resource string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("resource", resource),
		attribute.String("result", result),
	)...))
}

func (m *Metrics) RecordCacheInvalidation(ctx context.Context, entity string, keys int) {
	if m == nil || keys <= 0 {
		return
	}
	m.cacheInvalidation.Add(ctx, int64(keys), metric.WithAttributes(FilterAttributes(
		attribute.String("entity", entity),
	)...))
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("endpoint", endpoint),
	)...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"action":   {},
	"resource": {},
	"result":   {},
	"entity":   {},
	"endpoint": {},
}

// FilterAttributes drops labels outside the allowlist so ids never become metric dimensions.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; ok {
			filtered = append(filtered, attr)
		}
	}
	return filtered
}
