package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/univdir/universities-api/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

type AppMetrics struct {
	repoOpCounter         metric.Int64Counter
	authFlowCounter       metric.Int64Counter
	authReqDuration       metric.Float64Histogram
	universityOpCounter   metric.Int64Counter
	universityOpDuration  metric.Float64Histogram
	queueDepth            metric.Int64UpDownCounter
	queueWaitDuration     metric.Float64Histogram
	ingestRunCounter      metric.Int64Counter
	ingestRunDuration     metric.Float64Histogram
	ingestRecordCount     metric.Int64Counter
	mailCounter           metric.Int64Counter
	rateLimitCounter      metric.Int64Counter
	healthCheckCounter    metric.Int64Counter
	healthCheckDuration   metric.Float64Histogram
	listCacheEventCounter metric.Int64Counter
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)

	m, err := newAppMetrics(mp.Meter("universities-api"))
	if err != nil {
		return nil, err
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func newAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	m := &AppMetrics{}
	var err error
	if m.repoOpCounter, err = meter.Int64Counter("db.repository.operations"); err != nil {
		return nil, err
	}
	if m.authFlowCounter, err = meter.Int64Counter("auth.flow.events"); err != nil {
		return nil, err
	}
	if m.authReqDuration, err = meter.Float64Histogram("auth.request.duration"); err != nil {
		return nil, err
	}
	if m.universityOpCounter, err = meter.Int64Counter("university.operations"); err != nil {
		return nil, err
	}
	if m.universityOpDuration, err = meter.Float64Histogram("university.operation.duration"); err != nil {
		return nil, err
	}
	if m.queueDepth, err = meter.Int64UpDownCounter("university.queue.depth"); err != nil {
		return nil, err
	}
	if m.queueWaitDuration, err = meter.Float64Histogram("university.queue.wait.duration"); err != nil {
		return nil, err
	}
	if m.ingestRunCounter, err = meter.Int64Counter("ingest.runs"); err != nil {
		return nil, err
	}
	if m.ingestRunDuration, err = meter.Float64Histogram("ingest.run.duration"); err != nil {
		return nil, err
	}
	if m.ingestRecordCount, err = meter.Int64Counter("ingest.records"); err != nil {
		return nil, err
	}
	if m.mailCounter, err = meter.Int64Counter("mail.send.events"); err != nil {
		return nil, err
	}
	if m.rateLimitCounter, err = meter.Int64Counter("http.rate_limit.decisions"); err != nil {
		return nil, err
	}
	if m.healthCheckCounter, err = meter.Int64Counter("health.check.results"); err != nil {
		return nil, err
	}
	if m.healthCheckDuration, err = meter.Float64Histogram("health.check.duration"); err != nil {
		return nil, err
	}
	if m.listCacheEventCounter, err = meter.Int64Counter("university.list.cache.events"); err != nil {
		return nil, err
	}
	return m, nil
}

func current() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

func RecordRepositoryOperation(ctx context.Context, entity, op, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.repoOpCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

func RecordAuthEvent(ctx context.Context, flow, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.authFlowCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("flow", flow),
		attribute.String("outcome", outcome),
	))
}

func RecordAuthRequestDuration(ctx context.Context, endpoint, status string, d time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.authReqDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", status),
	))
}

func RecordUniversityOperation(ctx context.Context, op, outcome string, d time.Duration) {
	m := current()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	)
	m.universityOpCounter.Add(ctx, 1, attrs)
	m.universityOpDuration.Record(ctx, d.Seconds(), attrs)
}

func RecordQueueDepth(ctx context.Context, delta int64) {
	m := current()
	if m == nil {
		return
	}
	m.queueDepth.Add(ctx, delta)
}

func RecordQueueWait(ctx context.Context, op string, d time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.queueWaitDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("operation", op),
	))
}

func RecordIngestRun(ctx context.Context, outcome string, d time.Duration) {
	m := current()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.ingestRunCounter.Add(ctx, 1, attrs)
	m.ingestRunDuration.Record(ctx, d.Seconds(), attrs)
}

func RecordIngestRecords(ctx context.Context, stage string, count int64) {
	m := current()
	if m == nil {
		return
	}
	m.ingestRecordCount.Add(ctx, count, metric.WithAttributes(
		attribute.String("stage", stage),
	))
}

func RecordMailEvent(ctx context.Context, template, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.mailCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("template", template),
		attribute.String("outcome", outcome),
	))
}

func RecordRateLimitDecision(ctx context.Context, scope, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.rateLimitCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.healthCheckCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckDuration(ctx context.Context, check string, d time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.healthCheckDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("check", check),
	))
}

func RecordListCacheEvent(ctx context.Context, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.listCacheEventCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
