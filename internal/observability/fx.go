package observability

import (
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/wxgate/internal/config"
	"github.com/smallbiznis/wxgate/internal/observability/logger"
	"github.com/smallbiznis/wxgate/internal/observability/metrics"
	"github.com/smallbiznis/wxgate/internal/observability/tracing"
)

var version = "dev"

// Module wires the logger, tracer provider, and HTTP metrics.
var Module = fx.Module("observability",
	fx.Provide(func(cfg config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			ServiceName: cfg.ServiceName,
			Environment: cfg.Environment,
		})
	}),
	fx.Provide(func(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*sdktrace.TracerProvider, error) {
		return tracing.NewProvider(lc, tracing.Config{
			Enabled:          cfg.Telemetry.TracingEnabled,
			ServiceName:      cfg.ServiceName,
			ServiceVersion:   version,
			Environment:      cfg.Environment,
			ExporterEndpoint: cfg.Telemetry.ExporterEndpoint,
			ExporterProtocol: cfg.Telemetry.ExporterProtocol,
			SamplingRatio:    cfg.Telemetry.SamplingRatio,
		}, log)
	}),
	fx.Provide(func(cfg config.Config, _ *sdktrace.TracerProvider) (*metrics.HTTPMetrics, error) {
		return metrics.NewHTTPMetrics(metrics.Config{
			ServiceName: cfg.ServiceName,
			Environment: cfg.Environment,
		}, otel.GetMeterProvider())
	}),
	fx.Provide(func(cfg config.Config) *metrics.NotifyMetrics {
		return metrics.NotifyWithConfig(metrics.Config{
			ServiceName: cfg.ServiceName,
			Environment: cfg.Environment,
		})
	}),
)
