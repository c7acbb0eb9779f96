package logger

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Config selects the logger profile.
type Config struct {
	ServiceName string
	Environment string
}

// New builds the process logger: JSON in production, console otherwise.
// The returned logger is also installed as the zap global so FromContext
// works everywhere.
func New(cfg Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if strings.EqualFold(cfg.Environment, "production") {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	log, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(cfg.ServiceName)
	if name != "" {
		log = log.With(zap.String("service", name))
	}
	zap.ReplaceGlobals(log)
	return log, nil
}

// FromContext returns the global logger enriched with the active span's
// trace and span ids.
func FromContext(ctx context.Context) *zap.Logger {
	log := zap.L()
	span := trace.SpanContextFromContext(ctx)
	if span.IsValid() {
		log = log.With(
			zap.String("trace_id", span.TraceID().String()),
			zap.String("span_id", span.SpanID().String()),
		)
	}
	return log
}
