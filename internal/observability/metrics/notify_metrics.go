package metrics

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Notification outcome labels.
const (
	OutcomeVerified          = "verified"
	OutcomeDuplicate         = "duplicate"
	OutcomeMalformed         = "malformed"
	OutcomeBusinessFailure   = "business_failure"
	OutcomeSignatureMismatch = "signature_mismatch"
	OutcomeInternalError     = "internal_error"
)

// NotifyMetrics counts inbound gateway notification outcomes.
type NotifyMetrics struct {
	notificationsTotal *prometheus.CounterVec
	verifyDuration     prometheus.Histogram
}

var (
	notifyMetricsOnce sync.Once
	notifyMetrics     *NotifyMetrics
)

func Notify() *NotifyMetrics {
	return NotifyWithConfig(Config{})
}

func NotifyWithConfig(cfg Config) *NotifyMetrics {
	notifyMetricsOnce.Do(func() {
		notifyMetrics = newNotifyMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return notifyMetrics
}

func ResetNotifyMetricsForTest() {
	notifyMetricsOnce = sync.Once{}
	notifyMetrics = nil
}

func newNotifyMetrics(registerer prometheus.Registerer, cfg Config) *NotifyMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "wxgate"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	notificationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "gateway_notifications_total",
			Help:        "Inbound gateway notifications by terminal outcome.",
			ConstLabels: constLabels,
		},
		[]string{"outcome"},
	)

	verifyDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "gateway_notification_handle_duration_seconds",
			Help:        "Time spent decoding and verifying one notification.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		},
	)

	notificationsTotal = registerCounterVec(registerer, notificationsTotal)
	verifyDuration = registerHistogram(registerer, verifyDuration)

	return &NotifyMetrics{
		notificationsTotal: notificationsTotal,
		verifyDuration:     verifyDuration,
	}
}

// ObserveOutcome records one terminal notification outcome.
func (m *NotifyMetrics) ObserveOutcome(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(outcome).Inc()
	m.verifyDuration.Observe(duration.Seconds())
}

func registerCounterVec(registerer prometheus.Registerer, collector *prometheus.CounterVec) *prometheus.CounterVec {
	if err := registerer.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if ok := errors.As(err, &already); ok {
			if existing, okExisting := already.ExistingCollector.(*prometheus.CounterVec); okExisting {
				return existing
			}
		}
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, collector prometheus.Histogram) prometheus.Histogram {
	if err := registerer.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if ok := errors.As(err, &already); ok {
			if existing, okExisting := already.ExistingCollector.(prometheus.Histogram); okExisting {
				return existing
			}
		}
	}
	return collector
}
