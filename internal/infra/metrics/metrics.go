// Package metrics exports Prometheus collectors for SMS dispatch, OTP
// outcomes and the HTTP API.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"smsnotify/internal/common"
	"smsnotify/internal/domain/notification"
	"smsnotify/internal/domain/otp"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smsnotify"

var (
	_ notification.Observer = (*Metrics)(nil)
	_ otp.Observer          = (*Metrics)(nil)
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	gatherer prometheus.Gatherer

	Deliveries       *prometheus.CounterVec
	DeliveryDuration *prometheus.HistogramVec
	OTPIssued        prometheus.Counter
	OTPVerifications *prometheus.CounterVec
	RequestCounter   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

// New registers the collectors on reg. Passing a fresh registry keeps
// tests isolated from the global default.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		Deliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliveries_total",
				Help:      "SMS dispatch outcomes by channel, template and status",
			},
			[]string{"channel", "template", "status"},
		),
		DeliveryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "delivery_duration_seconds",
				Help:      "Time spent in the provider call",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"channel"},
		),
		OTPIssued: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "otp",
				Name:      "issued_total",
				Help:      "One-time passcodes sent",
			},
		),
		OTPVerifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "otp",
				Name:      "verifications_total",
				Help:      "Verification attempts by outcome",
			},
			[]string{"outcome"},
		),
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Delivered counts a successful send.
func (m *Metrics) Delivered(_ context.Context, d *notification.Delivery) {
	m.Deliveries.WithLabelValues(d.Result.Channel, d.Request.TemplateID, "sent").Inc()
	m.DeliveryDuration.WithLabelValues(d.Result.Channel).Observe(d.Duration.Seconds())
}

// Failed counts a provider failure.
func (m *Metrics) Failed(_ context.Context, d *notification.Delivery) {
	m.Deliveries.WithLabelValues(d.Result.Channel, d.Request.TemplateID, "failed").Inc()
	m.DeliveryDuration.WithLabelValues(d.Result.Channel).Observe(d.Duration.Seconds())
}

// Issued counts a sent passcode.
func (m *Metrics) Issued(context.Context, string) {
	m.OTPIssued.Inc()
}

// Verified counts a verification by outcome.
func (m *Metrics) Verified(_ context.Context, _ string, err error) {
	m.OTPVerifications.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, common.ErrCodeMismatch):
		return "mismatch"
	case errors.Is(err, common.ErrCodeExpired):
		return "expired"
	case errors.Is(err, common.ErrAttemptsExhausted):
		return "exhausted"
	case errors.Is(err, common.ErrNoActiveChallenge):
		return "no_challenge"
	default:
		return "error"
	}
}

// Middleware records request counts and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestCounter.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
