// Package metrics содержит счётчики Prometheus для API и фоновых задач.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics объединяет метрики процесса.
type Metrics struct {
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	RateLimitHits          prometheus.Counter
	PaymentsCreated        *prometheus.CounterVec
	GatewayErrors          *prometheus.CounterVec
	NotificationsPublished prometheus.Counter
	SubscriptionToggles    *prometheus.CounterVec
	IntentsRecovered       *prometheus.CounterVec
}

// New регистрирует метрики в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lms",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lms",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RateLimitHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lms",
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
		PaymentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lms",
			Name:      "payments_created_total",
			Help:      "Payments recorded by method.",
		}, []string{"method"}),
		GatewayErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lms",
			Name:      "gateway_errors_total",
			Help:      "Payment provider failures by operation.",
		}, []string{"operation"}),
		NotificationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lms",
			Name:      "notifications_published_total",
			Help:      "Course update emails enqueued.",
		}),
		SubscriptionToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lms",
			Name:      "subscription_toggles_total",
			Help:      "Subscription toggles by result.",
		}, []string{"action"}),
		IntentsRecovered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lms",
			Name:      "payment_intents_swept_total",
			Help:      "Payment intents handled by the sweeper by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RateLimitHits,
		m.PaymentsCreated,
		m.GatewayErrors,
		m.NotificationsPublished,
		m.SubscriptionToggles,
		m.IntentsRecovered,
	)
	return m
}

// Middleware считает запросы и их длительность по шаблону маршрута chi.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
