package service

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Booking outcomes recorded on booking_attempts_total.
const (
	OutcomeConfirmed        = "confirmed"
	OutcomeSlotUnavailable  = "slot_unavailable"
	OutcomeInvalidEmployee  = "invalid_employee"
	OutcomeNotConfigured    = "schedule_not_configured"
	OutcomeRejected         = "rejected"
	OutcomeCancelled        = "cancelled"
	OutcomeAlreadyCancelled = "already_cancelled"
)

// MetricsService owns the Prometheus registry of the booking API.
// All methods are safe on a nil receiver.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	cacheOps      *prometheus.CounterVec
	cacheDuration *prometheus.HistogramVec
	cacheHitRatio prometheus.Gauge
	cacheHits     atomic.Uint64
	cacheLoads    atomic.Uint64

	bookingOutcomes      *prometheus.CounterVec
	notificationFailures *prometheus.CounterVec
	notificationSent     *prometheus.CounterVec
}

// NewMetricsService registers the HTTP, schedule cache, booking and notification collectors
// plus the Go runtime and process collectors.
func NewMetricsService() *MetricsService {
	m := &MetricsService{registry: prometheus.NewRegistry()}

	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"method", "route"})
	m.requestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	m.cacheOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_cache_operations_total",
		Help: "Schedule cache operations by kind and result",
	}, []string{"op", "result"})
	m.cacheDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_cache_duration_seconds",
		Help:    "Latency of schedule cache operations",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
	}, []string{"op"})
	m.cacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_cache_hit_ratio",
		Help: "Share of schedule loads served from the cache",
	})

	m.bookingOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_attempts_total",
		Help: "Booking and cancellation attempts by outcome",
	}, []string{"outcome"})
	m.notificationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_failures_total",
		Help: "Notification deliveries that failed, by job type and stage",
	}, []string{"type", "stage"})
	m.notificationSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Notification jobs completed, by job type",
	}, []string{"type"})

	m.registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheOps, m.cacheDuration, m.cacheHitRatio,
		m.bookingOutcomes, m.notificationFailures, m.notificationSent,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the registry over HTTP. A nil service answers 503.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// TrackQueueDepth exports the number of buffered jobs of a worker queue.
func (m *MetricsService) TrackQueueDepth(queue string, depth func() int) {
	if m == nil || depth == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "job_queue_depth",
		Help:        "Jobs waiting in a worker queue",
		ConstLabels: prometheus.Labels{"queue": queue},
	}, func() float64 { return float64(depth()) }))
}

// ObserveHTTPRequest records one request under its route pattern.
func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// ObserveScheduleCache records a schedule cache operation. Loads also move the hit ratio.
func (m *MetricsService) ObserveScheduleCache(op, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheOps.WithLabelValues(op, result).Inc()
	m.cacheDuration.WithLabelValues(op).Observe(duration.Seconds())
	if op != "load" {
		return
	}
	loads := m.cacheLoads.Add(1)
	hits := m.cacheHits.Load()
	if result == cacheHit {
		hits = m.cacheHits.Add(1)
	}
	m.cacheHitRatio.Set(float64(hits) / float64(loads))
}

// RecordBookingOutcome counts a booking or cancellation attempt.
func (m *MetricsService) RecordBookingOutcome(outcome string) {
	if m == nil {
		return
	}
	m.bookingOutcomes.WithLabelValues(outcome).Inc()
}

// RecordNotificationFailure counts a failed delivery step. Stage is "email", "event" or "enqueue".
func (m *MetricsService) RecordNotificationFailure(jobType, stage string) {
	if m == nil {
		return
	}
	m.notificationFailures.WithLabelValues(jobType, stage).Inc()
}

// RecordNotificationSent counts a notification job that completed.
func (m *MetricsService) RecordNotificationSent(jobType string) {
	if m == nil {
		return
	}
	m.notificationSent.WithLabelValues(jobType).Inc()
}
