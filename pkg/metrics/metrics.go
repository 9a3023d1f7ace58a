package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор Prometheus-метрик сервиса
// Все методы безопасны для вызова на nil (метрики выключены)
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	bookingsCreated     *prometheus.CounterVec
	bookingConflicts    *prometheus.CounterVec
	bookingsCancelled   prometheus.Counter
	slotLockWait        prometheus.Histogram
}

// New создает метрики и регистрирует их в глобальном реестре Prometheus
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики и регистрирует их в переданном реестре
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests.",
				ConstLabels: constLabels,
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "HTTP request latency.",
				ConstLabels: constLabels,
				Buckets:     prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		bookingsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "bookings_created_total",
				Help:        "Appointments created, by service.",
				ConstLabels: constLabels,
			},
			[]string{"service_id"},
		),
		bookingConflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "booking_conflicts_total",
				Help:        "Booking attempts rejected because the slot was taken, by service.",
				ConstLabels: constLabels,
			},
			[]string{"service_id"},
		),
		bookingsCancelled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "bookings_cancelled_total",
				Help:        "Appointments cancelled.",
				ConstLabels: constLabels,
			},
		),
		slotLockWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:        "slot_lock_wait_seconds",
				Help:        "Time spent waiting for a slot lock.",
				ConstLabels: constLabels,
				Buckets:     []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
		),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.bookingsCreated,
		m.bookingConflicts,
		m.bookingsCancelled,
		m.slotLockWait,
	)

	return m
}

// ObserveHTTPRequest учитывает завершенный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) IncBookingCreated(serviceID string) {
	if m == nil {
		return
	}
	m.bookingsCreated.WithLabelValues(serviceID).Inc()
}

func (m *Metrics) IncBookingConflict(serviceID string) {
	if m == nil {
		return
	}
	m.bookingConflicts.WithLabelValues(serviceID).Inc()
}

func (m *Metrics) IncBookingCancelled() {
	if m == nil {
		return
	}
	m.bookingsCancelled.Inc()
}

// ObserveSlotLockWait учитывает время ожидания блокировки слота
func (m *Metrics) ObserveSlotLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.slotLockWait.Observe(d.Seconds())
}
