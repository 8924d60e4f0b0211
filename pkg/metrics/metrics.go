package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	KafkaMessagesConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Number of messages fetched from Kafka",
		},
		[]string{"topic"},
	)
	KafkaMessagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_processed_total",
			Help: "Number of messages processed successfully",
		},
		[]string{"topic"},
	)
	KafkaMessagesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_failed_total",
			Help: "Number of messages failed to process",
		},
		[]string{"topic"},
	)
	OrdersPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_published_total",
			Help: "Order events written to Kafka",
		},
		[]string{"result"}, // ok|error
	)
)

var (
	CartOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Cart accessor operations",
		},
		[]string{"op", "result"}, // op: add|update|bulk|get|clear; result: ok|invalid|unavailable
	)
	CartRestores = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_fallback_restores_total",
			Help: "Cache misses on GetCart by outcome",
		},
		[]string{"result"}, // restored|empty|error
	)
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache operations",
		},
		[]string{"op"}, // hit|miss|evicted|expired
	)
	CacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Number of carts currently in the in-memory cache",
		},
	)
)

var (
	DirtyUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cart_dirty_users",
			Help: "Dirty set size seen at the start of the last reconcile run",
		},
	)
	ReconcileRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_reconcile_runs_total",
			Help: "Reconcile runs by outcome",
		},
		[]string{"result"}, // completed|skipped|failed
	)
	ReconcileUsers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_reconcile_users_total",
			Help: "Per-user flushes by outcome",
		},
		[]string{"result"}, // synced|failed
	)
	ReconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cart_reconcile_duration_seconds",
			Help:    "Duration of a reconcile run",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
	)
	Checkouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_checkouts_total",
			Help: "Checkout attempts by outcome",
		},
		[]string{"result"}, // ok|empty|not_found|invalid|unavailable|failed
	)
)

// HTTP
var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status class",
		},
		[]string{"method", "route", "code"}, // code: 2xx|4xx|5xx
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP handler latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

var registerOnce sync.Once

// MustRegister — регистрирует метрики в default registry; повторный вызов ничего не делает.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			KafkaMessagesConsumed, KafkaMessagesProcessed, KafkaMessagesFailed, OrdersPublished,
			CartOps, CartRestores, CacheOps, CacheSize,
			DirtyUsers, ReconcileRuns, ReconcileUsers, ReconcileDuration, Checkouts,
			HTTPRequests, HTTPDuration,
		)
	})
}
