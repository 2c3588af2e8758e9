package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики (общие для всех сервисов)
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Пример запроса PromQL: rate(http_requests_total{service="catalog-service"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Database Метрики
// =============================================================================

var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "table"},
)

var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis Метрики
// =============================================================================

var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"},
)

var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"},
)

// =============================================================================
// Business Метрики
// =============================================================================

// --- Catalog Service ---

// CategoriesCreated - категории, созданные через пакетное назначение
var CategoriesCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "catalog_categories_created_total",
		Help: "Total number of categories created by assignment batches",
	},
)

// CategoryAssignmentOutcomes - исходы по каждому товару в пакете
var CategoryAssignmentOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_category_assignment_outcomes_total",
		Help: "Per-product outcomes of category assignment batches",
	},
	[]string{"status"}, // success, skipped_already_member, failed
)

// PricingWarnings - предупреждения о качестве данных цены
var PricingWarnings = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_pricing_warnings_total",
		Help: "Data-quality warnings raised while deriving prices",
	},
	[]string{"kind"}, // zero_price_with_discount, stock_flag_mismatch
)

// PricingAuditRuns - запуски фонового аудита цен
var PricingAuditRuns = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_pricing_audit_runs_total",
		Help: "Total number of pricing audit runs",
	},
	[]string{"status"}, // success, failed
)

// --- Reviews Service ---

// ReviewModerationTransitions - переходы модерации отзывов
var ReviewModerationTransitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reviews_moderation_transitions_total",
		Help: "Review moderation transitions by action and result",
	},
	[]string{"action", "result"}, // action: approve, reject; result: applied, noop, illegal, failed
)
