package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"simpleapp/itemsvc/pkg/config"
)

// OtherPath replaces path labels once the cardinality limit is reached.
const OtherPath = "other"

// Collector owns every Prometheus metric of the item service.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics   *RequestMetrics
	operationMetrics *OperationMetrics
	cacheMetrics     *CacheMetrics

	paths *CardinalityLimiter
}

// NewCollector creates a collector registering its metrics on registry.
// A nil registry gets a fresh one.
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle("/metrics", collector.Handler())
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = config.DefaultRequestDurationBuckets()
	}
	if cfg.MaxPathCardinality <= 0 {
		cfg.MaxPathCardinality = config.DefaultMaxPathCardinality
	}

	return &Collector{
		config:           cfg,
		registry:         registry,
		requestMetrics:   NewRequestMetrics(cfg, registry),
		operationMetrics: NewOperationMetrics(cfg, registry),
		cacheMetrics:     NewCacheMetrics(cfg, registry),
		paths:            NewCardinalityLimiter(cfg.MaxPathCardinality),
	}
}

// RecordRequest records a completed HTTP request.
func (c *Collector) RecordRequest(method, path string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	if !c.paths.Allow(path) {
		path = OtherPath
	}
	c.requestMetrics.RecordRequest(method, path, strconv.Itoa(status), duration)
}

// RecordSlowOperation counts an operation that exceeded its threshold.
// kind is "request", "function" or "checkpoint".
func (c *Collector) RecordSlowOperation(kind, name string) {
	if !c.config.Enabled {
		return
	}
	if kind == "request" && !c.paths.Allow(name) {
		name = OtherPath
	}
	c.operationMetrics.RecordSlow(kind, name)
}

// RecordException counts an exception that passed the logging policy.
func (c *Collector) RecordException(class string) {
	if !c.config.Enabled {
		return
	}
	c.operationMetrics.RecordException(class)
}

// RecordCacheHit records a cache hit.
func (c *Collector) RecordCacheHit(cacheName string) {
	if !c.config.Enabled {
		return
	}
	c.cacheMetrics.RecordHit(cacheName)
}

// RecordCacheMiss records a cache miss.
func (c *Collector) RecordCacheMiss(cacheName string) {
	if !c.config.Enabled {
		return
	}
	c.cacheMetrics.RecordMiss(cacheName)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter bounds the number of distinct values a label may take.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting at most maxCardinality values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is already tracked or still fits under the limit.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
