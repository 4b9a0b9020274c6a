package config

import "time"

// Config is the root configuration structure for the item service.
type Config struct {
	// App contains deployment-wide settings.
	App AppConfig `yaml:"app"`

	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS.
	Server ServerConfig `yaml:"server"`

	// Database contains the item store configuration.
	Database DatabaseConfig `yaml:"database"`

	// Cache contains the item read cache configuration.
	Cache CacheConfig `yaml:"cache"`

	// Telemetry contains configuration for observability including logging,
	// metrics, tracing, and health checks.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Instrumentation contains the request and function instrumentation
	// policy: which paths are traced and when operations count as slow.
	Instrumentation InstrumentationConfig `yaml:"instrumentation"`
}

// AppConfig contains deployment-wide settings.
type AppConfig struct {
	// Name is the human-readable service name.
	// Default: "SimpleFastAPIApp"
	Name string `yaml:"name"`

	// Environment is the deployment environment.
	// Options: "development", "production", "testing"
	// Default: "development"
	Environment string `yaml:"environment"`

	// Debug enables debug-only behavior.
	// Default: false
	Debug bool `yaml:"debug"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8000"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response writes.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains Cross-Origin Resource Sharing configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are added.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins lists the origins allowed to call the API.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods lists the allowed HTTP methods.
	// Default: ["*"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders lists the allowed request headers.
	// Default: ["*"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// AllowCredentials allows cookies and auth headers.
	// Default: true
	AllowCredentials bool `yaml:"allow_credentials"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 600
	MaxAge int `yaml:"max_age"`
}

// DatabaseConfig contains the SQLite item store configuration.
type DatabaseConfig struct {
	// Path is the SQLite database file. ":memory:" keeps data in memory.
	// Default: "data/items.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// MaxOpenConns limits open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`
}

// CacheConfig contains the item read cache configuration.
type CacheConfig struct {
	// Enabled controls whether item reads are cached.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// TTL is how long a cached item stays valid.
	// Default: 300s
	TTL time.Duration `yaml:"ttl"`

	// MaxItems bounds the number of cached items.
	// Default: 10000
	MaxItems int64 `yaml:"max_items"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum level for debug and info records.
	// Options: "debug", "info", "warn", "warning", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in records.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// SensitiveFields replaces the key fragments that mark a field as
	// sensitive. Empty keeps the built-in list.
	SensitiveFields []string `yaml:"sensitive_fields"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "itemsvc"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "http"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets defines histogram buckets for request duration (seconds).
	// Default: [0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`

	// MaxPathCardinality bounds the distinct path label values.
	// Default: 100
	MaxPathCardinality int `yaml:"max_path_cardinality"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP/gRPC collector endpoint, with or without scheme.
	// Default: "http://localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service.name resource attribute.
	// Default: "simplefastapiapp"
	ServiceName string `yaml:"service_name"`

	// ServiceVersion is the service.version resource attribute.
	// Default: "0.1.0"
	ServiceVersion string `yaml:"service_version"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// LivenessPath is the path for the liveness probe.
	// Default: "/health/live"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe.
	// Default: "/health/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// HealthPath is the path for the aggregate health report.
	// Default: "/health"
	HealthPath string `yaml:"health_path"`

	// CheckTimeout bounds each dependency check.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// InstrumentationConfig contains the request and function instrumentation policy.
type InstrumentationConfig struct {
	// SkipPaths are path prefixes that bypass request tracing entirely.
	// Default: ["/health", "/metrics", "/static", "/favicon.ico"]
	SkipPaths []string `yaml:"skip_paths"`

	// SlowRequestThreshold is the elapsed time above which a request is
	// logged as slow.
	// Default: 1s
	SlowRequestThreshold time.Duration `yaml:"slow_request_threshold"`

	// FunctionThreshold is the default threshold of the performance guard.
	// Default: 500ms
	FunctionThreshold time.Duration `yaml:"function_threshold"`

	// ServiceThreshold is the threshold applied to item service operations.
	// Default: 200ms
	ServiceThreshold time.Duration `yaml:"service_threshold"`
}
