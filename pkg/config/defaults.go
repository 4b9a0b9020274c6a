package config

import "time"

// Default values for configuration fields.
const (
	// App defaults
	DefaultAppName     = "SimpleFastAPIApp"
	DefaultEnvironment = EnvironmentDevelopment

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8000"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultCORSMaxAge      = 600

	// Database defaults
	DefaultDatabasePath         = "data/items.db"
	DefaultDatabaseBusyTimeout  = 5 * time.Second
	DefaultDatabaseMaxOpenConns = 10

	// Cache defaults
	DefaultCacheTTL      = 300 * time.Second
	DefaultCacheMaxItems = int64(10000)

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "itemsvc"
	DefaultMetricsSubsystem   = "http"
	DefaultMaxPathCardinality = 100
	DefaultOTLPEndpoint       = "http://localhost:4317"
	DefaultServiceName        = "simplefastapiapp"
	DefaultServiceVersion     = "0.1.0"
	DefaultOTLPTimeout        = 10 * time.Second
	DefaultLivenessPath       = "/health/live"
	DefaultReadinessPath      = "/health/ready"
	DefaultHealthPath         = "/health"
	DefaultCheckTimeout       = 5 * time.Second

	// Instrumentation defaults
	DefaultSlowRequestThreshold = time.Second
	DefaultFunctionThreshold    = 500 * time.Millisecond
	DefaultServiceThreshold     = 200 * time.Millisecond
)

// Environments accepted in AppConfig.Environment.
const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
	EnvironmentTesting     = "testing"
)

// DefaultSkipPaths are the path prefixes that bypass request tracing.
func DefaultSkipPaths() []string {
	return []string{"/health", "/metrics", "/static", "/favicon.ico"}
}

// DefaultRequestDurationBuckets are the request duration histogram buckets.
func DefaultRequestDurationBuckets() []float64 {
	return []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			CORS: CORSConfig{Enabled: true, AllowCredentials: true},
		},
		Cache: CacheConfig{Enabled: true},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: true},
			Tracing: TracingConfig{Enabled: true, OTLP: OTLPConfig{Insecure: true}},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every unset field with its default value.
// Boolean fields cannot be told apart from an explicit false and are left as-is;
// Default and the loaders seed them before parsing.
func ApplyDefaults(cfg *Config) {
	applyAppDefaults(&cfg.App)
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyCacheDefaults(&cfg.Cache)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyInstrumentationDefaults(&cfg.Instrumentation)
}

func applyAppDefaults(cfg *AppConfig) {
	if cfg.Name == "" {
		cfg.Name = DefaultAppName
	}
	if cfg.Environment == "" {
		cfg.Environment = DefaultEnvironment
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.MaxHeaderBytes == 0 {
		cfg.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = []string{"*"}
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = []string{"*"}
	}
	if cfg.CORS.MaxAge == 0 {
		cfg.CORS.MaxAge = DefaultCORSMaxAge
	}
}

func applyDatabaseDefaults(cfg *DatabaseConfig) {
	if cfg.Path == "" {
		cfg.Path = DefaultDatabasePath
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = DefaultDatabaseBusyTimeout
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = DefaultDatabaseMaxOpenConns
	}
}

func applyCacheDefaults(cfg *CacheConfig) {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultCacheTTL
	}
	if cfg.MaxItems == 0 {
		cfg.MaxItems = DefaultCacheMaxItems
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Metrics.RequestDurationBuckets) == 0 {
		cfg.Metrics.RequestDurationBuckets = DefaultRequestDurationBuckets()
	}
	if cfg.Metrics.MaxPathCardinality == 0 {
		cfg.Metrics.MaxPathCardinality = DefaultMaxPathCardinality
	}

	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = DefaultOTLPEndpoint
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultServiceName
	}
	if cfg.Tracing.ServiceVersion == "" {
		cfg.Tracing.ServiceVersion = DefaultServiceVersion
	}
	if cfg.Tracing.OTLP.Timeout == 0 {
		cfg.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}

	if cfg.Health.LivenessPath == "" {
		cfg.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Health.ReadinessPath == "" {
		cfg.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Health.HealthPath == "" {
		cfg.Health.HealthPath = DefaultHealthPath
	}
	if cfg.Health.CheckTimeout == 0 {
		cfg.Health.CheckTimeout = DefaultCheckTimeout
	}
}

func applyInstrumentationDefaults(cfg *InstrumentationConfig) {
	if cfg.SkipPaths == nil {
		cfg.SkipPaths = DefaultSkipPaths()
	}
	if cfg.SlowRequestThreshold == 0 {
		cfg.SlowRequestThreshold = DefaultSlowRequestThreshold
	}
	if cfg.FunctionThreshold == 0 {
		cfg.FunctionThreshold = DefaultFunctionThreshold
	}
	if cfg.ServiceThreshold == 0 {
		cfg.ServiceThreshold = DefaultServiceThreshold
	}
}
