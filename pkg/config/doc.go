// Package config provides configuration management for the item service.
//
// Configuration is loaded from an optional YAML file, then overridden from
// the environment. A .env file in the working directory is read first and
// never replaces variables already set in the process.
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Environment Variables
//
//   - ENVIRONMENT: development, production or testing
//   - DEBUG: enables debug-only behavior
//   - LOG_LEVEL: minimum level for debug and info records
//   - OTLP_ENDPOINT: trace collector endpoint
//   - OTEL_SERVICE_NAME: service.name resource attribute
//   - CORS_ORIGINS: allowed origins, comma separated or as a JSON list
//   - ITEMSVC_*: listen address, database path, thresholds, skip paths
//
// # Hot Reload
//
// Watcher follows the configuration file and hands every valid new
// configuration to a callback. The service applies the log level from it;
// exporter settings are read once at startup.
package config
