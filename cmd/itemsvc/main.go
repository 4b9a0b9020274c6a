// itemsvc serves a small item CRUD API with request tracing, structured
// logging, Prometheus metrics and health probes.
//
// Usage:
//
//	# Start server with default configuration
//	itemsvc run
//
//	# Start with custom configuration file
//	itemsvc run --config /path/to/config.yaml
//
//	# Validate configuration without serving
//	itemsvc run --dry-run
//
//	# Show version information
//	itemsvc version --output json
package main

func main() {
	Execute()
}
