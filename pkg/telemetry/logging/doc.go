// Package logging provides level-gated structured logging correlated with
// the active trace span.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON or text records tagged with logger "app"
//   - Masking of sensitive fields before they reach the sink or a span
//   - Mirroring of every record onto the span current in the context
//   - An exception path filtered by error class and environment
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:       "info",
//	    Format:      "json",
//	    Environment: "production",
//	})
//
//	logger.Info(ctx, "Item created successfully", map[string]any{
//	    "item_id":  42,
//	    "password": "hunter2", // written as ********
//	})
//
//	logger.Exception(ctx, err, "", nil)
//
// # Levels
//
// Debug and Info records are dropped below the minimum level. Warn, Warning
// and Error records are always written, whatever the level.
//
// # Redaction
//
// A field is sensitive when its key contains one of DefaultSensitiveFragments,
// ignoring case. Non-empty sensitive values become Mask. Nested maps and
// slices of maps are redacted recursively.
//
// # Spans
//
// When the context carries a recording span, each record sets log.<key>
// attributes on it and adds an event named after the level. Error records
// set the span status to Error. Exception records the error on the span.
package logging
