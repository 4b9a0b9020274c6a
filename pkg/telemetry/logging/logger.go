package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"simpleapp/itemsvc/pkg/apperr"
)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON LogFormat = "json"
	// FormatText outputs logs in plain text format.
	FormatText LogFormat = "text"
)

// LoggerName is attached to every record.
const LoggerName = "app"

// FieldsKey groups the caller's extra fields in every record.
const FieldsKey = "otel"

// level pairs a slog level with the name used for span events.
type level struct {
	slog slog.Level
	name string
}

var (
	levelDebug   = level{slog.LevelDebug, "debug"}
	levelInfo    = level{slog.LevelInfo, "info"}
	levelWarning = level{slog.LevelWarn, "warning"}
	levelError   = level{slog.LevelError, "error"}
)

// ExceptionRecorder observes exceptions that pass the logging policy.
type ExceptionRecorder interface {
	RecordException(class string)
}

// Config contains configuration for the Logger.
type Config struct {
	// Level is the minimum level for debug and info records
	// ("debug", "info", "warn", "error").
	Level string

	// Format is the output format ("json", "text").
	Format string

	// AddSource includes file and line number in records.
	AddSource bool

	// Environment selects the exception logging policy.
	Environment string

	// Policy overrides the default redaction policy.
	Policy *RedactionPolicy

	// Recorder is notified of every logged exception. Optional.
	Recorder ExceptionRecorder

	// Writer is the output writer (defaults to os.Stdout).
	Writer io.Writer
}

// Logger writes level-gated structured records, mirrors them onto the span
// current in the call's context, and masks sensitive fields in both.
//
// Debug and Info are emitted only when the minimum level allows them.
// Warn, Warning and Error always emit.
type Logger struct {
	slog       *slog.Logger
	level      *slog.LevelVar
	format     LogFormat
	redactor   *Redactor
	exceptions *ExceptionPolicy
	recorder   ExceptionRecorder
	sink       *sink
}

// New creates a new Logger with the given configuration.
func New(cfg Config) (*Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}
	out := &sink{writer: writer}

	policy := DefaultPolicy()
	if cfg.Policy != nil {
		policy = *cfg.Policy
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(lvl)

	// Gating happens in Logger; the handler accepts everything it is given.
	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch format {
	case FormatText:
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	return &Logger{
		slog:       slog.New(handler).With("logger", LoggerName),
		level:      levelVar,
		format:     format,
		redactor:   NewRedactor(policy),
		exceptions: NewExceptionPolicy(cfg.Environment),
		recorder:   cfg.Recorder,
		sink:       out,
	}, nil
}

// Debug logs a debug record if the minimum level allows it.
func (l *Logger) Debug(ctx context.Context, msg string, extra map[string]any) {
	if l.gated(levelDebug) {
		return
	}
	l.emit(ctx, levelDebug, msg, extra)
}

// Info logs an info record if the minimum level allows it.
func (l *Logger) Info(ctx context.Context, msg string, extra map[string]any) {
	if l.gated(levelInfo) {
		return
	}
	l.emit(ctx, levelInfo, msg, extra)
}

// Warn logs a warning record.
func (l *Logger) Warn(ctx context.Context, msg string, extra map[string]any) {
	l.emit(ctx, levelWarning, msg, extra)
}

// Warning is an alias for Warn.
func (l *Logger) Warning(ctx context.Context, msg string, extra map[string]any) {
	l.emit(ctx, levelWarning, msg, extra)
}

// Error logs an error record and marks the current span as failed.
func (l *Logger) Error(ctx context.Context, msg string, extra map[string]any) {
	l.emit(ctx, levelError, msg, extra)
}

// Exception logs err at error level with a stack trace and records it on the
// current span, unless the exception policy filters its class out.
//
// An empty msg defaults to "Exception: <err>". The record's fields gain
// exception_type and source, the function that called Exception.
func (l *Logger) Exception(ctx context.Context, err error, msg string, extra map[string]any) {
	if err == nil {
		return
	}
	class := apperr.ClassOf(err)
	if !l.exceptions.ShouldLog(class) {
		return
	}
	source := callerName(1)

	defer l.isolate()

	if msg == "" {
		msg = "Exception: " + err.Error()
	}

	fields := l.redactor.Redact(extra)
	if fields == nil {
		fields = make(map[string]any, 2)
	}
	fields["exception_type"] = class
	fields["source"] = source

	l.write(ctx, levelError, msg, fields,
		slog.String("error", err.Error()),
		slog.String("stacktrace", string(debug.Stack())),
	)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.RecordError(err, trace.WithStackTrace(true))
		span.SetStatus(codes.Error, err.Error())
	}

	if l.recorder != nil {
		l.recorder.RecordException(class)
	}
}

// ShouldLogException reports whether Exception would log err.
func (l *Logger) ShouldLogException(err error) bool {
	return err != nil && l.exceptions.ShouldLog(apperr.ClassOf(err))
}

// SetLevel changes the minimum level for debug and info records.
func (l *Logger) SetLevel(levelStr string) error {
	lvl, err := ParseLevel(levelStr)
	if err != nil {
		return err
	}
	l.level.Set(lvl)
	return nil
}

// Level returns the current minimum level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Slog returns a *slog.Logger writing to the same sink, for libraries and
// startup code that log through the standard interface.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// DroppedCount returns the number of records the sink failed to write.
func (l *Logger) DroppedCount() int64 {
	return l.sink.dropped.Load()
}

func (l *Logger) gated(lvl level) bool {
	return lvl.slog < l.level.Level()
}

func (l *Logger) emit(ctx context.Context, lvl level, msg string, extra map[string]any) {
	defer l.isolate()

	fields := l.redactor.Redact(extra)
	l.write(ctx, lvl, msg, fields)
	l.mirror(ctx, lvl, msg, fields)
}

func (l *Logger) write(ctx context.Context, lvl level, msg string, fields map[string]any, attrs ...slog.Attr) {
	corr := correlationFields(ctx)
	all := make([]slog.Attr, 0, len(corr)/2+len(attrs)+1)
	for i := 0; i+1 < len(corr); i += 2 {
		all = append(all, slog.Any(corr[i].(string), corr[i+1]))
	}
	all = append(all, attrs...)
	if len(fields) > 0 {
		all = append(all, slog.Any(FieldsKey, fields))
	}
	l.slog.LogAttrs(ctx, lvl.slog, msg, all...)
}

// mirror copies a record onto the current span: one log.<key> attribute per
// field and an event named after the level.
func (l *Logger) mirror(ctx context.Context, lvl level, msg string, fields map[string]any) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if len(fields) > 0 {
		attrs := make([]attribute.KeyValue, 0, len(fields))
		for k, v := range fields {
			attrs = append(attrs, attribute.String("log."+k, stringify(v)))
		}
		span.SetAttributes(attrs...)
	}

	span.AddEvent(lvl.name, trace.WithAttributes(attribute.String("message", msg)))

	if lvl == levelError {
		span.SetStatus(codes.Error, msg)
	}
}

// isolate keeps a failure inside the logging path away from the caller.
func (l *Logger) isolate() {
	if r := recover(); r != nil {
		l.sink.dropped.Add(1)
	}
}

// stringify renders a field value for a string span attribute.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case error:
		return t.Error()
	case fmt.Stringer:
		return t.String()
	case map[string]any, []any:
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}

// sink writes formatted records and counts the ones it could not write.
type sink struct {
	writer  io.Writer
	dropped atomic.Int64
}

func (s *sink) Write(p []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.dropped.Add(1)
			n, err = len(p), nil
		}
	}()
	if _, werr := s.writer.Write(p); werr != nil {
		s.dropped.Add(1)
	}
	return len(p), nil
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", levelStr)
	}
}

// parseFormat parses a log format string into LogFormat.
func parseFormat(formatStr string) (LogFormat, error) {
	switch strings.ToLower(formatStr) {
	case "json", "":
		return FormatJSON, nil
	case "text", "console":
		return FormatText, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format: %s", formatStr)
	}
}
