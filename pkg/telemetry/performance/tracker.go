package performance

import (
	"context"
	"fmt"
	"time"

	"simpleapp/itemsvc/pkg/config"
	"simpleapp/itemsvc/pkg/telemetry/logging"
)

// Tracker measures time since its creation for checkpoints inside an
// operation that do not need a span of their own.
type Tracker struct {
	logger    *logging.Logger
	threshold time.Duration
	recorder  SlowRecorder
	start     time.Time
	now       func() time.Time
}

// NewTracker starts a tracker. A threshold of zero or less uses the default
// function threshold.
func NewTracker(logger *logging.Logger, threshold time.Duration) *Tracker {
	return newTracker(logger, threshold, nil, time.Now)
}

// NewTracker starts a tracker that shares the guard's logger and recorder.
func (g *Guard) NewTracker(threshold time.Duration) *Tracker {
	if threshold <= 0 {
		threshold = g.threshold
	}
	return newTracker(g.logger, threshold, g.recorder, g.now)
}

func newTracker(logger *logging.Logger, threshold time.Duration, recorder SlowRecorder, now func() time.Time) *Tracker {
	if threshold <= 0 {
		threshold = config.DefaultFunctionThreshold
	}
	return &Tracker{
		logger:    logger,
		threshold: threshold,
		recorder:  recorder,
		start:     now(),
		now:       now,
	}
}

// Elapsed returns the time since the tracker started.
func (t *Tracker) Elapsed() time.Duration {
	return t.now().Sub(t.start)
}

// CheckAndLog logs a warning with extra and elapsed_ms when more than the
// threshold has passed since the tracker started. It reports whether it did.
func (t *Tracker) CheckAndLog(ctx context.Context, operation string, extra map[string]any) bool {
	elapsed := t.Elapsed()
	if elapsed <= t.threshold {
		return false
	}

	ms := milliseconds(elapsed)
	fields := make(map[string]any, len(extra)+1)
	for k, v := range extra {
		fields[k] = v
	}
	fields["elapsed_ms"] = ms

	t.logger.Warning(ctx, fmt.Sprintf("slow operation: %s took %.2fms", operation, ms), fields)
	if t.recorder != nil {
		t.recorder.RecordSlowOperation(KindCheckpoint, operation)
	}
	return true
}
