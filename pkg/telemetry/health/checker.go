package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"simpleapp/itemsvc/pkg/config"
	"simpleapp/itemsvc/pkg/telemetry/logging"
)

// Dependency and overall health statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc is a function that performs a health check for a dependency.
// It returns nil if the dependency is healthy. An error wrapping
// ErrDegraded marks it degraded, any other error unhealthy.
type CheckFunc func(ctx context.Context) error

var (
	// ErrCheckTimeout is reported when a health check outlives its timeout.
	ErrCheckTimeout = errors.New("health check timeout")

	// ErrDegraded marks a check failure that does not make the service unhealthy.
	ErrDegraded = errors.New("degraded")
)

// Degraded wraps err so the check reports a degraded dependency.
func Degraded(err error) error {
	return fmt.Errorf("%w: %w", ErrDegraded, err)
}

// Dependency is the result of one dependency check.
type Dependency struct {
	Name           string         `json:"name"`
	Status         string         `json:"status"`
	ResponseTimeMS float64        `json:"response_time_ms"`
	LastChecked    time.Time      `json:"last_checked"`
	Details        map[string]any `json:"details,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// Report is the aggregate health of the service.
type Report struct {
	Status        string       `json:"status"`
	Version       string       `json:"version"`
	Timestamp     time.Time    `json:"timestamp"`
	UptimeSeconds float64      `json:"uptime_seconds"`
	Dependencies  []Dependency `json:"dependencies"`
}

type registeredCheck struct {
	name      string
	check     CheckFunc
	readiness bool
}

// CheckOption configures a registered check.
type CheckOption func(*registeredCheck)

// ForReadiness makes the check gate the readiness probe.
func ForReadiness() CheckOption {
	return func(c *registeredCheck) { c.readiness = true }
}

// Checker runs dependency checks and reports service health.
type Checker struct {
	mu     sync.RWMutex
	checks []registeredCheck

	checkTimeout time.Duration
	version      string
	logger       *logging.Logger
	started      time.Time
	now          func() time.Time
}

// New creates a health checker. Uptime is measured from this call.
func New(cfg config.HealthConfig, version string, logger *logging.Logger) *Checker {
	timeout := cfg.CheckTimeout
	if timeout <= 0 {
		timeout = config.DefaultCheckTimeout
	}

	return &Checker{
		checkTimeout: timeout,
		version:      version,
		logger:       logger,
		started:      time.Now(),
		now:          time.Now,
	}
}

// RegisterCheck registers a check for a named dependency. A check with the
// same name is replaced in place; new names are reported in registration order.
func (c *Checker) RegisterCheck(name string, check CheckFunc, opts ...CheckOption) {
	rc := registeredCheck{name: name, check: check}
	for _, opt := range opts {
		opt(&rc)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.checks {
		if c.checks[i].name == name {
			c.checks[i] = rc
			return
		}
	}
	c.checks = append(c.checks, rc)
}

// CheckCount returns the number of registered checks.
func (c *Checker) CheckCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.checks)
}

func (c *Checker) snapshot() []registeredCheck {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]registeredCheck(nil), c.checks...)
}

// Ready runs the readiness checks in order and returns the first failure.
func (c *Checker) Ready(ctx context.Context) error {
	for _, rc := range c.snapshot() {
		if !rc.readiness {
			continue
		}
		if err := c.runWithTimeout(ctx, rc.check); err != nil {
			return fmt.Errorf("%s: %w", rc.name, err)
		}
	}
	return nil
}

// Check runs every registered check concurrently and aggregates the results.
// Any unhealthy dependency makes the service unhealthy; otherwise any
// degraded dependency makes it degraded.
func (c *Checker) Check(ctx context.Context) Report {
	checks := c.snapshot()
	deps := make([]Dependency, len(checks))

	var g errgroup.Group
	for i, rc := range checks {
		g.Go(func() error {
			deps[i] = c.runCheck(ctx, rc)
			return nil
		})
	}
	_ = g.Wait()

	status := StatusHealthy
	for _, dep := range deps {
		switch dep.Status {
		case StatusUnhealthy:
			status = StatusUnhealthy
		case StatusDegraded:
			if status == StatusHealthy {
				status = StatusDegraded
			}
		}
	}

	now := c.now()
	return Report{
		Status:        status,
		Version:       c.version,
		Timestamp:     now,
		UptimeSeconds: now.Sub(c.started).Seconds(),
		Dependencies:  deps,
	}
}

func (c *Checker) runCheck(ctx context.Context, rc registeredCheck) Dependency {
	start := c.now()
	err := c.runWithTimeout(ctx, rc.check)
	end := c.now()

	dep := Dependency{
		Name:           rc.name,
		Status:         StatusHealthy,
		ResponseTimeMS: float64(end.Sub(start)) / float64(time.Millisecond),
		LastChecked:    end,
	}
	if err == nil {
		return dep
	}

	dep.Error = err.Error()
	if errors.Is(err, ErrDegraded) {
		dep.Status = StatusDegraded
		c.logger.Warning(ctx, fmt.Sprintf("%s health check degraded: %v", rc.name, err), map[string]any{
			"dependency": rc.name,
		})
		return dep
	}

	dep.Status = StatusUnhealthy
	c.logger.Error(ctx, fmt.Sprintf("%s health check failed: %v", rc.name, err), map[string]any{
		"dependency": rc.name,
	})
	return dep
}

// runWithTimeout runs check, giving up once the check timeout elapses.
func (c *Checker) runWithTimeout(ctx context.Context, check CheckFunc) error {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- check(checkCtx)
	}()

	select {
	case err := <-errChan:
		return err
	case <-checkCtx.Done():
		return ErrCheckTimeout
	}
}
