package logging

import (
	"runtime"
	"strings"
	"sync"
)

// EnvironmentDevelopment is the environment in which every exception class is
// logged.
const EnvironmentDevelopment = "development"

// LoggedExceptionClasses are logged in every environment.
var LoggedExceptionClasses = []string{
	"UnexpectedException",
	"DatabaseException",
	"DatabaseIntegrityException",
}

// maxMemoizedClasses bounds the decision table. Classes past the bound are
// evaluated on every call.
const maxMemoizedClasses = 128

// ExceptionPolicy decides whether exceptions of a class are logged.
// Decisions are memoized per class for the lifetime of the policy.
type ExceptionPolicy struct {
	mu       sync.Mutex
	memo     map[string]bool
	evaluate func(class string) bool
}

// NewExceptionPolicy creates the policy for the given environment.
func NewExceptionPolicy(environment string) *ExceptionPolicy {
	allowed := make(map[string]struct{}, len(LoggedExceptionClasses))
	for _, c := range LoggedExceptionClasses {
		allowed[c] = struct{}{}
	}
	development := strings.EqualFold(environment, EnvironmentDevelopment)

	return newExceptionPolicy(func(class string) bool {
		if development {
			return true
		}
		_, ok := allowed[class]
		return ok
	})
}

func newExceptionPolicy(evaluate func(class string) bool) *ExceptionPolicy {
	return &ExceptionPolicy{
		memo:     make(map[string]bool),
		evaluate: evaluate,
	}
}

// ShouldLog reports whether exceptions of class are logged.
func (p *ExceptionPolicy) ShouldLog(class string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if decision, ok := p.memo[class]; ok {
		return decision
	}
	decision := p.evaluate(class)
	if len(p.memo) < maxMemoizedClasses {
		p.memo[class] = decision
	}
	return decision
}

// callerName returns the qualified function name skip frames above the
// caller of callerName, e.g. "simpleapp/itemsvc/pkg/items.(*Service).Create".
func callerName(skip int) string {
	pc, _, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	return fn.Name()
}
