package testrunner

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rokoss21/facet-compiler/ast"
)

func errUnknownMockTarget(target string) error {
	return fmt.Errorf("testrunner: no mock registered for target %q", target)
}

// MockHandler computes a mocked return value from the call's arguments,
// projected into a Map (for a lens mock, the piped input under the key
// "input"; the tool's decoded argument map for an interface mock). Static mocks are just a MockHandler that ignores its
// input.
type MockHandler func(args *ast.Map) (ast.Value, error)

// mockEntry pairs a handler with its atomic invocation counter.
type mockEntry struct {
	handler MockHandler
	calls   int64
}

// Registry holds every mock a @test block declares, keyed by target.
// An interface target contains a ".", e.g. "WeatherAPI.get_current";
// everything else is a lens target. Registries are scoped per test run
// and never shared, so call counts never leak between tests.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*mockEntry
}

// NewRegistry returns an empty mock registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*mockEntry)}
}

// IsInterfaceTarget reports whether target names an interface method
// (contains a ".") rather than a lens.
func IsInterfaceTarget(target string) bool {
	return strings.Contains(target, ".")
}

// SetStatic installs a mock that always returns value, regardless of
// call arguments.
func (r *Registry) SetStatic(target string, value ast.Value) {
	r.SetHandler(target, func(*ast.Map) (ast.Value, error) { return value, nil })
}

// SetHandler installs a dynamic mock: a function from the call's
// arguments (boxed as a Map) to a return Value.
func (r *Registry) SetHandler(target string, handler MockHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[target] = &mockEntry{handler: handler}
}

// Lookup returns the mock registered for target, if any.
func (r *Registry) Lookup(target string) (MockHandler, bool) {
	r.mu.RLock()
	e, ok := r.entries[target]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return e.handler, true
}

// Invoke calls the mock registered for target with args, incrementing
// its call count. Invoke on an unregistered target is a caller error —
// callers are expected to check Lookup (or HasMock) first.
func (r *Registry) Invoke(target string, args *ast.Map) (ast.Value, error) {
	r.mu.RLock()
	e, ok := r.entries[target]
	r.mu.RUnlock()
	if !ok {
		return nil, errUnknownMockTarget(target)
	}
	atomic.AddInt64(&e.calls, 1)
	return e.handler(args)
}

// HasMock reports whether target has a registered mock.
func (r *Registry) HasMock(target string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[target]
	return ok
}

// CallCounts returns every mock target's invocation count, for
// surfacing in a TestResult.
func (r *Registry) CallCounts() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int, len(r.entries))
	for target, e := range r.entries {
		out[target] = int(atomic.LoadInt64(&e.calls))
	}
	return out
}

// CallCount returns how many times target's mock has been invoked.
func (r *Registry) CallCount(target string) int {
	r.mu.RLock()
	e, ok := r.entries[target]
	r.mu.RUnlock()
	if !ok {
		return 0
	}
	return int(atomic.LoadInt64(&e.calls))
}
