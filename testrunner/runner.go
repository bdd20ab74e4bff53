// Package testrunner evaluates @test blocks against the compiled
// pipeline: it discovers tests, installs lens and interface mocks,
// executes an isolated R-DAG/allocator/renderer run per test, and
// evaluates assertions against the rendered output and captured
// telemetry.
package testrunner

import (
	"context"
	"strings"
	"time"

	"github.com/rokoss21/facet-compiler/ast"
	"github.com/rokoss21/facet-compiler/boxmodel"
	"github.com/rokoss21/facet-compiler/engine"
	"github.com/rokoss21/facet-compiler/facet"
	"github.com/rokoss21/facet-compiler/lens"
	"github.com/rokoss21/facet-compiler/render"
	"github.com/rokoss21/facet-compiler/telemetry"
	"github.com/rokoss21/facet-compiler/tokenize"
)

// costPerToken is a heuristic flat per-token rate used for the
// estimated_cost telemetry field, in the same spirit as tokenize's
// heuristic counter: no real provider billing is wired in, only a
// stable, order-of-magnitude proxy tests can assert ceilings against.
const costPerToken = 0.000002

// Telemetry is one run's captured metrics, per spec.md §4.9.
type Telemetry struct {
	TokensUsed         int     `json:"tokens_used"`
	EstimatedCost      float64 `json:"estimated_cost"`
	ExecutionTimeMS    int64   `json:"execution_time_ms"`
	GasConsumed        int     `json:"gas_consumed"`
	VariablesComputed  int     `json:"variables_computed"`
}

// TestResult is the outcome of one @test block's execution.
// MockCallCounts is not one of spec.md §4.9's named TestResult fields;
// it surfaces the mock registry's atomic counters (the ones the
// "test with mock" scenario in spec.md §8 asserts against) without
// forcing every caller to reach back into Run's internals for them.
type TestResult struct {
	Name           string            `json:"name"`
	Passed         bool              `json:"passed"`
	Assertions     []AssertionResult `json:"assertions"`
	Telemetry      Telemetry         `json:"telemetry"`
	RenderedOutput string            `json:"rendered_output,omitempty"`
	Error          string            `json:"error,omitempty"`
	MockCallCounts map[string]int    `json:"mock_call_counts,omitempty"`
}

// Options configures one Discover+Run pass over a document.
type Options struct {
	Registry  *lens.Registry // shared, immutable base registry; Run clones it per test
	Cache     engine.Cache
	GasLimit  int
	Budget    int // Token Box Model budget for the test's isolated render
	Telemetry telemetry.Bundle
	Counter   *tokenize.Counter
}

// Discover returns every @test block in a document, in source order.
func Discover(doc *ast.Document) []*ast.Test {
	var tests []*ast.Test
	for _, top := range doc.Blocks {
		if t, ok := top.(*ast.Test); ok {
			tests = append(tests, t)
		}
	}
	return tests
}

// RunAll executes every test Discover finds and returns their results
// in the same order.
func RunAll(ctx context.Context, doc *ast.Document, opts Options) []*TestResult {
	tests := Discover(doc)
	results := make([]*TestResult, len(tests))
	for i, t := range tests {
		results[i] = Run(ctx, doc, t, opts)
	}
	return results
}

// Run executes one @test block: an isolated gas budget and mock
// registry, variable overrides applied after R-DAG evaluation, the full
// allocator+renderer pass, and its declared assertions. Any pipeline
// error short-circuits to a failed TestResult with no assertions
// evaluated, per spec.md §4.9.
func Run(ctx context.Context, doc *ast.Document, test *ast.Test, opts Options) *TestResult {
	start := time.Now()
	result := &TestResult{Name: test.Name}

	baseRegistry := opts.Registry
	if baseRegistry == nil {
		baseRegistry = lens.NewDefaultRegistry()
	}
	cache := opts.Cache
	if cache == nil {
		cache = engine.NewMemoryCache()
	}
	counter := opts.Counter
	if counter == nil {
		counter = tokenize.New()
	}
	bundle := opts.Telemetry
	if bundle.Tracer == nil {
		bundle = telemetry.NewNoopBundle()
	}

	mocks := NewRegistry()
	runRegistry := baseRegistry.Clone()
	for _, m := range test.Mocks {
		if IsInterfaceTarget(m.Target) {
			mocks.SetStatic(m.Target, m.Return)
			continue
		}
		mocks.SetStatic(m.Target, m.Return)
		target := m.Target
		runRegistry.Register(lens.NewSimpleLens(target, func(in ast.Value) (ast.Value, error) {
			args := ast.NewMap(ast.Span{})
			args.Set("input", in)
			return mocks.Invoke(target, args)
		}))
	}

	vars, order := engine.VarsTable(doc)
	engineOpts := engine.Options{Registry: runRegistry, GasLimit: opts.GasLimit, Cache: cache, Telemetry: bundle}
	evalResult, err := engine.Evaluate(ctx, vars, order, engineOpts)
	if err != nil {
		result.Error = err.Error()
		result.Telemetry = finalTelemetry(0, 0, start, nil)
		return result
	}

	for _, key := range test.VarOrder {
		evalResult.Variables[key] = test.Vars[key]
	}

	sections, interfaces, err := facet.SectionsFromDocument(doc, counter)
	if err != nil {
		result.Error = err.Error()
		result.Telemetry = finalTelemetry(0, evalResult.Gas.Consumed, start, evalResult.Variables)
		return result
	}

	reduced := make([]boxmodel.Section, len(sections))
	for i, sec := range sections {
		content, err := engine.ReduceValue(ctx, sec.Content, evalResult.Variables, engineOpts, evalResult.Gas)
		if err != nil {
			result.Error = err.Error()
			result.Telemetry = finalTelemetry(0, evalResult.Gas.Consumed, start, evalResult.Variables)
			return result
		}
		sec.Content = content
		sec.BaseSize = counter.CountValue(content)
		reduced[i] = sec
	}

	budget := opts.Budget
	if budget <= 0 {
		budget = 4096
	}
	alloc, err := boxmodel.Allocate(reduced, budget, runRegistry, counter)
	if err != nil {
		result.Error = err.Error()
		result.Telemetry = finalTelemetry(0, evalResult.Gas.Consumed, start, evalResult.Variables)
		return result
	}

	payload, err := render.Render(render.DocName(doc), alloc, interfaces, start)
	if err != nil {
		result.Error = err.Error()
		result.Telemetry = finalTelemetry(0, evalResult.Gas.Consumed, start, evalResult.Variables)
		return result
	}
	invokeInterfaceMocks(payload, mocks)

	output := renderedText(payload)
	result.RenderedOutput = output
	result.Telemetry = finalTelemetry(counter.Count(output), evalResult.Gas.Consumed, start, evalResult.Variables)
	result.MockCallCounts = mocks.CallCounts()

	evalCtx := &evalContext{output: output, telemetry: result.Telemetry, variables: evalResult.Variables}
	passed := true
	for _, a := range test.Assertions {
		ar := evaluateAssertion(a.Kind, evalCtx)
		result.Assertions = append(result.Assertions, ar)
		if !ar.Passed {
			passed = false
		}
	}
	result.Passed = passed
	return result
}

// invokeInterfaceMocks binds every tool the payload projected to a
// handler that funnels through mocks, then invokes each tool that has a
// registered mock once. This is what realizes spec.md §4.9's "tool
// invocations funnel through the registry; a matching mock
// short-circuits the tool executor" for a compiler that has no agent
// loop of its own to drive real tool calls during a test.
func invokeInterfaceMocks(payload *render.Payload, mocks *Registry) {
	executor := render.NewToolExecutor()
	for _, def := range payload.Tools {
		if err := executor.Register(def); err != nil {
			continue
		}
		target := def.Name
		_ = executor.Bind(def.Name, func(args map[string]interface{}) (interface{}, error) {
			v, err := mocks.Invoke(target, goToMap(args))
			if err != nil {
				return nil, err
			}
			return valueToGo(v), nil
		})
	}
	for _, def := range payload.Tools {
		if mocks.HasMock(def.Name) {
			executor.Invoke(def.Name, map[string]interface{}{})
		}
	}
}

// renderedText flattens a payload's system/user/assistant content into
// one string for assertions whose target is "output" — the shorthand
// forms in spec.md §4.2 ("output contains ...") don't distinguish role
// buckets, so concatenation in payload order is the natural reading.
func renderedText(payload *render.Payload) string {
	var parts []string
	for _, b := range payload.System {
		parts = append(parts, b.Text)
	}
	for _, b := range payload.User {
		parts = append(parts, b.Text)
	}
	for _, b := range payload.Assistant {
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, "\n")
}

func finalTelemetry(tokens, gas int, start time.Time, vars map[string]ast.Value) Telemetry {
	return Telemetry{
		TokensUsed:        tokens,
		EstimatedCost:     float64(tokens) * costPerToken,
		ExecutionTimeMS:   time.Since(start).Milliseconds(),
		GasConsumed:       gas,
		VariablesComputed: len(vars),
	}
}
