package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rokoss21/facet-compiler/ast"
	"github.com/rokoss21/facet-compiler/lens"
	"github.com/rokoss21/facet-compiler/telemetry"
)

// Options configures one Evaluate call.
type Options struct {
	Registry  *lens.Registry
	GasLimit  int
	Cache     Cache
	Telemetry telemetry.Bundle
}

// Result is everything downstream stages (the allocator, the renderer)
// need from R-DAG evaluation.
type Result struct {
	Variables map[string]ast.Value
	Order     []string // topological evaluation order
	Gas       *GasBudget
}

// Evaluate builds the dependency graph over vars, detects cycles,
// evaluates every variable in topological order under a shared gas
// budget, and returns the fully-computed variable table.
func Evaluate(ctx context.Context, vars map[string]ast.Value, order []string, opts Options) (*Result, error) {
	if opts.Registry == nil {
		opts.Registry = lens.NewDefaultRegistry()
	}
	if opts.Cache == nil {
		opts.Cache = NewMemoryCache()
	}
	if opts.GasLimit <= 0 {
		opts.GasLimit = DefaultGasLimit
	}
	bundle := opts.Telemetry
	if bundle.Tracer == nil {
		bundle = telemetry.NewNoopBundle()
	}

	ctx, span := bundle.Tracer.Start(ctx, "engine.Evaluate")
	defer span.End()

	graph := BuildGraph(vars, order)
	topo, cycle, ok := DetectCycle(graph)
	if !ok {
		err := errCyclicDependency(cycle)
		span.RecordError(err)
		return nil, err
	}

	gas := &GasBudget{Limit: opts.GasLimit}
	computed := make(map[string]ast.Value, len(order))
	lctx := &lens.Context{Go: ctx, Variables: computed, Registry: opts.Registry}

	for _, name := range topo {
		if err := gas.Consume(); err != nil {
			span.RecordError(err)
			return nil, err
		}
		v, err := evalValue(vars[name], computed, opts.Registry, opts.Cache, gas, lctx)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		computed[name] = v
	}

	bundle.Metrics.RecordGauge("engine.gas_consumed", float64(gas.Consumed))
	return &Result{Variables: computed, Order: topo, Gas: gas}, nil
}

// evalValue recursively reduces a Value tree to its final, lens-applied
// form. Scalars and strings are already final; variables resolve
// against the already-computed table (valid because callers only ever
// invoke this in topological order); lists/maps recurse structurally;
// pipelines thread a value through its lens chain; directives surface
// as their JSON-serialized form, since they represent an external input
// contract rather than a value to compute.
func evalValue(v ast.Value, computed map[string]ast.Value, registry *lens.Registry, cache Cache, gas *GasBudget, lctx *lens.Context) (ast.Value, error) {
	switch vv := v.(type) {
	case nil:
		return nil, nil
	case *ast.Scalar, *ast.String:
		return vv, nil
	case *ast.Variable:
		return resolveVariable(vv.Name, computed)
	case *ast.List:
		items := make([]ast.Value, len(vv.Items))
		for i, item := range vv.Items {
			ev, err := evalValue(item, computed, registry, cache, gas, lctx)
			if err != nil {
				return nil, err
			}
			items[i] = ev
		}
		return &ast.List{Items: items, Span_: vv.Span_}, nil
	case *ast.Map:
		m := ast.NewMap(vv.Span_)
		for _, k := range vv.Keys {
			ev, err := evalValue(vv.Entries[k], computed, registry, cache, gas, lctx)
			if err != nil {
				return nil, err
			}
			m.Set(k, ev)
		}
		return m, nil
	case *ast.Directive:
		return directiveToValue(vv)
	case *ast.Pipeline:
		return evalPipeline(vv, computed, registry, cache, gas, lctx)
	default:
		return nil, fmt.Errorf("engine: unhandled value kind %T", v)
	}
}

// ReduceValue reduces a Value tree — typically a content block outside
// @vars, such as an @system/@user/@assistant/@context body — against an
// already-computed variable table (Evaluate's Result.Variables). It
// shares the same gas budget so a pathological content pipeline cannot
// evade the limit Evaluate enforced on @vars itself.
func ReduceValue(ctx context.Context, v ast.Value, computed map[string]ast.Value, opts Options, gas *GasBudget) (ast.Value, error) {
	if opts.Registry == nil {
		opts.Registry = lens.NewDefaultRegistry()
	}
	if opts.Cache == nil {
		opts.Cache = NewMemoryCache()
	}
	if gas == nil {
		gas = &GasBudget{Limit: DefaultGasLimit}
		if opts.GasLimit > 0 {
			gas.Limit = opts.GasLimit
		}
	}
	lctx := &lens.Context{Go: ctx, Variables: computed, Registry: opts.Registry}
	return evalValue(v, computed, opts.Registry, opts.Cache, gas, lctx)
}

func resolveVariable(name string, computed map[string]ast.Value) (ast.Value, error) {
	root, path := splitPath(name)
	v, ok := computed[root]
	if !ok {
		return nil, errVariableNotFound(name)
	}
	return navigate(v, path)
}

func splitPath(name string) (string, []string) {
	var parts []string
	start := 0
	for i, r := range name {
		if r == '.' {
			parts = append(parts, name[start:i])
			start = i + 1
		}
	}
	parts = append(parts, name[start:])
	return parts[0], parts[1:]
}

func navigate(v ast.Value, path []string) (ast.Value, error) {
	for _, seg := range path {
		m, ok := v.(*ast.Map)
		if !ok {
			return nil, fmt.Errorf("engine: cannot navigate field %q on non-map value", seg)
		}
		next, ok := m.Entries[seg]
		if !ok {
			return nil, fmt.Errorf("engine: field %q not found", seg)
		}
		v = next
	}
	return v, nil
}

func evalPipeline(p *ast.Pipeline, computed map[string]ast.Value, registry *lens.Registry, cache Cache, gas *GasBudget, lctx *lens.Context) (ast.Value, error) {
	cur, err := evalValue(p.Initial, computed, registry, cache, gas, lctx)
	if err != nil {
		return nil, err
	}
	for _, lc := range p.Lenses {
		if err := gas.Consume(); err != nil {
			return nil, err
		}
		l, ok := registry.Get(lc.Name)
		if !ok {
			return nil, errUnknownLens(lc.Name)
		}
		sig := l.Signature()

		args := make([]ast.Value, len(lc.Args))
		for i, a := range lc.Args {
			args[i], err = evalValue(a, computed, registry, cache, gas, lctx)
			if err != nil {
				return nil, err
			}
		}
		kwargs := make(map[string]ast.Value, len(lc.Kwargs))
		for _, k := range lc.KwargOrder {
			kwargs[k], err = evalValue(lc.Kwargs[k], computed, registry, cache, gas, lctx)
			if err != nil {
				return nil, err
			}
		}

		if sig.TrustLevel == lens.Pure {
			key := pureCacheKey(lc.Name, cur, args, kwargs)
			if hit, ok := cache.Get(lctx.Go, key); ok {
				cur = hit
				continue
			}
			out, err := registry.Execute(lctx, lc.Name, cur, args, kwargs)
			if err != nil {
				return nil, errLensExecutionFailed(lc.Name, err)
			}
			cache.Set(lctx.Go, key, out)
			cur = out
			continue
		}

		out, err := registry.Execute(lctx, lc.Name, cur, args, kwargs)
		if err != nil {
			return nil, errLensExecutionFailed(lc.Name, err)
		}
		cur = out
	}
	return cur, nil
}

func pureCacheKey(name string, input ast.Value, args []ast.Value, kwargs map[string]ast.Value) string {
	raw, _ := json.Marshal(struct {
		Name   string      `json:"name"`
		Input  interface{} `json:"input"`
		Args   interface{} `json:"args"`
		Kwargs interface{} `json:"kwargs"`
	}{
		Name:   name,
		Input:  valueToGo(input),
		Args:   argsToGo(args),
		Kwargs: kwargsToGo(kwargs),
	})
	return string(raw)
}

func argsToGo(args []ast.Value) []interface{} {
	out := make([]interface{}, len(args))
	for i, a := range args {
		out[i] = valueToGo(a)
	}
	return out
}

func kwargsToGo(kwargs map[string]ast.Value) map[string]interface{} {
	out := make(map[string]interface{}, len(kwargs))
	for k, v := range kwargs {
		out[k] = valueToGo(v)
	}
	return out
}

// directiveToValue serializes a Directive's name and arguments into a
// JSON string. Directives (most commonly @input) declare an external
// contract rather than a computable value, so there is nothing to
// evaluate; surfacing their shape as JSON keeps them inspectable in
// variable overrides and test assertions without inventing a dedicated
// runtime representation for them.
func directiveToValue(d *ast.Directive) (ast.Value, error) {
	args := make(map[string]interface{}, len(d.ArgOrder))
	for _, k := range d.ArgOrder {
		args[k] = valueToGo(d.Args[k])
	}
	raw, err := json.Marshal(struct {
		Directive string                 `json:"directive"`
		Args      map[string]interface{} `json:"args"`
	}{Directive: d.Name, Args: args})
	if err != nil {
		return nil, fmt.Errorf("engine: encoding directive %q: %w", d.Name, err)
	}
	return &ast.String{Val: string(raw)}, nil
}
