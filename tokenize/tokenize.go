// Package tokenize provides an approximate, provider-agnostic token
// counter used for budgeting by the Token Box Model allocator. The exact
// algorithm is a heuristic; only the contracts in spec.md §4.6 are load
// bearing: empty string is 0, counts are monotone in concatenation up to
// a small bounded slack, counts are stable within a process, and the
// counter is safe for concurrent use.
package tokenize

import (
	"strconv"
	"unicode"

	"github.com/rokoss21/facet-compiler/ast"
)

// pipelineEstimate and directiveEstimate are the fixed token estimates
// spec.md §4.6 assigns to Pipeline and Directive values, so authors can
// budget their presence before the engine actually executes them.
const (
	pipelineEstimate = 50
	directiveEstimate = 30
)

// Counter is an immutable, process-wide-shareable token counter. The
// zero value is ready to use; there is no per-call mutable state.
type Counter struct{}

// New returns a Counter. It has no configuration today, but is
// constructed through a function (rather than used as a bare struct
// literal) so call sites read the same way regardless of future options.
func New() *Counter { return &Counter{} }

// Count approximates the token count of a string using a whitespace- and
// punctuation-aware heuristic: most BPE tokenizers split on word
// boundaries and punctuation, so counting those boundaries plus a
// per-4-character-run fallback for long unbroken runs gets within a
// reasonable multiple of real tokenizer output without vendoring a full
// BPE table.
func (c *Counter) Count(s string) int {
	if s == "" {
		return 0
	}
	total := 0
	runLen := 0
	flush := func() {
		if runLen == 0 {
			return
		}
		total += (runLen + 3) / 4
		if total == 0 {
			total = 1
		}
		runLen = 0
	}
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			total++
		default:
			runLen++
		}
	}
	flush()
	if total == 0 {
		total = 1
	}
	return total
}

// CountValue sums token counts over a Value tree. Pipeline and Directive
// nodes use the fixed estimates above rather than recursing into their
// unevaluated contents.
func (c *Counter) CountValue(v ast.Value) int {
	switch vv := v.(type) {
	case nil:
		return 0
	case *ast.String:
		return c.Count(vv.Val)
	case *ast.Scalar:
		return c.Count(scalarText(vv))
	case *ast.Variable:
		return c.Count("$" + vv.Name)
	case *ast.List:
		total := 0
		for _, item := range vv.Items {
			total += c.CountValue(item)
		}
		return total
	case *ast.Map:
		total := 0
		for _, k := range vv.Keys {
			total += c.Count(k) + c.CountValue(vv.Entries[k])
		}
		return total
	case *ast.Pipeline:
		return pipelineEstimate
	case *ast.Directive:
		return directiveEstimate
	default:
		return 0
	}
}

func scalarText(s *ast.Scalar) string {
	switch s.Kind {
	case ast.ScalarInt:
		return strconv.FormatInt(s.IntVal, 10)
	case ast.ScalarFloat:
		return strconv.FormatFloat(s.FltVal, 'g', -1, 64)
	case ast.ScalarBool:
		if s.BoolVal {
			return "true"
		}
		return "false"
	default:
		return "null"
	}
}
