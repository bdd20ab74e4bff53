package testrunner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rokoss21/facet-compiler/ast"
)

// AssertionResult is one evaluated assertion within a TestResult.
type AssertionResult struct {
	Kind    string `json:"kind"`
	Target  string `json:"target"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

// evalContext is everything an assertion's target can resolve against:
// the rendered text output, the run's telemetry, and the final
// variable table.
type evalContext struct {
	output    string
	telemetry Telemetry
	variables map[string]ast.Value
}

// resolveTarget looks up an assertion target string: "output", a
// "telemetry.<field>" path, or a bare variable name.
func (c *evalContext) resolveTarget(target string) (ast.Value, error) {
	switch {
	case target == "output":
		return &ast.String{Val: c.output}, nil
	case strings.HasPrefix(target, "telemetry."):
		field := strings.TrimPrefix(target, "telemetry.")
		switch field {
		case "tokens":
			return &ast.Scalar{Kind: ast.ScalarInt, IntVal: int64(c.telemetry.TokensUsed)}, nil
		case "cost":
			return &ast.Scalar{Kind: ast.ScalarFloat, FltVal: c.telemetry.EstimatedCost}, nil
		case "time":
			return &ast.Scalar{Kind: ast.ScalarFloat, FltVal: float64(c.telemetry.ExecutionTimeMS)}, nil
		case "gas":
			return &ast.Scalar{Kind: ast.ScalarInt, IntVal: int64(c.telemetry.GasConsumed)}, nil
		default:
			return nil, fmt.Errorf("unknown telemetry field %q", field)
		}
	default:
		v, ok := c.variables[target]
		if !ok {
			return nil, fmt.Errorf("unknown assertion target %q", target)
		}
		return v, nil
	}
}

// evaluateAssertion runs one AssertionKind against ctx, producing a pass/fail
// AssertionResult. A resolution failure (unknown target, type
// mismatch) or an invalid regex both fail the assertion rather than
// panicking or aborting the run.
func evaluateAssertion(kind ast.AssertionKind, ctx *evalContext) AssertionResult {
	switch k := kind.(type) {
	case ast.AssertContains:
		return textAssertion(k.Target, ctx, func(s string) bool { return strings.Contains(s, k.Text) },
			fmt.Sprintf("expected to contain %q", k.Text))
	case ast.AssertNotContains:
		return textAssertion(k.Target, ctx, func(s string) bool { return !strings.Contains(s, k.Text) },
			fmt.Sprintf("expected not to contain %q", k.Text))
	case ast.AssertEquals:
		return equalsAssertion(k.Target, k.Expected, ctx, true)
	case ast.AssertNotEquals:
		return equalsAssertion(k.Target, k.Expected, ctx, false)
	case ast.AssertLessThan:
		return numericAssertion(k.Field, ctx, func(f float64) bool { return f < k.Value },
			fmt.Sprintf("expected < %g", k.Value))
	case ast.AssertGreaterThan:
		return numericAssertion(k.Field, ctx, func(f float64) bool { return f > k.Value },
			fmt.Sprintf("expected > %g", k.Value))
	case ast.AssertSentiment:
		return sentimentAssertion(k.Target, k.Expected, ctx)
	case ast.AssertMatches:
		return matchesAssertion(k.Target, k.Pattern, ctx, true)
	case ast.AssertNotMatches:
		return matchesAssertion(k.Target, k.Pattern, ctx, false)
	case ast.AssertTrue:
		return boolAssertion(k.Target, ctx, true)
	case ast.AssertFalse:
		return boolAssertion(k.Target, ctx, false)
	case ast.AssertNull:
		return nullAssertion(k.Target, ctx, true)
	case ast.AssertNotNull:
		return nullAssertion(k.Target, ctx, false)
	default:
		return AssertionResult{Kind: fmt.Sprintf("%T", kind), Passed: false, Message: "unrecognized assertion kind"}
	}
}

func textAssertion(target string, ctx *evalContext, pred func(string) bool, failMsg string) AssertionResult {
	v, err := ctx.resolveTarget(target)
	if err != nil {
		return AssertionResult{Kind: "contains", Target: target, Passed: false, Message: err.Error()}
	}
	s, err := asText(v)
	if err != nil {
		return AssertionResult{Kind: "contains", Target: target, Passed: false, Message: err.Error()}
	}
	if pred(s) {
		return AssertionResult{Kind: "contains", Target: target, Passed: true}
	}
	return AssertionResult{Kind: "contains", Target: target, Passed: false, Message: failMsg + ", got " + strconv.Quote(s)}
}

func equalsAssertion(target string, expected ast.Value, ctx *evalContext, wantEqual bool) AssertionResult {
	kindName := "equals"
	if !wantEqual {
		kindName = "not_equals"
	}
	v, err := ctx.resolveTarget(target)
	if err != nil {
		return AssertionResult{Kind: kindName, Target: target, Passed: false, Message: err.Error()}
	}
	equal := valuesEqual(v, expected)
	passed := equal == wantEqual
	msg := ""
	if !passed {
		msg = fmt.Sprintf("got %s", describeValue(v))
	}
	return AssertionResult{Kind: kindName, Target: target, Passed: passed, Message: msg}
}

func numericAssertion(target string, ctx *evalContext, pred func(float64) bool, failMsg string) AssertionResult {
	v, err := ctx.resolveTarget(target)
	if err != nil {
		return AssertionResult{Kind: "numeric", Target: target, Passed: false, Message: err.Error()}
	}
	f, err := asFloat(v)
	if err != nil {
		return AssertionResult{Kind: "numeric", Target: target, Passed: false, Message: err.Error()}
	}
	if pred(f) {
		return AssertionResult{Kind: "numeric", Target: target, Passed: true}
	}
	return AssertionResult{Kind: "numeric", Target: target, Passed: false, Message: fmt.Sprintf("%s, got %g", failMsg, f)}
}

func sentimentAssertion(target, expected string, ctx *evalContext) AssertionResult {
	v, err := ctx.resolveTarget(target)
	if err != nil {
		return AssertionResult{Kind: "sentiment", Target: target, Passed: false, Message: err.Error()}
	}
	s, err := asText(v)
	if err != nil {
		return AssertionResult{Kind: "sentiment", Target: target, Passed: false, Message: err.Error()}
	}
	got := Sentiment(s)
	if got == expected {
		return AssertionResult{Kind: "sentiment", Target: target, Passed: true}
	}
	return AssertionResult{Kind: "sentiment", Target: target, Passed: false, Message: fmt.Sprintf("expected sentiment %q, got %q", expected, got)}
}

func matchesAssertion(target, pattern string, ctx *evalContext, wantMatch bool) AssertionResult {
	kindName := "matches"
	if !wantMatch {
		kindName = "not_matches"
	}
	v, err := ctx.resolveTarget(target)
	if err != nil {
		return AssertionResult{Kind: kindName, Target: target, Passed: false, Message: err.Error()}
	}
	s, err := asText(v)
	if err != nil {
		return AssertionResult{Kind: kindName, Target: target, Passed: false, Message: err.Error()}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return AssertionResult{Kind: kindName, Target: target, Passed: false, Message: "invalid regex: " + err.Error()}
	}
	matched := re.MatchString(s)
	if matched == wantMatch {
		return AssertionResult{Kind: kindName, Target: target, Passed: true}
	}
	return AssertionResult{Kind: kindName, Target: target, Passed: false, Message: fmt.Sprintf("pattern %q match=%v", pattern, matched)}
}

func boolAssertion(target string, ctx *evalContext, want bool) AssertionResult {
	kindName := "true"
	if !want {
		kindName = "false"
	}
	v, err := ctx.resolveTarget(target)
	if err != nil {
		return AssertionResult{Kind: kindName, Target: target, Passed: false, Message: err.Error()}
	}
	s, ok := v.(*ast.Scalar)
	if !ok || s.Kind != ast.ScalarBool {
		return AssertionResult{Kind: kindName, Target: target, Passed: false, Message: "target is not a boolean"}
	}
	if s.BoolVal == want {
		return AssertionResult{Kind: kindName, Target: target, Passed: true}
	}
	return AssertionResult{Kind: kindName, Target: target, Passed: false, Message: fmt.Sprintf("expected %v, got %v", want, s.BoolVal)}
}

func nullAssertion(target string, ctx *evalContext, wantNull bool) AssertionResult {
	kindName := "null"
	if !wantNull {
		kindName = "not_null"
	}
	v, err := ctx.resolveTarget(target)
	if err != nil {
		if wantNull {
			return AssertionResult{Kind: kindName, Target: target, Passed: false, Message: err.Error()}
		}
		return AssertionResult{Kind: kindName, Target: target, Passed: false, Message: err.Error()}
	}
	isNull := v == nil
	if s, ok := v.(*ast.Scalar); ok && s.Kind == ast.ScalarNull {
		isNull = true
	}
	if isNull == wantNull {
		return AssertionResult{Kind: kindName, Target: target, Passed: true}
	}
	return AssertionResult{Kind: kindName, Target: target, Passed: false}
}

func asText(v ast.Value) (string, error) {
	switch vv := v.(type) {
	case *ast.String:
		return vv.Val, nil
	case *ast.Scalar:
		return scalarToText(vv), nil
	default:
		return "", fmt.Errorf("cannot coerce %T to text", v)
	}
}

func scalarToText(s *ast.Scalar) string {
	switch s.Kind {
	case ast.ScalarInt:
		return strconv.FormatInt(s.IntVal, 10)
	case ast.ScalarFloat:
		return strconv.FormatFloat(s.FltVal, 'g', -1, 64)
	case ast.ScalarBool:
		return strconv.FormatBool(s.BoolVal)
	default:
		return "null"
	}
}

func asFloat(v ast.Value) (float64, error) {
	s, ok := v.(*ast.Scalar)
	if !ok {
		return 0, fmt.Errorf("cannot coerce %T to a number", v)
	}
	switch s.Kind {
	case ast.ScalarInt:
		return float64(s.IntVal), nil
	case ast.ScalarFloat:
		return s.FltVal, nil
	default:
		return 0, fmt.Errorf("cannot coerce non-numeric scalar to a number")
	}
}

func valuesEqual(a, b ast.Value) bool {
	as, aerr := asText(a)
	bs, berr := asText(b)
	if aerr == nil && berr == nil {
		return as == bs
	}
	return false
}

func describeValue(v ast.Value) string {
	s, err := asText(v)
	if err != nil {
		return fmt.Sprintf("%T", v)
	}
	return strconv.Quote(s)
}
