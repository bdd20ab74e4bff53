package validate

import (
	"regexp"

	"github.com/rokoss21/facet-compiler/ast"
)

// CheckConstraints evaluates an ast.Constraints record against a literal
// value, per spec.md §4.3: min/max compare as floating point, pattern
// applies to strings, enum_values is a membership check. A malformed
// regex is itself reported as a constraint violation rather than
// propagating a panic or a different error shape.
func CheckConstraints(name string, c ast.Constraints, v ast.Value) *Error {
	if c.Min != nil || c.Max != nil {
		f, ok := numericValue(v)
		if ok {
			if c.Min != nil && f < *c.Min {
				return errConstraintViolation(name, "value below min")
			}
			if c.Max != nil && f > *c.Max {
				return errConstraintViolation(name, "value above max")
			}
		}
	}
	if c.Pattern != nil {
		s, ok := stringValue(v)
		if ok {
			re, err := regexp.Compile(*c.Pattern)
			if err != nil {
				return errConstraintViolation(name, "malformed pattern: "+err.Error())
			}
			if !re.MatchString(s) {
				return errConstraintViolation(name, "value does not match pattern")
			}
		}
	}
	if len(c.EnumValues) > 0 {
		s, ok := stringValue(v)
		if ok {
			found := false
			for _, e := range c.EnumValues {
				if e == s {
					found = true
					break
				}
			}
			if !found {
				return errConstraintViolation(name, "value not in enum_values")
			}
		}
	}
	return nil
}

func numericValue(v ast.Value) (float64, bool) {
	s, ok := v.(*ast.Scalar)
	if !ok {
		return 0, false
	}
	switch s.Kind {
	case ast.ScalarInt:
		return float64(s.IntVal), true
	case ast.ScalarFloat:
		return s.FltVal, true
	default:
		return 0, false
	}
}

func stringValue(v ast.Value) (string, bool) {
	s, ok := v.(*ast.String)
	if !ok {
		return "", false
	}
	return s.Val, true
}
