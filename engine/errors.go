// Package engine implements the reactive dependency graph (R-DAG):
// dependency extraction over @vars, cycle detection, gas-budgeted
// topological evaluation, and pipeline/lens execution.
package engine

import "fmt"

// Error is the typed engine-phase error, carrying one of the F401, F505,
// F801, F802 or F902 codes from spec.md's error surface table (F901 is
// boxmodel's).
type Error struct {
	Code    string
	Message string
	Names   []string // variable or cycle path, when applicable
	Lens    string
}

func (e *Error) Error() string {
	if e.Lens != "" {
		return fmt.Sprintf("%s: %s (lens %q)", e.Code, e.Message, e.Lens)
	}
	if len(e.Names) > 0 {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Names)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errVariableNotFound(name string) error {
	return &Error{Code: "F401", Message: "variable not found", Names: []string{name}}
}

func errCyclicDependency(cycle []string) error {
	return &Error{Code: "F505", Message: "cyclic dependency", Names: cycle}
}

func errLensExecutionFailed(lensName string, cause error) error {
	return &Error{Code: "F801", Message: "lens execution failed: " + cause.Error(), Lens: lensName}
}

func errUnknownLens(name string) error {
	return &Error{Code: "F802", Message: "unknown lens", Lens: name}
}

func errGasExhausted(limit int) error {
	return &Error{Code: "F902", Message: fmt.Sprintf("gas exhausted (limit %d)", limit)}
}
