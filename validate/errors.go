// Package validate implements the six-phase static validator: import
// shape, type declarations, variable validation, variable resolution,
// lens existence, and interface/body shape checks.
package validate

import "fmt"

// Error is one validator finding. Validate stops at the first phase that
// reports anything and returns only that phase's first Error.
type Error struct {
	Code    string
	Message string
	Name    string // variable, lens, or interface name the finding is about
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errImportNotFound(path string) *Error {
	return &Error{Code: "F601", Message: "import not found", Name: path}
}

func errTypeInferenceFailed(name, reason string) *Error {
	return &Error{Code: "F402", Message: "type inference failed: " + reason, Name: name}
}

func errVariableNotFound(name string) *Error {
	return &Error{Code: "F401", Message: "variable not found", Name: name}
}

func errForwardReference(name string) *Error {
	return &Error{Code: "F404", Message: "forward reference", Name: name}
}

func errTypeMismatch(name, want, got string) *Error {
	return &Error{Code: "F451", Message: fmt.Sprintf("type mismatch: expected %s, got %s", want, got), Name: name}
}

func errConstraintViolation(name, reason string) *Error {
	return &Error{Code: "F452", Message: "constraint violation: " + reason, Name: name}
}

func errInputValidationFailed(name string) *Error {
	return &Error{Code: "F453", Message: "@input directive requires a type= argument", Name: name}
}

func errCyclicDependency(cycle string) *Error {
	return &Error{Code: "F505", Message: "cyclic dependency", Name: cycle}
}

func errUnknownLens(name string) *Error {
	return &Error{Code: "F802", Message: "unknown lens", Name: name}
}
