package boxmodel

import "fmt"

// Error is the typed allocator-phase error.
type Error struct {
	Code     string
	Message  string
	Budget   int
	Required int
	Lens     string
}

func (e *Error) Error() string {
	if e.Lens != "" {
		return fmt.Sprintf("%s: %s (lens %q)", e.Code, e.Message, e.Lens)
	}
	return fmt.Sprintf("%s: %s (budget=%d, required=%d)", e.Code, e.Message, e.Budget, e.Required)
}

func errBudgetExceeded(budget, required int) error {
	return &Error{Code: "F901", Message: "critical sections exceed budget", Budget: budget, Required: required}
}

func errLensExecutionFailed(lensName string, cause error) error {
	return &Error{Code: "F801", Message: "lens execution failed during compression: " + cause.Error(), Lens: lensName}
}
