// Package resolver expands @import directives into the blocks they name,
// enforcing a path sandbox, detecting import cycles, and applying the
// Smart Merge rule to same-role repeated blocks.
package resolver

import "fmt"

// Error is a resolver-phase diagnostic carrying one of the F6xx codes.
type Error struct {
	Code    string
	Message string
	Path    string
	Cycle   []string
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errImportNotFound(path string) *Error {
	return &Error{Code: "F601", Message: "import not found", Path: path}
}

func errImportCycle(cycle []string) *Error {
	return &Error{Code: "F602", Message: fmt.Sprintf("import cycle detected (depth %d): %v", len(cycle), cycle), Cycle: cycle}
}

func errFileReadTimeout(path string) *Error {
	return &Error{Code: "F603", Message: "file read timed out", Path: path}
}

func errSymlinkEscape(path string) *Error {
	return &Error{Code: "F604", Message: "path escapes the allowed roots", Path: path}
}

func errSensitiveLocation(path string) *Error {
	return &Error{Code: "F605", Message: "path targets a sensitive location", Path: path}
}

func errSuspiciousPath(path, reason string) *Error {
	return &Error{Code: "F606", Message: "suspicious import path: " + reason, Path: path}
}
