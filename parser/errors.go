// Package parser converts source text for the facet language into an
// ast.Document. It enforces indentation, delimiter, and token-shape rules;
// everything else (typing, references, lens existence) is the validator's
// job, not the parser's.
package parser

import "fmt"

// Error is a parser-phase diagnostic. Parser errors are always fatal to
// the current compile (spec.md §7 rule 1): there is no partial AST.
type Error struct {
	Code    string
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (line %d, column %d)", e.Code, e.Message, e.Line, e.Column)
}

func errInvalidIndentation(line, col int, msg string) *Error {
	return &Error{Code: "F001", Message: msg, Line: line, Column: col}
}

func errTabsNotAllowed(line int) *Error {
	return &Error{Code: "F002", Message: "tabs are not allowed in source", Line: line, Column: 1}
}

func errUnclosedDelimiter(line, col int, delim string) *Error {
	return &Error{Code: "F003", Message: "unclosed delimiter: " + delim, Line: line, Column: col}
}
