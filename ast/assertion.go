package ast

// AssertionKind is the sum type of the thirteen assertion forms a @test
// block may evaluate. Each variant matches one AssertionKind case in the
// original fct-ast crate.
type AssertionKind interface {
	assertionKind()
}

type AssertContains struct {
	Target string
	Text   string
}

type AssertNotContains struct {
	Target string
	Text   string
}

type AssertEquals struct {
	Target   string
	Expected Value
}

type AssertNotEquals struct {
	Target   string
	Expected Value
}

type AssertLessThan struct {
	Field string
	Value float64
}

type AssertGreaterThan struct {
	Field string
	Value float64
}

type AssertSentiment struct {
	Target   string
	Expected string
}

type AssertMatches struct {
	Target  string
	Pattern string
}

type AssertNotMatches struct {
	Target  string
	Pattern string
}

type AssertTrue struct{ Target string }
type AssertFalse struct{ Target string }
type AssertNull struct{ Target string }
type AssertNotNull struct{ Target string }

func (AssertContains) assertionKind()    {}
func (AssertNotContains) assertionKind() {}
func (AssertEquals) assertionKind()      {}
func (AssertNotEquals) assertionKind()   {}
func (AssertLessThan) assertionKind()    {}
func (AssertGreaterThan) assertionKind() {}
func (AssertSentiment) assertionKind()   {}
func (AssertMatches) assertionKind()     {}
func (AssertNotMatches) assertionKind()  {}
func (AssertTrue) assertionKind()        {}
func (AssertFalse) assertionKind()       {}
func (AssertNull) assertionKind()        {}
func (AssertNotNull) assertionKind()     {}

// Assertion pairs an AssertionKind with its source span.
type Assertion struct {
	Kind  AssertionKind
	Span_ Span
}

func (a *Assertion) Pos() Span { return a.Span_ }
