// Package ast defines the abstract syntax tree produced by the parser:
// spans, documents, blocks, values, and the type lattice consumed by the
// validator and engine.
package ast

// Span records the source-position range of a node. Spans are attached at
// parse time and never mutated afterward; they survive resolution
// unchanged since merged blocks retain the spans of their origin file.
type Span struct {
	Start  int
	End    int
	Line   int
	Column int
}

// Node is implemented by every AST element that carries a Span.
type Node interface {
	Pos() Span
}
