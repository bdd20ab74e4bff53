// Package boxmodel implements the Token Box Model allocator: given a
// token budget and a list of prioritized, elastic sections, it either
// expands sections to fill spare budget or compresses them (via a
// strategy pipeline, then truncation, then dropping) to fit within it.
package boxmodel

import "github.com/rokoss21/facet-compiler/ast"

// Section is one allocatable unit of document content (typically a
// block projected to a role bucket). Shrink == 0 marks a section
// critical: it is never compressed, and its BaseSize always counts
// against the fixed load.
type Section struct {
	ID       string
	Priority int // lower drops first
	BaseSize int
	Min      int
	Grow     float64
	Shrink   float64
	Strategy []*ast.LensCall // compression pipeline; nil if none
	Content  ast.Value
}

// AllocatedSection is one Section after allocation, carrying the
// decisions the algorithm made about it.
type AllocatedSection struct {
	Section       Section
	FinalSize     int
	Content       ast.Value
	WasCompressed bool
	WasTruncated  bool
	WasDropped    bool
}

// AllocationResult is the allocator's complete output.
type AllocationResult struct {
	Sections  []AllocatedSection
	TotalSize int
	Budget    int
	Overflow  int
}
