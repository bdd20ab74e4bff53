// Package render projects an evaluated document and its Token Box Model
// allocation into the canonical JSON wire payload consumed by LLM
// providers, and performs tool-schema dialect projection.
package render

import (
	"time"

	"github.com/rokoss21/facet-compiler/boxmodel"
)

// Metadata carries document identity, schema version, and allocation
// totals.
type Metadata struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	TotalTokens int     `json:"total_tokens"`
	Budget    int       `json:"budget"`
	Overflow  int       `json:"overflow"`
}

// ContentPart is one piece of a (possibly multimodal) content block.
type ContentPart struct {
	Type     string                 `json:"type"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ContentBlock is one rendered section, attached to a role bucket.
type ContentBlock struct {
	Role    string        `json:"role"`
	Text    string        `json:"content,omitempty"`
	Parts   []ContentPart `json:"multimodal,omitempty"`
	Tokens  int           `json:"tokens"`
}

// Example is a static few-shot example entry. The source language has no
// block kind for these and nothing in this package fills Payload.Examples.
type Example struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Payload is the canonical wire format from spec.md §6.3.
type Payload struct {
	Metadata  Metadata          `json:"metadata"`
	System    []ContentBlock    `json:"system"`
	Tools     []ToolDefinition  `json:"tools"`
	Examples  []Example         `json:"examples"`
	History   []ContentBlock    `json:"history"`
	User      []ContentBlock    `json:"user"`
	Assistant []ContentBlock    `json:"assistant"`
}

// roleOf maps a section id to its payload bucket; unrecognized ids
// default to "user" per spec.md §4.8.
func roleOf(id string) string {
	switch id {
	case "system", "tools", "examples", "history", "user", "assistant":
		return id
	default:
		return "user"
	}
}

// FromAllocation builds the skeleton payload (minus tools) from a Token
// Box Model allocation result, emitting exactly one ContentBlock per
// non-dropped section into the role bucket matching its id.
func FromAllocation(name string, alloc *boxmodel.AllocationResult, createdAt time.Time) (*Payload, error) {
	p := &Payload{
		Metadata: Metadata{
			Name:        name,
			Version:     "2.0",
			CreatedAt:   createdAt,
			TotalTokens: alloc.TotalSize,
			Budget:      alloc.Budget,
			Overflow:    alloc.Overflow,
		},
		System:    []ContentBlock{},
		Tools:     []ToolDefinition{},
		Examples:  []Example{},
		History:   []ContentBlock{},
		User:      []ContentBlock{},
		Assistant: []ContentBlock{},
	}

	for _, sec := range alloc.Sections {
		if sec.FinalSize <= 0 {
			continue
		}
		block, err := contentBlockFor(sec)
		if err != nil {
			return nil, err
		}
		switch roleOf(sec.Section.ID) {
		case "system":
			p.System = append(p.System, block)
		case "history":
			p.History = append(p.History, block)
		case "assistant":
			p.Assistant = append(p.Assistant, block)
		default:
			p.User = append(p.User, block)
		}
	}
	return p, nil
}
