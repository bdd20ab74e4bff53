package facet

import (
	"strings"

	"github.com/rokoss21/facet-compiler/ast"
	"github.com/rokoss21/facet-compiler/boxmodel"
	"github.com/rokoss21/facet-compiler/tokenize"
)

// sectionsFromDocument projects a resolved Document's System/User/
// Assistant/Context blocks into Token Box Model sections. A section's
// shape comes from its block header attributes:
//
//	@system(priority=0, grow=1, shrink=1, min=20, strategy="trim|>uppercase")
//
// `strategy`, the one attribute the header grammar cannot carry as a
// list literal (header attributes are restricted to the simple-value
// grammar), is written as a "|>"-joined string of bare lens names and
// split back into a LensCall chain here. Any block with no body items
// contributes an empty string content and a zero base_size.
// SectionsFromDocument is the exported entry point other packages (the
// test runner, in particular) use to reuse the same header-attribute
// projection Compile itself runs on, so a @test's rendered output is
// built from identical Section shapes.
func SectionsFromDocument(doc *ast.Document, counter *tokenize.Counter) ([]boxmodel.Section, []*ast.Interface, error) {
	return sectionsFromDocument(doc, counter)
}

func sectionsFromDocument(doc *ast.Document, counter *tokenize.Counter) ([]boxmodel.Section, []*ast.Interface, error) {
	var sections []boxmodel.Section
	var interfaces []*ast.Interface

	for _, top := range doc.Blocks {
		switch node := top.(type) {
		case *ast.Interface:
			interfaces = append(interfaces, node)
		case *ast.Block:
			switch node.Kind {
			case ast.BlockSystem, ast.BlockUser, ast.BlockAssistant, ast.BlockContext:
				sections = append(sections, sectionFromBlock(node, counter))
			}
		}
	}
	return sections, interfaces, nil
}

func sectionFromBlock(b *ast.Block, counter *tokenize.Counter) boxmodel.Section {
	id := b.Name
	if v, ok := stringAttr(b, "id"); ok {
		id = v
	}
	content := contentFromBody(b.Body)
	sec := boxmodel.Section{
		ID:       id,
		Priority: intAttr(b, "priority", 0),
		Min:      intAttr(b, "min", 0),
		Grow:     floatAttr(b, "grow", 0),
		Shrink:   floatAttr(b, "shrink", 1),
		Content:  content,
		BaseSize: counter.CountValue(content),
	}
	if strat, ok := stringAttr(b, "strategy"); ok {
		sec.Strategy = parseStrategy(strat)
	}
	return sec
}

// contentFromBody collapses a block's ordered body items into a single
// Value: the lone item's value when there is exactly one, a List when
// there are several, and an empty string for an empty body.
func contentFromBody(body []ast.BodyItem) ast.Value {
	var values []ast.Value
	for _, item := range body {
		switch it := item.(type) {
		case *ast.KeyValue:
			values = append(values, it.Value)
		case *ast.ListItem:
			values = append(values, it.Value)
		}
	}
	switch len(values) {
	case 0:
		return &ast.String{Val: ""}
	case 1:
		return values[0]
	default:
		return &ast.List{Items: values}
	}
}

func parseStrategy(s string) []*ast.LensCall {
	parts := strings.Split(s, "|>")
	calls := make([]*ast.LensCall, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			continue
		}
		calls = append(calls, &ast.LensCall{Name: name})
	}
	return calls
}

func stringAttr(b *ast.Block, key string) (string, bool) {
	v, ok := b.Attributes[key]
	if !ok {
		return "", false
	}
	s, ok := v.(*ast.String)
	if !ok {
		return "", false
	}
	return s.Val, true
}

func intAttr(b *ast.Block, key string, def int) int {
	v, ok := b.Attributes[key]
	if !ok {
		return def
	}
	s, ok := v.(*ast.Scalar)
	if !ok {
		return def
	}
	switch s.Kind {
	case ast.ScalarInt:
		return int(s.IntVal)
	case ast.ScalarFloat:
		return int(s.FltVal)
	default:
		return def
	}
}

func floatAttr(b *ast.Block, key string, def float64) float64 {
	v, ok := b.Attributes[key]
	if !ok {
		return def
	}
	s, ok := v.(*ast.Scalar)
	if !ok {
		return def
	}
	switch s.Kind {
	case ast.ScalarInt:
		return float64(s.IntVal)
	case ast.ScalarFloat:
		return s.FltVal
	default:
		return def
	}
}
