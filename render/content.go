package render

import (
	"fmt"

	"github.com/rokoss21/facet-compiler/ast"
	"github.com/rokoss21/facet-compiler/boxmodel"
)

// contentBlockFor converts one allocated section's already-evaluated
// Content into a ContentBlock. Variable and Pipeline must never reach
// this stage — their presence means the R-DAG failed to fully reduce a
// value, which is an engine bug, not a data problem, so it is reported
// as an error rather than silently stringified.
func contentBlockFor(sec boxmodel.AllocatedSection) (ContentBlock, error) {
	block := ContentBlock{Role: roleOf(sec.Section.ID), Tokens: sec.FinalSize}

	switch v := sec.Content.(type) {
	case nil:
		block.Text = ""
	case *ast.String:
		block.Text = v.Val
	case *ast.Scalar:
		block.Text = scalarText(v)
	case *ast.List:
		parts, err := multimodalParts(v)
		if err != nil {
			return ContentBlock{}, err
		}
		block.Parts = parts
	case *ast.Map:
		part, err := multimodalPart(v)
		if err != nil {
			return ContentBlock{}, err
		}
		block.Parts = []ContentPart{part}
	case *ast.Variable, *ast.Pipeline:
		return ContentBlock{}, fmt.Errorf("render: unevaluated %T reached the renderer (engine bug)", v)
	default:
		return ContentBlock{}, fmt.Errorf("render: unsupported content value %T", v)
	}
	return block, nil
}

func multimodalParts(list *ast.List) ([]ContentPart, error) {
	parts := make([]ContentPart, 0, len(list.Items))
	for _, item := range list.Items {
		m, ok := item.(*ast.Map)
		if !ok {
			if s, ok := item.(*ast.String); ok {
				parts = append(parts, ContentPart{Type: "text", Content: s.Val})
				continue
			}
			return nil, fmt.Errorf("render: multimodal item must be a map or string, got %T", item)
		}
		part, err := multimodalPart(m)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func multimodalPart(m *ast.Map) (ContentPart, error) {
	part := ContentPart{Type: "text"}
	if t, ok := m.Entries["type"]; ok {
		s, ok := t.(*ast.String)
		if !ok {
			return ContentPart{}, fmt.Errorf("render: multimodal \"type\" must be a string")
		}
		part.Type = s.Val
	}
	if c, ok := m.Entries["content"]; ok {
		s, ok := c.(*ast.String)
		if !ok {
			return ContentPart{}, fmt.Errorf("render: multimodal \"content\" must be a string")
		}
		part.Content = s.Val
	}
	if md, ok := m.Entries["metadata"]; ok {
		mm, ok := md.(*ast.Map)
		if ok {
			part.Metadata = make(map[string]interface{}, len(mm.Keys))
			for _, k := range mm.Keys {
				part.Metadata[k] = toGoShallow(mm.Entries[k])
			}
		}
	}
	return part, nil
}

func toGoShallow(v ast.Value) interface{} {
	switch vv := v.(type) {
	case *ast.String:
		return vv.Val
	case *ast.Scalar:
		return scalarText(vv)
	default:
		return nil
	}
}

func scalarText(s *ast.Scalar) string {
	switch s.Kind {
	case ast.ScalarInt:
		return fmt.Sprintf("%d", s.IntVal)
	case ast.ScalarFloat:
		return fmt.Sprintf("%g", s.FltVal)
	case ast.ScalarBool:
		if s.BoolVal {
			return "true"
		}
		return "false"
	default:
		return "null"
	}
}
