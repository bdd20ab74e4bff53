package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rokoss21/facet-compiler/ast"
)

// lineNode is one entry in the indentation tree built from the flat,
// pre-validated line list: a line plus every subsequent line indented
// exactly one level deeper, recursively.
type lineNode struct {
	ln       line
	children []*lineNode
}

func buildTree(lines []line) []*lineNode {
	pos := 0
	var build func(level int) []*lineNode
	build = func(level int) []*lineNode {
		var nodes []*lineNode
		for pos < len(lines) && lines[pos].indent == level {
			n := &lineNode{ln: lines[pos]}
			pos++
			n.children = build(level + 1)
			nodes = append(nodes, n)
		}
		return nodes
	}
	return build(0)
}

// Parse converts facet source text into a Document. Parser errors are
// fatal: the first one encountered aborts parsing entirely.
func Parse(src string) (*ast.Document, error) {
	lines, err := splitLines(src)
	if err != nil {
		return nil, err
	}
	tree := buildTree(lines)

	doc := &ast.Document{Span_: ast.Span{Line: 1, Column: 1}}
	for _, top := range tree {
		node, err := parseTopLevel(top)
		if err != nil {
			return nil, err
		}
		doc.Blocks = append(doc.Blocks, node)
	}
	if len(lines) > 0 {
		last := lines[len(lines)-1]
		doc.Span_.End = last.col + len(last.text)
	}
	return doc, nil
}

var headerRe = regexp.MustCompile(`^@([A-Za-z_][A-Za-z0-9_]*)(\((.*)\))?\s*$`)

func parseTopLevel(n *lineNode) (ast.TopLevel, error) {
	// `@import "path"` carries its path after the tag rather than in parentheses.
	if strings.HasPrefix(n.ln.text, "@import ") {
		return parseImport(n, strings.TrimPrefix(n.ln.text, "@import "))
	}
	m := headerRe.FindStringSubmatch(n.ln.text)
	if m == nil {
		return nil, &Error{Code: "F003", Message: "expected '@name' block header", Line: n.ln.lineNo, Column: n.ln.col}
	}
	name := m[1]
	attrsSrc := m[3]

	switch name {
	case "import":
		return parseImport(n, attrsSrc)
	case "interface":
		return parseInterface(n, attrsSrc)
	case "test":
		return parseTest(n, attrsSrc)
	default:
		return parseGenericBlock(n, name, attrsSrc)
	}
}

func blockKindForName(name string) ast.BlockKind {
	switch name {
	case "system":
		return ast.BlockSystem
	case "user":
		return ast.BlockUser
	case "assistant":
		return ast.BlockAssistant
	case "vars":
		return ast.BlockVars
	case "var_types":
		return ast.BlockVarTypes
	case "context":
		return ast.BlockContext
	default:
		return ast.BlockMeta
	}
}

func parseHeaderAttrs(attrsSrc string, lineNo, col int) (map[string]ast.Value, []string, error) {
	if strings.TrimSpace(attrsSrc) == "" {
		return nil, nil, nil
	}
	vp, err := newValueParser(attrsSrc, lineNo, col)
	if err != nil {
		return nil, nil, err
	}
	attrs := make(map[string]ast.Value)
	var order []string
	for vp.peek().kind != tokEOF {
		if vp.peek().kind != tokIdent {
			return nil, nil, vp.errf("expected attribute name")
		}
		key := vp.advance().text
		if vp.peek().kind != tokEquals {
			return nil, nil, vp.errf("expected '=' after attribute %q", key)
		}
		vp.advance()
		v, err := vp.parseSimpleValue()
		if err != nil {
			return nil, nil, err
		}
		if _, exists := attrs[key]; !exists {
			order = append(order, key)
		}
		attrs[key] = v
		if vp.peek().kind == tokComma {
			vp.advance()
		}
	}
	return attrs, order, nil
}

func parseImport(n *lineNode, attrsSrc string) (*ast.Import, error) {
	vp, err := newValueParser(attrsSrc, n.ln.lineNo, n.ln.col)
	if err != nil {
		return nil, err
	}
	if vp.peek().kind != tokString {
		return nil, &Error{Code: "F003", Message: "@import requires a string path", Line: n.ln.lineNo, Column: n.ln.col}
	}
	path := vp.advance().text
	return &ast.Import{Path: path, Span_: ast.Span{Line: n.ln.lineNo, Column: n.ln.col}}, nil
}

func parseGenericBlock(n *lineNode, name, attrsSrc string) (*ast.Block, error) {
	attrs, order, err := parseHeaderAttrs(attrsSrc, n.ln.lineNo, n.ln.col)
	if err != nil {
		return nil, err
	}
	b := &ast.Block{
		Kind:       blockKindForName(name),
		Name:       name,
		Attributes: attrs,
		AttrOrder:  order,
		Span_:      ast.Span{Line: n.ln.lineNo, Column: n.ln.col},
	}
	for _, child := range n.children {
		var item ast.BodyItem
		var err error
		if b.Kind == ast.BlockVarTypes {
			item, err = parseTypeDeclItem(child)
		} else {
			item, err = parseBodyItem(child)
		}
		if err != nil {
			return nil, err
		}
		b.Body = append(b.Body, item)
	}
	return b, nil
}

// parseTypeDeclItem parses a @var_types body line, e.g.
// `age: Int(min=0, max=150)`, using the TypeNode grammar instead of the
// Value grammar parseBodyItem uses for every other block kind.
func parseTypeDeclItem(n *lineNode) (ast.BodyItem, error) {
	text := n.ln.text
	idx := strings.Index(text, ":")
	if idx < 0 {
		return nil, &Error{Code: "F003", Message: "expected 'name: Type' var_types entry", Line: n.ln.lineNo, Column: n.ln.col}
	}
	key := strings.TrimSpace(text[:idx])
	rest := text[idx+1:]
	vp, err := newValueParser(rest, n.ln.lineNo, n.ln.col+idx+1)
	if err != nil {
		return nil, err
	}
	decl, err := vp.ParseVarTypeDecl()
	if err != nil {
		return nil, err
	}
	return &ast.TypeDecl{Key: key, Decl: decl, Span_: ast.Span{Line: n.ln.lineNo, Column: n.ln.col}}, nil
}

func parseBodyItem(n *lineNode) (ast.BodyItem, error) {
	text := n.ln.text
	if strings.HasPrefix(text, "- ") {
		vp, err := newValueParser(text[2:], n.ln.lineNo, n.ln.col+2)
		if err != nil {
			return nil, err
		}
		v, err := vp.ParseValue()
		if err != nil {
			return nil, err
		}
		return &ast.ListItem{Value: v, Span_: ast.Span{Line: n.ln.lineNo, Column: n.ln.col}}, nil
	}

	idx := strings.Index(text, ":")
	if idx < 0 {
		return nil, &Error{Code: "F003", Message: "expected 'key: value' or '- value' body item", Line: n.ln.lineNo, Column: n.ln.col}
	}
	key := strings.TrimSpace(text[:idx])
	rest := text[idx+1:]
	vp, err := newValueParser(rest, n.ln.lineNo, n.ln.col+idx+1)
	if err != nil {
		return nil, err
	}
	v, err := vp.ParseValue()
	if err != nil {
		return nil, err
	}
	return &ast.KeyValue{Key: key, Value: v, Span_: ast.Span{Line: n.ln.lineNo, Column: n.ln.col}}, nil
}

// parseInterface parses a `name(p1: Type, ...) -> RetType` line per
// function, one function per child line. The interface is named by the
// header's name="..." attribute, or "interface" when that is absent.
func parseInterface(n *lineNode, attrsSrc string) (*ast.Interface, error) {
	attrs, _, err := parseHeaderAttrs(attrsSrc, n.ln.lineNo, n.ln.col)
	if err != nil {
		return nil, err
	}
	name := "interface"
	if s, ok := attrs["name"].(*ast.String); ok {
		name = s.Val
	}
	iface := &ast.Interface{Name: name, Span_: ast.Span{Line: n.ln.lineNo, Column: n.ln.col}}
	for _, child := range n.children {
		fn, err := parseFunctionSignature(child.ln)
		if err != nil {
			return nil, err
		}
		iface.Functions = append(iface.Functions, fn)
	}
	return iface, nil
}

var funcSigRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\((.*)\)\s*->\s*(.+)$`)

func parseFunctionSignature(ln line) (ast.FunctionSignature, error) {
	m := funcSigRe.FindStringSubmatch(ln.text)
	if m == nil {
		return ast.FunctionSignature{}, &Error{Code: "F003", Message: "expected 'name(params) -> ReturnType' function signature", Line: ln.lineNo, Column: ln.col}
	}
	fn := ast.FunctionSignature{Name: m[1], Span_: ast.Span{Line: ln.lineNo, Column: ln.col}}

	paramsSrc := strings.TrimSpace(m[2])
	if paramsSrc != "" {
		for _, part := range splitTopLevelCommas(paramsSrc) {
			part = strings.TrimSpace(part)
			colonIdx := strings.Index(part, ":")
			if colonIdx < 0 {
				return ast.FunctionSignature{}, &Error{Code: "F003", Message: "expected 'name: Type' parameter", Line: ln.lineNo, Column: ln.col}
			}
			pname := strings.TrimSpace(part[:colonIdx])
			ptypeSrc := part[colonIdx+1:]
			vp, err := newValueParser(ptypeSrc, ln.lineNo, ln.col)
			if err != nil {
				return ast.FunctionSignature{}, err
			}
			ptype, err := vp.ParseTypeNode()
			if err != nil {
				return ast.FunctionSignature{}, err
			}
			fn.Params = append(fn.Params, ast.Parameter{Name: pname, Type: ptype, Span_: ast.Span{Line: ln.lineNo, Column: ln.col}})
		}
	}

	vp, err := newValueParser(strings.TrimSpace(m[3]), ln.lineNo, ln.col)
	if err != nil {
		return ast.FunctionSignature{}, err
	}
	ret, err := vp.ParseTypeNode()
	if err != nil {
		return ast.FunctionSignature{}, err
	}
	fn.ReturnType = ret
	return fn, nil
}

func splitTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	last := 0
	for i, r := range s {
		switch r {
		case '[', '{', '(':
			depth++
		case ']', '}', ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}

// parseTest parses an @test block: optional `vars:`, `mock:`, `assert:`
// sub-sections as well as any ordinary body items retained for backward
// compatibility, matching the original fct-ast TestBlock shape.
func parseTest(n *lineNode, attrsSrc string) (*ast.Test, error) {
	attrs, _, err := parseHeaderAttrs(attrsSrc, n.ln.lineNo, n.ln.col)
	if err != nil {
		return nil, err
	}
	name := ""
	if nameVal, ok := attrs["name"]; ok {
		if s, ok := nameVal.(*ast.String); ok {
			name = s.Val
		}
	}
	t := &ast.Test{Name: name, Span_: ast.Span{Line: n.ln.lineNo, Column: n.ln.col}}

	for _, child := range n.children {
		text := strings.TrimSpace(child.ln.text)
		switch {
		case text == "vars:":
			for _, vchild := range child.children {
				item, err := parseBodyItem(vchild)
				if err != nil {
					return nil, err
				}
				if kv, ok := item.(*ast.KeyValue); ok {
					t.SetVar(kv.Key, kv.Value)
				}
			}
		case text == "mock:":
			for _, mchild := range child.children {
				idx := strings.Index(mchild.ln.text, ":")
				if idx < 0 {
					return nil, &Error{Code: "F003", Message: "expected 'target: value' mock entry", Line: mchild.ln.lineNo, Column: mchild.ln.col}
				}
				target := strings.TrimSpace(mchild.ln.text[:idx])
				vp, err := newValueParser(mchild.ln.text[idx+1:], mchild.ln.lineNo, mchild.ln.col+idx+1)
				if err != nil {
					return nil, err
				}
				v, err := vp.ParseValue()
				if err != nil {
					return nil, err
				}
				t.Mocks = append(t.Mocks, ast.MockDefinition{Target: target, Return: v, Span_: ast.Span{Line: mchild.ln.lineNo, Column: mchild.ln.col}})
			}
		case text == "assert:":
			for _, achild := range child.children {
				assertion, err := parseAssertion(achild.ln)
				if err != nil {
					return nil, err
				}
				t.Assertions = append(t.Assertions, assertion)
			}
		default:
			item, err := parseBodyItem(child)
			if err != nil {
				return nil, err
			}
			t.Body = append(t.Body, item)
		}
	}
	return t, nil
}

var (
	reAssertContains    = regexp.MustCompile(`^(\S+)\s+contains\s+"((?:[^"\\]|\\.)*)"$`)
	reAssertNotContains = regexp.MustCompile(`^(\S+)\s+not_contains\s+"((?:[^"\\]|\\.)*)"$`)
	reAssertMatches     = regexp.MustCompile(`^(\S+)\s+matches\s+"((?:[^"\\]|\\.)*)"$`)
	reAssertNotMatches  = regexp.MustCompile(`^(\S+)\s+not_matches\s+"((?:[^"\\]|\\.)*)"$`)
	reAssertLess        = regexp.MustCompile(`^(\S+)\s*<\s*(-?[0-9.]+)$`)
	reAssertGreater     = regexp.MustCompile(`^(\S+)\s*>\s*(-?[0-9.]+)$`)
	reAssertSentiment   = regexp.MustCompile(`^sentiment\s+"((?:[^"\\]|\\.)*)"$`)
	reAssertTrue        = regexp.MustCompile(`^(\S+)\s+is_true$`)
	reAssertFalse       = regexp.MustCompile(`^(\S+)\s+is_false$`)
	reAssertNull        = regexp.MustCompile(`^(\S+)\s+is_null$`)
	reAssertNotNull     = regexp.MustCompile(`^(\S+)\s+is_not_null$`)
)

// parseAssertion recognizes the shorthand string forms from spec.md §4.1
// (`output contains "hello"`, `cost < 0.01`, `sentiment "positive"`, ...)
// directly from the raw line text.
func parseAssertion(ln line) (ast.Assertion, error) {
	text := strings.TrimSpace(ln.text)
	span := ast.Span{Line: ln.lineNo, Column: ln.col}

	switch {
	case reAssertSentiment.MatchString(text):
		m := reAssertSentiment.FindStringSubmatch(text)
		return ast.Assertion{Kind: ast.AssertSentiment{Target: "output", Expected: m[1]}, Span_: span}, nil
	case reAssertContains.MatchString(text):
		m := reAssertContains.FindStringSubmatch(text)
		return ast.Assertion{Kind: ast.AssertContains{Target: m[1], Text: m[2]}, Span_: span}, nil
	case reAssertNotContains.MatchString(text):
		m := reAssertNotContains.FindStringSubmatch(text)
		return ast.Assertion{Kind: ast.AssertNotContains{Target: m[1], Text: m[2]}, Span_: span}, nil
	case reAssertMatches.MatchString(text):
		m := reAssertMatches.FindStringSubmatch(text)
		return ast.Assertion{Kind: ast.AssertMatches{Target: m[1], Pattern: m[2]}, Span_: span}, nil
	case reAssertNotMatches.MatchString(text):
		m := reAssertNotMatches.FindStringSubmatch(text)
		return ast.Assertion{Kind: ast.AssertNotMatches{Target: m[1], Pattern: m[2]}, Span_: span}, nil
	case reAssertLess.MatchString(text):
		m := reAssertLess.FindStringSubmatch(text)
		v, _ := strconv.ParseFloat(m[2], 64)
		return ast.Assertion{Kind: ast.AssertLessThan{Field: m[1], Value: v}, Span_: span}, nil
	case reAssertGreater.MatchString(text):
		m := reAssertGreater.FindStringSubmatch(text)
		v, _ := strconv.ParseFloat(m[2], 64)
		return ast.Assertion{Kind: ast.AssertGreaterThan{Field: m[1], Value: v}, Span_: span}, nil
	case reAssertTrue.MatchString(text):
		m := reAssertTrue.FindStringSubmatch(text)
		return ast.Assertion{Kind: ast.AssertTrue{Target: m[1]}, Span_: span}, nil
	case reAssertFalse.MatchString(text):
		m := reAssertFalse.FindStringSubmatch(text)
		return ast.Assertion{Kind: ast.AssertFalse{Target: m[1]}, Span_: span}, nil
	case reAssertNull.MatchString(text):
		m := reAssertNull.FindStringSubmatch(text)
		return ast.Assertion{Kind: ast.AssertNull{Target: m[1]}, Span_: span}, nil
	case reAssertNotNull.MatchString(text):
		m := reAssertNotNull.FindStringSubmatch(text)
		return ast.Assertion{Kind: ast.AssertNotNull{Target: m[1]}, Span_: span}, nil
	default:
		return parseAssertionMapForm(text, span)
	}
}

// parseAssertionMapForm handles the preferred, explicit map form, e.g.
// `{kind: "equals", target: "output", expected: "hi"}`.
func parseAssertionMapForm(text string, span ast.Span) (ast.Assertion, error) {
	vp, err := newValueParser(text, span.Line, span.Column)
	if err != nil {
		return ast.Assertion{}, err
	}
	v, err := vp.ParseValue()
	if err != nil {
		return ast.Assertion{}, &Error{Code: "F003", Message: "unrecognized assertion form", Line: span.Line, Column: span.Column}
	}
	m, ok := v.(*ast.Map)
	if !ok {
		return ast.Assertion{}, &Error{Code: "F003", Message: "unrecognized assertion form", Line: span.Line, Column: span.Column}
	}
	kindVal, _ := m.Entries["kind"].(*ast.String)
	target := ""
	if tv, ok := m.Entries["target"].(*ast.String); ok {
		target = tv.Val
	}
	field := target
	if fv, ok := m.Entries["field"].(*ast.String); ok {
		field = fv.Val
	}
	kind := ""
	if kindVal != nil {
		kind = kindVal.Val
	}
	switch kind {
	case "contains":
		text := stringField(m, "text")
		return ast.Assertion{Kind: ast.AssertContains{Target: target, Text: text}, Span_: span}, nil
	case "not_contains":
		text := stringField(m, "text")
		return ast.Assertion{Kind: ast.AssertNotContains{Target: target, Text: text}, Span_: span}, nil
	case "equals":
		return ast.Assertion{Kind: ast.AssertEquals{Target: target, Expected: m.Entries["expected"]}, Span_: span}, nil
	case "not_equals":
		return ast.Assertion{Kind: ast.AssertNotEquals{Target: target, Expected: m.Entries["expected"]}, Span_: span}, nil
	case "less_than":
		return ast.Assertion{Kind: ast.AssertLessThan{Field: field, Value: floatField(m, "value")}, Span_: span}, nil
	case "greater_than":
		return ast.Assertion{Kind: ast.AssertGreaterThan{Field: field, Value: floatField(m, "value")}, Span_: span}, nil
	case "sentiment":
		return ast.Assertion{Kind: ast.AssertSentiment{Target: target, Expected: stringField(m, "expected")}, Span_: span}, nil
	case "matches":
		return ast.Assertion{Kind: ast.AssertMatches{Target: target, Pattern: stringField(m, "pattern")}, Span_: span}, nil
	case "not_matches":
		return ast.Assertion{Kind: ast.AssertNotMatches{Target: target, Pattern: stringField(m, "pattern")}, Span_: span}, nil
	case "true":
		return ast.Assertion{Kind: ast.AssertTrue{Target: target}, Span_: span}, nil
	case "false":
		return ast.Assertion{Kind: ast.AssertFalse{Target: target}, Span_: span}, nil
	case "null":
		return ast.Assertion{Kind: ast.AssertNull{Target: target}, Span_: span}, nil
	case "not_null":
		return ast.Assertion{Kind: ast.AssertNotNull{Target: target}, Span_: span}, nil
	default:
		return ast.Assertion{}, &Error{Code: "F003", Message: "unrecognized assertion kind: " + kind, Line: span.Line, Column: span.Column}
	}
}

func stringField(m *ast.Map, key string) string {
	if v, ok := m.Entries[key].(*ast.String); ok {
		return v.Val
	}
	return ""
}

func floatField(m *ast.Map, key string) float64 {
	if v, ok := m.Entries[key].(*ast.Scalar); ok {
		if v.Kind == ast.ScalarFloat {
			return v.FltVal
		}
		return float64(v.IntVal)
	}
	return 0
}
