package parser

import (
	"fmt"

	"github.com/rokoss21/facet-compiler/ast"
)

// valueParser parses a single logical-line expression (the text to the
// right of `key:`, `- `, or inside a header's attribute list) into an
// ast.Value. It operates over a fully pre-lexed token slice so lookahead
// is trivial.
type valueParser struct {
	toks   []token
	pos    int
	lineNo int
}

func newValueParser(src string, lineNo, col0 int) (*valueParser, error) {
	lx := newExprLexer(src, lineNo, col0)
	var toks []token
	for {
		t, err := lx.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			break
		}
	}
	return &valueParser{toks: toks, lineNo: lineNo}, nil
}

func (p *valueParser) peek() token  { return p.toks[p.pos] }
func (p *valueParser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *valueParser) span(startCol int) ast.Span {
	return ast.Span{Line: p.lineNo, Column: startCol, Start: startCol, End: p.peek().col}
}

func (p *valueParser) errf(format string, args ...any) error {
	return &Error{Code: "F003", Message: fmt.Sprintf(format, args...), Line: p.lineNo, Column: p.peek().col}
}

// ParseValue parses the whole remaining token stream as one value,
// including a trailing pipeline chain.
func (p *valueParser) ParseValue() (ast.Value, error) {
	base, err := p.parsePrimary(true)
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokPipe {
		return base, nil
	}
	startCol := base.Pos().Column
	pipeline := &ast.Pipeline{Initial: base, Span_: ast.Span{Line: p.lineNo, Column: startCol}}
	for p.peek().kind == tokPipe {
		p.advance()
		lc, err := p.parseLensCall()
		if err != nil {
			return nil, err
		}
		pipeline.Lenses = append(pipeline.Lenses, lc)
	}
	pipeline.Span_.End = p.peek().col
	return pipeline, nil
}

// parseSimpleValue restricts the grammar to Scalar/String/Variable/
// Directive, matching the original parser's parse_value_simple used for
// lens-call arguments: arguments themselves never recurse into nested
// lists, maps, or pipelines.
func (p *valueParser) parseSimpleValue() (ast.Value, error) {
	return p.parsePrimary(false)
}

func (p *valueParser) parsePrimary(allowRecursive bool) (ast.Value, error) {
	t := p.peek()
	startCol := t.col
	switch t.kind {
	case tokString:
		p.advance()
		return &ast.String{Val: t.text, Span_: ast.Span{Line: p.lineNo, Column: startCol}}, nil
	case tokInt:
		p.advance()
		return &ast.Scalar{Kind: ast.ScalarInt, IntVal: t.ival, Span_: ast.Span{Line: p.lineNo, Column: startCol}}, nil
	case tokFloat:
		p.advance()
		return &ast.Scalar{Kind: ast.ScalarFloat, FltVal: t.fval, Span_: ast.Span{Line: p.lineNo, Column: startCol}}, nil
	case tokTrue:
		p.advance()
		return &ast.Scalar{Kind: ast.ScalarBool, BoolVal: true, Span_: ast.Span{Line: p.lineNo, Column: startCol}}, nil
	case tokFalse:
		p.advance()
		return &ast.Scalar{Kind: ast.ScalarBool, BoolVal: false, Span_: ast.Span{Line: p.lineNo, Column: startCol}}, nil
	case tokNull:
		p.advance()
		return &ast.Scalar{Kind: ast.ScalarNull, Span_: ast.Span{Line: p.lineNo, Column: startCol}}, nil
	case tokDollar:
		return p.parseVariable()
	case tokAt:
		return p.parseDirective()
	case tokLBracket:
		if !allowRecursive {
			return nil, p.errf("list literals are not allowed in lens-call arguments")
		}
		return p.parseList()
	case tokLBrace:
		if !allowRecursive {
			return nil, p.errf("map literals are not allowed in lens-call arguments")
		}
		return p.parseMap()
	default:
		return nil, p.errf("unexpected token in value position")
	}
}

func (p *valueParser) parseVariable() (ast.Value, error) {
	startCol := p.peek().col
	p.advance() // '$'
	if p.peek().kind != tokIdent {
		return nil, p.errf("expected identifier after '$'")
	}
	name := p.advance().text
	for p.peek().kind == tokDot {
		p.advance()
		if p.peek().kind != tokIdent {
			return nil, p.errf("expected identifier after '.' in variable reference")
		}
		name += "." + p.advance().text
	}
	return &ast.Variable{Name: name, Span_: ast.Span{Line: p.lineNo, Column: startCol}}, nil
}

func (p *valueParser) parseDirective() (ast.Value, error) {
	startCol := p.peek().col
	p.advance() // '@'
	if p.peek().kind != tokIdent {
		return nil, p.errf("expected identifier after '@'")
	}
	name := p.advance().text
	d := &ast.Directive{Name: name, Span_: ast.Span{Line: p.lineNo, Column: startCol}}
	if p.peek().kind == tokLParen {
		p.advance()
		for p.peek().kind != tokRParen {
			if p.peek().kind == tokEOF {
				return nil, errUnclosedDelimiter(p.lineNo, startCol, "(")
			}
			if p.peek().kind != tokIdent {
				return nil, p.errf("expected keyword argument name in directive")
			}
			key := p.advance().text
			if p.peek().kind != tokEquals {
				return nil, p.errf("expected '=' after directive argument name %q", key)
			}
			p.advance()
			v, err := p.parseSimpleValue()
			if err != nil {
				return nil, err
			}
			d.SetArg(key, v)
			if p.peek().kind == tokComma {
				p.advance()
			}
		}
		p.advance() // ')'
	}
	return d, nil
}

func (p *valueParser) parseList() (ast.Value, error) {
	startCol := p.peek().col
	p.advance() // '['
	l := &ast.List{Span_: ast.Span{Line: p.lineNo, Column: startCol}}
	for p.peek().kind != tokRBracket {
		if p.peek().kind == tokEOF {
			return nil, errUnclosedDelimiter(p.lineNo, startCol, "[")
		}
		v, err := p.ParseValue()
		if err != nil {
			return nil, err
		}
		l.Items = append(l.Items, v)
		if p.peek().kind == tokComma {
			p.advance()
		}
	}
	p.advance() // ']'
	return l, nil
}

func (p *valueParser) parseMap() (ast.Value, error) {
	startCol := p.peek().col
	p.advance() // '{'
	m := ast.NewMap(ast.Span{Line: p.lineNo, Column: startCol})
	for p.peek().kind != tokRBrace {
		if p.peek().kind == tokEOF {
			return nil, errUnclosedDelimiter(p.lineNo, startCol, "{")
		}
		if p.peek().kind != tokIdent && p.peek().kind != tokString {
			return nil, p.errf("expected map key")
		}
		key := p.advance().text
		if p.peek().kind != tokColon {
			return nil, p.errf("expected ':' after map key %q", key)
		}
		p.advance()
		v, err := p.ParseValue()
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
		if p.peek().kind == tokComma {
			p.advance()
		}
	}
	p.advance() // '}'
	return m, nil
}

func (p *valueParser) parseLensCall() (*ast.LensCall, error) {
	if p.peek().kind != tokIdent {
		return nil, p.errf("expected lens name after '|>'")
	}
	startCol := p.peek().col
	name := p.advance().text
	lc := &ast.LensCall{Name: name, Span_: ast.Span{Line: p.lineNo, Column: startCol}}
	if p.peek().kind != tokLParen {
		return lc, nil
	}
	p.advance()
	for p.peek().kind != tokRParen {
		if p.peek().kind == tokEOF {
			return nil, errUnclosedDelimiter(p.lineNo, startCol, "(")
		}
		// Keyword argument: IDENT '=' value. Disambiguate from a bare
		// positional identifier/variable by lookahead.
		if p.peek().kind == tokIdent && p.toks[p.pos+1].kind == tokEquals {
			key := p.advance().text
			p.advance() // '='
			v, err := p.parseSimpleValue()
			if err != nil {
				return nil, err
			}
			lc.SetKwarg(key, v)
		} else {
			v, err := p.parseSimpleValue()
			if err != nil {
				return nil, err
			}
			lc.Args = append(lc.Args, v)
		}
		if p.peek().kind == tokComma {
			p.advance()
		}
	}
	p.advance() // ')'
	return lc, nil
}
