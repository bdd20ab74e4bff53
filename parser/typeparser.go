package parser

import "github.com/rokoss21/facet-compiler/ast"

// ParseTypeNode parses the type-expression grammar used in @interface
// parameter/return positions and @var_types declarations:
//
//	string | int | float | bool | null | any
//	List[T]  Map[T]
//	{ field: T, ... }
//	T1 | T2 | ...
//	Image(max_dim=512, format="png")
//	Audio(max_duration=30.0, format="wav")
//	Embedding(size=768)
//
// Struct fields have no optional form: a `?` after a field name is a
// parse error.
func (p *valueParser) ParseTypeNode() (ast.TypeNode, error) {
	first, err := p.parseTypeTerm()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokPipeBar {
		return first, nil
	}
	variants := []ast.TypeNode{first}
	for p.peek().kind == tokPipeBar {
		p.advance()
		next, err := p.parseTypeTerm()
		if err != nil {
			return nil, err
		}
		variants = append(variants, next)
	}
	return ast.UnionTypeNode{Variants: variants}, nil
}

func (p *valueParser) parseTypeTerm() (ast.TypeNode, error) {
	t := p.peek()
	switch t.kind {
	case tokLBrace:
		return p.parseStructTypeNode()
	case tokIdent:
		name := t.text
		switch name {
		case "List":
			p.advance()
			if p.peek().kind != tokLBracket {
				return nil, p.errf("expected '[' after List")
			}
			p.advance()
			elem, err := p.ParseTypeNode()
			if err != nil {
				return nil, err
			}
			if p.peek().kind != tokRBracket {
				return nil, p.errf("expected ']' closing List[")
			}
			p.advance()
			return ast.ListTypeNode{Elem: elem}, nil
		case "Map":
			p.advance()
			if p.peek().kind != tokLBracket {
				return nil, p.errf("expected '[' after Map")
			}
			p.advance()
			elem, err := p.ParseTypeNode()
			if err != nil {
				return nil, err
			}
			if p.peek().kind != tokRBracket {
				return nil, p.errf("expected ']' closing Map[")
			}
			p.advance()
			return ast.MapTypeNode{Elem: elem}, nil
		case "Image":
			p.advance()
			return p.parseImageType()
		case "Audio":
			p.advance()
			return p.parseAudioType()
		case "Embedding":
			p.advance()
			return p.parseEmbeddingType()
		default:
			p.advance()
			return ast.PrimitiveTypeNode{Name: name}, nil
		}
	default:
		return nil, p.errf("expected type expression")
	}
}

// parseConstraintArgs parses the `(min=0, max=150, pattern="...",
// enum_values=["a","b"])` tail of a @var_types declaration. Unlike
// Image/Audio/Embedding's argument lists, these apply to any primitive
// type name, so they are parsed separately rather than folded into
// parseTypeTerm.
func (p *valueParser) parseConstraintArgs() (ast.Constraints, error) {
	var c ast.Constraints
	if p.peek().kind != tokLParen {
		return c, nil
	}
	p.advance() // '('
	for p.peek().kind != tokRParen {
		if p.peek().kind == tokEOF {
			return c, p.errf("unclosed constraint argument list")
		}
		if p.peek().kind != tokIdent {
			return c, p.errf("expected constraint argument name")
		}
		key := p.advance().text
		if p.peek().kind != tokEquals {
			return c, p.errf("expected '=' after constraint argument %q", key)
		}
		p.advance()
		switch key {
		case "min", "max":
			t := p.advance()
			var f float64
			switch t.kind {
			case tokInt:
				f = float64(t.ival)
			case tokFloat:
				f = t.fval
			default:
				return c, p.errf("expected numeric value for %q", key)
			}
			if key == "min" {
				c.Min = &f
			} else {
				c.Max = &f
			}
		case "pattern":
			if p.peek().kind != tokString {
				return c, p.errf("expected string value for %q", key)
			}
			s := p.advance().text
			c.Pattern = &s
		case "enum_values":
			if p.peek().kind != tokLBracket {
				return c, p.errf("expected list value for %q", key)
			}
			p.advance()
			for p.peek().kind != tokRBracket {
				if p.peek().kind == tokEOF {
					return c, p.errf("unclosed enum_values list")
				}
				if p.peek().kind != tokString {
					return c, p.errf("enum_values entries must be strings")
				}
				c.EnumValues = append(c.EnumValues, p.advance().text)
				if p.peek().kind == tokComma {
					p.advance()
				}
			}
			p.advance() // ']'
		default:
			// Unrecognized constraint keyword: skip its value so a
			// forward-compatible addition doesn't hard-fail parsing.
			p.advance()
		}
		if p.peek().kind == tokComma {
			p.advance()
		}
	}
	p.advance() // ')'
	return c, nil
}

// ParseVarTypeDecl parses one @var_types entry's right-hand side: a
// TypeNode followed by an optional constraint argument list. Only
// primitive type names carry constraints; container/union/multimodal
// types stop at the TypeNode grammar itself.
func (p *valueParser) ParseVarTypeDecl() (ast.VarTypeDecl, error) {
	t, err := p.ParseTypeNode()
	if err != nil {
		return ast.VarTypeDecl{}, err
	}
	if _, ok := t.(ast.PrimitiveTypeNode); !ok {
		return ast.VarTypeDecl{Type: t}, nil
	}
	c, err := p.parseConstraintArgs()
	if err != nil {
		return ast.VarTypeDecl{}, err
	}
	return ast.VarTypeDecl{Type: t, Constraints: c}, nil
}

func (p *valueParser) parseStructTypeNode() (ast.TypeNode, error) {
	startCol := p.peek().col
	p.advance() // '{'
	s := ast.StructTypeNode{Fields: make(map[string]ast.TypeNode)}
	for p.peek().kind != tokRBrace {
		if p.peek().kind == tokEOF {
			return nil, errUnclosedDelimiter(p.lineNo, startCol, "{")
		}
		if p.peek().kind != tokIdent {
			return nil, p.errf("expected struct field name")
		}
		name := p.advance().text
		if p.peek().kind == tokIdent && p.peek().text == "?" {
			// never true: '?' does not lex as an identifier, so `name?:` fails the ':' check below
		}
		if p.peek().kind != tokColon {
			return nil, p.errf("expected ':' after struct field %q", name)
		}
		p.advance()
		fieldType, err := p.ParseTypeNode()
		if err != nil {
			return nil, err
		}
		s.Fields[name] = fieldType
		s.Order = append(s.Order, name)
		if p.peek().kind == tokComma {
			p.advance()
		}
	}
	p.advance() // '}'
	return s, nil
}

func (p *valueParser) parseImageType() (ast.TypeNode, error) {
	img := ast.ImageTypeNode{}
	if p.peek().kind != tokLParen {
		return img, nil
	}
	p.advance()
	for p.peek().kind != tokRParen {
		if p.peek().kind == tokEOF {
			return nil, p.errf("unclosed Image(")
		}
		key := p.advance().text
		if p.peek().kind != tokEquals {
			return nil, p.errf("expected '=' in Image argument")
		}
		p.advance()
		v := p.advance()
		switch key {
		case "max_dim":
			d := int(v.ival)
			img.MaxDim = &d
		case "format":
			f := v.text
			img.Format = &f
		}
		if p.peek().kind == tokComma {
			p.advance()
		}
	}
	p.advance()
	return img, nil
}

func (p *valueParser) parseAudioType() (ast.TypeNode, error) {
	aud := ast.AudioTypeNode{}
	if p.peek().kind != tokLParen {
		return aud, nil
	}
	p.advance()
	for p.peek().kind != tokRParen {
		if p.peek().kind == tokEOF {
			return nil, p.errf("unclosed Audio(")
		}
		key := p.advance().text
		if p.peek().kind != tokEquals {
			return nil, p.errf("expected '=' in Audio argument")
		}
		p.advance()
		v := p.advance()
		switch key {
		case "max_duration":
			d := v.fval
			if v.kind == tokInt {
				d = float64(v.ival)
			}
			aud.MaxDuration = &d
		case "format":
			f := v.text
			aud.Format = &f
		}
		if p.peek().kind == tokComma {
			p.advance()
		}
	}
	p.advance()
	return aud, nil
}

func (p *valueParser) parseEmbeddingType() (ast.TypeNode, error) {
	if p.peek().kind != tokLParen {
		return nil, p.errf("Embedding requires a size argument")
	}
	p.advance()
	size := 0
	for p.peek().kind != tokRParen {
		if p.peek().kind == tokEOF {
			return nil, p.errf("unclosed Embedding(")
		}
		key := p.advance().text
		if p.peek().kind != tokEquals {
			return nil, p.errf("expected '=' in Embedding argument")
		}
		p.advance()
		v := p.advance()
		if key == "size" {
			size = int(v.ival)
		}
		if p.peek().kind == tokComma {
			p.advance()
		}
	}
	p.advance()
	return ast.EmbeddingTypeNode{Size: size}, nil
}
