package validate

import "github.com/rokoss21/facet-compiler/ast"

// lowerTypeNode lowers a syntax-level TypeNode (the @interface / @var_types
// declaration grammar) into the semantic Type lattice that InferType and
// the engine's assignability checks operate over. An unrecognized
// primitive name is reported via the F402 code rather than a panic, since
// it is an author typo ("strnig" for "string"), not an engine bug.
func lowerTypeNode(t ast.TypeNode) (ast.Type, error) {
	switch tt := t.(type) {
	case ast.PrimitiveTypeNode:
		switch tt.Name {
		case "string":
			return ast.Primitive{Kind: ast.PrimString}, nil
		case "int", "float", "number":
			return ast.Primitive{Kind: ast.PrimNumber}, nil
		case "bool", "boolean":
			return ast.Primitive{Kind: ast.PrimBoolean}, nil
		case "null":
			return ast.Primitive{Kind: ast.PrimNull}, nil
		case "any":
			return ast.AnyType{}, nil
		default:
			return nil, errTypeInferenceFailed(tt.Name, "unknown primitive type name")
		}
	case ast.ListTypeNode:
		elem, err := lowerTypeNode(tt.Elem)
		if err != nil {
			return nil, err
		}
		return ast.ListType{Elem: elem}, nil
	case ast.MapTypeNode:
		elem, err := lowerTypeNode(tt.Elem)
		if err != nil {
			return nil, err
		}
		return ast.MapType{Elem: elem}, nil
	case ast.UnionTypeNode:
		variants := make([]ast.Type, 0, len(tt.Variants))
		for _, v := range tt.Variants {
			lv, err := lowerTypeNode(v)
			if err != nil {
				return nil, err
			}
			variants = append(variants, lv)
		}
		return ast.NewUnion(variants), nil
	case ast.StructTypeNode:
		fields := make([]ast.StructField, 0, len(tt.Order))
		for _, name := range tt.Order {
			ft, err := lowerTypeNode(tt.Fields[name])
			if err != nil {
				return nil, err
			}
			fields = append(fields, ast.StructField{Name: name, Type: ft, Required: true})
		}
		return ast.StructType{Fields: fields}, nil
	case ast.ImageTypeNode:
		return ast.ImageType{MaxDim: tt.MaxDim, Format: tt.Format}, nil
	case ast.AudioTypeNode:
		return ast.AudioType{MaxDuration: tt.MaxDuration, Format: tt.Format}, nil
	case ast.EmbeddingTypeNode:
		return ast.EmbeddingType{Size: tt.Size}, nil
	default:
		return nil, errTypeInferenceFailed("", "unrecognized type node")
	}
}
