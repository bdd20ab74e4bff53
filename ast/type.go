package ast

// TypeNode is the syntax-level type representation produced by the
// parser for @interface parameter/return types. It mirrors TypeNode in
// the original fct-ast crate. The validator lowers TypeNode into the
// semantic Type lattice (below) before running assignability checks.
type TypeNode interface {
	typeNode()
}

// PrimitiveTypeNode names a bare primitive: "string", "int", "float",
// "bool", "null", or "any".
type PrimitiveTypeNode struct{ Name string }

// StructTypeNode is a `{field: Type, ...}` structural type literal.
type StructTypeNode struct {
	Fields map[string]TypeNode
	Order  []string
}

// ListTypeNode is `List[Elem]`.
type ListTypeNode struct{ Elem TypeNode }

// MapTypeNode is `Map[Elem]` (keys are always string).
type MapTypeNode struct{ Elem TypeNode }

// UnionTypeNode is `A | B | ...`.
type UnionTypeNode struct{ Variants []TypeNode }

// ImageTypeNode is the multimodal image type with optional constraints.
type ImageTypeNode struct {
	MaxDim *int
	Format *string
}

// AudioTypeNode is the multimodal audio type with optional constraints.
type AudioTypeNode struct {
	MaxDuration *float64
	Format      *string
}

// EmbeddingTypeNode is a fixed-size embedding vector type.
type EmbeddingTypeNode struct{ Size int }

func (PrimitiveTypeNode) typeNode() {}
func (StructTypeNode) typeNode()    {}
func (ListTypeNode) typeNode()      {}
func (MapTypeNode) typeNode()       {}
func (UnionTypeNode) typeNode()     {}
func (ImageTypeNode) typeNode()     {}
func (AudioTypeNode) typeNode()     {}
func (EmbeddingTypeNode) typeNode() {}

// PrimitiveKind enumerates the scalar-level semantic primitives.
type PrimitiveKind int

const (
	PrimString PrimitiveKind = iota
	PrimNumber
	PrimBoolean
	PrimNull
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimString:
		return "string"
	case PrimNumber:
		return "number"
	case PrimBoolean:
		return "boolean"
	case PrimNull:
		return "null"
	default:
		return "?"
	}
}

// Type is the semantic type lattice used by the validator and engine for
// assignability (Accepts). It is a strict superset of TypeNode: Any is
// spelled as the primitive name "any", while Never, Function, and the
// precise Struct required-flag model have no TypeNode counterpart because
// they only ever arise from inference or from validator-only constructs,
// never directly from @interface syntax.
type Type interface {
	// Accepts reports whether a value of type other may be used where
	// this type is expected (this.Accepts(other) ⇔ other assignable to this).
	Accepts(other Type) bool
	String() string
	typ()
}

type AnyType struct{}

func (AnyType) Accepts(Type) bool { return true }
func (AnyType) String() string    { return "any" }
func (AnyType) typ()              {}

type NeverType struct{}

func (n NeverType) Accepts(other Type) bool {
	return dispatchAccept(n, other)
}

func (NeverType) String() string { return "never" }
func (NeverType) typ()           {}

type Primitive struct{ Kind PrimitiveKind }

func (p Primitive) String() string { return p.Kind.String() }
func (Primitive) typ()             {}

func (p Primitive) Accepts(other Type) bool {
	return dispatchAccept(p, other)
}

type ListType struct{ Elem Type }

func (l ListType) String() string { return "List[" + l.Elem.String() + "]" }
func (ListType) typ()             {}
func (l ListType) Accepts(other Type) bool {
	return dispatchAccept(l, other)
}

type MapType struct{ Elem Type }

func (m MapType) String() string { return "Map[" + m.Elem.String() + "]" }
func (MapType) typ()             {}
func (m MapType) Accepts(other Type) bool {
	return dispatchAccept(m, other)
}

// StructField is one named, typed, optionally-required struct member.
type StructField struct {
	Name     string
	Type     Type
	Required bool
}

type StructType struct {
	Fields []StructField
}

func (s StructType) String() string { return "Struct" }
func (StructType) typ()             {}
func (s StructType) Accepts(other Type) bool {
	return dispatchAccept(s, other)
}

// FieldByName looks up a field by name.
func (s StructType) FieldByName(name string) (StructField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return StructField{}, false
}

type UnionType struct{ Variants []Type }

func (u UnionType) String() string { return "Union" }
func (UnionType) typ()             {}
func (u UnionType) Accepts(other Type) bool {
	return dispatchAccept(u, other)
}

// NewUnion normalizes Union[] to Never, per the Never/Union[] open
// question decision: one bottom-type representation.
func NewUnion(variants []Type) Type {
	if len(variants) == 0 {
		return NeverType{}
	}
	return UnionType{Variants: variants}
}

type FunctionType struct {
	Params []Type
	Return Type
}

func (f FunctionType) String() string { return "Function" }
func (FunctionType) typ()             {}
func (f FunctionType) Accepts(other Type) bool {
	return dispatchAccept(f, other)
}

type ImageType struct {
	MaxDim *int
	Format *string
}

func (ImageType) String() string { return "Image" }
func (ImageType) typ()            {}
func (t ImageType) Accepts(other Type) bool { return dispatchAccept(t, other) }

type AudioType struct {
	MaxDuration *float64
	Format      *string
}

func (AudioType) String() string { return "Audio" }
func (AudioType) typ()            {}
func (t AudioType) Accepts(other Type) bool { return dispatchAccept(t, other) }

type EmbeddingType struct{ Size int }

func (EmbeddingType) String() string { return "Embedding" }
func (EmbeddingType) typ()            {}
func (t EmbeddingType) Accepts(other Type) bool { return dispatchAccept(t, other) }

// dispatchAccept implements the full asymmetric subtyping relation from
// spec.md §3, including the Any/Never/Union directional rules decided in
// SPEC_FULL.md §4. Every Accepts method above except AnyType's (which is
// always true) funnels through this so the rule lives in exactly one place.
func dispatchAccept(a, b Type) bool {
	if _, ok := a.(AnyType); ok {
		return true
	}
	if _, ok := b.(AnyType); ok {
		return true
	}
	if _, ok := a.(NeverType); ok {
		return false
	}
	if _, ok := b.(NeverType); ok {
		return true
	}
	if ua, ok := a.(UnionType); ok {
		for _, v := range ua.Variants {
			if dispatchAccept(v, b) {
				return true
			}
		}
		return false
	}
	if ub, ok := b.(UnionType); ok {
		for _, v := range ub.Variants {
			if !dispatchAccept(a, v) {
				return false
			}
		}
		return true
	}

	switch at := a.(type) {
	case Primitive:
		bt, ok := b.(Primitive)
		return ok && at.Kind == bt.Kind
	case ListType:
		bt, ok := b.(ListType)
		return ok && dispatchAccept(at.Elem, bt.Elem)
	case MapType:
		bt, ok := b.(MapType)
		return ok && dispatchAccept(at.Elem, bt.Elem)
	case StructType:
		bt, ok := b.(StructType)
		if !ok {
			return false
		}
		for _, f := range at.Fields {
			bf, found := bt.FieldByName(f.Name)
			if !found {
				return false
			}
			if !dispatchAccept(f.Type, bf.Type) {
				return false
			}
			if f.Required && !bf.Required {
				return false
			}
		}
		return true
	case FunctionType:
		bt, ok := b.(FunctionType)
		if !ok || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			// Parameters are contravariant: the candidate function must
			// accept at least as much as the expected one.
			if !dispatchAccept(bt.Params[i], at.Params[i]) {
				return false
			}
		}
		return dispatchAccept(at.Return, bt.Return)
	case ImageType:
		_, ok := b.(ImageType)
		return ok
	case AudioType:
		_, ok := b.(AudioType)
		return ok
	case EmbeddingType:
		bt, ok := b.(EmbeddingType)
		return ok && at.Size == bt.Size
	default:
		return false
	}
}

// TypeOf computes the static type of a fully-evaluated value. It is the
// single notion of "the type of this value" shared by variable/constraint
// checking (validate.InferType delegates here) and lens call-shape
// checking (lens.CheckCall). Variables, pipelines, and directives have no
// computed value at the point TypeOf is meaningful to call and infer as
// Any.
func TypeOf(v Value) Type {
	switch vv := v.(type) {
	case *Scalar:
		switch vv.Kind {
		case ScalarInt, ScalarFloat:
			return Primitive{Kind: PrimNumber}
		case ScalarBool:
			return Primitive{Kind: PrimBoolean}
		default:
			return Primitive{Kind: PrimNull}
		}
	case *String:
		return Primitive{Kind: PrimString}
	case *List:
		return ListType{Elem: AnyType{}}
	case *Map:
		return MapType{Elem: AnyType{}}
	default:
		return AnyType{}
	}
}
