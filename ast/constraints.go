package ast

// Constraints attach to a @var_types declaration. Each field is defined
// only for primitive types where it is semantically meaningful: min/max
// for numbers, pattern/enum_values for strings (enum_values also applies
// to any scalar-comparable type).
type Constraints struct {
	Min         *float64
	Max         *float64
	Pattern     *string
	EnumValues  []string
}

// VarTypeDecl is one parsed @var_types entry: a declared type plus its
// optional constraints.
type VarTypeDecl struct {
	Type        TypeNode
	Constraints Constraints
}
