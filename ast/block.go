package ast

// BlockKind identifies which of the shared-shape block roles a Block
// plays. Import, Interface, and Test are modeled as distinct node types
// below since their shape genuinely differs.
type BlockKind int

const (
	BlockMeta BlockKind = iota
	BlockSystem
	BlockUser
	BlockAssistant
	BlockVars
	BlockVarTypes
	BlockContext
)

func (k BlockKind) String() string {
	switch k {
	case BlockMeta:
		return "meta"
	case BlockSystem:
		return "system"
	case BlockUser:
		return "user"
	case BlockAssistant:
		return "assistant"
	case BlockVars:
		return "vars"
	case BlockVarTypes:
		return "var_types"
	case BlockContext:
		return "context"
	default:
		return "unknown"
	}
}

// BodyItem is either a KeyValue pair or an unnamed ListItem.
type BodyItem interface {
	Node
	bodyItem()
}

// KeyValue is a `key: value` body entry.
type KeyValue struct {
	Key   string
	Value Value
	Span_ Span
}

func (k *KeyValue) Pos() Span { return k.Span_ }
func (*KeyValue) bodyItem()   {}

// ListItem is a `- value` body entry.
type ListItem struct {
	Value Value
	Span_ Span
}

func (l *ListItem) Pos() Span { return l.Span_ }
func (*ListItem) bodyItem()   {}

// TypeDecl is one `@var_types` body entry: a declared name bound to a
// TypeNode plus optional constraints, rather than a literal Value.
type TypeDecl struct {
	Key   string
	Decl  VarTypeDecl
	Span_ Span
}

func (t *TypeDecl) Pos() Span { return t.Span_ }
func (*TypeDecl) bodyItem()   {}

// Block is the shared shape of Meta/System/User/Assistant/Vars/VarTypes/
// Context: a name, an unordered attribute map, and an ordered body.
type Block struct {
	Kind       BlockKind
	Name       string
	Attributes map[string]Value
	AttrOrder  []string
	Body       []BodyItem
	Span_      Span
}

func (b *Block) Pos() Span { return b.Span_ }

// SetAttribute preserves attribute insertion order for deterministic
// re-serialization and Smart Merge.
func (b *Block) SetAttribute(key string, v Value) {
	if b.Attributes == nil {
		b.Attributes = make(map[string]Value)
	}
	if _, exists := b.Attributes[key]; !exists {
		b.AttrOrder = append(b.AttrOrder, key)
	}
	b.Attributes[key] = v
}

// Import is an `@import "path"` node. Imports are resolved away before
// any later phase sees a Document, so they never appear after resolution.
type Import struct {
	Path  string
	Span_ Span
}

func (i *Import) Pos() Span { return i.Span_ }

// Parameter is one argument of an Interface function signature.
type Parameter struct {
	Name  string
	Type  TypeNode
	Span_ Span
}

func (p *Parameter) Pos() Span { return p.Span_ }

// FunctionSignature is one function declared inside an Interface block.
type FunctionSignature struct {
	Name       string
	Params     []Parameter
	ReturnType TypeNode
	Span_      Span
}

func (f *FunctionSignature) Pos() Span { return f.Span_ }

// Interface declares a tool/provider contract: a named set of function
// signatures later projected into provider tool schemas.
type Interface struct {
	Name      string
	Functions []FunctionSignature
	Span_     Span
}

func (i *Interface) Pos() Span { return i.Span_ }

// MockDefinition binds a test-scoped mock target to a static return value.
type MockDefinition struct {
	Target string
	Return Value
	Span_  Span
}

func (m *MockDefinition) Pos() Span { return m.Span_ }

// Test is an `@test` block: variable overrides, mocks, and assertions
// evaluated against one compiled-pipeline invocation.
type Test struct {
	Name       string
	Vars       map[string]Value
	VarOrder   []string
	Mocks      []MockDefinition
	Assertions []Assertion
	Body       []BodyItem
	Span_      Span
}

func (t *Test) Pos() Span { return t.Span_ }

// SetVar preserves variable-override insertion order.
func (t *Test) SetVar(key string, v Value) {
	if t.Vars == nil {
		t.Vars = make(map[string]Value)
	}
	if _, exists := t.Vars[key]; !exists {
		t.VarOrder = append(t.VarOrder, key)
	}
	t.Vars[key] = v
}

// TopLevel is the sum of everything a Document's Blocks slice can hold.
type TopLevel interface {
	Node
	topLevel()
}

func (*Block) topLevel()     {}
func (*Import) topLevel()    {}
func (*Interface) topLevel() {}
func (*Test) topLevel()      {}

// Document is an ordered sequence of top-level blocks.
type Document struct {
	Blocks []TopLevel
	Span_  Span
}

func (d *Document) Pos() Span { return d.Span_ }
