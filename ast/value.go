package ast

// Value is the recursive sum type carried by block bodies, attributes,
// @vars entries, and lens arguments. The seven concrete variants below
// mirror ValueNode in the original fct-ast crate exactly: Scalar, String,
// Variable, List, Map, Pipeline, Directive. A LensCall is not itself a
// Value — it only ever appears inside a Pipeline's lens chain.
type Value interface {
	Node
	value()
}

// ScalarKind distinguishes the four scalar literal forms.
type ScalarKind int

const (
	ScalarInt ScalarKind = iota
	ScalarFloat
	ScalarBool
	ScalarNull
)

// Scalar is an int, float, bool, or null literal.
type Scalar struct {
	Kind    ScalarKind
	IntVal  int64
	FltVal  float64
	BoolVal bool
	Span_   Span
}

func (s *Scalar) Pos() Span { return s.Span_ }
func (*Scalar) value()      {}

// String is a double-quoted Unicode string literal.
type String struct {
	Val   string
	Span_ Span
}

func (s *String) Pos() Span { return s.Span_ }
func (*String) value()      {}

// Variable is a dotted reference such as $user.profile.name, stored
// without its leading '$'.
type Variable struct {
	Name  string
	Span_ Span
}

func (v *Variable) Pos() Span { return v.Span_ }
func (*Variable) value()      {}

// List is an ordered sequence of values.
type List struct {
	Items []Value
	Span_ Span
}

func (l *List) Pos() Span { return l.Span_ }
func (*List) value()      {}

// Map is a string-keyed collection of values. Keys preserves insertion
// order since Go maps do not; iteration in engine/render code always
// walks Keys rather than ranging over Entries directly.
type Map struct {
	Entries map[string]Value
	Keys    []string
	Span_   Span
}

func (m *Map) Pos() Span { return m.Span_ }
func (*Map) value()      {}

// NewMap returns an empty, ready-to-populate Map.
func NewMap(span Span) *Map {
	return &Map{Entries: make(map[string]Value), Span_: span}
}

// Set appends key to Keys the first time it is seen and stores the value.
func (m *Map) Set(key string, v Value) {
	if _, exists := m.Entries[key]; !exists {
		m.Keys = append(m.Keys, key)
	}
	m.Entries[key] = v
}

// Pipeline threads an initial value through one or more lens calls.
type Pipeline struct {
	Initial Value
	Lenses  []*LensCall
	Span_   Span
}

func (p *Pipeline) Pos() Span { return p.Span_ }
func (*Pipeline) value()      {}

// LensCall is a single `|> name(args, kw=val)` segment.
type LensCall struct {
	Name       string
	Args       []Value
	Kwargs     map[string]Value
	KwargOrder []string
	Span_      Span
}

func (l *LensCall) Pos() Span { return l.Span_ }

// SetKwarg preserves keyword-argument insertion order the same way Map does.
func (l *LensCall) SetKwarg(key string, v Value) {
	if l.Kwargs == nil {
		l.Kwargs = make(map[string]Value)
	}
	if _, exists := l.Kwargs[key]; !exists {
		l.KwargOrder = append(l.KwargOrder, key)
	}
	l.Kwargs[key] = v
}

// Directive is an `@name(args)` form embedded in a value position, e.g.
// `@input(type="string")`.
type Directive struct {
	Name     string
	Args     map[string]Value
	ArgOrder []string
	Span_    Span
}

func (d *Directive) Pos() Span { return d.Span_ }
func (*Directive) value()      {}

// SetArg preserves directive-argument insertion order.
func (d *Directive) SetArg(key string, v Value) {
	if d.Args == nil {
		d.Args = make(map[string]Value)
	}
	if _, exists := d.Args[key]; !exists {
		d.ArgOrder = append(d.ArgOrder, key)
	}
	d.Args[key] = v
}
