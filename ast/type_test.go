package ast_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	. "github.com/rokoss21/facet-compiler/ast"
)

func TestAnyAcceptsEverythingBothDirections(t *testing.T) {
	types := []Type{
		Primitive{Kind: PrimString},
		ListType{Elem: Primitive{Kind: PrimNumber}},
		NeverType{},
		StructType{Fields: []StructField{{Name: "x", Type: Primitive{Kind: PrimBoolean}, Required: true}}},
	}
	for _, ty := range types {
		require.True(t, AnyType{}.Accepts(ty), "Any must accept %s", ty)
		require.True(t, ty.Accepts(AnyType{}), "%s must accept Any", ty)
	}
}

func TestNeverAcceptsNothingButIsAcceptedByEverything(t *testing.T) {
	require.False(t, (NeverType{}).Accepts(Primitive{Kind: PrimString}))
	require.True(t, Primitive{Kind: PrimString}.Accepts(NeverType{}))
}

func TestUnionNormalizesEmptyToNever(t *testing.T) {
	require.Equal(t, NeverType{}, NewUnion(nil))
}

func TestUnionLeftAcceptsIfAnyVariantDoes(t *testing.T) {
	u := UnionType{Variants: []Type{Primitive{Kind: PrimString}, Primitive{Kind: PrimNumber}}}
	require.True(t, u.Accepts(Primitive{Kind: PrimNumber}))
	require.False(t, u.Accepts(Primitive{Kind: PrimBoolean}))
}

func TestUnionRightRequiresAllVariantsAccepted(t *testing.T) {
	u := UnionType{Variants: []Type{Primitive{Kind: PrimString}, Primitive{Kind: PrimNumber}}}
	// A primitive accepts a union only if it accepts every variant; string does not accept number.
	require.False(t, Primitive{Kind: PrimString}.Accepts(u))
	// Any accepts the union because Any accepts everything.
	require.True(t, AnyType{}.Accepts(u))
}

func TestStructAcceptsRequiresEveryFieldPresent(t *testing.T) {
	a := StructType{Fields: []StructField{
		{Name: "id", Type: Primitive{Kind: PrimString}, Required: true},
		{Name: "nick", Type: Primitive{Kind: PrimString}, Required: false},
	}}
	bHasBoth := StructType{Fields: []StructField{
		{Name: "id", Type: Primitive{Kind: PrimString}, Required: true},
		{Name: "nick", Type: Primitive{Kind: PrimString}, Required: true},
	}}
	require.True(t, a.Accepts(bHasBoth))

	bMissingOptional := StructType{Fields: []StructField{
		{Name: "id", Type: Primitive{Kind: PrimString}, Required: true},
	}}
	require.False(t, a.Accepts(bMissingOptional))

	bOptionalWhereRequired := StructType{Fields: []StructField{
		{Name: "id", Type: Primitive{Kind: PrimString}, Required: false},
		{Name: "nick", Type: Primitive{Kind: PrimString}, Required: false},
	}}
	require.False(t, a.Accepts(bOptionalWhereRequired), "required A field cannot be satisfied by optional B field")
}

func TestListAndMapAreCovariant(t *testing.T) {
	require.True(t, ListType{Elem: AnyType{}}.Accepts(ListType{Elem: Primitive{Kind: PrimString}}))
	require.False(t, ListType{Elem: Primitive{Kind: PrimString}}.Accepts(ListType{Elem: Primitive{Kind: PrimNumber}}))
}

// TestAcceptsIsReflexive is a property check: every generated type accepts
// itself, mirroring the "Round-trip and idempotence" testable-property
// framing in spec.md §8.
func TestAcceptsIsReflexive(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	primitiveGen := gen.OneConstOf(PrimString, PrimNumber, PrimBoolean, PrimNull).Map(func(k PrimitiveKind) Type {
		return Primitive{Kind: k}
	})

	properties.Property("primitive reflexivity", prop.ForAll(
		func(ty Type) bool {
			return ty.Accepts(ty)
		},
		primitiveGen,
	))

	properties.TestingRun(t)
}
