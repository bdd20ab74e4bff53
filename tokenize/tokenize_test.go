package tokenize_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/rokoss21/facet-compiler/tokenize"
)

func TestCountEmptyStringIsZero(t *testing.T) {
	c := tokenize.New()
	require.Equal(t, 0, c.Count(""))
}

func TestCountIsStableAcrossCalls(t *testing.T) {
	c := tokenize.New()
	s := "The quick brown fox jumps over the lazy dog."
	first := c.Count(s)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, c.Count(s))
	}
}

// TestCountIsMonotoneInConcatenation checks spec.md §4.6's "counts are
// monotone in concatenation up to a small bounded slack" contract.
func TestCountIsMonotoneInConcatenation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("concatenation never decreases token count", prop.ForAll(
		func(a, b string) bool {
			c := tokenize.New()
			return c.Count(a+b) >= c.Count(a)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
