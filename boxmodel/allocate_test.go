package boxmodel_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rokoss21/facet-compiler/boxmodel"
)

func TestAllocateExpandsWhenUnderBudget(t *testing.T) {
	sections := []boxmodel.Section{
		{ID: "a", BaseSize: 10, Grow: 1, Shrink: 1, Min: 1},
		{ID: "b", BaseSize: 10, Grow: 1, Shrink: 1, Min: 1},
	}
	res, err := boxmodel.Allocate(sections, 40, nil, nil)
	require.NoError(t, err)
	// No critical sections, so free = 40 - 0 = 40, split evenly: each section grows from 10 to 30.
	require.Equal(t, 60, res.TotalSize)
	require.Equal(t, 20, res.Overflow)
}

func TestAllocateFailsWhenCriticalExceedsBudget(t *testing.T) {
	sections := []boxmodel.Section{
		{ID: "a", BaseSize: 100, Shrink: 0},
	}
	_, err := boxmodel.Allocate(sections, 10, nil, nil)
	require.Error(t, err)
	var berr *boxmodel.Error
	require.ErrorAs(t, err, &berr)
	require.Equal(t, "F901", berr.Code)
}

func TestAllocateTruncatesLowerPrioritySectionsFirst(t *testing.T) {
	sections := []boxmodel.Section{
		{ID: "keep", Priority: 10, BaseSize: 50, Min: 50, Shrink: 0}, // critical
		{ID: "drop_first", Priority: 0, BaseSize: 40, Min: 0, Shrink: 1},
		{ID: "drop_second", Priority: 1, BaseSize: 40, Min: 0, Shrink: 1},
	}
	res, err := boxmodel.Allocate(sections, 80, nil, nil)
	require.NoError(t, err)
	require.LessOrEqual(t, res.TotalSize, 80+0) // no overflow
	for _, s := range res.Sections {
		if s.Section.ID == "keep" {
			require.Equal(t, 50, s.FinalSize)
		}
	}
}

func TestAllocateFinalOrderingIsByID(t *testing.T) {
	sections := []boxmodel.Section{
		{ID: "z", BaseSize: 5, Shrink: 0},
		{ID: "a", BaseSize: 5, Shrink: 0},
		{ID: "m", BaseSize: 5, Shrink: 0},
	}
	res, err := boxmodel.Allocate(sections, 100, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "m", "z"}, []string{res.Sections[0].Section.ID, res.Sections[1].Section.ID, res.Sections[2].Section.ID})
}
