package boxmodel

import (
	"sort"

	"github.com/rokoss21/facet-compiler/ast"
	"github.com/rokoss21/facet-compiler/lens"
	"github.com/rokoss21/facet-compiler/tokenize"
)

// Allocate runs the allocator over sections against budget. registry and
// counter back compression strategy pipelines and re-measurement;
// counter may be nil, in which case a fresh tokenize.Counter is used
// (the counter carries no state, so sharing one costs nothing and
// exists only so callers that already have one can reuse it).
func Allocate(sections []Section, budget int, registry *lens.Registry, counter *tokenize.Counter) (*AllocationResult, error) {
	if counter == nil {
		counter = tokenize.New()
	}

	fixedLoad := 0
	currentTotal := 0
	for _, s := range sections {
		currentTotal += s.BaseSize
		if s.Shrink == 0 {
			fixedLoad += s.BaseSize
		}
	}
	if fixedLoad > budget {
		return nil, errBudgetExceeded(budget, fixedLoad)
	}

	free := budget - fixedLoad
	if currentTotal <= budget && free > 0 {
		return expand(sections, budget, free), nil
	}
	return compress(sections, budget, fixedLoad, currentTotal, registry, counter)
}

func expand(sections []Section, budget, free int) *AllocationResult {
	growable := make([]int, 0, len(sections))
	totalGrow := 0.0
	for i, s := range sections {
		if s.Grow > 0 {
			growable = append(growable, i)
			totalGrow += s.Grow
		}
	}
	sort.Slice(growable, func(i, j int) bool { return sections[growable[i]].ID < sections[growable[j]].ID })

	finalSize := make([]int, len(sections))
	for i, s := range sections {
		finalSize[i] = s.BaseSize
	}
	if totalGrow > 0 {
		for _, i := range growable {
			share := int(float64(free) * sections[i].Grow / totalGrow)
			finalSize[i] = sections[i].BaseSize + share
		}
	}

	out := make([]AllocatedSection, len(sections))
	total := 0
	for i, s := range sections {
		out[i] = AllocatedSection{Section: s, FinalSize: finalSize[i], Content: s.Content}
		total += finalSize[i]
	}
	sortAllocatedByID(out)
	return &AllocationResult{Sections: out, TotalSize: total, Budget: budget, Overflow: max0(total - budget)}
}

func compress(sections []Section, budget, criticalTotal, currentTotal int, registry *lens.Registry, counter *tokenize.Counter) (*AllocationResult, error) {
	out := make([]AllocatedSection, len(sections))
	order := make([]int, 0, len(sections))
	for i, s := range sections {
		out[i] = AllocatedSection{Section: s, FinalSize: s.BaseSize, Content: s.Content}
		if s.Shrink != 0 {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if sections[ia].Priority != sections[ib].Priority {
			return sections[ia].Priority < sections[ib].Priority
		}
		if sections[ia].Shrink != sections[ib].Shrink {
			return sections[ia].Shrink > sections[ib].Shrink
		}
		return sections[ia].ID < sections[ib].ID
	})

	remainingDeficit := currentTotal - budget
	remainingFlexBudget := budget - criticalTotal

	for _, i := range order {
		if remainingDeficit <= 0 {
			continue
		}
		sec := &out[i]

		if sections[i].Strategy != nil {
			newContent, newSize, err := runStrategy(sections[i], registry, counter)
			if err != nil {
				return nil, err
			}
			reduction := sec.FinalSize - newSize
			if reduction > 0 {
				sec.Content = newContent
				sec.FinalSize = newSize
				sec.WasCompressed = true
				remainingDeficit -= reduction
				remainingFlexBudget -= reduction
			}
		}

		if remainingDeficit > 0 {
			excess := sec.FinalSize - sections[i].Min
			if excess < 0 {
				excess = 0
			}
			truncAmount := minInt(excess, remainingDeficit)
			truncAmount = minInt(truncAmount, remainingFlexBudget)
			if truncAmount > 0 {
				sec.FinalSize -= truncAmount
				remainingDeficit -= truncAmount
				remainingFlexBudget -= truncAmount
				if truncAmount == excess {
					sec.WasTruncated = true
				}
			}
		}

		if remainingFlexBudget == 0 {
			remainingDeficit -= sec.FinalSize
			sec.FinalSize = 0
			sec.WasDropped = true
			sec.Content = nil
		}
	}

	sortAllocatedByID(out)
	total := 0
	for _, s := range out {
		total += s.FinalSize
	}
	return &AllocationResult{Sections: out, TotalSize: total, Budget: budget, Overflow: max0(total - budget)}, nil
}

// runStrategy threads a section's content through its compression
// pipeline and re-measures the result. A nil registry means no lens
// strategies can run; the section is left untouched and truncation
// picks up the remaining deficit.
func runStrategy(s Section, registry *lens.Registry, counter *tokenize.Counter) (ast.Value, int, error) {
	if registry == nil {
		return s.Content, counter.CountValue(s.Content), nil
	}
	cur := s.Content
	lctx := &lens.Context{Registry: registry}
	for _, lc := range s.Strategy {
		args := lc.Args
		kwargs := lc.Kwargs
		out, err := registry.Execute(lctx, lc.Name, cur, args, kwargs)
		if err != nil {
			return nil, 0, errLensExecutionFailed(lc.Name, err)
		}
		cur = out
	}
	return cur, counter.CountValue(cur), nil
}

func sortAllocatedByID(out []AllocatedSection) {
	sort.Slice(out, func(i, j int) bool { return out[i].Section.ID < out[j].Section.ID })
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
