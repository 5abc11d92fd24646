// Package optimizer improves a sequence of pattern mappings for flow:
// variety, adjacency compatibility and bounded complexity. Every pass is a
// pure function returning a new slice; swaps only ever pick an entry of the
// mapping's own alternatives.
package optimizer

import (
	"mdslides/internal/catalog"
	"mdslides/internal/config"
	"mdslides/internal/logging"
	"mdslides/internal/types"
)

const (
	noteVariety       = "(adjusted for pattern variety)"
	noteCompatibility = "(adjusted to follow the previous section)"
	noteComplexity    = "(simplified to reduce implementation complexity)"
)

// Optimizer is stateless after construction and safe for concurrent use.
type Optimizer struct {
	cat    *catalog.Catalog
	tuning config.OptimizerTuning
}

// New creates an optimizer.
func New(cat *catalog.Catalog, tuning config.OptimizerTuning) *Optimizer {
	if tuning.VarietyDivisor < 1 {
		tuning.VarietyDivisor = 3
	}
	if tuning.MaxRounds < 1 {
		tuning.MaxRounds = 1
	}
	return &Optimizer{cat: cat, tuning: tuning}
}

// Result reports the optimized mappings and what it took to get there.
type Result struct {
	Mappings           []types.PatternMapping
	Rounds             int
	Converged          bool
	VarietySwaps       int
	CompatibilitySwaps int
	ComplexitySwaps    int
}

// Swaps returns the total number of swaps across all passes.
func (r Result) Swaps() int {
	return r.VarietySwaps + r.CompatibilitySwaps + r.ComplexitySwaps
}

// Optimize runs variety, compatibility and complexity passes in that order,
// repeating the round until a round changes nothing or MaxRounds is reached.
// A converged result is a fixpoint: optimizing it again changes nothing.
func (o *Optimizer) Optimize(mappings []types.PatternMapping) Result {
	res := Result{Mappings: clone(mappings)}
	if len(mappings) == 0 {
		res.Converged = true
		return res
	}

	cur := res.Mappings
	for round := 1; round <= o.tuning.MaxRounds; round++ {
		var nv, nc, nx int
		cur, nv = o.EnforceVariety(cur)
		cur, nc = o.RepairCompatibility(cur)
		cur, nx = o.BalanceComplexity(cur)

		res.VarietySwaps += nv
		res.CompatibilitySwaps += nc
		res.ComplexitySwaps += nx
		res.Rounds = round

		logging.OptimizerDebug("round %d: variety=%d compatibility=%d complexity=%d", round, nv, nc, nx)
		if nv+nc+nx == 0 {
			res.Converged = true
			break
		}
	}
	res.Mappings = cur

	if !res.Converged {
		logging.Optimizer("no fixpoint after %d rounds (%d swaps)", res.Rounds, res.Swaps())
	}
	return res
}

// VarietyLimit is the maximum number of sections one pattern should cover.
func (o *Optimizer) VarietyLimit(n int) int {
	d := o.tuning.VarietyDivisor
	return (n + d - 1) / d
}

// EnforceVariety swaps mappings whose pattern is used more than the variety
// limit to their first alternative that is still below the limit.
func (o *Optimizer) EnforceVariety(mappings []types.PatternMapping) ([]types.PatternMapping, int) {
	out := clone(mappings)
	limit := o.VarietyLimit(len(out))
	usage := countUsage(out)
	swaps := 0

	for i, m := range out {
		if usage[m.Selected.ID] <= limit {
			continue
		}
		for _, alt := range m.Alternatives {
			if usage[alt.ID]+1 > limit {
				continue
			}
			next, ok := m.SwapTo(alt.ID, noteVariety)
			if !ok {
				continue
			}
			usage[m.Selected.ID]--
			usage[alt.ID]++
			out[i] = next
			swaps++
			break
		}
	}
	return out, swaps
}

// RepairCompatibility walks adjacent pairs in order; when the next pattern
// does not flow from the current one it is swapped to its first compatible
// alternative that keeps within the variety limit.
func (o *Optimizer) RepairCompatibility(mappings []types.PatternMapping) ([]types.PatternMapping, int) {
	out := clone(mappings)
	limit := o.VarietyLimit(len(out))
	usage := countUsage(out)
	swaps := 0

	for i := 0; i+1 < len(out); i++ {
		cur, next := out[i].Selected.ID, out[i+1]
		if o.cat.Compatible(cur, next.Selected.ID) {
			continue
		}
		for _, alt := range next.Alternatives {
			if !o.cat.Compatible(cur, alt.ID) || usage[alt.ID]+1 > limit {
				continue
			}
			swapped, ok := next.SwapTo(alt.ID, noteCompatibility)
			if !ok {
				continue
			}
			usage[next.Selected.ID]--
			usage[alt.ID]++
			out[i+1] = swapped
			swaps++
			break
		}
	}
	return out, swaps
}

// BalanceComplexity runs only when mean complexity exceeds the ceiling. Each
// mapping above the swap threshold moves to its least complex alternative
// that is strictly simpler, stays within the variety limit and keeps
// already-compatible neighbours compatible.
func (o *Optimizer) BalanceComplexity(mappings []types.PatternMapping) ([]types.PatternMapping, int) {
	out := clone(mappings)
	if len(out) == 0 || o.MeanComplexity(out) <= o.tuning.ComplexityCeiling {
		return out, 0
	}

	limit := o.VarietyLimit(len(out))
	usage := countUsage(out)
	swaps := 0

	for i, m := range out {
		current := o.cat.Complexity(m.Selected.ID)
		if current <= o.tuning.ComplexitySwapThreshold {
			continue
		}

		bestID, bestCx := "", current
		for _, alt := range m.Alternatives {
			cx := o.cat.Complexity(alt.ID)
			if cx >= bestCx || usage[alt.ID]+1 > limit {
				continue
			}
			if !o.keepsNeighbours(out, i, alt.ID) {
				continue
			}
			bestID, bestCx = alt.ID, cx
		}
		if bestID == "" {
			continue
		}

		next, ok := m.SwapTo(bestID, noteComplexity)
		if !ok {
			continue
		}
		usage[m.Selected.ID]--
		usage[bestID]++
		out[i] = next
		swaps++
	}
	return out, swaps
}

// keepsNeighbours reports whether replacing out[i] with candidate leaves
// every currently compatible adjacent pair compatible.
func (o *Optimizer) keepsNeighbours(out []types.PatternMapping, i int, candidate string) bool {
	current := out[i].Selected.ID
	if i > 0 {
		prev := out[i-1].Selected.ID
		if o.cat.Compatible(prev, current) && !o.cat.Compatible(prev, candidate) {
			return false
		}
	}
	if i+1 < len(out) {
		next := out[i+1].Selected.ID
		if o.cat.Compatible(current, next) && !o.cat.Compatible(candidate, next) {
			return false
		}
	}
	return true
}

// MeanComplexity averages the selected patterns' complexity.
func (o *Optimizer) MeanComplexity(mappings []types.PatternMapping) float64 {
	if len(mappings) == 0 {
		return 0
	}
	total := 0.0
	for _, m := range mappings {
		total += o.cat.Complexity(m.Selected.ID)
	}
	return total / float64(len(mappings))
}

func countUsage(mappings []types.PatternMapping) map[string]int {
	usage := make(map[string]int, len(mappings))
	for _, m := range mappings {
		usage[m.Selected.ID]++
	}
	return usage
}

func clone(mappings []types.PatternMapping) []types.PatternMapping {
	if mappings == nil {
		return nil
	}
	out := make([]types.PatternMapping, len(mappings))
	for i, m := range mappings {
		out[i] = m.Clone()
	}
	return out
}
