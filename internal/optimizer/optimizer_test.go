package optimizer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdslides/internal/catalog"
	"mdslides/internal/config"
	"mdslides/internal/types"
)

func newOptimizer() *Optimizer {
	return New(catalog.Default(), config.DefaultTuning().Optimizer)
}

// mapping builds a mapping whose scores descend from the selected pattern
// through the alternatives.
func mapping(t *testing.T, section, selected string, alts ...string) types.PatternMapping {
	t.Helper()
	cat := catalog.Default()
	get := func(id string) types.Pattern {
		p, ok := cat.Pattern(id)
		require.True(t, ok, "pattern %s", id)
		return p
	}
	m := types.PatternMapping{
		SectionID:  section,
		Selected:   get(selected),
		Rationale:  "fits",
		Confidence: 0.1,
		Scores:     map[string]float64{selected: 10},
	}
	for i, id := range alts {
		m.Alternatives = append(m.Alternatives, get(id))
		m.Scores[id] = float64(9 - i)
	}
	return m
}

func selectedIDs(ms []types.PatternMapping) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Selected.ID
	}
	return out
}

func assertAlternativesValid(t *testing.T, before, after []types.PatternMapping) {
	t.Helper()
	require.Len(t, after, len(before))
	for i := range after {
		assert.False(t, after[i].HasAlternative(after[i].Selected.ID), "section %s lists its selection as an alternative", after[i].SectionID)
		assert.GreaterOrEqual(t, after[i].Confidence, 0.0)
		assert.LessOrEqual(t, after[i].Confidence, 1.0)
		if after[i].Selected.ID != before[i].Selected.ID {
			assert.True(t, before[i].HasAlternative(after[i].Selected.ID), "section %s swapped outside its alternatives", after[i].SectionID)
		}
	}
}

func sixBullets(t *testing.T) []types.PatternMapping {
	var ms []types.PatternMapping
	for _, id := range []string{"s1", "s2", "s3", "s4", "s5", "s6"} {
		ms = append(ms, mapping(t, id, "bullet-list", "table", "card-tile", "checklist"))
	}
	return ms
}

func TestEnforceVariety(t *testing.T) {
	o := newOptimizer()
	in := sixBullets(t)

	out, swaps := o.EnforceVariety(in)

	assert.Equal(t, 4, swaps)
	assert.Equal(t, []string{"table", "table", "card-tile", "card-tile", "bullet-list", "bullet-list"}, selectedIDs(out))
	assert.Contains(t, out[0].Rationale, noteVariety)
	assertAlternativesValid(t, in, out)

	limit := o.VarietyLimit(len(out))
	for id, n := range countUsage(out) {
		assert.LessOrEqual(t, n, limit, "pattern %s over limit", id)
	}
}

func TestEnforceVariety_NoUsableAlternative(t *testing.T) {
	o := newOptimizer()
	in := []types.PatternMapping{
		mapping(t, "s1", "bullet-list"),
		mapping(t, "s2", "bullet-list"),
		mapping(t, "s3", "bullet-list"),
		mapping(t, "s4", "bullet-list"),
	}
	out, swaps := o.EnforceVariety(in)
	assert.Zero(t, swaps)
	assert.Equal(t, selectedIDs(in), selectedIDs(out))
}

func TestRepairCompatibility(t *testing.T) {
	o := newOptimizer()
	in := []types.PatternMapping{
		mapping(t, "s1", "number-emphasis"),
		mapping(t, "s2", "bullet-list", "table", "dashboard"),
	}

	out, swaps := o.RepairCompatibility(in)

	require.Equal(t, 1, swaps)
	assert.Equal(t, []string{"number-emphasis", "dashboard"}, selectedIDs(out))
	assert.Contains(t, out[1].Rationale, noteCompatibility)
	// dashboard scored 8 against bullet-list's 10 now sitting in alternatives
	assert.Equal(t, types.Confidence(8, 10, true), out[1].Confidence)
	assertAlternativesValid(t, in, out)
}

func TestBalanceComplexity_PicksLeastComplex(t *testing.T) {
	o := newOptimizer()
	in := []types.PatternMapping{
		mapping(t, "s1", "dashboard", "progress-bar", "number-emphasis", "ranking"),
		mapping(t, "s2", "diagram-structure"),
	}
	require.Greater(t, o.MeanComplexity(in), 2.5)

	out, swaps := o.BalanceComplexity(in)

	assert.Equal(t, 1, swaps)
	assert.Equal(t, []string{"number-emphasis", "diagram-structure"}, selectedIDs(out))
	assert.Contains(t, out[0].Rationale, noteComplexity)
}

func TestBalanceComplexity_KeepsCompatibleNeighbours(t *testing.T) {
	o := newOptimizer()
	in := []types.PatternMapping{
		mapping(t, "s1", "number-emphasis"),
		mapping(t, "s2", "dashboard", "ranking", "progress-bar"),
		mapping(t, "s3", "diagram-structure"),
		mapping(t, "s4", "network"),
		mapping(t, "s5", "diagram-structure"),
	}
	require.Greater(t, o.MeanComplexity(in), 2.5)

	out, _ := o.BalanceComplexity(in)

	// ranking is simpler but would break number-emphasis -> dashboard
	assert.Equal(t, "progress-bar", out[1].Selected.ID)
}

func TestBalanceComplexity_BelowCeiling(t *testing.T) {
	o := newOptimizer()
	in := []types.PatternMapping{
		mapping(t, "s1", "dashboard", "number-emphasis"),
		mapping(t, "s2", "bullet-list"),
	}
	out, swaps := o.BalanceComplexity(in)
	assert.Zero(t, swaps)
	assert.Equal(t, selectedIDs(in), selectedIDs(out))
}

func TestOptimize_DoesNotMutateInput(t *testing.T) {
	o := newOptimizer()
	in := sixBullets(t)
	snapshot := make([]types.PatternMapping, len(in))
	for i, m := range in {
		snapshot[i] = m.Clone()
	}

	_ = o.Optimize(in)

	if diff := cmp.Diff(snapshot, in); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestOptimize_Idempotent(t *testing.T) {
	o := newOptimizer()
	cases := map[string][]types.PatternMapping{
		"overused": sixBullets(t),
		"mixed": {
			mapping(t, "s1", "number-emphasis", "comparison", "chart-graph"),
			mapping(t, "s2", "bullet-list", "table", "dashboard", "card-tile"),
			mapping(t, "s3", "dashboard", "progress-bar", "number-emphasis", "ranking"),
			mapping(t, "s4", "diagram-structure", "matrix", "network"),
			mapping(t, "s5", "diagram-structure", "org-tree", "pyramid"),
			mapping(t, "s6", "steps", "timeline", "checklist"),
		},
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			first := o.Optimize(in)
			require.True(t, first.Converged)
			assertAlternativesValid(t, in, first.Mappings)

			second := o.Optimize(first.Mappings)
			assert.Zero(t, second.Swaps())
			if diff := cmp.Diff(first.Mappings, second.Mappings); diff != "" {
				t.Errorf("second optimization changed mappings (-first +second):\n%s", diff)
			}
		})
	}
}

func TestOptimize_Empty(t *testing.T) {
	res := newOptimizer().Optimize(nil)
	assert.True(t, res.Converged)
	assert.Empty(t, res.Mappings)
}

func TestVarietyLimit(t *testing.T) {
	o := newOptimizer()
	assert.Equal(t, 1, o.VarietyLimit(1))
	assert.Equal(t, 1, o.VarietyLimit(3))
	assert.Equal(t, 2, o.VarietyLimit(4))
	assert.Equal(t, 2, o.VarietyLimit(6))
}
