package selector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdslides/internal/catalog"
	"mdslides/internal/classifier"
	"mdslides/internal/config"
	"mdslides/internal/segmenter"
	"mdslides/internal/types"
)

func newSelector(t *testing.T, mutate func(*config.SelectorTuning)) (*Selector, *classifier.Classifier) {
	t.Helper()
	tuning := config.DefaultTuning()
	if mutate != nil {
		mutate(&tuning.Selector)
	}
	cat := catalog.Default()
	cls := classifier.New(cat, tuning.Classifier)
	return New(cat, cls, tuning.Selector), cls
}

func ids(ps []types.Pattern) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func mustPattern(t *testing.T, id string) types.Pattern {
	t.Helper()
	p, ok := catalog.Default().Pattern(id)
	require.True(t, ok, "pattern %s", id)
	return p
}

func TestScore_WeightedFormula(t *testing.T) {
	s, _ := newSelector(t, nil)

	// 9*0.3 + 10*0.4 + 0 use cases - 0 complexity + 2 numeric tokens * 2
	got := s.Score(mustPattern(t, "number-emphasis"), "", "50% and 50%", types.NumericalData)
	assert.InDelta(t, 10.7, got, 1e-9)

	// category mismatch drops the category term
	got = s.Score(mustPattern(t, "number-emphasis"), "", "50% and 50%", types.TemporalFlow)
	assert.InDelta(t, 6.7, got, 1e-9)

	// dashboard carries grid+flex complexity (4 * 0.1)
	got = s.Score(mustPattern(t, "dashboard"), "", "nothing", types.NumericalData)
	assert.InDelta(t, 7*0.3+4-0.4, got, 1e-9)
}

func TestScore_TitleBonus(t *testing.T) {
	s, _ := newSelector(t, nil)
	p := mustPattern(t, "bullet-list")
	plain := s.Score(p, "Details", "text", types.InformationOrganization)
	summary := s.Score(p, "まとめ", "text", types.InformationOrganization)
	assert.InDelta(t, 3, summary-plain, 1e-9)
}

func TestScore_UseCaseRelevance(t *testing.T) {
	s, _ := newSelector(t, nil)
	p := mustPattern(t, "chart-graph")
	base := s.Score(p, "", "flat text", types.NumericalData)
	withUseCase := s.Score(p, "", "市場シェアと成長率", types.NumericalData)
	assert.InDelta(t, 2*2*0.2, withUseCase-base, 1e-9)
}

func TestSelectPatterns_NumericDocument(t *testing.T) {
	s, cls := newSelector(t, nil)
	doc := &types.Document{Title: "Results", Sections: []types.Section{{
		ID:      "section-1",
		Title:   "Results",
		Content: "売上は50%増、KPI達成率50%、利益率50%、成長率50%、シェア50%",
	}}}

	contentTypes := cls.ClassifyDocument(doc).Types
	require.Equal(t, []types.ContentType{types.NumericalData}, contentTypes)

	selected := s.SelectPatterns(doc, contentTypes)
	assert.Equal(t, []string{"number-emphasis", "chart-graph", "comparison"}, ids(selected))
}

func TestSelectPatterns_FallbacksAndDedup(t *testing.T) {
	s, _ := newSelector(t, func(st *config.SelectorTuning) { st.Weights = config.ScoreWeights{} })
	doc := &types.Document{Sections: []types.Section{{ID: "section-1", Content: "quiet prose"}}}

	selected := s.SelectPatterns(doc, []types.ContentType{types.NumericalData, types.InformationOrganization})
	assert.Equal(t, []string{"number-emphasis", "table", "bullet-list", "card-tile"}, ids(selected))
}

func TestMapSections(t *testing.T) {
	s, cls := newSelector(t, nil)
	doc := cls.ClassifySections(&types.Document{Sections: []types.Section{
		{ID: "section-1", Title: "Numbers", Content: "売上は50%増、KPI達成率50%、利益率50%、成長率50%、シェア50%"},
		{ID: "section-2", Title: "まとめ", Content: "- keep going\n- ship it"},
	}})
	selected := []types.Pattern{
		mustPattern(t, "number-emphasis"),
		mustPattern(t, "comparison"),
		mustPattern(t, "chart-graph"),
		mustPattern(t, "bullet-list"),
		mustPattern(t, "table"),
	}

	res := s.MapSections(doc, selected)
	require.Len(t, res.Mappings, 2)
	assert.Empty(t, res.Unmapped)

	first := res.Mappings[0]
	assert.Equal(t, "number-emphasis", first.Selected.ID)
	assert.Len(t, first.Alternatives, 3)
	assert.False(t, first.HasAlternative(first.Selected.ID))
	assert.GreaterOrEqual(t, first.Confidence, 0.0)
	assert.LessOrEqual(t, first.Confidence, 1.0)
	assert.Len(t, first.Scores, len(selected))
	assert.Contains(t, first.Rationale, "numerical data")
	for i := 1; i < len(first.Alternatives); i++ {
		assert.GreaterOrEqual(t, first.Scores[first.Alternatives[i-1].ID], first.Scores[first.Alternatives[i].ID])
	}

	second := res.Mappings[1]
	assert.Equal(t, "bullet-list", second.Selected.ID)
	assert.Contains(t, second.Rationale, "section title suggests")
}

func TestMapSections_SinglePatternHasFullConfidence(t *testing.T) {
	s, _ := newSelector(t, nil)
	doc := &types.Document{Sections: []types.Section{{ID: "section-1", Content: "anything"}}}

	res := s.MapSections(doc, []types.Pattern{mustPattern(t, "bullet-list")})
	require.Len(t, res.Mappings, 1)
	assert.Equal(t, 1.0, res.Mappings[0].Confidence)
	assert.Empty(t, res.Mappings[0].Alternatives)
}

func TestMapSections_NoPatterns(t *testing.T) {
	s, _ := newSelector(t, nil)
	doc := &types.Document{Sections: []types.Section{{ID: "section-1"}, {ID: "section-2"}}}

	res := s.MapSections(doc, nil)
	assert.Empty(t, res.Mappings)
	assert.Equal(t, []string{"section-1", "section-2"}, res.Unmapped)
}

func TestReport(t *testing.T) {
	s, _ := newSelector(t, nil)
	bullet := mustPattern(t, "bullet-list")
	diagram := mustPattern(t, "diagram-structure")

	mappings := []types.PatternMapping{
		{SectionID: "section-1", Selected: bullet, Confidence: 0.9},
		{SectionID: "section-2", Selected: bullet, Confidence: 0.3},
		{SectionID: "section-3", Selected: bullet, Confidence: 0.9},
		{SectionID: "section-4", Selected: diagram, Confidence: 0.9},
	}
	r := s.Report(mappings)

	assert.Equal(t, 3, r.Usage["bullet-list"])
	assert.Equal(t, 3, r.Distribution[types.InformationOrganization])
	assert.Equal(t, []string{"section-2"}, r.LowConfidence)
	assert.InDelta(t, 0.75, r.AverageConfidence, 1e-9)
	assert.Contains(t, r.Warnings, "pattern bullet-list is used in 3 of 4 sections")
	assert.Equal(t, []string{"bullet-list"}, r.Overused)
	assert.Contains(t, r.ImplementationNotes, "diagram-structure slides need Mermaid rendering enabled")
	assert.Contains(t, r.Summary, "4 sections mapped to 2 distinct patterns")

	empty := s.Report(nil)
	assert.NotEmpty(t, empty.Warnings)
}

func TestPlainProseSectionFlowsToOneSlide(t *testing.T) {
	tuning := config.DefaultTuning()
	cat := catalog.Default()
	cls := classifier.New(cat, tuning.Classifier)
	s := New(cat, cls, tuning.Selector)

	content := strings.Join([]string{
		"Our team met with partners across the region to hear what they need from the new service.",
		"Most of them want clearer guidance, simpler onboarding and a single place to ask questions.",
		"We will share the findings with every group and agree on the priorities together next month.",
	}, "\n\n")
	require.InDelta(t, 50, len(strings.Fields(content)), 5)

	doc := cls.ClassifySections(&types.Document{
		Title:    "Partner interviews",
		Sections: []types.Section{{ID: "section-1", Level: 2, Title: "What we heard", Content: content}},
	})
	assert.Equal(t, types.InformationOrganization, doc.Sections[0].Type)

	classification := cls.ClassifyDocument(doc)
	assert.Equal(t, []types.ContentType{types.InformationOrganization}, classification.Types)

	selected := s.SelectPatterns(doc, classification.Types)
	require.NotEmpty(t, selected)
	for _, p := range selected {
		assert.Equal(t, types.InformationOrganization, p.Category, p.ID)
	}

	res := s.MapSections(doc, selected)
	require.Len(t, res.Mappings, 1)
	assert.Empty(t, res.Unmapped)
	mapping := res.Mappings[0]
	assert.Equal(t, types.InformationOrganization, mapping.Selected.Category)

	seg := segmenter.New(cat, tuning.Segmenter)
	slides := seg.Segment(doc.Sections[0], &mapping, 1)
	require.Len(t, slides, 1)
	assert.Equal(t, mapping.Selected.ID, slides[0].PatternID)
}

func TestSelectPatternsSkipsEmptyCategory(t *testing.T) {
	tuning := config.DefaultTuning()
	cat, err := catalog.Parse([]byte("patterns:\n  - {id: x, name: X, category: numerical-data, effectiveness: 5}\n"))
	require.NoError(t, err)
	s := New(cat, classifier.New(cat, tuning.Classifier), tuning.Selector)

	doc := &types.Document{Sections: []types.Section{{ID: "section-1", Content: "50% and 50%"}}}
	assert.Empty(t, s.SelectPatterns(doc, []types.ContentType{types.TemporalFlow}))
	assert.Equal(t, []string{"x"}, ids(s.SelectPatterns(doc, []types.ContentType{types.TemporalFlow, types.NumericalData})))
}
