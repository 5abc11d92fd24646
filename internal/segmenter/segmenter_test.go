package segmenter

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdslides/internal/catalog"
	"mdslides/internal/config"
	"mdslides/internal/types"
)

func newSegmenter(t *testing.T) *Segmenter {
	t.Helper()
	return New(catalog.Default(), config.DefaultTuning().Segmenter)
}

func lines(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s line %d", prefix, i+1)
	}
	return out
}

func codeBlock(n int) string {
	body := lines("x :=", n-2)
	return "```go\n" + strings.Join(body, "\n") + "\n```"
}

func TestAnalyzeThresholds(t *testing.T) {
	s := newSegmenter(t)
	long := strings.Repeat("a", 101)

	tests := []struct {
		name  string
		text  string
		split bool
	}{
		{"23 lines", strings.Join(lines("p", 23), "\n"), false},
		{"24 lines", strings.Join(lines("p", 24), "\n"), true},
		{"800 chars", strings.Repeat("b", 800), false},
		{"801 chars", strings.Repeat("b", 801), true},
		{"code block with 15 lines", codeBlock(15), false},
		{"code block with 16 lines", codeBlock(16), true},
		{"5 long lines", strings.Repeat(long+"\n", 5), false},
		{"6 long lines", strings.Repeat(long+"\n", 6), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Analyze(tt.text).NeedsSplit; got != tt.split {
				t.Errorf("NeedsSplit = %v, want %v", got, tt.split)
			}
		})
	}
}

func TestAnalyzeCountsCodeBlocks(t *testing.T) {
	s := newSegmenter(t)
	a := s.Analyze("intro\n\n" + codeBlock(4) + "\n\n~~~\nplain\n~~~\n")
	assert.Equal(t, 2, a.CodeBlocks)
	assert.Equal(t, 8, a.Lines)
	assert.Equal(t, TierMedium, a.Tier, "more than one code block raises the tier")
}

func TestParagraphsKeepsFencesAtomic(t *testing.T) {
	text := "first para\nstill first\n\n```\ncode\n\nmore code\n```\n\n\nlast"
	want := []string{
		"first para\nstill first",
		"```\ncode\n\nmore code\n```",
		"last",
	}
	if diff := cmp.Diff(want, Paragraphs(text)); diff != "" {
		t.Errorf("Paragraphs mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmentEmpty(t *testing.T) {
	s := newSegmenter(t)
	assert.Nil(t, s.Segment(types.Section{ID: "section-1", Content: " \n\t\n"}, nil, 1))
}

func TestSegmentSingleSlide(t *testing.T) {
	s := newSegmenter(t)
	content := strings.Join([]string{
		"Our team meets every week to talk about the work in front of us and the ideas we want to try next.",
		"Everyone brings one topic and we keep the conversation short so that people can return to their tasks.",
		"The notes are shared afterwards so that anyone who missed the meeting can catch up quickly.",
	}, "\n\n")
	sec := types.Section{ID: "section-2", Level: 2, Title: "Weekly rhythm", Content: content, Type: types.InformationOrganization}
	mapping := &types.PatternMapping{
		SectionID: sec.ID,
		Selected:  types.Pattern{ID: "bullet-list", Category: types.InformationOrganization},
		Rationale: "fits",
	}

	slides := s.Segment(sec, mapping, 4)
	require.Len(t, slides, 1)

	sl := slides[0]
	assert.Equal(t, "slide-section-2", sl.ID)
	assert.Equal(t, 4, sl.Order)
	assert.Equal(t, types.SlideSingle, sl.Kind)
	assert.Equal(t, "bullet-list", sl.PatternID)
	assert.Equal(t, "fits", sl.Notes)
	assert.Equal(t, types.LayoutStandard, sl.Layout.Pattern)
	assert.Equal(t, 2, sl.EstimatedMinutes(), "short sections get the two minute floor")
	assert.Equal(t, content, sl.Sections[0].Body)
	assert.GreaterOrEqual(t, len([]rune(sl.OverviewStatement)), 10)
}

func TestSegmentSplitsCodeHeavySection(t *testing.T) {
	s := newSegmenter(t)
	content := strings.Join([]string{
		strings.Join(lines("setup", 5), "\n"),
		codeBlock(8),
		strings.Join(lines("explain", 5), "\n"),
		codeBlock(8),
		strings.Join(lines("wrap up", 4), "\n"),
	}, "\n\n")
	sec := types.Section{ID: "section-3", Level: 2, Title: "Walkthrough", Content: content, Type: types.StructuralRelationship}

	a := s.Analyze(content)
	require.Equal(t, 30, a.Lines)
	require.True(t, a.NeedsSplit)

	slides := s.Segment(sec, nil, 1)
	require.GreaterOrEqual(t, len(slides), 2)
	assert.Equal(t, types.SlideOverview, slides[0].Kind)
	assert.Equal(t, "slide-section-3-overview", slides[0].ID)

	for i, sl := range slides {
		assert.Equal(t, i+1, sl.Order)
		if sl.Kind != types.SlideDetail {
			continue
		}
		assert.Equal(t, fmt.Sprintf("slide-section-3-%d", i), sl.ID)
		da := s.Analyze(sl.Sections[0].Body)
		assert.LessOrEqual(t, da.Lines, 23, sl.ID)
		assert.LessOrEqual(t, da.Chars, 800, sl.ID)
		assert.Zero(t, strings.Count(sl.Sections[0].Body, "```")%2, "code block split across slides in %s", sl.ID)
		assert.GreaterOrEqual(t, sl.EstimatedMinutes(), 1)
	}
	assert.Len(t, slides, 4)
}

func TestSegmentPreservesParagraphOrder(t *testing.T) {
	s := newSegmenter(t)
	var paras []string
	for i := 0; i < 14; i++ {
		paras = append(paras, fmt.Sprintf("Paragraph %d talks about one idea in enough words to take up some room on the slide.", i))
	}
	content := strings.Join(paras, "\n\n")
	sec := types.Section{ID: "section-5", Title: "Ideas", Content: content}

	slides := s.Segment(sec, nil, 10)
	require.Greater(t, len(slides), 2)

	var got []string
	for _, sl := range slides[1:] {
		require.Equal(t, types.SlideDetail, sl.Kind)
		got = append(got, Paragraphs(sl.Sections[0].Body)...)
	}
	if diff := cmp.Diff(paras, got); diff != "" {
		t.Errorf("paragraphs changed (-want +got):\n%s", diff)
	}
	assert.Equal(t, 10, slides[0].Order)
	assert.Equal(t, 9+len(slides), slides[len(slides)-1].Order)
}

func TestSegmentOversizedParagraphStandsAlone(t *testing.T) {
	s := newSegmenter(t)
	huge := strings.Repeat("word ", 200)
	content := "short intro\n\n" + strings.TrimSpace(huge) + "\n\nshort outro"

	slides := s.Segment(types.Section{ID: "section-9", Title: "Big", Content: content}, nil, 1)
	require.Len(t, slides, 4)
	assert.Equal(t, "short intro", slides[1].Sections[0].Body)
	assert.Equal(t, strings.TrimSpace(huge), slides[2].Sections[0].Body)
	assert.Equal(t, "short outro", slides[3].Sections[0].Body)
}

func TestOverviewItemsPriority(t *testing.T) {
	s := newSegmenter(t)

	headings := "#### Goals\ntext\n\n- bullet one\n\n#### Risks\nmore"
	assert.Equal(t, []string{"Goals", "Risks"}, s.overviewItems(headings))

	bullets := "- one\n- two\n1. three\n```\n- not a bullet\n```"
	assert.Equal(t, []string{"one", "two", "three"}, s.overviewItems(bullets))

	many := "- a\n- b\n- c\n- d\n- e\n- f\n- g"
	assert.Len(t, s.overviewItems(many), 5)

	prose := "This is the first long sentence. Short. The second long sentence follows here! And a third one is here too? A fourth sentence is dropped."
	assert.Equal(t, []string{
		"This is the first long sentence",
		"The second long sentence follows here",
		"And a third one is here too",
	}, s.overviewItems(prose))
}

func TestStatement(t *testing.T) {
	s := newSegmenter(t)

	bold := types.Section{Title: "Plan", Content: "We **ship** on time. **The launch date is fixed for March** and cannot move."}
	assert.Equal(t, "The launch date is fixed for March", s.statement(bold))

	plain := types.Section{Title: "Sales", Content: "numbers", Type: types.NumericalData}
	assert.Equal(t, "Sales: the key figures at a glance", s.statement(plain))

	untitled := types.Section{Content: "text"}
	assert.Equal(t, "The essential points, organized", s.statement(untitled))
}

func TestLayoutFor(t *testing.T) {
	s := newSegmenter(t)
	tests := []struct {
		pattern string
		a       Analysis
		want    types.LayoutPattern
	}{
		{"comparison", Analysis{}, types.LayoutSplit},
		{"dashboard", Analysis{}, types.LayoutGrid},
		{"timeline", Analysis{}, types.LayoutTimeline},
		{"steps", Analysis{}, types.LayoutFlowchart},
		{"photo-visual", Analysis{}, types.LayoutBackground},
		{"number-emphasis", Analysis{}, types.LayoutCenter},
		{"table", Analysis{}, types.LayoutTable},
		{"quote", Analysis{}, types.LayoutStandard},
		{"", Analysis{Tier: TierHigh, Lines: 20}, types.LayoutGrid},
		{"", Analysis{Tier: TierLow, Lines: 3}, types.LayoutCenter},
		{"", Analysis{Tier: TierLow, Lines: 4}, types.LayoutStandard},
		{"", Analysis{Tier: TierMedium, Lines: 2}, types.LayoutStandard},
	}
	for _, tt := range tests {
		if got := s.LayoutFor(tt.pattern, tt.a); got != tt.want {
			t.Errorf("LayoutFor(%q, %+v) = %s, want %s", tt.pattern, tt.a, got, tt.want)
		}
	}
}

func TestStyleDensity(t *testing.T) {
	s := newSegmenter(t)
	base := catalog.Default().Design()

	assert.Equal(t, base.Typography, s.style("", Analysis{Tier: TierLow, Lines: 3}, false).Typography)

	dense := s.style("", Analysis{Tier: TierHigh}, false)
	assert.Equal(t, "20px", dense.Typography.FontSize)
	assert.InDelta(t, 1.4, dense.Typography.LineHeight, 1e-9)

	tall := s.style("", Analysis{Tier: TierMedium, Lines: 16}, true)
	assert.Equal(t, "21px", tall.Typography.FontSize)
	assert.NotEqual(t, base.Spacing.Padding, tall.Spacing.Padding)
}

func TestTitleSlide(t *testing.T) {
	s := newSegmenter(t)
	doc := &types.Document{
		Title: "Quarterly Review",
		Sections: []types.Section{
			{ID: "section-1", Level: 1, Title: "Quarterly Review"},
			{ID: "section-2", Level: 2, Title: "Results"},
			{ID: "section-3", Level: 3, Title: "Detail"},
			{ID: "section-4", Level: 2, Title: "Next steps"},
		},
	}
	sl := s.TitleSlide(doc)
	assert.Equal(t, types.SlideTitle, sl.Kind)
	assert.Equal(t, "Quarterly Review", sl.Title)
	assert.Equal(t, "- Results\n- Next steps", sl.Sections[0].Content)
	assert.Equal(t, types.LayoutCenter, sl.Layout.Pattern)
	assert.Equal(t, "40px", sl.Style.Typography.FontSize)
}
