package render

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdslides/internal/catalog"
	"mdslides/internal/config"
	"mdslides/internal/types"
)

func testDeck() *types.SlideDeck {
	design := catalog.Default().Design()
	dense := design
	dense.Typography.FontSize = "20px"
	dense.Typography.LineHeight = 1.4

	return &types.SlideDeck{
		Title:            "Quarterly Review",
		EstimatedMinutes: 5,
		Slides: []types.SlideDefinition{
			{
				ID: "slide-title", Order: 1, Kind: types.SlideTitle, Title: "Quarterly Review",
				Sections: []types.SlideContent{{Content: "- Results\n- Next steps"}},
				Layout:   types.Layout{Pattern: types.LayoutCenter},
				Style:    design,
			},
			{
				ID: "slide-section-2", Order: 2, Kind: types.SlideSingle, Title: "Results",
				OverviewStatement: "Revenue <grew> this quarter",
				Sections:          []types.SlideContent{{Title: "Results", Content: "Sales rose **50%**.\n\n<script>alert(1)</script>\n\n| a | b |\n|---|---|\n| 1 | 2 |"}},
				Layout:            types.Layout{Pattern: types.LayoutSplit},
				Style:             dense,
				Notes:             "selected comparison",
			},
		},
	}
}

func testOptions(notes bool) Options {
	out := config.DefaultConfig().Output
	out.IncludeNotes = notes
	return OptionsFromConfig(out, catalog.Default().Design())
}

func TestMarp(t *testing.T) {
	md, err := Marp(testDeck(), testOptions(true))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(md, "---\nmarp: true\n"), md)
	assert.Contains(t, md, "paginate: true")
	assert.Regexp(t, `backgroundColor: ['"]#ffffff['"]`, md)
	assert.Contains(t, md, "--primary: #2c5aa0;")
	assert.Contains(t, md, "<!-- _class: layout-center kind-title -->")
	assert.Contains(t, md, "# Quarterly Review\n\n**2 slides | about 5 minutes**")
	assert.Contains(t, md, "<!-- _class: layout-split kind-single -->\n<!-- _style: \"font-size: 20px; line-height: 1.4\" -->")
	assert.Contains(t, md, "## Results\n\n<p class=\"overview\">Revenue &lt;grew&gt; this quarter</p>")
	assert.Contains(t, md, "<!--\nselected comparison\n-->")
	assert.Equal(t, 1, strings.Count(md, "\n---\n\n<!-- _class"), "slides are separated by a rule")
}

func TestMarpWithoutNotes(t *testing.T) {
	md, err := Marp(testDeck(), testOptions(false))
	require.NoError(t, err)
	assert.NotContains(t, md, "selected comparison")
}

func TestEmit(t *testing.T) {
	e := NewHTMLEmitter(testOptions(false))
	out, err := e.Emit(context.Background(), testDeck())
	require.NoError(t, err)

	assert.Equal(t, 2, out.SlideCount)
	require.Len(t, out.SlideHTML, 2)
	assert.NotEmpty(t, out.Markdown)

	body := out.SlideHTML[1]
	assert.Contains(t, body, "<h2>Results</h2>")
	assert.Contains(t, body, `<p class="overview">`)
	assert.Contains(t, body, "<strong>50%</strong>")
	assert.Contains(t, body, "<table>")
	assert.NotContains(t, body, "<script>", "raw script must be sanitized away")

	page := out.HTML
	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, `<title>Quarterly Review</title>`)
	assert.Contains(t, page, `<section class="slide layout-split kind-single" id="slide-section-2" data-index="1"`)
	assert.Contains(t, page, `style="font-size: 20px; line-height: 1.4"`)
	assert.Contains(t, page, "2 / 2")
	assert.Contains(t, page, `"ArrowRight"`)
	assert.Equal(t, 1, strings.Count(page, "<script>"), "only the navigation script survives")
}

func TestEmitEmptyDeck(t *testing.T) {
	e := NewHTMLEmitter(testOptions(false))
	_, err := e.Emit(context.Background(), &types.SlideDeck{Title: "empty"})
	assert.ErrorIs(t, err, ErrEmptyDeck)

	_, err = e.Emit(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestEmitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTMLEmitter(testOptions(false)).Emit(ctx, testDeck())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSlideStyleOnlyOverrides(t *testing.T) {
	base := catalog.Default().Design()
	assert.Empty(t, slideStyle(base, base))

	s := base
	s.Spacing.Padding = "40px 60px 60px"
	assert.Equal(t, "padding: 40px 60px 60px", slideStyle(s, base))
}
