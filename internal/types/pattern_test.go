package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidence(t *testing.T) {
	tests := []struct {
		name      string
		top, next float64
		hasNext   bool
		want      float64
	}{
		{"no runner-up", 5, 0, false, 1.0},
		{"clear winner", 10, 5, true, 0.5},
		{"tie", 4, 4, true, 0},
		{"non-positive top", 0, -1, true, 0},
		{"negative top", -2, -3, true, 0},
		{"runner-up above top floors at zero", 3, 4, true, 0},
		{"rounding", 9, 6, true, 0.33},
		{"negative runner-up clamps to one", 2, -5, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Confidence(tt.top, tt.next, tt.hasNext), 1e-9)
		})
	}
}

func TestPatternMapping_SwapTo(t *testing.T) {
	a := Pattern{ID: "a"}
	b := Pattern{ID: "b"}
	c := Pattern{ID: "c"}
	m := PatternMapping{
		SectionID:    "section-1",
		Selected:     a,
		Alternatives: []Pattern{b, c},
		Rationale:    "fits",
		Confidence:   0.2,
		Scores:       map[string]float64{"a": 10, "b": 8, "c": 2},
	}

	swapped, ok := m.SwapTo("b", "(swapped)")
	require.True(t, ok)

	assert.Equal(t, "b", swapped.Selected.ID)
	assert.Equal(t, []Pattern{c, a}, swapped.Alternatives)
	assert.False(t, swapped.HasAlternative("b"))
	assert.Equal(t, "fits (swapped)", swapped.Rationale)
	// runner-up is now a (10) which beats b (8)
	assert.Equal(t, 0.0, swapped.Confidence)

	// original untouched
	assert.Equal(t, "a", m.Selected.ID)
	assert.Equal(t, []Pattern{b, c}, m.Alternatives)
	assert.Equal(t, "fits", m.Rationale)
}

func TestPatternMapping_SwapToUnknown(t *testing.T) {
	m := PatternMapping{Selected: Pattern{ID: "a"}, Alternatives: []Pattern{{ID: "b"}}}
	got, ok := m.SwapTo("z", "")
	assert.False(t, ok)
	assert.Equal(t, "a", got.Selected.ID)
}

func TestRenumber(t *testing.T) {
	slides := []SlideDefinition{{ID: "x", Order: 7}, {ID: "y", Order: 3}}
	out := Renumber(slides)
	assert.Equal(t, 1, out[0].Order)
	assert.Equal(t, 2, out[1].Order)
	assert.Equal(t, 7, slides[0].Order)
}

func TestDocumentFullText(t *testing.T) {
	doc := &Document{
		Title: "Deck",
		Sections: []Section{
			{Title: "One", Content: "alpha"},
			{Content: "beta"},
		},
	}
	assert.Equal(t, "Deck\nOne\nalpha\nbeta", doc.FullText())

	var nilDoc *Document
	assert.Empty(t, nilDoc.FullText())
}
