package types

import "math"

// Pattern is one presentation pattern from the catalog. Patterns are
// immutable once the catalog is loaded.
type Pattern struct {
	ID            string      `yaml:"id" json:"id"`
	Name          string      `yaml:"name" json:"name"`
	Category      ContentType `yaml:"category" json:"category"`
	Description   string      `yaml:"description" json:"description"`
	UseCases      []string    `yaml:"use_cases" json:"use_cases"`
	Template      string      `yaml:"template" json:"-"`
	Effectiveness float64     `yaml:"effectiveness" json:"effectiveness"`
}

// PatternMapping binds one section to its chosen pattern.
type PatternMapping struct {
	SectionID    string    `json:"section_id"`
	SectionTitle string    `json:"section_title"`
	Selected     Pattern   `json:"selected"`
	Rationale    string    `json:"rationale"`
	Alternatives []Pattern `json:"alternatives"`
	Confidence   float64   `json:"confidence"`
	// Scores holds the section-level score of every pattern considered.
	Scores map[string]float64 `json:"scores,omitempty"`
}

// Clone returns a copy whose alternative slice can be modified freely.
func (m PatternMapping) Clone() PatternMapping {
	cp := m
	cp.Alternatives = append([]Pattern(nil), m.Alternatives...)
	return cp
}

// HasAlternative reports whether id is among the mapping's alternatives.
func (m PatternMapping) HasAlternative(id string) bool {
	for _, p := range m.Alternatives {
		if p.ID == id {
			return true
		}
	}
	return false
}

// SwapTo returns a copy of the mapping with the alternative id selected.
// The previous selection moves to the end of the alternatives, confidence is
// recomputed from the recorded scores, and note is appended to the rationale.
// ok is false when id is not an alternative of m.
func (m PatternMapping) SwapTo(id, note string) (PatternMapping, bool) {
	idx := -1
	for i, p := range m.Alternatives {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return m, false
	}

	next := m.Clone()
	chosen := next.Alternatives[idx]
	alts := make([]Pattern, 0, len(next.Alternatives))
	alts = append(alts, next.Alternatives[:idx]...)
	alts = append(alts, next.Alternatives[idx+1:]...)
	alts = append(alts, m.Selected)

	next.Selected = chosen
	next.Alternatives = alts
	next.Confidence = next.recomputeConfidence()
	if note != "" {
		next.Rationale = next.Rationale + " " + note
	}
	return next, true
}

func (m PatternMapping) recomputeConfidence() float64 {
	top := m.Scores[m.Selected.ID]
	if len(m.Alternatives) == 0 {
		return Confidence(top, 0, false)
	}
	runnerUp := math.Inf(-1)
	for _, p := range m.Alternatives {
		if s := m.Scores[p.ID]; s > runnerUp {
			runnerUp = s
		}
	}
	return Confidence(top, runnerUp, true)
}

// Confidence converts the selected score and the best runner-up score into a
// value in [0, 1], rounded to two decimals.
func Confidence(top, runnerUp float64, hasRunnerUp bool) float64 {
	if !hasRunnerUp {
		return 1.0
	}
	if top <= 0 {
		return 0
	}
	c := (top - runnerUp) / top
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	return math.Round(c*100) / 100
}
