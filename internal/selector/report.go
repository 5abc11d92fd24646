package selector

import (
	"fmt"
	"math"
	"sort"

	"mdslides/internal/types"
)

// Report summarizes a set of mappings for humans.
type Report struct {
	Summary             string                    `json:"summary"`
	Distribution        map[types.ContentType]int `json:"distribution"`
	Usage               map[string]int            `json:"usage"`
	AverageConfidence   float64                   `json:"average_confidence"`
	LowConfidence       []string                  `json:"low_confidence,omitempty"`
	Overused            []string                  `json:"overused,omitempty"`
	Warnings            []string                  `json:"warnings,omitempty"`
	Recommendations     []string                  `json:"recommendations,omitempty"`
	ImplementationNotes []string                  `json:"implementation_notes,omitempty"`
}

var implementationNotes = map[string]string{
	"diagram-structure": "diagram-structure slides need Mermaid rendering enabled",
	"network":           "network slides embed inline SVG",
	"dashboard":         "dashboard slides rely on CSS grid",
	"card-tile":         "card-tile slides rely on CSS grid",
	"icon-text":         "icon-text slides need an icon set",
	"photo-visual":      "photo-visual slides need background images",
	"chart-graph":       "chart-graph slides need chart images",
}

// Report builds the mapping summary, warnings and recommendations.
func (s *Selector) Report(mappings []types.PatternMapping) Report {
	r := Report{
		Distribution: make(map[types.ContentType]int),
		Usage:        make(map[string]int),
	}
	if len(mappings) == 0 {
		r.Summary = "no sections were mapped"
		r.Warnings = append(r.Warnings, "no pattern mappings were produced")
		return r
	}

	total := 0.0
	for _, m := range mappings {
		r.Distribution[m.Selected.Category]++
		r.Usage[m.Selected.ID]++
		total += m.Confidence
		if m.Confidence < s.tuning.LowConfidence {
			r.LowConfidence = append(r.LowConfidence, m.SectionID)
		}
	}
	r.AverageConfidence = math.Round(total/float64(len(mappings))*100) / 100

	ids := make([]string, 0, len(r.Usage))
	for id := range r.Usage {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	r.Summary = fmt.Sprintf("%d sections mapped to %d distinct patterns (average confidence %.2f)",
		len(mappings), len(ids), r.AverageConfidence)

	if len(mappings) >= 3 {
		for _, id := range ids {
			share := float64(r.Usage[id]) / float64(len(mappings))
			if share > s.tuning.OveruseShare {
				r.Overused = append(r.Overused, id)
				r.Warnings = append(r.Warnings, fmt.Sprintf("pattern %s is used in %d of %d sections", id, r.Usage[id], len(mappings)))
			}
		}
	}
	if n := len(r.LowConfidence); n > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%d sections have low pattern confidence", n))
	}

	if len(ids) >= 3 {
		r.Recommendations = append(r.Recommendations, "pattern variety is healthy")
	} else if len(mappings) >= 3 {
		r.Recommendations = append(r.Recommendations, "consider varying section content to allow more pattern variety")
	}
	if r.AverageConfidence >= 0.8 {
		r.Recommendations = append(r.Recommendations, "pattern choices are clear-cut")
	}
	if len(r.Distribution) == 1 {
		r.Recommendations = append(r.Recommendations, "all sections share one content type; mixing numbers, flows or stories keeps attention")
	}

	for _, id := range ids {
		if note, ok := implementationNotes[id]; ok {
			r.ImplementationNotes = append(r.ImplementationNotes, note)
		}
	}

	return r
}
