// Package analysis implements the first two pipeline stages: extracting the
// idea-evaluation framework from the idea analysis document, and the draft
// structure (table of contents, scope, summary, overview statements, timing)
// from the draft document.
package analysis

import (
	"strings"

	"mdslides/internal/classifier"
	"mdslides/internal/config"
	"mdslides/internal/types"
)

// Analyzer is stateless after construction and safe for concurrent use.
type Analyzer struct {
	cls    *classifier.Classifier
	tuning config.AnalysisTuning
}

// New creates an analyzer.
func New(cls *classifier.Classifier, tuning config.AnalysisTuning) *Analyzer {
	return &Analyzer{cls: cls, tuning: tuning}
}

// containsAny reports whether s contains any of the needles, ignoring case.
func containsAny(s string, needles ...string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func findSection(doc *types.Document, match func(types.Section) bool) (types.Section, bool) {
	for _, s := range doc.Sections {
		if match(s) {
			return s, true
		}
	}
	return types.Section{}, false
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
