// Package selector scores catalog patterns against documents and sections and
// produces one PatternMapping per section.
package selector

import (
	"fmt"
	"sort"
	"strings"

	"mdslides/internal/catalog"
	"mdslides/internal/classifier"
	"mdslides/internal/config"
	"mdslides/internal/logging"
	"mdslides/internal/types"
)

// Selector is stateless after construction and safe for concurrent use.
type Selector struct {
	cat    *catalog.Catalog
	cls    *classifier.Classifier
	tuning config.SelectorTuning
}

// New creates a selector over the given catalog and classifier.
func New(cat *catalog.Catalog, cls *classifier.Classifier, tuning config.SelectorTuning) *Selector {
	return &Selector{cat: cat, cls: cls, tuning: tuning}
}

// Score rates pattern p for text whose derived type is target. title, when
// non-empty, enables section-title bonuses.
func (s *Selector) Score(p types.Pattern, title, text string, target types.ContentType) float64 {
	w := s.tuning.Weights
	score := p.Effectiveness * w.Effectiveness
	if p.Category == target {
		score += s.tuning.CategoryBonus * w.CategoryMatch
	}
	score += float64(len(useCaseHits(p, text))) * s.tuning.UseCaseBonus * w.UseCaseRelevance
	score -= s.cat.Complexity(p.ID) * w.Complexity
	score += fitBonus(p.ID, text)
	if bonus, ok := titleFit(p.ID, title); ok {
		score += bonus
	}
	return score
}

// useCaseHits returns the use-case phrases of p found in text.
func useCaseHits(p types.Pattern, text string) []string {
	lower := strings.ToLower(text)
	var hits []string
	for _, uc := range p.UseCases {
		if uc == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(uc)) {
			hits = append(hits, uc)
		}
	}
	return hits
}

type scored struct {
	pattern types.Pattern
	score   float64
}

// rank scores candidates and sorts them best first. Ties keep candidate order.
func (s *Selector) rank(candidates []types.Pattern, title, text string, target types.ContentType) []scored {
	out := make([]scored, len(candidates))
	for i, p := range candidates {
		out[i] = scored{pattern: p, score: s.Score(p, title, text, target)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out
}

// SelectPatterns picks the best patterns for the document: the top
// TopPerType candidates of every content type, scored against the full
// document text, deduplicated across types. A type whose candidates all
// score <= 0 contributes its catalog fallbacks instead.
func (s *Selector) SelectPatterns(doc *types.Document, contentTypes []types.ContentType) []types.Pattern {
	text := doc.FullText()
	seen := make(map[string]bool)
	var selected []types.Pattern

	add := func(p types.Pattern) {
		if !seen[p.ID] {
			seen[p.ID] = true
			selected = append(selected, p)
		}
	}

	for _, t := range contentTypes {
		ranked := s.rank(s.cat.ByCategory(t), "", text, t)
		picked := 0
		for _, r := range ranked {
			if picked >= s.tuning.TopPerType || r.score <= 0 {
				break
			}
			add(r.pattern)
			picked++
		}
		if picked == 0 {
			logging.Selector("no positive candidate for %s, using fallbacks", t)
			for _, p := range s.cat.Fallbacks(t) {
				add(p)
			}
		}
	}

	logging.SelectorDebug("selected %d patterns for %d content types", len(selected), len(contentTypes))
	return selected
}

// Result is the outcome of mapping sections to patterns.
type Result struct {
	Mappings []types.PatternMapping
	// Unmapped lists section ids for which no pattern could be scored.
	Unmapped []string
}

// MapSections scores every selected pattern against each section and keeps
// the best one plus up to MaxAlternatives runners-up.
func (s *Selector) MapSections(doc *types.Document, selected []types.Pattern) Result {
	var res Result
	for _, sec := range doc.Sections {
		if len(selected) == 0 {
			res.Unmapped = append(res.Unmapped, sec.ID)
			continue
		}

		text := sec.Text()
		target := sec.Type
		if !target.Valid() {
			target = s.cls.Primary(text)
		}

		ranked := s.rank(selected, sec.Title, text, target)
		scores := make(map[string]float64, len(ranked))
		for _, r := range ranked {
			scores[r.pattern.ID] = r.score
		}

		top := ranked[0]
		var alts []types.Pattern
		for _, r := range ranked[1:] {
			if len(alts) >= s.tuning.MaxAlternatives {
				break
			}
			alts = append(alts, r.pattern)
		}

		confidence := types.Confidence(top.score, 0, false)
		if len(ranked) > 1 {
			confidence = types.Confidence(top.score, ranked[1].score, true)
		}

		res.Mappings = append(res.Mappings, types.PatternMapping{
			SectionID:    sec.ID,
			SectionTitle: sec.Title,
			Selected:     top.pattern,
			Rationale:    s.Rationale(top.pattern, sec.Title, text, target),
			Alternatives: alts,
			Confidence:   confidence,
			Scores:       scores,
		})
	}
	return res
}

// Rationale explains why p suits the text, naming the signals that fired.
func (s *Selector) Rationale(p types.Pattern, title, text string, target types.ContentType) string {
	var parts []string

	if p.Category == target {
		if n := s.cls.Signals(text)[target]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s content (%d signals) suits %s", target.Label(), n, p.Name))
		} else {
			parts = append(parts, fmt.Sprintf("%s content suits %s", target.Label(), p.Name))
		}
	}
	if hits := useCaseHits(p, text); len(hits) > 0 {
		parts = append(parts, "matches use cases: "+strings.Join(hits, ", "))
	}
	if _, ok := titleFit(p.ID, title); ok {
		parts = append(parts, fmt.Sprintf("section title suggests %s", p.Name))
	}
	if bonus := fitBonus(p.ID, text); bonus > 0 && len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("text features favour %s", p.Name))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("content shape and presentation style fit %s", p.Name)
	}
	return strings.Join(parts, "; ")
}
