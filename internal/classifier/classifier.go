// Package classifier assigns content types to text using catalog keyword
// tables and regex detector families.
package classifier

import (
	"regexp"
	"strings"

	"mdslides/internal/catalog"
	"mdslides/internal/config"
	"mdslides/internal/logging"
	"mdslides/internal/types"
)

// detector is one regex family voting for a content type.
type detector struct {
	contentType types.ContentType
	patterns    []*regexp.Regexp
	threshold   int
}

// matches counts every match of every pattern in the family.
func (d detector) matches(text string) int {
	total := 0
	for _, re := range d.patterns {
		total += len(re.FindAllStringIndex(text, -1))
	}
	return total
}

func (d detector) fires(text string) bool {
	return d.matches(text) >= d.threshold
}

// Classifier is stateless after construction and safe for concurrent use.
type Classifier struct {
	keywords  map[types.ContentType][]string
	detectors []detector
	tuning    config.ClassifierTuning
}

// New builds a classifier from the catalog's keyword tables.
func New(cat *catalog.Catalog, tuning config.ClassifierTuning) *Classifier {
	c := &Classifier{
		keywords: make(map[types.ContentType][]string),
		tuning:   tuning,
	}
	for _, t := range types.AllContentTypes() {
		c.keywords[t] = cat.Keywords(t)
	}
	c.detectors = buildDetectors(tuning)
	return c
}

func buildDetectors(t config.ClassifierTuning) []detector {
	atLeastOne := func(n int) int {
		if n < 1 {
			return 1
		}
		return n
	}
	// order is priority order for Primary
	return []detector{
		{
			contentType: types.NumericalData,
			threshold:   atLeastOne(t.NumericThreshold),
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`\d+[%％]`),
				regexp.MustCompile(`(?i)\d+\s*(?:[万億千百十]|million|billion)`),
				regexp.MustCompile(`\d+:\d+`),
				regexp.MustCompile(`\$\d+|\d+円|\d+ドル`),
				regexp.MustCompile(`(?i)\bKPI\b|\bROI\b|売上|利益|コスト`),
			},
		},
		{
			contentType: types.StructuralRelationship,
			threshold:   atLeastOne(t.StructuralThreshold),
			patterns: []*regexp.Regexp{
				regexp.MustCompile("(?i)```mermaid|\\bgraph\\b|\\bflowchart\\b|\\bdiagram\\b"),
			},
		},
		{
			contentType: types.TemporalFlow,
			threshold:   atLeastOne(t.TemporalThreshold),
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\bstep\s*\d+|ステップ\s*\d+`),
				regexp.MustCompile(`(?i)\bphase\s*\d+|フェーズ\s*\d+`),
				regexp.MustCompile(`\d+年\d+月|\b\d{1,4}/\d{1,2}\b`),
				regexp.MustCompile(`(?i)\bbefore\b|\bafter\b|次に|その後|以前|以後`),
			},
		},
		{
			contentType: types.InformationOrganization,
			threshold:   atLeastOne(t.OrganizationalThreshold),
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?m)^\s*[-*+]\s+\S`),
				regexp.MustCompile(`(?m)^\s*\d+\.\s+\S`),
				regexp.MustCompile(`(?m)^\s*\|.+\|\s*$`),
				regexp.MustCompile(`(?m)^\s*>\s+\S`),
			},
		},
		{
			contentType: types.EmotionalExperiential,
			threshold:   atLeastOne(t.NarrativeThreshold),
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`事例|ケース|体験|ストーリー|成功|失敗|感動`),
				regexp.MustCompile(`(?i)\bcase stud(?:y|ies)\b|\btestimonials?\b|\bstor(?:y|ies)\b`),
			},
		},
	}
}

// Types returns every content type the text exhibits, in priority order.
// It never returns an empty set: text with no signal is InformationOrganization.
func (c *Classifier) Types(text string) []types.ContentType {
	found := c.keywordTypes(text)
	for _, d := range c.detectors {
		if d.fires(text) {
			found[d.contentType] = true
		}
	}

	var out []types.ContentType
	for _, t := range types.AllContentTypes() {
		if found[t] {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return []types.ContentType{types.InformationOrganization}
	}
	return out
}

// Primary returns the single dominant content type of the text: the first
// detector to fire in priority order, or InformationOrganization.
func (c *Classifier) Primary(text string) types.ContentType {
	for _, d := range c.detectors {
		if d.fires(text) {
			return d.contentType
		}
	}
	return types.InformationOrganization
}

// Signals reports the detector match counts, used for rationale text.
func (c *Classifier) Signals(text string) map[types.ContentType]int {
	out := make(map[types.ContentType]int, len(c.detectors))
	for _, d := range c.detectors {
		if n := d.matches(text); n > 0 {
			out[d.contentType] = n
		}
	}
	return out
}

// Classification is the content-type set of a whole document.
type Classification struct {
	Types []types.ContentType
	// Defaulted is true when no section produced any signal.
	Defaulted bool
}

// ClassifyDocument unions the content types found in every section.
func (c *Classifier) ClassifyDocument(doc *types.Document) Classification {
	found := make(map[types.ContentType]bool)
	signal := false
	if doc != nil {
		for _, s := range doc.Sections {
			text := s.Text()
			if c.hasSignal(text) {
				signal = true
			}
			for _, t := range c.Types(text) {
				found[t] = true
			}
		}
	}

	var out []types.ContentType
	for _, t := range types.AllContentTypes() {
		if found[t] {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		out = []types.ContentType{types.InformationOrganization}
	}
	logging.ClassifierDebug("document classified as %v (defaulted=%v)", out, !signal)
	return Classification{Types: out, Defaulted: !signal}
}

// hasSignal reports whether any keyword table or detector fired.
func (c *Classifier) hasSignal(text string) bool {
	for _, d := range c.detectors {
		if d.fires(text) {
			return true
		}
	}
	return len(c.keywordTypes(text)) > 0
}

// keywordTypes returns the types whose keyword table has at least
// KeywordThreshold distinct keywords present in text.
func (c *Classifier) keywordTypes(text string) map[types.ContentType]bool {
	threshold := c.tuning.KeywordThreshold
	if threshold < 1 {
		threshold = 1
	}
	lower := strings.ToLower(text)
	found := make(map[types.ContentType]bool)
	for t, words := range c.keywords {
		hits := 0
		for _, w := range words {
			if strings.Contains(lower, w) {
				hits++
			}
		}
		if hits >= threshold {
			found[t] = true
		}
	}
	return found
}

// ClassifySections returns a copy of doc whose sections carry their primary type.
func (c *Classifier) ClassifySections(doc *types.Document) *types.Document {
	sections := make([]types.Section, len(doc.Sections))
	for i, s := range doc.Sections {
		sections[i] = s.WithType(c.Primary(s.Text()))
	}
	return doc.WithSections(sections)
}
