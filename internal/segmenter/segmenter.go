// Package segmenter turns sections into slide definitions: one slide when the
// section fits, otherwise an overview slide followed by detail slides.
package segmenter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"mdslides/internal/catalog"
	"mdslides/internal/config"
	"mdslides/internal/logging"
	"mdslides/internal/parser"
	"mdslides/internal/types"
)

var (
	subHeading  = regexp.MustCompile(`^#{2,6}\s+(.+?)\s*#*\s*$`)
	bulletItem  = regexp.MustCompile(`^\s*(?:[-*+]|\d+\.)\s+(.+)$`)
	sentenceEnd = regexp.MustCompile(`[。．！？]|[.!?](?:\s|$)`)
	boldPhrase  = regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`)
)

// Segmenter is stateless after construction and safe for concurrent use.
type Segmenter struct {
	cat    *catalog.Catalog
	tuning config.SegmenterTuning
}

// New creates a segmenter.
func New(cat *catalog.Catalog, tuning config.SegmenterTuning) *Segmenter {
	if tuning.WordsPerMinute <= 0 {
		tuning.WordsPerMinute = 100
	}
	return &Segmenter{cat: cat, tuning: tuning}
}

// Segment produces the slides for one section, numbered from startOrder.
// mapping may be nil for sections without a pattern. Sections whose content
// is blank produce no slides.
func (s *Segmenter) Segment(sec types.Section, mapping *types.PatternMapping, startOrder int) []types.SlideDefinition {
	if strings.TrimSpace(sec.Content) == "" {
		return nil
	}

	patternID, notes := "", ""
	if mapping != nil {
		patternID, notes = mapping.Selected.ID, mapping.Rationale
	}

	a := s.Analyze(sec.Content)
	var slides []types.SlideDefinition
	if !a.NeedsSplit {
		slides = []types.SlideDefinition{s.single(sec, a, patternID)}
	} else {
		slides = s.split(sec, a, patternID)
	}

	for i := range slides {
		slides[i].Order = startOrder + i
		slides[i].SectionID = sec.ID
		slides[i].PatternID = patternID
		slides[i].Notes = notes
	}

	logging.SegmenterDebug("section %s: %d slides (lines=%d chars=%d split=%v tier=%s)",
		sec.ID, len(slides), a.Lines, a.Chars, a.NeedsSplit, a.Tier)
	return slides
}

func (s *Segmenter) single(sec types.Section, a Analysis, patternID string) types.SlideDefinition {
	return types.SlideDefinition{
		ID:                "slide-" + sec.ID,
		Kind:              types.SlideSingle,
		Title:             slideTitle(sec),
		OverviewStatement: s.statement(sec),
		Sections: []types.SlideContent{{
			Title:            sec.Title,
			Level:            sec.Level,
			Content:          sec.Content,
			Body:             sec.Content,
			Type:             sec.Type,
			EstimatedMinutes: s.minutes(sec.Text(), s.tuning.MinSectionMinutes),
		}},
		Layout: s.layout(patternID, a),
		Style:  s.style(patternID, a, false),
	}
}

func (s *Segmenter) split(sec types.Section, a Analysis, patternID string) []types.SlideDefinition {
	chunks := s.pack(Paragraphs(sec.Content))
	title := slideTitle(sec)

	items := s.overviewItems(sec.Content)
	var overview strings.Builder
	for _, item := range items {
		fmt.Fprintf(&overview, "- %s\n", item)
	}

	slides := []types.SlideDefinition{{
		ID:                "slide-" + sec.ID + "-overview",
		Kind:              types.SlideOverview,
		Title:             title + ": Overview",
		OverviewStatement: fmt.Sprintf("%s: overview of the %d parts that follow", title, len(chunks)),
		Sections: []types.SlideContent{{
			Title:            "Overview",
			Level:            sec.Level,
			Content:          strings.TrimRight(overview.String(), "\n"),
			Type:             sec.Type,
			EstimatedMinutes: s.minutes(overview.String(), s.tuning.MinFragmentMinutes),
		}},
		Layout: s.layout("", Analysis{Tier: TierMedium}),
		Style:  s.style("", a, true),
	}}

	for i, chunk := range chunks {
		ca := s.Analyze(chunk)
		slides = append(slides, types.SlideDefinition{
			ID:                fmt.Sprintf("slide-%s-%d", sec.ID, i+1),
			Kind:              types.SlideDetail,
			Title:             fmt.Sprintf("%s (%d/%d)", title, i+1, len(chunks)),
			OverviewStatement: fmt.Sprintf("%s, part %d of %d", title, i+1, len(chunks)),
			Sections: []types.SlideContent{{
				Title:            fmt.Sprintf("%s (%d/%d)", sec.Title, i+1, len(chunks)),
				Level:            sec.Level,
				Content:          chunk,
				Body:             chunk,
				Type:             sec.Type,
				EstimatedMinutes: s.minutes(chunk, s.tuning.MinFragmentMinutes),
			}},
			Layout: s.layout(patternID, ca),
			Style:  s.style(patternID, ca, true),
		})
	}
	return slides
}

// pack greedily groups paragraphs; the buffer is flushed when adding the next
// paragraph would make it need splitting.
func (s *Segmenter) pack(paras []string) []string {
	var chunks []string
	buf := ""
	for _, p := range paras {
		if buf == "" {
			buf = p
			continue
		}
		candidate := buf + "\n\n" + p
		if s.Analyze(candidate).NeedsSplit {
			chunks = append(chunks, buf)
			buf = p
			continue
		}
		buf = candidate
	}
	if buf != "" {
		chunks = append(chunks, buf)
	}
	return chunks
}

// overviewItems prefers sub-headings, then bullet items, then leading sentences.
func (s *Segmenter) overviewItems(content string) []string {
	limit := s.tuning.OverviewItems
	var headings, bullets []string

	inFence, fence := false, ""
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if inFence {
			if closesFence(trimmed, fence) {
				inFence = false
			}
			continue
		}
		if f := openingFence(trimmed); f != "" {
			inFence, fence = true, f
			continue
		}
		if m := subHeading.FindStringSubmatch(trimmed); m != nil {
			headings = append(headings, m[1])
		} else if m := bulletItem.FindStringSubmatch(line); m != nil {
			bullets = append(bullets, strings.TrimSpace(m[1]))
		}
	}

	switch {
	case len(headings) > 0:
		return capItems(headings, limit)
	case len(bullets) > 0:
		return capItems(bullets, limit)
	}

	var sentences []string
	for _, para := range Paragraphs(content) {
		if _, ok := fenceOf(para); ok {
			continue
		}
		for _, sentence := range sentenceEnd.Split(para, -1) {
			sentence = strings.Join(strings.Fields(sentence), " ")
			if utf8.RuneCountInString(sentence) > s.tuning.MinSentenceLength {
				sentences = append(sentences, sentence)
			}
		}
	}
	return capItems(capItems(sentences, s.tuning.OverviewSentences), limit)
}

func fenceOf(para string) (string, bool) {
	f := openingFence(strings.TrimSpace(strings.SplitN(para, "\n", 2)[0]))
	return f, f != ""
}

func capItems(items []string, limit int) []string {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// statement picks a bold phrase long enough to stand alone, or a template
// sentence for the section's content type.
func (s *Segmenter) statement(sec types.Section) string {
	for _, m := range boldPhrase.FindAllStringSubmatch(sec.Content, -1) {
		phrase := strings.TrimSpace(m[1] + m[2])
		if utf8.RuneCountInString(phrase) > s.tuning.StatementMinLength {
			return phrase
		}
	}

	var tail string
	switch sec.Type {
	case types.NumericalData:
		tail = "the key figures at a glance"
	case types.StructuralRelationship:
		tail = "how the parts fit together"
	case types.TemporalFlow:
		tail = "the sequence from start to finish"
	case types.EmotionalExperiential:
		tail = "the experience behind the story"
	default:
		tail = "the essential points, organized"
	}
	if sec.Title == "" {
		return strings.ToUpper(tail[:1]) + tail[1:]
	}
	return sec.Title + ": " + tail
}

func (s *Segmenter) minutes(text string, floor int) int {
	words := parser.CountWords(text, 0)
	m := (words + s.tuning.WordsPerMinute - 1) / s.tuning.WordsPerMinute
	if m < floor {
		return floor
	}
	return m
}

func slideTitle(sec types.Section) string {
	if sec.Title != "" {
		return sec.Title
	}
	return "Introduction"
}

// TitleSlide builds the opening slide of a deck with an agenda of the
// top-level section titles.
func (s *Segmenter) TitleSlide(doc *types.Document) types.SlideDefinition {
	var agenda []string
	for _, sec := range doc.Sections {
		if sec.Level == 2 && sec.Title != "" {
			agenda = append(agenda, "- "+sec.Title)
		}
	}
	agenda = capItems(agenda, 6)

	style := s.cat.Design()
	style.Typography.FontSize = "40px"
	style.Typography.FontWeight = 700

	statement := doc.Title + ": what this presentation covers"
	return types.SlideDefinition{
		ID:                "slide-title",
		Order:             1,
		Kind:              types.SlideTitle,
		Title:             doc.Title,
		OverviewStatement: statement,
		Sections: []types.SlideContent{{
			Title:            doc.Title,
			Level:            1,
			Content:          strings.Join(agenda, "\n"),
			Type:             types.InformationOrganization,
			EstimatedMinutes: 1,
		}},
		Layout: types.Layout{Pattern: types.LayoutCenter, Columns: 1, Rows: 1, Gap: style.Spacing.Gap, Padding: style.Spacing.Padding, Alignment: "center"},
		Style:  style,
	}
}
