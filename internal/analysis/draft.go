package analysis

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"mdslides/internal/types"
)

// TOCItem is one table-of-contents entry.
type TOCItem struct {
	Title string `json:"title"`
	Level int    `json:"level"`
	Page  int    `json:"page"`
}

// Scope lists what the presentation covers and what it leaves out.
type Scope struct {
	Included []string `json:"included"`
	Excluded []string `json:"excluded"`
}

// RelationKind describes how a section relates to the next one.
type RelationKind string

const (
	RelationPrerequisite RelationKind = "prerequisite"
	RelationBuildsOn     RelationKind = "builds-on"
	RelationContrasts    RelationKind = "contrasts-with"
	RelationSupports     RelationKind = "supports"
)

// Relationship links two adjacent sections.
type Relationship struct {
	From string       `json:"from"`
	To   string       `json:"to"`
	Kind RelationKind `json:"kind"`
}

// OverviewStatement is the one-line message of a section.
type OverviewStatement struct {
	SectionID       string `json:"section_id"`
	Statement       string `json:"statement"`
	CoreMessage     string `json:"core_message"`
	AudienceBenefit string `json:"audience_benefit"`
	Generated       bool   `json:"generated"`
}

// TimePhase is one phase of the preparation schedule.
type TimePhase struct {
	Name       string   `json:"name"`
	Minutes    int      `json:"minutes"`
	Activities []string `json:"activities,omitempty"`
}

// TimeConstraints is the time budget found in the draft, plus the reading
// time the sections add up to.
type TimeConstraints struct {
	TotalMinutes     int         `json:"total_minutes"`
	Phases           []TimePhase `json:"phases"`
	EstimatedMinutes int         `json:"estimated_minutes"`
}

// DraftStructure is the output of the draft-structure stage.
type DraftStructure struct {
	Title         string              `json:"title"`
	TOC           []TOCItem           `json:"toc"`
	Scope         Scope               `json:"scope"`
	Summary       string              `json:"summary"`
	Sections      []types.Section     `json:"sections"`
	Relationships []Relationship      `json:"relationships"`
	Overviews     []OverviewStatement `json:"overviews"`
	Time          TimeConstraints     `json:"time"`
}

// DraftValidation is the verdict on a draft structure.
type DraftValidation struct {
	Valid           bool     `json:"valid"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
	Completeness    int      `json:"completeness"`
}

var (
	numberedItem  = regexp.MustCompile(`^\s*(\d+)\.\s+(.+)$`)
	bulletItem    = regexp.MustCompile(`^\s*[-*+]\s+(.+)$`)
	boldPhrase    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	totalMinutes  = regexp.MustCompile(`(\d+)\s*(?:分|min(?:utes?)?\b)`)
	phaseHeading  = regexp.MustCompile(`(?i)phase\s*\d+\s*[:：]\s*([^（(】\n]+?)\s*[（(](\d+)\s*(?:分|min(?:utes?)?)[)）]`)
	phaseActivity = regexp.MustCompile(`^\s*\d+-\d+\s*(?:分|min)\s*[:：]\s*(.+)$`)
	coreSplit     = regexp.MustCompile(`[、。，,.]`)
)

// BuildDraft extracts the draft structure of a document. Sections in the
// result carry their classified content type.
func (a *Analyzer) BuildDraft(doc *types.Document) DraftStructure {
	classified := a.cls.ClassifySections(doc)

	title := doc.Title
	if strings.TrimSpace(title) == "" {
		title = "Untitled Presentation"
	}

	d := DraftStructure{
		Title:         title,
		TOC:           tableOfContents(doc),
		Scope:         discussionScope(doc),
		Summary:       summary(doc),
		Sections:      classified.Sections,
		Relationships: relationships(classified.Sections),
		Time:          a.timeConstraints(doc),
	}
	for _, s := range doc.Sections {
		d.Overviews = append(d.Overviews, overviewStatement(s))
	}
	return d
}

func tableOfContents(doc *types.Document) []TOCItem {
	var items []TOCItem
	toc, ok := findSection(doc, func(s types.Section) bool {
		return containsAny(s.Title, "目次", "table of contents", "toc", "agenda")
	})
	if ok {
		for i, line := range strings.Split(toc.Content, "\n") {
			if m := numberedItem.FindStringSubmatch(line); m != nil {
				page, err := strconv.Atoi(m[1])
				if err != nil {
					page = i + 1
				}
				items = append(items, TOCItem{Title: strings.TrimSpace(m[2]), Level: 1, Page: page})
			} else if m := bulletItem.FindStringSubmatch(line); m != nil {
				items = append(items, TOCItem{Title: strings.TrimSpace(m[1]), Level: 1, Page: i + 1})
			}
		}
		return items
	}

	for i, s := range doc.Sections {
		if s.Level >= 1 && s.Level <= 2 && s.Title != "" {
			items = append(items, TOCItem{Title: s.Title, Level: s.Level, Page: i + 1})
		}
	}
	return items
}

func discussionScope(doc *types.Document) Scope {
	var scope Scope
	sec, ok := findSection(doc, func(s types.Section) bool {
		return containsAny(s.Title, "話すこと", "話さないこと", "スコープ", "scope") ||
			containsAny(s.Content, "話すこと", "話さないこと")
	})
	if ok {
		var mode *[]string
		for _, line := range strings.Split(sec.Content, "\n") {
			trimmed := strings.TrimSpace(line)
			if m := bulletItem.FindStringSubmatch(trimmed); m != nil {
				if mode != nil {
					*mode = append(*mode, strings.TrimSpace(m[1]))
				}
				continue
			}
			switch {
			case containsAny(trimmed, "話さないこと", "out of scope", "not covered"):
				mode = &scope.Excluded
			case containsAny(trimmed, "話すこと", "in scope", "covered"):
				mode = &scope.Included
			}
		}
	}

	if len(scope.Included) == 0 && len(scope.Excluded) == 0 {
		for _, s := range doc.Sections {
			if s.Level >= 1 && s.Level <= 2 && s.Title != "" {
				scope.Included = append(scope.Included, s.Title)
			}
		}
	}
	return scope
}

func summary(doc *types.Document) string {
	sec, ok := findSection(doc, func(s types.Section) bool {
		return containsAny(s.Title, "まとめ", "総括", "summary", "conclusion")
	})
	if ok {
		return strings.TrimSpace(sec.Content)
	}

	var points []string
	for _, s := range doc.Sections {
		if s.Level >= 1 && s.Level <= 2 && s.Title != "" && len(points) < 3 {
			points = append(points, s.Title)
		}
	}
	if len(points) == 0 {
		return ""
	}
	return fmt.Sprintf("This presentation covers %s.", strings.Join(points, ", "))
}

func relationships(sections []types.Section) []Relationship {
	var out []Relationship
	for i := 0; i+1 < len(sections); i++ {
		cur, next := sections[i], sections[i+1]
		kind := RelationBuildsOn
		switch {
		case containsAny(cur.Title, "基本", "前提", "basic", "prerequisite", "background"):
			kind = RelationPrerequisite
		case containsAny(cur.Content+"\n"+next.Content, "一方", "対して", "反対", "異なる", "しかし", " vs", "比較", "however", "in contrast"):
			kind = RelationContrasts
		case containsAny(next.Content, "例えば", "具体的", "実際", "事例", "ケース", "詳細", "for example", "case study", "in practice"):
			kind = RelationSupports
		}
		out = append(out, Relationship{From: cur.ID, To: next.ID, Kind: kind})
	}
	return out
}

func overviewStatement(s types.Section) OverviewStatement {
	if st := findStatement(s.Content); st != "" {
		return OverviewStatement{
			SectionID:       s.ID,
			Statement:       st,
			CoreMessage:     strings.TrimSpace(coreSplit.Split(st, 2)[0]),
			AudienceBenefit: audienceBenefit(st),
		}
	}

	title := s.Title
	if title == "" {
		title = "this section"
	}
	templates := []string{
		"This section explains %s in depth and builds practical understanding.",
		"The key points of %s and how to put them to use.",
		"%s from the basic concepts to their application.",
		"How to implement %s, with the practices that make it succeed.",
	}
	idx := 0
	if containsAny(s.Content, "方法", "手順", "how to", "procedure") {
		idx = 1
	}
	if containsAny(s.Content, "基本", "概念", "concept", "basics") {
		idx = 2
	}
	if containsAny(s.Content, "実装", "実際", "implement") {
		idx = 3
	}
	st := fmt.Sprintf(templates[idx], title)
	if st[0] < utf8.RuneSelf {
		st = strings.ToUpper(st[:1]) + st[1:]
	}
	return OverviewStatement{
		SectionID:       s.ID,
		Statement:       st,
		CoreMessage:     s.Title,
		AudienceBenefit: "understanding the section and practical knowledge",
		Generated:       true,
	}
}

// findStatement returns the longest bold phrase over 20 runes, or a line
// that announces what the section explains.
func findStatement(content string) string {
	best := ""
	for _, m := range boldPhrase.FindAllStringSubmatch(content, -1) {
		phrase := strings.TrimSpace(m[1])
		if n := utf8.RuneCountInString(phrase); n > 20 && n > utf8.RuneCountInString(best) {
			best = phrase
		}
	}
	if best != "" {
		return best
	}
	for _, line := range strings.Split(content, "\n") {
		if containsAny(line, "説明します", "示します", "解説します", "this section", "we explain", "we show") {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

func audienceBenefit(statement string) string {
	switch {
	case containsAny(statement, "理解", "understand"):
		return "better understanding"
	case containsAny(statement, "習得", "learn", "skill"):
		return "new skills"
	case containsAny(statement, "改善", "improv"):
		return "ways to improve"
	case containsAny(statement, "効率", "efficien"):
		return "greater efficiency"
	}
	return "knowledge and skills"
}

func (a *Analyzer) timeConstraints(doc *types.Document) TimeConstraints {
	tc := TimeConstraints{EstimatedMinutes: estimatedMinutes(doc)}

	sec, ok := findSection(doc, func(s types.Section) bool {
		return containsAny(s.Title, "時間", "配分", "time", "schedule") ||
			containsAny(s.Content, fmt.Sprintf("%d分", a.tuning.TimeBudgetMinutes), "phase")
	})
	if ok {
		tc.TotalMinutes, tc.Phases = parsePhases(sec.Content)
	}
	if len(tc.Phases) == 0 {
		def := a.defaultSchedule()
		tc.TotalMinutes, tc.Phases = def.TotalMinutes, def.Phases
	}
	if tc.TotalMinutes == 0 {
		tc.TotalMinutes = a.tuning.TimeBudgetMinutes
	}
	return tc
}

func parsePhases(content string) (int, []TimePhase) {
	total := 0
	if m := totalMinutes.FindStringSubmatch(content); m != nil {
		total, _ = strconv.Atoi(m[1])
	}

	var phases []TimePhase
	for _, line := range strings.Split(content, "\n") {
		if m := phaseHeading.FindStringSubmatch(line); m != nil {
			minutes, _ := strconv.Atoi(m[2])
			phases = append(phases, TimePhase{Name: strings.TrimSpace(m[1]), Minutes: minutes})
			continue
		}
		if m := phaseActivity.FindStringSubmatch(line); m != nil && len(phases) > 0 {
			last := &phases[len(phases)-1]
			last.Activities = append(last.Activities, strings.TrimSpace(m[1]))
		}
	}
	return total, phases
}

// defaultSchedule is the standard three-phase preparation schedule, scaled
// to the configured budget.
func (a *Analyzer) defaultSchedule() TimeConstraints {
	budget := a.tuning.TimeBudgetMinutes
	research := int(math.Round(float64(budget) * 3 / 8))
	polish := int(math.Round(float64(budget) / 8))
	return TimeConstraints{
		TotalMinutes: budget,
		Phases: []TimePhase{
			{Name: "Research", Minutes: research, Activities: []string{
				"identify the main sources",
				"collect the core data and cases",
			}},
			{Name: "Structure and writing", Minutes: budget - research - polish, Activities: []string{
				"outline the required elements",
				"write the overview statements",
				"write the free-form sections",
				"check the overall flow",
			}},
			{Name: "Polish", Minutes: polish, Activities: []string{
				"final pass on overview statements",
				"final check of required elements",
			}},
		},
	}
}

func estimatedMinutes(doc *types.Document) int {
	total := 0
	for _, s := range doc.Sections {
		total += s.EstimatedMinutes
	}
	return total
}

// ValidateDraft checks the required elements of a draft and scores its
// completeness from 0 to 100.
func (a *Analyzer) ValidateDraft(d DraftStructure) DraftValidation {
	var v DraftValidation
	t := a.tuning

	if strings.TrimSpace(d.Title) == "" {
		v.Issues = append(v.Issues, "title is not set")
	}
	if len(d.TOC) == 0 {
		v.Issues = append(v.Issues, "table of contents is missing")
	}
	if len(d.Scope.Included) == 0 {
		v.Issues = append(v.Issues, "what the presentation covers is not stated")
	}
	if utf8.RuneCountInString(strings.TrimSpace(d.Summary)) < t.MinSummaryLength {
		v.Issues = append(v.Issues, "summary is too short")
	}
	missing := 0
	for _, o := range d.Overviews {
		if utf8.RuneCountInString(strings.TrimSpace(o.Statement)) < t.MinOverviewLength {
			missing++
		}
	}
	if missing > 0 {
		v.Issues = append(v.Issues, fmt.Sprintf("%d sections lack an overview statement", missing))
	}

	if d.Time.TotalMinutes > t.TimeBudgetMinutes {
		v.Recommendations = append(v.Recommendations,
			fmt.Sprintf("schedule exceeds the %d minute budget; consider cutting content", t.TimeBudgetMinutes))
	}
	if d.Time.EstimatedMinutes > t.TimeBudgetMinutes {
		v.Recommendations = append(v.Recommendations,
			fmt.Sprintf("sections need about %d minutes, over the %d minute budget", d.Time.EstimatedMinutes, t.TimeBudgetMinutes))
	}
	if len(d.Sections) > t.MaxSections {
		v.Recommendations = append(v.Recommendations, "too many sections; consider merging some")
	}
	if len(d.Overviews) < len(d.Sections) {
		v.Recommendations = append(v.Recommendations, "add an overview statement to every section")
	}

	v.Valid = len(v.Issues) == 0
	v.Completeness = a.completeness(d)
	return v
}

func (a *Analyzer) completeness(d DraftStructure) int {
	score := 0.0
	if d.Title != "" {
		score += 10
	}
	if len(d.TOC) > 0 {
		score += 10
	}
	if len(d.Scope.Included) > 0 {
		score += 10
	}
	if utf8.RuneCountInString(d.Summary) > a.tuning.MinSummaryLength {
		score += 10
	}

	sections := len(d.Sections)
	if sections < 1 {
		sections = 1
	}
	score += math.Min(30, float64(len(d.Overviews))/float64(sections)*30)

	if len(d.Sections) > 0 {
		score += 10
	}
	if len(d.Relationships) > 0 {
		score += 10
	}
	if d.Time.TotalMinutes <= a.tuning.TimeBudgetMinutes {
		score += 5
	}
	if len(d.Time.Phases) >= 3 {
		score += 5
	}
	return int(math.Round(score))
}
