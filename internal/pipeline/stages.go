package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"mdslides/internal/logging"
	"mdslides/internal/types"
)

// runState is owned by the goroutine executing one Run.
type runState struct {
	id      string
	content ProcessedContent
}

// stageOutput is the content after a stage plus the warnings it raised.
type stageOutput struct {
	content  ProcessedContent
	warnings []types.ProcessingWarning
}

// stageFunc is one transition of the pipeline. It reads the content of the
// previous stages from st and must not modify it.
type stageFunc func(ctx context.Context, st *runState, doc *types.Document) (stageOutput, *StageError)

const (
	longSlideChars   = 800
	largeSlideHTML   = 5000
	minOverviewRunes = 10
)

func (out *stageOutput) warn(stage types.Stage, code types.WarningCode, format string, args ...interface{}) {
	out.warnings = append(out.warnings, types.ProcessingWarning{
		Stage:   stage,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

// analyzeIdea extracts principles and the evaluation framework.
func (o *Orchestrator) analyzeIdea(_ context.Context, st *runState, doc *types.Document) (stageOutput, *StageError) {
	const stage = types.StageIdeaAnalysis
	out := stageOutput{content: st.content}

	idea := o.analyzer.AnalyzeIdea(doc)
	out.content.Idea = &idea

	if len(idea.Principles) == 0 {
		out.warn(stage, types.WarnMissingPrinciples, "no principles found in %s", docName(doc))
	}
	if idea.Framework.Empty() {
		out.warn(stage, types.WarnIncompleteFramework, "critical-thinking framework is incomplete")
	}
	if idea.Defaulted {
		out.warn(stage, types.WarnClassificationDefault, "no content signals found; classified as %s", types.InformationOrganization.Label())
	}
	return out, nil
}

// structureDraft builds and validates the draft structure.
func (o *Orchestrator) structureDraft(_ context.Context, st *runState, doc *types.Document) (stageOutput, *StageError) {
	const stage = types.StageDraftStructure
	out := stageOutput{content: st.content}

	if len(doc.Sections) == 0 {
		return out, stageErr(stage, types.ErrMissingRequiredElements, fmt.Errorf("%w: %s", ErrNoSections, docName(doc)))
	}

	draft := o.analyzer.BuildDraft(doc)
	validation := o.analyzer.ValidateDraft(draft)
	out.content.Draft = &draft
	out.content.Validation = &validation

	for _, issue := range validation.Issues {
		out.warn(stage, types.WarnDraftIssue, "%s", issue)
	}
	for _, rec := range validation.Recommendations {
		out.warn(stage, types.WarnDraftRecommendation, "%s", rec)
	}
	if validation.Completeness < o.settings.DraftCompletenessWarnings {
		out.warn(stage, types.WarnLowCompleteness, "draft structure is %d%% complete", validation.Completeness)
	}
	return out, nil
}

// selectPatterns classifies the sections, maps each to a pattern and
// optimizes the sequence for flow.
func (o *Orchestrator) selectPatterns(_ context.Context, st *runState, doc *types.Document) (stageOutput, *StageError) {
	const stage = types.StagePatternSelection
	out := stageOutput{content: st.content}

	if len(doc.Sections) == 0 {
		return out, stageErr(stage, types.ErrPatternSelectionFailed, fmt.Errorf("%w: %s", ErrNoSections, docName(doc)))
	}

	classified := o.cls.ClassifySections(doc)
	cls := o.cls.ClassifyDocument(classified)
	patterns := o.sel.SelectPatterns(classified, cls.Types)
	mapped := o.sel.MapSections(classified, patterns)

	if n := len(mapped.Unmapped); n > 0 {
		out.warn(stage, types.WarnUnmappedSections, "%d sections could not be mapped to a pattern: %s",
			n, strings.Join(mapped.Unmapped, ", "))
	}
	if len(mapped.Mappings) == 0 {
		return out, stageErr(stage, types.ErrPatternSelectionFailed, ErrNoMappings)
	}

	optimized := o.opt.Optimize(mapped.Mappings)
	if !optimized.Converged {
		out.warn(stage, types.WarnOptimizerNotConverged, "pattern flow did not settle after %d rounds", optimized.Rounds)
	}

	report := o.sel.Report(optimized.Mappings)
	for _, id := range report.Overused {
		out.warn(stage, types.WarnPatternOveruse, "pattern %s is used in %d of %d sections",
			id, report.Usage[id], len(optimized.Mappings))
	}

	low := 0
	for _, m := range optimized.Mappings {
		if m.Confidence < o.tuning.Selector.LowConfidence {
			low++
		}
	}
	if low > 0 {
		out.warn(stage, types.WarnLowConfidence, "%d pattern mappings have low confidence", low)
	}

	logging.PipelineDebug("selected %d patterns, %d swaps over %d rounds",
		len(patterns), optimized.Swaps(), optimized.Rounds)

	out.content.Selection = &Selection{
		Types:        cls.Types,
		Patterns:     patterns,
		Mappings:     optimized.Mappings,
		Unmapped:     mapped.Unmapped,
		Optimization: optimized,
		Report:       report,
	}
	return out, nil
}

// generateSlides segments every section of doc into slides using the
// mappings of the selection stage.
func (o *Orchestrator) generateSlides(_ context.Context, st *runState, doc *types.Document) (stageOutput, *StageError) {
	const stage = types.StageSlideGeneration
	out := stageOutput{content: st.content}

	sel := st.content.Selection
	if sel == nil {
		return out, stageErr(stage, types.ErrSegmentationFailed, fmt.Errorf("%w: pattern selection output", ErrMissingInput))
	}

	classified := o.cls.ClassifySections(doc)
	byID := make(map[string]int, len(sel.Mappings))
	byTitle := make(map[string]int, len(sel.Mappings))
	for i, m := range sel.Mappings {
		byID[m.SectionID] = i
		if _, dup := byTitle[m.SectionTitle]; !dup && m.SectionTitle != "" {
			byTitle[m.SectionTitle] = i
		}
	}

	title := classified.Title
	if strings.TrimSpace(title) == "" && st.content.Draft != nil {
		title = st.content.Draft.Title
	}
	titleDoc := classified.WithSections(classified.Sections)
	titleDoc.Title = title

	var body []types.SlideDefinition
	for _, sec := range classified.Sections {
		var mapping *types.PatternMapping
		if i, ok := byID[sec.ID]; ok {
			mapping = &sel.Mappings[i]
		} else if i, ok := byTitle[sec.Title]; ok && sec.Title != "" {
			mapping = &sel.Mappings[i]
		}
		body = append(body, o.seg.Segment(sec, mapping, len(body)+2)...)
	}
	if len(body) == 0 {
		return out, stageErr(stage, types.ErrSegmentationFailed, fmt.Errorf("%w: %s", ErrNoSlides, docName(doc)))
	}

	slides := types.Renumber(append([]types.SlideDefinition{o.seg.TitleSlide(titleDoc)}, body...))
	deck := &types.SlideDeck{
		Title:    title,
		Slides:   slides,
		Mappings: sel.Mappings,
	}
	for _, s := range slides {
		deck.EstimatedMinutes += s.EstimatedMinutes()
	}

	long, noOverview := 0, 0
	for _, s := range slides {
		for _, c := range s.Sections {
			if utf8.RuneCountInString(c.Content) > longSlideChars {
				long++
				break
			}
		}
		if utf8.RuneCountInString(strings.TrimSpace(s.OverviewStatement)) < minOverviewRunes {
			noOverview++
		}
	}
	if long > 0 {
		out.warn(stage, types.WarnLongSlides, "%d slides may be too long and could be split", long)
	}
	if noOverview > 0 {
		out.warn(stage, types.WarnMissingOverview, "%d slides lack an overview statement", noOverview)
	}

	out.content.Deck = deck
	return out, nil
}

// emit renders the deck.
func (o *Orchestrator) emit(ctx context.Context, st *runState, _ *types.Document) (stageOutput, *StageError) {
	const stage = types.StageEmission
	out := stageOutput{content: st.content}

	deck := st.content.Deck
	if deck == nil || len(deck.Slides) == 0 {
		return out, stageErr(stage, types.ErrEmissionFailed, fmt.Errorf("%w: slide deck", ErrMissingInput))
	}

	emitted, err := o.emitter.Emit(ctx, deck)
	if err != nil && ctx.Err() != nil {
		return out, stageErr(stage, types.ErrCancelled, ctx.Err())
	}
	if err != nil {
		return out, stageErr(stage, types.ErrEmissionFailed, fmt.Errorf("%w: %w", ErrEmissionFailed, err))
	}
	if emitted == nil || emitted.SlideCount == 0 {
		return out, stageErr(stage, types.ErrEmissionFailed, fmt.Errorf("%w: %w", ErrEmissionFailed, ErrNoSlides))
	}

	large := 0
	for _, h := range emitted.SlideHTML {
		if len(h) > largeSlideHTML {
			large++
		}
	}
	if large > 0 {
		out.warn(stage, types.WarnLargeSlideHTML, "%d slides have large HTML content", large)
	}

	out.content.Output = emitted
	return out, nil
}

func docName(doc *types.Document) string {
	if doc.Path != "" {
		return doc.Path
	}
	if doc.Title != "" {
		return doc.Title
	}
	return fmt.Sprintf("stage %d document", int(doc.Stage))
}
