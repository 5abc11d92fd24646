package pipeline

import (
	"time"

	"mdslides/internal/selector"
	"mdslides/internal/types"
)

// Report is the post-run summary.
type Report struct {
	RunID             string                      `json:"run_id"`
	Title             string                      `json:"title"`
	StartedAt         time.Time                   `json:"started_at"`
	FinishedAt        time.Time                   `json:"finished_at"`
	ProcessingSeconds float64                     `json:"processing_seconds"`
	Completed         bool                        `json:"completed"`
	SlideCount        int                         `json:"slide_count"`
	EstimatedMinutes  int                         `json:"estimated_minutes"`
	PrinciplesApplied []string                    `json:"principles_applied"`
	PatternsUsed      []string                    `json:"patterns_used"`
	DraftCompleteness int                         `json:"draft_completeness"`
	Stages            map[string]types.StageState `json:"stages"`
	Errors            []types.ProcessingError     `json:"errors"`
	Warnings          []types.ProcessingWarning   `json:"warnings"`
	QualityScore      int                         `json:"quality_score"`
	Recommendations   []string                    `json:"recommendations"`
	Selection         *selector.Report            `json:"selection,omitempty"`
}

// Report summarizes the current or last run. It returns ErrNoRun before the
// first Run.
func (o *Orchestrator) Report() (*Report, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if !o.started {
		return nil, ErrNoRun
	}

	c := o.content
	r := &Report{
		RunID:     o.status.RunID,
		StartedAt: o.status.StartedAt,
		Completed: o.status.Done,
		Stages:    make(map[string]types.StageState, len(o.stages)),
		Errors:    append([]types.ProcessingError(nil), o.status.Errors...),
		Warnings:  append([]types.ProcessingWarning(nil), o.status.Warnings...),
	}
	for s, state := range o.stages {
		r.Stages[s.String()] = state
	}

	end := o.finishedAt
	if end.IsZero() {
		end = o.clock()
	}
	r.FinishedAt = o.finishedAt
	r.ProcessingSeconds = end.Sub(r.StartedAt).Seconds()

	if c.Idea != nil {
		for _, p := range c.Idea.Principles {
			r.PrinciplesApplied = append(r.PrinciplesApplied, p.Name)
		}
	}
	if c.Draft != nil {
		r.Title = c.Draft.Title
	}
	if c.Validation != nil {
		r.DraftCompleteness = c.Validation.Completeness
	}
	if c.Selection != nil {
		for _, p := range c.Selection.Patterns {
			r.PatternsUsed = append(r.PatternsUsed, p.ID)
		}
		sr := c.Selection.Report
		r.Selection = &sr
	}
	if c.Deck != nil {
		if c.Deck.Title != "" {
			r.Title = c.Deck.Title
		}
		r.SlideCount = len(c.Deck.Slides)
		r.EstimatedMinutes = c.Deck.EstimatedMinutes
	}

	r.QualityScore = QualityScore(len(r.Errors), len(r.Warnings), len(r.PrinciplesApplied), len(r.PatternsUsed))
	r.Recommendations = o.recommendations(r)
	return r, nil
}

// QualityScore rates a run from 0 to 100: each error costs 10 points and each
// warning 5; more than three principles and more than five selected patterns
// each earn 5.
func QualityScore(errors, warnings, principles, patterns int) int {
	score := 100 - errors*10 - warnings*5
	if principles > 3 {
		score += 5
	}
	if patterns > 5 {
		score += 5
	}
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

func (o *Orchestrator) recommendations(r *Report) []string {
	var out []string
	if len(r.Errors) > 0 {
		out = append(out, "errors occurred during processing; check the input documents")
	}
	if len(r.Warnings) > o.settings.RecommendMaxWarnings {
		out = append(out, "many warnings were raised; consider improving the content")
	}
	if r.SlideCount > o.settings.RecommendMaxSlides {
		out = append(out, "the deck has many slides; consider condensing the content")
	}
	if r.EstimatedMinutes > o.settings.RecommendMaxDurationMin {
		out = append(out, "the presentation runs long; focus on the key points")
	}
	return out
}
