// Package pipeline drives the five processing stages that turn the staged
// source documents into an emitted slide deck.
//
// A run is a fold over the stages in fixed order. Each stage transition takes
// the content accumulated so far and the stage's own document, and returns
// new content plus any warnings. A stage that cannot produce what the next
// stage needs returns a *StageError and the run stops there; the status
// keeps the failing stage, the progress reached and every issue recorded.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"mdslides/internal/analysis"
	"mdslides/internal/catalog"
	"mdslides/internal/classifier"
	"mdslides/internal/config"
	"mdslides/internal/logging"
	"mdslides/internal/optimizer"
	"mdslides/internal/render"
	"mdslides/internal/segmenter"
	"mdslides/internal/selector"
	"mdslides/internal/types"
)

// Emitter turns a finished deck into output artifacts.
type Emitter interface {
	Emit(ctx context.Context, deck *types.SlideDeck) (*types.EmittedDeck, error)
}

// DocumentSource produces the five stage documents in stage order. A missing
// document is left nil so the run can fail at the right stage.
type DocumentSource interface {
	Load(ctx context.Context) ([]*types.Document, error)
}

// Config injects the orchestrator's collaborators. Zero values are built
// from Settings (or config.DefaultConfig when Settings is nil).
type Config struct {
	Settings   *config.Config
	Catalog    *catalog.Catalog
	Classifier *classifier.Classifier
	Selector   *selector.Selector
	Optimizer  *optimizer.Optimizer
	Segmenter  *segmenter.Segmenter
	Analyzer   *analysis.Analyzer
	Emitter    Emitter
	Clock      func() time.Time
	// OnProgress receives a status snapshot after every status change. It is
	// called from the goroutine running the pipeline and must not block.
	OnProgress func(types.Status)
}

// Selection is the pattern-selection stage output.
type Selection struct {
	Types        []types.ContentType    `json:"types"`
	Patterns     []types.Pattern        `json:"patterns"`
	Mappings     []types.PatternMapping `json:"mappings"`
	Unmapped     []string               `json:"unmapped,omitempty"`
	Optimization optimizer.Result       `json:"-"`
	Report       selector.Report        `json:"report"`
}

// ProcessedContent accumulates the output of every completed stage.
type ProcessedContent struct {
	Idea       *analysis.IdeaAnalysis    `json:"idea,omitempty"`
	Draft      *analysis.DraftStructure  `json:"draft,omitempty"`
	Validation *analysis.DraftValidation `json:"validation,omitempty"`
	Selection  *Selection                `json:"selection,omitempty"`
	Deck       *types.SlideDeck          `json:"deck,omitempty"`
	Output     *types.EmittedDeck        `json:"output,omitempty"`
}

// Result is returned by a successful run.
type Result struct {
	RunID   string
	Content ProcessedContent
	Status  types.Status
}

// Deck returns the final slide deck.
func (r *Result) Deck() *types.SlideDeck {
	return r.Content.Deck
}

// Output returns the emitted artifacts.
func (r *Result) Output() *types.EmittedDeck {
	return r.Content.Output
}

// Orchestrator runs the pipeline. One orchestrator runs one pipeline at a
// time; Status and Report may be called from any goroutine.
type Orchestrator struct {
	mu sync.RWMutex

	settings   config.PipelineConfig
	tuning     config.Tuning
	cat        *catalog.Catalog
	cls        *classifier.Classifier
	sel        *selector.Selector
	opt        *optimizer.Optimizer
	seg        *segmenter.Segmenter
	analyzer   *analysis.Analyzer
	emitter    Emitter
	clock      func() time.Time
	onProgress func(types.Status)

	transitions map[types.Stage]stageFunc

	// Run state, reset by every Run
	running    bool
	started    bool
	status     types.Status
	stages     map[types.Stage]types.StageState
	content    ProcessedContent
	finishedAt time.Time
}

// New creates an orchestrator.
func New(cfg Config) *Orchestrator {
	settings := cfg.Settings
	if settings == nil {
		settings = config.DefaultConfig()
	}
	t := settings.Tuning

	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	cls := cfg.Classifier
	if cls == nil {
		cls = classifier.New(cat, t.Classifier)
	}

	o := &Orchestrator{
		settings:   settings.Pipeline,
		tuning:     t,
		cat:        cat,
		cls:        cls,
		sel:        cfg.Selector,
		opt:        cfg.Optimizer,
		seg:        cfg.Segmenter,
		analyzer:   cfg.Analyzer,
		emitter:    cfg.Emitter,
		clock:      cfg.Clock,
		onProgress: cfg.OnProgress,
		stages:     make(map[types.Stage]types.StageState),
	}
	if o.sel == nil {
		o.sel = selector.New(cat, cls, t.Selector)
	}
	if o.opt == nil {
		o.opt = optimizer.New(cat, t.Optimizer)
	}
	if o.seg == nil {
		o.seg = segmenter.New(cat, t.Segmenter)
	}
	if o.analyzer == nil {
		o.analyzer = analysis.New(cls, t.Analysis)
	}
	if o.emitter == nil {
		o.emitter = render.NewHTMLEmitter(render.OptionsFromConfig(settings.Output, cat.Design()))
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	if o.settings.SecondsPerStage <= 0 {
		o.settings.SecondsPerStage = 30
	}
	if o.settings.ProgressPerStage <= 0 {
		o.settings.ProgressPerStage = 20
	}

	o.transitions = map[types.Stage]stageFunc{
		types.StageIdeaAnalysis:     o.analyzeIdea,
		types.StageDraftStructure:   o.structureDraft,
		types.StagePatternSelection: o.selectPatterns,
		types.StageSlideGeneration:  o.generateSlides,
		types.StageEmission:         o.emit,
	}
	return o
}

// stageProgress is the progress reported when each stage starts.
var stageProgress = map[types.Stage]int{
	types.StageIdeaAnalysis:     15,
	types.StageDraftStructure:   30,
	types.StagePatternSelection: 50,
	types.StageSlideGeneration:  70,
	types.StageEmission:         85,
}

const (
	progressStarted  = 5
	progressFinished = 100
)

// RunSource loads the stage documents from src and runs the pipeline.
func (o *Orchestrator) RunSource(ctx context.Context, src DocumentSource) (*Result, error) {
	docs, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	return o.Run(ctx, docs)
}

// Run processes docs, one document per stage in stage order. It returns
// ErrRunInProgress when another Run on o has not finished.
func (o *Orchestrator) Run(ctx context.Context, docs []*types.Document) (*Result, error) {
	st, ok := o.begin()
	if !ok {
		return nil, ErrRunInProgress
	}
	timer := logging.StartTimer(logging.CategoryPipeline, "run "+st.id)
	defer timer.Stop()

	logging.Pipeline("run %s started with %d documents", st.id, len(docs))

	for _, stage := range types.AllStages() {
		if err := ctx.Err(); err != nil {
			return nil, o.abort(st, stageErr(stage, types.ErrCancelled, err))
		}

		o.enterStage(stage)

		doc := documentFor(docs, stage)
		if doc == nil {
			return nil, o.abort(st, stageErr(stage, types.ErrFileNotFound,
				fmt.Errorf("%w: no document for stage %d", ErrMissingInput, int(stage))))
		}

		out, err := o.transitions[stage](ctx, st, doc)
		o.addWarnings(out.warnings)
		if err != nil {
			return nil, o.abort(st, err)
		}

		st.content = out.content
		o.completeStage(stage, st.content)
		logging.PipelineDebug("run %s: stage %s completed (%d warnings)", st.id, stage, len(out.warnings))
	}

	status := o.finish()
	logging.Pipeline("run %s completed: %d slides, %d warnings", st.id, len(st.content.Deck.Slides), len(status.Warnings))

	return &Result{RunID: st.id, Content: st.content, Status: status}, nil
}

func documentFor(docs []*types.Document, stage types.Stage) *types.Document {
	i := int(stage) - 1
	if i < 0 || i >= len(docs) {
		return nil
	}
	return docs[i]
}

// begin resets the run state. It reports false when a run is in progress.
func (o *Orchestrator) begin() (*runState, bool) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, false
	}

	st := &runState{id: uuid.NewString()}
	o.running = true
	o.started = true
	o.content = ProcessedContent{}
	o.finishedAt = time.Time{}
	o.stages = make(map[types.Stage]types.StageState, len(types.AllStages()))
	for _, s := range types.AllStages() {
		o.stages[s] = types.StagePending
	}
	o.status = types.Status{
		RunID:        st.id,
		CurrentStage: types.StageIdeaAnalysis,
		Progress:     progressStarted,
		Running:      true,
		StartedAt:    o.clock(),
	}
	snap := o.snapshotLocked()
	o.mu.Unlock()

	o.notify(snap)
	return st, true
}

func (o *Orchestrator) enterStage(stage types.Stage) {
	o.mu.Lock()
	o.status.CurrentStage = stage
	if p := stageProgress[stage]; p > o.status.Progress {
		o.status.Progress = p
	}
	o.stages[stage] = types.StageRunning
	snap := o.snapshotLocked()
	o.mu.Unlock()

	o.notify(snap)
}

func (o *Orchestrator) completeStage(stage types.Stage, content ProcessedContent) {
	o.mu.Lock()
	o.stages[stage] = types.StageCompleted
	o.content = content
	o.mu.Unlock()
}

func (o *Orchestrator) addWarnings(warnings []types.ProcessingWarning) {
	if len(warnings) == 0 {
		return
	}
	for _, w := range warnings {
		logging.PipelineWarn("stage %s: [%s] %s", w.Stage, w.Code, w.Message)
	}

	o.mu.Lock()
	o.status.Warnings = append(o.status.Warnings, warnings...)
	snap := o.snapshotLocked()
	o.mu.Unlock()

	o.notify(snap)
}

// abort records err against its stage, marks the remaining stages skipped
// and ends the run.
func (o *Orchestrator) abort(st *runState, err *StageError) error {
	logging.PipelineError("run %s aborted: %v", st.id, err)

	o.mu.Lock()
	o.status.CurrentStage = err.Stage
	o.status.Errors = append(o.status.Errors, types.ProcessingError{
		Stage:   err.Stage,
		Code:    err.Code,
		Message: err.Err.Error(),
		Time:    o.clock(),
	})
	o.status.Running = false
	o.status.Failed = true
	for _, s := range types.AllStages() {
		switch {
		case s == err.Stage:
			o.stages[s] = types.StageFailed
		case s > err.Stage:
			o.stages[s] = types.StageSkipped
		}
	}
	o.content = st.content
	o.running = false
	o.finishedAt = o.clock()
	snap := o.snapshotLocked()
	o.mu.Unlock()

	o.notify(snap)
	return err
}

func (o *Orchestrator) finish() types.Status {
	o.mu.Lock()
	o.status.Progress = progressFinished
	o.status.Running = false
	o.status.Done = true
	o.running = false
	o.finishedAt = o.clock()
	snap := o.snapshotLocked()
	o.mu.Unlock()

	o.notify(snap)
	return snap
}

func (o *Orchestrator) notify(s types.Status) {
	if o.onProgress != nil {
		o.onProgress(s)
	}
}

// Status returns a snapshot of the current or last run.
func (o *Orchestrator) Status() types.Status {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.snapshotLocked()
}

// snapshotLocked copies the status. Caller must hold o.mu.
func (o *Orchestrator) snapshotLocked() types.Status {
	s := o.status
	s.Errors = append([]types.ProcessingError(nil), o.status.Errors...)
	s.Warnings = append([]types.ProcessingWarning(nil), o.status.Warnings...)
	s.EstimatedSecondsRemaining = o.etaLocked()
	return s
}

// etaLocked estimates the seconds left: the unfinished share of the current
// stage plus a full stage for every stage after it.
func (o *Orchestrator) etaLocked() int {
	if !o.status.Running {
		return 0
	}
	per := o.settings.ProgressPerStage
	secs := float64(o.settings.SecondsPerStage)

	remaining := len(types.AllStages()) - int(o.status.CurrentStage)
	if remaining < 0 {
		remaining = 0
	}
	current := float64(per-o.status.Progress%per) / float64(per) * secs
	return int(math.Round(current + float64(remaining)*secs))
}
