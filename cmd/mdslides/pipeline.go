package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"mdslides/cmd/mdslides/ui"
	"mdslides/internal/catalog"
	"mdslides/internal/history"
	"mdslides/internal/loader"
	"mdslides/internal/parser"
	"mdslides/internal/pipeline"
	"mdslides/internal/types"
)

// outcome is everything one pipeline invocation produced.
type outcome struct {
	Result *pipeline.Result
	Report *pipeline.Report
	Err    error
}

// artifacts lists the files written for a run.
type artifacts struct {
	Marp   string
	HTML   string
	Report string
}

func loadCatalog() (*catalog.Catalog, error) {
	if catalogPath == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

func newSource() *loader.Source {
	return loader.NewSource(cfg.Input, parser.New(cfg.Tuning.Parser))
}

func newOrchestrator(cat *catalog.Catalog, onProgress func(types.Status)) *pipeline.Orchestrator {
	return pipeline.New(pipeline.Config{
		Settings:   cfg,
		Catalog:    cat,
		OnProgress: onProgress,
	})
}

// execute runs the pipeline once over the configured inputs. Report is nil
// when no run started, e.g. the inputs could not be loaded; a report left
// over from an earlier run on orch is never returned.
func execute(ctx context.Context, orch *pipeline.Orchestrator) outcome {
	previous := orch.Status().RunID
	res, err := orch.RunSource(ctx, newSource())
	out := outcome{Result: res, Err: err}

	report, rerr := orch.Report()
	if rerr == nil && report.RunID != previous {
		out.Report = report
	}
	return out
}

func outputPath(name string) string {
	return filepath.Join(cfg.Output.Dir, name)
}

// writeArtifacts writes the report and, for completed runs, the deck files.
func writeArtifacts(o outcome) (artifacts, error) {
	var a artifacts
	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return a, fmt.Errorf("failed to create output directory: %w", err)
	}

	if o.Report != nil && cfg.Output.ReportFile != "" {
		data, err := json.MarshalIndent(o.Report, "", "  ")
		if err != nil {
			return a, fmt.Errorf("failed to marshal report: %w", err)
		}
		a.Report = outputPath(cfg.Output.ReportFile)
		if err := os.WriteFile(a.Report, data, 0644); err != nil {
			return a, fmt.Errorf("failed to write report: %w", err)
		}
	}

	if o.Result == nil || o.Result.Output() == nil {
		return a, nil
	}
	emitted := o.Result.Output()

	if cfg.Output.MarpFile != "" {
		a.Marp = outputPath(cfg.Output.MarpFile)
		if err := os.WriteFile(a.Marp, []byte(emitted.Markdown), 0644); err != nil {
			return a, fmt.Errorf("failed to write marp deck: %w", err)
		}
	}
	if cfg.Output.HTMLFile != "" {
		a.HTML = outputPath(cfg.Output.HTMLFile)
		if err := os.WriteFile(a.HTML, []byte(emitted.HTML), 0644); err != nil {
			return a, fmt.Errorf("failed to write html deck: %w", err)
		}
	}
	return a, nil
}

// recordHistory stores the run summary. Failures are logged, never fatal.
func recordHistory(ctx context.Context, report *pipeline.Report) {
	if !cfg.History.Enabled || report == nil {
		return
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logger.Warn("history unavailable", zap.Error(err))
		return
	}
	defer store.Close()

	if err := store.Record(ctx, history.FromReport(report, cfg.Input.Dir)); err != nil {
		logger.Warn("failed to record run", zap.String("run_id", report.RunID), zap.Error(err))
		return
	}
	if _, err := store.Prune(ctx, cfg.History.Keep); err != nil {
		logger.Warn("failed to prune history", zap.Error(err))
	}
}

// stagePrinter prints one line per stage transition.
func stagePrinter(styles ui.Styles) func(types.Status) {
	var last types.Stage
	return func(s types.Status) {
		if s.CurrentStage == last || s.Done || s.Failed {
			return
		}
		last = s.CurrentStage
		fmt.Fprintf(os.Stderr, "%s %s\n",
			styles.Muted.Render(fmt.Sprintf("[%3d%%]", s.Progress)),
			s.CurrentStage)
	}
}

// printSummary prints the outcome of a run.
func printSummary(styles ui.Styles, o outcome, a artifacts) {
	r := o.Report
	if r == nil {
		printLoadError(styles, o.Err)
		return
	}

	if r.Completed {
		fmt.Println(styles.Success.Render("✓ " + r.Title))
	} else {
		fmt.Println(styles.Error.Render("✗ run failed"))
	}
	fmt.Printf("  run %s  ·  %d slides  ·  ~%d min  ·  quality %s\n",
		r.RunID, r.SlideCount, r.EstimatedMinutes, styles.Score(r.QualityScore))
	if !r.Completed {
		for _, stage := range types.AllStages() {
			fmt.Println("  " + styles.StageLine(stage, r.Stages[stage.String()]))
		}
	}
	if o.Err != nil {
		fmt.Println(styles.Error.Render("  " + o.Err.Error()))
	}
	if len(r.PatternsUsed) > 0 {
		fmt.Println(styles.Muted.Render("  patterns: " + strings.Join(r.PatternsUsed, ", ")))
	}

	for _, e := range r.Errors {
		fmt.Println(styles.Error.Render(fmt.Sprintf("  error [%s] %s: %s", e.Code, e.Stage, e.Message)))
	}
	for _, w := range r.Warnings {
		fmt.Println(styles.Warning.Render(fmt.Sprintf("  warn  [%s] %s: %s", w.Code, w.Stage, w.Message)))
	}
	for _, rec := range r.Recommendations {
		fmt.Println(styles.Info.Render("  → " + rec))
	}

	for _, p := range []string{a.Marp, a.HTML, a.Report} {
		if p != "" {
			fmt.Println(styles.Muted.Render("  wrote " + p))
		}
	}
}

func printLoadError(styles ui.Styles, err error) {
	if err == nil {
		return
	}
	var verr *loader.ValidationError
	if errors.As(err, &verr) {
		fmt.Println(styles.Error.Render("✗ input validation failed"))
		printIssues(styles, verr.Result)
		return
	}
	fmt.Println(styles.Error.Render("✗ " + err.Error()))
}

func printIssues(styles ui.Styles, res loader.ValidationResult) {
	for _, e := range res.Errors {
		fmt.Println(styles.Error.Render("  error " + e.String()))
	}
	for _, w := range res.Warnings {
		fmt.Println(styles.Warning.Render("  warn  " + w.String()))
	}
}
