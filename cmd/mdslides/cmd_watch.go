package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mdslides/cmd/mdslides/ui"
	"mdslides/internal/pipeline"
	"mdslides/internal/watch"
)

var watchDebounce time.Duration

// watchCmd rebuilds the deck whenever a stage document changes
var watchCmd = &cobra.Command{
	Use:   "watch [input-dir]",
	Short: "Rebuild the deck whenever a stage document changes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			cfg.Input.Dir = args[0]
			cfg.Input.Files = nil
		}

		ctx, cancel := signalContext(0)
		defer cancel()

		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		styles := ui.DefaultStyles()
		orch := newOrchestrator(cat, nil)

		rebuild := func(ctx context.Context, changed []string) {
			if len(changed) > 0 {
				names := make([]string, len(changed))
				for i, p := range changed {
					names[i] = filepath.Base(p)
				}
				fmt.Println(styles.Muted.Render(fmt.Sprintf("changed: %v", names)))
			}
			rebuildOnce(ctx, orch, styles)
		}

		rebuild(ctx, nil)

		w, err := watch.New(cfg.Input.Dir, rebuild, watch.WithDebounce(watchDebounce))
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			w.Stop()
			return err
		}
		fmt.Println(styles.Info.Render(fmt.Sprintf("watching %s (ctrl+c to stop)", cfg.Input.Dir)))

		<-ctx.Done()
		w.Stop()

		stats := w.Stats()
		logger.Info("watch stopped", zap.Int("rebuilds", stats.Triggers), zap.Int("errors", stats.Errors))
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before rebuilding")
}

func rebuildOnce(ctx context.Context, orch *pipeline.Orchestrator, styles ui.Styles) {
	o := execute(ctx, orch)
	a, err := writeArtifacts(o)
	if err != nil {
		logger.Warn("failed to write artifacts", zap.Error(err))
	}
	recordHistory(context.WithoutCancel(ctx), o.Report)
	printSummary(styles, o, a)
}
