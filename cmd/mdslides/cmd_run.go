package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mdslides/cmd/mdslides/ui"
	"mdslides/internal/catalog"
)

var (
	runTUI       bool
	runInputDir  string
	runOutputDir string
	runNoHistory bool
	runTimeout   time.Duration
)

// runCmd runs the full pipeline once
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the deck from the stage documents",
	Long: `Runs the five pipeline stages over the input directory:
  1. Idea analysis: principles, frameworks and key messages
  2. Draft structure: sections, flow and completeness
  3. Pattern selection: classify sections and map them to slide patterns
  4. Slide generation: segment sections into slides with layouts and timing
  5. Emission: Marp markdown, standalone HTML and a JSON report`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "Show a live progress view")
	runCmd.Flags().StringVarP(&runInputDir, "input", "i", "", "Input directory (overrides config)")
	runCmd.Flags().StringVarP(&runOutputDir, "output", "o", "", "Output directory (overrides config)")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "Do not record this run in the history store")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 2*time.Minute, "Abort the run after this long")
}

func applyRunFlags() {
	if runInputDir != "" {
		cfg.Input.Dir = runInputDir
		cfg.Input.Files = nil
	}
	if runOutputDir != "" {
		cfg.Output.Dir = runOutputDir
	}
	if runNoHistory {
		cfg.History.Enabled = false
	}
}

// signalContext is cancelled on SIGINT/SIGTERM or after timeout.
func signalContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	return tctx, func() {
		cancel()
		stop()
	}
}

func runPipeline(cmd *cobra.Command, args []string) error {
	applyRunFlags()

	ctx, cancel := signalContext(runTimeout)
	defer cancel()

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	styles := ui.DefaultStyles()

	logger.Info("starting run",
		zap.String("input", cfg.Input.Dir),
		zap.String("output", cfg.Output.Dir),
		zap.Bool("tui", runTUI))

	var o outcome
	if runTUI {
		o, err = runWithProgressView(ctx, cancel, cat)
		if err != nil {
			return err
		}
	} else {
		orch := newOrchestrator(cat, stagePrinter(styles))
		o = execute(ctx, orch)
	}

	a, werr := writeArtifacts(o)
	recordHistory(context.WithoutCancel(ctx), o.Report)
	printSummary(styles, o, a)

	if o.Err != nil {
		return fmt.Errorf("run failed: %w", o.Err)
	}
	return werr
}

// runWithProgressView runs the pipeline in the background while a bubbletea
// program polls its status.
func runWithProgressView(ctx context.Context, cancel context.CancelFunc, cat *catalog.Catalog) (outcome, error) {
	orch := newOrchestrator(cat, nil)
	model := ui.NewProgressModel("mdslides "+cfg.Input.Dir, orch.Status, 100*time.Millisecond, cancel)
	prog := tea.NewProgram(model)

	done := make(chan outcome, 1)
	go func() {
		o := execute(ctx, orch)
		done <- o
		prog.Send(ui.RunFinishedMsg{Err: o.Err})
	}()

	if _, err := prog.Run(); err != nil {
		cancel()
		<-done
		return outcome{}, fmt.Errorf("progress view failed: %w", err)
	}
	return <-done, nil
}
