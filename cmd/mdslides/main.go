// Command mdslides turns five staged markdown documents into a slide deck.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mdslides/internal/config"
	"mdslides/internal/logging"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	workspace   string
	catalogPath string

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mdslides",
	Short: "Build a slide deck from five staged markdown documents",
	Long: `mdslides reads five staged documents from the input directory:

  01_*.md  idea analysis
  02_*.md  draft structure
  03_*.md  pattern selection
  04_*.md  slide content
  05_*.md  output notes

and turns them into a Marp markdown deck, a standalone HTML slideshow and a
JSON processing report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = loadConfig()
		if err != nil {
			return err
		}
		if err := logging.Initialize(cfg.LogsDir(), cfg.Logging); err != nil {
			logger.Warn("category logging disabled", zap.Error(err))
		}
		logging.Boot("mdslides %s starting: %s", cfg.Version, cmd.CommandPath())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// loadConfig reads the config file, resolving it against the workspace, and
// applies command-line overrides.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = filepath.Join(".mdslides", "config.yaml")
		if workspace != "" {
			path = filepath.Join(workspace, path)
		}
	}

	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if workspace != "" {
		c.Workspace = workspace
	}
	if verbose {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: <workspace>/.mdslides/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Pattern catalog YAML (default: built-in)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
