package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mdslides/cmd/mdslides/ui"
)

// errInvalidInput is returned when validation finds blocking issues.
var errInvalidInput = errors.New("input validation failed")

var validateStrict bool

// validateCmd checks the stage documents without running the pipeline
var validateCmd = &cobra.Command{
	Use:   "validate [input-dir]",
	Short: "Check the stage documents without building a deck",
	Long: `Checks that exactly five stage files (01_ to 05_) exist, that none is empty,
that every file is valid UTF-8 with balanced code fences, and warns about
very short documents (errors with --strict).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			cfg.Input.Dir = args[0]
			cfg.Input.Files = nil
		}
		if validateStrict {
			cfg.Input.Strict = true
		}

		res, files, err := newSource().Check(context.Background())
		if err != nil {
			return err
		}

		styles := ui.DefaultStyles()
		table := ui.NewTable("Stage documents", "Stage", "File", "Bytes")
		for _, f := range files {
			name, size := "(missing)", "-"
			if !f.Missing {
				name = f.Path
				size = fmt.Sprintf("%d", len(f.Content))
			}
			table.AddRow(f.Stage.String(), name, size)
		}
		fmt.Print(table.View(styles))

		printIssues(styles, res)
		if !res.Valid {
			return fmt.Errorf("%w: %d errors", errInvalidInput, len(res.Errors))
		}
		fmt.Println(styles.Success.Render(fmt.Sprintf("✓ inputs valid (%d warnings)", len(res.Warnings))))
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat short documents as errors")
}
