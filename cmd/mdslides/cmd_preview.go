package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var previewWidth int

// previewCmd renders a Marp deck in the terminal
var previewCmd = &cobra.Command{
	Use:   "preview [marp-file]",
	Short: "Render the generated deck in the terminal",
	Long: `Renders a Marp markdown deck with glamour. Without an argument the deck in the
output directory is shown; when it does not exist yet the pipeline runs in
memory and nothing is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		markdown, err := previewSource(args)
		if err != nil {
			return err
		}

		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(previewWidth),
		)
		if err != nil {
			return fmt.Errorf("failed to create renderer: %w", err)
		}
		out, err := renderer.Render(stripFrontMatter(markdown))
		if err != nil {
			return fmt.Errorf("failed to render deck: %w", err)
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	previewCmd.Flags().IntVar(&previewWidth, "width", 100, "Word wrap width")
}

func previewSource(args []string) (string, error) {
	path := outputPath(cfg.Output.MarpFile)
	if len(args) == 1 {
		path = args[0]
	}

	data, err := os.ReadFile(path)
	if err == nil {
		return string(data), nil
	}
	if len(args) == 1 || !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read deck: %w", err)
	}

	cat, err := loadCatalog()
	if err != nil {
		return "", err
	}
	o := execute(context.Background(), newOrchestrator(cat, nil))
	if o.Err != nil {
		return "", fmt.Errorf("failed to build deck: %w", o.Err)
	}
	return o.Result.Output().Markdown, nil
}

// stripFrontMatter drops the leading YAML block glamour would print verbatim.
func stripFrontMatter(md string) string {
	if !strings.HasPrefix(md, "---\n") {
		return md
	}
	if _, body, ok := strings.Cut(md[len("---\n"):], "\n---\n"); ok {
		return body
	}
	return md
}
