package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mdslides/cmd/mdslides/ui"
	"mdslides/internal/history"
)

var (
	historyLimit int
	historyJSON  bool
)

// historyCmd groups the run-history subcommands
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded pipeline runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.List(context.Background(), historyLimit)
		if err != nil {
			return err
		}
		styles := ui.DefaultStyles()
		if len(runs) == 0 {
			fmt.Println(styles.Muted.Render("no runs recorded"))
			return nil
		}

		table := ui.NewTable("Runs", "ID", "Started", "Status", "Slides", "Min", "Quality", "Title")
		for _, r := range runs {
			status := "failed"
			if r.Completed {
				status = "ok"
			}
			table.AddRow(
				r.ID,
				r.StartedAt.Local().Format(time.DateTime),
				status,
				fmt.Sprintf("%d", r.SlideCount),
				fmt.Sprintf("%d", r.EstimatedMinutes),
				fmt.Sprintf("%d", r.QualityScore),
				r.Title,
			)
		}
		fmt.Print(table.View(styles))
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the report of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.Get(context.Background(), args[0])
		if err != nil {
			return err
		}

		if historyJSON {
			data, err := json.MarshalIndent(run, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal run: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		styles := ui.DefaultStyles()
		if run.Report == nil {
			fmt.Printf("%s  %s  %d slides  quality %d\n", run.ID, run.Title, run.SlideCount, run.QualityScore)
			return nil
		}
		printSummary(styles, outcome{Report: run.Report}, artifacts{})
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to list")
	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the stored record as JSON")
}
