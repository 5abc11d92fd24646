package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mdslides/cmd/mdslides/ui"
)

var catalogCategory string

// catalogCmd lists the slide patterns available to the selector
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the slide pattern catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}

		styles := ui.DefaultStyles()
		table := ui.NewTable(fmt.Sprintf("Pattern catalog v%d", cat.Version()),
			"ID", "Category", "Effectiveness", "Next", "Name")
		for _, p := range cat.Patterns() {
			if catalogCategory != "" && string(p.Category) != catalogCategory {
				continue
			}
			table.AddRow(
				p.ID,
				string(p.Category),
				fmt.Sprintf("%.2f", p.Effectiveness),
				strings.Join(cat.CompatibleNext(p.ID), ", "),
				p.Name,
			)
		}
		if len(table.Rows) == 0 {
			fmt.Println(styles.Muted.Render("no patterns match"))
			return nil
		}
		fmt.Print(table.View(styles))
		return nil
	},
}

func init() {
	catalogCmd.Flags().StringVar(&catalogCategory, "category", "", "Only list patterns of this content type")
}
