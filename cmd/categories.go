package cmd

import (
	"fmt"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/model"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories a plan can cover",
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(_ *cobra.Command, _ []string) error {
	cats := model.Catalog()
	rows := make([][]string, 0, len(cats))
	for i, c := range cats {
		rows = append(rows, []string{c.Name, fmt.Sprintf("%d", i+1)})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Categories",
		Headers: []string{"Category", "#"},
		Rows:    rows,
	}))
	fmt.Println(cli.RenderMuted("  All are requested by default. Narrow with --only or --exclude."))
	return nil
}
