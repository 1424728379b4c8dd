package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/store"

	"github.com/spf13/cobra"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously generated plans",
	RunE:  runHistory,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved plan (an id prefix is enough)",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a saved plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRm,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of plans to list")
	historyCmd.AddCommand(historyRmCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
}

func openHistoryForRead() (*store.History, error) {
	h, err := store.Open(config.HistoryPath())
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return h, nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	h, err := openHistoryForRead()
	if err != nil {
		return err
	}
	defer h.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	items, err := h.ListPlans(ctx, flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("  No saved plans yet. Run `cbudget generate` to create one.")
		return nil
	}
	total, err := h.PlanCount(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(items))
	for _, s := range items {
		rows = append(rows, []string{
			shortID(s.ID),
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
			s.City,
			cli.FormatMoney(s.TotalBudget),
			fmt.Sprintf("%d", s.Items),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("History  %d of %d plans", len(items), total),
		Headers: []string{"ID", "Created", "City", "Budget", "Items"},
		Rows:    rows,
	}))
	fmt.Println(cli.RenderMuted("  cbudget show <id> to open a plan"))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	h, err := openHistoryForRead()
	if err != nil {
		return err
	}
	defer h.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rec, err := h.GetPlan(ctx, args[0])
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("no saved plan matches %q", args[0])
	case errors.Is(err, store.ErrAmbiguous):
		return fmt.Errorf("%q matches more than one plan, use a longer id", args[0])
	case err != nil:
		return err
	}

	fmt.Println(cli.RenderMuted(fmt.Sprintf("  %s  saved %s", rec.ID, rec.CreatedAt.Local().Format("2006-01-02 15:04"))))
	fmt.Print(cli.RenderPlan(rec.Plan, terminalWidth()))
	return nil
}

func runHistoryRm(cmd *cobra.Command, args []string) error {
	h, err := openHistoryForRead()
	if err != nil {
		return err
	}
	defer h.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rec, err := h.GetPlan(ctx, args[0])
	if err != nil {
		return fmt.Errorf("finding plan %q: %w", args[0], err)
	}
	if err := h.DeletePlan(ctx, rec.ID); err != nil {
		return err
	}
	fmt.Printf("  Deleted %s\n", shortID(rec.ID))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
