package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/state"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagCity    string
	flagBudget  string
	flagOnly    []string
	flagExclude []string
	flagJSON    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a budget plan and print it",
	Example: `  cbudget generate --city Austin --budget 3000
  cbudget generate --budget 5000 --only Housing,Food,Savings --json
  cbudget generate --budget 2500 --exclude "Cell Phone"`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&flagCity, "city", "", "City name (defaults to config)")
	generateCmd.Flags().StringVar(&flagBudget, "budget", "", "Total budget, a number above zero (defaults to config)")
	generateCmd.Flags().StringSliceVar(&flagOnly, "only", nil, "Request only these categories")
	generateCmd.Flags().StringSliceVar(&flagExclude, "exclude", nil, "Leave these categories out")
	generateCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := initLogger(cfg)

	city := flagCity
	if !cmd.Flags().Changed("city") {
		city = cfg.Defaults.City
	}
	rawBudget := flagBudget
	if !cmd.Flags().Changed("budget") && cfg.Defaults.Budget > 0 {
		rawBudget = fmt.Sprintf("%g", cfg.Defaults.Budget)
	}
	in := model.ParseBudgetInput(city, rawBudget)

	sel, err := parseSelection(flagOnly, flagExclude)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	done := startSpinner(os.Stderr, flagQuiet || flagJSON)
	view, genErr := a.planner.Generate(ctx, in, sel)
	done()

	return printOutcome(os.Stdout, os.Stderr, view, genErr, flagJSON, terminalWidth())
}

// printOutcome writes the finished view. A failure is shown here once and
// returned as errReported.
func printOutcome(out, errOut io.Writer, view state.View, genErr error, asJSON bool, width int) error {
	if asJSON {
		if err := writeJSON(out, view); err != nil {
			return err
		}
		if genErr != nil || view.Phase != state.Success {
			return errReported
		}
		return nil
	}

	if view.Phase != state.Success || view.Plan == nil {
		msg := view.Message
		if msg == "" {
			msg = model.UserMessage(genErr)
		}
		fmt.Fprintln(errOut, cli.RenderError(msg))
		return errReported
	}

	fmt.Fprint(out, cli.RenderPlan(*view.Plan, width))
	return nil
}

// startSpinner shows an indeterminate progress indicator on w until the
// returned func is called.
func startSpinner(w io.Writer, quiet bool) func() {
	if quiet {
		return func() {}
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription("[cyan]Generating budget plan...[reset]"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	stop := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	return func() {
		close(stop)
		<-finished
		_ = bar.Finish()
	}
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 100
	}
	return w
}

type jsonResult struct {
	Status       string              `json:"status"`
	Message      string              `json:"message,omitempty"`
	City         string              `json:"city,omitempty"`
	TotalBudget  float64             `json:"totalBudget,omitempty"`
	Basis        string              `json:"percentBasis,omitempty"`
	SumOfAmounts float64             `json:"sumOfAmounts,omitempty"`
	Unallocated  float64             `json:"unallocated,omitempty"`
	Selected     []string            `json:"selectedCategories,omitempty"`
	PlanText     string              `json:"planText,omitempty"`
	Items        []model.DerivedItem `json:"items,omitempty"`
}

func writeJSON(w io.Writer, v state.View) error {
	out := jsonResult{Status: v.Phase.String(), Message: v.Message}
	if p := v.Plan; p != nil {
		alloc := p.Allocation
		out.City = p.City
		out.TotalBudget = alloc.TotalBudget
		out.Basis = alloc.Basis.String()
		out.SumOfAmounts = alloc.SumOfAmounts
		out.Unallocated = alloc.Unallocated()
		out.Selected = p.Selected
		out.PlanText = p.Text
		out.Items = alloc.Items
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
