package mockapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cbudget/internal/model"
)

// categoryWeights are the relative shares used to split a budget.
var categoryWeights = map[string]int64{
	"Housing":          35,
	"Utilities":        8,
	"Food":             12,
	"Transportation":   10,
	"Health Insurance": 8,
	"Cell Phone":       3,
	"Fitness":          3,
	"Entertainment":    5,
	"Miscellaneous":    6,
	"Savings":          10,
}

type generateRequest struct {
	City               string   `json:"city" validate:"max=120"`
	Budget             float64  `json:"budget" validate:"gt=0"`
	SelectedCategories []string `json:"selectedCategories" validate:"dive,required"`
}

type generateResponse struct {
	BudgetPlan      string                   `json:"budgetPlan"`
	BudgetBreakdown []model.RawBreakdownItem `json:"budgetBreakdown"`
}

type handler struct {
	latency time.Duration
	log     zerolog.Logger
}

func (h *handler) generate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	for _, name := range req.SelectedCategories {
		if _, ok := model.LookupCategory(name); !ok {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown category %q", name))
		}
	}

	if h.latency > 0 {
		select {
		case <-time.After(h.latency):
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		}
	}

	subject, _ := c.Get(contextSubjectKey).(string)
	h.log.Debug().Str("subject", subject).Str("city", req.City).Msg("generating plan")

	items := Allocate(decimal.NewFromFloat(req.Budget), req.SelectedCategories)
	return c.JSON(http.StatusOK, generateResponse{
		BudgetPlan:      planText(req.City, req.Budget, items),
		BudgetBreakdown: items,
	})
}

// Allocate splits budget across categories by weight, in the order given.
// Amounts are rounded to cents; the last category absorbs the remainder so
// the breakdown sums to the budget exactly.
func Allocate(budget decimal.Decimal, categories []string) []model.RawBreakdownItem {
	var totalWeight int64
	for _, c := range categories {
		totalWeight += categoryWeights[c]
	}
	if totalWeight == 0 {
		return []model.RawBreakdownItem{}
	}

	items := make([]model.RawBreakdownItem, len(categories))
	allocated := decimal.Zero
	for i, c := range categories {
		var amt decimal.Decimal
		if i == len(categories)-1 {
			amt = budget.Sub(allocated)
		} else {
			amt = budget.Mul(decimal.NewFromInt(categoryWeights[c])).
				Div(decimal.NewFromInt(totalWeight)).
				Round(2)
		}
		allocated = allocated.Add(amt)
		items[i] = model.RawBreakdownItem{Category: c, Amount: amt.InexactFloat64()}
	}
	return items
}

func planText(city string, budget float64, items []model.RawBreakdownItem) string {
	if city == "" {
		city = "your city"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Monthly plan for %s with a budget of $%.2f.\n\n", city, budget)
	for _, it := range items {
		fmt.Fprintf(&b, "- %s: $%.2f\n", it.Category, it.Amount)
	}
	b.WriteString("\nReview housing first; it drives most of the plan.")
	return b.String()
}
