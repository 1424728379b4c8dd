package budgetapi

import "github.com/theirongolddev/cbudget/internal/model"

// GenerateRequest is the JSON body of POST /api/budget/generate.
type GenerateRequest struct {
	City               string   `json:"city"`
	Budget             float64  `json:"budget"`
	SelectedCategories []string `json:"selectedCategories"`
}

// NewGenerateRequest builds a request from user input and selection.
func NewGenerateRequest(in model.BudgetInput, sel model.Selection) GenerateRequest {
	return GenerateRequest{
		City:               in.City,
		Budget:             in.TotalBudget,
		SelectedCategories: sel.Names(),
	}
}
