package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cbudget/internal/model"
)

func TestValidate_Accepts(t *testing.T) {
	body := []byte(`{
		"budgetPlan": "Rent a one-bedroom near downtown.",
		"budgetBreakdown": [
			{"category": "Housing", "amount": 1500},
			{"category": "Food", "amount": 500}
		]
	}`)

	resp, err := Validate(body)
	require.NoError(t, err)
	assert.Equal(t, "Rent a one-bedroom near downtown.", resp.PlanText)
	assert.Equal(t, []model.RawBreakdownItem{
		{Category: "Housing", Amount: 1500},
		{Category: "Food", Amount: 500},
	}, resp.Breakdown.Items())
}

func TestValidate_PlanOptional(t *testing.T) {
	resp, err := Validate([]byte(`{"budgetBreakdown":[{"category":"Savings","amount":0}]}`))
	require.NoError(t, err)
	assert.Empty(t, resp.PlanText)
	assert.Equal(t, 1, resp.Breakdown.Len())
}

func TestValidate_RejectsWholeBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"not json", `<html>oops</html>`},
		{"array body", `[{"category":"Food","amount":1}]`},
		{"missing breakdown", `{"budgetPlan":"x"}`},
		{"null breakdown", `{"budgetBreakdown":null}`},
		{"breakdown is object", `{"budgetBreakdown":{"category":"Food","amount":1}}`},
		{"breakdown is string", `{"budgetBreakdown":"Food"}`},
		{"empty breakdown", `{"budgetBreakdown":[]}`},
		{"plan not string", `{"budgetPlan":42,"budgetBreakdown":[{"category":"Food","amount":1}]}`},
		{"one bad amount", `{"budgetBreakdown":[{"category":"Food","amount":1},{"category":"Housing","amount":"lots"}]}`},
		{"negative amount", `{"budgetBreakdown":[{"category":"Food","amount":-1}]}`},
		{"missing amount", `{"budgetBreakdown":[{"category":"Food"}]}`},
		{"null amount", `{"budgetBreakdown":[{"category":"Food","amount":null}]}`},
		{"empty category", `{"budgetBreakdown":[{"category":"  ","amount":1}]}`},
		{"numeric category", `{"budgetBreakdown":[{"category":7,"amount":1}]}`},
		{"missing category", `{"budgetBreakdown":[{"amount":1}]}`},
		{"element not object", `{"budgetBreakdown":[1,2]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate([]byte(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidResponse)
			assert.Equal(t, model.KindMalformed, model.KindOf(err))
			assert.Equal(t, "Invalid response from backend", model.UserMessage(err))
		})
	}
}
