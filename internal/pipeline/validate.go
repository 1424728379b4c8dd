// Package pipeline validates backend breakdowns and derives per-category shares.
package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/theirongolddev/cbudget/internal/model"
)

// ErrInvalidResponse is returned for any body that does not match the
// breakdown contract. Nothing from such a body is used.
var ErrInvalidResponse = errors.New(model.MsgInvalidResponse)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Response is a validated backend reply.
type Response struct {
	PlanText  string
	Breakdown model.ValidatedBreakdown
}

type rawResponse struct {
	BudgetPlan      json.RawMessage `json:"budgetPlan"`
	BudgetBreakdown json.RawMessage `json:"budgetBreakdown"`
}

type rawItem struct {
	Category json.RawMessage `json:"category"`
	Amount   json.RawMessage `json:"amount"`
}

// Validate checks a raw response body and returns its breakdown.
// Any violation rejects the whole body with ErrInvalidResponse.
func Validate(body []byte) (Response, error) {
	var raw rawResponse
	if err := decodeObject(body, &raw); err != nil {
		return Response{}, malformed("decoding body: %v", err)
	}

	var plan string
	if len(raw.BudgetPlan) > 0 && !isNull(raw.BudgetPlan) {
		if err := json.Unmarshal(raw.BudgetPlan, &plan); err != nil {
			return Response{}, malformed("budgetPlan is not a string")
		}
	}

	if len(raw.BudgetBreakdown) == 0 || isNull(raw.BudgetBreakdown) {
		return Response{}, malformed("budgetBreakdown missing")
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw.BudgetBreakdown, &elems); err != nil {
		return Response{}, malformed("budgetBreakdown is not an array")
	}
	if len(elems) == 0 {
		return Response{}, malformed("budgetBreakdown is empty")
	}

	items := make([]model.RawBreakdownItem, 0, len(elems))
	for i, e := range elems {
		item, err := parseItem(e)
		if err != nil {
			return Response{}, malformed("budgetBreakdown[%d]: %v", i, err)
		}
		items = append(items, item)
	}

	return Response{
		PlanText:  plan,
		Breakdown: model.NewValidatedBreakdown(items),
	}, nil
}

func parseItem(e json.RawMessage) (model.RawBreakdownItem, error) {
	var ri rawItem
	if err := decodeObject(e, &ri); err != nil {
		return model.RawBreakdownItem{}, fmt.Errorf("not an object")
	}

	var item model.RawBreakdownItem
	if len(ri.Category) == 0 || json.Unmarshal(ri.Category, &item.Category) != nil {
		return item, fmt.Errorf("category is not a string")
	}
	item.Category = strings.TrimSpace(item.Category)

	if len(ri.Amount) == 0 || isNull(ri.Amount) {
		return item, fmt.Errorf("amount missing")
	}
	if err := json.Unmarshal(ri.Amount, &item.Amount); err != nil {
		return item, fmt.Errorf("amount is not a number")
	}
	if math.IsNaN(item.Amount) || math.IsInf(item.Amount, 0) {
		return item, fmt.Errorf("amount is not finite")
	}

	if err := validate.Struct(item); err != nil {
		return item, err
	}
	return item, nil
}

// decodeObject unmarshals data into v, requiring a JSON object.
func decodeObject(data []byte, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("expected a JSON object")
	}
	return json.Unmarshal(trimmed, v)
}

func isNull(m json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(m), []byte("null"))
}

func malformed(format string, args ...any) error {
	return model.Fail(model.KindMalformed,
		fmt.Errorf("%w: %s", ErrInvalidResponse, fmt.Sprintf(format, args...)))
}
