package model

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxCityLen is the longest city name, in characters, sent to the backend.
const MaxCityLen = 120

var (
	// ErrInvalidBudget means the budget is not a finite positive number.
	ErrInvalidBudget = errors.New("budget must be a positive number")
	// ErrCityTooLong means the city exceeds MaxCityLen characters.
	ErrCityTooLong = errors.New("city name is too long")
)

var inputRules = validator.New(validator.WithRequiredStructEnabled())

// BudgetInput is what the user typed before triggering a plan request.
type BudgetInput struct {
	City        string  `json:"city" validate:"max=120"`
	TotalBudget float64 `json:"budget" validate:"gt=0"`
}

// ParseBudgetInput converts raw form text into a BudgetInput.
// Text that is not a number yields a NaN budget, which never submits.
func ParseBudgetInput(city, rawBudget string) BudgetInput {
	raw := strings.TrimSpace(rawBudget)
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		v = math.NaN()
	}
	return BudgetInput{City: strings.TrimSpace(city), TotalBudget: v}
}

// CanSubmit reports whether the budget is a finite positive number.
func CanSubmit(in BudgetInput) bool {
	b := in.TotalBudget
	return !math.IsNaN(b) && !math.IsInf(b, 0) && b > 0
}

// CheckInput applies the field rules of BudgetInput.
// It returns ErrInvalidBudget, ErrCityTooLong or nil.
func CheckInput(in BudgetInput) error {
	if !CanSubmit(in) {
		return ErrInvalidBudget
	}
	if err := inputRules.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "City" {
			return ErrCityTooLong
		}
		return ErrInvalidBudget
	}
	return nil
}

// DisplayCity returns the city or a generic placeholder when empty.
func (in BudgetInput) DisplayCity() string {
	if in.City == "" {
		return "the selected city"
	}
	return in.City
}
