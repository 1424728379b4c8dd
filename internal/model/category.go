// Package model defines domain types for cbudget inputs, allocations and failures.
package model

// Category is one expense category a plan can allocate money to.
type Category struct {
	Name  string
	Label string
}

var catalog = []Category{
	{Name: "Housing", Label: "Housing"},
	{Name: "Utilities", Label: "Utilities"},
	{Name: "Food", Label: "Food"},
	{Name: "Transportation", Label: "Transportation"},
	{Name: "Health Insurance", Label: "Health Insurance"},
	{Name: "Cell Phone", Label: "Cell Phone"},
	{Name: "Fitness", Label: "Fitness"},
	{Name: "Entertainment", Label: "Entertainment"},
	{Name: "Miscellaneous", Label: "Miscellaneous"},
	{Name: "Savings", Label: "Savings"},
}

// Catalog returns the fixed category list in display order.
func Catalog() []Category {
	out := make([]Category, len(catalog))
	copy(out, catalog)
	return out
}

// LookupCategory finds a catalog entry by name.
func LookupCategory(name string) (Category, bool) {
	for _, c := range catalog {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

func catalogIndex(name string) int {
	for i, c := range catalog {
		if c.Name == name {
			return i
		}
	}
	return -1
}
