package allocation

import "math"

// Category is a named share of a budget. Amount is derived from the budget total and is never
// read back from storage.
type Category struct {
	Name       string
	Percentage float64
	Color      string
	Amount     float64
}

const NewCategoryName = "New category"

// DefaultCategories is the split offered to users who have not calibrated their budget yet.
func DefaultCategories(totalBudget float64) []Category {
	return WithAmounts([]Category{
		{Name: "Necessities", Percentage: 50, Color: "rgb(255, 99, 132)"},
		{Name: "Entertainment", Percentage: 20, Color: "rgb(54, 162, 235)"},
		{Name: "Savings", Percentage: 20, Color: "rgb(255, 206, 86)"},
		{Name: "Other", Percentage: 10, Color: "rgb(75, 192, 192)"},
	}, totalBudget)
}

// WithAmounts returns a copy of categories with every Amount recomputed from totalBudget.
func WithAmounts(categories []Category, totalBudget float64) []Category {
	result := make([]Category, len(categories))
	for i, c := range categories {
		c.Amount = AmountOf(totalBudget, c.Percentage)
		result[i] = c
	}
	return result
}

// AmountOf rounds half up, including for negative shares (-2.5 becomes -2).
func AmountOf(totalBudget, percentage float64) float64 {
	return roundHalfUp(totalBudget * percentage / 100)
}

// roundHalfUp rounds ties toward positive infinity, judged on the exact fractional part.
func roundHalfUp(x float64) float64 {
	r := math.Floor(x)
	if x-r >= 0.5 {
		r++
	}
	return r
}

func Sum(categories []Category) float64 {
	sum := 0.0
	for _, c := range categories {
		sum += c.Percentage
	}
	return sum
}
