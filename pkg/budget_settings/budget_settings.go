package budget_settings

import (
	"time"

	"github.com/finpal/finpal/pkg/allocation"
	"github.com/shopspring/decimal"
)

// Settings is the budget split of one user. Category amounts are always derived from TotalBudget.
type Settings struct {
	TotalBudget     float64
	Categories      []allocation.Category
	MonthlyExpenses MonthlyExpenses
	UpdatedAt       time.Time
}

// MonthlyExpenses is the fixed sub-allocation of the total budget set on calibration.
type MonthlyExpenses struct {
	Housing        float64 `json:"housing"`
	Utilities      float64 `json:"utilities"`
	Transportation float64 `json:"transportation"`
	Food           float64 `json:"food"`
	Entertainment  float64 `json:"entertainment"`
	Shopping       float64 `json:"shopping"`
	Savings        float64 `json:"savings"`
}

func DefaultSettings() Settings {
	return Settings{
		TotalBudget: 0,
		Categories:  allocation.DefaultCategories(0),
	}
}

// SubAllocate splits totalBudget into the fixed expense shares, rounded to cents.
func SubAllocate(totalBudget float64) MonthlyExpenses {
	total := decimal.NewFromFloat(totalBudget)
	share := func(percent int64) float64 {
		return total.Mul(decimal.New(percent, -2)).Round(2).InexactFloat64()
	}
	return MonthlyExpenses{
		Housing:        share(30),
		Utilities:      share(5),
		Transportation: share(10),
		Food:           share(20),
		Entertainment:  share(15),
		Shopping:       share(10),
		Savings:        share(10),
	}
}

type storedCategory struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

func toStoredCategories(categories []allocation.Category) []storedCategory {
	result := make([]storedCategory, 0, len(categories))
	for _, c := range categories {
		result = append(result, storedCategory{Name: c.Name, Percentage: c.Percentage, Color: c.Color})
	}
	return result
}

func fromStoredCategories(stored []storedCategory, totalBudget float64) []allocation.Category {
	result := make([]allocation.Category, 0, len(stored))
	for _, c := range stored {
		result = append(result, allocation.Category{Name: c.Name, Percentage: c.Percentage, Color: c.Color})
	}
	return allocation.WithAmounts(result, totalBudget)
}
