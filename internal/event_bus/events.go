package event_bus

const (
	MonthlyFinanceSynthesized EventType = "monthly_finance.synthesized"
	BudgetSettingsSaved       EventType = "budget_settings.saved"
)

// MonthlyFinanceSynthesizedPayload describes a record invented by backfill or projection.
type MonthlyFinanceSynthesizedPayload struct {
	RecordId         string
	UserId           string
	Year             int
	Month            int
	DisposableIncome float64
	// Basis is "trailing_average" for last-month backfill and "growth_projection" for the current month.
	Basis string
}

type BudgetSettingsSavedPayload struct {
	UserId        string
	TotalBudget   float64
	CategoryCount int
	PercentageSum float64
}
