package monthly_finance

import "time"

// Origin tells real figures apart from estimates produced by backfill or projection.
type Origin string

const (
	OriginAuthoritative Origin = "authoritative"
	OriginSynthesized   Origin = "synthesized"
)

// MonthlyFinance is the financial snapshot of one user for one calendar month.
// There is at most one record per (UserId, Year, Month).
type MonthlyFinance struct {
	Id     string `json:"id"`
	UserId string `json:"userId"`
	Year   int    `json:"year"`
	// Month is 1-12.
	Month int `json:"month"`
	// DisposableIncome is stored as written and never recomputed from income and expenses.
	DisposableIncome  float64           `json:"disposableIncome"`
	TotalIncome       float64           `json:"totalIncome"`
	TotalExpenses     float64           `json:"totalExpenses"`
	Savings           float64           `json:"savings"`
	Investments       float64           `json:"investments"`
	CreatedAt         time.Time         `json:"createdAt"`
	Categories        Categories        `json:"categories"`
	InvestmentDetails InvestmentDetails `json:"investmentDetails"`
	Origin            Origin            `json:"origin"`
}

func (m MonthlyFinance) IsSynthesized() bool {
	return m.Origin == OriginSynthesized
}

// Categories is an informational breakdown, not validated against the totals.
type Categories struct {
	Salary        float64 `json:"salary"`
	Bonus         float64 `json:"bonus"`
	Rent          float64 `json:"rent"`
	Food          float64 `json:"food"`
	Transport     float64 `json:"transport"`
	Utilities     float64 `json:"utilities"`
	Entertainment float64 `json:"entertainment"`
	Others        float64 `json:"others"`
}

type InvestmentDetails struct {
	Stocks   float64 `json:"stocks"`
	Funds    float64 `json:"funds"`
	Deposits float64 `json:"deposits"`
}

// Partial is an upsert request. Nil fields keep the value of the existing record, or zero for a new one.
type Partial struct {
	UserId            string
	Year              int
	Month             int
	DisposableIncome  *float64
	TotalIncome       *float64
	TotalExpenses     *float64
	Savings           *float64
	Investments       *float64
	Categories        *Categories
	InvestmentDetails *InvestmentDetails
	// Origin defaults to OriginAuthoritative.
	Origin Origin
	// CreatedAt is only used when the record does not exist yet; otherwise the existing timestamp is kept.
	CreatedAt *time.Time
}

// Growth compares the disposable income of the current month with the previous one.
// GrowthRate is a percentage (5 means +5%), 0 when the previous month is 0.
type Growth struct {
	CurrentAmount   float64
	GrowthRate      float64
	LastMonthAmount float64
}
