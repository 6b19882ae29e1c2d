package monthly_finance

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/finpal/finpal/internal/rest"
	"github.com/finpal/finpal/pkg/user"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type DisposableIncomeDTO struct {
	Current float64 `json:"current"`
	Last    float64 `json:"last"`
	Growth  float64 `json:"growth"`
}

type MonthlyFinanceSummaryDTO struct {
	DisposableIncome DisposableIncomeDTO `json:"disposable_income"`
}

type IncomeDetailsDTO struct {
	Total      float64    `json:"total"`
	Categories Categories `json:"categories"`
}

type InvestmentDetailsDTO struct {
	Total      float64           `json:"total"`
	Categories InvestmentDetails `json:"categories"`
}

type FinanceDashboardDTO struct {
	Year              int                  `json:"year"`
	Month             int                  `json:"month"`
	Origin            Origin               `json:"origin"`
	BasicSalary       float64              `json:"basic_salary"`
	NecessaryExpenses float64              `json:"necessary_expenses"`
	DisposableIncome  DisposableIncomeDTO  `json:"disposable_income"`
	IncomeDetails     IncomeDetailsDTO     `json:"income_details"`
	ExpenseDetails    IncomeDetailsDTO     `json:"expense_details"`
	InvestmentDetails InvestmentDetailsDTO `json:"investment_details"`
	Savings           float64              `json:"savings"`
}

// MonthlyFinanceUpdateDTO is the body of an upsert. Omitted fields keep their stored value.
type MonthlyFinanceUpdateDTO struct {
	DisposableIncome  *float64           `json:"disposableIncome"`
	TotalIncome       *float64           `json:"totalIncome"`
	TotalExpenses     *float64           `json:"totalExpenses"`
	Savings           *float64           `json:"savings"`
	Investments       *float64           `json:"investments"`
	Categories        *Categories        `json:"categories"`
	InvestmentDetails *InvestmentDetails `json:"investmentDetails"`
}

type Handler struct {
	service  Service
	renderer HistoryRenderer
}

func NewHandler(service Service, renderer HistoryRenderer) *Handler {
	return &Handler{service: service, renderer: renderer}
}

// GetMonthlyFinance godoc
// @Summary Disposable income of the current and previous month
// @Description Missing months are estimated and stored on first access
// @Tags MonthlyFinance
// @Produce json
// @Success 200 {object} MonthlyFinanceSummaryDTO
// @Failure 403 {object} rest.ErrorResponse "User not found"
// @Router /api/v1/user/monthly-finance [get]
// @Security XUserId
func (handler *Handler) GetMonthlyFinance(w http.ResponseWriter, r *http.Request) {
	log.Debug("Getting monthly finance summary")
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	growth, err := handler.service.CalculateGrowthRate(r.Context(), userId)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJson(w, http.StatusOK, MonthlyFinanceSummaryDTO{DisposableIncome: toDisposableIncomeDTO(growth)})
}

// GetFinanceDashboard godoc
// @Summary Current month breakdown
// @Tags MonthlyFinance
// @Produce json
// @Success 200 {object} FinanceDashboardDTO
// @Failure 403 {object} rest.ErrorResponse "User not found"
// @Router /api/v1/user/finance-dashboard [get]
// @Security XUserId
func (handler *Handler) GetFinanceDashboard(w http.ResponseWriter, r *http.Request) {
	log.Debug("Getting finance dashboard")
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	current, err := handler.service.GetCurrentMonthData(r.Context(), userId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	growth, err := handler.service.CalculateGrowthRate(r.Context(), userId)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJson(w, http.StatusOK, FinanceDashboardDTO{
		Year:              current.Year,
		Month:             current.Month,
		Origin:            current.Origin,
		BasicSalary:       current.Categories.Salary,
		NecessaryExpenses: current.TotalExpenses,
		DisposableIncome:  toDisposableIncomeDTO(growth),
		IncomeDetails: IncomeDetailsDTO{
			Total:      current.TotalIncome,
			Categories: current.Categories,
		},
		ExpenseDetails: IncomeDetailsDTO{
			Total:      current.TotalExpenses,
			Categories: current.Categories,
		},
		InvestmentDetails: InvestmentDetailsDTO{
			Total:      current.Investments,
			Categories: current.InvestmentDetails,
		},
		Savings: current.Savings,
	})
}

// UpsertMonthlyFinance godoc
// @Summary Store the real figures of a month
// @Description Merges the given fields over the stored record and marks it authoritative
// @Tags MonthlyFinance
// @Accept json
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Param record body MonthlyFinanceUpdateDTO true "Fields to update"
// @Success 200 {object} MonthlyFinance
// @Failure 400 {object} rest.ErrorResponse "Bad Request"
// @Failure 403 {object} rest.ErrorResponse "User not found"
// @Router /api/v1/user/monthly-finance/{year}/{month} [put]
// @Security XUserId
func (handler *Handler) UpsertMonthlyFinance(w http.ResponseWriter, r *http.Request) {
	log.Debug("Upserting monthly finance")
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	vars := mux.Vars(r)
	year, err := strconv.Atoi(vars["year"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid year", "year must be a number")
		return
	}
	month, err := strconv.Atoi(vars["month"])
	if err != nil || month < 1 || month > 12 {
		rest.WriteError(w, http.StatusBadRequest, "Invalid month", "month must be a number between 1 and 12")
		return
	}

	var body MonthlyFinanceUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	record, err := handler.service.Upsert(r.Context(), Partial{
		UserId:            userId,
		Year:              year,
		Month:             month,
		DisposableIncome:  body.DisposableIncome,
		TotalIncome:       body.TotalIncome,
		TotalExpenses:     body.TotalExpenses,
		Savings:           body.Savings,
		Investments:       body.Investments,
		Categories:        body.Categories,
		InvestmentDetails: body.InvestmentDetails,
		Origin:            OriginAuthoritative,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJson(w, http.StatusOK, record)
}

// GetHistory godoc
// @Summary All stored months of the user
// @Description Returns CSV when the Accept header is text/csv
// @Tags MonthlyFinance
// @Produce json
// @Produce text/csv
// @Success 200 {array} MonthlyFinance
// @Failure 403 {object} rest.ErrorResponse "User not found"
// @Router /api/v1/user/monthly-finance/history [get]
// @Security XUserId
func (handler *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	log.Debug("Getting monthly finance history")
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	history, err := handler.service.History(r.Context(), userId)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		csv, err := handler.renderer.RenderHistory(history)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(csv)); err != nil {
			log.Errorf("could not write csv response: %v", err)
		}
		return
	}

	writeJson(w, http.StatusOK, history)
}

func toDisposableIncomeDTO(growth Growth) DisposableIncomeDTO {
	return DisposableIncomeDTO{
		Current: growth.CurrentAmount,
		Last:    growth.LastMonthAmount,
		Growth:  roundGrowth(growth.GrowthRate),
	}
}

// roundGrowth keeps two decimals, decimal cannot represent NaN or Inf so those become 0.
func roundGrowth(rate float64) float64 {
	if math.IsInf(rate, 0) || math.IsNaN(rate) {
		return 0
	}
	return decimal.NewFromFloat(rate).Round(2).InexactFloat64()
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
	case errors.Is(err, ErrInvalidKey):
		rest.WriteError(w, http.StatusBadRequest, "Invalid month", err.Error())
	default:
		rest.WriteError(w, http.StatusInternalServerError, "Could not load monthly finance", "")
	}
}
