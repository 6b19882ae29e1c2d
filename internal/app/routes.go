package app

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {
	api := r.PathPrefix(userApiPrefix).Subrouter()

	// Monthly finance
	api.HandleFunc("/monthly-finance", deps.MonthlyFinanceHandler.GetMonthlyFinance).Methods("GET")
	api.HandleFunc("/monthly-finance/history", deps.MonthlyFinanceHandler.GetHistory).Methods("GET")
	api.HandleFunc("/monthly-finance/{year:[0-9]+}/{month:[0-9]+}", deps.MonthlyFinanceHandler.UpsertMonthlyFinance).Methods("PUT")
	api.HandleFunc("/finance-dashboard", deps.MonthlyFinanceHandler.GetFinanceDashboard).Methods("GET")

	// Budget settings
	api.HandleFunc("/budget", deps.BudgetSettingsHandler.GetBudget).Methods("GET")
	api.HandleFunc("/calibrate/budget", deps.BudgetSettingsHandler.CalibrateBudget).Methods("POST")
	api.HandleFunc("/budget/categories", deps.BudgetSettingsHandler.AddCategory).Methods("POST")
	api.HandleFunc("/budget/categories/{index}", deps.BudgetSettingsHandler.RemoveCategory).Methods("DELETE")
	api.HandleFunc("/budget/categories/{index}/percentage", deps.BudgetSettingsHandler.SetCategoryPercentage).Methods("PUT")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")
}
