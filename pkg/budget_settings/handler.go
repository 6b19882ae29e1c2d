package budget_settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/finpal/finpal/internal/rest"
	"github.com/finpal/finpal/pkg/allocation"
	"github.com/finpal/finpal/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type CategoryDTO struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
	Amount     float64 `json:"amount"`
}

type MonthlyBudgetDTO struct {
	Expenses MonthlyExpenses `json:"expenses"`
}

type BudgetSettingsDTO struct {
	TotalBudget   float64           `json:"total_budget"`
	Categories    []CategoryDTO     `json:"categories"`
	MonthlyBudget *MonthlyBudgetDTO `json:"monthly_budget,omitempty"`
	UpdatedAt     *time.Time        `json:"updated_at,omitempty"`
}

type CalibrateRequestDTO struct {
	TotalBudget *float64        `json:"total_budget"`
	Categories  json.RawMessage `json:"categories"`
}

type CalibrateResponseDTO struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    BudgetSettingsDTO `json:"data"`
}

type PercentageRequestDTO struct {
	Percentage *float64 `json:"percentage"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetBudget godoc
// @Summary Budget settings of the current user
// @Description Returns the default 50/20/20/10 split with a zero budget when nothing was calibrated yet
// @Tags BudgetSettings
// @Produce json
// @Success 200 {object} BudgetSettingsDTO
// @Failure 403 {object} rest.ErrorResponse "User not found"
// @Router /api/v1/user/budget [get]
// @Security XUserId
func (handler *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	log.Debug("Getting budget settings")
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	settings, err := handler.service.Get(r.Context(), userId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJson(w, http.StatusOK, toDTO(settings))
}

// CalibrateBudget godoc
// @Summary Replace the budget settings
// @Tags BudgetSettings
// @Accept json
// @Produce json
// @Param settings body CalibrateRequestDTO true "Total budget and categories"
// @Success 200 {object} CalibrateResponseDTO
// @Failure 400 {object} rest.ErrorResponse "Bad Request"
// @Failure 403 {object} rest.ErrorResponse "User not found"
// @Router /api/v1/user/calibrate/budget [post]
// @Security XUserId
func (handler *Handler) CalibrateBudget(w http.ResponseWriter, r *http.Request) {
	log.Debug("Calibrating budget")
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var body CalibrateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if body.TotalBudget == nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", "total_budget is required")
		return
	}
	raw := bytes.TrimSpace(body.Categories)
	if len(raw) == 0 || raw[0] != '[' {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", "categories must be an array")
		return
	}
	var categoriesDTO []CategoryDTO
	if err := json.Unmarshal(raw, &categoriesDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	settings, err := handler.service.Calibrate(r.Context(), userId, *body.TotalBudget, fromCategoryDTOs(categoriesDTO))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJson(w, http.StatusOK, CalibrateResponseDTO{
		Success: true,
		Message: "Budget settings saved",
		Data:    toDTO(settings),
	})
}

// SetCategoryPercentage godoc
// @Summary Change the share of one category
// @Description The difference is spread evenly over the other categories
// @Tags BudgetSettings
// @Accept json
// @Produce json
// @Param index path int true "Category position"
// @Param body body PercentageRequestDTO true "New percentage"
// @Success 200 {object} BudgetSettingsDTO
// @Failure 400 {object} rest.ErrorResponse "Bad Request"
// @Failure 404 {object} rest.ErrorResponse "Category not found"
// @Router /api/v1/user/budget/categories/{index}/percentage [put]
// @Security XUserId
func (handler *Handler) SetCategoryPercentage(w http.ResponseWriter, r *http.Request) {
	log.Debug("Setting budget category percentage")
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	index, ok := categoryIndex(w, r)
	if !ok {
		return
	}

	var body PercentageRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if body.Percentage == nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", "percentage is required")
		return
	}

	settings, err := handler.service.SetPercentage(r.Context(), userId, index, *body.Percentage)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJson(w, http.StatusOK, toDTO(settings))
}

// AddCategory godoc
// @Summary Append an empty category
// @Tags BudgetSettings
// @Produce json
// @Success 201 {object} BudgetSettingsDTO
// @Router /api/v1/user/budget/categories [post]
// @Security XUserId
func (handler *Handler) AddCategory(w http.ResponseWriter, r *http.Request) {
	log.Debug("Adding budget category")
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	settings, err := handler.service.AddCategory(r.Context(), userId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJson(w, http.StatusCreated, toDTO(settings))
}

// RemoveCategory godoc
// @Summary Remove a category
// @Description Its share is split evenly over the remaining categories
// @Tags BudgetSettings
// @Produce json
// @Param index path int true "Category position"
// @Success 200 {object} BudgetSettingsDTO
// @Failure 404 {object} rest.ErrorResponse "Category not found"
// @Router /api/v1/user/budget/categories/{index} [delete]
// @Security XUserId
func (handler *Handler) RemoveCategory(w http.ResponseWriter, r *http.Request) {
	log.Debug("Removing budget category")
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	index, ok := categoryIndex(w, r)
	if !ok {
		return
	}

	settings, err := handler.service.RemoveCategory(r.Context(), userId, index)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJson(w, http.StatusOK, toDTO(settings))
}

func categoryIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid category index", "index must be a number")
		return 0, false
	}
	return index, true
}

func toDTO(settings Settings) BudgetSettingsDTO {
	categories := make([]CategoryDTO, 0, len(settings.Categories))
	for _, c := range allocation.WithAmounts(settings.Categories, settings.TotalBudget) {
		categories = append(categories, CategoryDTO{
			Name:       c.Name,
			Percentage: c.Percentage,
			Color:      c.Color,
			Amount:     c.Amount,
		})
	}
	dto := BudgetSettingsDTO{
		TotalBudget: settings.TotalBudget,
		Categories:  categories,
	}
	if settings.MonthlyExpenses != (MonthlyExpenses{}) {
		dto.MonthlyBudget = &MonthlyBudgetDTO{Expenses: settings.MonthlyExpenses}
	}
	if !settings.UpdatedAt.IsZero() {
		dto.UpdatedAt = &settings.UpdatedAt
	}
	return dto
}

// fromCategoryDTOs drops client supplied amounts, they are derived again from the total.
func fromCategoryDTOs(dtos []CategoryDTO) []allocation.Category {
	categories := make([]allocation.Category, 0, len(dtos))
	for _, dto := range dtos {
		categories = append(categories, allocation.Category{
			Name:       dto.Name,
			Percentage: dto.Percentage,
			Color:      dto.Color,
		})
	}
	return categories
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
	case errors.Is(err, ErrCategoryNotFound):
		rest.WriteError(w, http.StatusNotFound, "Category not found", "")
	default:
		rest.WriteError(w, http.StatusInternalServerError, "Could not process budget settings", "")
	}
}
