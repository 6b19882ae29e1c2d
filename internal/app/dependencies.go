package app

import (
	"context"
	"fmt"

	"github.com/finpal/finpal/internal/config"
	"github.com/finpal/finpal/internal/database"
	"github.com/finpal/finpal/internal/event_bus"
	"github.com/finpal/finpal/internal/utils"
	"github.com/finpal/finpal/pkg/budget_settings"
	"github.com/finpal/finpal/pkg/monthly_finance"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	db *pgxpool.Pool

	MonthlyFinanceRepo    monthly_finance.Repository
	MonthlyFinanceService *monthly_finance.ServiceImpl
	MonthlyFinanceHandler *monthly_finance.Handler

	BudgetSettingsRepo    budget_settings.Repository
	BudgetSettingsService *budget_settings.ServiceImpl
	BudgetSettingsHandler *budget_settings.Handler
}

// BuildDependencies opens the configured storage and wires all application services and handlers.
func BuildDependencies(ctx context.Context, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{
		Clock:    &utils.SystemClock{},
		EventBus: event_bus.NewEventBus(),
	}

	switch cfg.Storage.Driver {
	case config.StorageDriverFile:
		monthlyFinanceRepo, err := monthly_finance.NewFileRepository(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		budgetSettingsRepo, err := budget_settings.NewFileRepository(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		deps.MonthlyFinanceRepo = monthlyFinanceRepo
		deps.BudgetSettingsRepo = budgetSettingsRepo
	case config.StorageDriverPostgres:
		if err := database.Migrate(cfg.Database); err != nil {
			return nil, err
		}
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		deps.db = db
		deps.MonthlyFinanceRepo = monthly_finance.NewRepository(db)
		deps.BudgetSettingsRepo = budget_settings.NewRepository(db)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	SubscribeAuditLog(deps.EventBus)

	deps.MonthlyFinanceService = monthly_finance.NewService(deps.MonthlyFinanceRepo, deps.EventBus, deps.Clock, cfg.Projection)
	deps.MonthlyFinanceHandler = monthly_finance.NewHandler(deps.MonthlyFinanceService, monthly_finance.NewCsvHistoryRenderer())

	deps.BudgetSettingsService = budget_settings.NewService(deps.BudgetSettingsRepo, deps.EventBus, deps.Clock)
	deps.BudgetSettingsHandler = budget_settings.NewHandler(deps.BudgetSettingsService)

	return deps, nil
}

// Close releases the database pool, if any.
func (d *Dependencies) Close() {
	if d.db != nil {
		d.db.Close()
	}
}
