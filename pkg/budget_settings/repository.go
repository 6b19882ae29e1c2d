package budget_settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrSettingsNotFound = errors.New("budget settings not found")

type Repository interface {
	// Get returns ErrSettingsNotFound when the user has never saved settings.
	Get(ctx context.Context, userId string) (Settings, error)
	Save(ctx context.Context, userId string, settings Settings) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Get(ctx context.Context, userId string) (Settings, error) {
	query := `SELECT total_budget, categories, monthly_expenses, updated_at FROM budget_settings WHERE user_id = $1`

	var settings Settings
	var categories []storedCategory
	err := r.db.QueryRow(ctx, query, userId).Scan(
		&settings.TotalBudget,
		&categories,
		&settings.MonthlyExpenses,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, ErrSettingsNotFound
		}
		err := fmt.Errorf("could not get budget settings: %w", err)
		log.Error(err)
		return Settings{}, err
	}
	settings.Categories = fromStoredCategories(categories, settings.TotalBudget)
	return settings, nil
}

func (r *RepositoryImpl) Save(ctx context.Context, userId string, settings Settings) error {
	query := `INSERT INTO budget_settings (user_id, total_budget, categories, monthly_expenses, updated_at)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (user_id) DO UPDATE SET
					total_budget = EXCLUDED.total_budget,
					categories = EXCLUDED.categories,
					monthly_expenses = EXCLUDED.monthly_expenses,
					updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query,
		userId,
		settings.TotalBudget,
		toStoredCategories(settings.Categories),
		settings.MonthlyExpenses,
		settings.UpdatedAt,
	)
	if err != nil {
		err := fmt.Errorf("could not save budget settings: %w", err)
		log.Error(err)
		return err
	}
	return nil
}
