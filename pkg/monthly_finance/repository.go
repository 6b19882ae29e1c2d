package monthly_finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// FindByUserAndMonth returns nil when there is no record for the key.
	FindByUserAndMonth(ctx context.Context, userId string, year, month int) (*MonthlyFinance, error)
	// FindRecent returns up to limit records of the user with the latest CreatedAt, oldest first.
	FindRecent(ctx context.Context, userId string, limit int) ([]MonthlyFinance, error)
	// FindAll returns all records of the user ordered by year and month.
	FindAll(ctx context.Context, userId string) ([]MonthlyFinance, error)
	// Save inserts the record or replaces the one with the same (user, year, month).
	// The stored id and creation time of a replaced record are kept and returned.
	Save(ctx context.Context, record MonthlyFinance) (MonthlyFinance, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectColumns = `id::text, user_id, year, month, total_income, total_expenses, disposable_income,
	savings, investments, categories, investment_details, origin, created_at`

func (r *RepositoryImpl) FindByUserAndMonth(ctx context.Context, userId string, year, month int) (*MonthlyFinance, error) {
	query := `SELECT ` + selectColumns + ` FROM monthly_finance WHERE user_id = $1 AND year = $2 AND month = $3`

	record, err := scanRecord(r.db.QueryRow(ctx, query, userId, year, month))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		err := fmt.Errorf("could not find monthly finance %d-%02d: %w", year, month, err)
		log.Error(err)
		return nil, err
	}
	return &record, nil
}

func (r *RepositoryImpl) FindRecent(ctx context.Context, userId string, limit int) ([]MonthlyFinance, error) {
	query := `SELECT * FROM (
				SELECT ` + selectColumns + ` FROM monthly_finance
				WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
			  ) recent ORDER BY created_at`
	// LIMIT NULL means no limit
	var limitArg any = limit
	if limit < 0 {
		limitArg = nil
	}
	return r.query(ctx, query, userId, limitArg)
}

func (r *RepositoryImpl) FindAll(ctx context.Context, userId string) ([]MonthlyFinance, error) {
	query := `SELECT ` + selectColumns + ` FROM monthly_finance WHERE user_id = $1 ORDER BY year, month`
	return r.query(ctx, query, userId)
}

func (r *RepositoryImpl) Save(ctx context.Context, record MonthlyFinance) (MonthlyFinance, error) {
	query := `INSERT INTO monthly_finance (
					id, user_id, year, month,
					total_income, total_expenses, disposable_income, savings, investments,
					categories, investment_details, origin, created_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
				ON CONFLICT (user_id, year, month) DO UPDATE SET
					total_income = EXCLUDED.total_income,
					total_expenses = EXCLUDED.total_expenses,
					disposable_income = EXCLUDED.disposable_income,
					savings = EXCLUDED.savings,
					investments = EXCLUDED.investments,
					categories = EXCLUDED.categories,
					investment_details = EXCLUDED.investment_details,
					origin = EXCLUDED.origin
				RETURNING id::text, created_at`

	err := r.db.QueryRow(ctx, query,
		record.Id,
		record.UserId,
		record.Year,
		record.Month,
		record.TotalIncome,
		record.TotalExpenses,
		record.DisposableIncome,
		record.Savings,
		record.Investments,
		record.Categories,
		record.InvestmentDetails,
		string(record.Origin),
		record.CreatedAt,
	).Scan(&record.Id, &record.CreatedAt)
	if err != nil {
		err := fmt.Errorf("could not save monthly finance %d-%02d: %w", record.Year, record.Month, err)
		log.Error(err)
		return MonthlyFinance{}, err
	}
	return record, nil
}

func (r *RepositoryImpl) query(ctx context.Context, query string, args ...any) ([]MonthlyFinance, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query monthly finances: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	records := make([]MonthlyFinance, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return records, nil
}

func scanRecord(row pgx.Row) (MonthlyFinance, error) {
	var record MonthlyFinance
	var origin string
	err := row.Scan(
		&record.Id,
		&record.UserId,
		&record.Year,
		&record.Month,
		&record.TotalIncome,
		&record.TotalExpenses,
		&record.DisposableIncome,
		&record.Savings,
		&record.Investments,
		&record.Categories,
		&record.InvestmentDetails,
		&origin,
		&record.CreatedAt,
	)
	record.Origin = Origin(origin)
	return record, err
}
