//go:build integration

package monthly_finance

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/finpal/finpal/internal/test_utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	var cleanup func()
	db, cleanup = test_utils.TestWithDB()
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, Repository, string) {
	return context.Background(), NewRepository(db), "pg-" + uuid.NewString()
}

func TestRepositoryImpl_Save(t *testing.T) {
	t.Run("should insert and find a record", func(t *testing.T) {
		// given
		ctx, repo, userId := setupTestRepository(t)
		createdAt := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
		record := MonthlyFinance{
			Id:                uuid.NewString(),
			UserId:            userId,
			Year:              2024,
			Month:             4,
			TotalIncome:       2000,
			TotalExpenses:     500,
			DisposableIncome:  1500,
			Savings:           450,
			Investments:       300,
			Categories:        Categories{Salary: 2000, Rent: 300},
			InvestmentDetails: InvestmentDetails{Funds: 120},
			Origin:            OriginSynthesized,
			CreatedAt:         createdAt,
		}

		// when
		saved, err := repo.Save(ctx, record)
		require.NoError(t, err)
		found, err := repo.FindByUserAndMonth(ctx, userId, 2024, 4)

		// then
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, record.Id, saved.Id)
		assert.Equal(t, record.Id, found.Id)
		assert.Equal(t, record.Categories, found.Categories)
		assert.Equal(t, record.InvestmentDetails, found.InvestmentDetails)
		assert.Equal(t, OriginSynthesized, found.Origin)
		assert.True(t, createdAt.Equal(found.CreatedAt))
	})

	t.Run("should keep id and creation time on conflict", func(t *testing.T) {
		// given
		ctx, repo, userId := setupTestRepository(t)
		first, err := repo.Save(ctx, MonthlyFinance{
			Id: uuid.NewString(), UserId: userId, Year: 2024, Month: 5, TotalIncome: 100,
			CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Origin: OriginSynthesized,
		})
		require.NoError(t, err)

		// when
		second, err := repo.Save(ctx, MonthlyFinance{
			Id: uuid.NewString(), UserId: userId, Year: 2024, Month: 5, TotalIncome: 200,
			CreatedAt: time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), Origin: OriginAuthoritative,
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, first.Id, second.Id)
		assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
		found, err := repo.FindByUserAndMonth(ctx, userId, 2024, 5)
		require.NoError(t, err)
		assert.Equal(t, 200.0, found.TotalIncome)
		assert.Equal(t, OriginAuthoritative, found.Origin)
	})
}

func TestRepositoryImpl_FindByUserAndMonth_Missing(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)

	// when
	found, err := repo.FindByUserAndMonth(ctx, userId, 2024, 1)

	// then
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestRepositoryImpl_FindRecentAndAll(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	for i, month := range []int{3, 1, 4, 2} {
		_, err := repo.Save(ctx, MonthlyFinance{
			Id:          uuid.NewString(),
			UserId:      userId,
			Year:        2024,
			Month:       month,
			TotalIncome: float64(month * 1000),
			CreatedAt:   time.Date(2024, 6, i+1, 0, 0, 0, 0, time.UTC),
			Origin:      OriginAuthoritative,
		})
		require.NoError(t, err)
	}

	// when
	recent, err := repo.FindRecent(ctx, userId, 3)
	require.NoError(t, err)
	all, err := repo.FindAll(ctx, userId)
	require.NoError(t, err)

	// then
	require.Len(t, recent, 3)
	assert.Equal(t, []int{1, 4, 2}, monthsOf(recent))
	assert.Equal(t, []int{1, 2, 3, 4}, monthsOf(all))
}

func TestRepositoryImpl_WithService(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	clock.SetNow(time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC))
	svc := NewService(repo, nil, clock, projectionDefaults)

	// when
	first, err := svc.FindLastMonth(ctx, userId)
	require.NoError(t, err)
	second, err := svc.FindLastMonth(ctx, userId)
	require.NoError(t, err)

	// then
	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, OriginSynthesized, second.Origin)
}
