//go:build integration

package budget_settings

import (
	"os"
	"testing"

	"github.com/finpal/finpal/internal/test_utils"
	"github.com/finpal/finpal/internal/utils"
	"github.com/finpal/finpal/pkg/allocation"
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

func TestRepositoryImpl_Get_NotFound(t *testing.T) {
	// given
	repo := NewRepository(db)

	// when
	_, err := repo.Get(ctx, uuid.NewString())

	// then
	assert.ErrorIs(t, err, ErrSettingsNotFound)
}

func TestRepositoryImpl_Save(t *testing.T) {
	// given
	repo := NewRepository(db)
	id := uuid.NewString()
	require.NoError(t, repo.Save(ctx, id, Settings{TotalBudget: 100, Categories: allocation.DefaultCategories(100), UpdatedAt: now}))

	// when
	err := repo.Save(ctx, id, Settings{
		TotalBudget:     3000,
		Categories:      []allocation.Category{{Name: "A", Percentage: 60, Color: "red"}, {Name: "B", Percentage: 40, Color: "blue"}},
		MonthlyExpenses: SubAllocate(3000),
		UpdatedAt:       now,
	})
	require.NoError(t, err)
	settings, err := repo.Get(ctx, id)

	// then
	require.NoError(t, err)
	assert.Equal(t, 3000.0, settings.TotalBudget)
	require.Len(t, settings.Categories, 2)
	assert.Equal(t, 1800.0, settings.Categories[0].Amount)
	assert.Equal(t, "blue", settings.Categories[1].Color)
	assert.Equal(t, SubAllocate(3000), settings.MonthlyExpenses)
	assert.True(t, now.Equal(settings.UpdatedAt))
}

func TestRepositoryImpl_WithService(t *testing.T) {
	// given
	id := uuid.NewString()
	svc := NewService(NewRepository(db), nil, &utils.MockClock{FixedNow: now})

	// when
	_, err := svc.AddCategory(ctx, id)
	require.NoError(t, err)
	settings, err := svc.RemoveCategory(ctx, id, 0)

	// then
	require.NoError(t, err)
	assert.Len(t, settings.Categories, 4)
	assert.InDelta(t, 100, allocation.Sum(settings.Categories), 1e-6)
}
