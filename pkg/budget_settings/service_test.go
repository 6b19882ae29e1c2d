package budget_settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finpal/finpal/internal/event_bus"
	"github.com/finpal/finpal/internal/utils"
	"github.com/finpal/finpal/pkg/allocation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userId = "user-1"

var ctx = context.Background()

var repoStub = NewStubRepository()

var now = time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)

var service *ServiceImpl

func setup(t *testing.T) (*event_bus.EventBus, func()) {
	eventBus := event_bus.NewEventBus()
	service = NewService(repoStub, eventBus, &utils.MockClock{FixedNow: now})
	return eventBus, func() {
		t.Log("Teardown after test")
		repoStub.Reset()
	}
}

func percentages(categories []allocation.Category) []float64 {
	result := make([]float64, 0, len(categories))
	for _, c := range categories {
		result = append(result, c.Percentage)
	}
	return result
}

func TestSubAllocate(t *testing.T) {
	expenses := SubAllocate(5000)

	assert.Equal(t, MonthlyExpenses{
		Housing:        1500,
		Utilities:      250,
		Transportation: 500,
		Food:           1000,
		Entertainment:  750,
		Shopping:       500,
		Savings:        500,
	}, expenses)
	assert.Equal(t, 1.0, SubAllocate(3.33).Housing)
	assert.Equal(t, 0.17, SubAllocate(3.33).Utilities)
}

func TestServiceImpl_Get(t *testing.T) {
	t.Run("should return defaults when nothing is stored", func(t *testing.T) {
		_, teardown := setup(t)
		defer teardown()

		// when
		settings, err := service.Get(ctx, userId)

		// then
		require.NoError(t, err)
		assert.Equal(t, 0.0, settings.TotalBudget)
		assert.Equal(t, []float64{50, 20, 20, 10}, percentages(settings.Categories))
		for _, c := range settings.Categories {
			assert.Equal(t, 0.0, c.Amount)
		}
	})

	t.Run("should return storage errors", func(t *testing.T) {
		_, teardown := setup(t)
		defer teardown()

		// given
		storageErr := errors.New("connection refused")
		repoStub.FailWith(storageErr)

		// when
		_, err := service.Get(ctx, userId)

		// then
		assert.ErrorIs(t, err, storageErr)
	})
}

func TestServiceImpl_Calibrate(t *testing.T) {
	t.Run("should store categories with derived amounts and sub-allocation", func(t *testing.T) {
		eventBus, teardown := setup(t)
		defer teardown()

		// given
		var payloads []event_bus.BudgetSettingsSavedPayload
		event_bus.SubscribeTyped(eventBus, event_bus.BudgetSettingsSaved, func(ctx context.Context, p event_bus.BudgetSettingsSavedPayload) error {
			payloads = append(payloads, p)
			return nil
		})
		categories := []allocation.Category{
			{Name: "Rent", Percentage: 60, Color: "red", Amount: 12345},
			{Name: "Fun", Percentage: 40, Color: "blue"},
		}

		// when
		settings, err := service.Calibrate(ctx, userId, 3000, categories)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1800.0, settings.Categories[0].Amount)
		assert.Equal(t, 1200.0, settings.Categories[1].Amount)
		assert.Equal(t, 900.0, settings.MonthlyExpenses.Housing)
		assert.Equal(t, now, settings.UpdatedAt)

		stored, err := repoStub.Get(ctx, userId)
		require.NoError(t, err)
		assert.Equal(t, settings, stored)

		require.Len(t, payloads, 1)
		assert.Equal(t, 3000.0, payloads[0].TotalBudget)
		assert.Equal(t, 2, payloads[0].CategoryCount)
		assert.InDelta(t, 100, payloads[0].PercentageSum, 1e-9)
	})

	t.Run("should keep percentages that do not sum to 100", func(t *testing.T) {
		_, teardown := setup(t)
		defer teardown()

		// when
		settings, err := service.Calibrate(ctx, userId, 1000, []allocation.Category{{Name: "Only", Percentage: 70}})

		// then
		require.NoError(t, err)
		assert.Equal(t, 70.0, settings.Categories[0].Percentage)
		assert.Equal(t, 700.0, settings.Categories[0].Amount)
	})
}

func TestServiceImpl_SetPercentage(t *testing.T) {
	t.Run("should rebalance and persist", func(t *testing.T) {
		_, teardown := setup(t)
		defer teardown()

		// given
		_, err := service.Calibrate(ctx, userId, 5000, allocation.DefaultCategories(5000))
		require.NoError(t, err)

		// when
		settings, err := service.SetPercentage(ctx, userId, 0, 41)

		// then
		require.NoError(t, err)
		assert.InDelta(t, 41, settings.Categories[0].Percentage, 1e-9)
		assert.InDelta(t, 23, settings.Categories[1].Percentage, 1e-9)
		assert.InDelta(t, 100, allocation.Sum(settings.Categories), 1e-6)
		assert.Equal(t, 2050.0, settings.Categories[0].Amount)

		stored, err := repoStub.Get(ctx, userId)
		require.NoError(t, err)
		assert.Equal(t, settings.Categories, stored.Categories)
	})

	t.Run("should start from the defaults", func(t *testing.T) {
		_, teardown := setup(t)
		defer teardown()

		// when
		settings, err := service.SetPercentage(ctx, userId, 3, 40)

		// then
		require.NoError(t, err)
		assert.InDelta(t, 40, settings.Categories[0].Percentage, 1e-9)
		assert.InDelta(t, 40, settings.Categories[3].Percentage, 1e-9)
		assert.Equal(t, 0.0, settings.TotalBudget)
	})

	t.Run("should reject an unknown index", func(t *testing.T) {
		_, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.SetPercentage(ctx, userId, 4, 10)

		// then
		assert.ErrorIs(t, err, ErrCategoryNotFound)
		_, err = repoStub.Get(ctx, userId)
		assert.ErrorIs(t, err, ErrSettingsNotFound)
	})
}

func TestServiceImpl_AddAndRemoveCategory(t *testing.T) {
	t.Run("should add a zero category", func(t *testing.T) {
		_, teardown := setup(t)
		defer teardown()

		// when
		settings, err := service.AddCategory(ctx, userId)

		// then
		require.NoError(t, err)
		require.Len(t, settings.Categories, 5)
		assert.Equal(t, allocation.NewCategoryName, settings.Categories[4].Name)
		assert.Equal(t, 0.0, settings.Categories[4].Percentage)
	})

	t.Run("should remove and redistribute", func(t *testing.T) {
		_, teardown := setup(t)
		defer teardown()

		// given
		_, err := service.Calibrate(ctx, userId, 5000, allocation.DefaultCategories(5000))
		require.NoError(t, err)

		// when
		settings, err := service.RemoveCategory(ctx, userId, 3)

		// then
		require.NoError(t, err)
		require.Len(t, settings.Categories, 3)
		assert.InDelta(t, 53.33, settings.Categories[0].Percentage, 0.01)
		assert.InDelta(t, 23.33, settings.Categories[1].Percentage, 0.01)
		assert.InDelta(t, 100, allocation.Sum(settings.Categories), 1e-6)
		assert.Equal(t, 1500.0, settings.MonthlyExpenses.Housing)
	})

	t.Run("should reject an unknown index", func(t *testing.T) {
		_, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.RemoveCategory(ctx, userId, -1)

		// then
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("should return storage errors", func(t *testing.T) {
		_, teardown := setup(t)
		defer teardown()

		// given
		storageErr := errors.New("disk full")
		repoStub.FailWith(storageErr)

		// when
		_, err := service.AddCategory(ctx, userId)

		// then
		assert.ErrorIs(t, err, storageErr)
	})
}
