package budget_settings

import (
	"context"
	"errors"
	"math"

	"github.com/finpal/finpal/internal/event_bus"
	"github.com/finpal/finpal/internal/utils"
	"github.com/finpal/finpal/pkg/allocation"
	log "github.com/sirupsen/logrus"
)

var ErrCategoryNotFound = errors.New("budget category not found")

type Service interface {
	// Get returns the default split with a zero budget when the user has no settings yet.
	Get(ctx context.Context, userId string) (Settings, error)
	Calibrate(ctx context.Context, userId string, totalBudget float64, categories []allocation.Category) (Settings, error)
	SetPercentage(ctx context.Context, userId string, index int, percentage float64) (Settings, error)
	AddCategory(ctx context.Context, userId string) (Settings, error)
	RemoveCategory(ctx context.Context, userId string, index int) (Settings, error)
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
	clock    utils.Clock
}

func NewService(repo Repository, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus, clock: clock}
}

func (s *ServiceImpl) Get(ctx context.Context, userId string) (Settings, error) {
	settings, err := s.repo.Get(ctx, userId)
	if errors.Is(err, ErrSettingsNotFound) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Calibrate replaces the whole settings document. Category percentages are stored as given.
func (s *ServiceImpl) Calibrate(ctx context.Context, userId string, totalBudget float64, categories []allocation.Category) (Settings, error) {
	if sum := allocation.Sum(categories); len(categories) > 0 && math.Abs(sum-100) > 1e-6 {
		log.Warnf("calibrating budget of user %s with percentages summing to %.4f", userId, sum)
	}
	return s.save(ctx, userId, Settings{
		TotalBudget:     totalBudget,
		Categories:      allocation.WithAmounts(categories, totalBudget),
		MonthlyExpenses: SubAllocate(totalBudget),
	})
}

func (s *ServiceImpl) SetPercentage(ctx context.Context, userId string, index int, percentage float64) (Settings, error) {
	return s.edit(ctx, userId, func(settings Settings) (Settings, error) {
		if index < 0 || index >= len(settings.Categories) {
			return Settings{}, ErrCategoryNotFound
		}
		settings.Categories = allocation.SetPercentage(settings.Categories, settings.TotalBudget, index, percentage)
		return settings, nil
	})
}

func (s *ServiceImpl) AddCategory(ctx context.Context, userId string) (Settings, error) {
	return s.edit(ctx, userId, func(settings Settings) (Settings, error) {
		settings.Categories = allocation.AddCategory(settings.Categories, settings.TotalBudget)
		return settings, nil
	})
}

func (s *ServiceImpl) RemoveCategory(ctx context.Context, userId string, index int) (Settings, error) {
	return s.edit(ctx, userId, func(settings Settings) (Settings, error) {
		if index < 0 || index >= len(settings.Categories) {
			return Settings{}, ErrCategoryNotFound
		}
		settings.Categories = allocation.RemoveCategory(settings.Categories, settings.TotalBudget, index)
		return settings, nil
	})
}

func (s *ServiceImpl) edit(ctx context.Context, userId string, fn func(Settings) (Settings, error)) (Settings, error) {
	current, err := s.Get(ctx, userId)
	if err != nil {
		return Settings{}, err
	}
	updated, err := fn(current)
	if err != nil {
		return Settings{}, err
	}
	return s.save(ctx, userId, updated)
}

func (s *ServiceImpl) save(ctx context.Context, userId string, settings Settings) (Settings, error) {
	settings.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, userId, settings); err != nil {
		return Settings{}, err
	}

	if s.eventBus != nil {
		err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.BudgetSettingsSaved, event_bus.BudgetSettingsSavedPayload{
			UserId:        userId,
			TotalBudget:   settings.TotalBudget,
			CategoryCount: len(settings.Categories),
			PercentageSum: allocation.Sum(settings.Categories),
		}))
		if err != nil {
			log.Warnf("failed to publish budget settings event: %v", err)
		}
	}
	return settings, nil
}
