package monthly_finance

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/finpal/finpal/internal/config"
	"github.com/finpal/finpal/internal/event_bus"
	"github.com/finpal/finpal/internal/utils"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidKey = errors.New("invalid monthly finance key")

const (
	backfillSavingsShare     = 0.3
	backfillInvestmentsShare = 0.2
)

type Service interface {
	FindByUserAndMonth(ctx context.Context, userId string, year, month int) (*MonthlyFinance, error)
	FindLastMonth(ctx context.Context, userId string) (MonthlyFinance, error)
	GetCurrentMonthData(ctx context.Context, userId string) (MonthlyFinance, error)
	CalculateGrowthRate(ctx context.Context, userId string) (Growth, error)
	Upsert(ctx context.Context, partial Partial) (MonthlyFinance, error)
	History(ctx context.Context, userId string) ([]MonthlyFinance, error)
}

// ServiceImpl answers questions about the current and previous month and invents the records that
// are missing, so callers never get a "not found" for those two months.
//
// Concurrent calls for the same user are not coordinated: two requests may both find a month
// missing and both write it, the last write wins.
type ServiceImpl struct {
	repo           Repository
	eventBus       *event_bus.EventBus
	clock          utils.Clock
	growthRate     float64
	trailingWindow int
}

func NewService(repo Repository, eventBus *event_bus.EventBus, clock utils.Clock, cfg config.Projection) *ServiceImpl {
	trailingWindow := cfg.TrailingWindow
	if trailingWindow <= 0 {
		trailingWindow = 3
	}
	return &ServiceImpl{
		repo:           repo,
		eventBus:       eventBus,
		clock:          clock,
		growthRate:     cfg.GrowthRate,
		trailingWindow: trailingWindow,
	}
}

func (s *ServiceImpl) FindByUserAndMonth(ctx context.Context, userId string, year, month int) (*MonthlyFinance, error) {
	return s.repo.FindByUserAndMonth(ctx, userId, year, month)
}

// FindLastMonth returns the record of the month before now. When it does not exist it is backfilled
// from the average income and expenses of the most recently created records and persisted.
func (s *ServiceImpl) FindLastMonth(ctx context.Context, userId string) (MonthlyFinance, error) {
	now := s.clock.Now()
	year, month := utils.PreviousMonth(now)

	existing, err := s.repo.FindByUserAndMonth(ctx, userId, year, month)
	if err != nil {
		return MonthlyFinance{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	recent, err := s.repo.FindRecent(ctx, userId, s.trailingWindow)
	if err != nil {
		return MonthlyFinance{}, err
	}
	avgIncome, avgExpenses := averages(recent)
	disposable := avgIncome - avgExpenses
	createdAt := utils.MonthStart(year, month, now.Location()).UTC()

	log.Debugf("backfilling %d-%02d for user %s from %d recent record(s)", year, month, userId, len(recent))
	record, err := s.Upsert(ctx, Partial{
		UserId:            userId,
		Year:              year,
		Month:             month,
		DisposableIncome:  &disposable,
		TotalIncome:       &avgIncome,
		TotalExpenses:     &avgExpenses,
		Savings:           ptr(disposable * backfillSavingsShare),
		Investments:       ptr(disposable * backfillInvestmentsShare),
		Categories:        &Categories{},
		InvestmentDetails: &InvestmentDetails{},
		Origin:            OriginSynthesized,
		CreatedAt:         &createdAt,
	})
	if err != nil {
		return MonthlyFinance{}, err
	}
	s.publishSynthesized(ctx, record, "trailing_average")
	return record, nil
}

// GetCurrentMonthData returns the record of the current month. When it does not exist it is projected
// from last month: income, disposable income, savings and investments grow by the configured rate,
// expenses and breakdowns are carried over unchanged.
func (s *ServiceImpl) GetCurrentMonthData(ctx context.Context, userId string) (MonthlyFinance, error) {
	year, month := utils.CurrentMonth(s.clock.Now())

	existing, err := s.repo.FindByUserAndMonth(ctx, userId, year, month)
	if err != nil {
		return MonthlyFinance{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	lastMonth, err := s.FindLastMonth(ctx, userId)
	if err != nil {
		return MonthlyFinance{}, err
	}
	factor := 1 + s.growthRate
	categories := lastMonth.Categories
	investmentDetails := lastMonth.InvestmentDetails

	record, err := s.Upsert(ctx, Partial{
		UserId:            userId,
		Year:              year,
		Month:             month,
		DisposableIncome:  ptr(lastMonth.DisposableIncome * factor),
		TotalIncome:       ptr(lastMonth.TotalIncome * factor),
		TotalExpenses:     ptr(lastMonth.TotalExpenses),
		Savings:           ptr(lastMonth.Savings * factor),
		Investments:       ptr(lastMonth.Investments * factor),
		Categories:        &categories,
		InvestmentDetails: &investmentDetails,
		Origin:            OriginSynthesized,
	})
	if err != nil {
		return MonthlyFinance{}, err
	}
	s.publishSynthesized(ctx, record, "growth_projection")
	return record, nil
}

func (s *ServiceImpl) CalculateGrowthRate(ctx context.Context, userId string) (Growth, error) {
	current, err := s.GetCurrentMonthData(ctx, userId)
	if err != nil {
		return Growth{}, err
	}
	lastMonth, err := s.FindLastMonth(ctx, userId)
	if err != nil {
		return Growth{}, err
	}

	growth := Growth{
		CurrentAmount:   current.DisposableIncome,
		LastMonthAmount: lastMonth.DisposableIncome,
	}
	if growth.LastMonthAmount != 0 {
		growth.GrowthRate = (growth.CurrentAmount - growth.LastMonthAmount) / growth.LastMonthAmount * 100
	}
	// a near zero last month or an overflowing difference reports no growth
	if math.IsInf(growth.GrowthRate, 0) || math.IsNaN(growth.GrowthRate) {
		log.Warnf("growth rate of user %s is not finite (%v -> %v), reporting 0", userId, growth.LastMonthAmount, growth.CurrentAmount)
		growth.GrowthRate = 0
	}
	return growth, nil
}

// Upsert merges partial over the stored record of the same month, or creates it.
func (s *ServiceImpl) Upsert(ctx context.Context, partial Partial) (MonthlyFinance, error) {
	if partial.UserId == "" || partial.Month < 1 || partial.Month > 12 {
		return MonthlyFinance{}, fmt.Errorf("%w: user %q, %d-%02d", ErrInvalidKey, partial.UserId, partial.Year, partial.Month)
	}

	existing, err := s.repo.FindByUserAndMonth(ctx, partial.UserId, partial.Year, partial.Month)
	if err != nil {
		return MonthlyFinance{}, err
	}

	var record MonthlyFinance
	if existing != nil {
		record = *existing
	} else {
		record = MonthlyFinance{
			Id:        uuid.NewString(),
			UserId:    partial.UserId,
			Year:      partial.Year,
			Month:     partial.Month,
			CreatedAt: s.clock.Now(),
		}
		if partial.CreatedAt != nil {
			record.CreatedAt = *partial.CreatedAt
		}
	}

	merge(&record.DisposableIncome, partial.DisposableIncome)
	merge(&record.TotalIncome, partial.TotalIncome)
	merge(&record.TotalExpenses, partial.TotalExpenses)
	merge(&record.Savings, partial.Savings)
	merge(&record.Investments, partial.Investments)
	merge(&record.Categories, partial.Categories)
	merge(&record.InvestmentDetails, partial.InvestmentDetails)
	record.Origin = partial.Origin
	if record.Origin == "" {
		record.Origin = OriginAuthoritative
	}

	return s.repo.Save(ctx, record)
}

func (s *ServiceImpl) History(ctx context.Context, userId string) ([]MonthlyFinance, error) {
	return s.repo.FindAll(ctx, userId)
}

func (s *ServiceImpl) publishSynthesized(ctx context.Context, record MonthlyFinance, basis string) {
	if s.eventBus == nil {
		return
	}
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.MonthlyFinanceSynthesized, event_bus.MonthlyFinanceSynthesizedPayload{
		RecordId:         record.Id,
		UserId:           record.UserId,
		Year:             record.Year,
		Month:            record.Month,
		DisposableIncome: record.DisposableIncome,
		Basis:            basis,
	}))
	// the record is already stored, a failing subscriber must not turn the read into an error
	if err != nil {
		log.Warnf("failed to publish synthesized monthly finance event: %v", err)
	}
}

func averages(records []MonthlyFinance) (float64, float64) {
	if len(records) == 0 {
		return 0, 0
	}
	var income, expenses float64
	for _, r := range records {
		income += r.TotalIncome
		expenses += r.TotalExpenses
	}
	n := float64(len(records))
	return income / n, expenses / n
}

func merge[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func ptr[T any](v T) *T {
	return &v
}
