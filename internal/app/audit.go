package app

import (
	"context"

	"github.com/finpal/finpal/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

// SubscribeAuditLog logs every synthesized record and saved budget.
func SubscribeAuditLog(eb *event_bus.EventBus) {
	event_bus.SubscribeTyped(eb, event_bus.MonthlyFinanceSynthesized,
		func(ctx context.Context, p event_bus.MonthlyFinanceSynthesizedPayload) error {
			log.WithFields(log.Fields{
				"user":   p.UserId,
				"record": p.RecordId,
				"period": p.Year*100 + p.Month,
				"basis":  p.Basis,
			}).Infof("synthesized monthly finance with disposable income %.2f", p.DisposableIncome)
			return nil
		})

	event_bus.SubscribeTyped(eb, event_bus.BudgetSettingsSaved,
		func(ctx context.Context, p event_bus.BudgetSettingsSavedPayload) error {
			fields := log.Fields{
				"user":       p.UserId,
				"budget":     p.TotalBudget,
				"categories": p.CategoryCount,
			}
			if p.CategoryCount > 0 && (p.PercentageSum < 100-1e-6 || p.PercentageSum > 100+1e-6) {
				log.WithFields(fields).Warnf("budget settings saved with percentages summing to %.4f", p.PercentageSum)
				return nil
			}
			log.WithFields(fields).Info("budget settings saved")
			return nil
		})
}
