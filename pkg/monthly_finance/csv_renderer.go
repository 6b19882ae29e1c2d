package monthly_finance

import (
	"fmt"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"
)

type HistoryRenderer interface {
	RenderHistory(records []MonthlyFinance) (string, error)
}

type historyRow struct {
	Period           string  `csv:"Period"`
	TotalIncome      float64 `csv:"Income"`
	TotalExpenses    float64 `csv:"Expenses"`
	DisposableIncome float64 `csv:"Disposable"`
	Savings          float64 `csv:"Savings"`
	Investments      float64 `csv:"Investments"`
	Origin           string  `csv:"Origin"`
}

type CsvHistoryRenderer struct{}

func NewCsvHistoryRenderer() *CsvHistoryRenderer {
	return &CsvHistoryRenderer{}
}

func (r *CsvHistoryRenderer) RenderHistory(records []MonthlyFinance) (string, error) {
	rows := make([]*historyRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, &historyRow{
			Period:           fmt.Sprintf("%04d-%02d", record.Year, record.Month),
			TotalIncome:      record.TotalIncome,
			TotalExpenses:    record.TotalExpenses,
			DisposableIncome: record.DisposableIncome,
			Savings:          record.Savings,
			Investments:      record.Investments,
			Origin:           string(record.Origin),
		})
	}

	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	return out, nil
}
