package budget_settings

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/finpal/finpal/internal/filestore"
	log "github.com/sirupsen/logrus"
)

const dataFileName = "budget_settings.json"

type storedSettings struct {
	UserId          string           `json:"userId"`
	TotalBudget     float64          `json:"total_budget"`
	Categories      []storedCategory `json:"categories"`
	MonthlyExpenses MonthlyExpenses  `json:"monthly_expenses"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type fileSchema struct {
	BudgetSettings []storedSettings `json:"budgetSettings"`
}

func newFileSchema() fileSchema {
	return fileSchema{BudgetSettings: []storedSettings{}}
}

type FileRepository struct {
	doc *filestore.Document[fileSchema]
}

func NewFileRepository(dataDir string) (*FileRepository, error) {
	doc, err := filestore.Open(filepath.Join(dataDir, dataFileName), newFileSchema)
	if err != nil {
		return nil, fmt.Errorf("could not open budget settings store: %w", err)
	}
	return &FileRepository{doc: doc}, nil
}

func (r *FileRepository) Get(ctx context.Context, userId string) (Settings, error) {
	data, err := r.doc.Read()
	if err != nil {
		err := fmt.Errorf("could not load budget settings: %w", err)
		log.Error(err)
		return Settings{}, err
	}
	for _, stored := range data.BudgetSettings {
		if stored.UserId == userId {
			return Settings{
				TotalBudget:     stored.TotalBudget,
				Categories:      fromStoredCategories(stored.Categories, stored.TotalBudget),
				MonthlyExpenses: stored.MonthlyExpenses,
				UpdatedAt:       stored.UpdatedAt,
			}, nil
		}
	}
	return Settings{}, ErrSettingsNotFound
}

func (r *FileRepository) Save(ctx context.Context, userId string, settings Settings) error {
	entry := storedSettings{
		UserId:          userId,
		TotalBudget:     settings.TotalBudget,
		Categories:      toStoredCategories(settings.Categories),
		MonthlyExpenses: settings.MonthlyExpenses,
		UpdatedAt:       settings.UpdatedAt,
	}
	err := r.doc.Update(func(data *fileSchema) error {
		for i, stored := range data.BudgetSettings {
			if stored.UserId == userId {
				data.BudgetSettings[i] = entry
				return nil
			}
		}
		data.BudgetSettings = append(data.BudgetSettings, entry)
		return nil
	})
	if err != nil {
		err := fmt.Errorf("could not save budget settings: %w", err)
		log.Error(err)
		return err
	}
	return nil
}
