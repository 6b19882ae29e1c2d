package monthly_finance

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/finpal/finpal/internal/filestore"
	log "github.com/sirupsen/logrus"
)

const dataFileName = "monthly_finances.json"

type fileSchema struct {
	MonthlyFinances []MonthlyFinance `json:"monthlyFinances"`
}

func newFileSchema() fileSchema {
	return fileSchema{MonthlyFinances: []MonthlyFinance{}}
}

// FileRepository stores all records of all users in one JSON document.
type FileRepository struct {
	doc *filestore.Document[fileSchema]
}

func NewFileRepository(dataDir string) (*FileRepository, error) {
	doc, err := filestore.Open(filepath.Join(dataDir, dataFileName), newFileSchema)
	if err != nil {
		return nil, fmt.Errorf("could not open monthly finance store: %w", err)
	}
	return &FileRepository{doc: doc}, nil
}

func (r *FileRepository) FindByUserAndMonth(ctx context.Context, userId string, year, month int) (*MonthlyFinance, error) {
	data, err := r.read()
	if err != nil {
		return nil, err
	}
	if idx := indexOf(data.MonthlyFinances, userId, year, month); idx >= 0 {
		record := normalizeOrigin(data.MonthlyFinances[idx])
		return &record, nil
	}
	return nil, nil
}

func (r *FileRepository) FindRecent(ctx context.Context, userId string, limit int) ([]MonthlyFinance, error) {
	records, err := r.userRecords(userId)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	if limit >= 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

func (r *FileRepository) FindAll(ctx context.Context, userId string) ([]MonthlyFinance, error) {
	records, err := r.userRecords(userId)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Year != records[j].Year {
			return records[i].Year < records[j].Year
		}
		return records[i].Month < records[j].Month
	})
	return records, nil
}

func (r *FileRepository) Save(ctx context.Context, record MonthlyFinance) (MonthlyFinance, error) {
	err := r.doc.Update(func(data *fileSchema) error {
		idx := indexOf(data.MonthlyFinances, record.UserId, record.Year, record.Month)
		if idx < 0 {
			data.MonthlyFinances = append(data.MonthlyFinances, record)
			return nil
		}
		existing := data.MonthlyFinances[idx]
		record.Id = existing.Id
		record.CreatedAt = existing.CreatedAt
		data.MonthlyFinances[idx] = record
		return nil
	})
	if err != nil {
		err := fmt.Errorf("could not save monthly finance %d-%02d: %w", record.Year, record.Month, err)
		log.Error(err)
		return MonthlyFinance{}, err
	}
	return record, nil
}

func (r *FileRepository) read() (fileSchema, error) {
	data, err := r.doc.Read()
	if err != nil {
		err := fmt.Errorf("could not load monthly finances: %w", err)
		log.Error(err)
		return fileSchema{}, err
	}
	return data, nil
}

func (r *FileRepository) userRecords(userId string) ([]MonthlyFinance, error) {
	data, err := r.read()
	if err != nil {
		return nil, err
	}
	records := make([]MonthlyFinance, 0)
	for _, record := range data.MonthlyFinances {
		if record.UserId == userId {
			records = append(records, normalizeOrigin(record))
		}
	}
	return records, nil
}

func indexOf(records []MonthlyFinance, userId string, year, month int) int {
	for i, record := range records {
		if record.UserId == userId && record.Year == year && record.Month == month {
			return i
		}
	}
	return -1
}

// normalizeOrigin treats records written before the origin field existed as authoritative.
func normalizeOrigin(record MonthlyFinance) MonthlyFinance {
	if record.Origin == "" {
		record.Origin = OriginAuthoritative
	}
	return record
}
