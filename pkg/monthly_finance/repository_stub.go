package monthly_finance

import (
	"context"
	"fmt"
	"sort"
)

type key struct {
	userId string
	year   int
	month  int
}

type StubRepository struct {
	data  map[key]MonthlyFinance
	saves int
	err   error
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[key]MonthlyFinance{}}
}

func (s *StubRepository) FindByUserAndMonth(ctx context.Context, userId string, year, month int) (*MonthlyFinance, error) {
	if s.err != nil {
		return nil, s.err
	}
	record, ok := s.data[key{userId, year, month}]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *StubRepository) FindRecent(ctx context.Context, userId string, limit int) ([]MonthlyFinance, error) {
	if s.err != nil {
		return nil, s.err
	}
	records := s.userRecords(userId)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	if limit >= 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

func (s *StubRepository) FindAll(ctx context.Context, userId string) ([]MonthlyFinance, error) {
	if s.err != nil {
		return nil, s.err
	}
	records := s.userRecords(userId)
	sort.Slice(records, func(i, j int) bool {
		return records[i].Year*100+records[i].Month < records[j].Year*100+records[j].Month
	})
	return records, nil
}

func (s *StubRepository) Save(ctx context.Context, record MonthlyFinance) (MonthlyFinance, error) {
	if s.err != nil {
		return MonthlyFinance{}, fmt.Errorf("could not save monthly finance: %w", s.err)
	}
	k := key{record.UserId, record.Year, record.Month}
	if existing, ok := s.data[k]; ok {
		record.Id = existing.Id
		record.CreatedAt = existing.CreatedAt
	}
	s.data[k] = record
	s.saves++
	return record, nil
}

// Put stores a record as is, bypassing upsert semantics.
func (s *StubRepository) Put(record MonthlyFinance) {
	s.data[key{record.UserId, record.Year, record.Month}] = record
}

// Saves is the number of Save calls since the last Reset.
func (s *StubRepository) Saves() int {
	return s.saves
}

// FailWith makes every following call return err.
func (s *StubRepository) FailWith(err error) {
	s.err = err
}

func (s *StubRepository) Reset() {
	s.data = map[key]MonthlyFinance{}
	s.saves = 0
	s.err = nil
}

func (s *StubRepository) userRecords(userId string) []MonthlyFinance {
	records := make([]MonthlyFinance, 0)
	for k, record := range s.data {
		if k.userId == userId {
			records = append(records, record)
		}
	}
	return records
}
