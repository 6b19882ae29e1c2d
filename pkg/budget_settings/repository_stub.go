package budget_settings

import (
	"context"
	"fmt"
)

type StubRepository struct {
	data map[string]Settings
	err  error
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[string]Settings{}}
}

func (s *StubRepository) Get(ctx context.Context, userId string) (Settings, error) {
	if s.err != nil {
		return Settings{}, s.err
	}
	settings, ok := s.data[userId]
	if !ok {
		return Settings{}, ErrSettingsNotFound
	}
	return settings, nil
}

func (s *StubRepository) Save(ctx context.Context, userId string, settings Settings) error {
	if s.err != nil {
		return fmt.Errorf("could not save budget settings: %w", s.err)
	}
	s.data[userId] = settings
	return nil
}

// FailWith makes every following call return err.
func (s *StubRepository) FailWith(err error) {
	s.err = err
}

func (s *StubRepository) Reset() {
	s.data = map[string]Settings{}
	s.err = nil
}
