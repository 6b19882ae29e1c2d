package monthly_finance

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFileRepository(t *testing.T) (*FileRepository, string) {
	dir := t.TempDir()
	repo, err := NewFileRepository(dir)
	require.NoError(t, err)
	return repo, dir
}

func TestFileRepository_Save(t *testing.T) {
	t.Run("should insert and find a record", func(t *testing.T) {
		// given
		repo, _ := setupFileRepository(t)
		stored := record(2024, 4, 2000, 500, date(2024, 4, 1))
		stored.Categories = Categories{Salary: 2000}

		// when
		saved, err := repo.Save(ctx, stored)
		require.NoError(t, err)
		found, err := repo.FindByUserAndMonth(ctx, userId, 2024, 4)

		// then
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, saved.Id, found.Id)
		assert.Equal(t, stored.Categories, found.Categories)
		assert.True(t, stored.CreatedAt.Equal(found.CreatedAt))
	})

	t.Run("should replace the record of the same month", func(t *testing.T) {
		// given
		repo, _ := setupFileRepository(t)
		first, err := repo.Save(ctx, record(2024, 4, 2000, 500, date(2024, 4, 1)))
		require.NoError(t, err)
		replacement := record(2024, 4, 2500, 500, date(2024, 4, 20))
		replacement.Id = "other"

		// when
		second, err := repo.Save(ctx, replacement)

		// then
		require.NoError(t, err)
		assert.Equal(t, first.Id, second.Id)
		assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
		all, err := repo.FindAll(ctx, userId)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, 2500.0, all[0].TotalIncome)
	})

	t.Run("should persist across instances", func(t *testing.T) {
		// given
		repo, dir := setupFileRepository(t)
		_, err := repo.Save(ctx, record(2024, 4, 2000, 500, date(2024, 4, 1)))
		require.NoError(t, err)

		// when
		reopened, err := NewFileRepository(dir)
		require.NoError(t, err)
		found, err := reopened.FindByUserAndMonth(ctx, userId, 2024, 4)

		// then
		require.NoError(t, err)
		assert.NotNil(t, found)
	})
}

func TestFileRepository_FindByUserAndMonth(t *testing.T) {
	t.Run("should return nil when missing", func(t *testing.T) {
		// given
		repo, _ := setupFileRepository(t)

		// when
		found, err := repo.FindByUserAndMonth(ctx, userId, 2024, 4)

		// then
		assert.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("should read records written without origin as authoritative", func(t *testing.T) {
		// given
		dir := t.TempDir()
		content := `{"monthlyFinances":[{"id":"a","userId":"user-1","year":2024,"month":4,"totalIncome":100,"createdAt":"2024-04-01T00:00:00Z"}]}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, dataFileName), []byte(content), 0o644))
		repo, err := NewFileRepository(dir)
		require.NoError(t, err)

		// when
		found, err := repo.FindByUserAndMonth(ctx, userId, 2024, 4)

		// then
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, OriginAuthoritative, found.Origin)
		assert.Equal(t, 100.0, found.TotalIncome)
	})

	t.Run("should fail on a corrupted file", func(t *testing.T) {
		// given
		repo, dir := setupFileRepository(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, dataFileName), []byte("{"), 0o644))

		// when
		_, err := repo.FindByUserAndMonth(ctx, userId, 2024, 4)

		// then
		assert.Error(t, err)
	})
}

func TestFileRepository_FindRecent(t *testing.T) {
	// given
	repo, _ := setupFileRepository(t)
	for i, month := range []int{3, 1, 4, 2} {
		_, err := repo.Save(ctx, record(2024, month, float64(month*1000), 0, time.Date(2024, 6, i+1, 0, 0, 0, 0, time.UTC)))
		require.NoError(t, err)
	}
	_, err := repo.Save(ctx, MonthlyFinance{UserId: "someone-else", Year: 2024, Month: 5, CreatedAt: date(2024, 7, 1)})
	require.NoError(t, err)

	// when
	recent, err := repo.FindRecent(ctx, userId, 3)
	require.NoError(t, err)
	all, err := repo.FindAll(ctx, userId)
	require.NoError(t, err)

	// then
	assert.Equal(t, []int{1, 4, 2}, monthsOf(recent))
	assert.Equal(t, []int{1, 2, 3, 4}, monthsOf(all))
}

func TestFileRepository_WithService(t *testing.T) {
	// given
	repo, _ := setupFileRepository(t)
	clock.SetNow(date(2024, 5, 15))
	svc := NewService(repo, nil, clock, projectionDefaults)
	_, err := repo.Save(ctx, record(2024, 3, 3000, 1000, date(2024, 3, 10)))
	require.NoError(t, err)

	// when
	current, err := svc.GetCurrentMonthData(ctx, userId)
	require.NoError(t, err)
	again, err := svc.GetCurrentMonthData(ctx, userId)
	require.NoError(t, err)

	// then
	assert.Equal(t, current.Id, again.Id)
	assert.InDelta(t, 2100, current.DisposableIncome, 1e-9)
	history, err := svc.History(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 5}, monthsOf(history))
}

func TestFileRepository_WithService_BackfillsOnce(t *testing.T) {
	// given
	repo, _ := setupFileRepository(t)
	clock.SetNow(time.Date(2024, 5, 15, 9, 0, 0, 0, time.FixedZone("CEST", 2*60*60)))
	svc := NewService(repo, nil, clock, projectionDefaults)
	_, err := repo.Save(ctx, record(2024, 2, 3000, 1000, date(2024, 2, 10)))
	require.NoError(t, err)

	// when
	first, err := svc.FindLastMonth(ctx, userId)
	require.NoError(t, err)
	second, err := svc.FindLastMonth(ctx, userId)
	require.NoError(t, err)

	// then
	assert.Equal(t, first, second)
	assert.Equal(t, time.Date(2024, 3, 31, 22, 0, 0, 0, time.UTC), second.CreatedAt)
	all, err := repo.FindAll(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, monthsOf(all))
}

func monthsOf(records []MonthlyFinance) []int {
	result := make([]int, 0, len(records))
	for _, r := range records {
		result = append(result, r.Month)
	}
	return result
}
