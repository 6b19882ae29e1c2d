package utils

import "time"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
}

type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}

// CurrentMonth returns the calendar year and month (1-12) of t.
func CurrentMonth(t time.Time) (int, int) {
	return t.Year(), int(t.Month())
}

// PreviousMonth returns the calendar month preceding t, rolling January back to December of the previous year.
func PreviousMonth(t time.Time) (int, int) {
	year, month := t.Year(), int(t.Month())-1
	if month == 0 {
		month = 12
		year--
	}
	return year, month
}

// MonthStart is midnight of the first day of the given month in loc.
func MonthStart(year, month int, loc *time.Location) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
}
