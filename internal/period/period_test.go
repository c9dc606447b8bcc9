package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodayAt(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
	}{
		{name: "midday", now: time.Date(2025, 6, 15, 13, 45, 12, 0, time.UTC)},
		{name: "just after midnight", now: time.Date(2025, 6, 15, 0, 0, 1, 0, time.UTC)},
		{name: "just before midnight", now: time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := TodayAt(tt.now)

			assert.Equal(t, 1, r.Days)
			assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), r.Start)
			assert.Equal(t, 15, r.End.Day())
			assert.Equal(t, 23, r.End.Hour())
			assert.True(t, r.Contains(tt.now))
		})
	}
}

func TestLast7At(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	r := Last7At(now)

	assert.Equal(t, 7, r.Days)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, 10, r.End.Day())
	assert.True(t, r.Contains(now))
}

func TestLast7At_CrossesMonthBoundary(t *testing.T) {
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	r := Last7At(now)

	assert.Equal(t, 7, r.Days)
	assert.Equal(t, time.Date(2025, 2, 24, 0, 0, 0, 0, time.UTC), r.Start)
}

func TestCurrentMonthAt(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		wantDays int
	}{
		{name: "first of month", now: time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC), wantDays: 1},
		{name: "mid month", now: time.Date(2025, 5, 17, 8, 0, 0, 0, time.UTC), wantDays: 17},
		{name: "end of month", now: time.Date(2025, 5, 31, 23, 0, 0, 0, time.UTC), wantDays: 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CurrentMonthAt(tt.now)

			assert.Equal(t, tt.wantDays, r.Days)
			assert.Equal(t, 1, r.Start.Day())
			assert.Equal(t, tt.now.Month(), r.Start.Month())
		})
	}
}

func TestCustom(t *testing.T) {
	jan1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jan31 := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	r, err := Custom(jan1, jan31)
	require.NoError(t, err)
	assert.Equal(t, 31, r.Days)
	assert.Equal(t, jan1, r.Start)
	assert.Equal(t, 31, r.End.Day())
}

func TestCustom_SingleDay(t *testing.T) {
	day := time.Date(2025, 7, 4, 15, 0, 0, 0, time.UTC)

	r, err := Custom(day, day)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Days)
}

func TestCustom_EndBeforeStart(t *testing.T) {
	start := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC)

	_, err := Custom(start, end)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestCustom_CrossesYearBoundary(t *testing.T) {
	r, err := Custom(
		time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, 12, r.Days)
}
