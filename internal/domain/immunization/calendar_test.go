package immunization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewCalendar_Validation(t *testing.T) {
	t.Run("empty calendar is rejected", func(t *testing.T) {
		_, err := NewCalendar(nil)
		assert.Error(t, err)
	})

	t.Run("empty dose code is rejected", func(t *testing.T) {
		_, err := NewCalendar([]Dose{{Code: "  ", OffsetDays: 0}})
		assert.Error(t, err)
	})

	t.Run("negative offset is rejected", func(t *testing.T) {
		_, err := NewCalendar([]Dose{{Code: "BCG", OffsetDays: -1}})
		assert.Error(t, err)
	})

	t.Run("duplicate dose code is rejected", func(t *testing.T) {
		_, err := NewCalendar([]Dose{
			{Code: "BCG", OffsetDays: 0},
			{Code: "bcg", OffsetDays: 10},
		})
		assert.Error(t, err)
	})

	t.Run("unknown prerequisite is rejected", func(t *testing.T) {
		_, err := NewCalendar([]Dose{
			{Code: "DPT-2", OffsetDays: 90, Requires: "DPT-1"},
		})
		assert.Error(t, err)
	})

	t.Run("doses come out ordered by offset then code", func(t *testing.T) {
		cal, err := NewCalendar([]Dose{
			{Code: "POLIO-1", OffsetDays: 60},
			{Code: "BCG", OffsetDays: 0},
			{Code: "DPT-1", OffsetDays: 60},
		})
		require.NoError(t, err)

		doses := cal.Doses()
		require.Len(t, doses, 3)
		assert.Equal(t, "BCG", doses[0].Code)
		assert.Equal(t, "DPT-1", doses[1].Code)
		assert.Equal(t, "POLIO-1", doses[2].Code)
	})
}

func TestCalendar_Lookup(t *testing.T) {
	cal := DefaultCalendar()

	dose, ok := cal.Lookup("bcg")
	require.True(t, ok)
	assert.Equal(t, "BCG", dose.Code)

	_, ok = cal.Lookup("RABIES")
	assert.False(t, ok)
}

func TestCalendar_Generate(t *testing.T) {
	cal, err := NewCalendar([]Dose{
		{Code: "BCG", OffsetDays: 0},
		{Code: "DPT-1", OffsetDays: 60},
	})
	require.NoError(t, err)

	t.Run("due dates are birth date plus offset", func(t *testing.T) {
		records, err := cal.Generate("LT-001", date(2025, time.January, 1), date(2025, time.January, 1))
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, "BCG", records[0].DoseCode)
		assert.Equal(t, date(2025, time.January, 1), records[0].DueDate)
		assert.Equal(t, StatusPending, records[0].Status)

		assert.Equal(t, "DPT-1", records[1].DoseCode)
		assert.Equal(t, date(2025, time.March, 2), records[1].DueDate)
		assert.Equal(t, StatusPending, records[1].Status)

		for _, rec := range records {
			assert.Equal(t, "LT-001", rec.BabyID)
		}
	})

	t.Run("past due dates come out overdue", func(t *testing.T) {
		records, err := cal.Generate("LT-002", date(2024, time.January, 1), date(2024, time.June, 1))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, StatusOverdue, records[0].Status)
		assert.Equal(t, StatusOverdue, records[1].Status)
	})

	t.Run("birth date in the future is rejected", func(t *testing.T) {
		_, err := cal.Generate("LT-003", date(2025, time.June, 2), date(2025, time.June, 1))
		assert.ErrorIs(t, err, ErrBirthDateInFuture)
	})

	t.Run("birth today is allowed", func(t *testing.T) {
		records, err := cal.Generate("LT-004", date(2025, time.June, 1), date(2025, time.June, 1))
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})
}

func TestDefaultCalendar(t *testing.T) {
	cal := DefaultCalendar()
	assert.Equal(t, 9, cal.Len())

	campak, ok := cal.Lookup("CAMPAK")
	require.True(t, ok)
	assert.Equal(t, 270, campak.OffsetDays)
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("WITA", 8*3600)
	in := time.Date(2025, time.March, 2, 23, 45, 12, 999, loc)
	assert.Equal(t, date(2025, time.March, 2), DateOnly(in))
}
