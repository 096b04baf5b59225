package calendar

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

// Monday 2025-07-21.
var weekStart = time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC)

func event(day, hour, minute, duration int) Event {
	start := weekStart.AddDate(0, 0, day).Add(
		time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	return Event{
		ID:              uuid.New(),
		Type:            scheduling.EventTypeSchedule,
		StartTime:       start,
		DurationMinutes: duration,
	}
}

func TestGridInterval(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 15, GridInterval(15))
	assert.Equal(t, 30, GridInterval(30))
	assert.Equal(t, 15, GridInterval(45))
	assert.Equal(t, 30, GridInterval(60))
}

func TestTimeRows(t *testing.T) {
	t.Parallel()

	rows30 := TimeRows(30)
	require.Len(t, rows30, 24)
	assert.Equal(t, "08:00", rows30[0].Label())
	assert.Equal(t, "08:30", rows30[1].Label())
	assert.Equal(t, "19:30", rows30[len(rows30)-1].Label())

	rows15 := TimeRows(15)
	require.Len(t, rows15, 48)
	assert.Equal(t, "08:15", rows15[1].Label())
}

func TestPlace_MondayMorning(t *testing.T) {
	t.Parallel()

	// Monday 10:00, 30 minutes, 30-minute grid: 120 minutes past 08:00
	// is row index 4, plus the header offset.
	cell, ok := Place(event(0, 10, 0, 30), weekStart, 30)
	require.True(t, ok)
	assert.Equal(t, 2, cell.Column)
	assert.Equal(t, 6, cell.RowStart)
	assert.Equal(t, 7, cell.RowEnd)
}

func TestPlace_ColumnsFollowDays(t *testing.T) {
	t.Parallel()

	for day := 0; day < 7; day++ {
		cell, ok := Place(event(day, 8, 0, 30), weekStart, 30)
		require.True(t, ok)
		assert.Equal(t, day+2, cell.Column)
		assert.Equal(t, 2, cell.RowStart, "08:00 is the first data row")
	}
}

func TestPlace_FifteenMinuteGrid(t *testing.T) {
	t.Parallel()

	// Wednesday 09:45, 45 minutes on a 15-minute grid.
	cell, ok := Place(event(2, 9, 45, 45), weekStart, 15)
	require.True(t, ok)
	assert.Equal(t, 4, cell.Column)
	assert.Equal(t, 9, cell.RowStart)
	assert.Equal(t, 12, cell.RowEnd)
}

func TestPlace_RowStartAlwaysBeforeRowEnd(t *testing.T) {
	t.Parallel()

	for _, duration := range []int{15, 30, 45, 60} {
		interval := GridInterval(duration)
		for hour := DayStartHour; hour < DayEndHour; hour++ {
			cell, ok := Place(event(0, hour, 0, duration), weekStart, interval)
			require.True(t, ok)
			assert.Less(t, cell.RowStart, cell.RowEnd,
				"duration=%d hour=%d", duration, hour)
		}
	}
}

func TestPlace_BeforeDayStartStaysMonotonic(t *testing.T) {
	t.Parallel()

	early, ok := Place(event(0, 7, 0, 30), weekStart, 30)
	require.True(t, ok)
	first, ok := Place(event(0, 8, 0, 30), weekStart, 30)
	require.True(t, ok)
	assert.Less(t, early.RowStart, first.RowStart)
}

func TestPlace_SkipsZeroStartTime(t *testing.T) {
	t.Parallel()

	_, ok := Place(Event{ID: uuid.New(), DurationMinutes: 30}, weekStart, 30)
	assert.False(t, ok)
}

func TestLayout_Deterministic(t *testing.T) {
	t.Parallel()

	events := []Event{
		event(0, 10, 0, 30),
		event(3, 14, 30, 30),
		{ID: uuid.New()}, // zero start, dropped
	}

	first := Layout(weekStart, 30, events)
	second := Layout(weekStart, 30, events)

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
}

func TestStyleFor(t *testing.T) {
	t.Parallel()

	slot := event(0, 10, 0, 30)
	assert.Equal(t, StyleAvailable, StyleFor(slot))

	appt := slot
	appt.Type = scheduling.EventTypeAppointment
	appt.Status = scheduling.StatusConfirmado
	assert.Equal(t, "status-confirmado", StyleFor(appt))

	appt.Status = scheduling.Status("???")
	assert.Equal(t, "status-default", StyleFor(appt))
}

func TestIsCurrentSlot(t *testing.T) {
	t.Parallel()

	cellStart := time.Date(2025, 7, 21, 10, 0, 0, 0, time.UTC)

	assert.True(t, IsCurrentSlot(cellStart, cellStart, 30), "window is closed at the start")
	assert.True(t, IsCurrentSlot(cellStart.Add(10*time.Minute), cellStart, 30))
	assert.False(t, IsCurrentSlot(cellStart.Add(-time.Minute), cellStart, 30))
	assert.False(t, IsCurrentSlot(cellStart.Add(30*time.Minute), cellStart, 30), "window is open at the end")
	assert.False(t, IsCurrentSlot(cellStart.Add(31*time.Minute), cellStart, 30))
}
