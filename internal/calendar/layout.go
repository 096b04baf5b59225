// Package calendar maps time-stamped events onto weekly grid coordinates.
// Layout is a pure function of (startOfWeek, slotDuration, events, now):
// recomputing with identical inputs yields identical placements.
package calendar

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
)

// Display window. Events outside 08:00-20:00 are still placed by the same
// arithmetic; rows simply fall outside the rendered range.
const (
	DayStartHour = 8
	DayEndHour   = 20

	// Row 1 is the day header, so event rows are offset by 2.
	headerOffset = 2

	StyleAvailable = "available"
)

// Event is the layout engine's view of a schedule or appointment.
type Event struct {
	ID              uuid.UUID
	Type            scheduling.EventType
	StartTime       time.Time
	DurationMinutes int
	Status          scheduling.Status // appointments only
}

// Cell is a grid placement: 1-indexed CSS-grid style coordinates with the
// first data column/row at 2.
type Cell struct {
	Column   int
	RowStart int
	RowEnd   int
	Style    string
}

// GridInterval returns the row granularity in minutes for a slot duration.
// 15- and 45-minute slots need 15-minute rows to land on row boundaries;
// 30 and 60 divide evenly into 30.
func GridInterval(slotDurationMinutes int) int {
	if slotDurationMinutes == 15 || slotDurationMinutes == 45 {
		return 15
	}
	return 30
}

// RowTime is one labeled time row of the grid.
type RowTime struct {
	Hour   int
	Minute int
}

func (r RowTime) Label() string {
	return fmt.Sprintf("%02d:%02d", r.Hour, r.Minute)
}

// TimeRows generates the row labels from 08:00 up to (not including) 20:00.
func TimeRows(gridInterval int) []RowTime {
	var rows []RowTime
	for hour := DayStartHour; hour < DayEndHour; hour++ {
		for minute := 0; minute < 60; minute += gridInterval {
			rows = append(rows, RowTime{Hour: hour, Minute: minute})
		}
	}
	return rows
}

// Place computes the grid cell for one event. The second return is false
// for events with a zero start time, which are skipped rather than placed.
func Place(e Event, startOfWeek time.Time, gridInterval int) (Cell, bool) {
	if e.StartTime.IsZero() {
		return Cell{}, false
	}

	start := e.StartTime
	dayIndex := daysBetween(startOfWeek, start)

	dayStart := time.Date(start.Year(), start.Month(), start.Day(), DayStartHour, 0, 0, 0, start.Location())
	minutesFromStart := int(start.Sub(dayStart).Minutes())

	startRow := floorDiv(minutesFromStart, gridInterval) + headerOffset
	endRow := floorDiv(minutesFromStart+e.DurationMinutes, gridInterval) + headerOffset

	return Cell{
		Column:   dayIndex + headerOffset,
		RowStart: startRow,
		RowEnd:   endRow,
		Style:    StyleFor(e),
	}, true
}

// Layout places every event of a week. Events with a zero start time are
// dropped. Overlapping events receive overlapping cells; the engine does
// not resolve them.
func Layout(startOfWeek time.Time, slotDurationMinutes int, events []Event) []Cell {
	interval := GridInterval(slotDurationMinutes)

	cells := make([]Cell, 0, len(events))
	for _, e := range events {
		if cell, ok := Place(e, startOfWeek, interval); ok {
			cells = append(cells, cell)
		}
	}
	return cells
}

// StyleFor classifies an event for rendering. Open slots share one
// "available" style; appointments are styled by status with a default
// fallback for unknown values.
func StyleFor(e Event) string {
	if e.Type == scheduling.EventTypeAppointment {
		return scheduling.StyleToken(e.Status)
	}
	return StyleAvailable
}

// IsCurrentSlot reports whether now falls inside the click-target cell
// starting at cellStart. The window is [cellStart, cellStart+duration):
// closed at the start, open at the end.
func IsCurrentSlot(now, cellStart time.Time, slotDurationMinutes int) bool {
	cellEnd := cellStart.Add(time.Duration(slotDurationMinutes) * time.Minute)
	return !now.Before(cellStart) && now.Before(cellEnd)
}

// daysBetween counts calendar days from the day of a to the day of b,
// ignoring clock time so DST shifts cannot skew the column.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// floorDiv rounds toward negative infinity so events before 08:00 still
// map monotonically.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
