package client

import (
	"time"

	"github.com/nutriagenda/scheduling-portal/internal/calendar"
)

// WeekCell pairs a fetched event with its computed grid placement.
type WeekCell struct {
	Event CalendarEvent
	Cell  calendar.Cell
}

// WeekLayout places the calendar domain's events on the weekly grid for
// rendering. Events without a start time are dropped, matching the layout
// engine's contract.
func (s *Store) WeekLayout(startOfWeek time.Time, slotDurationMinutes int) []WeekCell {
	d := s.Calendar()
	interval := calendar.GridInterval(slotDurationMinutes)

	out := make([]WeekCell, 0, len(d.Content))
	for _, e := range d.Content {
		cell, ok := calendar.Place(calendar.Event{
			ID:              e.ID,
			Type:            e.Type,
			StartTime:       e.StartTime,
			DurationMinutes: e.DurationMinutes,
			Status:          e.Status,
		}, startOfWeek, interval)
		if !ok {
			continue
		}
		out = append(out, WeekCell{Event: e, Cell: cell})
	}
	return out
}

// TimeColumn returns the row labels for the grid at the given granularity.
func TimeColumn(slotDurationMinutes int) []calendar.RowTime {
	return calendar.TimeRows(calendar.GridInterval(slotDurationMinutes))
}
