package view

import (
	"time"

	"github.com/dukerupert/famdash/internal/model"
)

// EventRow is one line of the events card.
type EventRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time,omitempty"`
	Description string `json:"description,omitempty"`
}

// Label renders the row headline: "Picnic - 6/10/2024 at 2:00 PM". The
// " at ..." suffix only appears when the event has a time.
func (r EventRow) Label() string {
	label := r.Title + " - " + r.Date
	if r.Time != "" {
		label += " at " + r.Time
	}
	return label
}

func EventRows(events []model.Event, loc *time.Location) []EventRow {
	rows := make([]EventRow, 0, len(events))
	for _, e := range events {
		row := EventRow{
			ID:          e.ID,
			Title:       e.Title,
			Date:        FormatDate(e.Date, loc),
			Description: e.Description,
		}
		if e.Time != nil {
			row.Time = FormatTime12h(*e.Time)
		}
		rows = append(rows, row)
	}
	return rows
}
