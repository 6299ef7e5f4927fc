// Package display renders analytics results as plain text rows for the CLI
// and for chat notifications.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/rewired-gh/pooptracker/internal/analytics"
	"github.com/rewired-gh/pooptracker/internal/history"
	"github.com/rewired-gh/pooptracker/internal/models"
)

// DateLayout matches the timestamp style used across the app,
// e.g. "Wed, Jan 10, 2024 3:00 PM".
const DateLayout = "Mon, Jan 2, 2006 3:04 PM"

const barWidth = 20

// FormatTime renders an event timestamp in zone.
func FormatTime(millis int64, zone *time.Location) string {
	if zone == nil {
		zone = time.Local
	}
	return time.UnixMilli(millis).In(zone).Format(DateLayout)
}

// HistoryRows renders one line per event, most recent first.
func HistoryRows(h history.History, now int64, zone *time.Location) []string {
	if len(h) == 0 {
		return []string{"No entries yet"}
	}
	rows := make([]string, 0, len(h))
	for i, event := range h {
		rows = append(rows, fmt.Sprintf("#%d  %s  Type %d  (%s)",
			i+1, FormatTime(event.Timestamp, zone), event.BristolType, analytics.ElapsedSince(event.Timestamp, now)))
	}
	return rows
}

// Status is the labelled status block shown at the top of the app.
type Status struct {
	Last         string
	StoolType    string
	Regularity   string
	Constipation string
}

// StatusOf converts a summary into display strings.
func StatusOf(s analytics.Summary, zone *time.Location) Status {
	if !s.HasData() {
		return Status{
			Last:         "No entries yet",
			StoolType:    "No data yet",
			Regularity:   s.Regularity.String(),
			Constipation: "No data yet",
		}
	}

	constipation := s.Risk.String()
	if s.Risk != analytics.RiskNone {
		constipation = fmt.Sprintf("%s (last movement %s)", s.Risk, s.Elapsed)
	}

	return Status{
		Last:         fmt.Sprintf("%s (%s)", FormatTime(s.Last.Timestamp, zone), s.Elapsed),
		StoolType:    models.BristolLabel(s.Last.BristolType),
		Regularity:   s.Regularity.String(),
		Constipation: constipation,
	}
}

// Lines renders the status block as "Label: value" lines.
func (st Status) Lines() []string {
	return []string{
		"Last movement: " + st.Last,
		"Stool type:    " + st.StoolType,
		"Regularity:    " + st.Regularity,
		"Constipation:  " + st.Constipation,
	}
}

// Chart renders buckets as horizontal bars scaled to the largest count.
func Chart(buckets []models.ChartBucket) []string {
	maxCount := 0
	labelWidth := 0
	for _, b := range buckets {
		if b.Count > maxCount {
			maxCount = b.Count
		}
		if len(b.Label) > labelWidth {
			labelWidth = len(b.Label)
		}
	}
	scale := maxCount
	if scale < 1 {
		scale = 1
	}

	rows := make([]string, 0, len(buckets))
	for _, b := range buckets {
		filled := b.Count * barWidth / scale
		bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
		rows = append(rows, fmt.Sprintf("%-*s  %s  %d", labelWidth, b.Label, bar, b.Count))
	}
	return rows
}
