// Package model contains domain models passed between layers.
package model

import (
	"sort"
	"time"
)

// StepsRecord is one validated step-count observation.
type StepsRecord struct {
	ID    string    `json:"id"`    // upstream record identifier
	App   string    `json:"app"`   // originating app or device
	Count int       `json:"count"` // non-negative step count
	Start time.Time `json:"start"` // observation window start
	End   time.Time `json:"end"`   // observation window end
}

// When returns the timestamp that anchors the record to a query range:
// End when present, otherwise Start.
func (r StepsRecord) When() time.Time {
	if !r.End.IsZero() {
		return r.End
	}
	return r.Start
}

// QueryRange is a caller-supplied inclusive date range.
type QueryRange struct {
	Start time.Time
	End   time.Time
}

// Window expands the range to full-day UTC bounds: Start at 00:00:00 and
// End at 23:59:59.
func (q QueryRange) Window() (time.Time, time.Time) {
	from := time.Date(q.Start.Year(), q.Start.Month(), q.Start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(q.End.Year(), q.End.Month(), q.End.Day(), 23, 59, 59, 0, time.UTC)
	return from, to
}

// DailyTotal aggregates validated records per calendar day.
type DailyTotal struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// Totals sums records per day, ordered by date.
func Totals(records []StepsRecord) []DailyTotal {
	byDay := make(map[string]int)
	var order []string
	for _, r := range records {
		day := r.When().UTC().Format("2006-01-02")
		if _, ok := byDay[day]; !ok {
			order = append(order, day)
		}
		byDay[day] += r.Count
	}

	// Records arrive in upstream order; present totals chronologically.
	sort.Strings(order)

	out := make([]DailyTotal, 0, len(order))
	for _, day := range order {
		out = append(out, DailyTotal{Date: day, Count: byDay[day]})
	}
	return out
}
