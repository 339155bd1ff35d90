package report

import (
	"sort"
	"time"
)

// Totals are the headline counters of the admin dashboard.
type Totals struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Resolved int `json:"resolved"`
}

// DailyCount is the number of reports created on one UTC calendar day.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Analytics aggregates the full report set.
type Analytics struct {
	Totals      Totals           `json:"totals"`
	ByStatus    map[Status]int   `json:"byStatus"`
	ByCategory  map[Category]int `json:"byCategory"`
	ByUrgency   map[Urgency]int  `json:"byUrgency"`
	DailyCounts []DailyCount     `json:"dailyCounts"`
}

const dayLayout = "2006-01-02"

// Summarize computes grouped counts and the per-day series over reports.
func Summarize(reports []Report) Analytics {
	out := Analytics{
		ByStatus:    make(map[Status]int, len(Statuses)),
		ByCategory:  make(map[Category]int, len(Categories)),
		ByUrgency:   make(map[Urgency]int, len(Urgencies)),
		DailyCounts: []DailyCount{},
	}
	for _, s := range Statuses {
		out.ByStatus[s] = 0
	}
	for _, c := range Categories {
		out.ByCategory[c] = 0
	}
	for _, u := range Urgencies {
		out.ByUrgency[u] = 0
	}

	daily := make(map[string]int)
	for _, r := range reports {
		out.ByStatus[r.Status]++
		out.ByCategory[r.Category]++
		out.ByUrgency[r.Urgency]++
		daily[DayOf(r.CreatedAt)]++
	}

	out.Totals = Totals{
		Total:    len(reports),
		Active:   len(reports) - out.ByStatus[StatusResolved],
		Resolved: out.ByStatus[StatusResolved],
	}

	for date, count := range daily {
		out.DailyCounts = append(out.DailyCounts, DailyCount{Date: date, Count: count})
	}
	sort.Slice(out.DailyCounts, func(i, j int) bool {
		return out.DailyCounts[i].Date < out.DailyCounts[j].Date
	})
	return out
}

// DayOf returns the UTC calendar date of a millisecond timestamp.
func DayOf(createdAtMs int64) string {
	return time.UnixMilli(createdAtMs).UTC().Format(dayLayout)
}
