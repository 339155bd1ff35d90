package report

import "strings"

// Query selects reports. Nil fields impose no constraint; all set fields must match.
type Query struct {
	Status      *Status
	Category    *Category
	Urgency     *Urgency
	Department  *string
	Text        *string
	CenterLat   *float64
	CenterLng   *float64
	RadiusKm    *float64
	HasLocation *bool
}

// Radius reports whether the geo-radius predicate is active.
func (q Query) Radius() bool {
	return q.CenterLat != nil && q.CenterLng != nil && q.RadiusKm != nil
}

// Filter returns the reports matching every predicate in q, in input order.
func Filter(reports []Report, q Query) []Report {
	out := make([]Report, 0, len(reports))
	for _, r := range reports {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether r satisfies every predicate set in q.
func (q Query) Matches(r Report) bool {
	if q.Status != nil && r.Status != *q.Status {
		return false
	}
	if q.Category != nil && r.Category != *q.Category {
		return false
	}
	if q.Urgency != nil && r.Urgency != *q.Urgency {
		return false
	}
	if q.Department != nil && r.Department != *q.Department {
		return false
	}
	if q.Text != nil && *q.Text != "" {
		if !strings.Contains(strings.ToLower(haystack(r)), strings.ToLower(*q.Text)) {
			return false
		}
	}
	if q.HasLocation != nil && (r.Location != nil) != *q.HasLocation {
		return false
	}
	if q.Radius() {
		if r.Location == nil {
			return false
		}
		if HaversineKm(*q.CenterLat, *q.CenterLng, r.Location.Lat, r.Location.Lng) > *q.RadiusKm {
			return false
		}
	}
	return true
}

func haystack(r Report) string {
	assignee := ""
	if r.Assignee != nil {
		assignee = *r.Assignee
	}
	return r.Description + " " + r.Department + " " + assignee
}
