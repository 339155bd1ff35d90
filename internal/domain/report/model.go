package report

// Status represents a report's position in the municipal response lifecycle
type Status string

const (
	StatusSubmitted    Status = "submitted"
	StatusAcknowledged Status = "acknowledged"
	StatusInProgress   Status = "in_progress"
	StatusResolved     Status = "resolved"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusSubmitted, StatusAcknowledged, StatusInProgress, StatusResolved}

// Category is the kind of issue a citizen reported
type Category string

const (
	CategoryPothole     Category = "pothole"
	CategoryStreetlight Category = "streetlight"
	CategoryTrash       Category = "trash"
	CategoryGraffiti    Category = "graffiti"
	CategoryWater       Category = "water"
	CategoryOther       Category = "other"
)

// Categories lists every known category.
var Categories = []Category{
	CategoryPothole,
	CategoryStreetlight,
	CategoryTrash,
	CategoryGraffiti,
	CategoryWater,
	CategoryOther,
}

// Urgency is the citizen-assessed urgency of a report
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Urgencies lists every known urgency.
var Urgencies = []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh}

// Valid reports whether s is one of the lifecycle statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Next returns the status that follows s, and false when s is terminal or unknown.
func (s Status) Next() (Status, bool) {
	for i, known := range Statuses {
		if s == known && i+1 < len(Statuses) {
			return Statuses[i+1], true
		}
	}
	return "", false
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (u Urgency) Valid() bool {
	for _, known := range Urgencies {
		if u == known {
			return true
		}
	}
	return false
}

// Location is where the reporter was when submitting
type Location struct {
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Accuracy *float64 `json:"accuracy,omitempty"`
	Address  *string  `json:"address,omitempty"`
}

// Report is a single citizen-submitted issue
type Report struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Urgency     Urgency   `json:"urgency"`
	PhotoURL    *string   `json:"photoUrl"`
	AudioURL    *string   `json:"audioUrl"`
	Location    *Location `json:"location"`
	CreatedAt   int64     `json:"createdAt"`
	Status      Status    `json:"status"`
	Department  string    `json:"department"`
	Assignee    *string   `json:"assignee"`
}

// Clone returns a deep copy so callers never share pointers with the store.
func (r Report) Clone() Report {
	out := r
	out.PhotoURL = cloneString(r.PhotoURL)
	out.AudioURL = cloneString(r.AudioURL)
	out.Assignee = cloneString(r.Assignee)
	if r.Location != nil {
		loc := *r.Location
		if r.Location.Accuracy != nil {
			acc := *r.Location.Accuracy
			loc.Accuracy = &acc
		}
		loc.Address = cloneString(r.Location.Address)
		out.Location = &loc
	}
	return out
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Status      *Status
	Department  *string
	Description *string
	Assignee    *string
	// ClearAssignee unsets the assignee and wins over Assignee.
	ClearAssignee bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Status == nil && p.Department == nil && p.Description == nil && p.Assignee == nil && !p.ClearAssignee
}

// Apply merges the patch onto r in place.
func (p Patch) Apply(r *Report) {
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Department != nil {
		r.Department = *p.Department
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.ClearAssignee {
		r.Assignee = nil
	} else if p.Assignee != nil {
		r.Assignee = cloneString(p.Assignee)
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
