package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeReportCreated         ActivityType = "report_created"
	TypeReportUpdated         ActivityType = "report_updated"
	TypeStatusAdvanced        ActivityType = "status_advanced"
	TypeAdvancementsCancelled ActivityType = "advancements_cancelled"
)

// ActivityEntry represents an event in a report's history.
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ReportID     string       `json:"reportId"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"createdAt"`
}
