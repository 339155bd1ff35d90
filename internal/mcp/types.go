package mcp

import (
	"github.com/rpggio/civicreport/internal/domain/activity"
	"github.com/rpggio/civicreport/internal/domain/report"
)

type LocationParams struct {
	Lat      float64  `json:"lat" jsonschema:"latitude in decimal degrees"`
	Lng      float64  `json:"lng" jsonschema:"longitude in decimal degrees"`
	Accuracy *float64 `json:"accuracy,omitempty" jsonschema:"horizontal accuracy in meters"`
	Address  *string  `json:"address,omitempty" jsonschema:"human readable address"`
}

type CreateReportParams struct {
	Description string          `json:"description,omitempty" jsonschema:"what the citizen observed"`
	Category    string          `json:"category" jsonschema:"pothole, streetlight, trash, graffiti, water or other"`
	Urgency     string          `json:"urgency" jsonschema:"low, medium or high"`
	Location    *LocationParams `json:"location,omitempty" jsonschema:"where the issue is"`
}

type ListReportsParams struct {
	Status      string   `json:"status,omitempty" jsonschema:"exact status"`
	Category    string   `json:"category,omitempty" jsonschema:"exact category"`
	Urgency     string   `json:"urgency,omitempty" jsonschema:"exact urgency"`
	Department  string   `json:"department,omitempty" jsonschema:"exact department name"`
	Query       string   `json:"q,omitempty" jsonschema:"case-insensitive text search over description, department and assignee"`
	CenterLat   *float64 `json:"center_lat,omitempty" jsonschema:"geo radius center latitude"`
	CenterLng   *float64 `json:"center_lng,omitempty" jsonschema:"geo radius center longitude"`
	RadiusKm    *float64 `json:"radius_km,omitempty" jsonschema:"geo radius in kilometres"`
	HasLocation *bool    `json:"has_location,omitempty" jsonschema:"only reports with (true) or without (false) a location"`
	Limit       int      `json:"limit,omitempty" jsonschema:"maximum number of reports to return"`
}

type GetReportParams struct {
	ID string `json:"id" jsonschema:"report id"`
}

type UpdateReportParams struct {
	ID            string  `json:"id" jsonschema:"report id"`
	Status        *string `json:"status,omitempty" jsonschema:"new status"`
	Department    *string `json:"department,omitempty" jsonschema:"new department"`
	Description   *string `json:"description,omitempty" jsonschema:"new description"`
	Assignee      *string `json:"assignee,omitempty" jsonschema:"crew or person assigned"`
	ClearAssignee bool    `json:"clear_assignee,omitempty" jsonschema:"remove the current assignee"`
}

type GetAnalyticsParams struct{}

type GetReportActivityParams struct {
	ID    string `json:"id" jsonschema:"report id"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of entries, newest first"`
}

type ListReportsResult struct {
	Reports []report.Report `json:"reports"`
	Count   int             `json:"count"`
}

type ReportActivityResult struct {
	ReportID string                   `json:"report_id"`
	Entries  []activity.ActivityEntry `json:"entries"`
}

func (p ListReportsParams) query() report.Query {
	q := report.Query{
		CenterLat:   p.CenterLat,
		CenterLng:   p.CenterLng,
		RadiusKm:    p.RadiusKm,
		HasLocation: p.HasLocation,
	}
	if p.Status != "" {
		s := report.Status(p.Status)
		q.Status = &s
	}
	if p.Category != "" {
		c := report.Category(p.Category)
		q.Category = &c
	}
	if p.Urgency != "" {
		u := report.Urgency(p.Urgency)
		q.Urgency = &u
	}
	if p.Department != "" {
		d := p.Department
		q.Department = &d
	}
	if p.Query != "" {
		text := p.Query
		q.Text = &text
	}
	return q
}

func (p CreateReportParams) request() report.CreateRequest {
	req := report.CreateRequest{
		Description: p.Description,
		Category:    report.Category(p.Category),
		Urgency:     report.Urgency(p.Urgency),
	}
	if p.Location != nil {
		req.Location = &report.Location{
			Lat:      p.Location.Lat,
			Lng:      p.Location.Lng,
			Accuracy: p.Location.Accuracy,
			Address:  p.Location.Address,
		}
	}
	return req
}

func (p UpdateReportParams) request() report.UpdateRequest {
	req := report.UpdateRequest{
		ID:            p.ID,
		Department:    p.Department,
		Description:   p.Description,
		Assignee:      p.Assignee,
		ClearAssignee: p.ClearAssignee,
	}
	if p.Status != nil {
		s := report.Status(*p.Status)
		req.Status = &s
	}
	return req
}
