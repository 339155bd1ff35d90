package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rpggio/civicreport/internal/domain/report"
)

var errBadQuery = errors.New("invalid query parameter")

// parseQuery builds a filter from the list endpoint's query string.
// Empty values impose no constraint.
func parseQuery(values url.Values) (report.Query, error) {
	var q report.Query

	if v := values.Get("status"); v != "" {
		s := report.Status(v)
		q.Status = &s
	}
	if v := values.Get("category"); v != "" {
		c := report.Category(v)
		q.Category = &c
	}
	if v := values.Get("urgency"); v != "" {
		u := report.Urgency(v)
		q.Urgency = &u
	}
	if v := values.Get("department"); v != "" {
		q.Department = &v
	}
	if v := values.Get("q"); v != "" {
		q.Text = &v
	}

	var err error
	if q.CenterLat, err = parseFloatParam(values, "centerLat"); err != nil {
		return q, err
	}
	if q.CenterLng, err = parseFloatParam(values, "centerLng"); err != nil {
		return q, err
	}
	if q.RadiusKm, err = parseFloatParam(values, "radiusKm"); err != nil {
		return q, err
	}
	if v := values.Get("hasLocation"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return q, fmt.Errorf("%w: hasLocation", errBadQuery)
		}
		q.HasLocation = &b
	}
	return q, nil
}

func parseFloatParam(values url.Values, name string) (*float64, error) {
	v := values.Get(name)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errBadQuery, name)
	}
	return &f, nil
}

// createReportBody is the JSON form of a submission. Media travels as data URLs.
type createReportBody struct {
	Description  string           `json:"description"`
	Category     report.Category  `json:"category"`
	Urgency      report.Urgency   `json:"urgency"`
	Location     *report.Location `json:"location"`
	PhotoDataURL *string          `json:"photoDataUrl"`
	AudioDataURL *string          `json:"audioDataUrl"`
}

// optionalString tells an absent field apart from an explicit null.
type optionalString struct {
	Set   bool
	Null  bool
	Value string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// updateReportBody is a partial update. "assignee": null clears the assignee.
type updateReportBody struct {
	Status      *report.Status `json:"status"`
	Assignee    optionalString `json:"assignee"`
	Department  *string        `json:"department"`
	Description *string        `json:"description"`
}

func (b updateReportBody) toRequest(id string) report.UpdateRequest {
	req := report.UpdateRequest{
		ID:          id,
		Status:      b.Status,
		Department:  b.Department,
		Description: b.Description,
	}
	if b.Assignee.Set {
		if b.Assignee.Null {
			req.ClearAssignee = true
		} else {
			v := b.Assignee.Value
			req.Assignee = &v
		}
	}
	return req
}
