package report_test

import (
	"testing"

	"github.com/rpggio/civicreport/internal/domain/report"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sampleReports() []report.Report {
	return []report.Report{
		{
			ID: "a", Description: "Deep pothole on Main St", Category: report.CategoryPothole,
			Urgency: report.UrgencyHigh, Status: report.StatusSubmitted,
			Department: report.DepartmentPublicWorks, Location: &report.Location{Lat: 40.0, Lng: -75.0},
		},
		{
			ID: "b", Description: "Streetlight out", Category: report.CategoryStreetlight,
			Urgency: report.UrgencyMedium, Status: report.StatusResolved,
			Department: report.DepartmentTransportation, Assignee: ptr("Dana Crew"),
			Location: &report.Location{Lat: 40.045, Lng: -75.0},
		},
		{
			ID: "c", Description: "Graffiti on wall", Category: report.CategoryGraffiti,
			Urgency: report.UrgencyLow, Status: report.StatusInProgress,
			Department: report.DepartmentCommunityServices,
		},
	}
}

func ids(reports []report.Report) []string {
	out := make([]string, 0, len(reports))
	for _, r := range reports {
		out = append(out, r.ID)
	}
	return out
}

func TestFilter_EmptyQueryReturnsInput(t *testing.T) {
	reports := sampleReports()
	require.Equal(t, reports, report.Filter(reports, report.Query{}))

	empty := report.Filter(nil, report.Query{})
	require.NotNil(t, empty)
	require.Empty(t, empty)
}

func TestFilter_ExactMatches(t *testing.T) {
	reports := sampleReports()

	require.Equal(t, []string{"b"}, ids(report.Filter(reports, report.Query{Status: ptr(report.StatusResolved)})))
	require.Equal(t, []string{"c"}, ids(report.Filter(reports, report.Query{Category: ptr(report.CategoryGraffiti)})))
	require.Equal(t, []string{"a"}, ids(report.Filter(reports, report.Query{Urgency: ptr(report.UrgencyHigh)})))
	require.Equal(t, []string{"b"}, ids(report.Filter(reports, report.Query{Department: ptr(report.DepartmentTransportation)})))
}

func TestFilter_TextSearch(t *testing.T) {
	reports := sampleReports()

	require.Equal(t, []string{"a"}, ids(report.Filter(reports, report.Query{Text: ptr("POTHOLE")})))
	require.Equal(t, []string{"b"}, ids(report.Filter(reports, report.Query{Text: ptr("dana")})))
	require.Equal(t, []string{"c"}, ids(report.Filter(reports, report.Query{Text: ptr("community")})))
	require.Equal(t, []string{"a", "b", "c"}, ids(report.Filter(reports, report.Query{Text: ptr("")})))
}

func TestFilter_HasLocation(t *testing.T) {
	reports := sampleReports()

	require.Equal(t, []string{"a", "b"}, ids(report.Filter(reports, report.Query{HasLocation: ptr(true)})))
	require.Equal(t, []string{"c"}, ids(report.Filter(reports, report.Query{HasLocation: ptr(false)})))
}

func TestFilter_GeoRadius(t *testing.T) {
	reports := sampleReports()

	// a and b are about 5 km apart.
	q := report.Query{CenterLat: ptr(40.0), CenterLng: ptr(-75.0), RadiusKm: ptr(1.0)}
	require.Equal(t, []string{"a"}, ids(report.Filter(reports, q)))

	q.RadiusKm = ptr(10.0)
	require.Equal(t, []string{"a", "b"}, ids(report.Filter(reports, q)))

	// Partial geo parameters impose no constraint.
	partial := report.Query{CenterLat: ptr(40.0), RadiusKm: ptr(1.0)}
	require.Len(t, report.Filter(reports, partial), 3)
}

func TestFilter_GeoBoundaryInclusive(t *testing.T) {
	reports := sampleReports()
	d := report.HaversineKm(40.0, -75.0, 40.045, -75.0)

	q := report.Query{CenterLat: ptr(40.0), CenterLng: ptr(-75.0), RadiusKm: ptr(d)}
	require.Equal(t, []string{"a", "b"}, ids(report.Filter(reports, q)))
}

func TestFilter_PredicatesNeverGrowResult(t *testing.T) {
	reports := sampleReports()
	queries := []report.Query{
		{},
		{HasLocation: ptr(true)},
		{HasLocation: ptr(true), Urgency: ptr(report.UrgencyHigh)},
		{HasLocation: ptr(true), Urgency: ptr(report.UrgencyHigh), Text: ptr("main")},
		{
			HasLocation: ptr(true), Urgency: ptr(report.UrgencyHigh), Text: ptr("main"),
			CenterLat: ptr(40.0), CenterLng: ptr(-75.0), RadiusKm: ptr(0.5),
		},
	}

	prev := len(reports)
	for _, q := range queries {
		got := report.Filter(reports, q)
		require.LessOrEqual(t, len(got), prev)
		prev = len(got)
	}
	require.Equal(t, 1, prev)
}

func TestHaversineKm(t *testing.T) {
	require.InDelta(t, 0, report.HaversineKm(10, 20, 10, 20), 1e-9)
	// One degree of latitude is roughly 111.19 km.
	require.InDelta(t, 111.19, report.HaversineKm(0, 0, 1, 0), 0.01)
}
