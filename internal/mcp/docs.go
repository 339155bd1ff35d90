package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `civicreport collects citizen reports about municipal issues (potholes,
broken streetlights, trash, graffiti, water leaks) and tracks how the city responds.

Core concepts:
- Report: one issue with category, urgency, optional location and media, a routed department and a status.
- Status lifecycle: submitted -> acknowledged -> in_progress -> resolved. New reports advance on their own
  shortly after submission; administrators may also set any status directly.
- Department: assigned from the category on submission (pothole/trash -> Public Works, streetlight ->
  Transportation, graffiti -> Community Services, water -> Utilities, other -> General Services).

Typical workflow:
1) Browse: list_reports with filters (status, category, urgency, department, free text, geo radius).
2) Inspect: get_report and get_report_activity for history.
3) Act: update_report to change status, department, description or assignee.
4) Summarize: get_analytics for totals, grouped counts and the per-day series.

Docs:
- civic://docs/lifecycle (status lifecycle and automatic advancement)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "civic://docs/lifecycle",
		Name:        "docs_lifecycle",
		Title:       "Report lifecycle",
		Description: "How report statuses progress and how administrative edits interact with automatic advancement.",
		Content: `# Report lifecycle

Statuses move forward in a fixed order:

` + "`submitted` -> `acknowledged` -> `in_progress` -> `resolved`" + `

## Automatic advancement

Right after submission the server schedules three advancements, by default:

- after 1.2s: acknowledged
- after 4.2s: in_progress
- after 12s: resolved

Pending advancements live in memory only. A server restart drops them.

## Administrative edits

` + "`update_report`" + ` may set any status, including moving backwards. A scheduled
advancement still fires afterwards and overwrites the status unless the server runs with
` + "`lifecycle.cancel_on_status_edit`" + ` enabled, in which case a status edit cancels
the remaining advancements for that report.

## Filtering

` + "`list_reports`" + ` combines every supplied filter with AND. The geo radius applies only
when center_lat, center_lng and radius_km are all present; reports without a location are
then excluded.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
