package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/civicreport/internal/domain/report"
)

const (
	toolCreateReport      = "create_report"
	toolListReports       = "list_reports"
	toolGetReport         = "get_report"
	toolUpdateReport      = "update_report"
	toolGetAnalytics      = "get_analytics"
	toolGetReportActivity = "get_report_activity"
)

// toolNames lists every registered tool.
var toolNames = []string{
	toolCreateReport, toolListReports, toolGetReport,
	toolUpdateReport, toolGetAnalytics, toolGetReportActivity,
}

func registerTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        toolCreateReport,
		Description: "Submit a new citizen report. The department is routed from the category and the status starts at submitted.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateReportParams) (*sdkmcp.CallToolResult, any, error) {
		rep, err := svc.Reports.Create(ctx, in.request())
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, rep, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        toolListReports,
		Description: "List reports newest first, narrowed by any combination of filters",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListReportsParams) (*sdkmcp.CallToolResult, any, error) {
		reports, err := svc.Reports.List(ctx, in.query())
		if err != nil {
			return nil, nil, toolError(err)
		}
		count := len(reports)
		if in.Limit > 0 && len(reports) > in.Limit {
			reports = reports[:in.Limit]
		}
		return nil, ListReportsResult{Reports: reports, Count: count}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        toolGetReport,
		Description: "Get a single report by id",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetReportParams) (*sdkmcp.CallToolResult, any, error) {
		rep, err := svc.Reports.Get(ctx, in.ID)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, rep, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        toolUpdateReport,
		Description: "Change a report's status, department, description or assignee. Omitted fields are left untouched.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateReportParams) (*sdkmcp.CallToolResult, any, error) {
		rep, err := svc.Reports.Update(ctx, in.request())
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, rep, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        toolGetAnalytics,
		Description: "Totals, counts by status, category and urgency, and reports per day",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ GetAnalyticsParams) (*sdkmcp.CallToolResult, any, error) {
		summary, err := svc.Reports.Analytics(ctx)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, summary, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        toolGetReportActivity,
		Description: "History of a report: submission, administrative edits and automatic status advancements",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetReportActivityParams) (*sdkmcp.CallToolResult, any, error) {
		if _, err := svc.Reports.Get(ctx, in.ID); err != nil {
			return nil, nil, toolError(err)
		}
		entries, err := svc.Activity.ForReport(ctx, in.ID, in.Limit)
		if err != nil {
			return nil, nil, toolError(err)
		}
		return nil, ReportActivityResult{ReportID: in.ID, Entries: entries}, nil
	})
}

var _ ReportService = (*report.Service)(nil)
