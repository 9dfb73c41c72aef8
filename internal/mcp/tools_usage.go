package mcpserver

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veloera/velo/internal/api"
	"github.com/veloera/velo/internal/config"
	"github.com/veloera/velo/internal/usage"
)

// registerUsageTools registers usage-related MCP tools.
func registerUsageTools(server *mcpsdk.Server, client *api.Client, cfg *config.Config) {
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "usage_summary",
		Description: "Get model usage totals and per-model request counts for a time period (today, week, month)",
	}, usageSummaryHandler(client, cfg))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "usage_timeline",
		Description: "Get the bucketed usage timeline (per-bucket, per-model spend) for a time period",
	}, usageTimelineHandler(client, cfg))
}

type usageSummaryInput struct {
	Period      string `json:"period" jsonschema:"Time period: today, week, month (default: week)"`
	Granularity string `json:"granularity" jsonschema:"Bucket size: hour, day, week (default: from config)"`
}

type usageSummaryOutput struct {
	Period     string                `json:"period"`
	TotalSpend string                `json:"totalSpend"`
	TotalCalls float64               `json:"totalCalls"`
	Tokens     float64               `json:"tokens"`
	ByModel    []usage.CategoryEntry `json:"byModel"`
}

func usageSummaryHandler(client *api.Client, cfg *config.Config) func(context.Context, *mcpsdk.CallToolRequest, usageSummaryInput) (*mcpsdk.CallToolResult, usageSummaryOutput, error) {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input usageSummaryInput) (*mcpsdk.CallToolResult, usageSummaryOutput, error) {
		report, err := fetchReport(ctx, client, cfg, input.Period, input.Granularity)
		if err != nil {
			return nil, usageSummaryOutput{}, err
		}

		output := usageSummaryOutput{
			Period:     periodOrDefault(input.Period),
			TotalSpend: usage.FormatQuota(report.Totals.Quota),
			TotalCalls: report.Totals.Count,
			Tokens:     report.Totals.Tokens,
			ByModel:    report.Category,
		}
		return nil, output, nil
	}
}

type usageTimelineInput struct {
	Period      string `json:"period" jsonschema:"Time period: today, week, month (default: week)"`
	Granularity string `json:"granularity" jsonschema:"Bucket size: hour, day, week (default: from config)"`
}

type usageTimelineOutput struct {
	Granularity string            `json:"granularity"`
	Timeline    []usage.TimePoint `json:"timeline"`
}

func usageTimelineHandler(client *api.Client, cfg *config.Config) func(context.Context, *mcpsdk.CallToolRequest, usageTimelineInput) (*mcpsdk.CallToolResult, usageTimelineOutput, error) {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input usageTimelineInput) (*mcpsdk.CallToolResult, usageTimelineOutput, error) {
		report, err := fetchReport(ctx, client, cfg, input.Period, input.Granularity)
		if err != nil {
			return nil, usageTimelineOutput{}, err
		}
		g := usage.ParseGranularity(granularityOrDefault(input.Granularity, cfg))
		return nil, usageTimelineOutput{Granularity: string(g), Timeline: report.Timeline}, nil
	}
}

func fetchReport(ctx context.Context, client *api.Client, cfg *config.Config, period, granularity string) (*usage.Report, error) {
	g := usage.ParseGranularity(granularityOrDefault(granularity, cfg))
	from, to := parseTimeRange(period)

	records, err := client.Usage(ctx, api.UsageQuery{
		Start:       from.Unix(),
		End:         to.Unix(),
		Granularity: g,
		Admin:       cfg.Admin,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch usage: %w", err)
	}
	report := usage.Project(records, g, to)
	return &report, nil
}

func granularityOrDefault(g string, cfg *config.Config) string {
	if g != "" {
		return g
	}
	return cfg.DefaultGranularity
}

func periodOrDefault(period string) string {
	if period == "" {
		return "week"
	}
	return period
}

// parseTimeRange converts a period string to a time range.
func parseTimeRange(period string) (time.Time, time.Time) {
	now := time.Now()
	switch period {
	case "today":
		from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return from, now
	case "month":
		return now.AddDate(0, -1, 0), now
	default:
		return now.AddDate(0, 0, -7), now
	}
}
