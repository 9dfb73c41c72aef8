package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/veloera/velo/internal/api"
	"github.com/veloera/velo/internal/config"
	"github.com/veloera/velo/internal/history"
	"github.com/veloera/velo/internal/logger"
	"github.com/veloera/velo/internal/notify"
	"github.com/veloera/velo/internal/output"
	"github.com/veloera/velo/internal/ui"
	"github.com/veloera/velo/internal/usage"
)

var (
	usagePeriod      string
	usageGranularity string
	usageUser        string
	usageOffline     bool
	usageNotify      bool
)

var UsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show model usage, spend, and the bucketed timeline",
	Run: func(cmd *cobra.Command, args []string) {
		RunUsage(usagePeriod, usageGranularity, usageUser)
	},
}

func init() {
	UsageCmd.Flags().StringVar(&usagePeriod, "period", "week", "Time period: today, week, month")
	UsageCmd.Flags().StringVar(&usageGranularity, "granularity", "", "Bucket size: hour, day, week")
	UsageCmd.Flags().StringVar(&usageUser, "user", "", "Username to query (admin only)")
	UsageCmd.Flags().BoolVar(&usageOffline, "offline", false, "Render from the local cache without contacting the gateway")
	UsageCmd.Flags().BoolVar(&usageNotify, "notify", false, "Send the summary to the configured notifiers")
}

// RunUsage fetches the usage window, caches it locally, and renders the
// projected report.
func RunUsage(period, granularity, username string) {
	initLogger()
	cfg := loadConfig()

	if granularity == "" {
		granularity = cfg.DefaultGranularity
	}
	g := usage.ParseGranularity(granularity)
	from, to := periodRange(period)

	records, err := fetchOrLoadRecords(cfg, from, to, g, username)
	if err != nil {
		handleAPIError(err)
		return
	}

	minBuckets := cfg.MinChartBuckets
	if minBuckets <= 0 {
		minBuckets = usage.DefaultMinBuckets
	}
	report := usage.ProjectN(records, g, to, minBuckets)

	if usageNotify {
		n := newNotifier(cfg)
		err := n.Send(context.Background(), notify.Notification{
			Title: "Usage " + period,
			Body:  fmt.Sprintf("%s spent over %s calls", usage.FormatQuota(report.Totals.Quota), usage.FormatNumber(report.Totals.Count)),
		})
		if err != nil {
			logger.Warn("notification delivery failed", "err", err)
		}
	}

	output.Print(report, func() { printUsageText(report, period, g) })
}

func fetchOrLoadRecords(cfg *config.Config, from, to time.Time, g usage.Granularity, username string) ([]usage.Record, error) {
	store, err := history.Open(filepath.Join(config.Dir(), "history.db"))
	if err != nil {
		return nil, fmt.Errorf("open usage cache: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	if usageOffline {
		return store.Load(ctx, from.Unix(), to.Unix())
	}

	requireGateway(cfg)
	client := newClient(cfg)
	records, err := client.Usage(ctx, api.UsageQuery{
		Username:    username,
		Start:       from.Unix(),
		End:         to.Unix(),
		Granularity: g,
		Admin:       cfg.Admin,
	})
	if err != nil {
		return nil, err
	}
	if err := store.Save(ctx, records); err != nil {
		logger.Warn("usage cache write failed", "err", err)
	}
	return records, nil
}

func printUsageText(report usage.Report, period string, g usage.Granularity) {
	ui.ShowHeader(fmt.Sprintf("Usage (%s, by %s)", period, g))
	ui.ShowKeyValue("spend", usage.FormatQuota(report.Totals.Quota))
	ui.ShowKeyValue("calls", usage.FormatNumber(report.Totals.Count))
	ui.ShowKeyValue("tokens", usage.FormatNumber(report.Totals.Tokens))
	fmt.Println()

	for i, entry := range report.Category {
		ui.ShowListItem(i+1, fmt.Sprintf("%-30s %s calls", entry.Type, usage.FormatNumber(entry.Value)))
	}
	fmt.Println()

	// One line per bucket; the per-model split lives in the TUI chart.
	printed := make(map[string]bool)
	for _, p := range report.Timeline {
		if printed[p.Time] {
			continue
		}
		printed[p.Time] = true
		fmt.Printf("  %-18s %s\n", p.Time, usage.FormatQuota(p.TimeSum))
	}
}

func periodRange(period string) (time.Time, time.Time) {
	now := time.Now()
	switch period {
	case "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), now
	case "month":
		return now.AddDate(0, -1, 0), now
	default:
		return now.AddDate(0, 0, -7), now
	}
}
