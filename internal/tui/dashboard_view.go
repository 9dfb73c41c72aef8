package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/veloera/velo/internal/usage"
)

// updateDashboard handles key events in the dashboard view.
func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		m.usageLoading = true
		return m, loadUsageCmd(m.client, m.cfg, m.granularity, m.period)
	case "g":
		switch m.granularity {
		case usage.GranularityHour:
			m.granularity = usage.GranularityDay
		case usage.GranularityDay:
			m.granularity = usage.GranularityWeek
		default:
			m.granularity = usage.GranularityHour
		}
		m.usageLoading = true
		return m, loadUsageCmd(m.client, m.cfg, m.granularity, m.period)
	case "p":
		switch m.period {
		case "today":
			m.period = "week"
		case "week":
			m.period = "month"
		default:
			m.period = "today"
		}
		m.usageLoading = true
		return m, loadUsageCmd(m.client, m.cfg, m.granularity, m.period)
	}
	return m, nil
}

// renderDashboard renders totals, the spend timeline, and the per-model
// request breakdown.
func (m Model) renderDashboard() string {
	if m.usageLoading {
		return dimStyle.Render("Loading usage...")
	}
	if m.report == nil {
		return dimStyle.Render("No usage data")
	}
	report := m.report

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Usage · %s · by %s", m.period, m.granularity)))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  %s %s    %s %s    %s %s\n\n",
		dimStyle.Render("spend"), valueStyle.Render(usage.FormatQuota(report.Totals.Quota)),
		dimStyle.Render("calls"), valueStyle.Render(usage.FormatNumber(report.Totals.Count)),
		dimStyle.Render("tokens"), valueStyle.Render(usage.FormatNumber(report.Totals.Tokens)),
	))

	b.WriteString(m.renderSpendChart(report))
	b.WriteString("\n")
	b.WriteString(m.renderCategoryBars(report))
	return b.String()
}

// renderSpendChart plots per-bucket spend in display units.
func (m Model) renderSpendChart(report *usage.Report) string {
	var series []float64
	var first, last string
	seen := make(map[string]bool)
	for _, p := range report.Timeline {
		if seen[p.Time] {
			continue
		}
		seen[p.Time] = true
		if first == "" {
			first = p.Time
		}
		last = p.Time
		series = append(series, p.TimeSum/usage.QuotaPerUnit)
	}
	if len(series) == 0 {
		return dimStyle.Render("  no timeline data\n")
	}

	width := m.width - 20
	if width < 20 {
		width = 20
	}
	chart := asciigraph.Plot(series,
		asciigraph.Height(8),
		asciigraph.Width(width),
		asciigraph.Precision(2),
	)
	caption := dimStyle.Render(fmt.Sprintf("  %s … %s ($)", first, last))
	return chart + "\n" + caption + "\n"
}

// renderCategoryBars renders the per-model request counts as bars, widest
// first, using each model's sticky chart color.
func (m Model) renderCategoryBars(report *usage.Report) string {
	if len(report.Category) == 0 {
		return ""
	}
	colors := m.colors.Assign(report.Models)

	maxVal := report.Category[0].Value
	for _, e := range report.Category {
		if e.Value > maxVal {
			maxVal = e.Value
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	barWidth := m.width - 50
	if barWidth < 10 {
		barWidth = 10
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Requests by model"))
	b.WriteString("\n")
	for _, e := range report.Category {
		filled := int(e.Value / maxVal * float64(barWidth))
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(colors[e.Type])).Render(strings.Repeat("█", filled)) +
			barEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
		b.WriteString(fmt.Sprintf("  %-28s %s %s\n", e.Type, bar, valueStyle.Render(usage.FormatNumber(e.Value))))
	}
	return b.String()
}
