package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/veloera/velo/internal/api"
	"github.com/veloera/velo/internal/config"
	"github.com/veloera/velo/internal/localstore"
	"github.com/veloera/velo/internal/playground"
	"github.com/veloera/velo/internal/pricing"
	"github.com/veloera/velo/internal/usage"
)

type viewState int

const (
	viewDashboard viewState = iota
	viewChat
	viewPricing
)

// Model is the main TUI model.
type Model struct {
	state   viewState
	cfg     *config.Config
	client  *api.Client
	store   *localstore.Store
	session *playground.Session
	colors  *usage.ColorAssigner
	help    help.Model
	width   int
	height  int
	err     string
	title   string

	// dashboard
	report       *usage.Report
	usageLoading bool
	granularity  usage.Granularity
	period       string

	// chat
	chatInput textinput.Model
	chatView  viewport.Model
	streaming bool

	// pricing
	pricingAll     []pricing.Row
	pricingRows    []pricing.Row
	pricingLoading bool
	filterInput    textinput.Model
	filtering      bool
	cursor         int
	group          string
}

// usageLoadedMsg carries a fetched and projected usage report.
type usageLoadedMsg struct {
	report usage.Report
	err    error
}

// pricingLoadedMsg carries the resolved pricing listing.
type pricingLoadedMsg struct {
	rows []pricing.Row
	err  error
}

// sessionEventMsg carries one chat session event.
type sessionEventMsg struct {
	event playground.Event
}

// Run starts the TUI.
func Run(version string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.ServerURL == "" {
		return fmt.Errorf("no gateway configured; run 'velo auth' first")
	}

	store, err := localstore.Open(filepath.Join(config.Dir(), "store.json"))
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer store.Close()

	m := newModel(cfg, store)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func newModel(cfg *config.Config, store *localstore.Store) Model {
	group := cfg.DefaultGroup
	if group == "" {
		group = "default"
	}

	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.Focus()

	filter := textinput.New()
	filter.Placeholder = "filter models"

	title := "Veloera Console"
	if name, ok := store.Get(localstore.KeySystemName); ok && name != "" {
		title = name + " Console"
	}

	params := playground.Params{
		Model:        cfg.DefaultModel,
		Group:        cfg.DefaultGroup,
		SystemPrompt: cfg.SystemPrompt,
		Temperature:  0.7,
		TopP:         1,
	}
	session := playground.NewSession(
		playground.NewStreamClient(cfg.ServerURL, cfg.AccessToken, cfg.UserID),
		params,
	)

	return Model{
		cfg:          cfg,
		client:       api.NewClient(cfg.ServerURL, cfg.AccessToken, cfg.UserID),
		store:        store,
		session:      session,
		colors:       usage.NewColorAssigner(),
		help:         help.New(),
		title:        title,
		granularity:  usage.ParseGranularity(cfg.DefaultGranularity),
		period:       "week",
		usageLoading: true,
		chatInput:    input,
		chatView:     viewport.New(80, 20),
		filterInput:  filter,
		group:        group,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadUsageCmd(m.client, m.cfg, m.granularity, m.period),
		loadPricingCmd(m.client, m.group),
		waitEventCmd(m.session),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chatView.Width = msg.Width - 6
		m.chatView.Height = msg.Height - 10
		return m, nil

	case usageLoadedMsg:
		m.usageLoading = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.report = &msg.report
		return m, nil

	case pricingLoadedMsg:
		m.pricingLoading = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.pricingAll = msg.rows
		m.pricingRows = pricing.Filter(m.pricingAll, m.filterInput.Value())
		return m, nil

	case sessionEventMsg:
		if msg.event.Kind != playground.EventDelta {
			m.streaming = false
		}
		if msg.event.Kind == playground.EventError && msg.event.Err != nil {
			m.err = msg.event.Err.Error()
		}
		m.chatView.SetContent(m.renderTranscript())
		m.chatView.GotoBottom()
		return m, waitEventCmd(m.session)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The chat input and pricing filter swallow most keys while focused.
	if m.state == viewChat {
		return m.updateChat(msg)
	}
	if m.state == viewPricing && m.filtering {
		return m.updatePricingFilter(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.state = (m.state + 1) % 3
		m.err = ""
		return m, nil
	}

	switch m.state {
	case viewDashboard:
		return m.updateDashboard(msg)
	case viewPricing:
		return m.updatePricing(msg)
	}
	return m, nil
}

func (m Model) View() string {
	var body string
	switch m.state {
	case viewDashboard:
		body = m.renderDashboard()
	case viewChat:
		body = m.renderChat()
	case viewPricing:
		body = m.renderPricing()
	}

	header := titleStyle.Render(m.title) + "  " + m.renderTabs()
	footer := helpStyle.Render(m.help.View(keys))
	if m.err != "" {
		footer = errorStyle.Render("✗ "+m.err) + "\n" + footer
	}
	return appStyle.Render(header + "\n\n" + body + "\n" + footer)
}

func (m Model) renderTabs() string {
	labels := []string{"Dashboard", "Chat", "Pricing"}
	out := ""
	for i, l := range labels {
		style := inactiveTabStyle
		if viewState(i) == m.state {
			style = activeTabStyle
		}
		if i > 0 {
			out += dimStyle.Render(" │ ")
		}
		out += style.Render(l)
	}
	return out
}

// loadUsageCmd fetches the usage window and projects it off the UI goroutine.
func loadUsageCmd(client *api.Client, cfg *config.Config, g usage.Granularity, period string) tea.Cmd {
	return func() tea.Msg {
		now := time.Now()
		from := now.AddDate(0, 0, -7)
		switch period {
		case "today":
			from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		case "month":
			from = now.AddDate(0, -1, 0)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		records, err := client.Usage(ctx, api.UsageQuery{
			Start:       from.Unix(),
			End:         now.Unix(),
			Granularity: g,
			Admin:       cfg.Admin,
		})
		if err != nil {
			return usageLoadedMsg{err: err}
		}

		minBuckets := cfg.MinChartBuckets
		if minBuckets <= 0 {
			minBuckets = usage.DefaultMinBuckets
		}
		return usageLoadedMsg{report: usage.ProjectN(records, g, now, minBuckets)}
	}
}

// loadPricingCmd fetches and resolves the pricing table.
func loadPricingCmd(client *api.Client, group string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		data, err := client.Pricing(ctx)
		if err != nil {
			return pricingLoadedMsg{err: err}
		}
		return pricingLoadedMsg{rows: pricing.Build(data, group).Rows}
	}
}

// waitEventCmd blocks on the session's event channel and re-arms itself
// from Update.
func waitEventCmd(session *playground.Session) tea.Cmd {
	return func() tea.Msg {
		return sessionEventMsg{event: <-session.Events()}
	}
}
