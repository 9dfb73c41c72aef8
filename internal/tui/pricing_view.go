package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/veloera/velo/internal/modelmeta"
	"github.com/veloera/velo/internal/pricing"
)

// updatePricing handles key events in the pricing view when the filter is
// not focused.
func (m Model) updatePricing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		m.pricingLoading = true
		return m, loadPricingCmd(m.client, m.group)
	case "/":
		m.filtering = true
		m.filterInput.Focus()
		return m, nil
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.pricingRows)-1 {
			m.cursor++
		}
		return m, nil
	}
	return m, nil
}

// updatePricingFilter handles key events while the filter input is focused.
func (m Model) updatePricingFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.pricingRows = pricing.Filter(m.pricingAll, m.filterInput.Value())
	if m.cursor >= len(m.pricingRows) {
		m.cursor = 0
	}
	return m, cmd
}

// renderPricing renders the filterable pricing table.
func (m Model) renderPricing() string {
	if m.pricingLoading {
		return dimStyle.Render("Loading pricing...")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Pricing · group %s · %d models", m.group, len(m.pricingRows))))
	b.WriteString("\n")
	if m.filtering || m.filterInput.Value() != "" {
		b.WriteString(m.filterInput.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	visible := m.height - 12
	if visible < 5 {
		visible = 5
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}

	for i := start; i < len(m.pricingRows) && i < start+visible; i++ {
		r := m.pricingRows[i]
		meta := modelmeta.Describe(r.Model, r.OwnerBy)

		var price string
		if r.QuotaType == pricing.QuotaTypeCall {
			price = fmt.Sprintf("$%s / call", r.FixedPrice)
		} else {
			price = fmt.Sprintf("in $%s/1M · out $%s/1M", r.InputPrice, r.OutputPrice)
		}

		line := fmt.Sprintf("%-34s %-10s %s", r.Model, meta.Provider, price)
		if i == m.cursor {
			b.WriteString(accentStyle.Render("› " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if len(m.pricingRows) == 0 {
		b.WriteString(warnStyle.Render("  no models matched"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("/ filter · j/k move · r refresh"))
	return b.String()
}
