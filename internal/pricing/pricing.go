// Package pricing turns the gateway's ratio-based pricing table into
// effective per-group prices.
package pricing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/veloera/velo/internal/api"
)

// Billing types as stored in the pricing table.
const (
	QuotaTypeToken = 0
	QuotaTypeCall  = 1
)

var two = decimal.NewFromInt(2)

// Row is one model's effective pricing under a chosen group.
type Row struct {
	Model           string
	QuotaType       int
	OwnerBy         string
	Groups          []string
	InputPrice      decimal.Decimal
	OutputPrice     decimal.Decimal
	FixedPrice      decimal.Decimal
	CompletionRatio float64
}

// Listing is a pricing table resolved against one group ratio.
type Listing struct {
	Group string
	Rows  []Row
}

// TokenPrices computes the per-million-token input and output prices for a
// ratio-billed model. A model ratio of 1 corresponds to $2 per million input
// tokens before the group multiplier; output scales by the completion ratio.
func TokenPrices(modelRatio, completionRatio, groupRatio float64) (input, output decimal.Decimal) {
	input = decimal.NewFromFloat(modelRatio).Mul(two).Mul(decimal.NewFromFloat(groupRatio))
	output = input.Mul(decimal.NewFromFloat(completionRatio))
	return input, output
}

// CallPrice computes the fixed per-call price for a price-billed model.
func CallPrice(modelPrice, groupRatio float64) decimal.Decimal {
	return decimal.NewFromFloat(modelPrice).Mul(decimal.NewFromFloat(groupRatio))
}

// Build resolves the raw pricing data against the given group. Models not
// enabled for the group are skipped; a model with no enable_groups list is
// treated as enabled everywhere.
func Build(data *api.PricingData, group string) Listing {
	ratio, ok := data.GroupRatio[group]
	if !ok {
		ratio = 1
	}

	rows := make([]Row, 0, len(data.Models))
	for _, m := range data.Models {
		if !enabledFor(m, group) {
			continue
		}
		row := Row{
			Model:           m.ModelName,
			QuotaType:       m.QuotaType,
			OwnerBy:         m.OwnerBy,
			Groups:          m.EnableGroups,
			CompletionRatio: m.CompletionRatio,
		}
		if m.QuotaType == QuotaTypeCall {
			row.FixedPrice = CallPrice(m.ModelPrice, ratio)
		} else {
			row.InputPrice, row.OutputPrice = TokenPrices(m.ModelRatio, m.CompletionRatio, ratio)
		}
		rows = append(rows, row)
	}
	sortRows(rows)
	return Listing{Group: group, Rows: rows}
}

// sortRows puts gpt-family models first, then everything else, each block
// alphabetical. Matches the ordering users expect from the gateway's own
// pricing page.
func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		gi := strings.HasPrefix(rows[i].Model, "gpt")
		gj := strings.HasPrefix(rows[j].Model, "gpt")
		if gi != gj {
			return gi
		}
		return rows[i].Model < rows[j].Model
	})
}

// Filter returns the rows whose model name contains the query,
// case-insensitively. An empty query returns everything.
func Filter(rows []Row, query string) []Row {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return rows
	}
	var out []Row
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Model), query) {
			out = append(out, r)
		}
	}
	return out
}

func enabledFor(m api.PricedModel, group string) bool {
	if len(m.EnableGroups) == 0 {
		return true
	}
	for _, g := range m.EnableGroups {
		if g == group {
			return true
		}
	}
	return false
}
