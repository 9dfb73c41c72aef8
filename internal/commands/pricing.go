package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veloera/velo/internal/modelmeta"
	"github.com/veloera/velo/internal/output"
	"github.com/veloera/velo/internal/pricing"
	"github.com/veloera/velo/internal/ui"
)

var (
	pricingGroup string
	pricingQuery string
)

var PricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Show effective model prices for a billing group",
	Run: func(cmd *cobra.Command, args []string) {
		RunPricing(pricingGroup, pricingQuery)
	},
}

func init() {
	PricingCmd.Flags().StringVar(&pricingGroup, "group", "", "Billing group (default: from config or 'default')")
	PricingCmd.Flags().StringVar(&pricingQuery, "filter", "", "Only show models whose name contains this")
}

// RunPricing fetches the pricing table and renders it resolved against one
// group's ratio.
func RunPricing(group, query string) {
	initLogger()
	cfg := loadConfig()
	requireGateway(cfg)

	if group == "" {
		group = cfg.DefaultGroup
	}
	if group == "" {
		group = "default"
	}

	data, err := newClient(cfg).Pricing(context.Background())
	if err != nil {
		handleAPIError(err)
		return
	}

	listing := pricing.Build(data, group)
	rows := pricing.Filter(listing.Rows, query)

	output.Print(rows, func() {
		ui.ShowHeader(fmt.Sprintf("Pricing (group %s)", group))
		for _, r := range rows {
			meta := modelmeta.Describe(r.Model, r.OwnerBy)
			if r.QuotaType == pricing.QuotaTypeCall {
				fmt.Printf("  %-34s %-10s $%s / call\n", r.Model, meta.Provider, r.FixedPrice)
				continue
			}
			fmt.Printf("  %-34s %-10s in $%s/1M  out $%s/1M\n", r.Model, meta.Provider, r.InputPrice, r.OutputPrice)
		}
		if len(rows) == 0 {
			ui.ShowWarning("no models matched")
		}
	})
}
