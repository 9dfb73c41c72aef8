package mcpserver

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veloera/velo/internal/api"
	"github.com/veloera/velo/internal/config"
	"github.com/veloera/velo/internal/modelmeta"
	"github.com/veloera/velo/internal/pricing"
)

// registerPricingTools registers pricing-related MCP tools.
func registerPricingTools(server *mcpsdk.Server, client *api.Client, cfg *config.Config) {
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "pricing_lookup",
		Description: "Look up the effective price of models under a billing group. Optionally filter by model name.",
	}, pricingLookupHandler(client, cfg))
}

type pricingLookupInput struct {
	Model string `json:"model" jsonschema:"Optional model name filter (substring match)"`
	Group string `json:"group" jsonschema:"Billing group (default: from config or 'default')"`
}

type pricingRow struct {
	Model       string   `json:"model"`
	Provider    string   `json:"provider"`
	Tags        []string `json:"tags,omitempty"`
	Billing     string   `json:"billing"`
	InputPrice  string   `json:"inputPrice,omitempty"`
	OutputPrice string   `json:"outputPrice,omitempty"`
	CallPrice   string   `json:"callPrice,omitempty"`
}

type pricingLookupOutput struct {
	Group  string       `json:"group"`
	Models []pricingRow `json:"models"`
}

func pricingLookupHandler(client *api.Client, cfg *config.Config) func(context.Context, *mcpsdk.CallToolRequest, pricingLookupInput) (*mcpsdk.CallToolResult, pricingLookupOutput, error) {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input pricingLookupInput) (*mcpsdk.CallToolResult, pricingLookupOutput, error) {
		group := input.Group
		if group == "" {
			group = cfg.DefaultGroup
		}
		if group == "" {
			group = "default"
		}

		data, err := client.Pricing(ctx)
		if err != nil {
			return nil, pricingLookupOutput{}, fmt.Errorf("fetch pricing: %w", err)
		}

		listing := pricing.Build(data, group)
		rows := pricing.Filter(listing.Rows, input.Model)

		output := pricingLookupOutput{Group: group, Models: make([]pricingRow, 0, len(rows))}
		for _, r := range rows {
			meta := modelmeta.Describe(r.Model, r.OwnerBy)
			row := pricingRow{
				Model:    r.Model,
				Provider: meta.Provider,
				Tags:     meta.Tags,
			}
			if r.QuotaType == pricing.QuotaTypeCall {
				row.Billing = "per-call"
				row.CallPrice = "$" + r.FixedPrice.String()
			} else {
				row.Billing = "per-token"
				row.InputPrice = "$" + r.InputPrice.String() + " / 1M tokens"
				row.OutputPrice = "$" + r.OutputPrice.String() + " / 1M tokens"
			}
			output.Models = append(output.Models, row)
		}
		return nil, output, nil
	}
}
