package mcpserver

import (
	"context"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veloera/velo/internal/api"
	"github.com/veloera/velo/internal/usage"
)

// registerAccountTools registers account-related MCP tools.
func registerAccountTools(server *mcpsdk.Server, client *api.Client) {
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "account_info",
		Description: "Get the authenticated account's balance, request count, and billing group",
	}, accountInfoHandler(client))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "plans_list",
		Description: "List purchasable subscription plans, if the gateway supports them",
	}, plansListHandler(client))
}

type accountInfoInput struct{}

type accountInfoOutput struct {
	Username     string `json:"username"`
	DisplayName  string `json:"displayName,omitempty"`
	Balance      string `json:"balance"`
	UsedQuota    string `json:"usedQuota"`
	RequestCount int    `json:"requestCount"`
	Group        string `json:"group"`
}

func accountInfoHandler(client *api.Client) func(context.Context, *mcpsdk.CallToolRequest, accountInfoInput) (*mcpsdk.CallToolResult, accountInfoOutput, error) {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input accountInfoInput) (*mcpsdk.CallToolResult, accountInfoOutput, error) {
		user, err := client.SelfUser(ctx)
		if err != nil {
			return nil, accountInfoOutput{}, fmt.Errorf("fetch account: %w", err)
		}
		output := accountInfoOutput{
			Username:     user.Username,
			DisplayName:  user.DisplayName,
			Balance:      usage.FormatQuota(user.Quota),
			UsedQuota:    usage.FormatQuota(user.UsedQuota),
			RequestCount: user.RequestCount,
			Group:        user.Group,
		}
		return nil, output, nil
	}
}

type plansListInput struct{}

type plansListOutput struct {
	Available bool       `json:"available"`
	Plans     []api.Plan `json:"plans,omitempty"`
	Message   string     `json:"message,omitempty"`
}

func plansListHandler(client *api.Client) func(context.Context, *mcpsdk.CallToolRequest, plansListInput) (*mcpsdk.CallToolResult, plansListOutput, error) {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input plansListInput) (*mcpsdk.CallToolResult, plansListOutput, error) {
		plans, err := client.Plans(ctx)
		if errors.Is(err, api.ErrPlanUnavailable) {
			return nil, plansListOutput{Available: false, Message: err.Error()}, nil
		}
		if err != nil {
			return nil, plansListOutput{}, fmt.Errorf("fetch plans: %w", err)
		}
		return nil, plansListOutput{Available: true, Plans: plans}, nil
	}
}
