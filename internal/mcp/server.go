package mcpserver

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veloera/velo/internal/api"
	"github.com/veloera/velo/internal/config"
)

// RunServer starts the MCP server over stdio transport, exposing the
// gateway console's data to MCP clients.
func RunServer(version string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.ServerURL == "" {
		return fmt.Errorf("no gateway configured; set server_url in %s", config.ConfigPath)
	}
	client := api.NewClient(cfg.ServerURL, cfg.AccessToken, cfg.UserID)

	server := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "velo",
			Version: version,
		},
		nil,
	)

	registerUsageTools(server, client, cfg)
	registerPricingTools(server, client, cfg)
	registerAccountTools(server, client)

	return server.Run(context.Background(), &mcpsdk.StdioTransport{})
}
