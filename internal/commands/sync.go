package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veloera/velo/internal/localstore"
	"github.com/veloera/velo/internal/output"
	"github.com/veloera/velo/internal/ui"
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh cached gateway branding from /api/status",
	Run: func(cmd *cobra.Command, args []string) {
		RunSync()
	},
}

// brandingKeys are the status fields mirrored into the local store.
var brandingKeys = []string{
	localstore.KeyFooterHTML,
	localstore.KeyNotice,
	localstore.KeyHomePageContent,
	localstore.KeySystemName,
	localstore.KeyLogo,
}

// RunSync mirrors the gateway's public branding fields into the local store
// so the TUI can render them without a network round trip.
func RunSync() {
	initLogger()
	cfg := loadConfig()
	requireGateway(cfg)

	status, err := newClient(cfg).Status(context.Background())
	if err != nil {
		handleAPIError(err)
		return
	}

	store, err := openStore()
	if err != nil {
		output.PrintError(fmt.Errorf("open local store: %w", err))
	}
	defer store.Close()

	updated := 0
	for _, key := range brandingKeys {
		v, ok := status[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if err := store.Set(key, s); err != nil {
			output.PrintError(fmt.Errorf("store %s: %w", key, err))
		}
		updated++
	}

	if output.JSONMode {
		output.Print(map[string]int{"updated": updated}, func() {})
		return
	}
	ui.ShowSuccess("synced %d branding fields", updated)
}
