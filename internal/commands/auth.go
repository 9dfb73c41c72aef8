package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veloera/velo/internal/config"
	"github.com/veloera/velo/internal/localstore"
	"github.com/veloera/velo/internal/output"
	"github.com/veloera/velo/internal/ui"
	"github.com/veloera/velo/internal/usage"
)

var (
	authServer string
	authToken  string
	authUserID string
)

var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in to a Veloera gateway and save credentials",
	Run: func(cmd *cobra.Command, args []string) {
		RunAuth(authServer, authToken, authUserID)
	},
}

func init() {
	AuthCmd.Flags().StringVar(&authServer, "server", "", "Gateway base URL")
	AuthCmd.Flags().StringVar(&authToken, "token", "", "Access token")
	AuthCmd.Flags().StringVar(&authUserID, "user", "", "User id sent in the Veloera-User header")
}

// RunAuth validates the credentials against the gateway, then persists them
// to the config file and caches the account in the local store.
func RunAuth(server, token, userID string) {
	cfg := loadConfig()
	if server != "" {
		cfg.ServerURL = server
	}
	if token != "" {
		cfg.AccessToken = token
	}
	if userID != "" {
		cfg.UserID = userID
	}
	requireGateway(cfg)

	client := newClient(cfg)
	user, err := client.SelfUser(context.Background())
	if err != nil {
		handleAPIError(err)
		return
	}

	if err := config.Save(cfg); err != nil {
		output.PrintError(fmt.Errorf("save config: %w", err))
	}
	if store, err := openStore(); err == nil {
		if data, err := json.Marshal(user); err == nil {
			store.Set(localstore.KeyUser, string(data))
		}
		store.Close()
	}

	if output.JSONMode {
		output.Print(user, func() {})
		return
	}
	ui.ShowSuccess("signed in as %s", user.Username)
	ui.ShowKeyValue("balance", usage.FormatQuota(user.Quota))
	ui.ShowKeyValue("group", user.Group)
}
