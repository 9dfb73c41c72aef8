package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/veloera/velo/internal/api"
	"github.com/veloera/velo/internal/config"
	"github.com/veloera/velo/internal/localstore"
	"github.com/veloera/velo/internal/logger"
	"github.com/veloera/velo/internal/notify"
	"github.com/veloera/velo/internal/output"
)

// loadConfig loads the console config and exits on failure.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		output.PrintError(fmt.Errorf("load config: %w", err))
	}
	return cfg
}

// requireGateway exits unless a gateway URL is configured.
func requireGateway(cfg *config.Config) {
	if cfg.ServerURL == "" {
		output.PrintError(fmt.Errorf("no gateway configured; run 'velo auth' or set VELO_SERVER_URL"))
	}
}

func newClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.ServerURL, cfg.AccessToken, cfg.UserID)
}

// openStore opens the local key-value store under the console state dir.
func openStore() (*localstore.Store, error) {
	return localstore.Open(filepath.Join(config.Dir(), "store.json"))
}

// handleAPIError maps gateway errors to user-facing behavior and exits.
// An expired token also drops the cached identity so the next TUI launch
// shows the signed-out state.
func handleAPIError(err error) {
	if errors.Is(err, api.ErrUnauthorized) {
		if store, serr := openStore(); serr == nil {
			store.Delete(localstore.KeyUser)
			store.Close()
		}
		output.PrintError(fmt.Errorf("session expired, sign in again with 'velo auth'"))
		return
	}
	output.PrintError(err)
}

// newNotifier builds the configured notification fan-out. Desktop delivery
// is always on; a webhook is added when configured.
func newNotifier(cfg *config.Config) notify.Notifier {
	notifiers := notify.Multi{notify.Desktop{}}
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhook(cfg.WebhookURL, cfg.WebhookFormat))
	}
	return notifiers
}

func initLogger() {
	if err := logger.Init(config.Dir()); err != nil {
		// Logging is best effort; the console works without a log file.
		return
	}
}
