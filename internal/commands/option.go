package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veloera/velo/internal/output"
	"github.com/veloera/velo/internal/ui"
)

var OptionCmd = &cobra.Command{
	Use:   "option",
	Short: "Inspect and change gateway settings (admin)",
}

var optionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List gateway settings",
	Run: func(cmd *cobra.Command, args []string) {
		RunOptionList()
	},
}

var optionSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one gateway setting",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		RunOptionSet(args[0], args[1])
	},
}

func init() {
	OptionCmd.AddCommand(optionListCmd)
	OptionCmd.AddCommand(optionSetCmd)
}

func RunOptionList() {
	initLogger()
	cfg := loadConfig()
	requireGateway(cfg)

	opts, err := newClient(cfg).Options(context.Background())
	if err != nil {
		handleAPIError(err)
		return
	}
	output.Print(opts, func() {
		ui.ShowHeader(fmt.Sprintf("Gateway options (%d)", len(opts)))
		for _, o := range opts {
			ui.ShowKeyValue(o.Key, o.Value)
		}
	})
}

func RunOptionSet(key, value string) {
	initLogger()
	cfg := loadConfig()
	requireGateway(cfg)

	if err := newClient(cfg).UpdateOption(context.Background(), key, value); err != nil {
		handleAPIError(err)
		return
	}
	if output.JSONMode {
		output.Print(map[string]string{"key": key, "value": value}, func() {})
		return
	}
	ui.ShowSuccess("set %s", key)
}
