package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/veloera/velo/internal/commands"
	"github.com/veloera/velo/internal/output"
	"github.com/veloera/velo/internal/tui"
)

var jsonFlag bool

var rootCmd = &cobra.Command{
	Use:   "velo",
	Short: "Terminal console for a Veloera gateway",
	Long:  "Usage dashboards, model pricing, and a streaming chat playground for a Veloera LLM gateway, from the terminal",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Output in JSON format")

	rootCmd.AddCommand(commands.AuthCmd)
	rootCmd.AddCommand(commands.UsageCmd)
	rootCmd.AddCommand(commands.ChatCmd)
	rootCmd.AddCommand(commands.PricingCmd)
	rootCmd.AddCommand(commands.ModelsCmd)
	rootCmd.AddCommand(commands.OptionCmd)
	rootCmd.AddCommand(commands.PlanCmd)
	rootCmd.AddCommand(commands.SyncCmd)
	rootCmd.AddCommand(commands.MCPCmd)
	rootCmd.AddCommand(commands.VersionCmd)

	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		output.JSONMode = jsonFlag

		// --json with no subcommand: dump the default usage report.
		if jsonFlag {
			commands.RunUsage("week", "", "")
			return
		}

		// Interactive terminal: launch the TUI.
		if term.IsTerminal(int(os.Stdin.Fd())) {
			if err := tui.Run(commands.Version); err != nil {
				output.PrintError(err)
			}
			return
		}

		// Non-TTY fallback: plain usage summary.
		commands.RunUsage("week", "", "")
	}
}

func main() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		output.JSONMode = jsonFlag
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
