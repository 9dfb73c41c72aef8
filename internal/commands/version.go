package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veloera/velo/internal/output"
)

// Version is the console version, overridden at build time via -ldflags.
var Version = "dev"

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the console version",
	Run: func(cmd *cobra.Command, args []string) {
		RunVersion()
	},
}

func RunVersion() {
	if output.JSONMode {
		output.Print(map[string]string{"version": Version}, func() {})
		return
	}
	fmt.Printf("velo %s\n", Version)
}
