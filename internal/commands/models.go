package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veloera/velo/internal/modelmeta"
	"github.com/veloera/velo/internal/output"
	"github.com/veloera/velo/internal/ui"
)

var ModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models this account may call",
	Run: func(cmd *cobra.Command, args []string) {
		RunModels()
	},
}

// RunModels lists callable models with provider and capability tags.
func RunModels() {
	initLogger()
	cfg := loadConfig()
	requireGateway(cfg)

	models, err := newClient(cfg).Models(context.Background())
	if err != nil {
		handleAPIError(err)
		return
	}

	type row struct {
		Model    string   `json:"model"`
		Provider string   `json:"provider"`
		Tags     []string `json:"tags,omitempty"`
		Context  string   `json:"contextWindow,omitempty"`
	}
	rows := make([]row, 0, len(models))
	for _, m := range models {
		meta := modelmeta.Describe(m, "")
		rows = append(rows, row{Model: m, Provider: meta.Provider, Tags: meta.Tags, Context: meta.ContextWindow})
	}

	output.Print(rows, func() {
		ui.ShowHeader(fmt.Sprintf("Models (%d)", len(rows)))
		for _, r := range rows {
			extra := ""
			if len(r.Tags) > 0 {
				extra = " [" + strings.Join(r.Tags, ", ") + "]"
			}
			if r.Context != "" {
				extra += " " + r.Context
			}
			fmt.Printf("  %-34s %s%s\n", r.Model, r.Provider, extra)
		}
	})
}
