package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veloera/velo/internal/output"
	"github.com/veloera/velo/internal/playground"
)

var (
	chatModel      string
	chatGroup      string
	chatSystem     string
	chatCustomBody string
)

var ChatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send one message to a model and stream the reply",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		RunChat(strings.Join(args, " "))
	},
}

func init() {
	ChatCmd.Flags().StringVar(&chatModel, "model", "", "Model to call")
	ChatCmd.Flags().StringVar(&chatGroup, "group", "", "Billing group")
	ChatCmd.Flags().StringVar(&chatSystem, "system", "", "System prompt")
	ChatCmd.Flags().StringVar(&chatCustomBody, "custom-body", "", "Custom JSON request body; messages and stream are still managed by the console")
}

// RunChat runs a single conversation turn, printing chunks as they arrive.
func RunChat(text string) {
	initLogger()
	cfg := loadConfig()
	requireGateway(cfg)

	params := playground.Params{
		Model:        chatModel,
		Group:        chatGroup,
		SystemPrompt: chatSystem,
		Temperature:  0.7,
		TopP:         1,
	}
	if params.Model == "" {
		params.Model = cfg.DefaultModel
	}
	if params.Group == "" {
		params.Group = cfg.DefaultGroup
	}
	if params.SystemPrompt == "" {
		params.SystemPrompt = cfg.SystemPrompt
	}
	if chatCustomBody != "" {
		params.CustomBody = chatCustomBody
		params.CustomBodyEnabled = true
	}
	if params.Model == "" && !params.CustomBodyEnabled {
		output.PrintError(fmt.Errorf("no model selected; pass --model or set defaultModel in config"))
	}

	session := playground.NewSession(
		playground.NewStreamClient(cfg.ServerURL, cfg.AccessToken, cfg.UserID),
		params,
	)
	if err := session.Send(context.Background(), text); err != nil {
		output.PrintError(err)
	}

	var printed int
	for event := range session.Events() {
		switch event.Kind {
		case playground.EventDelta:
			if output.JSONMode {
				continue
			}
			msgs := session.Messages()
			last := msgs[len(msgs)-1]
			fmt.Print(last.Content[printed:])
			printed = len(last.Content)
		case playground.EventDone:
			if output.JSONMode {
				output.Print(session.Messages(), func() {})
				return
			}
			fmt.Println()
			return
		case playground.EventError:
			if !output.JSONMode && printed > 0 {
				fmt.Println()
			}
			output.PrintError(event.Err)
		}
	}
}
