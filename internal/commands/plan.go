package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/veloera/velo/internal/api"
	"github.com/veloera/velo/internal/output"
	"github.com/veloera/velo/internal/ui"
	"github.com/veloera/velo/internal/usage"
)

var PlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Browse and purchase subscription plans",
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List purchasable plans",
	Run: func(cmd *cobra.Command, args []string) {
		RunPlanList()
	},
}

var planBuyCmd = &cobra.Command{
	Use:   "buy <id>",
	Short: "Purchase a plan by id",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			output.PrintError(fmt.Errorf("plan id must be a number: %q", args[0]))
		}
		RunPlanBuy(id)
	},
}

var (
	planTitle    string
	planDesc     string
	planPrice    float64
	planQuota    int64
	planDuration int
)

var planAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a plan (admin)",
	Run: func(cmd *cobra.Command, args []string) {
		RunPlanAdd(api.Plan{
			Title:       planTitle,
			Description: planDesc,
			Price:       planPrice,
			Quota:       planQuota,
			Duration:    planDuration,
			Enabled:     true,
		})
	},
}

var planRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a plan (admin)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			output.PrintError(fmt.Errorf("plan id must be a number: %q", args[0]))
		}
		RunPlanRemove(id)
	},
}

func init() {
	planAddCmd.Flags().StringVar(&planTitle, "title", "", "Plan title")
	planAddCmd.Flags().StringVar(&planDesc, "desc", "", "Plan description")
	planAddCmd.Flags().Float64Var(&planPrice, "price", 0, "Price in dollars")
	planAddCmd.Flags().Int64Var(&planQuota, "quota", 0, "Raw quota granted")
	planAddCmd.Flags().IntVar(&planDuration, "days", 30, "Validity in days")

	PlanCmd.AddCommand(planListCmd)
	PlanCmd.AddCommand(planBuyCmd)
	PlanCmd.AddCommand(planAddCmd)
	PlanCmd.AddCommand(planRemoveCmd)
}

// RunPlanList lists plans. A gateway built without the plan feature is not
// an error; the console degrades to an informational notice.
func RunPlanList() {
	initLogger()
	cfg := loadConfig()
	requireGateway(cfg)

	plans, err := newClient(cfg).Plans(context.Background())
	if errors.Is(err, api.ErrPlanUnavailable) {
		output.Notice("this gateway does not offer subscription plans")
		return
	}
	if err != nil {
		handleAPIError(err)
		return
	}

	output.Print(plans, func() {
		ui.ShowHeader(fmt.Sprintf("Plans (%d)", len(plans)))
		for _, p := range plans {
			if !p.Enabled {
				continue
			}
			fmt.Printf("  %2d. %-20s $%.2f  %s quota, %d days\n",
				p.ID, p.Title, p.Price, usage.FormatQuota(float64(p.Quota)), p.Duration)
		}
	})
}

// RunPlanAdd creates a plan in the gateway's catalog.
func RunPlanAdd(p api.Plan) {
	initLogger()
	cfg := loadConfig()
	requireGateway(cfg)

	if p.Title == "" {
		output.PrintError(fmt.Errorf("a plan needs a --title"))
	}
	err := newClient(cfg).CreatePlan(context.Background(), p)
	if errors.Is(err, api.ErrPlanUnavailable) {
		output.Notice("this gateway does not offer subscription plans")
		return
	}
	if err != nil {
		handleAPIError(err)
		return
	}
	if output.JSONMode {
		output.Print(p, func() {})
		return
	}
	ui.ShowSuccess("created plan %q", p.Title)
}

// RunPlanRemove deletes a plan from the gateway's catalog.
func RunPlanRemove(id int) {
	initLogger()
	cfg := loadConfig()
	requireGateway(cfg)

	err := newClient(cfg).DeletePlan(context.Background(), id)
	if errors.Is(err, api.ErrPlanUnavailable) {
		output.Notice("this gateway does not offer subscription plans")
		return
	}
	if err != nil {
		handleAPIError(err)
		return
	}
	if output.JSONMode {
		output.Print(map[string]int{"deleted": id}, func() {})
		return
	}
	ui.ShowSuccess("deleted plan %d", id)
}

func RunPlanBuy(id int) {
	initLogger()
	cfg := loadConfig()
	requireGateway(cfg)

	err := newClient(cfg).PurchasePlan(context.Background(), id)
	if errors.Is(err, api.ErrPlanUnavailable) {
		output.Notice("this gateway does not offer subscription plans")
		return
	}
	if err != nil {
		handleAPIError(err)
		return
	}
	if output.JSONMode {
		output.Print(map[string]int{"purchased": id}, func() {})
		return
	}
	ui.ShowSuccess("purchased plan %d", id)
}
