package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	capacitySprint string
	capacityJSON   bool
)

var capacityCmd = &cobra.Command{
	Use:   "capacity",
	Short: "Plan sprint capacity against the roster and absence calendar",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(services)
		if err != nil {
			return err
		}

		plan, err := services.Capacity.Plan(currentScope(), snap, capacitySprint)
		if err != nil {
			return MapError(err)
		}

		if capacityJSON {
			return printJSON(plan)
		}

		fmt.Printf("Capacity for %s\n", plan.Sprint)
		for _, m := range plan.Members {
			fmt.Printf("  %-16s %.1fh available, %.1fh allocated, %d open issues (%s)\n",
				m.Username, m.AvailableHours, m.AllocatedHours, m.OpenIssues, m.Band)
		}
		fmt.Printf("Total: %.1fh available, %.1fh allocated, %.1fh remaining (%.0f%% utilized)\n",
			plan.AvailableHours, plan.AllocatedHours, plan.RemainingHours, plan.Utilization)
		return nil
	},
}

func init() {
	capacityCmd.Flags().StringVarP(&capacitySprint, "sprint", "s", "",
		"Sprint name (defaults to the snapshot's current iteration)")
	capacityCmd.Flags().BoolVar(&capacityJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(capacityCmd)
}
