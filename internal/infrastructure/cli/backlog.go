package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backlogJSON bool

var backlogCmd = &cobra.Command{
	Use:   "backlog",
	Short: "Measure backlog refinement quality and its trend",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(services)
		if err != nil {
			return err
		}

		report, err := services.Analytics.Backlog(currentScope(), snap)
		if err != nil {
			return MapError(err)
		}

		if backlogJSON {
			return printJSON(report)
		}

		fmt.Printf("Backlog: %d/100 (%s)\n", report.Score, report.Status)
		fmt.Printf("  refined %.0f%%  described %.0f%%  sprint-ready %.0f%%\n",
			report.Refined, report.Described, report.SprintReady)
		fmt.Printf("  open issues: %d\n", report.OpenIssues)
		if report.Trend != "" {
			fmt.Printf("  trend: %s\n", report.Trend)
		}
		return nil
	},
}

func init() {
	backlogCmd.Flags().BoolVar(&backlogJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(backlogCmd)
}
