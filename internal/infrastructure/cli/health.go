package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Score delivery health from the persisted snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(services)
		if err != nil {
			return err
		}

		report, err := services.Analytics.Health(snap)
		if err != nil {
			return MapError(err)
		}

		if healthJSON {
			return printJSON(report)
		}

		fmt.Printf("Health: %d/100 (%s)\n", report.Overall, report.Status)
		fmt.Printf("  completion %d  schedule %d  blockers %d  risk %d\n",
			report.SubScores.Completion, report.SubScores.Schedule,
			report.SubScores.Blockers, report.SubScores.Risk)
		fmt.Printf("  issues: %d total, %d open, %d closed, %d blocked, %d overdue\n",
			report.Stats.Total, report.Stats.Open, report.Stats.Closed,
			report.Stats.Blockers, report.Stats.Overdue)
		if report.Timeframe.Days > 0 {
			fmt.Printf("  timeframe: %s (%d days)\n", report.Timeframe.Mode, report.Timeframe.Days)
		} else {
			fmt.Printf("  timeframe: %s\n", report.Timeframe.Mode)
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(healthCmd)
}
