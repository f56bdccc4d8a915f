package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	milestoneWindow int
	timelineJSON    bool
)

var milestonesCmd = &cobra.Command{
	Use:   "milestones",
	Short: "List upcoming and overdue milestones",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(services)
		if err != nil {
			return err
		}

		entries := services.Timeline.Milestones(snap, milestoneWindow)
		if timelineJSON {
			return printJSON(entries)
		}

		if len(entries) == 0 {
			fmt.Println("No milestones due inside the window.")
			return nil
		}
		for _, e := range entries {
			due := "no due date"
			if e.Milestone.DueDate != nil {
				due = e.Milestone.DueDate.Format("2006-01-02")
			}
			fmt.Printf("[%-8s] %-30s due %s (%+d days), %.0f%% done\n",
				e.Status, e.Milestone.Title, due, e.DaysUntil, e.Progress)
		}
		return nil
	},
}

var quartersCmd = &cobra.Command{
	Use:   "quarters",
	Short: "Bucket epics into calendar quarters",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(services)
		if err != nil {
			return err
		}

		quarters := services.Timeline.Quarters(snap)
		if timelineJSON {
			return printJSON(quarters)
		}

		for _, q := range quarters {
			fmt.Printf("%s\n", q.Label)
			for _, e := range q.Epics {
				fmt.Printf("  [%s] #%d %s (%.0f%%)\n",
					e.Status, e.Epic.ID, e.Epic.Title, e.CompletionRate)
			}
		}
		return nil
	},
}

func init() {
	milestonesCmd.Flags().IntVarP(&milestoneWindow, "window", "w", 0,
		"Lookahead window in days (default 30)")
	milestonesCmd.Flags().BoolVar(&timelineJSON, "json", false, "Output in JSON format")
	quartersCmd.Flags().BoolVar(&timelineJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(milestonesCmd)
	RootCmd.AddCommand(quartersCmd)
}
