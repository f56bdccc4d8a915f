package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var velocityJSON bool

var velocityCmd = &cobra.Command{
	Use:   "velocity",
	Short: "Measure recent sprint velocity",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(services)
		if err != nil {
			return err
		}

		result, err := services.Velocity.Sprint(currentScope(), snap)
		if err != nil {
			return MapError(err)
		}

		if velocityJSON {
			return printJSON(result)
		}

		fmt.Printf("Velocity: %.1f issues/sprint, %.1f points/sprint (%s)\n",
			result.ByIssues, result.ByPoints, result.Quality)
		for _, s := range result.Sprints {
			fmt.Printf("  %-20s %d issues, %d points\n", s.Sprint, s.CompletedIssues, s.CompletedPoints)
		}
		return nil
	},
}

var velocityMemberCmd = &cobra.Command{
	Use:   "member <username>",
	Short: "Measure a member's individual completion rate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(services)
		if err != nil {
			return err
		}

		result, err := services.Velocity.Member(currentScope(), snap, args[0])
		if err != nil {
			return MapError(err)
		}
		return printJSON(result)
	},
}

var velocityRateCmd = &cobra.Command{
	Use:   "rate <username>",
	Short: "Resolve a member's hours-per-unit rate with fallbacks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(services)
		if err != nil {
			return err
		}

		rate, err := services.Velocity.Rate(currentScope(), snap, args[0])
		if err != nil {
			return MapError(err)
		}

		if velocityJSON {
			return printJSON(rate)
		}

		fmt.Printf("%s: %.2f hours per %s (%s, %s)\n",
			args[0], rate.HoursPerUnit, rate.Metric, rate.Provenance, rate.Quality)
		return nil
	},
}

func init() {
	velocityCmd.PersistentFlags().BoolVar(&velocityJSON, "json", false, "Output in JSON format")
	velocityCmd.AddCommand(velocityMemberCmd)
	velocityCmd.AddCommand(velocityRateCmd)
	RootCmd.AddCommand(velocityCmd)
}
