package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pulse/pkg/domain/team"
)

// Flag variables for team commands
var (
	teamJSON       bool
	memberName     string
	memberCapacity float64
	memberWeekly   float64
	absenceFrom    string
	absenceTo      string
	absenceHours   float64
	absenceReason  string
	overrideSprint int
	overrideHours  float64
	overrideReason string
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage the roster, absences and capacity overrides",
}

var teamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the scope's roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		roster, err := services.Team.Roster(currentScope())
		if err != nil {
			return MapError(err)
		}
		if teamJSON {
			return printJSON(roster)
		}
		if len(roster.Members) == 0 {
			fmt.Println("No team configured for this scope.")
			return nil
		}
		for _, m := range roster.Members {
			fmt.Printf("%-16s %-24s %.0fh/sprint, %.0fh/week\n",
				m.Username, m.Name, m.DefaultCapacity, m.WeeklyCapacity)
		}
		return nil
	},
}

var teamAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Add or update a roster member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		member := team.Member{
			Username:        args[0],
			Name:            memberName,
			DefaultCapacity: memberCapacity,
			WeeklyCapacity:  memberWeekly,
		}
		if err := services.Team.AddMember(currentScope(), member); err != nil {
			return MapError(err)
		}
		fmt.Printf("Added %s to the roster\n", args[0])
		return nil
	},
}

var teamRemoveCmd = &cobra.Command{
	Use:   "remove <username>",
	Short: "Remove a roster member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		if err := services.Team.RemoveMember(currentScope(), args[0]); err != nil {
			return MapError(err)
		}
		fmt.Printf("Removed %s from the roster\n", args[0])
		return nil
	},
}

var teamAbsenceCmd = &cobra.Command{
	Use:   "absence <username>",
	Short: "Record a planned absence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		from, err := time.Parse("2006-01-02", absenceFrom)
		if err != nil {
			return NewCLIError(fmt.Sprintf("invalid --from date %q", absenceFrom), "Use YYYY-MM-DD", err)
		}
		to, err := time.Parse("2006-01-02", absenceTo)
		if err != nil {
			return NewCLIError(fmt.Sprintf("invalid --to date %q", absenceTo), "Use YYYY-MM-DD", err)
		}

		absence := team.Absence{
			Username:    args[0],
			From:        from,
			To:          to,
			HoursPerDay: absenceHours,
			Reason:      absenceReason,
		}
		if err := services.Team.AddAbsence(currentScope(), absence); err != nil {
			return MapError(err)
		}
		fmt.Printf("Recorded absence for %s (%s to %s)\n", args[0], absenceFrom, absenceTo)
		return nil
	},
}

var teamOverrideCmd = &cobra.Command{
	Use:   "override <username>",
	Short: "Override a member's capacity for one sprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		override := team.Override{
			SprintID: overrideSprint,
			Username: args[0],
			Hours:    overrideHours,
			Reason:   overrideReason,
		}
		if err := services.Team.SetOverride(currentScope(), override); err != nil {
			return MapError(err)
		}
		fmt.Printf("Set %s to %.1fh for sprint %d\n", args[0], overrideHours, overrideSprint)
		return nil
	},
}

func init() {
	teamListCmd.Flags().BoolVar(&teamJSON, "json", false, "Output in JSON format")
	teamAddCmd.Flags().StringVarP(&memberName, "name", "n", "", "Display name")
	teamAddCmd.Flags().Float64VarP(&memberCapacity, "capacity", "c", 0, "Hours per sprint")
	teamAddCmd.Flags().Float64VarP(&memberWeekly, "weekly", "w", 0, "Hours per week")
	teamAbsenceCmd.Flags().StringVar(&absenceFrom, "from", "", "First day of the absence (YYYY-MM-DD)")
	teamAbsenceCmd.Flags().StringVar(&absenceTo, "to", "", "Last day of the absence (YYYY-MM-DD)")
	teamAbsenceCmd.Flags().Float64Var(&absenceHours, "hours-per-day", 8, "Hours lost per absent day")
	teamAbsenceCmd.Flags().StringVar(&absenceReason, "reason", "", "Reason for the absence")
	_ = teamAbsenceCmd.MarkFlagRequired("from")
	_ = teamAbsenceCmd.MarkFlagRequired("to")
	teamOverrideCmd.Flags().IntVarP(&overrideSprint, "sprint-id", "s", 0, "Iteration id to override")
	teamOverrideCmd.Flags().Float64Var(&overrideHours, "hours", 0, "Replacement capacity in hours")
	teamOverrideCmd.Flags().StringVar(&overrideReason, "reason", "", "Reason for the override")
	_ = teamOverrideCmd.MarkFlagRequired("sprint-id")
	_ = teamOverrideCmd.MarkFlagRequired("hours")

	teamCmd.AddCommand(teamListCmd)
	teamCmd.AddCommand(teamAddCmd)
	teamCmd.AddCommand(teamRemoveCmd)
	teamCmd.AddCommand(teamAbsenceCmd)
	teamCmd.AddCommand(teamOverrideCmd)
	RootCmd.AddCommand(teamCmd)
}
