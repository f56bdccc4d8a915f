package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pulse/pkg/domain/search"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

// Flag variables for search command
var (
	searchKind         string
	searchState        string
	searchLabels       []string
	searchAssignee     string
	searchEpic         string
	searchMilestone    string
	searchPriority     string
	searchOverdue      bool
	searchMissingDesc  bool
	searchMissingUser  bool
	searchMissingLabel bool
	searchMissingDue   bool
	searchJSON         bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search and filter snapshot entities",
	Long: `Search issues, epics or milestones by substring and narrow issues
with compound filters.

Examples:
  pulse search login
  pulse search --state open --label bug --overdue
  pulse search --kind epics checkout
  pulse search --missing-assignee --missing-due --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(services)
		if err != nil {
			return err
		}

		query := ""
		if len(args) == 1 {
			query = args[0]
		}

		switch searchKind {
		case "epics":
			epics := services.Search.Epics(snap, query)
			if searchJSON {
				return printJSON(epics)
			}
			for _, e := range epics {
				fmt.Printf("#%d [%s] %s\n", e.ID, e.State, e.Title)
			}
			return nil

		case "milestones":
			milestones := services.Search.Milestones(snap, query)
			if searchJSON {
				return printJSON(milestones)
			}
			for _, m := range milestones {
				fmt.Printf("#%d [%s] %s\n", m.ID, m.State, m.Title)
			}
			return nil

		case "issues":
			filter := search.Filter{
				State:              tracker.State(searchState),
				Labels:             searchLabels,
				Assignee:           searchAssignee,
				Epic:               searchEpic,
				Milestone:          searchMilestone,
				Priority:           tracker.Priority(searchPriority),
				Overdue:            searchOverdue,
				MissingDescription: searchMissingDesc,
				MissingAssignee:    searchMissingUser,
				MissingLabels:      searchMissingLabel,
				MissingDueDate:     searchMissingDue,
			}
			issues := services.Search.Issues(snap, query, filter)
			if searchJSON {
				return printJSON(issues)
			}
			for i := range issues {
				is := &issues[i]
				assignee := ""
				if len(is.Assignees) > 0 {
					assignee = " @" + is.Assignees[0].Username
				}
				fmt.Printf("#%d [%s] %s%s\n", is.IID, is.State, is.Title, assignee)
			}
			fmt.Printf("%d issues matched\n", len(issues))
			return nil

		default:
			return NewCLIError(fmt.Sprintf("unknown kind %q", searchKind),
				"Use issues, epics or milestones", nil)
		}
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchKind, "kind", "k", "issues",
		"Entity kind to search (issues, epics, milestones)")
	searchCmd.Flags().StringVarP(&searchState, "state", "s", "", "Filter by state (open, closed)")
	searchCmd.Flags().StringSliceVarP(&searchLabels, "label", "l", nil, "Filter by label (any-of, repeatable)")
	searchCmd.Flags().StringVarP(&searchAssignee, "assignee", "a", "", "Filter by assignee username")
	searchCmd.Flags().StringVar(&searchEpic, "epic", "", "Filter by epic title substring")
	searchCmd.Flags().StringVar(&searchMilestone, "milestone", "", "Filter by milestone title substring")
	searchCmd.Flags().StringVarP(&searchPriority, "priority", "p", "", "Filter by priority facet")
	searchCmd.Flags().BoolVar(&searchOverdue, "overdue", false, "Only overdue open issues")
	searchCmd.Flags().BoolVar(&searchMissingDesc, "missing-description", false, "Only issues without a description")
	searchCmd.Flags().BoolVar(&searchMissingUser, "missing-assignee", false, "Only unassigned issues")
	searchCmd.Flags().BoolVar(&searchMissingLabel, "missing-labels", false, "Only unlabeled issues")
	searchCmd.Flags().BoolVar(&searchMissingDue, "missing-due", false, "Only issues without a due date")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(searchCmd)
}
