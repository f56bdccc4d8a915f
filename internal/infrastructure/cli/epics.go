package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pulse/pkg/application"
)

var epicsJSON bool

var epicsCmd = &cobra.Command{
	Use:   "epics [id]",
	Short: "Flag at-risk epics with a red/amber/green verdict",
	Long: `Analyze every epic in the snapshot, most severe first. With an id,
show the full verdict for a single epic including contributing factors,
recommended actions and the completion projection.`,
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

		if len(args) == 1 {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return NewCLIError(fmt.Sprintf("invalid epic id %q", args[0]), "Pass the numeric tracker id", err)
			}
			result, err := services.Epic.AnalyzeOne(currentScope(), snap, id)
			if err != nil {
				return MapError(err)
			}
			if epicsJSON {
				return printJSON(result)
			}
			printEpicDetail(result)
			return nil
		}

		results, err := services.Epic.Analyze(currentScope(), snap)
		if err != nil {
			return MapError(err)
		}
		if epicsJSON {
			return printJSON(results)
		}
		for _, r := range results {
			fmt.Printf("[%s] #%d %s: %.0f%% done, %s\n",
				r.Result.Status, r.Epic.ID, r.Epic.Title,
				r.Result.Metrics.ProgressPercent, r.Result.Reason)
		}
		return nil
	},
}

func printEpicDetail(r *application.EpicResult) {
	fmt.Printf("#%d %s\n", r.Epic.ID, r.Epic.Title)
	fmt.Printf("Status: %s (%s)\n", r.Result.Status, r.Result.Reason)
	m := r.Result.Metrics
	fmt.Printf("Progress: %d/%d issues (%.0f%%), velocity %.1f/iteration\n",
		m.ClosedIssues, m.TotalIssues, m.ProgressPercent, m.CurrentVelocity)
	if p := r.Result.Projection; p != nil {
		fmt.Printf("Projection: %d iterations (~%d weeks), done %s\n",
			p.IterationsNeeded, p.WeeksNeeded, p.Date.Format("2006-01-02"))
	}
	for _, f := range r.Result.Factors {
		fmt.Printf("  factor [%s] %s\n", f.Tag, f.Reason)
	}
	for _, a := range r.Result.Actions {
		fmt.Printf("  action [%s] %s: %s\n", a.Priority, a.Title, a.Description)
	}
	fmt.Printf("Data quality: %s\n", r.Result.DataQuality)
}

func init() {
	epicsCmd.Flags().BoolVar(&epicsJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(epicsCmd)
}
