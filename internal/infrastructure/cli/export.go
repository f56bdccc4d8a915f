package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportWindow int
	exportJSON   bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export snapshot analyses as CSV or a summary document",
}

var exportIssuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Export the snapshot's issues as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(services)
		if err != nil {
			return err
		}

		csv, err := services.Export.IssuesCSV(snap)
		if err != nil {
			return MapError(err)
		}
		return writeExport(csv)
	},
}

var exportMilestonesCmd = &cobra.Command{
	Use:   "milestones",
	Short: "Export the milestone timeline as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(services)
		if err != nil {
			return err
		}

		csv, err := services.Export.MilestonesCSV(snap, exportWindow)
		if err != nil {
			return MapError(err)
		}
		return writeExport(csv)
	},
}

var exportSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Export the three-part status summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(services)
		if err != nil {
			return err
		}

		summary, err := services.Export.Summary(snap, nil)
		if err != nil {
			return MapError(err)
		}
		if exportJSON {
			return printJSON(summary)
		}
		return writeExport(summary.Render())
	},
}

func writeExport(content string) error {
	if exportOutput == "" {
		fmt.Print(content)
		return nil
	}
	if err := os.WriteFile(exportOutput, []byte(content), 0o600); err != nil {
		return NewCLIError(fmt.Sprintf("failed to write %s", exportOutput), "", err)
	}
	fmt.Printf("Wrote %s\n", exportOutput)
	return nil
}

func init() {
	exportCmd.PersistentFlags().StringVarP(&exportOutput, "output", "o", "",
		"Write to a file instead of stdout")
	exportMilestonesCmd.Flags().IntVarP(&exportWindow, "window", "w", 0,
		"Milestone lookahead window in days (default 30)")
	exportSummaryCmd.Flags().BoolVar(&exportJSON, "json", false, "Output in JSON format")
	exportCmd.AddCommand(exportIssuesCmd)
	exportCmd.AddCommand(exportMilestonesCmd)
	exportCmd.AddCommand(exportSummaryCmd)
	RootCmd.AddCommand(exportCmd)
}
