package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pulse/internal/infrastructure/tracker"
	"github.com/felixgeelhaar/pulse/internal/logger"
)

var fetchFile string

var fetchCmd = &cobra.Command{
	Use:   "fetch [project-id]",
	Short: "Pull a fresh tracker snapshot and persist it locally",
	Long: `Pull a fresh snapshot from the configured tracker and persist it
under .pulse/. Every analysis command reads this persisted copy, so a
single fetch is enough for a full offline review session.

With --file, a local JSON export is normalized instead of calling the
tracker API.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		if fetchFile != "" {
			snap, err := tracker.LoadFile(fetchFile, logger.New(verbose, true))
			if err != nil {
				return MapError(fmt.Errorf("failed to load %s: %w", fetchFile, err))
			}
			if err := services.Workspace.Store.SaveSnapshot(snap); err != nil {
				return MapError(err)
			}
			if _, err := services.Snapshot.Reload(); err != nil {
				return MapError(err)
			}
			fmt.Printf("Imported snapshot from %s: %d issues, %d epics, %d milestones\n",
				fetchFile, len(snap.Issues), len(snap.Epics), len(snap.Milestones))
			return nil
		}

		if len(args) == 0 {
			return NewCLIError("project id required", "Pass the tracker project id or path, or use --file", nil)
		}

		snap, err := services.Snapshot.Fetch(cmd.Context(), args[0])
		if err != nil {
			return MapError(err)
		}
		fmt.Printf("Fetched snapshot for %s: %d issues, %d epics, %d milestones\n",
			snap.ProjectID, len(snap.Issues), len(snap.Epics), len(snap.Milestones))
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchFile, "file", "f", "",
		"Normalize a local tracker JSON export instead of calling the API")
	RootCmd.AddCommand(fetchCmd)
}
