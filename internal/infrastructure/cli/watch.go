package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pulse/internal/infrastructure/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the snapshot file and re-score health on change",
	Long: `Watch the persisted snapshot file and re-run the health analysis
whenever it changes on disk. Useful next to a cron job or CI step
that refreshes the snapshot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		store := services.Workspace.Store
		if _, err := loadSnapshot(services); err != nil {
			return err
		}

		watcher, err := watch.NewSnapshotWatcher(store.SnapshotPath(), watchDebounce, func() {
			snap, err := services.Snapshot.Reload()
			if err != nil {
				fmt.Printf("Reload failed: %v\n", err)
				return
			}
			report, err := services.Analytics.Health(snap)
			if err != nil {
				fmt.Printf("Health analysis failed: %v\n", err)
				return
			}
			fmt.Printf("%s snapshot reloaded, health %d/100 (%s)\n",
				time.Now().Format("15:04:05"), report.Overall, report.Status)
		})
		if err != nil {
			return MapError(err)
		}
		defer watcher.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Watching %s (Ctrl-C to stop)\n", store.SnapshotPath())
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			return MapError(err)
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce,
		"Quiet window before a change triggers a reload")
	RootCmd.AddCommand(watchCmd)
}
