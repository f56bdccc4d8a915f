package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Global flags shared by every command
var (
	projectPath  string
	scopeProject string
	scopePod     string
	verbose      bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "pulse",
	Version: Version,
	Short:   "Project analytics over tracker snapshots",
	Long: `Pulse turns a tracker snapshot into answers about project health.
It scores delivery health, measures velocity and backlog quality,
plans sprint capacity and flags at-risk epics, all from a locally
persisted snapshot so every analysis works offline.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	err := RootCmd.Execute()
	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.Hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", cliErr.Hint)
	}
	return err
}

func init() {
	RootCmd.PersistentFlags().StringVar(&projectPath, "path", "",
		"Project root directory (defaults to the working directory)")
	RootCmd.PersistentFlags().StringVar(&scopeProject, "project", "",
		"Project scope for stored settings and team data")
	RootCmd.PersistentFlags().StringVar(&scopePod, "pod", "",
		"Pod scope for stored settings and team data (wins over --project)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
}
