package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a pulse workspace in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return err
		}
		services, err := loadServices(root)
		if err != nil {
			return err
		}

		store := services.Workspace.Store
		if store.IsInitialized() {
			fmt.Println("Workspace already initialized.")
			return nil
		}
		if err := store.Initialize(); err != nil {
			return MapError(err)
		}

		fmt.Printf("Initialized pulse workspace in %s\n", root)
		fmt.Println("Next: 'pulse token set <host> <token>' and 'pulse fetch <project-id>'")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
