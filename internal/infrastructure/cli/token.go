package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pulse/pkg/application"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage tracker credentials",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set <host> <token>",
	Short: "Store a tracker token for a host",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		store := services.Workspace.Store
		tokens, err := store.LoadTokens()
		if err != nil {
			return MapError(err)
		}
		tokens[args[0]] = args[1]
		if err := store.SaveTokens(tokens); err != nil {
			return MapError(err)
		}
		fmt.Printf("Stored token for %s\n", args[0])
		return nil
	},
}

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored tokens in masked form",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		tokens, err := services.Workspace.Store.LoadTokens()
		if err != nil {
			return MapError(err)
		}
		hosts := make([]string, 0, len(tokens))
		for host := range tokens {
			hosts = append(hosts, host)
		}
		sort.Strings(hosts)
		for _, host := range hosts {
			note := ""
			if application.IsMaskedToken(tokens[host]) {
				note = " (masked, re-enter after restore)"
			}
			fmt.Printf("%s: %s%s\n", host, application.MaskToken(tokens[host]), note)
		}
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenListCmd)
	RootCmd.AddCommand(tokenCmd)
}
