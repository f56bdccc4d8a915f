package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change the analytics configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		cfg, err := services.Config.Load()
		if err != nil {
			return MapError(err)
		}
		if configJSON {
			return printJSON(cfg)
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}

var configApplyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Apply configuration overrides from a YAML file",
	Long: `Apply configuration overrides from a YAML file. The file is layered
over the currently effective configuration, validated as a whole and
only persisted when valid. An invalid file changes nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		cfg, err := services.Config.Load()
		if err != nil {
			return MapError(err)
		}
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return NewCLIError(fmt.Sprintf("failed to read %s", args[0]), "", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return NewCLIError(fmt.Sprintf("malformed YAML in %s", args[0]), "", err)
		}

		if err := services.Config.Save(cfg); err != nil {
			return MapError(err)
		}
		fmt.Println("Configuration updated.")
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the built-in default configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		if err := services.Config.Reset(); err != nil {
			return MapError(err)
		}
		fmt.Println("Configuration reset to defaults.")
		return nil
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&configJSON, "json", false, "Output in JSON format")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configApplyCmd)
	configCmd.AddCommand(configResetCmd)
	RootCmd.AddCommand(configCmd)
}
