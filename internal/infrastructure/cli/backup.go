package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pulse/pkg/application"
)

// Flag variables for backup and restore
var (
	backupOutput      string
	backupWithTokens  bool
	restorePolicy     string
	restoreCategories []string
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write every stored setting into a single backup file",
	Long: `Write every stored setting, across all scopes, into a single JSON
backup file. Tokens are masked unless --include-tokens is set; a
restored masked token shows up in 'pulse token list' as needing
re-entry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		doc, err := services.Backup.Create(backupWithTokens)
		if err != nil {
			return MapError(err)
		}
		raw, err := doc.Marshal()
		if err != nil {
			return MapError(err)
		}

		if backupOutput == "" {
			backupOutput = fmt.Sprintf("pulse-backup-%s.json", doc.Metadata.Timestamp[:10])
		}
		if err := os.WriteFile(backupOutput, raw, 0o600); err != nil {
			return NewCLIError(fmt.Sprintf("failed to write %s", backupOutput), "", err)
		}

		fmt.Printf("Backed up %d entries (%s) to %s\n",
			doc.Metadata.ItemCount, strings.Join(doc.Metadata.IncludedData, ", "), backupOutput)
		if !backupWithTokens {
			fmt.Println("Tokens were masked; pass --include-tokens to keep them usable.")
		}
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore settings from a backup file",
	Long: `Restore settings from a backup file. The policy decides how existing
values are treated:

  overwrite        replace stored values with the backup's (default)
  skip-if-present  keep stored values, only fill gaps
  merge            append list-valued categories, keep the rest

Use --categories to restore a subset.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return NewCLIError(fmt.Sprintf("failed to read %s", args[0]), "", err)
		}

		doc, warnings, err := services.Backup.Validate(raw)
		if err != nil {
			return NewCLIError("backup file rejected", "The file is not a valid pulse backup", err)
		}
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}

		policy := application.RestorePolicy(restorePolicy)
		if err := services.Backup.Restore(doc, policy, restoreCategories); err != nil {
			return MapError(err)
		}

		fmt.Printf("Restored backup from %s (%d entries, policy %s)\n",
			doc.Metadata.Timestamp, doc.Metadata.ItemCount, policy)
		if !doc.Metadata.TokensIncluded {
			fmt.Println("Tokens in this backup are masked; re-enter them with 'pulse token set'.")
		}
		return nil
	},
}

func init() {
	backupCmd.Flags().StringVarP(&backupOutput, "output", "o", "",
		"Backup file path (default pulse-backup-<date>.json)")
	backupCmd.Flags().BoolVar(&backupWithTokens, "include-tokens", false,
		"Store tokens in clear text instead of masking them")
	restoreCmd.Flags().StringVarP(&restorePolicy, "policy", "p", string(application.PolicyOverwrite),
		"Restore policy (overwrite, skip-if-present, merge)")
	restoreCmd.Flags().StringSliceVarP(&restoreCategories, "categories", "c", nil,
		"Only restore these categories")
	RootCmd.AddCommand(backupCmd)
	RootCmd.AddCommand(restoreCmd)
}
