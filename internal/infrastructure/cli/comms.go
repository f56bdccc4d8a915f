package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pulse/internal/infrastructure/mail"
	"github.com/felixgeelhaar/pulse/pkg/domain/comms"
)

// Flag variables for comms commands
var (
	commsJSON       bool
	decisionDetails string
	decisionRecord  string
)

var commsCmd = &cobra.Command{
	Use:   "comms",
	Short: "Manage the stakeholder communication log",
}

var commsImportCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import email files into the communication log",
	Long: `Import .eml or .msg email files into the scope's communication log.
Tags and tracker references are detected from the subject and body, and
recipients are recorded as stakeholders. Unreadable files are reported
and skipped; the remaining files still import.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		var records []comms.Record
		var skipped int
		for _, path := range args {
			msg, err := mail.ParseFile(path)
			if err != nil {
				fmt.Printf("Skipping %s: %v\n", path, err)
				skipped++
				continue
			}
			records = append(records, msg.Record())
		}
		if len(records) == 0 {
			return NewCLIError("no importable messages", "Only .eml and .msg files are supported", nil)
		}

		if err := services.Comms.Import(currentScope(), records); err != nil {
			return MapError(err)
		}
		fmt.Printf("Imported %d messages (%d skipped)\n", len(records), skipped)
		return nil
	},
}

var commsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the scope's communication log",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		records, err := services.Comms.Records(currentScope())
		if err != nil {
			return MapError(err)
		}
		if commsJSON {
			return printJSON(records)
		}
		for _, r := range records {
			tags := ""
			if len(r.Tags) > 0 {
				tags = " [" + strings.Join(r.Tags, ", ") + "]"
			}
			fmt.Printf("%s (%s)%s %s\n", r.Subject, r.SentAt.Format("2006-01-02"), tags, r.Origin)
		}
		return nil
	},
}

var commsDecideCmd = &cobra.Command{
	Use:   "decide <title>",
	Short: "Record a decision in the decision log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		decision := comms.Decision{
			ID:       uuid.NewString(),
			Title:    args[0],
			Details:  decisionDetails,
			MadeAt:   time.Now(),
			RecordID: decisionRecord,
		}
		if err := services.Comms.LogDecision(currentScope(), decision); err != nil {
			return MapError(err)
		}
		fmt.Printf("Logged decision: %s\n", args[0])
		return nil
	},
}

var commsStakeholdersCmd = &cobra.Command{
	Use:   "stakeholders",
	Short: "List the scope's stakeholder register",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		stakeholders, err := services.Comms.Stakeholders(currentScope())
		if err != nil {
			return MapError(err)
		}
		if commsJSON {
			return printJSON(stakeholders)
		}
		for _, s := range stakeholders {
			fmt.Printf("%-24s %-32s %s\n", s.Name, s.Email, s.Role)
		}
		return nil
	},
}

func init() {
	commsListCmd.Flags().BoolVar(&commsJSON, "json", false, "Output in JSON format")
	commsStakeholdersCmd.Flags().BoolVar(&commsJSON, "json", false, "Output in JSON format")
	commsDecideCmd.Flags().StringVarP(&decisionDetails, "details", "d", "", "Decision details")
	commsDecideCmd.Flags().StringVar(&decisionRecord, "record", "", "Id of the communication the decision came from")
	commsCmd.AddCommand(commsImportCmd)
	commsCmd.AddCommand(commsListCmd)
	commsCmd.AddCommand(commsDecideCmd)
	commsCmd.AddCommand(commsStakeholdersCmd)
	RootCmd.AddCommand(commsCmd)
}
