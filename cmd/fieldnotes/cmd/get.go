package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/fieldnotes/pkg/api"
)

var getFormat string

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a field note",
	Long: `Show a field note from the store.

Example:
  fieldnotes get 42
  fieldnotes get 42 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(getFormat); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		backend, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()

		n, err := backend.Get(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get note %d: %w", id, err)
		}

		if getFormat == formatJSON {
			return outputJSON(cmd.OutOrStdout(), api.NewNoteDTO(n))
		}
		renderNote(cmd.OutOrStdout(), n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringVar(&getFormat, "format", formatTable, "Output format: table or json")
}
