package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a field note",
	Long: `Delete a field note from the store. With the pebble backend every
revision of the note is removed.

Example:
  fieldnotes delete 42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		backend, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()

		if err := backend.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete note %d: %w", id, err)
		}

		cmd.Printf("Deleted note %d\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
