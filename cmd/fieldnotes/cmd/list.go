package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/fieldnotes/pkg/fieldnote"
)

var (
	listFormat string
	listCache  string
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List field notes",
	Long: `List every stored field note ordered by id, or only the notes for one
cache.

Example:
  fieldnotes list
  fieldnotes list --cache GC1234 --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(listFormat); err != nil {
			return err
		}

		backend, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()

		var notes []*fieldnote.FieldNote
		if listCache != "" {
			notes, err = backend.FindByCache(cmd.Context(), listCache)
		} else {
			notes, err = backend.List(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("failed to list notes: %w", err)
		}

		if listFormat == formatJSON {
			return outputJSON(cmd.OutOrStdout(), noteDTOs(notes))
		}
		if len(notes) == 0 {
			cmd.Println("No field notes")
			return nil
		}
		renderNoteList(cmd.OutOrStdout(), notes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listFormat, "format", formatTable, "Output format: table or json")
	listCmd.Flags().StringVar(&listCache, "cache", "", "Only list notes for this cache code")
}
