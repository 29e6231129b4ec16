package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ssargent/fieldnotes/pkg/api"
	"github.com/ssargent/fieldnotes/pkg/config"
	"github.com/ssargent/fieldnotes/pkg/storage"
)

var historyFormat string

// revisionLister is implemented by backends that keep old revisions
type revisionLister interface {
	Revisions(ctx context.Context, id int64) ([]storage.Revision, error)
}

type revisionOutput struct {
	Revision string      `json:"revision"`
	Saved    string      `json:"saved"`
	Note     api.NoteDTO `json:"note"`
}

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show every saved revision of a field note",
	Long: `Show every saved revision of a field note, oldest first. Only the
pebble backend keeps revisions.

Example:
  fieldnotes --backend pebble history 42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(historyFormat); err != nil {
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

		archive, ok := backend.(revisionLister)
		if !ok {
			return fmt.Errorf("history requires the %s backend (have %s)", config.BackendPebble, configFrom(cmd).Backend)
		}
		revs, err := archive.Revisions(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to read history of note %d: %w", id, err)
		}

		if historyFormat == formatJSON {
			out := make([]revisionOutput, 0, len(revs))
			for _, rev := range revs {
				out = append(out, revisionOutput{
					Revision: rev.ID.String(),
					Saved:    rev.Time().UTC().Format(time.RFC3339),
					Note:     api.NewNoteDTO(rev.Note),
				})
			}
			return outputJSON(cmd.OutOrStdout(), out)
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Revision", "Saved", "Type", "Logged", "Note"})
		for _, rev := range revs {
			t.AppendRow(table.Row{
				rev.ID.String(),
				rev.Time().UTC().Format(time.RFC3339),
				rev.Note.Type,
				yesNo(rev.Note.Logged),
				rev.Note.Note,
			})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyFormat, "format", formatTable, "Output format: table or json")
}
