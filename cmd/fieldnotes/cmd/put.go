package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.chromium.org/luci/common/logging"

	"github.com/ssargent/fieldnotes/pkg/fieldnote"
)

var putFlags noteFlags

// putCmd represents the put command
var putCmd = &cobra.Command{
	Use:   "put",
	Short: "Store a field note",
	Long: `Store a field note, replacing any note with the same id.

Example:
  fieldnotes put --id 42 --code GC1234 --name "Old Oak" --type found \
    --note "TFTC" --item TB5ABCD:Traveller:1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if putFlags.id == fieldnote.NoID {
			return fmt.Errorf("--id is required")
		}
		n, err := putFlags.build(time.Now())
		if err != nil {
			return err
		}

		backend, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()

		if err := backend.Put(cmd.Context(), n); err != nil {
			return fmt.Errorf("failed to put note: %w", err)
		}
		logging.Debugf(cmd.Context(), "stored note %d with %d items and %d images", n.ID, len(n.Items()), len(n.Images()))

		cmd.Printf("Stored note %d (%s)\n", n.ID, n.CacheCode)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
	putFlags.register(putCmd.Flags())
}
