package cmd

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ssargent/fieldnotes/pkg/api"
	"github.com/ssargent/fieldnotes/pkg/codec"
	"github.com/ssargent/fieldnotes/pkg/envelope"
	"github.com/ssargent/fieldnotes/pkg/fieldnote"
)

var (
	decodeFormat  string
	decodeVersion int
	decodeHex     bool
	decodeStrict  bool
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <file>",
	Short: "Decode an encoded field note",
	Long: `Decode a field note envelope from a file (- for stdin). Payloads written
by a newer schema are read up to the fields this build knows about unless
--strict is set or codec.strict_versions is enabled.

Use --version to decode a bare payload written at that schema version.

Examples:
  fieldnotes decode note.bin
  fieldnotes encode --id 1 | fieldnotes decode --hex -
  fieldnotes decode --version 0 payload.bin --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(decodeFormat); err != nil {
			return err
		}
		data, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		if decodeHex {
			data, err = hex.DecodeString(string(bytes.TrimSpace(data)))
			if err != nil {
				return fmt.Errorf("invalid hex input: %w", err)
			}
		}

		strict := decodeStrict || configFrom(cmd).Codec.StrictVersions
		resp, err := decodeNote(data, decodeVersion, strict)
		if err != nil {
			return err
		}

		if decodeFormat == formatJSON {
			return outputJSON(cmd.OutOrStdout(), resp)
		}
		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Schema", "Payload", "Current"})
		t.AppendRow(table.Row{resp.Version, fmt.Sprintf("%d B", resp.Size), fieldnote.SchemaVersion})
		t.Render()
		renderNote(cmd.OutOrStdout(), resp.Note.FieldNote())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().StringVar(&decodeFormat, "format", formatTable, "Output format: table or json")
	decodeCmd.Flags().IntVar(&decodeVersion, "version", -1, "Decode a bare payload written at this schema version")
	decodeCmd.Flags().BoolVar(&decodeHex, "hex", false, "Input is hex text")
	decodeCmd.Flags().BoolVar(&decodeStrict, "strict", false, "Reject payloads written by a newer schema")
}

// decodeNote decodes an envelope, or a bare payload when version is not
// negative
func decodeNote(data []byte, version int, strict bool) (api.DecodeResponse, error) {
	n := fieldnote.New()
	if version >= 0 {
		if strict {
			if err := codec.CheckVersion(n, version); err != nil {
				return api.DecodeResponse{}, err
			}
		}
		if err := codec.Decode(data, version, n); err != nil {
			return api.DecodeResponse{}, fmt.Errorf("failed to decode payload: %w", err)
		}
		return api.DecodeResponse{Version: version, Size: len(data), Note: api.NewNoteDTO(n)}, nil
	}

	h, err := envelope.Options{Strict: strict}.Read(codec.NewReader(data), n)
	if err != nil {
		return api.DecodeResponse{}, fmt.Errorf("failed to decode envelope: %w", err)
	}
	return api.DecodeResponse{Version: h.Version, Size: h.Size, Note: api.NewNoteDTO(n)}, nil
}
