package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ssargent/fieldnotes/pkg/api"
	"github.com/ssargent/fieldnotes/pkg/fieldnote"
)

// Output formats
const (
	formatTable = "table"
	formatJSON  = "json"
)

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
	}
}

func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func formatTime(secs int64) string {
	if secs == 0 {
		return "-"
	}
	return time.Unix(secs, 0).UTC().Format(time.RFC3339)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// renderNote prints one note as a field/value table followed by its items
// and images, if any
func renderNote(w io.Writer, n *fieldnote.FieldNote) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"ID", n.ID},
		{"Cache", n.CacheCode},
		{"Name", n.CacheName},
		{"Type", n.Type},
		{"Time", formatTime(n.Time)},
		{"Favorite", yesNo(n.Favorite)},
		{"Logged", yesNo(n.Logged)},
		{"Note", n.Note},
	})
	t.Render()

	if items := n.Items(); len(items) > 0 {
		it := newTable(w)
		it.SetTitle("Items")
		it.AppendHeader(table.Row{"ID", "Code", "Name", "Action"})
		for _, item := range items {
			it.AppendRow(table.Row{item.ID, item.Code, item.Name, item.Action})
		}
		it.Render()
	}

	if images := n.Images(); len(images) > 0 {
		im := newTable(w)
		im.SetTitle("Images")
		im.AppendHeader(table.Row{"ID", "Caption", "Description", "Size"})
		for _, img := range images {
			im.AppendRow(table.Row{img.ID, img.Caption, img.Description, strconv.Itoa(len(img.Data)) + " B"})
		}
		im.Render()
	}
}

// renderNoteList prints one row per note
func renderNoteList(w io.Writer, notes []*fieldnote.FieldNote) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Cache", "Name", "Type", "Time", "Fav", "Logged", "Items", "Images"})
	for _, n := range notes {
		t.AppendRow(table.Row{
			n.ID,
			n.CacheCode,
			n.CacheName,
			n.Type,
			formatTime(n.Time),
			yesNo(n.Favorite),
			yesNo(n.Logged),
			len(n.Items()),
			len(n.Images()),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "", "Total", len(notes)})
	t.Render()
}

// noteDTOs converts notes for JSON output
func noteDTOs(notes []*fieldnote.FieldNote) []api.NoteDTO {
	out := make([]api.NoteDTO, 0, len(notes))
	for _, n := range notes {
		out = append(out, api.NewNoteDTO(n))
	}
	return out
}
