package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/ssargent/fieldnotes/pkg/fieldnote"
	"github.com/ssargent/fieldnotes/pkg/logtype"
)

// noteFlags holds the flags that describe a field note on the command line
type noteFlags struct {
	id       int64
	code     string
	name     string
	logType  string
	when     string
	note     string
	favorite bool
	logged   bool
	items    []string
	images   []string
}

func (f *noteFlags) register(fs *pflag.FlagSet) {
	fs.Int64Var(&f.id, "id", fieldnote.NoID, "Note id")
	fs.StringVar(&f.code, "code", "", "Cache code, e.g. GC1234")
	fs.StringVar(&f.name, "name", "", "Cache name")
	fs.StringVar(&f.logType, "type", logtype.Default.String(), "Log type, e.g. found, not-found, write-note")
	fs.StringVar(&f.when, "time", "", "Log time (RFC 3339 or Unix seconds, default now)")
	fs.StringVar(&f.note, "note", "", "Note text")
	fs.BoolVar(&f.favorite, "favorite", false, "Mark the cache as a favorite")
	fs.BoolVar(&f.logged, "logged", false, "Mark the note as already logged online")
	fs.StringArrayVar(&f.items, "item", nil, "Trackable as CODE:NAME[:ACTION] (repeatable)")
	fs.StringArrayVar(&f.images, "image", nil, "Image file to attach (repeatable)")
}

// build assembles a field note from the flag values
func (f *noteFlags) build(now time.Time) (*fieldnote.FieldNote, error) {
	n := fieldnote.New()
	n.ID = f.id
	n.CacheCode = f.code
	n.CacheName = f.name
	n.Note = f.note
	n.Favorite = f.favorite
	n.Logged = f.logged

	typ, err := logtype.Parse(f.logType)
	if err != nil {
		return nil, err
	}
	n.Type = typ

	ts, err := parseTime(f.when, now)
	if err != nil {
		return nil, err
	}
	n.SetTimestamp(ts)

	for i, raw := range f.items {
		item, err := parseItem(raw)
		if err != nil {
			return nil, err
		}
		item.ID = int64(i + 1)
		item.NoteID = n.ID
		n.AddItem(item)
	}

	for i, path := range f.images {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		n.AddImage(&fieldnote.Image{
			ID:      int64(i + 1),
			NoteID:  n.ID,
			Caption: filepath.Base(path),
			Data:    data,
		})
	}
	return n, nil
}

func parseTime(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want RFC 3339 or Unix seconds", s)
	}
	return t, nil
}

// parseItem parses CODE:NAME[:ACTION]
func parseItem(s string) (*fieldnote.Item, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || parts[0] == "" {
		return nil, fmt.Errorf("invalid item %q: want CODE:NAME[:ACTION]", s)
	}
	item := &fieldnote.Item{Code: parts[0], Name: parts[1]}
	if len(parts) == 3 {
		action, err := strconv.ParseInt(parts[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid item action %q: %w", parts[2], err)
		}
		item.Action = int32(action)
	}
	return item, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid note id %q", s)
	}
	return id, nil
}
