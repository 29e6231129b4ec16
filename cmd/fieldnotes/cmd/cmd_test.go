package cmd

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/fieldnotes/pkg/api"
	"github.com/ssargent/fieldnotes/pkg/codec"
	"github.com/ssargent/fieldnotes/pkg/config"
	"github.com/ssargent/fieldnotes/pkg/fieldnote"
	"github.com/ssargent/fieldnotes/pkg/logtype"
)

// resetFlags restores every flag to its default so consecutive executions
// of rootCmd do not leak state into each other
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	c.SetContext(context.Background())
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// writeTestConfig writes a config using dataDir and backend and returns its path
func writeTestConfig(t *testing.T, backend string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.Backend = backend
	cfg.Logging.Level = "error"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, path))
	return path
}

func TestCLI_NoteLifecycle(t *testing.T) {
	for _, backend := range []string{config.BackendLog, config.BackendPebble} {
		t.Run(backend, func(t *testing.T) {
			cfgPath := writeTestConfig(t, backend)

			out, err := executeCommand(t, "", "put", "--config", cfgPath,
				"--id", "42", "--code", "GC1234", "--name", "Old Oak",
				"--type", "not found", "--time", "2024-05-01T10:00:00Z",
				"--note", "TFTC", "--favorite", "--item", "TB5ABCD:Traveller:1")
			require.NoError(t, err)
			assert.Contains(t, out, "Stored note 42")

			out, err = executeCommand(t, "", "get", "42", "--config", cfgPath, "--format", "json")
			require.NoError(t, err)
			var dto api.NoteDTO
			require.NoError(t, json.Unmarshal([]byte(out), &dto))
			assert.Equal(t, int64(42), dto.ID)
			assert.Equal(t, "GC1234", dto.CacheCode)
			assert.Equal(t, "Old Oak", dto.CacheName)
			assert.Equal(t, logtype.NotFound, dto.Type)
			assert.Equal(t, int64(1714557600), dto.Time)
			assert.True(t, dto.Favorite)
			assert.False(t, dto.Logged)
			require.Len(t, dto.Items, 1)
			assert.Equal(t, api.ItemDTO{ID: 1, NoteID: 42, Code: "TB5ABCD", Name: "Traveller", Action: 1}, dto.Items[0])

			out, err = executeCommand(t, "", "get", "42", "--config", cfgPath)
			require.NoError(t, err)
			assert.Contains(t, out, "not-found")
			assert.Contains(t, out, "TB5ABCD")

			_, err = executeCommand(t, "", "put", "--config", cfgPath, "--id", "7", "--code", "GC7")
			require.NoError(t, err)

			out, err = executeCommand(t, "", "list", "--config", cfgPath, "--format", "json")
			require.NoError(t, err)
			var notes []api.NoteDTO
			require.NoError(t, json.Unmarshal([]byte(out), &notes))
			require.Len(t, notes, 2)
			assert.Equal(t, int64(7), notes[0].ID)
			assert.Equal(t, int64(42), notes[1].ID)
			assert.False(t, notes[0].Favorite, "flags from an earlier put must not leak")

			out, err = executeCommand(t, "", "list", "--config", cfgPath)
			require.NoError(t, err)
			assert.Contains(t, out, "GC1234")
			assert.Contains(t, out, "GC7")

			out, err = executeCommand(t, "", "list", "--config", cfgPath, "--cache", "gc1234", "--format", "json")
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal([]byte(out), &notes))
			require.Len(t, notes, 1)
			assert.Equal(t, int64(42), notes[0].ID)

			out, err = executeCommand(t, "", "delete", "42", "--config", cfgPath)
			require.NoError(t, err)
			assert.Contains(t, out, "Deleted note 42")

			_, err = executeCommand(t, "", "get", "42", "--config", cfgPath)
			assert.Error(t, err)
		})
	}
}

func TestCLI_History(t *testing.T) {
	t.Run("pebble keeps revisions", func(t *testing.T) {
		cfgPath := writeTestConfig(t, config.BackendPebble)

		_, err := executeCommand(t, "", "put", "--config", cfgPath, "--id", "3", "--code", "GC3", "--note", "first")
		require.NoError(t, err)
		_, err = executeCommand(t, "", "put", "--config", cfgPath, "--id", "3", "--code", "GC3", "--note", "second", "--logged")
		require.NoError(t, err)

		out, err := executeCommand(t, "", "history", "3", "--config", cfgPath, "--format", "json")
		require.NoError(t, err)
		var revs []revisionOutput
		require.NoError(t, json.Unmarshal([]byte(out), &revs))
		require.Len(t, revs, 2)
		assert.Equal(t, "first", revs[0].Note.Note)
		assert.Equal(t, "second", revs[1].Note.Note)
		assert.True(t, revs[1].Note.Logged)
		assert.Less(t, revs[0].Revision, revs[1].Revision)
	})

	t.Run("log backend has no history", func(t *testing.T) {
		cfgPath := writeTestConfig(t, config.BackendLog)
		_, err := executeCommand(t, "", "put", "--config", cfgPath, "--id", "3")
		require.NoError(t, err)

		_, err = executeCommand(t, "", "history", "3", "--config", cfgPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pebble")
	})

	t.Run("backend flag overrides config", func(t *testing.T) {
		cfgPath := writeTestConfig(t, config.BackendLog)
		_, err := executeCommand(t, "", "--backend", "pebble", "put", "--config", cfgPath, "--id", "9")
		require.NoError(t, err)
		_, err = executeCommand(t, "", "--backend", "pebble", "history", "9", "--config", cfgPath)
		assert.NoError(t, err)
	})
}

func TestCLI_EncodeDecode(t *testing.T) {
	cfgPath := writeTestConfig(t, config.BackendLog)
	file := filepath.Join(t.TempDir(), "note.bin")

	out, err := executeCommand(t, "", "encode", "--config", cfgPath, "--id", "42", "--code", "GC1234",
		"--type", "write-note", "--time", "1700000000", "--out", file)
	require.NoError(t, err)
	assert.Contains(t, out, "schema v1")

	out, err = executeCommand(t, "", "decode", file, "--config", cfgPath, "--format", "json")
	require.NoError(t, err)
	var resp api.DecodeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, fieldnote.SchemaVersion, resp.Version)
	assert.Equal(t, int64(42), resp.Note.ID)
	assert.Equal(t, logtype.WriteNote, resp.Note.Type)
	assert.Equal(t, int64(1700000000), resp.Note.Time)

	t.Run("hex through stdin", func(t *testing.T) {
		hexOut, err := executeCommand(t, "", "encode", "--config", cfgPath, "--id", "5", "--code", "GC5")
		require.NoError(t, err)

		out, err := executeCommand(t, hexOut, "decode", "-", "--hex", "--config", cfgPath)
		require.NoError(t, err)
		assert.Contains(t, out, "GC5")
	})

	t.Run("raw payload at an older version", func(t *testing.T) {
		n := fieldnote.New()
		n.ID = 11
		n.CacheCode = "GC11"
		raw := codec.Encode(n)
		// v0 ends before the items list
		raw = raw[:len(raw)-4]
		rawFile := filepath.Join(t.TempDir(), "payload.bin")
		require.NoError(t, os.WriteFile(rawFile, raw, 0644))

		out, err := executeCommand(t, "", "decode", rawFile, "--version", "0", "--config", cfgPath, "--format", "json")
		require.NoError(t, err)
		var resp api.DecodeResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, 0, resp.Version)
		assert.Equal(t, "GC11", resp.Note.CacheCode)
		assert.Empty(t, resp.Note.Items)
	})

	t.Run("strict rejects newer versions", func(t *testing.T) {
		_, err := executeCommand(t, "", "decode", file, "--version", "9", "--strict", "--config", cfgPath)
		require.Error(t, err)
		assert.True(t, codec.IsKind(err, codec.KindUnsupportedVersion))
	})

	t.Run("json input", func(t *testing.T) {
		doc := `{"id": 8, "cache_code": "GC8", "type": "attended", "items": [{"id": 1, "code": "TB8", "name": "Bug"}]}`
		out, err := executeCommand(t, doc, "encode", "--json", "-", "--config", cfgPath)
		require.NoError(t, err)

		data, err := hex.DecodeString(strings.TrimSpace(out))
		require.NoError(t, err)
		resp, err := decodeNote(data, -1, true)
		require.NoError(t, err)
		assert.Equal(t, "GC8", resp.Note.CacheCode)
		assert.Equal(t, logtype.Attended, resp.Note.Type)
		require.Len(t, resp.Note.Items, 1)
		assert.Equal(t, "TB8", resp.Note.Items[0].Code)
	})
}

func TestCLI_Errors(t *testing.T) {
	cfgPath := writeTestConfig(t, config.BackendLog)

	tests := []struct {
		name string
		args []string
	}{
		{"put without id", []string{"put", "--config", cfgPath}},
		{"bad log type", []string{"put", "--config", cfgPath, "--id", "1", "--type", "teleported"}},
		{"bad item", []string{"put", "--config", cfgPath, "--id", "1", "--item", "TB1"}},
		{"bad id", []string{"get", "abc", "--config", cfgPath}},
		{"negative id", []string{"delete", "--config", cfgPath, "--", "-1"}},
		{"bad format", []string{"list", "--config", cfgPath, "--format", "xml"}},
		{"missing config", []string{"list", "--config", filepath.Join(t.TempDir(), "nope.yaml")}},
		{"unknown backend", []string{"--backend", "tape", "list", "--config", cfgPath}},
		{"garbage envelope", []string{"decode", "-", "--hex", "--config", cfgPath}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, "zz", tt.args...)
			assert.Error(t, err)
		})
	}
}
