package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/fieldnotes/pkg/api"
	"github.com/ssargent/fieldnotes/pkg/config"
	"github.com/ssargent/fieldnotes/pkg/di"
)

// recordingStarter captures the server config instead of listening
type recordingStarter struct {
	config api.ServerConfig
	notes  int
	calls  int
}

func (r *recordingStarter) CreateServerStarter() api.ServerStarter { return r }

func (r *recordingStarter) StartServer(ctx context.Context, repo api.Repository, cfg api.ServerConfig) error {
	r.calls++
	r.config = cfg
	notes, err := repo.List(ctx)
	r.notes = len(notes)
	return err
}

func useRecordingServer(t *testing.T) *recordingStarter {
	t.Helper()
	previous := container
	t.Cleanup(func() { SetContainer(previous) })

	starter := &recordingStarter{}
	c := di.NewContainer()
	c.SetServerFactory(starter)
	SetContainer(c)
	return starter
}

func TestUpCommand(t *testing.T) {
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, "data")
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Run("bootstrap and start", func(t *testing.T) {
		starter := useRecordingServer(t)

		out, err := executeCommand(t, "", "up", "--config", configPath, "--data-dir", dataDir, "--print-keys")
		require.NoError(t, err)
		assert.Contains(t, out, "Configuration created")
		assert.Contains(t, out, "API key:")

		cfg, err := config.LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, dataDir, cfg.DataDir)
		assert.DirExists(t, dataDir)

		require.Equal(t, 1, starter.calls)
		assert.Equal(t, cfg.Server.APIKey, starter.config.APIKey)
		assert.Equal(t, 8080, starter.config.Port)
		assert.Equal(t, "127.0.0.1", starter.config.Bind)
	})

	t.Run("existing config with overrides", func(t *testing.T) {
		starter := useRecordingServer(t)

		_, err := executeCommand(t, "", "put", "--config", configPath, "--id", "1")
		require.NoError(t, err)

		out, err := executeCommand(t, "", "up", "--config", configPath, "--port", "9000", "--api-key", "override")
		require.NoError(t, err)
		assert.NotContains(t, out, "Configuration created")

		require.Equal(t, 1, starter.calls)
		assert.Equal(t, 9000, starter.config.Port)
		assert.Equal(t, "override", starter.config.APIKey)
		assert.Equal(t, 1, starter.notes)
	})
}

func TestServeCommand_UsesConfig(t *testing.T) {
	starter := useRecordingServer(t)
	cfgPath := writeTestConfig(t, config.BackendPebble)

	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)
	cfg.Server.Port = 7070
	cfg.Server.APIKey = "from-config"
	cfg.Codec.StrictVersions = true
	require.NoError(t, config.SaveConfig(cfg, cfgPath))

	_, err = executeCommand(t, "", "serve", "--config", cfgPath)
	require.NoError(t, err)
	require.Equal(t, 1, starter.calls)
	assert.Equal(t, api.ServerConfig{Port: 7070, Bind: "127.0.0.1", APIKey: "from-config", StrictVersions: true}, starter.config)
}
