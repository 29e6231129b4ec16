package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.chromium.org/luci/common/logging"
	"go.chromium.org/luci/common/logging/gologger"

	"github.com/ssargent/fieldnotes/pkg/api"
	"github.com/ssargent/fieldnotes/pkg/config"
	"github.com/ssargent/fieldnotes/pkg/di"
)

var container *di.Container

type configKey struct{}

// SetContainer sets the dependency injection container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fieldnotes",
	Short: "fieldnotes - geocaching field note store",
	Long: `fieldnotes keeps geocaching field notes as versioned binary records.

Notes are stored in an append-only log or in a pebble archive that keeps
every revision, and can be exchanged as binary envelopes over a REST API.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepareCommand,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath(), "Path to the config file")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory (overrides config)")
	rootCmd.PersistentFlags().String("backend", "", "Storage backend: log or pebble (overrides config)")
}

// prepareCommand loads the config and installs the logger in the command's
// context
func prepareCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, err := setupLogging(cmd.Context(), cfg.Logging.Level, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	cmd.SetContext(context.WithValue(ctx, configKey{}, cfg))
	return nil
}

// loadConfig reads the config file named by --config and applies flag
// overrides. A missing default config file yields the defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg := config.DefaultConfig()
	switch {
	case config.ConfigExists(path):
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case cmd.Flags().Changed("config"):
		return nil, fmt.Errorf("config file does not exist: %s (run 'fieldnotes init')", path)
	}

	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		cfg.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging installs a gologger writing to out at the given level
func setupLogging(ctx context.Context, level string, out io.Writer) (context.Context, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	lvl := logging.Info
	switch name := strings.ToLower(level); name {
	case "":
	case "warn":
		lvl = logging.Warning
	default:
		if err := lvl.Set(name); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	ctx = (&gologger.LoggerConfig{Out: out}).Use(ctx)
	return logging.SetLevel(ctx, lvl), nil
}

func configFrom(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

// openBackend opens the configured backend. The caller closes it.
func openBackend(cmd *cobra.Command) (api.Backend, error) {
	cfg := configFrom(cmd)
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return getContainer().GetBackendFactory().OpenBackend(cmd.Context(), cfg)
}

func getContainer() *di.Container {
	if container == nil {
		container = di.NewContainer()
	}
	return container
}
