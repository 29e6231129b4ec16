package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/fieldnotes/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration",
	Long: `Write a default configuration file with a generated API key and create
the data directory.

This command will:
- Write the config file (default $XDG_CONFIG_HOME/fieldnotes/config.yaml)
- Generate an API key for the REST server
- Create the data directory

Examples:
  fieldnotes init
  fieldnotes init --config ./fieldnotes.yaml --data-dir ./data --backend pebble`,
	Args: cobra.NoArgs,
	// init must work without a readable config file
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := setupLogging(cmd.Context(), "", cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		cmd.SetContext(ctx)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		backend, _ := cmd.Flags().GetString("backend")
		force, _ := cmd.Flags().GetBool("force")

		cfg, err := initializeConfig(configPath, dataDir, backend, force)
		if err != nil {
			return err
		}

		cmd.Printf("Wrote %s\n", configPath)
		cmd.Printf("Data directory: %s\n", cfg.DataDir)
		cmd.Printf("Backend: %s\n", cfg.Backend)
		cmd.Printf("API key: %s\n", cfg.Server.APIKey)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}

// initializeConfig writes a bootstrap config to configPath and creates its
// data directory
func initializeConfig(configPath, dataDir, backend string, force bool) (*config.Config, error) {
	if config.ConfigExists(configPath) && !force {
		return nil, fmt.Errorf("config already exists at %s (use --force to overwrite)", configPath)
	}
	switch backend {
	case "", config.BackendLog, config.BackendPebble:
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}

	cfg, err := config.BootstrapConfig(configPath, dataDir)
	if err != nil {
		return nil, err
	}
	if backend != "" && backend != cfg.Backend {
		cfg.Backend = backend
		if err := config.SaveConfig(cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return cfg, nil
}
