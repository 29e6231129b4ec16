package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/fieldnotes/pkg/config"
)

// upCmd represents the up command
var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Bootstrap and start the fieldnotes server",
	Long: `Create a configuration with a generated API key if none exists, then
start the REST API server. This is the quickest way to get fieldnotes running.

Examples:
  fieldnotes up
  fieldnotes up --data-dir ./mydata --port 9000
  fieldnotes up --config ./fieldnotes.yaml --print-keys`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if !config.ConfigExists(configPath) {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			backend, _ := cmd.Flags().GetString("backend")
			printKeys, _ := cmd.Flags().GetBool("print-keys")

			cmd.Printf("First run detected, bootstrapping fieldnotes...\n")
			cfg, err := initializeConfig(configPath, dataDir, backend, false)
			if err != nil {
				return err
			}
			cmd.Printf("Configuration created at %s\n", configPath)
			if printKeys {
				cmd.Printf("API key: %s\n", cfg.Server.APIKey)
			}
		}
		return prepareCommand(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFrom(cmd)
		cmd.Printf("Starting fieldnotes on %s:%d (%s backend, data in %s)\n",
			cfg.Server.Bind, cfg.Server.Port, cfg.Backend, cfg.DataDir)
		return runServer(cmd)
	},
}

func init() {
	rootCmd.AddCommand(upCmd)
	addServerFlags(upCmd)
	upCmd.Flags().Bool("print-keys", false, "Print the generated API key")
}
