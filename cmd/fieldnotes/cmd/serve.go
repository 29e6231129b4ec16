package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.chromium.org/luci/common/logging"

	"github.com/ssargent/fieldnotes/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the fieldnotes REST API server. Notes can be exchanged as JSON or
as binary envelopes (Content-Type: application/octet-stream).

The API key comes from server.api_key in the config file unless --api-key is
given. An empty key disables authentication.

Examples:
  fieldnotes serve
  fieldnotes serve --port 9090 --bind 0.0.0.0 --api-key mysecretkey`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addServerFlags(serveCmd)
}

// runServer serves the configured backend until interrupted. Server flags
// override the config when set.
func runServer(cmd *cobra.Command) error {
	cfg := configFrom(cmd)
	serverConfig := api.ServerConfig{
		Port:           cfg.Server.Port,
		Bind:           cfg.Server.Bind,
		APIKey:         cfg.Server.APIKey,
		StrictVersions: cfg.Codec.StrictVersions,
	}
	if cmd.Flags().Changed("port") {
		serverConfig.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("bind") {
		serverConfig.Bind, _ = cmd.Flags().GetString("bind")
	}
	if cmd.Flags().Changed("api-key") {
		serverConfig.APIKey, _ = cmd.Flags().GetString("api-key")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)

	backend, err := openBackend(cmd)
	if err != nil {
		return err
	}
	defer backend.Close()

	if serverConfig.APIKey == "" {
		logging.Warningf(ctx, "no API key configured; authentication is disabled")
	}
	logging.Infof(ctx, "serving %s backend from %s", cfg.Backend, cfg.DataDir)

	return getContainer().GetServerFactory().CreateServerStarter().StartServer(ctx, backend, serverConfig)
}

func addServerFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides config)")
	cmd.Flags().String("bind", "127.0.0.1", "Address to bind to (overrides config)")
	cmd.Flags().String("api-key", "", "API key for authentication (overrides config)")
}
