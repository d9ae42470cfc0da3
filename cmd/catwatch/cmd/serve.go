package cmd

import (
	"github.com/spf13/cobra"

	"catwatch-backend/lib/serviceutil"
	"catwatch-backend/lib/telemetry"
	"catwatch-backend/services/catalog/server"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the merged dataset read-only over HTTP.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("failed to load config", err)
		}
		st, err := openStore(cfg)
		if err != nil {
			serviceutil.Fatal("failed to open data directory", err)
		}

		telemetry.InstrumentPerfStats(cmd.Context())

		srv := server.New(st, cfg.RateLimitPerMinute)
		serviceutil.StartHttpServer(cfg.ServerPort, srv.Router())
	},
}
