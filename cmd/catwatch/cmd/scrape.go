package cmd

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"catwatch-backend/lib/serviceutil"
)

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run one scrape-and-merge batch against all configured sources.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("failed to load config", err)
		}
		st, err := openStore(cfg)
		if err != nil {
			serviceutil.Fatal("failed to open data directory", err)
		}
		p, err := buildPipeline(cfg, st)
		if err != nil {
			serviceutil.Fatal("failed to build pipeline", err)
		}

		t1 := time.Now()
		err = p.Run(cmd.Context())
		if err != nil {
			serviceutil.Fatal("run aborted", err)
		}
		t2 := time.Now()

		slog.Info("scraping time", "seconds", t2.Sub(t1).Seconds())
	},
}
