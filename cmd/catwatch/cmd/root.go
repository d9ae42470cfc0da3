package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"catwatch-backend/lib/configutil"
	"catwatch-backend/lib/restyutil"
	"catwatch-backend/lib/scrapers/battersea"
	"catwatch-backend/lib/scrapers/catsprotection"
	"catwatch-backend/lib/scrapers/lick"
	"catwatch-backend/lib/scrapers/mayhew"
	"catwatch-backend/lib/scrapers/rescue"
	"catwatch-backend/lib/telemetry"
	"catwatch-backend/services/catalog"
	"catwatch-backend/services/catalog/pipeline"
	"catwatch-backend/services/catalog/store"
)

var configPath string
var debug bool

var rootCmd = &cobra.Command{
	Use:   "catwatch",
	Short: "Aggregates adoptable-cat listings from London rescue organizations.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(debug)
		// no telemetry.json5 around just means no exporters
		telemetry.SetupFromEnv(cmd.Context(), "catwatch")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		telemetry.Shutdown(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "path to the config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type CatsProtectionBranch struct {
	BranchUrl string `json:"branch_url"`
	Location  string `json:"location"`
}

type SourcesConfig struct {
	Battersea struct {
		GalleryUrl string `json:"gallery_url"`
	} `json:"battersea"`
	CatsProtection []CatsProtectionBranch `json:"cats_protection"`
	Lick           struct {
		AdoptUrl string `json:"adopt_url"`
	} `json:"lick"`
	Mayhew struct {
		ListingUrl string `json:"listing_url"`
	} `json:"mayhew"`
}

type Config struct {
	DataDir  string `json:"data_dir"`
	ImageDir string `json:"image_dir"`
	// spacing between outbound requests per source, in milliseconds
	PolitenessMs       int           `json:"politeness_ms"`
	ServerPort         int           `json:"server_port"`
	RateLimitPerMinute int           `json:"rate_limit_per_minute"`
	Sources            SourcesConfig `json:"sources"`
}

func loadConfig() (Config, error) {
	cfg, err := configutil.ReadConfig[Config](configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read %s: %w", configPath, err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.ImageDir == "" {
		cfg.ImageDir = "public/cats"
	}
	if cfg.PolitenessMs == 0 {
		cfg.PolitenessMs = 300
	}
	if cfg.ServerPort == 0 {
		cfg.ServerPort = 8080
	}
	if cfg.RateLimitPerMinute == 0 {
		cfg.RateLimitPerMinute = 120
	}
	return cfg, nil
}

func openStore(cfg Config) (*store.Store, error) {
	return store.New(cfg.DataDir)
}

// buildPipeline assembles the adapters in their fixed run order. Each
// source gets its own client so the politeness limiter is per site, not
// global. With --debug, every exchange is dumped under <data_dir>/dump
// for selector archaeology when a site changes its markup.
func buildPipeline(cfg Config, st *store.Store) (*pipeline.Pipeline, error) {
	delay := time.Duration(cfg.PolitenessMs) * time.Millisecond

	clientFor := func(source string) *resty.Client {
		opts := rescue.ClientOptions{Delay: delay}
		if debug {
			opts.DumpOutput = restyutil.NewFilesystemOutput(filepath.Join(cfg.DataDir, "dump", source))
		}
		return rescue.NewClient(opts)
	}

	entries := []pipeline.Entry{
		{
			Source: battersea.New(battersea.Options{
				GalleryUrl: cfg.Sources.Battersea.GalleryUrl,
				Http:       clientFor("battersea"),
			}),
			Type:        catalog.SourceShelter,
			FallbackUrl: battersea.DefaultGalleryUrl,
		},
	}
	for i, branch := range cfg.Sources.CatsProtection {
		// every branch is its own entry under the shared cats_protection
		// source id, so backups and dumps are keyed per branch
		key := fmt.Sprintf("cats_protection-%d", i)
		entries = append(entries, pipeline.Entry{
			Source: catsprotection.New(catsprotection.Options{
				BranchUrl: branch.BranchUrl,
				Location:  branch.Location,
				Http:      clientFor(key),
			}),
			Type:        catalog.SourcePhysicalCenter,
			FallbackUrl: branch.BranchUrl,
			BackupKey:   key,
		})
	}
	entries = append(entries,
		pipeline.Entry{
			Source: lick.New(lick.Options{
				AdoptUrl: cfg.Sources.Lick.AdoptUrl,
				Http:     clientFor("lick"),
			}),
			Type:        catalog.SourceNetwork,
			FallbackUrl: lick.DefaultAdoptUrl,
		},
		pipeline.Entry{
			Source: mayhew.New(mayhew.Options{
				ListingUrl: cfg.Sources.Mayhew.ListingUrl,
				Http:       clientFor("mayhew"),
			}),
			Type:        catalog.SourceShelter,
			FallbackUrl: mayhew.DefaultListingUrl,
		},
	)

	images, err := catalog.NewImageCache(cfg.ImageDir, rescue.NewClient(rescue.ClientOptions{Delay: delay}))
	if err != nil {
		return nil, err
	}

	return pipeline.New(entries, st, images), nil
}
