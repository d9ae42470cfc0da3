package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"catwatch-backend/lib/scrapers/rescue"
	"catwatch-backend/lib/serviceutil"
	"catwatch-backend/services/catalog"
)

func init() {
	rootCmd.AddCommand(verifyImagesCmd)
}

// audits the dataset against the local image cache after a run, so a
// deploy never ships records whose photos 404
var verifyImagesCmd = &cobra.Command{
	Use:   "verify-images",
	Short: "Check that every record's cached image exists locally and is non-empty.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("failed to load config", err)
		}
		st, err := openStore(cfg)
		if err != nil {
			serviceutil.Fatal("failed to open data directory", err)
		}
		images, err := catalog.NewImageCache(cfg.ImageDir, nil)
		if err != nil {
			serviceutil.Fatal("failed to open image directory", err)
		}

		cats := st.Load()
		errors := 0
		for _, cat := range cats {
			switch {
			case cat.Image == "":
				fmt.Fprintf(os.Stderr, "[FAIL] %s (%s) has no image field\n", cat.Name, cat.Id)
				errors++
			case rescue.IsPlaceholderImage(cat.Image):
				// placeholders are served remotely, nothing to check
			case !images.VerifyLocal(cat.Image):
				fmt.Fprintf(os.Stderr, "[FAIL] image for %s missing or empty: %s\n", cat.Name, cat.Image)
				errors++
			}
		}

		if errors > 0 {
			fmt.Fprintf(os.Stderr, "found %d image issues across %d records\n", errors, len(cats))
			os.Exit(1)
		}
		fmt.Printf("all %d cat images verified\n", len(cats))
	},
}
