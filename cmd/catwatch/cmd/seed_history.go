package cmd

import (
	"fmt"
	"time"

	"github.com/mazen160/go-random"
	"github.com/spf13/cobra"

	"catwatch-backend/lib/serviceutil"
	"catwatch-backend/services/catalog"
)

func init() {
	rootCmd.AddCommand(seedHistoryCmd)
}

// one-time backfill: the very first dataset was scraped in a single run,
// which stamped every cat with the same dateListed and flattened the
// freshness charts. This spreads listing dates over the past two months,
// weighted towards recent.
var seedHistoryCmd = &cobra.Command{
	Use:   "seed-history",
	Short: "Backdate dateListed/dateReserved over a plausible distribution (one-time backfill).",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("failed to load config", err)
		}
		st, err := openStore(cfg)
		if err != nil {
			serviceutil.Fatal("failed to open data directory", err)
		}

		cats := st.Load()
		if len(cats) == 0 {
			serviceutil.Fatal("no dataset to backdate", fmt.Errorf("dataset empty"))
		}

		now := time.Now().UTC()
		for i := range cats {
			daysAgo, err := weightedDaysAgo()
			if err != nil {
				serviceutil.Fatal("failed to draw random offset", err)
			}
			listed := now.AddDate(0, 0, -daysAgo)
			cats[i].DateListed = listed

			switch cats[i].Status {
			case catalog.StatusReserved, catalog.StatusAdopted:
				// the reservation has to land between listing and now
				if cats[i].DateReserved == nil || cats[i].DateReserved.Before(listed) {
					wait, err := random.IntRange(0, daysAgo+1)
					if err != nil {
						serviceutil.Fatal("failed to draw random offset", err)
					}
					reserved := listed.AddDate(0, 0, wait)
					cats[i].DateReserved = &reserved
				}
			default:
				cats[i].DateReserved = nil
			}
		}

		err = st.Save(cats)
		if err != nil {
			serviceutil.Fatal("failed to persist backdated dataset", err)
		}
		fmt.Printf("backdated %d records\n", len(cats))
	},
}

// 40% under a week, 30% one-two weeks, 20% two-four weeks, 10% older
func weightedDaysAgo() (int, error) {
	bucket, err := random.IntRange(0, 10)
	if err != nil {
		return 0, err
	}
	switch {
	case bucket < 4:
		return random.IntRange(0, 7)
	case bucket < 7:
		return random.IntRange(7, 14)
	case bucket < 9:
		return random.IntRange(14, 30)
	default:
		return random.IntRange(30, 61)
	}
}
