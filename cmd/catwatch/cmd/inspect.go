package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"catwatch-backend/lib/serviceutil"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the persisted dataset as a table.",
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

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"Id", "Name", "Status", "Age", "Category", "Source", "Listed", "Reserved", "Adopted",
		})
		for _, cat := range cats {
			reserved, adopted := "", ""
			if cat.DateReserved != nil {
				reserved = cat.DateReserved.Format("2006-01-02")
			}
			if cat.DateAdopted != nil {
				adopted = cat.DateAdopted.Format("2006-01-02")
			}
			t.AppendRow(table.Row{
				cat.Id, cat.Name, cat.Status, cat.Age, cat.AgeCategory,
				cat.SourceId, cat.DateListed.Format("2006-01-02"), reserved, adopted,
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()

		if meta, err := st.LoadMeta(); err == nil {
			cmd.Printf("last scraped: %s\n", meta.LastScraped.Format("2006-01-02 15:04:05"))
		}
	},
}
