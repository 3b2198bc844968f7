package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/sepa-export/pkg/batchfile"
	"github.com/shunichi-ikebuchi/sepa-export/pkg/db"
	"github.com/shunichi-ikebuchi/sepa-export/pkg/pathutil"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display collection statistics",
	Long: `Display statistics about collected invoices and written batches.

Shows:
- Total number of collected invoices
- Total number of batches and their amount
- Batch files written this year
- Last collection timestamp

Example:
  sepa-export stats`,
	Run: runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	cfg := loadConfig([]string{"output", "root"})

	pathResolver := pathutil.New(pathutil.Config{
		OutputRoot:   cfg.Output.Root,
		DatabasePath: cfg.Output.HistoryDB,
	})

	dbPath := pathResolver.GetDatabasePath()
	slog.Debug("Opening database", "path", dbPath)

	conn, err := db.Open(dbPath)
	exitOnError(err, "failed to open database")
	defer conn.Close()

	stats, err := db.NewCollectionHistory(conn).GetStats(ctx)
	exitOnError(err, "failed to get statistics")

	year := time.Now().Year()
	files, err := batchfile.NewFileSystemRepository(pathResolver).ListYear(year)
	exitOnError(err, "failed to list batch files")

	fmt.Println("\n=== Collection Statistics ===")
	fmt.Printf("Collected invoices:    %d\n", stats.TotalInvoices)
	fmt.Printf("Batches:               %d\n", stats.TotalBatches)
	fmt.Printf("Collected amount:      %s EUR\n", stats.TotalAmount.StringFixed(2))
	fmt.Printf("Batch files in %d:   %d\n", year, len(files))

	if stats.LastCollection.Valid {
		fmt.Printf("Last collection:       %s\n", stats.LastCollection.String)
	} else {
		fmt.Printf("Last collection:       (never)\n")
	}

	fmt.Println()

	slog.Info("Statistics displayed successfully")
}
