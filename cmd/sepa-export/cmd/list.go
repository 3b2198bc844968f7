package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/sepa-export/pkg/db"
	"github.com/shunichi-ikebuchi/sepa-export/pkg/pathutil"
)

// listCmd represents the list command.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the transfers the next batch would contain",
	Long: `Resolve all sent MOCO invoices and print the direct-debit transfers
without building a batch file. Invoices already collected in an earlier
batch are skipped, as generate does.

Example:
  sepa-export list
  sepa-export list --include-collected`,
	Run: runList,
}

var (
	listIncludeCollected bool
	listNoHistory        bool
)

func init() {
	listCmd.Flags().BoolVar(&listIncludeCollected, "include-collected", false, "Include invoices already collected in an earlier batch")
	listCmd.Flags().BoolVar(&listNoHistory, "no-history", false, "Do not read the collection history")
}

func runList(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	cfg := loadConfig(
		[]string{"moco", "apiUrl"},
		[]string{"moco", "apiToken"},
	)

	client, resolver := newResolver(cfg, 0)

	slog.Info("Fetching sent invoices from MOCO")
	invoices, err := client.FetchSentInvoices(ctx)
	exitOnError(err, "failed to fetch invoices")
	fetched := len(invoices)

	if !listNoHistory {
		pathResolver := pathutil.New(pathutil.Config{
			OutputRoot:   cfg.Output.Root,
			DatabasePath: cfg.Output.HistoryDB,
		})
		conn := openHistory(pathResolver)
		defer conn.Close()

		invoices, err = pendingInvoices(ctx, db.NewCollectionHistory(conn), invoices, listIncludeCollected)
		exitOnError(err, "failed to get collected invoice IDs")
	}

	transfers, err := resolver.Resolve(ctx, invoices)
	exitOnError(err, "failed to resolve transfers")

	if len(transfers) == 0 {
		fmt.Println("No invoices to collect")
		return
	}

	fmt.Printf("%-14s %-10s %12s  %-24s %-34s %-12s %s\n",
		"INVOICE", "DATE", "AMOUNT", "DEBTOR", "IBAN", "MANDATE", "SIGNED")
	for _, t := range transfers {
		fmt.Printf("%-14s %-10s %12s  %-24s %-34s %-12s %s\n",
			t.Identifier,
			t.InvoiceDate,
			t.Total.StringFixed(2),
			truncate(t.DebtorName, 24),
			t.IBAN,
			t.MandateReference,
			t.MandateDate.Format("2006-01-02"),
		)
	}
	fmt.Printf("\n%d transfers from %d sent invoices (%d already collected)\n", len(transfers), fetched, fetched-len(invoices))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
