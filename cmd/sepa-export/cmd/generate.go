package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/sepa-export/pkg/batchfile"
	"github.com/shunichi-ikebuchi/sepa-export/pkg/db"
	"github.com/shunichi-ikebuchi/sepa-export/pkg/moco"
	"github.com/shunichi-ikebuchi/sepa-export/pkg/pathutil"
	"github.com/shunichi-ikebuchi/sepa-export/pkg/sepa"
)

var (
	outputFile        string
	dryRun            bool
	includeCollected  bool
	noHistory         bool
	concurrency       int
	debtorBICOverride string
)

// generateCmd represents the generate command.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a SEPA direct-debit batch file",
	Long: `Generate one SEPA Direct Debit file from all sent MOCO invoices.

This command:
1. Fetches all invoices with status "sent" from MOCO
2. Skips invoices already collected in an earlier batch
3. Resolves project and customer of each invoice
4. Keeps invoices whose project is paid by direct debit
5. Writes a pain.008.001.02 file and records the collected invoices

If any invoice cannot be resolved no file is written.

Example:
  sepa-export generate
  sepa-export generate --dry-run
  sepa-export generate --output batch.xml --no-history`,
	Run: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "", `Output file, "-" for stdout (default: {output root}/{year}/{message id}.xml)`)
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Dry run mode (print XML, no file or history writes)")
	generateCmd.Flags().BoolVar(&includeCollected, "include-collected", false, "Include invoices already collected in an earlier batch")
	generateCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not read or write the collection history")
	generateCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel invoice lookups (default from SEPA_CONCURRENCY)")
	generateCmd.Flags().StringVar(&debtorBICOverride, "debtor-bic-override", "", "Use this BIC for every debtor instead of the customer's BIC")
}

func runGenerate(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	cfg := loadConfig(
		[]string{"moco", "apiUrl"},
		[]string{"moco", "apiToken"},
		[]string{"creditor", "name"},
		[]string{"creditor", "iban"},
		[]string{"creditor", "bic"},
		[]string{"creditor", "schemeId"},
	)

	slog.Info("Starting batch generation", "dry_run", dryRun, "include_collected", includeCollected)

	client, resolver := newResolver(cfg, concurrency)

	pathResolver := pathutil.New(pathutil.Config{
		OutputRoot:   cfg.Output.Root,
		DatabasePath: cfg.Output.HistoryDB,
	})

	var history *db.CollectionHistory
	if !noHistory {
		conn := openHistory(pathResolver)
		defer conn.Close()
		history = db.NewCollectionHistory(conn)
	}

	// Fetch invoices from MOCO
	slog.Info("Fetching sent invoices from MOCO")
	invoices, err := client.FetchSentInvoices(ctx)
	exitOnError(err, "failed to fetch invoices")
	slog.Info("Fetched invoices", "count", len(invoices))

	invoices, err = pendingInvoices(ctx, history, invoices, includeCollected)
	exitOnError(err, "failed to get collected invoice IDs")

	transfers, err := resolver.Resolve(ctx, invoices)
	exitOnError(err, "failed to resolve transfers")

	override := debtorBICOverride
	if override == "" {
		override = cfg.Sepa.DebtorBICOverride
	}
	if override != "" {
		slog.Warn("Overriding debtor BIC for all transactions", "bic", override)
	}

	builder := sepa.NewBuilder(sepa.BuilderConfig{
		Creditor: sepa.Creditor{
			Name:     cfg.Creditor.Name,
			IBAN:     cfg.Creditor.IBAN,
			BIC:      cfg.Creditor.BIC,
			SchemeID: cfg.Creditor.SchemeID,
		},
		MessagePrefix:     cfg.Sepa.MessagePrefix,
		LocalInstrument:   cfg.Sepa.LocalInstrument,
		SequenceType:      cfg.Sepa.SequenceType,
		DebtorBICOverride: override,
	})

	doc, err := builder.Build(transfers)
	exitOnError(err, "failed to build batch")

	if len(transfers) == 0 {
		fmt.Println("No invoices to collect")
		return
	}

	if dryRun || outputFile == "-" {
		exitOnError(doc.WriteXML(os.Stdout), "failed to write batch")
		if dryRun {
			slog.Info("Dry run completed", "transactions", doc.NumberOfTransactions(), "control_sum", doc.ControlSum().StringFixed(2))
			return
		}
	}

	filePath := "-"
	if outputFile != "-" {
		filePath, err = writeBatch(doc, pathResolver, outputFile)
		exitOnError(err, "failed to write batch")
	}

	if history != nil {
		err := history.RecordBatch(ctx, doc.GroupHeader.MessageID, filePath, transfers)
		exitOnError(err, "failed to record collection history")
	}

	summary := os.Stdout
	if filePath == "-" {
		summary = os.Stderr
	}
	fmt.Fprintf(summary, "\nWrote %d transactions (%s EUR) to %s\n\n",
		doc.NumberOfTransactions(), doc.ControlSum().StringFixed(2), filePath)

	slog.Info("Batch generation completed",
		"message_id", doc.GroupHeader.MessageID,
		"transactions", doc.NumberOfTransactions(),
		"file", filePath,
	)
}

func writeBatch(doc *sepa.Document, pathResolver *pathutil.PathResolver, output string) (string, error) {
	if output == "" {
		return batchfile.NewFileSystemRepository(pathResolver).Save(doc)
	}
	return output, writeExclusive(output, doc.WriteXML)
}

// writeExclusive creates path, failing if it exists. A partially written
// file is removed again.
func writeExclusive(path string, write func(io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	err = write(f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// openHistory opens the collection history database.
func openHistory(pathResolver *pathutil.PathResolver) *db.Connection {
	dbPath := pathResolver.GetDatabasePath()
	slog.Debug("Opening database", "path", dbPath)
	conn, err := db.Open(dbPath)
	exitOnError(err, "failed to open database")
	return conn
}

// pendingInvoices drops invoices already collected in an earlier batch.
// A nil history or includeCollected keeps all invoices.
func pendingInvoices(ctx context.Context, history *db.CollectionHistory, invoices []moco.Invoice, includeCollected bool) ([]moco.Invoice, error) {
	if history == nil || includeCollected {
		return invoices, nil
	}

	collected, err := history.GetCollectedIDs(ctx)
	if err != nil {
		return nil, err
	}

	var result []moco.Invoice
	for _, inv := range invoices {
		if !collected[inv.ID] {
			result = append(result, inv)
		}
	}

	slog.Info("Skipping already collected invoices", "skipped", len(invoices)-len(result))
	return result, nil
}
