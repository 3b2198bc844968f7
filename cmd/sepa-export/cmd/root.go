// Package cmd provides CLI commands for sepa-export.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/sepa-export/pkg/config"
	"github.com/shunichi-ikebuchi/sepa-export/pkg/moco"
	"github.com/shunichi-ikebuchi/sepa-export/pkg/transfer"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sepa-export",
	Short: "Create SEPA direct-debit batches from MOCO invoices",
	Long: `sepa-export collects all sent MOCO invoices whose project is paid
by direct debit and writes them into one SEPA Direct Debit file
(pain.008.001.02) ready for upload to the bank.

It supports:
- Resolving project and customer bank data for each invoice
- Writing one batch file per run
- Skipping invoices already collected in an earlier batch
- Dry-run mode for checking the result

Example:
  sepa-export generate
  sepa-export generate --dry-run
  sepa-export list
  sepa-export stats`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logging
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
}

// loadConfig loads the configuration and checks the given required fields.
func loadConfig(required ...[]string) *config.Config {
	slog.Info("Loading configuration")

	cfg, err := config.Load(cfgFile)
	exitOnError(err, "failed to load configuration")

	if cfg.Debug && !debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	exitOnError(cfg.Validate(required...), "invalid configuration")
	return cfg
}

// newResolver wires the MOCO client into a transfer resolver.
func newResolver(cfg *config.Config, concurrency int) (*moco.Client, *transfer.Resolver) {
	client := moco.NewClient(moco.ClientConfig{
		APIURL:   cfg.Moco.APIURL,
		APIToken: cfg.Moco.APIToken,
		Timeout:  cfg.Sepa.FetchTimeout,
	})

	var props *transfer.PropertyMap
	if cfg.Sepa.PropertyMapping != "" {
		m, err := transfer.LoadPropertyMap(cfg.Sepa.PropertyMapping)
		exitOnError(err, "failed to load property mapping")
		props = &m
	}

	if concurrency <= 0 {
		concurrency = cfg.Sepa.Concurrency
	}

	resolver := transfer.NewResolver(client, transfer.ResolverConfig{
		Concurrency:  concurrency,
		FetchTimeout: cfg.Sepa.FetchTimeout,
		Properties:   props,
	})

	return client, resolver
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
