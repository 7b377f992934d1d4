// Command pnlreport prints portfolio P&L reports from a YAML ledger file or
// from the database the server writes to.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"portfolio-tracker/config"
	"portfolio-tracker/internal/services"
	"portfolio-tracker/pkg/logger"
)

func main() {
	if err := rootCmd(openMongoStore).Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd(open storeOpener) *cobra.Command {
	c := &cobra.Command{
		Use:   "pnlreport",
		Short: "pnlreport summarizes a stock portfolio ledger",
		Long:  `pnlreport valuates ledger entries and prints per-entry, per-date and total profit and loss.`,

		SilenceUsage: true,
	}
	c.AddCommand(createReportCmd(open))
	c.AddCommand(createExportCmd(open))
	return c
}

// storeOpener connects to the ledger store. The returned function releases it.
type storeOpener func(ctx context.Context) (services.PortfolioStore, func(), error)

func openMongoStore(_ context.Context) (services.PortfolioStore, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true, Out: os.Stderr})
	logger.SetGlobalLogger(log)

	client, err := config.ConnectDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open ledger database: %w", err)
	}
	store := services.NewMongoPortfolioStore(
		config.GetCollection(client, cfg, "entries"),
		config.GetCollection(client, cfg, "portfolio"),
		log,
	)
	return store, func() { config.DisconnectDB(client) }, nil
}
