package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"portfolio-tracker/internal/ledger"
	"portfolio-tracker/internal/report"
)

func createReportCmd(open storeOpener) *cobra.Command {
	r := reportRunner{open: open}

	c := &cobra.Command{
		Use:   "report [FILE]",
		Short: "print the P&L report of a ledger",
		Long: `Print the ledger sorted by date, the datewise P&L series and the portfolio totals.
FILE is a YAML ledger file, "-" reads standard input. With --db the ledger is read from MongoDB.`,
		Args: cobra.MaximumNArgs(1),
		Run:  r.run,
	}
	r.setupFlags(c)
	return c
}

type reportRunner struct {
	open storeOpener

	startingAmount decimalFlag
	currency       string
	json, db       bool
	color          bool
}

func (r *reportRunner) setupFlags(c *cobra.Command) {
	c.Flags().Var(&r.startingAmount, "starting-amount", "override the starting amount")
	c.Flags().StringVar(&r.currency, "currency", "USD", "ISO 4217 code used to format amounts")
	c.Flags().BoolVar(&r.json, "json", false, "print the view as JSON")
	c.Flags().BoolVar(&r.db, "db", false, "read the ledger from MongoDB")
	c.Flags().BoolVar(&r.color, "color", true, "print output in color")
}

func (r *reportRunner) run(cmd *cobra.Command, args []string) {
	if err := r.execute(cmd, args); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func (r *reportRunner) execute(cmd *cobra.Command, args []string) (err error) {
	var (
		entries  []ledger.ValuedEntry
		starting decimal.Decimal
	)
	switch {
	case r.db:
		entries, starting, err = r.fromStore(cmd.Context())
	case len(args) == 1:
		entries, starting, err = r.fromFile(cmd.InOrStdin(), args[0])
	default:
		err = errors.New("either a ledger file or --db is required")
	}
	if err != nil {
		return err
	}
	view := ledger.Aggregate(entries, r.startingAmount.ValueOr(starting))

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer func() { err = multierr.Append(err, out.Flush()) }()
	if r.json {
		return report.RenderJSON(out, view)
	}
	return report.Renderer{Currency: r.currency, Color: r.color}.Render(out, view)
}

func (r *reportRunner) fromFile(stdin io.Reader, path string) ([]ledger.ValuedEntry, decimal.Decimal, error) {
	in := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, decimal.Zero, err
		}
		defer f.Close()
		in = f
	}
	file, err := report.Load(in)
	if err != nil {
		return nil, decimal.Zero, err
	}
	entries, err := file.Valued()
	if err != nil {
		return nil, decimal.Zero, err
	}
	starting := decimal.Zero
	if file.StartingAmount != nil {
		starting = decimal.NewFromFloat(*file.StartingAmount)
	}
	return entries, starting, nil
}

func (r *reportRunner) fromStore(ctx context.Context) ([]ledger.ValuedEntry, decimal.Decimal, error) {
	store, release, err := r.open(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer release()

	docs, settings, err := store.FetchAll(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}
	entries := make([]ledger.ValuedEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, d.Valued())
	}
	return entries, decimal.NewFromFloat(settings.StartingAmount), nil
}
