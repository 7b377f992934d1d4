package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"portfolio-tracker/internal/report"
)

func createExportCmd(open storeOpener) *cobra.Command {
	r := exportRunner{open: open}
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "export the stored ledger as YAML",
		Long:  `Write the entries and the starting amount stored in MongoDB as a YAML ledger file, or to standard output.`,
		Args:  cobra.MaximumNArgs(1),
		Run:   r.run,
	}
}

type exportRunner struct {
	open storeOpener
}

func (r *exportRunner) run(cmd *cobra.Command, args []string) {
	if err := r.execute(cmd, args); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func (r *exportRunner) execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, release, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer release()

	entries, settings, err := store.FetchAll(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := report.FromStore(entries, settings).Write(&buf); err != nil {
		return err
	}
	if len(args) == 0 {
		_, err = buf.WriteTo(cmd.OutOrStdout())
		return err
	}
	return atomic.WriteFile(args[0], &buf)
}
