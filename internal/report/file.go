// Package report reads and writes YAML ledger files and renders portfolio
// views for the terminal.
package report

import (
	"fmt"
	"io"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"

	"portfolio-tracker/internal/ledger"
	"portfolio-tracker/internal/models"
)

// File is the YAML ledger file format.
type File struct {
	StartingAmount *float64            `yaml:"startingAmount,omitempty"`
	Entries        []ledger.EntryInput `yaml:"entries"`
}

// Load decodes a ledger file.
func Load(r io.Reader) (File, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return File{}, fmt.Errorf("failed to parse ledger file: %w", err)
	}
	return f, nil
}

// Valued validates and valuates every entry of f, in file order. All invalid
// entries are reported together.
func (f File) Valued() ([]ledger.ValuedEntry, error) {
	var errs error
	res := make([]ledger.ValuedEntry, 0, len(f.Entries))
	for i, in := range f.Entries {
		raw, err := ledger.ParseEntry(in)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("entry %d (%s %s): %w", i+1, in.Date, in.Stock, err))
			continue
		}
		res = append(res, ledger.Valuate(raw))
	}
	if errs != nil {
		return nil, errs
	}
	return res, nil
}

// FromStore builds a ledger file from stored documents.
func FromStore(entries []models.Entry, settings models.Portfolio) File {
	starting := settings.StartingAmount
	f := File{
		StartingAmount: &starting,
		Entries:        make([]ledger.EntryInput, 0, len(entries)),
	}
	for _, e := range entries {
		quantity, buying, current := e.Quantity, e.BuyingPrice, e.CurrentPrice
		f.Entries = append(f.Entries, ledger.EntryInput{
			Date:         e.Date,
			Stock:        e.Stock,
			Quantity:     &quantity,
			BuyingPrice:  &buying,
			CurrentPrice: &current,
		})
	}
	return f
}

// Write encodes f as YAML.
func (f File) Write(w io.Writer) (err error) {
	enc := yaml.NewEncoder(w)
	defer func() { err = multierr.Append(err, enc.Close()) }()
	return enc.Encode(f)
}
