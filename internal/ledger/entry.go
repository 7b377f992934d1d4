// Package ledger turns raw stock entries into valued entries and aggregates
// them into a chronological ledger, a per-date P&L series and portfolio totals.
//
// Everything in this package is pure: no I/O, no shared state.
package ledger

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// ErrInvalidEntry is returned when a raw entry fails numeric validation.
var ErrInvalidEntry = errors.New("invalid entry")

// Amounts in a View go out as JSON numbers, wherever the view is encoded.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// EntryInput is a raw entry as it arrives from a caller, before validation.
// Numeric fields are pointers so that a missing value can be told apart from zero.
type EntryInput struct {
	Date         string   `json:"date" yaml:"date"`
	Stock        string   `json:"stock" yaml:"stock"`
	Quantity     *float64 `json:"quantity" yaml:"quantity"`
	BuyingPrice  *float64 `json:"buyingPrice" yaml:"buyingPrice"`
	CurrentPrice *float64 `json:"currentPrice" yaml:"currentPrice"`
}

// RawEntry is a validated transaction: what was bought, when, and its current mark.
type RawEntry struct {
	Date         string
	Stock        string
	Quantity     decimal.Decimal
	BuyingPrice  decimal.Decimal
	CurrentPrice decimal.Decimal
}

// ValuedEntry is a RawEntry plus its derived figures.
type ValuedEntry struct {
	ID            string          `json:"id,omitempty"`
	Date          string          `json:"date"`
	Stock         string          `json:"stock"`
	Quantity      decimal.Decimal `json:"quantity"`
	BuyingPrice   decimal.Decimal `json:"buyingPrice"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	TotalCurrent  decimal.Decimal `json:"totalCurrent"`
	PnL           decimal.Decimal `json:"pnl"`
}

// ParseEntry validates in and converts it to a RawEntry. Every field problem
// is reported; the returned error wraps ErrInvalidEntry.
//
// Negative quantities are accepted and flow through the arithmetic unchanged.
func ParseEntry(in EntryInput) (RawEntry, error) {
	var errs error
	quantity, err := number("quantity", in.Quantity)
	errs = multierr.Append(errs, err)
	buying, err := price("buyingPrice", in.BuyingPrice)
	errs = multierr.Append(errs, err)
	current, err := price("currentPrice", in.CurrentPrice)
	errs = multierr.Append(errs, err)
	if errs != nil {
		return RawEntry{}, fmt.Errorf("%w: %v", ErrInvalidEntry, errs)
	}
	return RawEntry{
		Date:         in.Date,
		Stock:        in.Stock,
		Quantity:     quantity,
		BuyingPrice:  buying,
		CurrentPrice: current,
	}, nil
}

func number(field string, v *float64) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, fmt.Errorf("%s is required", field)
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return decimal.Zero, fmt.Errorf("%s must be a finite number, got %v", field, *v)
	}
	return decimal.NewFromFloat(*v), nil
}

func price(field string, v *float64) (decimal.Decimal, error) {
	d, err := number(field, v)
	if err != nil {
		return d, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative, got %s", field, d)
	}
	return d, nil
}

// Valuate computes the invested capital, current value and P&L of raw.
func Valuate(raw RawEntry) ValuedEntry {
	invested := raw.Quantity.Mul(raw.BuyingPrice)
	current := raw.Quantity.Mul(raw.CurrentPrice)
	return ValuedEntry{
		Date:          raw.Date,
		Stock:         raw.Stock,
		Quantity:      raw.Quantity,
		BuyingPrice:   raw.BuyingPrice,
		CurrentPrice:  raw.CurrentPrice,
		TotalInvested: invested,
		TotalCurrent:  current,
		PnL:           current.Sub(invested),
	}
}

// Raw returns the input fields of e.
func (e ValuedEntry) Raw() RawEntry {
	return RawEntry{
		Date:         e.Date,
		Stock:        e.Stock,
		Quantity:     e.Quantity,
		BuyingPrice:  e.BuyingPrice,
		CurrentPrice: e.CurrentPrice,
	}
}

// Revalue recomputes every derived field of e from raw, keeping its identity.
func (e ValuedEntry) Revalue(raw RawEntry) ValuedEntry {
	v := Valuate(raw)
	v.ID = e.ID
	return v
}
