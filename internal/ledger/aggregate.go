package ledger

import (
	"encoding/json"
	"slices"

	"github.com/shopspring/decimal"
)

// View is everything the presentation layer gets from the ledger.
type View struct {
	SortedEntries        []ValuedEntry   `json:"sortedEntries"`
	StartingAmount       decimal.Decimal `json:"startingAmount"`
	TotalPnL             decimal.Decimal `json:"totalPnL"`
	FinalPortfolioAmount decimal.Decimal `json:"finalPortfolioAmount"`
	AsOfDate             AsOfDate        `json:"asOfDate"`
	DateSeries           []DateBucket    `json:"dateSeries"`
	// UnparseableDates lists, once each, the dates that could not be read as
	// calendar dates. Those entries are sorted last.
	UnparseableDates []string `json:"unparseableDates"`
}

// DateBucket is the summed P&L of every entry sharing one date string.
type DateBucket struct {
	Date string          `json:"date"`
	PnL  decimal.Decimal `json:"pnl"`
}

// AsOfDate is the date of the chronologically last entry, if there is one.
type AsOfDate struct {
	date string
	ok   bool
}

// Get returns the date and whether the ledger had any entry.
func (a AsOfDate) Get() (string, bool) { return a.date, a.ok }

// String returns the date, or "N/A" for an empty ledger.
func (a AsOfDate) String() string {
	if !a.ok {
		return "N/A"
	}
	return a.date
}

// MarshalJSON encodes an unavailable date as null.
func (a AsOfDate) MarshalJSON() ([]byte, error) {
	if !a.ok {
		return []byte("null"), nil
	}
	return json.Marshal(a.date)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (a *AsOfDate) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		*a = AsOfDate{}
		return nil
	}
	*a = AsOfDate{date: *s, ok: true}
	return nil
}

// Aggregate sorts entries by date, totals their P&L and buckets it per date.
// entries is not modified. Entries sharing a date keep their input order.
func Aggregate(entries []ValuedEntry, startingAmount decimal.Decimal) View {
	sorted, unparseable := sortByDate(entries)

	total := decimal.Zero
	series := newBuckets(len(sorted))
	for _, e := range sorted {
		total = total.Add(e.PnL)
		series.add(e.Date, e.PnL)
	}

	view := View{
		SortedEntries:        sorted,
		StartingAmount:       startingAmount,
		TotalPnL:             total,
		FinalPortfolioAmount: startingAmount.Add(total),
		DateSeries:           series.list(),
		UnparseableDates:     unparseable,
	}
	if n := len(sorted); n > 0 {
		view.AsOfDate = AsOfDate{date: sorted[n-1].Date, ok: true}
	}
	return view
}

func sortByDate(entries []ValuedEntry) ([]ValuedEntry, []string) {
	type keyed struct {
		entry ValuedEntry
		key   sortKey
	}
	keys := make([]keyed, len(entries))
	unparseable := []string{}
	seen := map[string]bool{}
	for i, e := range entries {
		k := parseDate(e.Date)
		if !k.ok && !seen[e.Date] {
			seen[e.Date] = true
			unparseable = append(unparseable, e.Date)
		}
		keys[i] = keyed{entry: e, key: k}
	}
	slices.SortStableFunc(keys, func(a, b keyed) int { return a.key.compare(b.key) })

	sorted := make([]ValuedEntry, len(keys))
	for i, k := range keys {
		sorted[i] = k.entry
	}
	return sorted, unparseable
}
