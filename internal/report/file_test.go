package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"portfolio-tracker/internal/ledger"
	"portfolio-tracker/internal/models"
)

const ledgerYAML = `
startingAmount: 1000
entries:
  - date: 2024-01-02
    stock: BBB
    quantity: 2
    buyingPrice: 50
    currentPrice: 40
  - date: "2024-01-01"
    stock: AAA
    quantity: 10
    buyingPrice: 100
    currentPrice: 110
`

func TestLoad(t *testing.T) {
	f, err := Load(strings.NewReader(ledgerYAML))
	require.NoError(t, err)

	require.NotNil(t, f.StartingAmount)
	assert.Equal(t, 1000.0, *f.StartingAmount)
	require.Len(t, f.Entries, 2)
	assert.Equal(t, "2024-01-02", f.Entries[0].Date, "unquoted dates keep their text")
	assert.Equal(t, "AAA", f.Entries[1].Stock)

	entries, err := f.Valued()
	require.NoError(t, err)
	assert.Equal(t, "-20", entries[0].PnL.String())
	assert.Equal(t, "100", entries[1].PnL.String())
}

func TestLoad_Empty(t *testing.T) {
	f, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, f.StartingAmount)

	entries, err := f.Valued()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(strings.NewReader("entries: [unterminated"))
	assert.Error(t, err)
}

func TestValued_ReportsEveryInvalidEntry(t *testing.T) {
	f, err := Load(strings.NewReader(`
entries:
  - {date: "2024-01-01", stock: AAA, buyingPrice: 1, currentPrice: 1}
  - {date: "2024-01-01", stock: BBB, quantity: 1, buyingPrice: 1, currentPrice: 1}
  - {date: "2024-01-01", stock: CCC, quantity: 1, buyingPrice: -5, currentPrice: 1}
`))
	require.NoError(t, err)

	entries, err := f.Valued()
	require.Error(t, err)
	assert.Nil(t, entries)

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "entry 1 (2024-01-01 AAA)")
	assert.Contains(t, errs[1].Error(), "entry 3 (2024-01-01 CCC)")
	for _, e := range errs {
		assert.True(t, errors.Is(e, ledger.ErrInvalidEntry))
	}
}

func TestFromStoreRoundTrip(t *testing.T) {
	docs := []models.Entry{
		{Date: "2024-01-01", Stock: "AAA", Quantity: 10, BuyingPrice: 100, CurrentPrice: 110, PnL: 999},
		{Date: "2024-01-02", Stock: "BBB", Quantity: 2, BuyingPrice: 50.5, CurrentPrice: 40},
	}

	var buf bytes.Buffer
	require.NoError(t, FromStore(docs, models.Portfolio{StartingAmount: 250}).Write(&buf))
	assert.Contains(t, buf.String(), `date: "2024-01-01"`)
	assert.NotContains(t, buf.String(), "pnl", "derived values are not exported")

	f, err := Load(&buf)
	require.NoError(t, err)
	require.NotNil(t, f.StartingAmount)
	assert.Equal(t, 250.0, *f.StartingAmount)

	entries, err := f.Valued()
	require.NoError(t, err)
	var got []string
	for _, e := range entries {
		got = append(got, e.Stock+" "+e.PnL.String())
	}
	if diff := cmp.Diff([]string{"AAA 100", "BBB -21"}, got); diff != "" {
		t.Fatalf("unexpected entries (-want +got):\n%s", diff)
	}
}
