package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"portfolio-tracker/internal/ledger"
)

var (
	maxMinorUnits = decimal.NewFromInt(math.MaxInt64)
	minMinorUnits = decimal.NewFromInt(math.MinInt64)
)

// Renderer prints a view as text. Amounts are rounded here and nowhere else.
type Renderer struct {
	Currency string
	// Color enables ANSI colours regardless of the terminal.
	Color    bool
}

// Render writes the ledger table, the summary and the date series.
func (r Renderer) Render(w io.Writer, view ledger.View) error {
	p := &printer{w: w, bold: r.paint(color.Bold)}

	p.title("Ledger")
	rows := [][]string{{"Date", "Stock", "Quantity", "Buying Price", "Current Price", "Total Invested", "Total Current", "P&L"}}
	for _, e := range view.SortedEntries {
		rows = append(rows, []string{
			e.Date,
			e.Stock,
			e.Quantity.String(),
			r.amount(e.BuyingPrice),
			r.amount(e.CurrentPrice),
			r.amount(e.TotalInvested),
			r.amount(e.TotalCurrent),
			r.amount(e.PnL),
		})
	}
	p.table(rows, func(row, col int) *color.Color {
		if row == 0 || col != 7 {
			return nil
		}
		return r.signColor(view.SortedEntries[row-1].PnL)
	})

	p.title("Summary")
	p.table([][]string{
		{"Starting Amount", r.amount(view.StartingAmount)},
		{"Total P&L", r.amount(view.TotalPnL)},
		{"Final Portfolio Amount", r.amount(view.FinalPortfolioAmount)},
		{"As Of", view.AsOfDate.String()},
	}, func(row, col int) *color.Color {
		if row == 1 && col == 1 {
			return r.signColor(view.TotalPnL)
		}
		return nil
	})

	p.title("Datewise P&L")
	series := [][]string{{"Date", "Total P&L"}}
	for _, b := range view.DateSeries {
		series = append(series, []string{b.Date, r.amount(b.PnL)})
	}
	p.table(series, func(row, col int) *color.Color {
		if row == 0 || col != 1 {
			return nil
		}
		return r.signColor(view.DateSeries[row-1].PnL)
	})

	if len(view.UnparseableDates) > 0 {
		p.line(fmt.Sprintf("\nWarning: unparseable dates sorted last: %s", strings.Join(quoteAll(view.UnparseableDates), ", ")))
	}
	return p.err
}

// RenderJSON writes the view as indented JSON.
func RenderJSON(w io.Writer, view ledger.View) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

// amount formats a value in the renderer's currency, rounded to the
// currency's minor unit. Unknown currencies fall back to two decimals.
func (r Renderer) amount(d decimal.Decimal) string {
	cur := money.GetCurrency(r.Currency)
	if cur == nil {
		return d.StringFixed(2)
	}
	fraction := int32(cur.Fraction)
	minor := d.Round(fraction).Shift(fraction)
	if minor.GreaterThan(maxMinorUnits) || minor.LessThan(minMinorUnits) {
		return display(cur, minor)
	}
	return money.New(minor.IntPart(), cur.Code).Display()
}

// display lays out an amount of minor units the way money.Money.Display does,
// for amounts that do not fit in an int64.
func display(cur *money.Currency, minor decimal.Decimal) string {
	digits := minor.Abs().String()
	for len(digits) <= cur.Fraction {
		digits = "0" + digits
	}
	whole, frac := digits[:len(digits)-cur.Fraction], digits[len(digits)-cur.Fraction:]

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(cur.Thousand)
		}
		b.WriteRune(c)
	}
	if cur.Fraction > 0 {
		b.WriteString(cur.Decimal)
		b.WriteString(frac)
	}

	s := strings.Replace(cur.Template, "1", b.String(), 1)
	s = strings.Replace(s, "$", cur.Grapheme, 1)
	if minor.IsNegative() {
		s = "-" + s
	}
	return s
}

func (r Renderer) paint(attr color.Attribute) *color.Color {
	c := color.New(attr)
	if r.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (r Renderer) signColor(d decimal.Decimal) *color.Color {
	switch {
	case d.IsPositive():
		return r.paint(color.FgGreen)
	case d.IsNegative():
		return r.paint(color.FgRed)
	}
	return nil
}

func quoteAll(ss []string) []string {
	res := make([]string, len(ss))
	for i, s := range ss {
		res[i] = fmt.Sprintf("%q", s)
	}
	return res
}

// printer remembers the first write error.
type printer struct {
	w    io.Writer
	bold *color.Color
	err  error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}

func (p *printer) title(s string) {
	p.line("")
	p.line(p.bold.Sprint(s))
}

// table pads every cell to its column width before colouring it, so escape
// codes do not break the alignment. The first column is left aligned.
func (p *printer) table(rows [][]string, colorOf func(row, col int) *color.Color) {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if n := len([]rune(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			format := "%*s"
			if j == 0 {
				format = "%-*s"
			}
			cells[j] = fmt.Sprintf(format, widths[j], cell)
			if c := colorOf(i, j); c != nil {
				cells[j] = c.Sprint(cells[j])
			}
		}
		p.line(strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}
