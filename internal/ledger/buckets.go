package ledger

import "github.com/shopspring/decimal"

// buckets sums P&L per literal date string and remembers the order in which
// dates were first seen.
type buckets struct {
	order []string
	sums  map[string]decimal.Decimal
}

func newBuckets(capacity int) *buckets {
	return &buckets{
		order: make([]string, 0, capacity),
		sums:  make(map[string]decimal.Decimal, capacity),
	}
}

func (b *buckets) add(date string, pnl decimal.Decimal) {
	sum, ok := b.sums[date]
	if !ok {
		b.order = append(b.order, date)
	}
	b.sums[date] = sum.Add(pnl)
}

func (b *buckets) list() []DateBucket {
	res := make([]DateBucket, 0, len(b.order))
	for _, date := range b.order {
		res = append(res, DateBucket{Date: date, PnL: b.sums[date]})
	}
	return res
}
