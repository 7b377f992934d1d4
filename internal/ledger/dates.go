package ledger

import "time"

// dateLayouts are tried in order. The first one is lenient and accepts
// single digit months and days ("2024-1-5").
var dateLayouts = []string{
	"2006-1-2",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// sortKey orders entries by calendar date. Unparseable dates compare after
// every parseable one.
type sortKey struct {
	at time.Time
	ok bool
}

func parseDate(s string) sortKey {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return sortKey{at: t, ok: true}
		}
	}
	return sortKey{}
}

func (k sortKey) compare(o sortKey) int {
	switch {
	case k.ok && !o.ok:
		return -1
	case !k.ok && o.ok:
		return 1
	case !k.ok && !o.ok:
		return 0
	}
	return k.at.Compare(o.at)
}
