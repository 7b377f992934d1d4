package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"portfolio-tracker/internal/ledger"
)

// Entry is a valued entry as stored in the entries collection. Field names
// are camelCase so existing dup_portfolio documents decode unchanged.
type Entry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Date          string             `bson:"date" json:"date"`
	Stock         string             `bson:"stock" json:"stock"`
	Quantity      float64            `bson:"quantity" json:"quantity"`
	BuyingPrice   float64            `bson:"buyingPrice" json:"buyingPrice"`
	CurrentPrice  float64            `bson:"currentPrice" json:"currentPrice"`
	TotalInvested float64            `bson:"totalInvested" json:"totalInvested"`
	TotalCurrent  float64            `bson:"totalCurrent" json:"totalCurrent"`
	PnL           float64            `bson:"pnl" json:"pnl"`
}

// Portfolio is the singleton settings document, matched by SettingsID.
type Portfolio struct {
	SettingsID     int     `bson:"id" json:"-"`
	StartingAmount float64 `bson:"startingAmount" json:"startingAmount"`
}

// SettingsID is the key of the only Portfolio document.
const SettingsID = 1

// NewEntry builds the document for a freshly valued entry.
func NewEntry(v ledger.ValuedEntry) *Entry {
	return &Entry{
		Date:          v.Date,
		Stock:         v.Stock,
		Quantity:      v.Quantity.InexactFloat64(),
		BuyingPrice:   v.BuyingPrice.InexactFloat64(),
		CurrentPrice:  v.CurrentPrice.InexactFloat64(),
		TotalInvested: v.TotalInvested.InexactFloat64(),
		TotalCurrent:  v.TotalCurrent.InexactFloat64(),
		PnL:           v.PnL.InexactFloat64(),
	}
}

// Valued converts a stored entry back into the ledger shape. The derived
// figures are recomputed from the stored inputs so that the pnl invariant
// holds even for documents written by older clients.
func (e Entry) Valued() ledger.ValuedEntry {
	v := ledger.Valuate(ledger.RawEntry{
		Date:         e.Date,
		Stock:        e.Stock,
		Quantity:     decimal.NewFromFloat(e.Quantity),
		BuyingPrice:  decimal.NewFromFloat(e.BuyingPrice),
		CurrentPrice: decimal.NewFromFloat(e.CurrentPrice),
	})
	if !e.ID.IsZero() {
		v.ID = e.ID.Hex()
	}
	return v
}

// LedgerEvent tells subscribers that stored state changed and they should re-read it.
type LedgerEvent struct {
	Type      string    `json:"type"`   // always "ledger_changed"
	Reason    string    `json:"reason"` // "entry_added" or "settings_replaced"
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventLedgerChanged     = "ledger_changed"
	ReasonEntryAdded       = "entry_added"
	ReasonSettingsReplaced = "settings_replaced"
)
