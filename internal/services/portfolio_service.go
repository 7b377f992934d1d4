package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"portfolio-tracker/internal/ledger"
	"portfolio-tracker/internal/models"
)

// ErrInvalidSettings is returned when a starting amount is missing or not finite.
var ErrInvalidSettings = errors.New("invalid portfolio settings")

// Notifier is told about every successful write.
type Notifier interface {
	Notify(event models.LedgerEvent)
}

// PortfolioService reads the ledger through a PortfolioStore and aggregates it.
// Writes never return a view: callers re-read with View.
type PortfolioService struct {
	store    PortfolioStore
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewPortfolioService wires a service. notifier may be nil.
func NewPortfolioService(store PortfolioStore, notifier Notifier, log zerolog.Logger) *PortfolioService {
	return &PortfolioService{
		store:    store,
		notifier: notifier,
		log:      log.With().Str("service", "portfolio").Logger(),
		now:      time.Now,
	}
}

// View reads every entry and the settings once and aggregates them.
func (s *PortfolioService) View(ctx context.Context) (ledger.View, error) {
	docs, settings, err := s.store.FetchAll(ctx)
	if err != nil {
		return ledger.View{}, fmt.Errorf("failed to fetch portfolio: %w", err)
	}

	entries := make([]ledger.ValuedEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, doc.Valued())
	}

	view := ledger.Aggregate(entries, decimal.NewFromFloat(settings.StartingAmount))
	if len(view.UnparseableDates) > 0 {
		s.log.Warn().Strs("dates", view.UnparseableDates).Msg("Entries with unparseable dates sorted last")
	}
	return view, nil
}

// AddEntry validates, valuates and stores one entry, returning its identity.
// Nothing is written when validation fails.
func (s *PortfolioService) AddEntry(ctx context.Context, in ledger.EntryInput) (string, error) {
	raw, err := ledger.ParseEntry(in)
	if err != nil {
		return "", err
	}
	valued := ledger.Valuate(raw)

	id, err := s.store.InsertEntry(ctx, models.NewEntry(valued))
	if err != nil {
		return "", err
	}

	s.log.Info().
		Str("id", id).
		Str("date", valued.Date).
		Str("stock", valued.Stock).
		Str("pnl", valued.PnL.String()).
		Msg("Entry added")
	s.notify(models.ReasonEntryAdded, id)
	return id, nil
}

// ReplaceSettings stores a new starting amount.
func (s *PortfolioService) ReplaceSettings(ctx context.Context, startingAmount *float64) error {
	if startingAmount == nil {
		return fmt.Errorf("%w: startingAmount is required", ErrInvalidSettings)
	}
	if math.IsNaN(*startingAmount) || math.IsInf(*startingAmount, 0) {
		return fmt.Errorf("%w: startingAmount must be a finite number, got %v", ErrInvalidSettings, *startingAmount)
	}

	settings := models.Portfolio{SettingsID: models.SettingsID, StartingAmount: *startingAmount}
	if err := s.store.ReplaceSettings(ctx, settings); err != nil {
		return err
	}

	s.log.Info().Float64("startingAmount", *startingAmount).Msg("Portfolio settings replaced")
	s.notify(models.ReasonSettingsReplaced, "")
	return nil
}

func (s *PortfolioService) notify(reason, id string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(models.LedgerEvent{
		Type:      models.EventLedgerChanged,
		Reason:    reason,
		ID:        id,
		Timestamp: s.now(),
	})
}
