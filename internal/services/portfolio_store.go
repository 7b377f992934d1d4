package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"portfolio-tracker/internal/models"
)

// PortfolioStore persists entries and the portfolio settings record.
type PortfolioStore interface {
	// FetchAll returns every entry in arrival order together with the
	// settings, or default settings when none were saved yet.
	FetchAll(ctx context.Context) ([]models.Entry, models.Portfolio, error)
	// InsertEntry stores a new entry and returns its identity.
	InsertEntry(ctx context.Context, entry *models.Entry) (string, error)
	// ReplaceSettings creates or replaces the settings record.
	ReplaceSettings(ctx context.Context, settings models.Portfolio) error
}

// MongoPortfolioStore keeps entries and settings in two MongoDB collections.
type MongoPortfolioStore struct {
	entryCollection     *mongo.Collection
	portfolioCollection *mongo.Collection
	log                 zerolog.Logger
}

func NewMongoPortfolioStore(entries, portfolio *mongo.Collection, log zerolog.Logger) *MongoPortfolioStore {
	return &MongoPortfolioStore{
		entryCollection:     entries,
		portfolioCollection: portfolio,
		log:                 log.With().Str("store", "portfolio").Logger(),
	}
}

func (s *MongoPortfolioStore) FetchAll(ctx context.Context) ([]models.Entry, models.Portfolio, error) {
	var (
		entries  []models.Entry
		settings models.Portfolio
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.fetchEntries(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		settings, err = s.fetchSettings(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, models.Portfolio{}, err
	}
	return entries, settings, nil
}

func (s *MongoPortfolioStore) fetchEntries(ctx context.Context) ([]models.Entry, error) {
	// ObjectIDs grow with insertion time, so this is arrival order.
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.entryCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer cur.Close(ctx)

	entries := []models.Entry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode entries: %w", err)
	}
	return entries, nil
}

func (s *MongoPortfolioStore) fetchSettings(ctx context.Context) (models.Portfolio, error) {
	var settings models.Portfolio
	err := s.portfolioCollection.FindOne(ctx, bson.M{"id": models.SettingsID}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		s.log.Debug().Msg("No portfolio settings stored yet, using defaults")
		return models.Portfolio{SettingsID: models.SettingsID}, nil
	}
	if err != nil {
		return models.Portfolio{}, fmt.Errorf("failed to load portfolio settings: %w", err)
	}
	return settings, nil
}

func (s *MongoPortfolioStore) InsertEntry(ctx context.Context, entry *models.Entry) (string, error) {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if _, err := s.entryCollection.InsertOne(ctx, entry); err != nil {
		return "", fmt.Errorf("failed to insert entry: %w", err)
	}
	return entry.ID.Hex(), nil
}

func (s *MongoPortfolioStore) ReplaceSettings(ctx context.Context, settings models.Portfolio) error {
	_, err := s.portfolioCollection.UpdateOne(
		ctx,
		bson.M{"id": models.SettingsID},
		bson.M{"$set": bson.M{"startingAmount": settings.StartingAmount}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save portfolio settings: %w", err)
	}
	return nil
}
