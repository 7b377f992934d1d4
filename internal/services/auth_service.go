package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"portfolio-tracker/internal/models"
)

var (
	// ErrOwnerExists is returned by Register once the portfolio has an owner.
	ErrOwnerExists = errors.New("portfolio owner already registered")
	// ErrInvalidCredentials is returned by Login for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type AuthService struct {
	ownerCollection *mongo.Collection
	log             zerolog.Logger
	now             func() time.Time
}

func NewAuthService(owners *mongo.Collection, log zerolog.Logger) *AuthService {
	return &AuthService{
		ownerCollection: owners,
		log:             log.With().Str("service", "auth").Logger(),
		now:             time.Now,
	}
}

// Register creates the portfolio owner. It fails once an owner exists.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.Owner, error) {
	count, err := s.ownerCollection.CountDocuments(ctx, models.AnyOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to count owners: %w", err)
	}
	if count > 0 {
		return nil, ErrOwnerExists
	}

	owner, err := models.NewOwner(username, password, s.now())
	if err != nil {
		return nil, err
	}
	if _, err := s.ownerCollection.InsertOne(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to insert owner: %w", err)
	}

	s.log.Info().Str("username", owner.Username).Msg("Portfolio owner registered")
	redacted := owner.Redacted()
	return &redacted, nil
}

// Login authenticates the owner
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Owner, error) {
	var owner models.Owner
	err := s.ownerCollection.FindOne(ctx, bson.M{"username": username}).Decode(&owner)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !owner.Authenticate(password) {
		s.log.Warn().Str("username", username).Msg("Failed login attempt")
		return nil, ErrInvalidCredentials
	}

	redacted := owner.Redacted()
	return &redacted, nil
}

// GetOwnerByID returns the owner a token was issued to.
func (s *AuthService) GetOwnerByID(ctx context.Context, id string) (*models.Owner, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var owner models.Owner
	if err := s.ownerCollection.FindOne(ctx, bson.M{"_id": objID}).Decode(&owner); err != nil {
		return nil, err
	}

	redacted := owner.Redacted()
	return &redacted, nil
}
