package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Owner is the one account allowed to read and write the portfolio when
// authentication is enabled. The users collection never holds more than one.
type Owner struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// AnyOwner matches the owner document, whoever it is.
var AnyOwner = bson.M{}

// NewOwner builds an owner with a fresh identity and a bcrypt hash of password.
func NewOwner(username, password string, now time.Time) (*Owner, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Owner{
		ID:           primitive.NewObjectID(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now.UTC(),
	}, nil
}

// Authenticate reports whether password matches the stored hash.
func (o *Owner) Authenticate(password string) bool {
	if o.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(password)) == nil
}

// Redacted returns a copy safe to hand to callers.
func (o Owner) Redacted() Owner {
	o.PasswordHash = ""
	return o
}
