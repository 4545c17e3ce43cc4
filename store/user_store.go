package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kafs-api/models"
)

// UserStore is the remote user store: whole User documents keyed by user id.
type UserStore struct {
	collection *mongo.Collection
}

// NewUserStore creates a new UserStore
func NewUserStore(client *mongo.Client) *UserStore {
	return &UserStore{
		collection: client.Database(databaseName).Collection("users"),
	}
}

// Get fetches the user document for the given id. Returns ErrNotFound when no
// document exists.
func (s *UserStore) Get(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return user, nil
}

// Set writes the whole user document, creating it if absent. Writes are
// last-write-wins: there is no version check, the newest replacement
// unconditionally overwrites prior values.
func (s *UserStore) Set(ctx context.Context, user models.User) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": user.ID}, user, opts)
	if err != nil {
		return fmt.Errorf("set user %s: %w", user.ID, err)
	}
	return nil
}
