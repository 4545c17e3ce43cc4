package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"kafs-api/models"
)

// CoffeeStore is the remote catalog store. Ordering clients only read from
// it; the mutating methods exist for the admin endpoints.
type CoffeeStore struct {
	collection *mongo.Collection
}

// NewCoffeeStore creates a new CoffeeStore
func NewCoffeeStore(client *mongo.Client) *CoffeeStore {
	return &CoffeeStore{
		collection: client.Database(databaseName).Collection("coffees"),
	}
}

// ListAll fetches the full catalog. There are no partial results: either the
// whole list comes back or an error does.
func (s *CoffeeStore) ListAll(ctx context.Context) ([]models.Coffee, error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list coffees: %w", err)
	}
	defer cursor.Close(ctx)

	var coffees []models.Coffee
	for cursor.Next(ctx) {
		var coffee models.Coffee
		if err := cursor.Decode(&coffee); err != nil {
			return nil, fmt.Errorf("decode coffee: %w", err)
		}
		coffees = append(coffees, coffee)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list coffees: %w", err)
	}
	return coffees, nil
}

// Get fetches a single catalog entry. Returns ErrNotFound when the id does
// not exist, which is not the same as a failed fetch.
func (s *CoffeeStore) Get(ctx context.Context, coffeeID string) (models.Coffee, error) {
	var coffee models.Coffee
	err := s.collection.FindOne(ctx, bson.M{"_id": coffeeID}).Decode(&coffee)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Coffee{}, ErrNotFound
	}
	if err != nil {
		return models.Coffee{}, fmt.Errorf("get coffee %s: %w", coffeeID, err)
	}
	return coffee, nil
}

// Insert adds a new catalog entry (admin only).
func (s *CoffeeStore) Insert(ctx context.Context, coffee models.Coffee) error {
	if _, err := s.collection.InsertOne(ctx, coffee); err != nil {
		return fmt.Errorf("insert coffee %s: %w", coffee.ID, err)
	}
	return nil
}

// Update replaces an existing catalog entry (admin only). Returns ErrNotFound
// when the id does not exist.
func (s *CoffeeStore) Update(ctx context.Context, coffee models.Coffee) error {
	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": coffee.ID}, coffee)
	if err != nil {
		return fmt.Errorf("update coffee %s: %w", coffee.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a catalog entry (admin only). Returns ErrNotFound when the
// id does not exist.
func (s *CoffeeStore) Delete(ctx context.Context, coffeeID string) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": coffeeID})
	if err != nil {
		return fmt.Errorf("delete coffee %s: %w", coffeeID, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
