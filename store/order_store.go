package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kafs-api/models"
)

// OrderStore is the remote order store: Order documents keyed by their
// client-generated id.
type OrderStore struct {
	collection *mongo.Collection
}

// NewOrderStore creates a new OrderStore
func NewOrderStore(client *mongo.Client) *OrderStore {
	return &OrderStore{
		collection: client.Database(databaseName).Collection("orders"),
	}
}

// Set writes the order under its id. The write is a keyed upsert, so
// re-submitting the same order id replaces rather than duplicates.
func (s *OrderStore) Set(ctx context.Context, order models.Order) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": order.ID}, order, opts)
	if err != nil {
		return fmt.Errorf("set order %s: %w", order.ID, err)
	}
	return nil
}

// QueryByUser returns all orders for the user, newest first.
func (s *OrderStore) QueryByUser(ctx context.Context, userID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("query orders for %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	for cursor.Next(ctx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("query orders for %s: %w", userID, err)
	}
	return orders, nil
}
