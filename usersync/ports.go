package usersync

import (
	"context"

	"kafs-api/models"
)

// UserStore is the remote user store contract.
type UserStore interface {
	Get(ctx context.Context, userID string) (models.User, error)
	Set(ctx context.Context, user models.User) error
}

// UserCache is the local user cache contract. Get reports absence separately
// from failure so a cold cache is not an error.
type UserCache interface {
	Get(ctx context.Context, userID string) (models.User, bool, error)
	Put(ctx context.Context, user models.User) error
	Delete(ctx context.Context, userID string) error
}

// OrderStore is the remote order store contract.
type OrderStore interface {
	Set(ctx context.Context, order models.Order) error
	QueryByUser(ctx context.Context, userID string) ([]models.Order, error)
}
