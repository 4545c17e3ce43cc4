// Package cache implements the local user cache: user documents mirrored as
// JSON values in Redis, keyed by user id. It serves reads that must not wait
// on the remote store and survives logout.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"kafs-api/models"
)

// UserCache stores whole user documents keyed by user id.
type UserCache struct {
	client *redis.Client
}

// NewUserCache creates a new UserCache on top of an existing Redis client.
func NewUserCache(client *redis.Client) *UserCache {
	return &UserCache{client: client}
}

// Get returns the cached user document and whether one exists.
func (c *UserCache) Get(ctx context.Context, userID string) (models.User, bool, error) {
	data, err := c.client.Get(ctx, userKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("read cached user %s: %w", userID, err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return models.User{}, false, fmt.Errorf("decode cached user %s: %w", userID, err)
	}
	return user, true, nil
}

// Put inserts or replaces the cached document for the user. Cached users have
// no TTL: the cache is a mirror, not an expiring session.
func (c *UserCache) Put(ctx context.Context, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user %s: %w", user.ID, err)
	}
	if err := c.client.Set(ctx, userKey(user.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("cache user %s: %w", user.ID, err)
	}
	return nil
}

// Delete removes the cached document for the user, if any.
func (c *UserCache) Delete(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, userKey(userID)).Err(); err != nil {
		return fmt.Errorf("evict user %s: %w", userID, err)
	}
	return nil
}

func userKey(userID string) string {
	return "user:" + userID
}
