// Package usersync keeps one user's published state in sync with the remote
// user store and the local cache.
//
// Reads prefer the local cache so a slow or unreachable remote never blocks a
// user who has been here before. Writes are optimistic: the new value is
// published to readers first, then written through the cache, then pushed to
// the remote store in the background. Remote writes are last-write-wins with
// no sequencing token, so a superseded write can still land late and racing
// updates from two sessions resolve to whichever lands last.
package usersync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"kafs-api/models"
)

// State tracks where a session is in its lifecycle.
type State int

const (
	// StateUnauthenticated means no session is active.
	StateUnauthenticated State = iota
	// StateLoading means a load is in progress and nothing is published yet.
	StateLoading
	// StateLoaded means a user document is published and mutable.
	StateLoaded
	// StateUnavailable means the remote fetch failed and no local copy exists.
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// ErrNoUser is returned by mutation methods when no user document is loaded.
var ErrNoUser = errors.New("no user loaded")

// SyncError reports a failed background write to the remote store. The
// optimistic state is not rolled back and the write is not retried.
type SyncError struct {
	Op  string
	Err error
}

func (e SyncError) Error() string {
	return fmt.Sprintf("%s: remote sync failed: %v", e.Op, e.Err)
}

func (e SyncError) Unwrap() error { return e.Err }

const (
	remoteTimeout = 10 * time.Second
	errBacklog    = 16
)

// Core is the single logical owner of one user session's state. All mutation
// methods are intended to be called from one presentation context at a time;
// the internal lock keeps concurrent access memory-safe but racing writers
// still resolve last-write-wins.
type Core struct {
	userID string
	remote UserStore
	cache  UserCache
	orders OrderStore

	mu        sync.RWMutex
	state     State
	user      *models.User
	orderList []models.Order

	errs chan SyncError
	wg   sync.WaitGroup
}

// NewCore builds a session core for the given user id. An empty id yields a
// core that stays unauthenticated.
func NewCore(userID string, remote UserStore, cache UserCache, orders OrderStore) *Core {
	return &Core{
		userID: userID,
		remote: remote,
		cache:  cache,
		orders: orders,
		state:  StateUnauthenticated,
		errs:   make(chan SyncError, errBacklog),
	}
}

// UserID returns the session's user id, empty when unauthenticated.
func (c *Core) UserID() string { return c.userID }

// State returns the current lifecycle state.
func (c *Core) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// User returns the published user document. ok is false outside StateLoaded.
func (c *Core) User() (models.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return models.User{}, false
	}
	return *c.user, true
}

// Orders returns the in-memory order list, newest first.
func (c *Core) Orders() []models.Order {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Order, len(c.orderList))
	copy(out, c.orderList)
	return out
}

// Errors exposes background sync failures. The channel is buffered; when
// nobody drains it, further failures are logged and dropped.
func (c *Core) Errors() <-chan SyncError {
	return c.errs
}

// Load publishes the current user. The local cache is consulted first and a
// hit is published immediately without waiting on the network; the remote
// store is then refreshed in the background, and a remote failure on that
// path is swallowed because the read was already satisfied. On a cache miss
// the remote store is fetched synchronously; if that fails the session
// becomes unavailable.
func (c *Core) Load(ctx context.Context) error {
	if c.userID == "" {
		c.mu.Lock()
		c.state = StateUnauthenticated
		c.user = nil
		c.mu.Unlock()
		return nil
	}

	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()

	cached, ok, err := c.cache.Get(ctx, c.userID)
	if err != nil {
		// A broken cache degrades to the remote path.
		log.Printf("usersync: cache read for %s failed: %v", c.userID, err)
	}
	if ok {
		c.publish(cached)
		c.refreshOrders(ctx)
		c.wg.Add(1)
		go c.refreshFromRemote()
		return nil
	}

	user, err := c.remote.Get(ctx, c.userID)
	if err != nil {
		c.mu.Lock()
		c.state = StateUnavailable
		c.user = nil
		c.mu.Unlock()
		return fmt.Errorf("load user %s: %w", c.userID, err)
	}

	c.publish(user)
	if err := c.cache.Put(ctx, user); err != nil {
		log.Printf("usersync: cache fill for %s failed: %v", c.userID, err)
	}
	c.refreshOrders(ctx)
	return nil
}

// Refresh re-runs Load.
func (c *Core) Refresh(ctx context.Context) error {
	return c.Load(ctx)
}

// refreshFromRemote runs after a cache hit: a fresher remote copy replaces
// the published value and the cache, a failure is logged and swallowed.
func (c *Core) refreshFromRemote() {
	defer c.wg.Done()
	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()

	user, err := c.remote.Get(ctx, c.userID)
	if err != nil {
		log.Printf("usersync: remote refresh for %s failed: %v", c.userID, err)
		return
	}

	c.mu.Lock()
	// The session may have logged out or moved on while we were fetching.
	if c.state != StateLoaded || c.user == nil || c.user.ID != user.ID {
		c.mu.Unlock()
		return
	}
	c.user = &user
	c.mu.Unlock()

	if err := c.cache.Put(ctx, user); err != nil {
		log.Printf("usersync: cache refresh for %s failed: %v", c.userID, err)
	}
}

// UpdateUser replaces the published user document with an optimistic write.
// The new value is visible to readers before any persistence completes. The
// local cache is written synchronously and its failure is returned; the
// remote write happens in the background and its failure is reported on the
// error channel without rolling back or retrying.
func (c *Core) UpdateUser(ctx context.Context, user models.User) error {
	c.publish(user)

	if err := c.cache.Put(ctx, user); err != nil {
		return fmt.Errorf("persist user locally: %w", err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		if err := c.remote.Set(ctx, user); err != nil {
			c.report(SyncError{Op: "update user", Err: err})
		}
	}()
	return nil
}

// ToggleFavorite adds the coffee to the favorites list, or removes it when
// already present.
func (c *Core) ToggleFavorite(ctx context.Context, coffee models.Coffee) error {
	user, ok := c.User()
	if !ok {
		return ErrNoUser
	}
	return c.UpdateUser(ctx, user.WithFavoriteToggled(coffee))
}

// AddToCart adds one unit of the coffee to the cart.
func (c *Core) AddToCart(ctx context.Context, coffee models.Coffee) error {
	user, ok := c.User()
	if !ok {
		return ErrNoUser
	}
	return c.UpdateUser(ctx, user.WithCartAdded(coffee))
}

// RemoveFromCart drops the coffee from the cart.
func (c *Core) RemoveFromCart(ctx context.Context, coffeeID string) error {
	user, ok := c.User()
	if !ok {
		return ErrNoUser
	}
	return c.UpdateUser(ctx, user.WithCartRemoved(coffeeID))
}

// SetCartQuantity sets the quantity for a cart entry; a quantity of zero or
// less removes it.
func (c *Core) SetCartQuantity(ctx context.Context, coffeeID string, quantity int) error {
	user, ok := c.User()
	if !ok {
		return ErrNoUser
	}
	return c.UpdateUser(ctx, user.WithCartQuantity(coffeeID, quantity))
}

// ClearCart empties the cart.
func (c *Core) ClearCart(ctx context.Context) error {
	user, ok := c.User()
	if !ok {
		return ErrNoUser
	}
	return c.UpdateUser(ctx, user.WithCartCleared())
}

// PlaceOrder writes the order to the remote store under its id. On success
// the cart is cleared and the order is prepended to the in-memory list; on
// failure the error is returned and the cart is left untouched.
func (c *Core) PlaceOrder(ctx context.Context, order models.Order) error {
	if _, ok := c.User(); !ok {
		return ErrNoUser
	}

	if err := c.orders.Set(ctx, order); err != nil {
		return fmt.Errorf("place order %s: %w", order.ID, err)
	}

	c.mu.Lock()
	c.orderList = append([]models.Order{order}, c.orderList...)
	c.mu.Unlock()

	return c.ClearCart(ctx)
}

// FetchOrders reloads the order list from the remote store, newest first.
func (c *Core) FetchOrders(ctx context.Context) error {
	return c.refreshOrders(ctx)
}

func (c *Core) refreshOrders(ctx context.Context) error {
	orders, err := c.orders.QueryByUser(ctx, c.userID)
	if err != nil {
		log.Printf("usersync: order fetch for %s failed: %v", c.userID, err)
		return fmt.Errorf("fetch orders: %w", err)
	}
	c.mu.Lock()
	c.orderList = orders
	c.mu.Unlock()
	return nil
}

// Logout clears the published state. The local cache is left in place so the
// next login on this device starts warm.
func (c *Core) Logout() {
	c.mu.Lock()
	c.state = StateUnauthenticated
	c.user = nil
	c.orderList = nil
	c.mu.Unlock()
}

// Wait blocks until all in-flight background remote writes have finished.
// Used on shutdown and in tests.
func (c *Core) Wait() {
	c.wg.Wait()
}

func (c *Core) publish(user models.User) {
	c.mu.Lock()
	c.state = StateLoaded
	c.user = &user
	c.mu.Unlock()
}

func (c *Core) report(err SyncError) {
	select {
	case c.errs <- err:
	default:
		log.Printf("usersync: %v (error channel full)", err)
	}
}
