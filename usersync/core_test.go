package usersync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kafs-api/models"
)

var errNetwork = errors.New("network unreachable")

type fakeRemote struct {
	mu     sync.Mutex
	users  map[string]models.User
	getErr error
	setErr error
	gate   chan struct{} // when set, Set blocks until the channel is closed
	sets   int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{users: make(map[string]models.User)}
}

func (f *fakeRemote) Get(ctx context.Context, userID string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return models.User{}, f.getErr
	}
	user, ok := f.users[userID]
	if !ok {
		return models.User{}, errors.New("user not found")
	}
	return user, nil
}

func (f *fakeRemote) Set(ctx context.Context, user models.User) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.users[user.ID] = user
	return nil
}

type fakeCache struct {
	mu     sync.Mutex
	users  map[string]models.User
	getErr error
	putErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{users: make(map[string]models.User)}
}

func (f *fakeCache) Get(ctx context.Context, userID string) (models.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return models.User{}, false, f.getErr
	}
	user, ok := f.users[userID]
	return user, ok, nil
}

func (f *fakeCache) Put(ctx context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, userID)
	return nil
}

func (f *fakeCache) stored(userID string) (models.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	return user, ok
}

type fakeOrders struct {
	mu     sync.Mutex
	orders []models.Order
	setErr error
}

func (f *fakeOrders) Set(ctx context.Context, order models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeOrders) QueryByUser(ctx context.Context, userID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for i := len(f.orders) - 1; i >= 0; i-- {
		if f.orders[i].UserID == userID {
			out = append(out, f.orders[i])
		}
	}
	return out, nil
}

func testUser() models.User {
	return models.User{
		ID:       "u1",
		Email:    "u1@example.com",
		FullName: "Test User",
		FavList:  []models.Coffee{},
		Cart:     []models.CartItem{},
	}
}

func testCoffee(id string, price float64) models.Coffee {
	return models.Coffee{ID: id, Name: "Coffee " + id, Price: price}
}

// loadedCore builds a core whose user was loaded through the remote path, so
// no background refresh is in flight afterwards.
func loadedCore(t *testing.T, user models.User) (*Core, *fakeRemote, *fakeCache, *fakeOrders) {
	t.Helper()
	remote := newFakeRemote()
	remote.users[user.ID] = user
	cacheStore := newFakeCache()
	orders := &fakeOrders{}

	core := NewCore(user.ID, remote, cacheStore, orders)
	require.NoError(t, core.Load(context.Background()))
	require.Equal(t, StateLoaded, core.State())
	return core, remote, cacheStore, orders
}

func TestLoadWithoutSessionStaysUnauthenticated(t *testing.T) {
	core := NewCore("", newFakeRemote(), newFakeCache(), &fakeOrders{})

	require.NoError(t, core.Load(context.Background()))

	assert.Equal(t, StateUnauthenticated, core.State())
	_, ok := core.User()
	assert.False(t, ok)
}

func TestLoadCacheMissFetchesRemoteAndFillsCache(t *testing.T) {
	user := testUser()
	core, _, cacheStore, _ := loadedCore(t, user)

	got, ok := core.User()
	require.True(t, ok)
	assert.Equal(t, user.ID, got.ID)

	cached, ok := cacheStore.stored(user.ID)
	require.True(t, ok)
	assert.Equal(t, user.ID, cached.ID)
}

func TestLoadPrefersCacheWhenRemoteUnreachable(t *testing.T) {
	user := testUser()
	remote := newFakeRemote()
	remote.getErr = errNetwork
	cacheStore := newFakeCache()
	cacheStore.users[user.ID] = user

	core := NewCore(user.ID, remote, cacheStore, &fakeOrders{})
	err := core.Load(context.Background())
	core.Wait()

	require.NoError(t, err, "a satisfied local read must swallow the remote failure")
	assert.Equal(t, StateLoaded, core.State())
	got, ok := core.User()
	require.True(t, ok)
	assert.Equal(t, user.ID, got.ID)
}

func TestLoadCacheHitRefreshesFromRemote(t *testing.T) {
	stale := testUser()
	fresh := stale.WithProfile("Fresh Name", "New Street")

	remote := newFakeRemote()
	remote.users[stale.ID] = fresh
	cacheStore := newFakeCache()
	cacheStore.users[stale.ID] = stale

	core := NewCore(stale.ID, remote, cacheStore, &fakeOrders{})
	require.NoError(t, core.Load(context.Background()))
	core.Wait()

	got, ok := core.User()
	require.True(t, ok)
	assert.Equal(t, "Fresh Name", got.FullName)
	cached, _ := cacheStore.stored(stale.ID)
	assert.Equal(t, "Fresh Name", cached.FullName)
}

func TestLoadUnavailableWhenNothingAnywhere(t *testing.T) {
	remote := newFakeRemote()
	remote.getErr = errNetwork

	core := NewCore("u1", remote, newFakeCache(), &fakeOrders{})
	err := core.Load(context.Background())

	require.Error(t, err)
	assert.Equal(t, StateUnavailable, core.State())
	_, ok := core.User()
	assert.False(t, ok)
}

func TestUpdateUserPublishesBeforePersistence(t *testing.T) {
	user := testUser()
	core, remote, _, _ := loadedCore(t, user)

	remote.gate = make(chan struct{})
	updated := user.WithProfile("Renamed", user.Address)
	require.NoError(t, core.UpdateUser(context.Background(), updated))

	// The remote write is still blocked; the new value must already be
	// visible to a synchronous reader.
	got, ok := core.User()
	require.True(t, ok)
	assert.Equal(t, "Renamed", got.FullName)

	close(remote.gate)
	core.Wait()
	remote.mu.Lock()
	assert.Equal(t, "Renamed", remote.users[user.ID].FullName)
	remote.mu.Unlock()
}

func TestUpdateUserRemoteFailureIsReportedNotRolledBack(t *testing.T) {
	user := testUser()
	core, remote, _, _ := loadedCore(t, user)
	remote.setErr = errNetwork

	updated := user.WithProfile("Renamed", user.Address)
	require.NoError(t, core.UpdateUser(context.Background(), updated), "remote failure must not fail the caller")
	core.Wait()

	select {
	case syncErr := <-core.Errors():
		assert.Equal(t, "update user", syncErr.Op)
		assert.ErrorIs(t, syncErr, errNetwork)
	case <-time.After(time.Second):
		t.Fatal("expected a sync error on the channel")
	}

	got, _ := core.User()
	assert.Equal(t, "Renamed", got.FullName, "optimistic state must survive the remote failure")
}

func TestUpdateUserCacheFailureSurfacesButKeepsOptimisticState(t *testing.T) {
	user := testUser()
	core, _, cacheStore, _ := loadedCore(t, user)
	cacheStore.putErr = errors.New("disk full")

	updated := user.WithProfile("Renamed", user.Address)
	err := core.UpdateUser(context.Background(), updated)

	require.Error(t, err)
	got, _ := core.User()
	assert.Equal(t, "Renamed", got.FullName)
}

func TestToggleFavoriteTwiceRestoresList(t *testing.T) {
	user := testUser()
	core, _, _, _ := loadedCore(t, user)
	c1 := testCoffee("c1", 4.50)
	ctx := context.Background()

	require.NoError(t, core.ToggleFavorite(ctx, c1))
	got, _ := core.User()
	assert.True(t, got.IsFavorite("c1"))

	require.NoError(t, core.ToggleFavorite(ctx, c1))
	got, _ = core.User()
	assert.False(t, got.IsFavorite("c1"))
	assert.Empty(t, got.FavList)
	core.Wait()
}

func TestAddToCartFromEmpty(t *testing.T) {
	core, _, _, _ := loadedCore(t, testUser())

	require.NoError(t, core.AddToCart(context.Background(), testCoffee("c1", 4.50)))

	got, _ := core.User()
	require.Len(t, got.Cart, 1)
	assert.Equal(t, "c1", got.Cart[0].Coffee.ID)
	assert.Equal(t, 1, got.Cart[0].Quantity)
	core.Wait()
}

func TestSetCartQuantityZeroRemoves(t *testing.T) {
	user := testUser()
	user.Cart = []models.CartItem{{Coffee: testCoffee("c1", 4.50), Quantity: 2}}
	core, _, _, _ := loadedCore(t, user)

	require.NoError(t, core.SetCartQuantity(context.Background(), "c1", 0))

	got, _ := core.User()
	assert.Empty(t, got.Cart)
	core.Wait()
}

func TestPlaceOrderClearsCartAndPrepends(t *testing.T) {
	user := testUser()
	user.Cart = []models.CartItem{{Coffee: testCoffee("c1", 4.50), Quantity: 2}}
	core, _, _, orderStore := loadedCore(t, user)

	order := models.Order{
		ID:         "order-1",
		UserID:     user.ID,
		Items:      user.Cart,
		TotalPrice: 9.00,
		Status:     models.OrderStatusPending,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, core.PlaceOrder(context.Background(), order))

	got, _ := core.User()
	assert.Empty(t, got.Cart)

	orders := core.Orders()
	require.NotEmpty(t, orders)
	assert.Equal(t, "order-1", orders[0].ID)

	orderStore.mu.Lock()
	require.Len(t, orderStore.orders, 1)
	orderStore.mu.Unlock()
	core.Wait()
}

func TestPlaceOrderFailureLeavesCartUntouched(t *testing.T) {
	user := testUser()
	user.Cart = []models.CartItem{{Coffee: testCoffee("c1", 4.50), Quantity: 2}}
	core, _, _, orderStore := loadedCore(t, user)
	orderStore.setErr = errNetwork

	order := models.Order{ID: "order-1", UserID: user.ID, Items: user.Cart}
	err := core.PlaceOrder(context.Background(), order)

	require.Error(t, err)
	got, _ := core.User()
	require.Len(t, got.Cart, 1)
	assert.Equal(t, 2, got.Cart[0].Quantity)
	assert.Empty(t, core.Orders())
}

func TestMutationsWithoutUserReturnErrNoUser(t *testing.T) {
	core := NewCore("u1", newFakeRemote(), newFakeCache(), &fakeOrders{})
	ctx := context.Background()

	assert.ErrorIs(t, core.AddToCart(ctx, testCoffee("c1", 4)), ErrNoUser)
	assert.ErrorIs(t, core.ClearCart(ctx), ErrNoUser)
	assert.ErrorIs(t, core.PlaceOrder(ctx, models.Order{ID: "o1"}), ErrNoUser)
}

func TestLogoutClearsStateButKeepsCache(t *testing.T) {
	user := testUser()
	core, _, cacheStore, _ := loadedCore(t, user)

	core.Logout()

	assert.Equal(t, StateUnauthenticated, core.State())
	_, ok := core.User()
	assert.False(t, ok)
	assert.Empty(t, core.Orders())

	_, cached := cacheStore.stored(user.ID)
	assert.True(t, cached, "logout must not evict the local cache")
}

func TestFetchOrdersNewestFirst(t *testing.T) {
	user := testUser()
	core, _, _, orderStore := loadedCore(t, user)

	orderStore.orders = []models.Order{
		{ID: "old", UserID: user.ID},
		{ID: "new", UserID: user.ID},
		{ID: "other", UserID: "someone-else"},
	}
	require.NoError(t, core.FetchOrders(context.Background()))

	orders := core.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, "new", orders[0].ID)
	assert.Equal(t, "old", orders[1].ID)
}
