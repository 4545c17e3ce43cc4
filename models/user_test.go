package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coffee(id string, price float64) Coffee {
	return Coffee{ID: id, Name: "Coffee " + id, Price: price}
}

func TestWithCartAdded(t *testing.T) {
	c1 := coffee("c1", 4.50)

	user := User{ID: "u1"}
	updated := user.WithCartAdded(c1)

	require.Len(t, updated.Cart, 1)
	assert.Equal(t, "c1", updated.Cart[0].Coffee.ID)
	assert.Equal(t, 1, updated.Cart[0].Quantity)
	assert.Empty(t, user.Cart, "original value must not change")
}

func TestWithCartAddedIncrementsExisting(t *testing.T) {
	c1 := coffee("c1", 4.50)

	user := User{ID: "u1"}.WithCartAdded(c1).WithCartAdded(c1)

	require.Len(t, user.Cart, 1)
	assert.Equal(t, 2, user.Cart[0].Quantity)
}

func TestCartHasOneEntryPerCoffee(t *testing.T) {
	user := User{ID: "u1"}
	for _, c := range []Coffee{coffee("c1", 4), coffee("c2", 5), coffee("c1", 4), coffee("c3", 6), coffee("c2", 5)} {
		user = user.WithCartAdded(c)
	}

	seen := map[string]bool{}
	for _, item := range user.Cart {
		assert.False(t, seen[item.Coffee.ID], "duplicate cart entry for %s", item.Coffee.ID)
		seen[item.Coffee.ID] = true
	}
	assert.Len(t, user.Cart, 3)
}

func TestWithCartQuantity(t *testing.T) {
	base := User{ID: "u1"}.WithCartAdded(coffee("c1", 4.50)).WithCartAdded(coffee("c1", 4.50))

	tests := []struct {
		name     string
		coffeeID string
		quantity int
		wantLen  int
		wantQty  int
	}{
		{name: "positive quantity is stored exactly", coffeeID: "c1", quantity: 5, wantLen: 1, wantQty: 5},
		{name: "zero removes the entry", coffeeID: "c1", quantity: 0, wantLen: 0},
		{name: "negative removes the entry", coffeeID: "c1", quantity: -3, wantLen: 0},
		{name: "unknown coffee is a no-op", coffeeID: "missing", quantity: 7, wantLen: 1, wantQty: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base.WithCartQuantity(tt.coffeeID, tt.quantity)
			require.Len(t, got.Cart, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantQty, got.Cart[0].Quantity)
			}
		})
	}
}

func TestWithCartQuantityZeroScenario(t *testing.T) {
	user := User{ID: "u1", Cart: []CartItem{{Coffee: coffee("c1", 4.50), Quantity: 2}}}

	got := user.WithCartQuantity("c1", 0)

	assert.Empty(t, got.Cart)
	require.Len(t, user.Cart, 1, "original value must not change")
}

func TestWithCartRemoved(t *testing.T) {
	user := User{ID: "u1"}.WithCartAdded(coffee("c1", 4)).WithCartAdded(coffee("c2", 5))

	got := user.WithCartRemoved("c1")

	require.Len(t, got.Cart, 1)
	assert.Equal(t, "c2", got.Cart[0].Coffee.ID)
}

func TestWithCartCleared(t *testing.T) {
	user := User{ID: "u1"}.WithCartAdded(coffee("c1", 4))

	got := user.WithCartCleared()

	assert.Empty(t, got.Cart)
	assert.NotNil(t, got.Cart)
}

func TestWithFavoriteToggled(t *testing.T) {
	c1 := coffee("c1", 4)
	user := User{ID: "u1"}

	added := user.WithFavoriteToggled(c1)
	require.Len(t, added.FavList, 1)
	assert.True(t, added.IsFavorite("c1"))

	removed := added.WithFavoriteToggled(c1)
	assert.Empty(t, removed.FavList)
	assert.False(t, removed.IsFavorite("c1"))
}

func TestWithFavoriteToggledRoundTrip(t *testing.T) {
	c2 := coffee("c2", 5)
	user := User{ID: "u1", FavList: []Coffee{coffee("c1", 4), coffee("c3", 6)}}

	got := user.WithFavoriteToggled(c2).WithFavoriteToggled(c2)

	assert.Equal(t, user.FavList, got.FavList)
}

func TestWithProfile(t *testing.T) {
	user := User{ID: "u1", FullName: "Old Name", Address: "Old Street"}

	got := user.WithProfile("New Name", "New Street")

	assert.Equal(t, "New Name", got.FullName)
	assert.Equal(t, "New Street", got.Address)
	assert.Equal(t, "Old Name", user.FullName)
}

func TestCartTotal(t *testing.T) {
	promo := 3.00
	items := []CartItem{
		{Coffee: Coffee{ID: "c1", Price: 4.50}, Quantity: 2},
		{Coffee: Coffee{ID: "c2", Price: 5.00, PriceAfterPromo: &promo}, Quantity: 1},
	}

	assert.InDelta(t, 12.00, CartTotal(items), 1e-9)
}

func TestEffectivePrice(t *testing.T) {
	promo := 3.50
	assert.Equal(t, 4.50, Coffee{Price: 4.50}.EffectivePrice())
	assert.Equal(t, 3.50, Coffee{Price: 4.50, PriceAfterPromo: &promo}.EffectivePrice())
}
