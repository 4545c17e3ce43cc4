package models

import (
	"time"
)

// User is the whole-document user record shared by the remote store and the
// local cache. It is treated as an immutable value: every mutation goes
// through one of the With* helpers below, which return a fresh copy with a
// single field replaced.
type User struct {
	ID        string     `bson:"_id" json:"id"`
	Email     string     `bson:"email" json:"email"`
	FullName  string     `bson:"full_name" json:"full_name"`
	Address   string     `bson:"address" json:"address"`
	FavList   []Coffee   `bson:"fav_list" json:"fav_list"`
	Cart      []CartItem `bson:"cart" json:"cart"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

// IsFavorite reports whether the coffee is in the user's favorites list.
func (u User) IsFavorite(coffeeID string) bool {
	for _, c := range u.FavList {
		if c.ID == coffeeID {
			return true
		}
	}
	return false
}

// WithFavoriteToggled removes the coffee from the favorites list if present,
// otherwise appends it. Toggling twice returns the list to its original
// contents.
func (u User) WithFavoriteToggled(coffee Coffee) User {
	favs := make([]Coffee, 0, len(u.FavList)+1)
	found := false
	for _, c := range u.FavList {
		if c.ID == coffee.ID {
			found = true
			continue
		}
		favs = append(favs, c)
	}
	if !found {
		favs = append(favs, coffee)
	}
	u.FavList = favs
	return u
}

// WithProfile returns a copy with the display name and address replaced.
func (u User) WithProfile(fullName, address string) User {
	u.FullName = fullName
	u.Address = address
	return u
}

// WithCartAdded adds one unit of the coffee to the cart. If the coffee is
// already in the cart its quantity is incremented, keeping at most one entry
// per coffee id.
func (u User) WithCartAdded(coffee Coffee) User {
	cart := make([]CartItem, len(u.Cart))
	copy(cart, u.Cart)
	for i, item := range cart {
		if item.Coffee.ID == coffee.ID {
			cart[i].Quantity++
			u.Cart = cart
			return u
		}
	}
	u.Cart = append(cart, CartItem{Coffee: coffee, Quantity: 1})
	return u
}

// WithCartQuantity sets the quantity of the cart entry for the given coffee.
// A quantity of zero or less removes the entry instead of storing a
// non-positive quantity. Setting a quantity for a coffee that is not in the
// cart is a no-op.
func (u User) WithCartQuantity(coffeeID string, quantity int) User {
	if quantity <= 0 {
		return u.WithCartRemoved(coffeeID)
	}
	cart := make([]CartItem, len(u.Cart))
	copy(cart, u.Cart)
	for i, item := range cart {
		if item.Coffee.ID == coffeeID {
			cart[i].Quantity = quantity
			break
		}
	}
	u.Cart = cart
	return u
}

// WithCartRemoved drops the cart entry for the given coffee, if any.
func (u User) WithCartRemoved(coffeeID string) User {
	cart := make([]CartItem, 0, len(u.Cart))
	for _, item := range u.Cart {
		if item.Coffee.ID != coffeeID {
			cart = append(cart, item)
		}
	}
	u.Cart = cart
	return u
}

// WithCartCleared returns a copy with an empty cart.
func (u User) WithCartCleared() User {
	u.Cart = []CartItem{}
	return u
}
