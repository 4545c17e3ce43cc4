package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"kafs-api/middleware"
	"kafs-api/models"
	"kafs-api/store"
	"kafs-api/usersync"
)

// CartController handles cart and favorites requests. Every mutation goes
// through the user's sync core, so the response reflects the optimistic
// state.
type CartController struct {
	Sessions *usersync.Manager
	Coffees  *store.CoffeeStore
}

// NewCartController creates a new CartController
func NewCartController(sessions *usersync.Manager, coffees *store.CoffeeStore) *CartController {
	return &CartController{
		Sessions: sessions,
		Coffees:  coffees,
	}
}

func (cc *CartController) session(w http.ResponseWriter, r *http.Request) (*usersync.Core, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	core, err := cc.Sessions.Loaded(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "User not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, "Failed to load user", http.StatusBadGateway)
		return nil, false
	}
	return core, true
}

// GetCart retrieves the user's cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	core, ok := cc.session(w, r)
	if !ok {
		return
	}
	user, ok := core.User()
	if !ok {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user.Cart)
}

// AddToCart adds one unit of a coffee to the user's cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	core, ok := cc.session(w, r)
	if !ok {
		return
	}

	var body struct {
		CoffeeID string `json:"coffee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CoffeeID == "" {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	coffee, err := cc.Coffees.Get(ctx, body.CoffeeID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Coffee not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Error fetching coffee", http.StatusBadGateway)
		return
	}

	if err := core.AddToCart(ctx, coffee); err != nil {
		http.Error(w, "Error updating cart", http.StatusInternalServerError)
		return
	}

	user, _ := core.User()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user.Cart)
}

// SetCartQuantity sets the quantity for a cart entry; zero removes it
func (cc *CartController) SetCartQuantity(w http.ResponseWriter, r *http.Request) {
	core, ok := cc.session(w, r)
	if !ok {
		return
	}

	var body struct {
		Quantity *int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Quantity == nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	params := mux.Vars(r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := core.SetCartQuantity(ctx, params["coffee_id"], *body.Quantity); err != nil {
		http.Error(w, "Error updating cart", http.StatusInternalServerError)
		return
	}

	user, _ := core.User()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user.Cart)
}

// RemoveFromCart removes a coffee from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	core, ok := cc.session(w, r)
	if !ok {
		return
	}

	params := mux.Vars(r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := core.RemoveFromCart(ctx, params["coffee_id"]); err != nil {
		http.Error(w, "Error updating cart", http.StatusInternalServerError)
		return
	}

	user, _ := core.User()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user.Cart)
}

// ClearCart empties the user's cart
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	core, ok := cc.session(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := core.ClearCart(ctx); err != nil {
		http.Error(w, "Error updating cart", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode("Cart cleared")
}

// GetFavorites retrieves the user's favorites list
func (cc *CartController) GetFavorites(w http.ResponseWriter, r *http.Request) {
	core, ok := cc.session(w, r)
	if !ok {
		return
	}
	user, ok := core.User()
	if !ok {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	favs := user.FavList
	if favs == nil {
		favs = []models.Coffee{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(favs)
}

// ToggleFavorite adds or removes a coffee from the favorites list
func (cc *CartController) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	core, ok := cc.session(w, r)
	if !ok {
		return
	}

	params := mux.Vars(r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	coffee, err := cc.Coffees.Get(ctx, params["coffee_id"])
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Coffee not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Error fetching coffee", http.StatusBadGateway)
		return
	}

	if err := core.ToggleFavorite(ctx, coffee); err != nil {
		http.Error(w, "Error updating favorites", http.StatusInternalServerError)
		return
	}

	user, _ := core.User()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"favorite": user.IsFavorite(coffee.ID),
		"fav_list": user.FavList,
	})
}
