package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"kafs-api/models"
	"kafs-api/store"
)

// CoffeeController serves the catalog
type CoffeeController struct {
	Store *store.CoffeeStore
}

// NewCoffeeController creates a new CoffeeController
func NewCoffeeController(coffees *store.CoffeeStore) *CoffeeController {
	return &CoffeeController{Store: coffees}
}

// GetCoffees retrieves the full catalog
func (cc *CoffeeController) GetCoffees(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	coffees, err := cc.Store.ListAll(ctx)
	if err != nil {
		http.Error(w, "Error fetching coffees", http.StatusBadGateway)
		return
	}
	if coffees == nil {
		coffees = []models.Coffee{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(coffees)
}

// GetCoffeeByID retrieves a single catalog entry. A missing id is a 404; a
// failed fetch is a 502, distinguishable by the caller.
func (cc *CoffeeController) GetCoffeeByID(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	coffee, err := cc.Store.Get(ctx, params["id"])
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Coffee not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Error fetching coffee", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(coffee)
}

// CreateCoffee handles adding a new catalog entry (Admin only)
func (cc *CoffeeController) CreateCoffee(w http.ResponseWriter, r *http.Request) {
	var coffee models.Coffee
	if err := json.NewDecoder(r.Body).Decode(&coffee); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if coffee.ID == "" {
		coffee.ID = uuid.NewString()
	}
	if coffee.CreatedAt == "" {
		coffee.CreatedAt = time.Now().Format(time.RFC3339)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := cc.Store.Insert(ctx, coffee); err != nil {
		http.Error(w, "Error creating coffee", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(coffee)
}

// UpdateCoffee handles updating a catalog entry (Admin only)
func (cc *CoffeeController) UpdateCoffee(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	var coffee models.Coffee
	if err := json.NewDecoder(r.Body).Decode(&coffee); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	coffee.ID = params["id"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	err := cc.Store.Update(ctx, coffee)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Coffee not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Error updating coffee", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(coffee)
}

// DeleteCoffee handles deleting a catalog entry (Admin only)
func (cc *CoffeeController) DeleteCoffee(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	err := cc.Store.Delete(ctx, params["id"])
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Coffee not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Error deleting coffee", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"message": "Coffee deleted"})
}
