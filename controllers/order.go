// controllers/order.go
package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"kafs-api/middleware"
	"kafs-api/models"
	"kafs-api/store"
	"kafs-api/usersync"
	"kafs-api/utils"
)

// OrderController handles checkout and order history
type OrderController struct {
	Sessions     *usersync.Manager
	EmailService *utils.EmailService
}

// NewOrderController creates a new OrderController
func NewOrderController(sessions *usersync.Manager, emailService *utils.EmailService) *OrderController {
	return &OrderController{
		Sessions:     sessions,
		EmailService: emailService,
	}
}

// CreateOrder places an order from the user's cart. The order id is
// generated here, so a retried submission after a false-negative network
// failure mints a fresh id and can create a duplicate order.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Address       string `json:"address"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.PaymentMethod == "" {
		http.Error(w, "Payment method required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	core, err := oc.Sessions.Loaded(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to load user", http.StatusBadGateway)
		return
	}
	user, ok := core.User()
	if !ok {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	if len(user.Cart) == 0 {
		http.Error(w, "Cart is empty", http.StatusBadRequest)
		return
	}

	address := body.Address
	if address == "" {
		address = user.Address
	}

	order := models.Order{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		Items:         user.Cart,
		TotalPrice:    models.CartTotal(user.Cart),
		Address:       address,
		PaymentMethod: body.PaymentMethod,
		Status:        models.OrderStatusPending,
		CreatedAt:     time.Now(),
	}

	if err := core.PlaceOrder(ctx, order); err != nil {
		http.Error(w, "Failed to place order", http.StatusBadGateway)
		return
	}

	if oc.EmailService != nil {
		go func(email string, order models.Order) {
			if err := oc.EmailService.SendOrderConfirmationEmail(email, order); err != nil {
				log.Printf("Failed to send order confirmation to %s: %v", email, err)
			}
		}(user.Email, order)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(order)
}

// GetOrders retrieves all orders for the authenticated user, newest first
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	core, err := oc.Sessions.Loaded(ctx, claims.UserID)
	if err != nil {
		http.Error(w, "Failed to load user", http.StatusBadGateway)
		return
	}

	if err := core.FetchOrders(ctx); err != nil {
		http.Error(w, "Failed to retrieve orders", http.StatusBadGateway)
		return
	}

	orders := core.Orders()
	if orders == nil {
		orders = []models.Order{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}
