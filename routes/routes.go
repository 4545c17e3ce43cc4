// routes/routes.go
package routes

import (
	"github.com/gorilla/mux"

	"kafs-api/controllers"
	"kafs-api/middleware"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, userController *controllers.UserController, coffeeController *controllers.CoffeeController, cartController *controllers.CartController, orderController *controllers.OrderController) {
	// Public routes
	router.HandleFunc("/register", userController.Register).Methods("POST")
	router.HandleFunc("/login", userController.Login).Methods("POST")
	router.HandleFunc("/verify", userController.VerifyEmail).Methods("GET")

	// Catalog routes
	router.HandleFunc("/coffees", coffeeController.GetCoffees).Methods("GET")
	router.HandleFunc("/coffees/{id}", coffeeController.GetCoffeeByID).Methods("GET")

	// Protected routes
	protected := router.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/profile", userController.GetProfile).Methods("GET")
	protected.HandleFunc("/profile", userController.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/profile/refresh", userController.RefreshProfile).Methods("POST")
	protected.HandleFunc("/logout", userController.Logout).Methods("POST")

	// Cart routes
	protected.HandleFunc("/cart", cartController.GetCart).Methods("GET")
	protected.HandleFunc("/cart", cartController.ClearCart).Methods("DELETE")
	protected.HandleFunc("/cart/items", cartController.AddToCart).Methods("POST")
	protected.HandleFunc("/cart/items/{coffee_id}", cartController.SetCartQuantity).Methods("PUT")
	protected.HandleFunc("/cart/items/{coffee_id}", cartController.RemoveFromCart).Methods("DELETE")

	// Favorites routes
	protected.HandleFunc("/favorites", cartController.GetFavorites).Methods("GET")
	protected.HandleFunc("/favorites/{coffee_id}", cartController.ToggleFavorite).Methods("POST")

	// Order routes
	protected.HandleFunc("/orders", orderController.GetOrders).Methods("GET")
	protected.HandleFunc("/orders", orderController.CreateOrder).Methods("POST")

	// Admin routes
	admin := router.PathPrefix("/coffees").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("", coffeeController.CreateCoffee).Methods("POST")
	admin.HandleFunc("/{id}", coffeeController.UpdateCoffee).Methods("PUT")
	admin.HandleFunc("/{id}", coffeeController.DeleteCoffee).Methods("DELETE")
}
