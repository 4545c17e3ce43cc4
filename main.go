// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"kafs-api/auth"
	"kafs-api/cache"
	"kafs-api/controllers"
	"kafs-api/routes"
	"kafs-api/store"
	"kafs-api/usersync"
	"kafs-api/utils"
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	// Set the JWT secret key
	utils.JwtKey = []byte(os.Getenv("JWT_SECRET"))

	// Initialize EmailService (nil when unconfigured)
	emailService := utils.NewEmailService()

	// Connect to MongoDB and Redis
	client := utils.ConnectDB()
	defer func() {
		if err = client.Disconnect(context.TODO()); err != nil {
			log.Fatal(err)
		}
	}()
	redisClient := utils.ConnectCache()
	defer redisClient.Close()

	// Wire the stores and the sync layer
	userStore := store.NewUserStore(client)
	coffeeStore := store.NewCoffeeStore(client)
	orderStore := store.NewOrderStore(client)
	userCache := cache.NewUserCache(redisClient)
	sessions := usersync.NewManager(userStore, userCache, orderStore)
	provider := auth.NewProvider(client, userStore, emailService)

	// Initialize controllers
	userController := controllers.NewUserController(provider, sessions)
	coffeeController := controllers.NewCoffeeController(coffeeStore)
	cartController := controllers.NewCartController(sessions, coffeeStore)
	orderController := controllers.NewOrderController(sessions, emailService)

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, userController, coffeeController, cartController, orderController)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	fmt.Printf("Server is running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
