package main

import (
	"context"
	"log"
	"time"

	"trolley/internal/config"
	"trolley/internal/database"
	"trolley/internal/handlers"
	"trolley/internal/middleware"
	"trolley/internal/redis"
	"trolley/internal/repository"
	"trolley/internal/services"
	"trolley/pkg/sms"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis (realtime order fan-out)
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	// Initialize SMS client
	smsClient := sms.NewClient(cfg.SMSAPIURL, cfg.SMSUsername, cfg.SMSAPIKey, cfg.SMSSenderID)

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(db)
	restaurantRepo := repository.NewRestaurantRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	zoneRepo := repository.NewZoneRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	// Initialize services
	notifier := services.NewNotificationService(smsClient, cfg.TrackBaseURL)
	orderService := services.NewOrderService(orderRepo, restaurantRepo, driverRepo, zoneRepo, notifier, redisClient)
	paymentService := services.NewPaymentService(orderRepo, restaurantRepo, notifier, redisClient)
	restaurantService := services.NewRestaurantService(restaurantRepo, zoneRepo)
	authService := services.NewAuthService(profileRepo, driverRepo)

	// Initialize handlers
	orderHandler := handlers.NewOrderHandler(orderService, restaurantService, redisClient)
	paymentHandler := handlers.NewPaymentHandler(paymentService, cfg.PaymentWebhookSecret)
	restaurantHandler := handlers.NewRestaurantHandler(restaurantService)

	if cfg.PaymentWebhookSecret == "" {
		log.Println("WARNING: PAYMENT_WEBHOOK_SECRET is not set, webhook signatures will not be verified")
	}

	// Optional sweep of abandoned payment_pending orders
	if cfg.PaymentPendingTTLMin > 0 {
		expiryService := services.NewExpiryService(orderRepo, redisClient)
		go expiryService.Run(context.Background(), time.Minute, time.Duration(cfg.PaymentPendingTTLMin)*time.Minute)
	}

	// Setup routes
	router := gin.Default()

	// Payment gateway webhook
	router.POST("/api/webhooks/payment", paymentHandler.HandleWebhook)

	// Public endpoints (checkout + tracking)
	router.POST("/api/orders", orderHandler.CreateOrder)
	router.GET("/api/orders/:id", orderHandler.GetOrder)
	router.GET("/api/restaurants", restaurantHandler.GetRestaurants)
	router.GET("/api/restaurants/:id/menu", restaurantHandler.GetMenu)
	router.GET("/api/zones", restaurantHandler.GetZones)

	// Authenticated endpoints
	api := router.Group("/api")
	api.Use(middleware.Auth(authService))
	{
		api.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
		api.PUT("/orders/:id/driver", orderHandler.AssignDriver)
		api.GET("/orders", orderHandler.AllOrders)
		api.GET("/orders/stream", orderHandler.StreamOrders)

		api.GET("/restaurant/orders", orderHandler.RestaurantOrders)
		api.PATCH("/restaurant/open", restaurantHandler.SetOpen)

		api.GET("/driver/orders", orderHandler.DriverOrders)
		api.GET("/driver/orders/completed", orderHandler.DriverCompletedOrders)

		api.GET("/customer/orders", orderHandler.CustomerOrders)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
