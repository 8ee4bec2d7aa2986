package main

import (
	"context"
	"fmt"
	"log"

	"trolley/internal/config"
	"trolley/internal/database"
	"trolley/internal/models"
	"trolley/internal/repository"
	"trolley/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	fmt.Println("Initializing database...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Force recreate all tables
	fmt.Println("Dropping existing tables...")
	err = db.Migrator().DropTable(
		&models.Profile{},
		&models.DeliveryZone{},
		&models.Restaurant{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Driver{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		log.Printf("Warning: Error dropping tables: %v", err)
	}

	fmt.Println("Recreating tables...")
	err = db.AutoMigrate(
		&models.Profile{},
		&models.DeliveryZone{},
		&models.Restaurant{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Driver{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	if err := seed(db); err != nil {
		log.Fatal("Failed to seed database:", err)
	}

	fmt.Println("Database initialized successfully!")
}

func seed(db *gorm.DB) error {
	ctx := context.Background()

	zones := []models.DeliveryZone{
		{ID: uuid.NewString(), Name: models.ZoneMbabane, FlatFeeSZL: decimal.NewFromFloat(15.00), IsActive: true},
		{ID: uuid.NewString(), Name: models.ZoneManzini, FlatFeeSZL: decimal.NewFromFloat(20.00), IsActive: true},
		{ID: uuid.NewString(), Name: models.ZoneOther, FlatFeeSZL: decimal.NewFromFloat(25.00), IsActive: true},
	}
	if err := db.Create(&zones).Error; err != nil {
		return err
	}

	restaurant := models.Restaurant{
		ID:          uuid.NewString(),
		Name:        "eKhaya Kitchen",
		Slug:        "ekhaya-kitchen",
		CuisineType: "Swazi",
		Phone:       "+26876100100",
		Address:     "Gwamile Street, Mbabane",
		Zone:        models.ZoneMbabane,
		IsOpen:      true,
		IsActive:    true,
		MinOrderSZL: decimal.NewFromFloat(50.00),
	}
	if err := db.Create(&restaurant).Error; err != nil {
		return err
	}

	category := models.MenuCategory{
		ID:           uuid.NewString(),
		RestaurantID: restaurant.ID,
		Name:         "Mains",
		DisplayOrder: 1,
	}
	if err := db.Create(&category).Error; err != nil {
		return err
	}

	items := []models.MenuItem{
		{ID: uuid.NewString(), CategoryID: category.ID, RestaurantID: restaurant.ID, Name: "Sishwala & Beef Stew", PriceSZL: decimal.NewFromFloat(65.00), IsAvailable: true, DisplayOrder: 1},
		{ID: uuid.NewString(), CategoryID: category.ID, RestaurantID: restaurant.ID, Name: "Grilled Chicken Quarter", PriceSZL: decimal.NewFromFloat(55.00), IsAvailable: true, DisplayOrder: 2},
	}
	if err := db.Create(&items).Error; err != nil {
		return err
	}

	restaurantAdmin := models.Profile{
		ID:           uuid.NewString(),
		Role:         models.RoleRestaurantAdmin,
		FullName:     "Restaurant Admin",
		Phone:        "+26876100101",
		RestaurantID: &restaurant.ID,
	}
	driverProfile := models.Profile{
		ID:       uuid.NewString(),
		Role:     models.RoleDriver,
		FullName: "Sipho Dlamini",
		Phone:    "+26876100102",
	}
	operator := models.Profile{
		ID:       uuid.NewString(),
		Role:     models.RoleOperator,
		FullName: "Platform Operator",
		Phone:    "+26876100103",
	}
	profiles := []models.Profile{restaurantAdmin, driverProfile, operator}
	if err := db.Create(&profiles).Error; err != nil {
		return err
	}

	driver := models.Driver{
		ID:        uuid.NewString(),
		ProfileID: driverProfile.ID,
		Name:      driverProfile.FullName,
		Phone:     driverProfile.Phone,
		Zone:      models.ZoneMbabane,
		IsActive:  true,
	}
	if err := db.Create(&driver).Error; err != nil {
		return err
	}

	// Issue API tokens and print them once
	profileRepo := repository.NewProfileRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	authService := services.NewAuthService(profileRepo, driverRepo)
	for _, profile := range profiles {
		token, err := authService.IssueToken(ctx, profile.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%-18s %s\n", profile.Role, token)
	}

	return nil
}
