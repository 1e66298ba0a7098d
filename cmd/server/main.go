package main

import (
	"context"
	"log"

	"github.com/chiarivoices/backend/internal/router"
	"github.com/chiarivoices/backend/pkg/config"
	"github.com/chiarivoices/backend/pkg/firebase"
	"github.com/chiarivoices/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	watcher := router.SetupRoutes(e, cfg, db.Postgres, db.Mongo, firebaseApp.AuthClient)

	// Regenerate the sitemap whenever a post is written or deleted. Change
	// streams need a replica set; on standalone MongoDB this logs and the
	// sitemap is still rebuilt per request.
	go func() {
		if err := watcher.Run(ctx); err != nil {
			log.Printf("Sitemap watcher stopped: %v", err)
		}
	}()

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
