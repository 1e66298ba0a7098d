package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/chiarivoices/backend/internal/handlers"
	"github.com/chiarivoices/backend/internal/middleware"
	"github.com/chiarivoices/backend/internal/models"
	"github.com/chiarivoices/backend/internal/repositories"
	"github.com/chiarivoices/backend/internal/sitemap"
	"github.com/chiarivoices/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	gocache "github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// It returns the sitemap watcher so main can run it for the server's lifetime.
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client) *sitemap.Watcher {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Bookmark{},
		&models.JournalEntry{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	mongoDB := mgClient.Database(cfg.MongoDatabase)
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	commentRepo := repositories.NewMongoCommentRepository(mongoDB)
	bookmarkRepo := repositories.NewPostgresBookmarkRepository(pgdb)
	journalRepo := repositories.NewPostgresJournalRepository(pgdb)

	// --- Sitemap generation, cache and change-stream watcher ---
	sitemapCache := gocache.New(cfg.SitemapCacheTTL, 2*cfg.SitemapCacheTTL)
	generator := sitemap.NewGenerator(postRepo, cfg.SiteBaseURL)
	watcher := sitemap.NewWatcher(postRepo.Collection(), generator, sitemapCache)

	sitemapHandler := handlers.NewSitemapHandler(generator, sitemapCache)
	sitemapHandler.RegisterSitemapRoutes(e)
	log.Println("Sitemap route configured.")

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Public reader routes (no authentication) ---
	public := e.Group("/api/v1/public")
	postHandler := handlers.NewPostHandler(postRepo, commentRepo)
	postHandler.RegisterPublicRoutes(public)

	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo)
	commentHandler.RegisterPublicRoutes(public)
	log.Println("Public reader routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)
	log.Println("User profile routes configured.")

	// Comment routes (create, reply, like)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	// Bookmark routes
	bookmarkHandler := handlers.NewBookmarkHandler(bookmarkRepo, postRepo)
	bookmarkHandler.RegisterBookmarkRoutes(api)
	log.Println("Bookmark routes configured.")

	// Symptom journal routes
	journalHandler := handlers.NewJournalHandler(journalRepo)
	journalHandler.RegisterJournalRoutes(api)
	log.Println("Journal routes configured.")

	// --- Admin routes (content management, user administration) ---
	admin := e.Group("/api/v1/admin")
	admin.Use(middleware.JWTAuthMiddleware())
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	postHandler.RegisterAdminRoutes(admin)
	userHandler.RegisterAdminRoutes(admin)
	log.Println("Admin routes configured.")

	// --- Moderation routes (admins and moderators) ---
	moderation := e.Group("/api/v1/moderation")
	moderation.Use(middleware.JWTAuthMiddleware())
	moderation.Use(middleware.RequireRole(models.RoleAdmin, models.RoleModerator))
	commentHandler.RegisterModerationRoutes(moderation)
	log.Println("Moderation routes configured.")

	log.Println("All routes configured.")
	return watcher
}
