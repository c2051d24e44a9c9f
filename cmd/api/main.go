package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"portal-api/internal/api/controllers"
	"portal-api/internal/api/handlers"
	"portal-api/internal/config"
	"portal-api/internal/database"
	"portal-api/internal/middleware"
	"portal-api/internal/oauth"
	"portal-api/internal/ratelimit"
	"portal-api/internal/repository"
	"portal-api/internal/services"
	"portal-api/internal/storage"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	// Initialize database connection
	db, err := database.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Get underlying *sql.DB instance for connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get underlying *sql.DB instance:", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	// Redis backs both the distributed rate limiter and the listing cache.
	// A failed connection here is not fatal: the limiter selector degrades
	// to its in-process fallback.
	cacheConfig := config.NewCacheConfig()
	redisClient, err := services.NewRedisClient(cacheConfig)
	if err != nil {
		log.Printf("Warning: Redis unavailable, rate limiting will run on the in-process fallback: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)
	portalRepo := repository.NewPortalRepository(db)
	portalFileRepo := repository.NewPortalFileRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	// Initialize services
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	authService := services.NewAuthService(userRepo, subscriptionRepo, jwtSecret)
	auditLogService := services.NewAuditLogService(auditLogRepo)

	oauthRegistry := oauth.NewRegistry(config.NewOAuthConfig(), nil)
	tokenService := services.NewTokenService(credentialRepo, oauthRegistry, auditLogService)

	cacheService := services.NewRedisCacheService(redisClient)
	storageRegistry := storage.NewRegistry(nil)
	storageService := services.NewStorageService(tokenService, storageRegistry, cacheService, auditLogService)

	planLimits := config.NewPlanLimitConfig()
	quotaService := services.NewQuotaService(portalRepo, portalFileRepo, teamRepo, planLimits)
	portalService := services.NewPortalService(portalRepo, portalFileRepo, quotaService, auditLogService)
	teamService := services.NewTeamService(teamRepo, quotaService)

	// Initialize rate limiting: Redis sliding windows with per-category
	// in-memory fallback behind the selector.
	rateLimitConfig := config.NewRateLimitConfig()
	redisLimiter := ratelimit.NewRedisLimiter(redisClient, rateLimitConfig)
	limiter := ratelimit.NewSelector(redisLimiter, rateLimitConfig)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	oauthHandler := handlers.NewOAuthHandler(tokenService)
	storageHandler := handlers.NewStorageHandler(storageService)
	portalHandler := handlers.NewPortalHandler(portalService)
	teamHandler := handlers.NewTeamHandler(teamService)
	usageHandler := handlers.NewUsageHandler(quotaService)

	// Initialize router
	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)

	// Public routes
	authLimiter := middleware.RateLimit(limiter, config.CategoryAuth)
	router.Handle("/auth/register", authLimiter(http.HandlerFunc(authHandler.Register))).Methods("POST")
	router.Handle("/auth/login", authLimiter(http.HandlerFunc(authHandler.Login))).Methods("POST")
	router.Handle("/health", controllers.HealthCheckHandler(db, redisClient)).Methods("GET")

	// API routes (protected)
	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.AuthMiddleware(authService))
	apiRouter.Use(middleware.RateLimit(limiter, config.CategoryAPI))

	// OAuth connections
	apiRouter.HandleFunc("/oauth/connections", oauthHandler.Connections).Methods("GET")
	apiRouter.HandleFunc("/oauth/{provider}/connect", oauthHandler.Connect).Methods("POST")
	apiRouter.HandleFunc("/oauth/{provider}", oauthHandler.Disconnect).Methods("DELETE")

	// Storage operations run under the download window on top of the
	// general API window.
	downloadLimiter := middleware.RateLimit(limiter, config.CategoryDownload)
	apiRouter.Handle("/storage/{provider}/files", downloadLimiter(http.HandlerFunc(storageHandler.ListFiles))).Methods("GET")
	apiRouter.Handle("/storage/{provider}/files/{id}", downloadLimiter(http.HandlerFunc(storageHandler.DeleteFile))).Methods("DELETE")

	// Portals
	uploadLimiter := middleware.RateLimit(limiter, config.CategoryUpload)
	apiRouter.HandleFunc("/portals", portalHandler.CreatePortal).Methods("POST")
	apiRouter.HandleFunc("/portals", portalHandler.ListPortals).Methods("GET")
	apiRouter.HandleFunc("/portals/{id}", portalHandler.DeletePortal).Methods("DELETE")
	apiRouter.HandleFunc("/portals/{id}/domain", portalHandler.SetCustomDomain).Methods("PUT")
	apiRouter.Handle("/portals/{id}/files", uploadLimiter(http.HandlerFunc(portalHandler.AttachFile))).Methods("POST")
	apiRouter.HandleFunc("/portals/{id}/files", portalHandler.ListFiles).Methods("GET")

	// Teams
	apiRouter.HandleFunc("/teams", teamHandler.CreateTeam).Methods("POST")
	apiRouter.HandleFunc("/teams", teamHandler.ListTeams).Methods("GET")
	apiRouter.HandleFunc("/teams/{id}/members", teamHandler.AddMember).Methods("POST")
	apiRouter.HandleFunc("/teams/{id}/members", teamHandler.ListMembers).Methods("GET")
	apiRouter.HandleFunc("/teams/{id}/members/{userId}", teamHandler.RemoveMember).Methods("DELETE")

	// Usage
	apiRouter.HandleFunc("/usage", usageHandler.GetUsage).Methods("GET")

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
		},
		ExposedHeaders: []string{
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	// Create server with timeouts
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      corsMiddleware.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Server starting on port %s", port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
