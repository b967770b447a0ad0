// @title           Logbook Backend API
// @version         1.0.0
// @description     Backend API for per-user key/value log entries stored in Supabase.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"log"
	"net/http"
	"net/url"

	"logbook-backend/docs"
	"logbook-backend/internal/config"
	"logbook-backend/internal/database"
	"logbook-backend/internal/handlers"
	"logbook-backend/internal/middleware"
	"logbook-backend/internal/services"
	"logbook-backend/internal/supabase"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	// The handle is built once and shared; placeholder config still yields a
	// usable value so the server can start and report its status.
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Supabase client: %v", err)
	}
	if !supabaseClient.Configured() {
		log.Println("Warning: VITE_SUPABASE_URL or VITE_SUPABASE_ANON_KEY not set. Using placeholder configuration.")
		log.Println("Log endpoints will answer 503 until both are configured.")
	}
	if cfg.SupabaseJWTSecret == "" {
		log.Println("Warning: SUPABASE_JWT_SECRET not set. Tokens will be verified against Supabase Auth.")
	}

	// Migrations need a direct PostgreSQL connection
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set. Migrations will be skipped.")
	} else {
		runMigrations(cfg.DatabaseURL)
	}

	router := setupRouter(cfg, supabaseClient)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter wires the services, handlers and middleware onto a gin engine.
func setupRouter(cfg *config.Config, supabaseClient *supabase.Client) *gin.Engine {
	store := supabase.NewLogEntryStore(supabaseClient)
	storageClient := supabase.NewStorageClient(supabaseClient)
	realtimeClient := supabase.NewRealtimeClient(supabaseClient)
	exportService := services.NewExportService(store, storageClient, realtimeClient)

	// Initialize handlers
	statusHandler := handlers.NewStatusHandler(supabaseClient)
	logsHandler := handlers.NewLogsHandler(store, realtimeClient, cfg.DefaultPageSize)
	exportsHandler := handlers.NewExportsHandler(exportService)

	router := gin.New()

	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health and configuration status (no auth)
	router.GET("/health", handlers.HealthHandler)
	router.GET("/status", statusHandler.GetStatus)

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.RequireSupabase(supabaseClient))
	api.Use(middleware.AuthMiddleware(cfg, supabaseClient))

	// Log entries
	api.POST("/logs", logsHandler.CreateLog)
	api.GET("/logs", logsHandler.ListLogs)
	api.GET("/logs/:id", logsHandler.GetLog)
	api.PATCH("/logs/:id", logsHandler.UpdateLog)
	api.DELETE("/logs/:id", logsHandler.DeleteLog)

	// Exports
	api.POST("/exports", exportsHandler.CreateExport)
	api.GET("/exports", exportsHandler.ListExports)
	api.DELETE("/exports/:name", exportsHandler.DeleteExport)

	return router
}

func runMigrations(dbURL string) {
	migrator, err := database.NewMigrator(dbURL)
	if err != nil {
		log.Printf("Warning: Failed to initialize migrator: %v", err)
		return
	}
	defer migrator.Close()

	applied, err := migrator.Run()
	if err != nil {
		log.Printf("Warning: Migration failed: %v", err)
		return
	}
	log.Printf("Migrations completed successfully (%d applied)", len(applied))
}
