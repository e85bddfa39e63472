// @title           NFT Factory Backend API
// @version         1.0.0
// @description     Backend API for the NFT factory. It stores project assets in Supabase storage, registers stored objects as market items and lists them per wallet.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:3000
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/Catmanpooh/oort-hackathon/docs"
	"github.com/Catmanpooh/oort-hackathon/internal/config"
	"github.com/Catmanpooh/oort-hackathon/internal/database"
	"github.com/Catmanpooh/oort-hackathon/internal/events"
	"github.com/Catmanpooh/oort-hackathon/internal/handlers"
	"github.com/Catmanpooh/oort-hackathon/internal/logging"
	"github.com/Catmanpooh/oort-hackathon/internal/middleware"
	"github.com/Catmanpooh/oort-hackathon/internal/services"
	"github.com/Catmanpooh/oort-hackathon/internal/supabase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		logrus.Fatalf("Invalid server configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	configureSwagger(cfg.BaseURL)

	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize Supabase client: %v", err)
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		logger.Fatalf("Failed to initialize storage client: %v", err)
	}

	// Market items go through PostgREST unless a direct connection is configured.
	var (
		writer services.ItemWriter = supabaseClient
		reader services.ItemReader = supabaseClient
	)
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, migrations skipped and market items stored through PostgREST")
	} else {
		runMigrations(cfg.DatabaseURL, logger)

		dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize database client, falling back to PostgREST")
		} else {
			defer dbClient.Close()
			writer, reader = dbClient, dbClient
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to connect to NATS, events disabled")
		} else {
			publisher = natsPublisher
		}
	}
	defer publisher.Close()

	registry := services.NewRegistryService(storageClient, writer, reader, publisher, cfg.ObjectURLTTL, logger)
	router := newRouter(cfg, logger, handlers.NewItemsHandler(registry))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
}

func newRouter(cfg *config.Config, logger *logrus.Logger, itemsHandler *handlers.ItemsHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")
	api.GET("/health_check", handlers.HealthHandler)
	api.GET("/user_nft_items/:address", itemsHandler.UserItems)
	api.POST("/list_all", itemsHandler.ListAll)
	api.POST("/object_uri", itemsHandler.ObjectURI)
	api.POST("/create", itemsHandler.Create)
	api.DELETE("/delete_item", middleware.AdminAuth(cfg.AdminJWTSecret), itemsHandler.DeleteItem)

	return router
}

// configureSwagger points the served docs at the public base URL.
func configureSwagger(baseURL string) {
	if baseURL == "" {
		return
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return
	}
	docs.SwaggerInfo.Host = u.Host
	if u.Scheme == "https" {
		docs.SwaggerInfo.Schemes = []string{"https", "http"}
	} else {
		docs.SwaggerInfo.Schemes = []string{"http", "https"}
	}
}

func runMigrations(dbURL string, logger *logrus.Logger) {
	migrator, err := database.NewMigrator(dbURL, logger)
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize migrator")
		return
	}
	defer migrator.Close()

	if err := migrator.Run(); err != nil {
		logger.WithError(err).Warn("Migration failed")
		return
	}
	logger.Info("Migrations completed successfully")
}
