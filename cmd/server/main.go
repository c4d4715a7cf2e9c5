package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/transactional/dam-service/internal/auth"
	"github.com/transactional/dam-service/internal/authority"
	"github.com/transactional/dam-service/internal/config"
	"github.com/transactional/dam-service/internal/handler"
	"github.com/transactional/dam-service/internal/middleware"
	"github.com/transactional/dam-service/internal/repository/postgres"
	"github.com/transactional/dam-service/internal/service"
	"github.com/transactional/dam-service/internal/service/user"
	"github.com/transactional/dam-service/internal/task"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Service token verifier for the internal endpoints
	verifier, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create service token verifier: %v", err)
	}

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Create repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	assetRepo := postgres.NewAssetRepository(repoConfig)
	resourceRepo := postgres.NewAssetResourceRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Resource authority client
	profile, err := authority.DefaultProfile()
	if err != nil {
		log.Fatalf("Failed to load authority profile: %v", err)
	}
	authorityClient := authority.NewClient(cfg.Authority, profile, logger)

	// Create services
	assetService := service.NewAssetService(assetRepo, resourceRepo, folderRepo, authorityClient, txManager, logger)
	folderService := service.NewFolderService(folderRepo, assetRepo, txManager, logger)
	resourcesService := user.NewManagedResourcesService(authorityClient)
	authzService := user.NewAuthorizationService(folderService, logger)

	obsoleteTask := task.NewObsoleteLocationLinksDeletion(assetService, authorityClient, cfg.TaskAssetPageSize, logger)

	// Create handlers
	assetHandler := handler.NewAssetHandler(assetService, folderService, resourcesService, authzService, logger)
	folderHandler := handler.NewFolderHandler(folderService, resourcesService, authzService, logger)
	internalHandler := handler.NewInternalHandler(assetService, folderService, obsoleteTask, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", handler.Home)
	mux.HandleFunc("GET /health", handler.Home)
	assetHandler.RegisterRoutes(mux)
	folderHandler.RegisterRoutes(mux)

	// Internal routes sit behind service token auth
	internalMux := http.NewServeMux()
	internalHandler.RegisterRoutes(internalMux)
	mux.Handle("/internal/", middleware.ServiceAuth(verifier, logger)(internalMux))

	// Build middleware chain, innermost first
	var root http.Handler = mux
	root = middleware.Recovery(logger)(root)
	root = middleware.RequestID(root)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			"X-Uberall-Access-Token", "X-Uberall-User-ID", "X-Uberall-Sales-Partner-ID",
			"X-Uberall-User-Role", "X-Uberall-User-Features",
		},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
