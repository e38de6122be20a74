package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FreakyLetsFail/uni-swipe/docs"
	"github.com/FreakyLetsFail/uni-swipe/internal/auth"
	"github.com/FreakyLetsFail/uni-swipe/internal/config"
	"github.com/FreakyLetsFail/uni-swipe/internal/database"
	"github.com/FreakyLetsFail/uni-swipe/internal/http/handler"
	"github.com/FreakyLetsFail/uni-swipe/internal/http/middleware"
	"github.com/FreakyLetsFail/uni-swipe/internal/http/router"
	"github.com/FreakyLetsFail/uni-swipe/internal/identity"
	"github.com/FreakyLetsFail/uni-swipe/internal/jobs"
	"github.com/FreakyLetsFail/uni-swipe/internal/logger"
	"github.com/FreakyLetsFail/uni-swipe/internal/recommendation"
	"github.com/FreakyLetsFail/uni-swipe/internal/repository"
	"github.com/FreakyLetsFail/uni-swipe/internal/service"
	"github.com/FreakyLetsFail/uni-swipe/internal/storage"
	"go.uber.org/zap"
)

// @title Uni Swipe API
// @version 1.0
// @description Swipe through universities ranked by how many of their subjects a student favorited

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Identity provider access token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description Admin API key

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if basicCfg.App.Environment == "development" {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	} else {
		docs.SwaggerInfo.Host = ""
	}

	// In staging/production secrets may come from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(ctx, &cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	imageStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	localImages, _ := imageStorage.(*storage.LocalStorage)
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Repositories
	profileRepo := repository.NewProfileRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	universityRepo := repository.NewUniversityRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	matchRepo := repository.NewMatchRepository(db)

	idp := identity.NewClient(identity.Config{
		URL:             cfg.Identity.URL,
		AnonKey:         cfg.Identity.AnonKey,
		Timeout:         cfg.Identity.TimeoutDuration(),
		BreakerFailures: cfg.Identity.BreakerFailures,
		BreakerTimeout:  cfg.Identity.BreakerTimeoutDuration(),
		RedirectURL:     cfg.App.PublicURL,
	}, log)

	images := recommendation.NewImageResolver(recommendation.ImageConfig{
		Placeholders:    cfg.Recommendation.PlaceholderImages,
		Sentinels:       cfg.Recommendation.PlaceholderSentinels,
		FaviconTemplate: cfg.Recommendation.FaviconURLTemplate,
	}, log)

	// Services
	catalogService := service.NewCatalogService(subjectRepo, universityRepo, imageStorage, images, cfg.Storage.MaxUploadSizeMB, log)
	profileService := service.NewProfileService(profileRepo, log)
	favoriteService := service.NewFavoriteService(profileService, favoriteRepo, subjectRepo, log)
	matchService := service.NewMatchService(profileService, matchRepo, universityRepo, catalogService, log)
	recommendationService := service.NewRecommendationService(
		profileService, favoriteRepo, matchRepo, catalogService, recommendation.NewScorer(images), log)
	diagnosticsService := service.NewDiagnosticsService(profileService, favoriteRepo, matchRepo, catalogService, log)
	authService := service.NewAuthService(idp, subjectRepo, profileService, favoriteService, service.CatalogRetry{
		Attempts: cfg.Catalog.LoadAttempts,
		Delay:    cfg.Catalog.LoadDelayDuration(),
	}, log)

	// A cold catalog is loaded lazily on the first request
	if _, err := catalogService.Refresh(ctx); err != nil {
		log.Warn("Initial catalog load failed", zap.Error(err))
	}

	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	catalogProbe := func(ctx context.Context) error {
		_, err := catalogService.Snapshot(ctx)
		return err
	}

	rt := router.NewRouter(cfg, log, authMiddleware, rateLimiter, router.Handlers{
		Health:         handler.NewHealthHandler(db, catalogProbe, idp, log),
		Auth:           handler.NewAuthHandler(authService, cfg.Security.SecureCookies, log),
		Catalog:        handler.NewCatalogHandler(catalogService, cfg.Storage.MaxUploadSizeMB, log),
		Profile:        handler.NewProfileHandler(profileService, log),
		Favorite:       handler.NewFavoriteHandler(favoriteService, log),
		Recommendation: handler.NewRecommendationHandler(recommendationService, log),
		Match:          handler.NewMatchHandler(matchService, log),
		Debug:          handler.NewDebugHandler(diagnosticsService, log),
	}, localImages)

	var scheduler *jobs.Scheduler
	if cfg.Catalog.RefreshEnabled {
		scheduler = jobs.NewScheduler(log, cfg.Server.RequestTimeoutDuration())
		if err := scheduler.AddJob(jobs.CatalogRefreshJobName, cfg.Catalog.RefreshCron,
			jobs.CatalogRefreshJob(catalogService, log)); err != nil {
			log.Error("Failed to register catalog refresh job", zap.Error(err))
			scheduler = nil
		} else {
			scheduler.Start()
		}
	} else {
		log.Info("Catalog refresh disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		log.Info("Server stopped gracefully")
	}

	return nil
}
