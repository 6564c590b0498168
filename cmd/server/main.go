package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"tourbook/internal/config"
	"tourbook/internal/handlers"
	"tourbook/internal/middleware"
	"tourbook/internal/repositories/mongodb"
	"tourbook/internal/services"
	"tourbook/pkg/cache"
	"tourbook/pkg/database"
	"tourbook/pkg/email"
	"tourbook/pkg/logger"
	"tourbook/pkg/maps"
	"tourbook/pkg/storage"
	"tourbook/routes"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		Output:  "stdout",
		Colors:  !cfg.IsProduction(),
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Database
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		AppName:        cfg.App.Name,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer db.Close()
	appLogger.Info("DB connection successful!")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.NewMigrator(db.Database, appLogger).Up(migrateCtx); err != nil {
		cancelMigrate()
		appLogger.WithError(err).Fatal("Failed to run migrations")
	}
	cancelMigrate()

	// Redis is optional; without it caching is off and rate limits are per process.
	var (
		cacheStore  services.CacheStore
		rateCounter middleware.WindowCounter
		redisCache  *cache.RedisCache
	)
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedisCache(&cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			KeyPrefix:    cfg.Redis.KeyPrefix,
		})
		if err != nil {
			appLogger.WithError(err).Warn("Redis unavailable, continuing without cache")
			redisCache = nil
		} else {
			defer redisCache.Close()
			cacheStore = redisCache
			rateCounter = redisCache
		}
	}

	// External providers
	emailSender, err := email.NewSender(&email.Config{
		Provider:       cfg.Email.Provider,
		FromEmail:      cfg.Email.FromEmail,
		FromName:       cfg.Email.FromName,
		Timeout:        cfg.Email.Timeout,
		SMTPHost:       cfg.Email.SMTP.Host,
		SMTPPort:       cfg.Email.SMTP.Port,
		SMTPUsername:   cfg.Email.SMTP.Username,
		SMTPPassword:   cfg.Email.SMTP.Password,
		SendGridAPIKey: cfg.Email.SendGrid.APIKey,
	}, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to configure email")
	}

	storageProvider, staticDir, err := newStorage(context.Background(), cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to configure storage")
	}

	var geocoder maps.Geocoder
	if key := cfg.Maps.GoogleMaps.APIKey; key != "" {
		provider, err := maps.NewGoogleMapsProvider(key)
		if err != nil {
			appLogger.WithError(err).Warn("Geocoding disabled")
		} else {
			geocoder = provider
		}
	}

	// Repositories
	tourRepo := mongodb.NewTourRepository(db.Database)
	userRepo := mongodb.NewUserRepository(db.Database)
	reviewRepo := mongodb.NewReviewRepository(db.Database)

	// Services
	maxResults := cfg.App.MaxResultsPerPage
	cacheService := services.NewCacheService(cacheStore, appLogger, cfg.Redis.CacheTTL)
	emailService := services.NewEmailService(emailSender)
	authService := services.NewAuthService(userRepo, emailService, services.AuthConfig{
		JWTSecret:         cfg.Security.JWTSecret,
		JWTExpiresIn:      cfg.Security.JWTExpiresIn,
		BcryptCost:        cfg.Security.BcryptCost,
		PasswordResetTTL:  cfg.Security.PasswordResetTTL,
		BaseURL:           cfg.App.BaseURL,
		AllowRoleOnSignup: cfg.Security.AllowRoleOnSignup,
	}, appLogger)
	userService := services.NewUserService(userRepo, storageProvider, appLogger, maxResults)
	tourService := services.NewTourService(tourRepo, reviewRepo, userRepo, cacheService, storageProvider, geocoder, appLogger, maxResults)
	reviewService := services.NewReviewService(reviewRepo, tourRepo, cacheService, appLogger, maxResults)

	// Handlers
	checks := map[string]handlers.HealthCheck{"mongodb": db.Ping}
	if redisCache != nil {
		checks["redis"] = redisCache.Ping
	}

	router := routes.SetupRouter(&routes.Dependencies{
		Logger:        appLogger,
		AuthHandler:   handlers.NewAuthHandler(authService),
		UserHandler:   handlers.NewUserHandler(userService),
		TourHandler:   handlers.NewTourHandler(tourService),
		ReviewHandler: handlers.NewReviewHandler(reviewService),
		HealthHandler: handlers.NewHealthHandler(cfg.App.Version, checks),
		Authenticator: authService,
		RateLimiter: middleware.NewRateLimiter(rateCounter, middleware.RateLimitConfig{
			Max:    cfg.Security.RateLimitMax,
			Window: cfg.Security.RateLimitWindow,
		}, appLogger),
		CORSAllowedOrigins: cfg.Security.CORSAllowedOrigins,
		TrustedProxies:     cfg.Security.TrustedProxies,
		MaxBodyBytes:       cfg.App.MaxBodyBytes,
		StaticDir:          staticDir,
	})

	// Start server
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Infof("App running on %s (%s)", srv.Addr, cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.WithField("signal", sig.String()).Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("Forced shutdown")
	}
	appLogger.Info("Process terminated")
}

// newStorage builds the configured provider. For local storage it also
// returns the directory the router serves under /img.
func newStorage(ctx context.Context, cfg *config.StorageConfig) (storage.StorageProvider, string, error) {
	switch cfg.Provider {
	case "s3", "aws":
		provider, err := storage.NewAWSS3Storage(ctx, cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.CDNDomain)
		return provider, "", err
	case "gcp", "gcs":
		provider, err := storage.NewGCPStorage(ctx, cfg.GCP.Bucket, cfg.GCP.CredentialsFile, cfg.GCP.CDNDomain)
		return provider, "", err
	case "local", "":
		provider, err := storage.NewLocalStorage(cfg.Local.BasePath, cfg.Local.BaseURL)
		return provider, cfg.Local.BasePath, err
	default:
		return nil, "", fmt.Errorf("unsupported storage provider %q", cfg.Provider)
	}
}
