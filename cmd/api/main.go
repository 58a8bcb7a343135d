package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/harborgoods/storefront-backend/api/controllers"
	"github.com/harborgoods/storefront-backend/api/routes"
	cartsvc "github.com/harborgoods/storefront-backend/internal/cart"
	catalogsvc "github.com/harborgoods/storefront-backend/internal/catalog"
	categoriessvc "github.com/harborgoods/storefront-backend/internal/categories"
	mediasvc "github.com/harborgoods/storefront-backend/internal/media"
	shippingsvc "github.com/harborgoods/storefront-backend/internal/shipping"
	userssvc "github.com/harborgoods/storefront-backend/internal/users"
	"github.com/harborgoods/storefront-backend/pkg/auth/session"
	"github.com/harborgoods/storefront-backend/pkg/config"
	"github.com/harborgoods/storefront-backend/pkg/db"
	"github.com/harborgoods/storefront-backend/pkg/logger"
	"github.com/harborgoods/storefront-backend/pkg/metrics"
	"github.com/harborgoods/storefront-backend/pkg/migrate"
	"github.com/harborgoods/storefront-backend/pkg/redis"
	"github.com/harborgoods/storefront-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	cartMetrics := metrics.NewCartMetrics(registry)

	healthChecks := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	usersService, err := userssvc.NewService(userssvc.ServiceParams{
		Store:          userssvc.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		ResetTokens:    redisClient,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	catalogRepo := catalogsvc.NewRepository(dbClient.DB())
	catalogService, err := catalogsvc.NewService(catalogRepo, cfg.Catalog.ImageHost)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	categoriesService, err := categoriessvc.NewService(categoriessvc.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create categories service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(
		cartsvc.NewRepository(dbClient.DB()),
		catalogRepo,
		logg,
		cartMetrics,
		cfg.Catalog.ImageHost,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	shippingService, err := shippingsvc.NewService(shippingsvc.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create shipping service", err)
		os.Exit(1)
	}

	var mediaService mediasvc.Service
	if cfg.GCS.Bucket != "" {
		gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
		defer func() {
			if err := gcsClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing gcs", err)
			}
		}()
		healthChecks["gcs"] = gcsClient

		mediaService, err = mediasvc.NewService(mediasvc.ServiceParams{
			Store:        gcsClient.BucketHandle(gcsClient.DefaultBucket()),
			UploadConfig: cfg.Upload,
			Logger:       logg,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create media service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "gcs bucket not configured, media upload disabled")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:          cfg,
			Logger:          logg,
			SessionManager:  sessionManager,
			HealthChecks:    healthChecks,
			HTTPMetrics:     httpMetrics,
			MetricsGatherer: registry,
			Users:           usersService,
			Cart:            cartService,
			Catalog:         catalogService,
			Categories:      categoriesService,
			Shipping:        shippingService,
			Media:           mediaService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
