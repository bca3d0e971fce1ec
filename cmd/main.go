package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/holocommerce/storefront/internal/cache"
	"github.com/holocommerce/storefront/internal/config"
	h "github.com/holocommerce/storefront/internal/http"
	"github.com/holocommerce/storefront/internal/metrics"
	"github.com/holocommerce/storefront/internal/repository"
	"github.com/holocommerce/storefront/internal/service"
	"github.com/holocommerce/storefront/internal/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

func setupLogger(cfg *config.LogConfig) {
	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.WithError(err).Warn("unknown LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.WithError(err).Fatal("failed to read .env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	setupLogger(cfg.Log)
	logger := log.WithField("service", "storefront")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.Setup(ctx, tracing.Config{
		Exporter:    cfg.Tracing.Exporter,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to set up tracing")
	}

	// Document store
	startupCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	store := repository.Open(startupCtx, repository.OpenOptions{
		Mongo: repository.MongoOptions{
			URI:                    cfg.Mongo.URI,
			Database:               cfg.Mongo.Database,
			ConnectTimeout:         cfg.Mongo.ConnectTimeout,
			ServerSelectionTimeout: cfg.Mongo.ServerSelectionTimeout,
			MaxPoolSize:            cfg.Mongo.MaxPoolSize,
			MinPoolSize:            cfg.Mongo.MinPoolSize,
		},
		Breaker: repository.BreakerConfig{
			MaxFailures: cfg.Breaker.MaxFailures,
			OpenTimeout: cfg.Breaker.OpenTimeout,
		},
	}, logger.WithField("component", "store"))

	if store.State() == repository.StateReady {
		if err := store.EnsureIndexes(startupCtx); err != nil {
			logger.WithError(err).Warn("failed to create cart indexes")
		}
		if cfg.Seed {
			if _, err := service.NewSeeder(store.Products(), logger).Seed(startupCtx); err != nil {
				logger.WithError(err).Warn("catalog seed failed")
			}
		}
	}
	cancel()

	// Cache
	var (
		cartCache     cache.CartCache     = cache.Noop{}
		categoryCache cache.CategoryCache = cache.Noop{}
		redisClient   *redis.Client
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancelPing()
		if err != nil {
			logger.WithError(err).Warn("Redis unreachable, caching disabled")
			_ = redisClient.Close()
			redisClient = nil
		} else {
			rc := cache.NewRedisCache(redisClient, cfg.Redis.CartTTL, cfg.Redis.CategoryTTL)
			cartCache, categoryCache = rc, rc
			logger.WithField("addr", cfg.Redis.Addr).Info("Redis cache enabled")
		}
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	catalog := service.NewCatalogService(store.Products(), categoryCache, m, logger)
	carts := service.NewCartService(store.Carts(), cartCache, m, logger)

	router := h.NewRouter(h.RouterConfig{
		Catalog: catalog,
		Carts:   carts,
		Store:   store,
		Env: h.EnvStatus{
			DatabaseURLSet:  cfg.Mongo.URISet,
			DatabaseNameSet: cfg.Mongo.DatabaseSet,
		},
		Metrics:        m,
		Gatherer:       prometheus.DefaultGatherer,
		Limiter:        h.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Logger:         logger,
		TracerProvider: tp,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.HTTP.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.WithFields(log.Fields{
			"port":  cfg.HTTP.Port,
			"store": store.State().String(),
		}).Info("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.WithError(err).Warn("failed to disconnect MongoDB")
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.WithError(err).Warn("failed to close Redis client")
		}
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("failed to flush traces")
	}

	logger.Info("server exited")
}
