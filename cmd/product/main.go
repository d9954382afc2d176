package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/tair/product-catalog/docs"
	"github.com/tair/product-catalog/internal/config"
	"github.com/tair/product-catalog/internal/product"
	"github.com/tair/product-catalog/internal/product/cache"
	httpDelivery "github.com/tair/product-catalog/internal/product/delivery/http"
	"github.com/tair/product-catalog/internal/product/domain"
	"github.com/tair/product-catalog/internal/product/repository"
	"github.com/tair/product-catalog/kafka"
	"github.com/tair/product-catalog/pkg/database"
	"github.com/tair/product-catalog/pkg/logger"
	"github.com/tair/product-catalog/pkg/tracing"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	logger.Init(cfg.Logger.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.Logger.Level)

	logger.Logger.Info().
		Str("service", cfg.Logger.ServiceName).
		Str("environment", cfg.Server.Environment).
		Str("log_level", cfg.Logger.Level).
		Msg("Starting product service")

	// Initialize tracer
	tp, err := tracing.InitTracer(cfg.Tracing)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Connect to database
	sqlDB, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer sqlDB.Close()

	// Run migrations
	if err := repository.Migrate(sqlDB); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	db, err := database.OpenGorm(sqlDB)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to open gorm session")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	publisher := newPublisher(cfg.Kafka)
	if closer, ok := publisher.(*kafka.Publisher); ok {
		defer closer.Close()
	}

	productCache, redisClient := newCache(cfg.Redis)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize handler with Wire DI
	handler, err := product.InitializeHTTPHandler(db, publisher, productCache, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize handler")
	}

	server := newHTTPServer(handler, sqlDB, cfg.Server.HTTPPort)

	go func() {
		logger.Logger.Info().
			Str("port", cfg.Server.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Str("swagger_endpoint", "/swagger/").
			Msg("HTTP server started")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Logger.Info().Msg("Server exited")
}

func newHTTPServer(handler *httpDelivery.ProductHandler, db httpDelivery.Pinger, port string) *http.Server {
	router := mux.NewRouter()

	httpDelivery.RegisterMiddlewares(router, httpDelivery.DefaultMiddlewareConfig())

	handler.RegisterRoutes(router)
	handler.RegisterHealthCheck(router, db)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{httpDelivery.HeaderRequestID},
		AllowCredentials: true,
	})

	return &http.Server{
		Addr:              ":" + port,
		Handler:           httpDelivery.RequestIDMiddleware(c.Handler(router)),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// newPublisher returns a kafka publisher when brokers are configured
func newPublisher(cfg config.KafkaConfig) domain.EventPublisher {
	if len(cfg.Brokers) == 0 {
		logger.Logger.Info().Msg("Kafka brokers not configured, product events are not published")
		return domain.NoopPublisher{}
	}

	publisher, err := kafka.NewPublisher(cfg.Brokers, cfg.Topic)
	if err != nil {
		logger.Logger.Error().Err(err).Strs("brokers", cfg.Brokers).Msg("Failed to create kafka publisher, events disabled")
		return domain.NoopPublisher{}
	}
	return publisher
}

// newCache returns a redis backed product cache when an address is configured
func newCache(cfg config.RedisConfig) (domain.ProductCache, *redis.Client) {
	if cfg.Addr == "" {
		logger.Logger.Info().Msg("Redis not configured, product cache disabled")
		return domain.NoopCache{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := cache.NewRedisClient(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Redis unavailable, product cache disabled")
		return domain.NoopCache{}, nil
	}

	logger.Logger.Info().Str("addr", cfg.Addr).Dur("ttl", cfg.TTL).Msg("Redis product cache initialized")
	return cache.NewRedisProductCache(client, cfg.TTL), client
}
