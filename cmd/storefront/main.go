package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/foodexpress/storefront/internal/cache"
	"github.com/foodexpress/storefront/internal/catalog"
	h "github.com/foodexpress/storefront/internal/http"
	"github.com/foodexpress/storefront/internal/publisher"
	"github.com/foodexpress/storefront/internal/repository"
	"github.com/foodexpress/storefront/internal/session"
)

type Config struct {
	HTTPPort        string
	PostgresHost    string
	PostgresPort    int
	PostgresUser    string
	PostgresPass    string
	PostgresDB      string
	MigrationsPath  string
	RedisAddr       string
	KafkaBrokers    []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	SessionIdleTTL  time.Duration
	ResetDelay      time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		PostgresHost:    getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:    getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:    getEnv("POSTGRES_USER", "storefront"),
		PostgresPass:    getEnv("POSTGRES_PASSWORD", "storefront"),
		PostgresDB:      getEnv("POSTGRES_DB", "storefront"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "migrations"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		KafkaBrokers:    splitList(getEnv("KAFKA_BROKERS", "")),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		SessionIdleTTL:  getEnvDuration("SESSION_IDLE_TTL", h.DefaultIdleTTL),
		ResetDelay:      getEnvDuration("CONFIRMATION_RESET_DELAY", session.DefaultResetDelay),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, ",")
}

func main() {
	cfg := loadConfig()

	cred := &repository.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPass,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.MigrationsPath,
	}

	repo, err := repository.NewRepository(cred)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(cred); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// The catalog source is the bare store unless Redis is configured,
	// in which case reads go through the cache.
	var source catalog.Source = repo
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		source = catalog.NewCachedSource(repo, cache.NewRedisCache(redisClient))
	}

	var notifier session.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		pub := publisher.NewOrderPublisher(cfg.KafkaBrokers...)
		defer pub.Close()
		notifier = pub
	}

	registry := h.NewRegistry(func() *h.ClientState {
		return &h.ClientState{
			Selector: catalog.NewSelector(source),
			Session:  session.New(repo, notifier, cfg.ResetDelay),
		}
	}, cfg.SessionIdleTTL)
	defer registry.Close()

	catalogHandler := h.NewCatalogHandler(cfg.RequestTimeout)
	sessionHandler := h.NewSessionHandler(cfg.RequestTimeout)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.SessionMiddleware(registry))

		r.Get("/vendors", catalogHandler.ListVendors)
		r.Post("/vendors/{vendor_id}/select", catalogHandler.SelectVendor)
		r.Post("/vendors/deselect", catalogHandler.DeselectVendor)
		r.Get("/items", catalogHandler.ListItems)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", sessionHandler.GetCart)
			r.Post("/items", sessionHandler.AddItem)
			r.Put("/items/{item_id}", sessionHandler.AdjustQuantity)
			r.Post("/open", sessionHandler.OpenCart)
			r.Post("/close", sessionHandler.CloseCart)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/open", sessionHandler.OpenCheckout)
			r.Post("/close", sessionHandler.CloseCheckout)
			r.Put("/customer", sessionHandler.SetCustomerField)
			r.Post("/submit", sessionHandler.Submit)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
