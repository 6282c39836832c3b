package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jsoniter "github.com/json-iterator/go"

	httpapi "github.com/AhmedHeshamC/weatherAPI/internal/api/http"
	"github.com/AhmedHeshamC/weatherAPI/internal/config"
	"github.com/AhmedHeshamC/weatherAPI/internal/scheduler"
	"github.com/AhmedHeshamC/weatherAPI/internal/store"
	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
	"github.com/AhmedHeshamC/weatherAPI/internal/weather/providers"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("FATAL ERROR: %v", err)
	}
}

// run builds every component and serves until a termination signal.
func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Shared cache connection, built once and injected.
	cache, err := store.Open(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to open %s cache: %w", cfg.Cache.Backend, err)
	}
	defer cache.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := cache.Ping(pingCtx); err != nil {
		// Not fatal: requests degrade to upstream fetches until the cache is back.
		log.Printf("ERROR: cache backend %s unreachable at startup: %v", cfg.Cache.Backend, err)
	} else {
		log.Printf("INFO: connected to %s cache", cfg.Cache.Backend)
	}
	cancelPing()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider, err := providers.New(cfg.Provider, httpClient, cfg.ProviderKeys)
	if err != nil {
		return fmt.Errorf("failed to configure weather provider: %w", err)
	}

	// Core service resolving batches through the cache and the provider.
	gateway := weather.NewCacheGateway(cache.Cache, cfg.Cache.OpTimeout)
	service := weather.NewService(gateway, provider, cfg.ServiceOptions())

	// Scheduler that keeps configured locations warm.
	sched := scheduler.New(cfg.WarmLocations, cfg.WarmInterval, service)
	if cache.Purge != nil {
		sched.PurgeExpired(cache.Purge)
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-api",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		JSONEncoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware; the limiter runs before authentication.
	app.Use(httpapi.RequestID())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(httpapi.RateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow))

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-api",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, cfg.ServerAPIKey)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, app, ":"+cfg.Port)
}

// serve listens on addr until ctx is done, then shuts the app down. A listen
// failure (port in use, bad address) is returned immediately.
func serve(ctx context.Context, app *fiber.App, addr string) error {
	listenErr := make(chan error, 1)
	go func() {
		log.Printf("INFO: server listening at http://localhost%s", addr)
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("fiber server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	return nil
}
