package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/samirrijal/neverbeen/internal/adapters/http"
	"github.com/samirrijal/neverbeen/internal/adapters/memory"
	natsadapter "github.com/samirrijal/neverbeen/internal/adapters/nats"
	"github.com/samirrijal/neverbeen/internal/adapters/nominatim"
	"github.com/samirrijal/neverbeen/internal/adapters/postgres"
	"github.com/samirrijal/neverbeen/internal/adapters/valkey"
	"github.com/samirrijal/neverbeen/internal/core/domain"
	"github.com/samirrijal/neverbeen/internal/core/ports"
	"github.com/samirrijal/neverbeen/internal/core/usecases"
	"github.com/samirrijal/neverbeen/internal/pkg/config"
	"github.com/samirrijal/neverbeen/internal/pkg/logging"
	"github.com/samirrijal/neverbeen/internal/pkg/telemetry"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.Load("neverbeen-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{}
	var searchers []ports.PlaceSearcher

	// Gazetteer database
	if cfg.Database.Enabled {
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			slog.Warn("gazetteer database unavailable", "error", err)
		} else {
			defer db.Close()
			deps.DB = db
			searchers = append(searchers, postgres.NewPlaceRepo(db))
		}
	}

	// Nominatim
	if cfg.Nominatim.Enabled {
		searchers = append(searchers, nominatim.NewClient(
			cfg.Nominatim.BaseURL,
			cfg.Nominatim.UserAgent,
			time.Duration(cfg.Nominatim.Timeout)*time.Second,
		))
	}

	// Cache and sessions
	var cache ports.CacheService
	var sessions ports.SessionStore
	vc, err := valkey.New(cfg.Valkey.Addr)
	if err == nil {
		err = vc.Ping(ctx)
		if err != nil {
			vc.Close()
		}
	}
	if err != nil {
		slog.Warn("valkey unavailable, keeping sessions in memory", "error", err)
		sessions = memory.NewSessionStore(time.Duration(cfg.Explorer.SessionTTL) * time.Second)
	} else {
		defer vc.Close()
		deps.Cache = vc
		cache = vc
		sessions = valkey.NewSessionStore(vc, cfg.Explorer.SessionTTL)
	}

	// NATS
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, live feed disabled", "error", err)
	} else {
		defer pub.Close()
		events = pub
		deps.Feed = natsadapter.NewSubscriber(pub.Conn())
	}

	// Use cases
	unit, err := domain.ParseUnit(cfg.Explorer.Unit)
	if err != nil {
		log.Fatalf("explorer unit: %v", err)
	}
	deps.Explorer = usecases.NewExplorerService(sessions, events, usecases.ExplorerDefaults{
		Origin:      domain.GeoPoint{Lat: cfg.Explorer.OriginLat, Lon: cfg.Explorer.OriginLon},
		OriginLabel: cfg.Explorer.OriginLabel,
		RadiusMiles: cfg.Explorer.RadiusMiles,
		Unit:        unit,
	})
	deps.Places = usecases.NewPlaceService(cache, searchers...)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "Neverbeen API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps, http.RouteOptions{RateLimit: cfg.Server.RateLimit})

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "searchers", len(searchers))
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
