package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"

	"github.com/georgemunganga/cafepos/internal/config"
	"github.com/georgemunganga/cafepos/internal/modules/achievement"
	"github.com/georgemunganga/cafepos/internal/modules/auth"
	"github.com/georgemunganga/cafepos/internal/modules/backup"
	"github.com/georgemunganga/cafepos/internal/modules/catalog"
	"github.com/georgemunganga/cafepos/internal/modules/currency"
	"github.com/georgemunganga/cafepos/internal/modules/customer"
	"github.com/georgemunganga/cafepos/internal/modules/inventory"
	"github.com/georgemunganga/cafepos/internal/modules/order"
	"github.com/georgemunganga/cafepos/internal/modules/organization"
	"github.com/georgemunganga/cafepos/internal/modules/pos"
	"github.com/georgemunganga/cafepos/internal/modules/purchasing"
	"github.com/georgemunganga/cafepos/internal/modules/realtime"
	"github.com/georgemunganga/cafepos/internal/modules/report"
	"github.com/georgemunganga/cafepos/internal/modules/shift"
	"github.com/georgemunganga/cafepos/internal/modules/supplier"
	"github.com/georgemunganga/cafepos/internal/modules/user"
	"github.com/georgemunganga/cafepos/internal/platform/database"
	"github.com/georgemunganga/cafepos/internal/platform/events"
	"github.com/georgemunganga/cafepos/internal/platform/logger"
	"github.com/georgemunganga/cafepos/internal/platform/server"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cafepos:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logs := logger.New("cafepos-api", cfg.LogLevel, cfg.LogJSON)
	log := logs.Logger
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("connected to database")

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	// ── Events ──────────────────────────────────────────────
	bus := events.NewBus()
	var publisher events.Publisher = bus
	if cfg.AMQPURL != "" {
		relay, err := events.DialRelay(cfg.AMQPURL, cfg.EventsExchange, bus, log)
		if err != nil {
			return err
		}
		defer relay.Close()
		go func() {
			if err := relay.Run(ctx); err != nil {
				log.Error("event relay stopped", "error", err)
			}
		}()
		publisher = relay
		log.Info("relaying events through amqp", "exchange", cfg.EventsExchange)
	}

	// ── Identity & settings ─────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	authService := auth.NewService(userRepo, cfg.SessionSecret, cfg.TokenTTL)
	authHandler := auth.NewHandler(authService)

	orgService := organization.NewService(organization.NewPostgresRepository(db))

	// ── Catalog & stock ─────────────────────────────────────
	catalogService := catalog.NewService(catalog.NewPostgresRepository(db), publisher)
	inventoryService := inventory.NewService(inventory.NewPostgresRepository(db), publisher)

	// ── ERP ─────────────────────────────────────────────────
	customerService := customer.NewService(customer.NewPostgresRepository(db))
	supplierService := supplier.NewService(supplier.NewPostgresRepository(db))
	purchasingService := purchasing.NewService(purchasing.NewPostgresRepository(db), publisher)

	// ── Sales ───────────────────────────────────────────────
	achievementService := achievement.NewService(achievement.NewPostgresRepository(db), publisher, log)
	shiftService := shift.NewService(shift.NewPostgresRepository(db), publisher)
	orderService := order.NewService(order.NewPostgresRepository(db), order.Deps{
		Catalog:  catalogService,
		Settings: orgService,
		Users:    userService,
		Awards:   achievementService,
		Events:   publisher,
		Log:      log,
	})
	posHandler := pos.NewHandler(pos.NewService(pos.NewPostgresRepository(db), publisher))

	// ── Back office ─────────────────────────────────────────
	currencyService := currency.NewService(currency.NewPostgresRepository(db), orgService)
	reportService := report.NewService(report.NewPostgresRepository(db), inventoryService)
	backupService := backup.NewService(backup.NewPostgresRepository(db))

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httplog.RequestLogger(logs))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			web.Respond(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		web.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	realtime.NewHandler(bus, cfg.CORSOrigins, log).RegisterRoutes(router)

	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterPublicRoutes(r)
		userHandler.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(authService))

			authHandler.RegisterRoutes(r)
			userHandler.RegisterRoutes(r)
			organization.NewHandler(orgService).RegisterRoutes(r)
			catalog.NewHandler(catalogService).RegisterRoutes(r)
			inventory.NewHandler(inventoryService).RegisterRoutes(r)
			customer.NewHandler(customerService).RegisterRoutes(r)
			supplier.NewHandler(supplierService).RegisterRoutes(r)
			purchasing.NewHandler(purchasingService).RegisterRoutes(r)
			shift.NewHandler(shiftService).RegisterRoutes(r)
			order.NewHandler(orderService).RegisterRoutes(r, posHandler.OrderRoutes)
			posHandler.RegisterRoutes(r)
			achievement.NewHandler(achievementService).RegisterRoutes(r)
			currency.NewHandler(currencyService).RegisterRoutes(r)
			report.NewHandler(reportService).RegisterRoutes(r)
			backup.NewHandler(backupService).RegisterRoutes(r)
		})
	})

	// ── Start Server ────────────────────────────────────────
	srv := server.New(":"+cfg.Port, router, cfg.ShutdownTimeout)
	log.Info("cafepos api listening", "port", cfg.Port)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("server stopped")
	return nil
}
