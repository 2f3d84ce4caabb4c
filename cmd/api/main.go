package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kigurumiya/reserve-backend/api/routes"
	"github.com/kigurumiya/reserve-backend/internal/availability"
	"github.com/kigurumiya/reserve-backend/internal/calendar"
	"github.com/kigurumiya/reserve-backend/internal/inventory"
	"github.com/kigurumiya/reserve-backend/internal/notifications"
	"github.com/kigurumiya/reserve-backend/internal/reservations"
	"github.com/kigurumiya/reserve-backend/pkg/config"
	"github.com/kigurumiya/reserve-backend/pkg/db"
	"github.com/kigurumiya/reserve-backend/pkg/logger"
	"github.com/kigurumiya/reserve-backend/pkg/metrics"
	"github.com/kigurumiya/reserve-backend/pkg/migrate"
	"github.com/kigurumiya/reserve-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	reservationRepo := reservations.NewRepository(dbClient.DB())
	itemRepo := inventory.NewRepository(dbClient.DB())
	overrideRepo := calendar.NewRepository(dbClient.DB())

	inventoryService, err := inventory.NewService(itemRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	availabilityService, err := availability.NewService(
		itemRepo,
		overrideRepo,
		reservations.NewAvailabilityCounter(reservationRepo),
		availability.RulesFromConfig(cfg.Reservation),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create availability service", err)
		os.Exit(1)
	}

	calendarService, err := calendar.NewService(
		overrideRepo,
		itemRepo,
		reservations.NewCounter(reservationRepo),
		dbClient,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create calendar service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(
		notifications.NewMailer(cfg.Email, logg),
		logg,
		cfg.Email,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	reservationService, err := reservations.NewService(
		reservationRepo,
		itemRepo,
		overrideRepo,
		dbClient,
		redisClient,
		notificationService,
		metrics.NewReservationMetrics(prometheus.DefaultRegisterer),
		logg,
		cfg.Reservation,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create reservation service", err)
		os.Exit(1)
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
		Handler: routes.NewRouter(routes.RouterParams{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Gatherer:     prometheus.DefaultGatherer,
			Availability: availabilityService,
			Calendar:     calendarService,
			Inventory:    inventoryService,
			Reservations: reservationService,
		}),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}
