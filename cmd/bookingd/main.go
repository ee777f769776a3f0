package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/config"
	httptransport "github.com/example/room-booking/internal/http"
	"github.com/example/room-booking/internal/persistence/sqlite"
	"github.com/example/room-booking/internal/persistence/sqlite/migration"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

	pool, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		logger.Error("failed to open storage", "error", err, "path", cfg.SQLitePath)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := migration.NewManager(pool.DB(), logger).Run(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	organizationRepo := sqlite.NewOrganizationRepository(pool)
	userRepo := sqlite.NewUserRepository(pool)
	facilityRepo := sqlite.NewFacilityRepository(pool)
	roomRepo := sqlite.NewRoomRepository(pool)
	eventRepo := sqlite.NewEventRepository(pool)
	exceptionRepo := sqlite.NewExceptionRepository(pool)
	invitationRepo := sqlite.NewInvitationRepository(pool)

	userService := application.NewUserServiceWithLogger(userRepo, idGenerator, now, logger)
	organizationService := application.NewOrganizationServiceWithLogger(organizationRepo, idGenerator, now, logger)
	roomService := application.NewRoomServiceWithLogger(facilityRepo, roomRepo, idGenerator, now, logger)
	eventService := application.NewEventServiceWithLogger(eventRepo, exceptionRepo, invitationRepo, roomRepo, idGenerator, now, logger)
	availabilityService := application.NewAvailabilityServiceWithLogger(eventRepo, exceptionRepo, roomRepo, now, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:          httptransport.NewAuthHandler(userService, logger),
		Users:         httptransport.NewUserHandler(userService, logger),
		Organizations: httptransport.NewOrganizationHandler(organizationService, logger),
		Facilities:    httptransport.NewFacilityHandler(roomService, logger),
		Rooms:         httptransport.NewRoomHandler(roomService, availabilityService, logger),
		Events:        httptransport.NewEventHandler(eventService, logger),
		Actors:        userService,
		Logger:        logger,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
