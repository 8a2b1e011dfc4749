package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eco-dashboard/internal/config"
	"eco-dashboard/internal/database"
	httpapi "eco-dashboard/internal/http"
	"eco-dashboard/internal/logger"
	"eco-dashboard/internal/repository"
	"eco-dashboard/internal/service"
	"eco-dashboard/internal/session"
	"eco-dashboard/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "eco-dashboard")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedisKV(redisClient)
	sessions := session.NewManager(kv, cfg.Session.TTL)

	// Repositories: Postgres when available, in-memory fallback so the
	// service still comes up for local dev without a DB.
	var (
		db           *sql.DB
		orgs         repository.OrganizationsRepository
		devices      repository.DevicesRepository
		measurements repository.MeasurementsRepository
		alerts       repository.AlertsRepository
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for eco-dashboard")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repos", zap.Error(err))
		}
	}
	if db != nil {
		orgs = repository.NewPostgresOrganizationsRepo(db)
		devices = repository.NewPostgresDevicesRepo(db)
		measurements = repository.NewPostgresMeasurementsRepo(db)
		alerts = repository.NewPostgresAlertsRepo(db)
	} else {
		mem := repository.NewMemoryRepo()
		orgs = mem
		devices = mem
		measurements = mem
		alerts = mem.AlertsRepo()

		// Dev bootstrap: a demo organization so login works out of the box.
		if os.Getenv("SEED_DEMO") != "false" {
			authSvc := service.NewAuthService(mem, log)
			if org, err := authSvc.Register(context.Background(), service.RegisterRequest{
				Name:            "Demo",
				Email:           "demo@eco.local",
				Password:        "ChangeMe123!",
				ConfirmPassword: "ChangeMe123!",
			}); err == nil {
				mem.SeedDemo(org.ID)
			}
		}
	}

	resolver := repository.NewTenantResolver(orgs)

	authSvc := service.NewAuthService(orgs, log)
	dashboardSvc := service.NewDashboardService(orgs, devices, measurements, alerts, log)
	listingSvc := service.NewListingService(devices, measurements, alerts, log)

	guard := httpapi.NewGuard(sessions, resolver, cfg.Session.CookieName, log)
	router := httpapi.NewRouter(log)
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authSvc, sessions, cfg.Session.CookieName, log))
	router.RegisterDashboardRoutes(guard, httpapi.NewDashboardHandler(dashboardSvc, log))
	router.RegisterListingRoutes(guard, httpapi.NewListingHandler(listingSvc, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server exited", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}
