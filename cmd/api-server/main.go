package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/nutriagenda/scheduling-portal/internal/api"
	"github.com/nutriagenda/scheduling-portal/internal/clinical"
	"github.com/nutriagenda/scheduling-portal/internal/config"
	"github.com/nutriagenda/scheduling-portal/internal/db"
	"github.com/nutriagenda/scheduling-portal/internal/ibge"
	"github.com/nutriagenda/scheduling-portal/internal/notification"
	redisclient "github.com/nutriagenda/scheduling-portal/internal/redis"
	"github.com/nutriagenda/scheduling-portal/internal/scheduling"
	"github.com/nutriagenda/scheduling-portal/internal/ws"
)

const version = "1.0.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s", cfg.Env, cfg.HTTPPort)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	hub := ws.NewHub()

	notifSvc := notification.NewService(notification.NewPgRepository(pgPool), hub)

	repo := scheduling.NewPgRepository(pgPool)
	locker := redisclient.NewRedisScheduleLocker(rdb, cfg.LockTTL)
	schedSvc := scheduling.NewService(repo, locker, notifSvc, cfg)

	clinSvc := clinical.NewService(clinical.NewPgRepository(pgPool))

	router := api.NewRouter(api.RouterConfig{
		Scheduling:    schedSvc,
		Notifications: notifSvc,
		Clinical:      clinSvc,
		IBGE:          ibge.NewClient(ibge.DefaultBaseURL),
		Hub:           hub,
		PgPool:        pgPool,
		Redis:         rdb,
		JWTSecret:     cfg.JWTSecret,
		AuthLimiter:   api.NewRateLimiter(cfg.AuthRateRPS, cfg.AuthRateBurst),
		Env:           cfg.Env,
		Version:       version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	case <-rootCtx.Done():
	}

	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
