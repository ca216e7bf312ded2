package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/Spok95/erp-core/internal/config"
	"github.com/Spok95/erp-core/internal/domain/lots"
	"github.com/Spok95/erp-core/internal/domain/reservations"
	"github.com/Spok95/erp-core/internal/domain/settings"
	"github.com/Spok95/erp-core/internal/domain/users"
	"github.com/Spok95/erp-core/internal/domain/workorders"
	"github.com/Spok95/erp-core/internal/infra/db"
	httpx "github.com/Spok95/erp-core/internal/infra/http"
	"github.com/Spok95/erp-core/internal/infra/logger"
	"github.com/Spok95/erp-core/internal/report"
	"github.com/Spok95/erp-core/internal/reserve"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/subosito/gotenv"
)

func runMigrations(dsn string, log *slog.Logger) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := runMigrations(cfg.Postgres.DSN, log); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	// Ядро резервов; слой маршрутов подключается к нему отдельно.
	svc := reserve.New(reserve.Deps{
		Lots:            lots.NewRepo(pool),
		WorkOrders:      workorders.NewRepo(pool),
		Reservations:    reservations.NewRepo(pool),
		Settings:        settings.NewRepo(pool),
		Users:           users.NewRepo(pool),
		Log:             log,
		DefaultStrategy: reserve.Strategy(cfg.Reserve.DefaultStrategy),
	})
	log.Info("reservation service ready", "default_strategy", cfg.Reserve.DefaultStrategy)

	srv := httpx.New(cfg.HTTP.Addr, pool, cfg.Metrics.Enabled, report.NewHandler(svc, log))
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
