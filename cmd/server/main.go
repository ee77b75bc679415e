package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"memscope/internal/audit"
	"memscope/internal/grant"
	grantstore "memscope/internal/grant/store"
	"memscope/internal/memory"
	memorymetrics "memscope/internal/memory/metrics"
	memorystore "memscope/internal/memory/store"
	"memscope/internal/platform/config"
	"memscope/internal/platform/httpserver"
	"memscope/internal/platform/logger"
	platformmetrics "memscope/internal/platform/metrics"
	platformredis "memscope/internal/platform/redis"
	"memscope/internal/policy"
	transport "memscope/internal/transport/http"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	matrix, err := loadMatrix(cfg, log)
	if err != nil {
		return err
	}

	checks := map[string]transport.HealthCheck{}

	var db *sql.DB
	memories := memorystore.Store(memorystore.NewInMemoryStore())
	grants := grant.Store(grantstore.NewInMemoryStore())
	events := audit.Store(audit.NewInMemoryStore())

	if cfg.DatabaseURL != "" {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		memories = memorystore.NewPostgresStore(db)
		grants = grantstore.NewPostgresStore(db)
		events = audit.NewPostgresStore(db)
		checks["postgres"] = db.PingContext
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}

	ledgerOpts := []grant.Option{grant.WithTTL(cfg.GrantTTL)}
	if redisClient != nil {
		defer redisClient.Close()
		ledgerOpts = append(ledgerOpts, grant.WithRevokedCache(grantstore.NewRedisRevokedCache(redisClient.Client)))
		checks["redis"] = redisClient.Health
	}
	ledger := grant.NewLedger(grants, log, ledgerOpts...)

	inbox := make(chan audit.Event, cfg.AuditBufferSize)
	trail := audit.NewChannelRecorder(inbox, log)
	worker := audit.NewWorker(events, inbox, log)

	engine := memory.NewService(memories, matrix, ledger, trail, log,
		memory.WithMetrics(memorymetrics.New()))

	handler := transport.New(engine, log, platformmetrics.New())
	router := transport.NewRouter(handler, checks)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		log.Info("starting memscope", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func loadMatrix(cfg config.Server, log *slog.Logger) (policy.Matrix, error) {
	if cfg.PolicyFile == "" {
		return policy.Default(), nil
	}
	matrix, err := policy.LoadFile(cfg.PolicyFile)
	if err != nil {
		return policy.Matrix{}, err
	}
	log.Info("loaded policy matrix", "path", cfg.PolicyFile)
	return matrix, nil
}
