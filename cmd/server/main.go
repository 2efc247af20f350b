package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applicationhandler "github.com/LeonVreling/oms-statutory/internal/application/handler"
	applicationmetrics "github.com/LeonVreling/oms-statutory/internal/application/metrics"
	applicationservice "github.com/LeonVreling/oms-statutory/internal/application/service"
	applicationstore "github.com/LeonVreling/oms-statutory/internal/application/store"
	"github.com/LeonVreling/oms-statutory/internal/permission"
	"github.com/LeonVreling/oms-statutory/internal/platform/config"
	"github.com/LeonVreling/oms-statutory/internal/platform/httpserver"
	"github.com/LeonVreling/oms-statutory/internal/platform/logger"
	"github.com/LeonVreling/oms-statutory/internal/platform/middleware"
	platformredis "github.com/LeonVreling/oms-statutory/internal/platform/redis"
	positionhandler "github.com/LeonVreling/oms-statutory/internal/position/handler"
	positionmetrics "github.com/LeonVreling/oms-statutory/internal/position/metrics"
	positionscheduler "github.com/LeonVreling/oms-statutory/internal/position/scheduler"
	positionservice "github.com/LeonVreling/oms-statutory/internal/position/service"
	positionstore "github.com/LeonVreling/oms-statutory/internal/position/store"
	"github.com/LeonVreling/oms-statutory/pkg/clock"
	"github.com/LeonVreling/oms-statutory/pkg/domain"
)

// main wires dependencies and keeps the server lifecycle small. Stores are
// selected by configuration: Postgres and Redis when their URLs are set,
// in-memory otherwise. Business logic lives in the internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New()
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var (
		positions positionstore.PositionStore
		events    applicationstore.EventStore
		apps      applicationstore.ApplicationStore
		lists     applicationstore.MembersListStore
		pool      *pgxpool.Pool
	)
	if cfg.DatabaseURL != "" {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		positionPG := positionstore.NewPostgres(pool)
		applicationPG := applicationstore.NewPostgres(pool)
		if err := positionPG.Migrate(ctx); err != nil {
			log.Error("position store migration failed", "error", err)
			os.Exit(1)
		}
		if err := applicationPG.Migrate(ctx); err != nil {
			log.Error("application store migration failed", "error", err)
			os.Exit(1)
		}
		positions, events, apps = positionPG, applicationPG, applicationPG
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		mem := positionstore.NewInMemory()
		appMem := applicationstore.NewInMemory()
		positions, events, apps, lists = mem, appMem, appMem, appMem
	}

	if cfg.RedisURL != "" {
		rdb, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		lists = applicationstore.NewRedisMembersList(rdb.Client)
	} else if lists == nil {
		log.Warn("REDIS_URL not set, using in-memory members lists")
		lists = applicationstore.NewInMemory()
	}

	clk := clock.System()
	gateway := permission.NewClient(cfg.CoreURL, cfg.CoreTimeout, log)

	// The scheduler fires into the service and the service arms the
	// scheduler, so the callback closes over the service variable filled
	// in right after construction.
	var positionSvc *positionservice.Service
	sched := positionscheduler.New(clk, func(ctx context.Context, id domain.PositionID, kind positionscheduler.Kind) {
		positionSvc.HandleDeadline(ctx, id, kind)
	}, log)
	positionSvc = positionservice.New(positions, sched,
		positionservice.WithClock(clk),
		positionservice.WithLogger(log),
		positionservice.WithMetrics(positionmetrics.New(reg)),
	)
	if err := positionSvc.RearmAll(ctx); err != nil {
		log.Error("failed to re-arm position deadlines", "error", err)
		os.Exit(1)
	}

	applicationSvc := applicationservice.New(events, apps, lists, gateway,
		applicationservice.WithLogger(log),
		applicationservice.WithMetrics(applicationmetrics.New(reg)),
	)

	verifier := middleware.NewJWTVerifier(cfg.JWTSigningKey)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestTime)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(verifier, log))
		positionhandler.New(positionSvc, log).Register(r)
		applicationhandler.New(applicationSvc, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)

	go func() {
		log.Info("starting statutory backend", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	sched.Stop()
}
