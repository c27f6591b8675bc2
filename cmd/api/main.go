package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/staffhub/internal/cache"
	"github.com/geocoder89/staffhub/internal/config"
	"github.com/geocoder89/staffhub/internal/db"
	"github.com/geocoder89/staffhub/internal/domain/user"
	httpx "github.com/geocoder89/staffhub/internal/http"
	"github.com/geocoder89/staffhub/internal/http/middlewares"
	"github.com/geocoder89/staffhub/internal/notifications"
	"github.com/geocoder89/staffhub/internal/observability"
	"github.com/geocoder89/staffhub/internal/redisclient"
	"github.com/geocoder89/staffhub/internal/registration"
	"github.com/geocoder89/staffhub/internal/repo/memory"
	"github.com/geocoder89/staffhub/internal/repo/postgres"
	"github.com/geocoder89/staffhub/internal/repo/sqlite"
	"github.com/geocoder89/staffhub/internal/security"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// pingable is what readiness needs from a store.
type pingable interface {
	user.Store
	Ping(ctx context.Context) error
}

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if cfg.OTelEnabled {
		ctx, cancel := config.WithTimeout(5 * time.Second)
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: cfg.ServiceName,
			Env:         cfg.Env,
			Endpoint:    cfg.OTelEndpoint,
			SampleRatio: cfg.OTelSampleRatio,
		})
		cancel()

		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdownTracer(ctx)
			}()
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	store, closeStore, err := openStore(cfg, prom)
	if err != nil {
		log.Error("store init failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(log),
		notifications.ProtectedNotifierConfig{},
	)

	svc := registration.New(store, security.NewHasher(cfg.BcryptCost), notifier, log, prom, registration.Config{
		AcquireTimeout: cfg.DBAcquireTimeout,
	})

	var counter middlewares.Counter = middlewares.NewMemoryCounter()
	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		ctx, cancel := config.WithTimeout(2 * time.Second)
		if err := rdb.Ping(ctx); err != nil {
			log.Warn("redis unreachable, rate limit counters will fail open until it returns", "addr", cfg.RedisAddr, "err", err)
		}
		cancel()

		counter = rdb
	}

	ping := func() error {
		ctx, cancel := config.WithTimeout(1 * time.Second)
		defer cancel()

		return store.Ping(ctx)
	}

	serviceName := ""
	if cfg.OTelEnabled {
		serviceName = cfg.ServiceName
	}

	// set up routers with the log
	router := httpx.NewRouter(httpx.RouterDeps{
		Env:            cfg.Env,
		ServiceName:    serviceName,
		Log:            log,
		Registrar:      svc,
		Ping:           ping,
		Prom:           prom,
		Gatherer:       reg,
		TrustedProxies: cfg.TrustedProxies,
		RateCounter:    counter,
		RateLimit:      cfg.RegisterRateLimit,
		RateWindow:     cfg.RegisterRateWindow,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		KnownEmails:    cache.New[string, bool](cfg.CheckEmailCacheTTL),
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

func openStore(cfg config.Config, prom *observability.Prom) (pingable, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		pool, err := db.NewPool(ctx, db.PoolConfig{
			URL:      cfg.DBURL,
			MaxConns: int32(cfg.DBMaxConns),
		})
		if err != nil {
			return nil, nil, err
		}

		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}

		return postgres.NewUsersRepo(pool, prom), pool.Close, nil

	case config.StoreSQLite:
		s, err := sqlite.Open(cfg.SQLitePath, cfg.DBMaxConns)
		if err != nil {
			return nil, nil, err
		}

		return s, func() { _ = s.Close() }, nil

	case config.StoreMemory:
		return memory.NewUsersRepo(cfg.DBMaxConns), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
