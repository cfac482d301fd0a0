package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"simplelog/internal/config"
	"simplelog/internal/ingest"
	"simplelog/internal/logger"
	"simplelog/internal/metrics"
	"simplelog/internal/query"
	"simplelog/internal/server"
	"simplelog/internal/store"
	"simplelog/internal/store/dynamo"
	"simplelog/internal/store/memstore"

	zlog "github.com/rs/zerolog/log"
)

func main() {

	// On Fargate the task gets a vCPU fraction, not whole cores; left to
	// its own devices the runtime assumes every core on the host. Pin
	// GOMAXPROCS to 1 unless the task definition overrides it.
	if v := os.Getenv("GOMAXPROCS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			runtime.GOMAXPROCS(n)
		}
	} else {
		runtime.GOMAXPROCS(1)
	}

	cfg := config.Load()
	logger.Init(cfg)

	counters := metrics.NewCounters()

	var st store.LogStore
	switch cfg.StoreDriver {
	case "memory":
		st = memstore.New()
		zlog.Warn().Msg("using in-memory store, entries are lost on restart")
	default:
		st = dynamo.New(cfg)
	}

	var sink metrics.Sink = metrics.Noop{}
	if cfg.MetricsEnabled && cfg.StoreDriver != "memory" {
		sink = metrics.NewCloudWatchSink(cfg)
	}

	h := server.NewHandler(
		cfg,
		counters,
		sink,
		ingest.NewValidator(cfg),
		query.NewPlanner(cfg, st),
		st,
	)

	mux := http.NewServeMux()
	mux.Handle("/logs", server.Gzip(http.HandlerFunc(h.HandleLogs)))
	mux.HandleFunc("/metrics", h.HandleMetrics)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		// plain string is enough for the ALB target group check
		w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  8 * time.Second,
		WriteTimeout: 8 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ECS sends SIGTERM, waits out the grace period, then SIGKILLs.
	// Stop accepting requests first so in-flight store calls can finish.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

		sig := <-sigCh
		zlog.Info().Str("signal", sig.String()).Msg("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			zlog.Error().Err(err).Msg("http shutdown")
		}
	}()

	zlog.Info().
		Str("addr", cfg.HTTPAddr).
		Str("store", cfg.StoreDriver).
		Msg("log service listening")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zlog.Fatal().Err(err).Msg("http server terminated")
	}
	zlog.Info().Msg("shutdown complete")
}
