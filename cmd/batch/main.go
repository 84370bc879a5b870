package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/beam-planner/core"
	"github.com/signalsfoundry/beam-planner/internal/batch"
	"github.com/signalsfoundry/beam-planner/internal/config"
	"github.com/signalsfoundry/beam-planner/internal/logging"
	"github.com/signalsfoundry/beam-planner/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dir := fs.String("dir", "test_cases", "directory of *.txt scenarios")
	parallel := fs.Int("parallel", 1, "scenarios planned concurrently")
	configPath := fs.String("config", "", "YAML file with planner limits")
	metricsAddr := fs.String("metrics-addr", "", "HTTP address for Prometheus /metrics; empty disables")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log := logging.NewFromEnv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "batch: %v\n", err)
		return 1
	}

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		return 1
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	collector, err := observability.NewPlannerCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		return 1
	}
	if srv := serveMetrics(*metricsAddr, collector, log); srv != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	planner, err := core.NewPlanner(cfg, core.WithLogger(log), core.WithMetricsRecorder(collector))
	if err != nil {
		fmt.Fprintf(stderr, "batch: %v\n", err)
		return 1
	}

	paths, err := batch.Discover(*dir)
	if err != nil {
		fmt.Fprintf(stderr, "batch: %v\n", err)
		return 1
	}
	if len(paths) == 0 {
		fmt.Fprintf(stderr, "batch: no scenarios in %s\n", *dir)
		return 1
	}

	runner := batch.NewRunner(planner,
		batch.WithLogger(log),
		batch.WithCollector(collector),
		batch.WithParallelism(*parallel),
	)
	results, err := runner.Run(ctx, paths)
	if err != nil {
		log.Error(ctx, "batch interrupted", logging.Err(err))
		return 1
	}
	if err := batch.WriteSummary(stdout, results); err != nil {
		log.Error(ctx, "failed to write summary", logging.Err(err))
		return 1
	}
	for _, r := range results {
		if !r.Passed() {
			return 1
		}
	}
	return 0
}

func serveMetrics(addr string, collector *observability.PlannerCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
