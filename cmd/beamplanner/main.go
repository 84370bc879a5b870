package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/signalsfoundry/beam-planner/core"
	"github.com/signalsfoundry/beam-planner/internal/config"
	"github.com/signalsfoundry/beam-planner/internal/logging"
	"github.com/signalsfoundry/beam-planner/internal/observability"
	"github.com/signalsfoundry/beam-planner/internal/solution"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("beamplanner", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML file with planner limits")
	workers := fs.Int("workers", 0, "visibility workers (0 keeps the configured value)")
	header := fs.Bool("header", false, "prefix the solution with a summary comment")
	metricsFile := fs.String("metrics-file", "", "write Prometheus metrics for this run to a textfile")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: beamplanner [flags] <scenario>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	path := fs.Arg(0)

	log := logging.NewFromEnv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "beamplanner: %v\n", err)
		return 1
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		return 1
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	opts := []core.PlannerOption{core.WithLogger(log)}
	var collector *observability.PlannerCollector
	if *metricsFile != "" {
		if collector, err = observability.NewPlannerCollector(prometheus.NewRegistry()); err != nil {
			log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
			return 1
		}
		opts = append(opts, core.WithMetricsRecorder(collector))
	}
	planner, err := core.NewPlanner(cfg, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "beamplanner: %v\n", err)
		return 1
	}

	ctx, span := observability.StartScenarioSpan(ctx, path)
	defer span.End()
	ctx, log = logging.WithRunLogger(ctx, log)

	scn, err := core.LoadScenarioFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintf(stderr, "beamplanner: scenario file %s does not exist\n", path)
		return 1
	case err != nil:
		fmt.Fprintf(stderr, "beamplanner: %v\n", err)
		return 1
	}

	plan, err := planner.Plan(ctx, scn)
	if collector != nil {
		if werr := collector.WriteTextfile(*metricsFile); werr != nil {
			log.Warn(ctx, "failed to write metrics textfile", logging.String("path", *metricsFile), logging.Err(werr))
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "beamplanner: %v\n", err)
		return 1
	}

	var lines []string
	if *header {
		lines = append(lines, fmt.Sprintf("%d/%d users served (%.2f%%)",
			len(plan.Assignments), plan.Users, plan.Coverage()*100))
	}
	if err := solution.Write(stdout, plan.Assignments, lines...); err != nil {
		log.Error(ctx, "failed to write solution", logging.Err(err))
		return 1
	}
	return 0
}
