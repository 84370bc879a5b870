package core

import (
	"context"
	"fmt"
	"time"

	"github.com/signalsfoundry/beam-planner/internal/logging"
	"github.com/signalsfoundry/beam-planner/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/signalsfoundry/beam-planner/core"

// Planning phases, used as span names and metric labels.
const (
	PhaseVisibility = "visibility"
	PhaseSort       = "sort"
	PhaseAssign     = "assign"
)

// MetricsRecorder receives per-run planner measurements. The observability
// package's PlannerCollector satisfies it.
type MetricsRecorder interface {
	ObservePhase(phase string, d time.Duration)
	RecordRun(p *Plan, err error)
}

// Plan is the result of one planning run.
type Plan struct {
	Assignments []model.Assignment
	Users       int
	Satellites  int
	Interferers int

	Visibility VisibilityStats
	Assign     AssignStats

	// BeamsBySatellite holds the final beam count per satellite, in parse
	// order.
	BeamsBySatellite []int
}

// Coverage is the fraction of users served, or 0 for an empty scenario.
func (p *Plan) Coverage() float64 {
	if p == nil || p.Users == 0 {
		return 0
	}
	return float64(len(p.Assignments)) / float64(p.Users)
}

// Planner resolves visibility, orders users, then assigns beams.
type Planner struct {
	cfg     Config
	log     logging.Logger
	metrics MetricsRecorder
}

// PlannerOption configures optional Planner collaborators.
type PlannerOption func(*Planner)

// WithLogger attaches a logger. The default drops all logs.
func WithLogger(l logging.Logger) PlannerOption {
	return func(p *Planner) {
		if l != nil {
			p.log = l
		}
	}
}

// WithMetricsRecorder attaches an optional metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) PlannerOption {
	return func(p *Planner) {
		p.metrics = m
	}
}

// NewPlanner validates cfg and returns a Planner. cfg is used as given; start
// from DefaultConfig to get the standard limits.
func NewPlanner(cfg Config, opts ...PlannerOption) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Planner{cfg: cfg, log: logging.Noop()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the limits the planner runs with.
func (p *Planner) Config() Config { return p.cfg }

// Plan allocates beams for scn. Assignments are returned only when the whole
// run succeeds; on error the plan is nil.
func (p *Planner) Plan(ctx context.Context, scn *Scenario) (plan *Plan, err error) {
	if scn == nil {
		return nil, fmt.Errorf("plan: nil scenario")
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "Planner/Plan", trace.WithAttributes(
		attribute.Int("scenario.users", len(scn.Users)),
		attribute.Int("scenario.satellites", len(scn.Satellites)),
		attribute.Int("scenario.interferers", len(scn.Interferers)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("plan.assignments", len(plan.Assignments)))
		}
		span.End()
		if p.metrics != nil {
			p.metrics.RecordRun(plan, err)
		}
	}()

	log := p.log
	if l := logging.LoggerFromContext(ctx); l != nil {
		log = l
	}

	var (
		entries []VisibilityEntry
		vstats  VisibilityStats
	)
	err = p.phase(ctx, PhaseVisibility, func(ctx context.Context) error {
		var err error
		entries, vstats, err = ResolveVisibility(ctx, scn, p.cfg)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("resolve visibility: %w", err)
	}
	log.Debug(ctx, "visibility resolved",
		logging.Int("candidates", vstats.Candidates),
		logging.Int("out_of_cone", vstats.OutOfCone),
		logging.Int("interfered", vstats.Interfered),
	)

	err = p.phase(ctx, PhaseSort, func(context.Context) error {
		SortByCoverage(entries)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("order users: %w", err)
	}

	state := NewBeamState(scn, p.cfg)
	var (
		records []model.Assignment
		astats  AssignStats
	)
	err = p.phase(ctx, PhaseAssign, func(context.Context) error {
		var err error
		records, astats, err = Assign(scn, entries, state, p.cfg)
		return err
	})
	if err != nil {
		log.Error(ctx, "beam assignment aborted", logging.Err(err))
		return nil, fmt.Errorf("assign beams: %w", err)
	}

	plan = &Plan{
		Assignments:      records,
		Users:            len(scn.Users),
		Satellites:       len(scn.Satellites),
		Interferers:      len(scn.Interferers),
		Visibility:       vstats,
		Assign:           astats,
		BeamsBySatellite: make([]int, state.Len()),
	}
	for i := range plan.BeamsBySatellite {
		plan.BeamsBySatellite[i] = state.At(i).Count()
	}

	log.Info(ctx, "beam plan complete",
		logging.Int("users", plan.Users),
		logging.Int("served", astats.Served),
		logging.Int("unserved", astats.Unserved),
		logging.Any("coverage", plan.Coverage()),
	)
	return plan, nil
}

func (p *Planner) phase(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Planner/"+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	if p.metrics != nil {
		p.metrics.ObservePhase(name, time.Since(start))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
