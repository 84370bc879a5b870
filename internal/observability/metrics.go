package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/signalsfoundry/beam-planner/core"
)

// Rejection reasons reported on planner_candidate_rejections_total.
const (
	ReasonOutOfCone     = "out_of_cone"
	ReasonInterferer    = "interferer"
	ReasonSatelliteFull = "satellite_full"
	ReasonColorConflict = "color_conflict"
)

// PlannerCollector bundles Prometheus metrics for planning runs and
// solution validation.
type PlannerCollector struct {
	gatherer prometheus.Gatherer

	RunsTotal        *prometheus.CounterVec
	PhaseDurations   *prometheus.HistogramVec
	AssignmentsTotal *prometheus.CounterVec
	RejectionsTotal  *prometheus.CounterVec
	ValidationsTotal *prometheus.CounterVec

	Users          prometheus.Gauge
	UsersServed    prometheus.Gauge
	Coverage       prometheus.Gauge
	SatelliteBeams prometheus.Histogram
}

// NewPlannerCollector registers planner metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewPlannerCollector(reg prometheus.Registerer) (*PlannerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_runs_total",
		Help: "Planning runs, labeled by outcome (ok or error).",
	}, []string{"outcome"}), "planner_runs_total")
	if err != nil {
		return nil, err
	}

	phases, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planner_phase_duration_seconds",
		Help:    "Duration of each planning phase.",
		Buckets: []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	}, []string{"phase"}), "planner_phase_duration_seconds")
	if err != nil {
		return nil, err
	}

	assignments, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_assignments_total",
		Help: "Beams assigned, labeled by color.",
	}, []string{"color"}), "planner_assignments_total")
	if err != nil {
		return nil, err
	}

	rejections, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_candidate_rejections_total",
		Help: "Candidate user/satellite/color combinations rejected, labeled by reason.",
	}, []string{"reason"}), "planner_candidate_rejections_total")
	if err != nil {
		return nil, err
	}

	validations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_validation_checks_total",
		Help: "Solution validation checks, labeled by check and result.",
	}, []string{"check", "result"}), "planner_validation_checks_total")
	if err != nil {
		return nil, err
	}

	users, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planner_users",
		Help: "Users in the most recently planned scenario.",
	}), "planner_users")
	if err != nil {
		return nil, err
	}
	served, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planner_users_served",
		Help: "Users served by the most recent plan.",
	}), "planner_users_served")
	if err != nil {
		return nil, err
	}
	coverage, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planner_coverage_ratio",
		Help: "Fraction of users served by the most recent plan.",
	}), "planner_coverage_ratio")
	if err != nil {
		return nil, err
	}

	satBeams, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_satellite_beams",
		Help:    "Beams committed per satellite at the end of a run.",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 24, 32},
	}), "planner_satellite_beams")
	if err != nil {
		return nil, err
	}

	return &PlannerCollector{
		gatherer:         gatherer,
		RunsTotal:        runs,
		PhaseDurations:   phases,
		AssignmentsTotal: assignments,
		RejectionsTotal:  rejections,
		ValidationsTotal: validations,
		Users:            users,
		UsersServed:      served,
		Coverage:         coverage,
		SatelliteBeams:   satBeams,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *PlannerCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObservePhase records the duration of one planning phase.
func (c *PlannerCollector) ObservePhase(phase string, d time.Duration) {
	if c == nil || c.PhaseDurations == nil {
		return
	}
	c.PhaseDurations.WithLabelValues(phase).Observe(d.Seconds())
}

// RecordRun satisfies core.MetricsRecorder. A nil plan or non-nil err counts
// as a failed run and leaves the per-plan gauges untouched.
func (c *PlannerCollector) RecordRun(p *core.Plan, err error) {
	if c == nil {
		return
	}
	if err != nil || p == nil {
		c.RunsTotal.WithLabelValues("error").Inc()
		return
	}
	c.RunsTotal.WithLabelValues("ok").Inc()

	for _, a := range p.Assignments {
		c.AssignmentsTotal.WithLabelValues(a.Color.String()).Inc()
	}
	c.RejectionsTotal.WithLabelValues(ReasonOutOfCone).Add(float64(p.Visibility.OutOfCone))
	c.RejectionsTotal.WithLabelValues(ReasonInterferer).Add(float64(p.Visibility.Interfered))
	c.RejectionsTotal.WithLabelValues(ReasonSatelliteFull).Add(float64(p.Assign.SatelliteFull))
	c.RejectionsTotal.WithLabelValues(ReasonColorConflict).Add(float64(p.Assign.ColorConflicts))

	c.Users.Set(float64(p.Users))
	c.UsersServed.Set(float64(len(p.Assignments)))
	c.Coverage.Set(p.Coverage())
	for _, n := range p.BeamsBySatellite {
		c.SatelliteBeams.Observe(float64(n))
	}
}

// RecordValidation counts one validation check outcome.
func (c *PlannerCollector) RecordValidation(check string, passed bool) {
	if c == nil || c.ValidationsTotal == nil {
		return
	}
	result := "pass"
	if !passed {
		result = "fail"
	}
	c.ValidationsTotal.WithLabelValues(check, result).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *PlannerCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the current metrics in the Prometheus text format, for
// node_exporter's textfile collector. One-shot runs use this instead of
// serving /metrics.
func (c *PlannerCollector) WriteTextfile(path string) error {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
