// Package batch plans and validates a directory of scenario files.
package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/signalsfoundry/beam-planner/core"
	"github.com/signalsfoundry/beam-planner/internal/logging"
	"github.com/signalsfoundry/beam-planner/internal/observability"
	"github.com/signalsfoundry/beam-planner/internal/solution"
	"github.com/signalsfoundry/beam-planner/internal/validate"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome for one scenario file. Err is set when the scenario
// could not be loaded or planned; Report is nil in that case.
type Result struct {
	Path    string
	Elapsed time.Duration
	Users   int
	Served  int
	Report  *validate.Report
	Err     error
}

// Passed reports whether the scenario planned cleanly and its solution
// passed every check.
func (r Result) Passed() bool {
	return r.Err == nil && r.Report != nil && r.Report.Passed()
}

// Runner plans scenarios concurrently. Each scenario gets its own planning
// run; a single run is never split across goroutines beyond the planner's own
// visibility workers.
type Runner struct {
	planner  *core.Planner
	log      logging.Logger
	recorder validate.Recorder
	parallel int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithCollector records validation outcomes on c.
func WithCollector(c *observability.PlannerCollector) Option {
	return func(r *Runner) {
		if c != nil {
			r.recorder = c
		}
	}
}

// WithParallelism bounds how many scenarios run at once. n <= 0 means one.
func WithParallelism(n int) Option {
	return func(r *Runner) {
		r.parallel = max(n, 1)
	}
}

// NewRunner returns a Runner that plans with p.
func NewRunner(p *core.Planner, opts ...Option) *Runner {
	r := &Runner{planner: p, log: logging.Noop(), parallel: 1}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Discover lists the *.txt scenario files in dir, sorted by name.
func Discover(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("discover scenarios: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Run processes every path and returns results in the order given. A failing
// scenario does not stop the others; only context cancellation does.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.parallel)
	for i, path := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.runOne(ctx, path)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, path string) (res Result) {
	ctx, span := observability.StartScenarioSpan(ctx, path)
	defer span.End()
	ctx, log := logging.WithRunLogger(ctx, r.log.With(logging.String("scenario", path)))

	res.Path = path
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	scn, err := core.LoadScenarioFile(path)
	if err != nil {
		res.Err = err
		log.Warn(ctx, "scenario load failed", logging.Err(err))
		return res
	}
	res.Users = len(scn.Users)

	plan, err := r.planner.Plan(ctx, scn)
	if err != nil {
		res.Err = err
		log.Warn(ctx, "planning failed", logging.Err(err))
		return res
	}
	res.Served = len(plan.Assignments)

	// Validate the serialized stream, not the in-memory records, so the
	// writer is checked too.
	var buf bytes.Buffer
	if err := solution.Write(&buf, plan.Assignments); err != nil {
		res.Err = fmt.Errorf("write solution: %w", err)
		return res
	}
	cfg := r.planner.Config()
	asg, err := solution.Read(&buf, scn, cfg)
	if err != nil {
		res.Err = err
		log.Error(ctx, "planner emitted an unreadable solution", logging.Err(err))
		return res
	}
	report, err := validate.Validate(scn, asg, cfg)
	if err != nil {
		res.Err = err
		return res
	}
	report.Record(r.recorder)
	res.Report = report

	if !report.Passed() {
		log.Error(ctx, "solution failed validation")
	}
	return res
}

// WriteSummary prints one row per result followed by a pass count.
func WriteSummary(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tUSERS\tSERVED\tCOVERAGE\tTIME\tSTATUS")
	passed := 0
	for _, r := range results {
		status := "ok"
		coverage := "-"
		switch {
		case r.Err != nil:
			status = "error: " + r.Err.Error()
		case !r.Report.Passed():
			status = "invalid: " + firstFailure(r.Report)
		default:
			passed++
		}
		if r.Report != nil {
			coverage = fmt.Sprintf("%.2f%%", r.Report.Coverage()*100)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n",
			filepath.Base(r.Path), r.Users, r.Served, coverage, r.Elapsed.Round(time.Microsecond), status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d/%d scenarios passed\n", passed, len(results))
	return err
}

func firstFailure(r *validate.Report) string {
	for _, c := range r.Checks {
		if !c.Passed {
			return c.Name + ": " + c.Detail
		}
	}
	return ""
}
