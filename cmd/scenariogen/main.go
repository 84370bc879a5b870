package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/signalsfoundry/beam-planner/core"
	"github.com/signalsfoundry/beam-planner/internal/scenariogen"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	grid := scenariogen.DefaultGrid()

	fs := flag.NewFlagSet("scenariogen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	tlePath := fs.String("tle", "", "TLE catalog of serving satellites (required)")
	interfererPath := fs.String("interferers", "", "TLE catalog of interfering satellites")
	epoch := fs.String("epoch", "", "propagation epoch, RFC3339 (default now)")
	out := fs.String("o", "", "output path (default stdout)")
	fs.Float64Var(&grid.LatMin, "lat-min", grid.LatMin, "southernmost user latitude")
	fs.Float64Var(&grid.LatMax, "lat-max", grid.LatMax, "northernmost user latitude")
	fs.Float64Var(&grid.LatStep, "lat-step", grid.LatStep, "user latitude spacing in degrees")
	fs.Float64Var(&grid.LonStep, "lon-step", grid.LonStep, "user longitude spacing in degrees")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *tlePath == "" {
		fmt.Fprintln(stderr, "scenariogen: -tle is required")
		fs.PrintDefaults()
		return 2
	}
	grid.LonMax = 180 - grid.LonStep

	at := time.Now().UTC()
	if *epoch != "" {
		t, err := time.Parse(time.RFC3339, *epoch)
		if err != nil {
			fmt.Fprintf(stderr, "scenariogen: -epoch: %v\n", err)
			return 2
		}
		at = t
	}

	sats, err := readTLEs(*tlePath)
	if err != nil {
		fmt.Fprintf(stderr, "scenariogen: %v\n", err)
		return 1
	}
	var interferers []scenariogen.TLE
	if *interfererPath != "" {
		if interferers, err = readTLEs(*interfererPath); err != nil {
			fmt.Fprintf(stderr, "scenariogen: %v\n", err)
			return 1
		}
	}

	scn, err := scenariogen.Generate(scenariogen.Config{
		Satellites:  sats,
		Interferers: interferers,
		Epoch:       at,
		Grid:        grid,
	})
	if err != nil {
		fmt.Fprintf(stderr, "scenariogen: %v\n", err)
		return 1
	}

	if *out == "" {
		err = writeScenario(stdout, at, scn)
	} else {
		err = writeScenarioFile(*out, at, scn)
	}
	if err != nil {
		fmt.Fprintf(stderr, "scenariogen: %v\n", err)
		return 1
	}
	return 0
}

func writeScenario(w io.Writer, at time.Time, scn *core.Scenario) error {
	if _, err := fmt.Fprintf(w, "# generated at epoch %s\n", at.Format(time.RFC3339)); err != nil {
		return err
	}
	return core.WriteScenario(w, scn)
}

func writeScenarioFile(path string, at time.Time, scn *core.Scenario) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeScenario(f, at, scn); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readTLEs(path string) ([]scenariogen.TLE, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tles, err := scenariogen.ParseTLEs(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tles, nil
}
