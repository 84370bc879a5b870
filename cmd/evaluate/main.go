package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/signalsfoundry/beam-planner/core"
	"github.com/signalsfoundry/beam-planner/internal/config"
	"github.com/signalsfoundry/beam-planner/internal/solution"
	"github.com/signalsfoundry/beam-planner/internal/validate"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML file with planner limits")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: evaluate [flags] <scenario> [solution]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "evaluate: %v\n", err)
		return 1
	}
	scn, err := core.LoadScenarioFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "evaluate: %v\n", err)
		return 1
	}

	in := stdin
	if fs.NArg() == 2 {
		f, err := os.Open(fs.Arg(1))
		if err != nil {
			fmt.Fprintf(stderr, "evaluate: %v\n", err)
			return 1
		}
		defer f.Close()
		in = f
	}

	asg, err := solution.Read(in, scn, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "evaluate: solution: %v\n", err)
		return 1
	}
	report, err := validate.Validate(scn, asg, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "evaluate: %v\n", err)
		return 1
	}

	for _, c := range report.Checks {
		status := "ok"
		if !c.Passed {
			status = "FAIL: " + c.Detail
		}
		fmt.Fprintf(stdout, "%-18s %s\n", c.Name, status)
	}
	fmt.Fprintf(stdout, "%.2f%% of %d users covered\n", report.Coverage()*100, report.Users)
	if !report.Passed() {
		return 1
	}
	return 0
}
