package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRunEmitsSolution(t *testing.T) {
	path := writeFile(t, "scenario.txt", "sat 1 0 0 7000\nuser 1 0 0 6371\nuser 2 54.8 0 6373.4\n")
	metrics := filepath.Join(t.TempDir(), "planner.prom")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-header", "-workers", "2", "-metrics-file", metrics, path}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr.String())
	}

	want := "# 2/2 users served (100.00%)\n" +
		"sat 1 beam 1 user 1 color A\n" +
		"sat 1 beam 2 user 2 color B\n"
	if stdout.String() != want {
		t.Fatalf("stdout:\n%s\nwant:\n%s", stdout.String(), want)
	}

	prom, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("read metrics textfile: %v", err)
	}
	if !strings.Contains(string(prom), `planner_runs_total{outcome="ok"} 1`) {
		t.Fatalf("metrics textfile missing run counter:\n%s", prom)
	}
}

func TestRunFailures(t *testing.T) {
	malformed := writeFile(t, "bad.txt", "sat 1 0 0 7000\nuser 1 0 zero 6371\n")
	missing := filepath.Join(t.TempDir(), "missing.txt")

	tests := []struct {
		name   string
		args   []string
		code   int
		stderr string
	}{
		{name: "missing file", args: []string{missing}, code: 1, stderr: "does not exist"},
		{name: "malformed line", args: []string{malformed}, code: 1, stderr: "user 1 0 zero 6371"},
		{name: "no scenario", args: nil, code: 2, stderr: "usage"},
		{name: "bad config", args: []string{"-config", missing, malformed}, code: 1, stderr: "open config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)
			if code != tt.code {
				t.Fatalf("exit code %d, want %d", code, tt.code)
			}
			if stdout.Len() != 0 {
				t.Fatalf("stdout should be empty on failure, got:\n%s", stdout.String())
			}
			if !strings.Contains(stderr.String(), tt.stderr) {
				t.Fatalf("stderr %q does not mention %q", stderr.String(), tt.stderr)
			}
		})
	}
}
