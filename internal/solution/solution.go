// Package solution reads and writes beam assignment streams:
//
//	sat <sat_id> beam <beam> user <user_id> color <color>
//
// with 1-based ids. Blank lines and lines starting with '#' are ignored on
// read.
package solution

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/signalsfoundry/beam-planner/core"
	"github.com/signalsfoundry/beam-planner/model"
)

// ErrInvalidSolution marks a solution stream that does not fit its scenario.
var ErrInvalidSolution = errors.New("invalid solution")

// LineError describes the solution line that stopped a read.
type LineError struct {
	Line    int
	Content string
	Reason  string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Content)
}

func (e *LineError) Unwrap() error { return ErrInvalidSolution }

// Write emits one line per assignment, in order. Each header line is written
// first as a '#' comment.
func Write(w io.Writer, assignments []model.Assignment, header ...string) error {
	bw := bufio.NewWriter(w)
	for _, h := range header {
		if _, err := fmt.Fprintf(bw, "# %s\n", h); err != nil {
			return err
		}
	}
	for _, a := range assignments {
		if _, err := fmt.Fprintln(bw, a.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read parses a solution for scn. Every referenced satellite and user must
// exist, beams must lie in [1, cfg.BeamsPerSatellite], colors must be among
// the first cfg.ColorsPerSatellite palette colors, and no satellite may use a
// beam number twice. The returned assignments use zero-based ids.
func Read(r io.Reader, scn *core.Scenario, cfg core.Config) ([]model.Assignment, error) {
	type satBeam struct{ sat, beam int }
	used := make(map[satBeam]struct{})
	var out []model.Assignment

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := sc.Text()
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fail := func(format string, args ...any) error {
			return &LineError{Line: lineNo, Content: raw, Reason: fmt.Sprintf(format, args...)}
		}

		parts := strings.Fields(line)
		if len(parts) != 8 || parts[0] != "sat" || parts[2] != "beam" || parts[4] != "user" || parts[6] != "color" {
			return nil, fail("expected 'sat S beam B user U color C'")
		}

		satID, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fail("invalid sat id %q", parts[1])
		}
		if _, ok := scn.SatelliteIndex(satID - 1); !ok {
			return nil, fail("unknown sat id %d", satID)
		}
		userID, err := strconv.Atoi(parts[5])
		if err != nil || userID < 1 || userID > len(scn.Users) {
			return nil, fail("unknown user id %q", parts[5])
		}
		beam, err := strconv.Atoi(parts[3])
		if err != nil || beam < 1 || beam > cfg.BeamsPerSatellite {
			return nil, fail("beam id %q outside [1, %d]", parts[3], cfg.BeamsPerSatellite)
		}
		color, err := model.ParseColor(parts[7], cfg.ColorsPerSatellite)
		if err != nil {
			return nil, fail("%v", err)
		}

		key := satBeam{satID, beam}
		if _, dup := used[key]; dup {
			return nil, fail("beam %d allocated more than once on sat %d", beam, satID)
		}
		used[key] = struct{}{}

		out = append(out, model.Assignment{
			SatelliteID: satID - 1,
			Beam:        beam,
			UserID:      userID - 1,
			Color:       color,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read solution: %w", err)
	}
	return out, nil
}
