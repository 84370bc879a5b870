package core

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Entity kinds accepted in a scenario file.
const (
	KindUser       = "user"
	KindSatellite  = "sat"
	KindInterferer = "interferer"
)

// LoadScenarioFile opens path and loads it with LoadScenario. A missing file
// is reported with an error matching os.ErrNotExist.
func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	return LoadScenario(f)
}

// LoadScenario reads a line-oriented scenario:
//
//	<kind> <id> <x> <y> <z>
//
// Blank lines and lines starting with '#' are skipped. The first bad line
// stops the load with a *ParseError and no scenario is returned.
//
// Users and interferers are numbered by the order they appear; their id
// field is not interpreted. Satellite ids are 1-based and must be unique.
func LoadScenario(r io.Reader) (*Scenario, error) {
	scn := &Scenario{}
	seenSats := make(map[int]struct{})

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := sc.Text()
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) != 5 {
			return nil, &ParseError{Line: lineNo, Content: raw, Reason: fmt.Sprintf("expected 5 fields, got %d", len(parts))}
		}
		pos, err := parsePosition(parts[2:])
		if err != nil {
			return nil, &ParseError{Line: lineNo, Content: raw, Reason: err.Error()}
		}

		switch parts[0] {
		case KindUser:
			scn.Users = append(scn.Users, User{ID: len(scn.Users), Position: pos})
		case KindSatellite:
			id, err := strconv.Atoi(parts[1])
			if err != nil || id < 1 {
				return nil, &ParseError{Line: lineNo, Content: raw, Reason: fmt.Sprintf("invalid satellite id %q", parts[1])}
			}
			if _, dup := seenSats[id]; dup {
				return nil, &ParseError{Line: lineNo, Content: raw, Reason: fmt.Sprintf("duplicate satellite id %d", id)}
			}
			seenSats[id] = struct{}{}
			scn.Satellites = append(scn.Satellites, Satellite{ID: id - 1, Position: pos})
		case KindInterferer:
			scn.Interferers = append(scn.Interferers, pos)
		default:
			return nil, &ParseError{Line: lineNo, Content: raw, Reason: fmt.Sprintf("unknown kind %q", parts[0]), Err: ErrUnknownKind}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return scn, nil
}

func parsePosition(fields []string) (Vec3, error) {
	var xyz [3]float32
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return Vec3{}, fmt.Errorf("invalid coordinate %q", f)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Vec3{}, fmt.Errorf("non-finite coordinate %q", f)
		}
		xyz[i] = float32(v)
	}
	return Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// WriteScenario serializes scn in the format LoadScenario reads. Users and
// interferers are numbered from 1 in order.
func WriteScenario(w io.Writer, scn *Scenario) error {
	bw := bufio.NewWriter(w)
	for _, s := range scn.Satellites {
		writeEntity(bw, KindSatellite, s.ID+1, s.Position)
	}
	for i, u := range scn.Users {
		writeEntity(bw, KindUser, i+1, u.Position)
	}
	for i, p := range scn.Interferers {
		writeEntity(bw, KindInterferer, i+1, p)
	}
	return bw.Flush()
}

func writeEntity(w *bufio.Writer, kind string, id int, p Vec3) {
	fmt.Fprintf(w, "%s %d %s %s %s\n", kind, id, formatCoord(p.X), formatCoord(p.Y), formatCoord(p.Z))
}

func formatCoord(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}
