// Package scenariogen builds planning scenarios from real orbits: satellites
// and interferers are propagated from TLEs with SGP4, and users are laid out
// on a latitude/longitude grid on a spherical Earth.
package scenariogen

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/beam-planner/core"
)

// ErrBadTLE marks a TLE catalog that cannot be parsed or propagated.
var ErrBadTLE = errors.New("bad TLE")

// tleLineLen is the fixed width of a TLE data line, checksum included.
const tleLineLen = 69

// TLE is one two-line element set with an optional name line.
type TLE struct {
	Name  string
	Line1 string
	Line2 string
}

// ParseTLEs reads a catalog in either two-line or three-line (named) form.
// Blank lines are ignored. Each data line is checked for width, checksum and
// numeric fields so that PositionAt never sees a line it cannot propagate.
func ParseTLEs(r io.Reader) ([]TLE, error) {
	var (
		out  []TLE
		name string
		cur  *TLE
	)
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "1 "):
			if cur != nil {
				return nil, fmt.Errorf("%w: line %d: line 1 without preceding line 2", ErrBadTLE, lineNo)
			}
			if err := checkLine1(line); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadTLE, lineNo, err)
			}
			cur = &TLE{Name: name, Line1: line}
			name = ""
		case strings.HasPrefix(line, "2 "):
			if cur == nil {
				return nil, fmt.Errorf("%w: line %d: line 2 without line 1", ErrBadTLE, lineNo)
			}
			if err := checkLine2(line); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadTLE, lineNo, err)
			}
			if line[2:7] != cur.Line1[2:7] {
				return nil, fmt.Errorf("%w: line %d: catalog number %q does not match line 1 (%q)",
					ErrBadTLE, lineNo, line[2:7], cur.Line1[2:7])
			}
			cur.Line2 = line
			if cur.Name == "" {
				cur.Name = strings.TrimSpace(cur.Line1[2:7])
			}
			out = append(out, *cur)
			cur = nil
		default:
			name = strings.TrimSpace(strings.TrimPrefix(line, "0 "))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read TLEs: %w", err)
	}
	if cur != nil {
		return nil, fmt.Errorf("%w: catalog ends after line 1 of %q", ErrBadTLE, cur.Name)
	}
	return out, nil
}

// tleField is a fixed-column numeric field of a TLE data line. Columns are
// zero-based and half-open.
type tleField struct {
	name       string
	start, end int
	parse      func(string) error
}

var (
	line1Fields = []tleField{
		{"catalog number", 2, 7, parseInt},
		{"epoch", 18, 32, parseFloat},
		{"mean motion derivative", 33, 43, parseFloat},
		{"mean motion second derivative", 44, 52, parseExponent},
		{"drag term", 53, 61, parseExponent},
	}
	line2Fields = []tleField{
		{"catalog number", 2, 7, parseInt},
		{"inclination", 8, 16, parseFloat},
		{"right ascension", 17, 25, parseFloat},
		{"eccentricity", 26, 33, parseInt},
		{"argument of perigee", 34, 42, parseFloat},
		{"mean anomaly", 43, 51, parseFloat},
		{"mean motion", 52, 63, parseFloat},
	}
)

func checkLine1(line string) error { return checkLine(line, 1, line1Fields) }
func checkLine2(line string) error { return checkLine(line, 2, line2Fields) }

// checkLine rejects lines go-satellite would choke on: short lines, a bad
// checksum, or a numeric field that does not parse.
func checkLine(line string, n int, fields []tleField) error {
	if len(line) < tleLineLen {
		return fmt.Errorf("line %d has %d columns, want %d", n, len(line), tleLineLen)
	}
	want := line[tleLineLen-1]
	if got := checksum(line); want < '0' || want > '9' || int(want-'0') != got {
		return fmt.Errorf("line %d checksum is %q, computed %d", n, want, got)
	}
	for _, f := range fields {
		v := strings.TrimSpace(line[f.start:f.end])
		if err := f.parse(v); err != nil {
			return fmt.Errorf("line %d %s %q: %v", n, f.name, v, err)
		}
	}
	return nil
}

// checksum is the sum of the digits in the first 68 columns, minus signs
// counting as one, modulo 10.
func checksum(line string) int {
	sum := 0
	for _, c := range line[:tleLineLen-1] {
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}

func parseInt(s string) error {
	_, err := strconv.ParseUint(s, 10, 64)
	return err
}

func parseFloat(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return errors.New("not finite")
	}
	return err
}

// parseExponent accepts the implied-decimal form "[-]ddddd[+-]d", e.g.
// "-11606-4" for -0.11606e-4.
func parseExponent(s string) error {
	if len(s) < 3 {
		return errors.New("too short")
	}
	mant, exp := strings.TrimPrefix(strings.TrimPrefix(s[:len(s)-2], "-"), "+"), s[len(s)-2:]
	if _, err := strconv.ParseUint(mant, 10, 64); err != nil {
		return err
	}
	_, err := strconv.ParseInt(exp, 10, 8)
	return err
}

// PositionAt propagates the TLE to t and returns its ECEF position in
// kilometres.
func PositionAt(tle TLE, t time.Time) (core.Vec3, error) {
	sat := satellite.TLEToSat(tle.Line1, tle.Line2, satellite.GravityWGS72)

	t = t.UTC()
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	posECI, _ := satellite.Propagate(sat, year, int(month), day, hour, minute, sec)
	gmst := satellite.ThetaG_JD(satellite.JDay(year, int(month), day, hour, minute, sec))
	ecef := satellite.ECIToECEF(posECI, gmst)

	r := math.Sqrt(ecef.X*ecef.X + ecef.Y*ecef.Y + ecef.Z*ecef.Z)
	if math.IsNaN(r) || r < core.EarthRadiusKm {
		return core.Vec3{}, fmt.Errorf("%w: %s does not propagate to %s", ErrBadTLE, tle.Name, t.Format(time.RFC3339))
	}
	return core.Vec3{X: float32(ecef.X), Y: float32(ecef.Y), Z: float32(ecef.Z)}, nil
}

// Grid places users every LatStep/LonStep degrees inside the given bounds,
// inclusive.
type Grid struct {
	LatMin, LatMax, LatStep float64
	LonMin, LonMax, LonStep float64
}

// DefaultGrid covers populated latitudes every five degrees.
func DefaultGrid() Grid {
	return Grid{
		LatMin: -60, LatMax: 60, LatStep: 5,
		LonMin: -180, LonMax: 175, LonStep: 5,
	}
}

// Positions returns the grid's ground positions in kilometres, latitude
// major.
func (g Grid) Positions() ([]core.Vec3, error) {
	if g.LatStep <= 0 || g.LonStep <= 0 {
		return nil, fmt.Errorf("grid steps must be positive, got lat %v lon %v", g.LatStep, g.LonStep)
	}
	if g.LatMin > g.LatMax || g.LonMin > g.LonMax || g.LatMin < -90 || g.LatMax > 90 {
		return nil, fmt.Errorf("invalid grid bounds lat [%v, %v] lon [%v, %v]", g.LatMin, g.LatMax, g.LonMin, g.LonMax)
	}
	var out []core.Vec3
	for lat := g.LatMin; lat <= g.LatMax+1e-9; lat += g.LatStep {
		for lon := g.LonMin; lon <= g.LonMax+1e-9; lon += g.LonStep {
			out = append(out, GroundPosition(lat, lon))
		}
	}
	return out, nil
}

// GroundPosition converts geodetic degrees to an ECEF point on a spherical
// Earth, in kilometres.
func GroundPosition(latDeg, lonDeg float64) core.Vec3 {
	lat := latDeg * math.Pi / 180
	lon := lonDeg * math.Pi / 180
	return core.Vec3{
		X: float32(core.EarthRadiusKm * math.Cos(lat) * math.Cos(lon)),
		Y: float32(core.EarthRadiusKm * math.Cos(lat) * math.Sin(lon)),
		Z: float32(core.EarthRadiusKm * math.Sin(lat)),
	}
}

// Config describes a scenario to generate.
type Config struct {
	Satellites  []TLE
	Interferers []TLE
	Epoch       time.Time
	Grid        Grid
}

// Generate propagates every TLE to the epoch and lays out users. Satellites
// are numbered in catalog order.
func Generate(cfg Config) (*core.Scenario, error) {
	scn := &core.Scenario{}

	for i, tle := range cfg.Satellites {
		pos, err := PositionAt(tle, cfg.Epoch)
		if err != nil {
			return nil, err
		}
		scn.Satellites = append(scn.Satellites, core.Satellite{ID: i, Position: pos})
	}
	for _, tle := range cfg.Interferers {
		pos, err := PositionAt(tle, cfg.Epoch)
		if err != nil {
			return nil, err
		}
		scn.Interferers = append(scn.Interferers, pos)
	}

	users, err := cfg.Grid.Positions()
	if err != nil {
		return nil, err
	}
	for i, p := range users {
		scn.Users = append(scn.Users, core.User{ID: i, Position: p})
	}
	return scn, nil
}
