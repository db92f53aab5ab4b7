// Package gcp reads ground control point files.
//
// A control point file has one point per line:
//
//	id x y X Y Z [icp]
//
// where (x, y) are image coordinates and (X, Y, Z) ground coordinates.
// Z may be omitted. A trailing flag of 1, true, icp or check marks the row
// as an independent check point that is held out of the fit.
package gcp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"geofit/pkg/geometry"
)

var (
	ErrNoPoints    = errors.New("gcp: no control points")
	ErrMalformed   = errors.New("gcp: malformed line")
	ErrDuplicateID = errors.New("gcp: duplicate point id")
)

// Point is a single matched observation.
type Point struct {
	ID     string           `json:"id"`
	Image  geometry.Point2D `json:"image"`
	Ground geometry.Point2D `json:"ground"`
	Z      float64          `json:"z"`
	Check  bool             `json:"check"`
}

// Load reads a control point file from disk.
func Load(path string) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open control points: %w", err)
	}
	defer f.Close()

	points, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return points, nil
}

// Parse reads control points from r.
func Parse(r io.Reader) ([]Point, error) {
	var points []Point
	seen := make(map[string]int)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p, err := parseLine(strings.Fields(line))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if prev, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("line %d: %w %q (first on line %d)", lineNo, ErrDuplicateID, p.ID, prev)
		}
		seen[p.ID] = lineNo
		points = append(points, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read control points: %w", err)
	}
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	return points, nil
}

func parseLine(fields []string) (Point, error) {
	if len(fields) < 5 || len(fields) > 7 {
		return Point{}, fmt.Errorf("%w: want 5 to 7 columns, got %d", ErrMalformed, len(fields))
	}

	var vals [4]float64
	for i := range vals {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return Point{}, fmt.Errorf("%w: column %d: %v", ErrMalformed, i+2, err)
		}
		vals[i] = v
	}

	p := Point{
		ID:     fields[0],
		Image:  geometry.NewPoint2D(vals[0], vals[1]),
		Ground: geometry.NewPoint2D(vals[2], vals[3]),
	}

	rest := fields[5:]
	if len(rest) > 0 {
		if z, err := strconv.ParseFloat(rest[0], 64); err == nil {
			p.Z = z
			rest = rest[1:]
		} else if len(rest) == 2 {
			return Point{}, fmt.Errorf("%w: column 6: %v", ErrMalformed, err)
		}
	}
	if len(rest) > 0 {
		check, ok := parseFlag(rest[0])
		if !ok {
			return Point{}, fmt.Errorf("%w: unknown flag %q", ErrMalformed, rest[0])
		}
		p.Check = check
	}
	return p, nil
}

func parseFlag(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "1", "true", "icp", "check":
		return true, true
	case "0", "false", "gcp":
		return false, true
	}
	return false, false
}

// Split separates fitting points (GCPs) from check points (ICPs).
func Split(points []Point) (gcps, icps []Point) {
	for _, p := range points {
		if p.Check {
			icps = append(icps, p)
		} else {
			gcps = append(gcps, p)
		}
	}
	return gcps, icps
}

// ImagePoints returns the image coordinates of points.
func ImagePoints(points []Point) []geometry.Point2D {
	out := make([]geometry.Point2D, len(points))
	for i, p := range points {
		out[i] = p.Image
	}
	return out
}

// GroundPoints returns the ground coordinates of points.
func GroundPoints(points []Point) []geometry.Point2D {
	out := make([]geometry.Point2D, len(points))
	for i, p := range points {
		out[i] = p.Ground
	}
	return out
}

// Observations returns the design-matrix inputs (image x and y) and the
// interleaved ground target [X0, Y0, X1, Y1, ...] for points.
func Observations(points []Point) (x, y, target []float64) {
	x, y = geometry.Coordinates(ImagePoints(points))
	target = geometry.Interleave(GroundPoints(points))
	return x, y, target
}
