package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"geofit/internal/gcp"
	"geofit/pkg/geometry"
)

var ErrInvalidLine = errors.New("app: split line needs two distinct points")

// Line divides the image plane through From and To.
type Line struct {
	From, To geometry.Point2D
}

// ParseLine reads "x1,y1,x2,y2".
func ParseLine(s string) (Line, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 4 {
		return Line{}, fmt.Errorf("%w: %q", ErrInvalidLine, s)
	}
	var v [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Line{}, fmt.Errorf("%w: %q: %v", ErrInvalidLine, s, err)
		}
		v[i] = n
	}
	l := Line{From: geometry.NewPoint2D(v[0], v[1]), To: geometry.NewPoint2D(v[2], v[3])}
	if l.From == l.To {
		return Line{}, fmt.Errorf("%w: %q", ErrInvalidLine, s)
	}
	return l, nil
}

// Side is the cross product of the line direction with p - From. Points with
// a non-negative side belong to part A.
func (l Line) Side(p geometry.Point2D) float64 {
	d := l.To.Sub(l.From)
	r := p.Sub(l.From)
	return r.X*d.Y - r.Y*d.X
}

// Part is the fit of the control points on one side of a split line.
type Part struct {
	Name   string
	Points []gcp.Point
	// Result is nil when the side could not be fitted; Err says why.
	Result *Result
	Err    error
}

// FitPiecewise splits the session's points by line and fits a fresh model
// of the active family to each side. The session's points are restored
// afterwards and the model of the last fitted side stays active.
func (s *Session) FitPiecewise(line Line) ([]Part, error) {
	if line.From == line.To {
		return nil, ErrInvalidLine
	}
	m := s.ctx.Model()
	if m == nil {
		return nil, fmt.Errorf("fit piecewise: %w", errNoModel())
	}
	kind := m.Kind()

	parts := []Part{{Name: "A"}, {Name: "B"}}
	for _, p := range s.Points {
		if line.Side(p.Image) >= 0 {
			parts[0].Points = append(parts[0].Points, p)
		} else {
			parts[1].Points = append(parts[1].Points, p)
		}
	}

	all := s.Points
	defer func() { s.Points = all }()

	fitted := 0
	for i := range parts {
		if err := s.SelectModel(kind); err != nil {
			return nil, err
		}
		s.Points = parts[i].Points
		parts[i].Result, parts[i].Err = s.Fit()
		if parts[i].Err == nil {
			fitted++
		}
	}
	if fitted == 0 {
		return parts, fmt.Errorf("fit piecewise: no side could be fitted: %w", errors.Join(parts[0].Err, parts[1].Err))
	}
	return parts, nil
}
