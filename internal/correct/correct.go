// Package correct spreads the residuals left at control points by a global
// fit to other image points, so that predictions there can be refined.
package correct

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"geofit/pkg/geometry"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrTooFewPoints   = errors.New("correct: too few control points")
	ErrLengthMismatch = errors.New("correct: points and residuals differ in length")
	ErrSingular       = errors.New("correct: interpolation system is singular")
	ErrUnknownMethod  = errors.New("correct: unknown method")
	ErrInvalidNorm    = errors.New("correct: norm must be 1, 2 or inf")
)

// Method selects the residual interpolation.
type Method int

const (
	None Method = iota
	// Multiquadric solves for radial weights so the field passes through
	// every control residual.
	Multiquadric
	// LDW averages the residuals of up to four neighbours, one per
	// quadrant when possible, weighted by inverse distance.
	LDW
)

func (m Method) String() string {
	switch m {
	case None:
		return "none"
	case Multiquadric:
		return "multiquadric"
	case LDW:
		return "ldw"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod accepts none, multiquadric (or mq) and ldw.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return None, nil
	case "multiquadric", "mq":
		return Multiquadric, nil
	case "ldw":
		return LDW, nil
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// ParseNorm accepts 1, 2 or inf. An empty string selects 1.
func ParseNorm(s string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "1":
		return 1, nil
	case "2":
		return 2, nil
	case "inf":
		return math.Inf(1), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidNorm, s)
}

// Interpolator estimates the residual at an image point.
type Interpolator interface {
	At(p geometry.Point2D) geometry.Point2D
}

// New builds the interpolator for method from the residuals observed at
// control points. norm is the distance order used by LDW (1, 2 or +Inf);
// Multiquadric always uses Euclidean distance.
func New(method Method, at, residuals []geometry.Point2D, norm float64) (Interpolator, error) {
	if len(at) != len(residuals) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(at), len(residuals))
	}
	switch method {
	case Multiquadric:
		return newMultiquadric(at, residuals)
	case LDW:
		return newLDW(at, residuals, norm)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
}

// Apply adds the interpolated residual at each point to its prediction.
func Apply(ip Interpolator, points, predicted []geometry.Point2D) []geometry.Point2D {
	out := make([]geometry.Point2D, len(predicted))
	for i, p := range predicted {
		d := ip.At(points[i])
		out[i] = geometry.Point2D{X: p.X + d.X, Y: p.Y + d.Y}
	}
	return out
}

type multiquadric struct {
	centers []geometry.Point2D
	// weights has one row per centre; columns hold the X and Y weights.
	weights *mat.Dense
}

func newMultiquadric(at, residuals []geometry.Point2D) (*multiquadric, error) {
	n := len(at)
	if n < 2 {
		return nil, fmt.Errorf("%w: multiquadric needs 2, have %d", ErrTooFewPoints, n)
	}

	d := mat.NewDense(n, n, nil)
	b := mat.NewDense(n, 2, nil)
	for i := range at {
		for j := range at {
			d.Set(i, j, at[i].Distance(at[j]))
		}
		b.Set(i, 0, residuals[i].X)
		b.Set(i, 1, residuals[i].Y)
	}

	var w mat.Dense
	if err := w.Solve(d, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return &multiquadric{centers: append([]geometry.Point2D(nil), at...), weights: &w}, nil
}

func (m *multiquadric) At(p geometry.Point2D) geometry.Point2D {
	var out geometry.Point2D
	for i, c := range m.centers {
		r := p.Distance(c)
		out.X += r * m.weights.At(i, 0)
		out.Y += r * m.weights.At(i, 1)
	}
	return out
}

// ldwEpsilon keeps the weight finite at a control point.
const ldwEpsilon = 1e-10

type ldw struct {
	at, residuals []geometry.Point2D
	norm          float64
}

func newLDW(at, residuals []geometry.Point2D, norm float64) (*ldw, error) {
	if len(at) == 0 {
		return nil, fmt.Errorf("%w: ldw needs 1, have 0", ErrTooFewPoints)
	}
	if norm != 1 && norm != 2 && !math.IsInf(norm, 1) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidNorm, norm)
	}
	return &ldw{
		at:        append([]geometry.Point2D(nil), at...),
		residuals: append([]geometry.Point2D(nil), residuals...),
		norm:      norm,
	}, nil
}

func (l *ldw) distance(a, b geometry.Point2D) float64 {
	return floats.Distance([]float64{a.X, a.Y}, []float64{b.X, b.Y}, l.norm)
}

// neighbours returns the nearest control point in each quadrant around p.
// With fewer than four quadrants occupied it falls back to the four nearest.
func (l *ldw) neighbours(p geometry.Point2D, dist []float64) []int {
	best := [4]int{-1, -1, -1, -1}
	for i, c := range l.at {
		q := quadrant(c, p)
		if best[q] < 0 || dist[i] < dist[best[q]] {
			best[q] = i
		}
	}

	selected := make([]int, 0, 4)
	for _, i := range best {
		if i >= 0 {
			selected = append(selected, i)
		}
	}
	if len(selected) == 4 {
		return selected
	}

	order := make([]int, len(l.at))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return dist[order[i]] < dist[order[j]] })
	return order[:min(4, len(order))]
}

func quadrant(c, p geometry.Point2D) int {
	switch {
	case c.X >= p.X && c.Y >= p.Y:
		return 0
	case c.X < p.X && c.Y >= p.Y:
		return 1
	case c.X < p.X:
		return 2
	default:
		return 3
	}
}

func (l *ldw) At(p geometry.Point2D) geometry.Point2D {
	dist := make([]float64, len(l.at))
	for i, c := range l.at {
		dist[i] = l.distance(c, p)
	}

	var out geometry.Point2D
	var sum float64
	for _, i := range l.neighbours(p, dist) {
		w := 1 / (dist[i] + ldwEpsilon)
		out.X += w * l.residuals[i].X
		out.Y += w * l.residuals[i].Y
		sum += w
	}
	out.X /= sum
	out.Y /= sum
	return out
}
