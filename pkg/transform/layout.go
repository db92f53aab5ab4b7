package transform

import (
	"math"

	"geofit/pkg/geometry"

	"gonum.org/v1/gonum/stat"
)

// layout describes how one transform family lays out the two design-matrix
// rows contributed by each observation.
type layout interface {
	cols() int
	// normalize returns the map applied to input points before fill.
	normalize(x, y []float64) geometry.AffineTransform
	// fill writes the row pair for point (x, y). Both rows arrive zeroed.
	fill(xRow, yRow []float64, x, y float64)
	// affine converts a parameter vector to a 2x3 matrix in normalized input
	// coordinates, if the family is affine-representable.
	affine(p []float64) (geometry.AffineTransform, bool)
}

// affineLayout: x' = a·x + b·y + tx, y' = c·x + d·y + ty.
type affineLayout struct{}

func (affineLayout) cols() int { return 6 }

func (affineLayout) normalize(_, _ []float64) geometry.AffineTransform {
	return geometry.Identity()
}

func (affineLayout) fill(xRow, yRow []float64, x, y float64) {
	xRow[0] = x
	xRow[1] = y
	xRow[4] = 1

	yRow[2] = x
	yRow[3] = y
	yRow[5] = 1
}

func (affineLayout) affine(p []float64) (geometry.AffineTransform, bool) {
	return geometry.AffineTransform{
		A: p[0], B: p[1], TX: p[4],
		C: p[2], D: p[3], TY: p[5],
	}, true
}

// conformalLayout: parameters are (s·cosθ, s·sinθ, tx, ty).
type conformalLayout struct{}

func (conformalLayout) cols() int { return 4 }

func (conformalLayout) normalize(_, _ []float64) geometry.AffineTransform {
	return geometry.Identity()
}

func (conformalLayout) fill(xRow, yRow []float64, x, y float64) {
	xRow[0] = x
	xRow[1] = -y
	xRow[2] = 1

	yRow[0] = y
	yRow[1] = x
	yRow[3] = 1
}

func (conformalLayout) affine(p []float64) (geometry.AffineTransform, bool) {
	return geometry.AffineTransform{
		A: p[0], B: -p[1], TX: p[2],
		C: p[1], D: p[0], TY: p[3],
	}, true
}

// polynomialLayout uses the terms u^i·v^j with i+j <= degree, ordered by i
// then j. The x' terms fill the first half of the columns, the y' terms the second.
// (u, v) are the inputs centred on their centroid and divided by their
// standard deviation per axis, so higher powers of pixel-scale coordinates
// stay within a few units of each other.
type polynomialLayout struct {
	degree int
}

func (l polynomialLayout) terms() int {
	return (l.degree + 1) * (l.degree + 2) / 2
}

func (l polynomialLayout) cols() int { return 2 * l.terms() }

func (polynomialLayout) normalize(x, y []float64) geometry.AffineTransform {
	points := make([]geometry.Point2D, len(x))
	for i := range x {
		points[i] = geometry.NewPoint2D(x[i], y[i])
	}
	c := geometry.Centroid(points)
	sx, sy := spread(x), spread(y)
	return geometry.AffineTransform{
		A: 1 / sx, TX: -c.X / sx,
		D: 1 / sy, TY: -c.Y / sy,
	}
}

// spread is the population standard deviation, or 1 when the values are constant.
func spread(values []float64) float64 {
	s := stat.PopStdDev(values, nil)
	if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return 1
	}
	return s
}

func (l polynomialLayout) fill(xRow, yRow []float64, x, y float64) {
	t := l.terms()
	idx := 0
	for i := 0; i <= l.degree; i++ {
		for j := 0; j <= l.degree-i; j++ {
			v := math.Pow(x, float64(i)) * math.Pow(y, float64(j))
			xRow[idx] = v
			yRow[t+idx] = v
			idx++
		}
	}
}

func (l polynomialLayout) affine(p []float64) (geometry.AffineTransform, bool) {
	if l.degree != 1 {
		return geometry.AffineTransform{}, false
	}
	// Term order for degree 1 is [1, y, x].
	return geometry.AffineTransform{
		A: p[2], B: p[1], TX: p[0],
		C: p[5], D: p[4], TY: p[3],
	}, true
}
