// Package evaluate measures how well predicted points match observed ones.
package evaluate

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrEmpty          = errors.New("evaluate: no values")
	ErrLengthMismatch = errors.New("evaluate: length mismatch")
)

// Residual is the error at one point: observed minus predicted.
type Residual struct {
	DX       float64
	DY       float64
	Distance float64
}

// Report summarizes residuals over a point set.
type Report struct {
	Residuals []Residual
	RMSEX     float64
	RMSEY     float64
	RMSE      float64 // over point distances
	Mean      float64 // mean point distance
	Max       float64
	MaxIndex  int
}

// Compare builds a report from interleaved vectors [x0, y0, x1, y1, ...].
func Compare(predicted, observed []float64) (Report, error) {
	if len(predicted) != len(observed) {
		return Report{}, fmt.Errorf("%w: %d predicted vs %d observed", ErrLengthMismatch, len(predicted), len(observed))
	}
	if len(predicted) == 0 {
		return Report{}, ErrEmpty
	}
	if len(predicted)%2 != 0 {
		return Report{}, fmt.Errorf("%w: odd length %d", ErrLengthMismatch, len(predicted))
	}

	diff := make([]float64, len(observed))
	floats.SubTo(diff, observed, predicted)

	n := len(diff) / 2
	dx := make([]float64, n)
	dy := make([]float64, n)
	dist := make([]float64, n)
	residuals := make([]Residual, n)
	for i := 0; i < n; i++ {
		dx[i] = diff[2*i]
		dy[i] = diff[2*i+1]
		dist[i] = math.Hypot(dx[i], dy[i])
		residuals[i] = Residual{DX: dx[i], DY: dy[i], Distance: dist[i]}
	}

	return Report{
		Residuals: residuals,
		RMSEX:     rms(dx),
		RMSEY:     rms(dy),
		RMSE:      rms(dist),
		Mean:      stat.Mean(dist, nil),
		Max:       floats.Max(dist),
		MaxIndex:  floats.MaxIdx(dist),
	}, nil
}

func rms(v []float64) float64 {
	return math.Sqrt(floats.Dot(v, v) / float64(len(v)))
}
