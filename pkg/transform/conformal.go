package transform

import "math"

// Conformal is the four-parameter similarity family with parameters
// (s·cosθ, s·sinθ, tx, ty):
//
//	x' = s·cosθ·x − s·sinθ·y + tx
//	y' = s·sinθ·x + s·cosθ·y + ty
//
// Two distinct points give an exact fit; more give the least-squares fit.
type Conformal struct {
	model
}

// NewConformal returns an unfitted conformal model.
func NewConformal() *Conformal {
	return &Conformal{model: newModel(KindConformal, conformalLayout{})}
}

// Scale returns the fitted uniform scale s, or 0 before Solve.
func (c *Conformal) Scale() float64 {
	if c.params == nil {
		return 0
	}
	return math.Hypot(c.params.AtVec(0), c.params.AtVec(1))
}

// Rotation returns the fitted rotation θ in radians, or 0 before Solve.
func (c *Conformal) Rotation() float64 {
	if c.params == nil {
		return 0
	}
	return math.Atan2(c.params.AtVec(1), c.params.AtVec(0))
}
