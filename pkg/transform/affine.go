package transform

// Affine is the six-parameter general affine family:
//
//	x' = a·x + b·y + tx
//	y' = c·x + d·y + ty
//
// It covers rotation, non-uniform scale, shear, reflection and translation.
// At least three non-collinear points are needed for a unique fit.
type Affine struct {
	model
}

// NewAffine returns an unfitted affine model.
func NewAffine() *Affine {
	return &Affine{model: newModel(KindAffine, affineLayout{})}
}
