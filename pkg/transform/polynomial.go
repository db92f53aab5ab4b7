package transform

import (
	"fmt"

	"geofit/pkg/geometry"
)

const (
	MinPolynomialDegree = 1
	MaxPolynomialDegree = 3
)

// Polynomial maps each output coordinate through an independent bivariate
// polynomial of the given degree. Degree 1 spans the same family as Affine
// with a different column order.
//
// ConstructA normalizes the inputs per axis before building the terms, so the
// parameters are coefficients over normalized coordinates. Predict and
// Transform apply the same normalization.
type Polynomial struct {
	model
	degree int
}

// NewPolynomial returns an unfitted polynomial model.
func NewPolynomial(degree int) (*Polynomial, error) {
	if degree < MinPolynomialDegree || degree > MaxPolynomialDegree {
		return nil, fmt.Errorf("%w: polynomial degree %d outside [%d, %d]",
			ErrInvalidInput, degree, MinPolynomialDegree, MaxPolynomialDegree)
	}
	return &Polynomial{
		model:  newModel(KindPolynomial, polynomialLayout{degree: degree}),
		degree: degree,
	}, nil
}

// Degree returns the polynomial degree.
func (p *Polynomial) Degree() int {
	return p.degree
}

// MinPoints returns the number of points needed for a determined fit.
func (p *Polynomial) MinPoints() int {
	return polynomialLayout{degree: p.degree}.terms()
}

// Normalization returns the input map computed by the last successful
// ConstructA, or the identity before it.
func (p *Polynomial) Normalization() geometry.AffineTransform {
	return p.norm
}
