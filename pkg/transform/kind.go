package transform

import (
	"fmt"
	"strings"
)

// Kind identifies a transform family.
type Kind int

const (
	KindUnknown Kind = iota
	KindAffine
	KindConformal
	KindPolynomial
)

func (k Kind) String() string {
	switch k {
	case KindAffine:
		return "affine"
	case KindConformal:
		return "conformal"
	case KindPolynomial:
		return "polynomial"
	default:
		return "unknown"
	}
}

// ParseKind parses a family name. "similarity" is accepted for conformal
// and "poly" for polynomial.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "affine":
		return KindAffine, nil
	case "conformal", "similarity":
		return KindConformal, nil
	case "polynomial", "poly":
		return KindPolynomial, nil
	}
	return KindUnknown, fmt.Errorf("%w: unknown model %q", ErrOperationNotSupported, s)
}

// Kinds lists the supported families.
func Kinds() []Kind {
	return []Kind{KindAffine, KindConformal, KindPolynomial}
}

type options struct {
	degree int
}

// Option configures New.
type Option func(*options)

// WithDegree sets the polynomial degree. Ignored by other families.
func WithDegree(d int) Option {
	return func(o *options) {
		o.degree = d
	}
}

// New returns an unfitted model of the given family.
func New(kind Kind, opts ...Option) (Model, error) {
	o := options{degree: 2}
	for _, opt := range opts {
		opt(&o)
	}

	switch kind {
	case KindAffine:
		return NewAffine(), nil
	case KindConformal:
		return NewConformal(), nil
	case KindPolynomial:
		return NewPolynomial(o.degree)
	}
	return nil, fmt.Errorf("%w: %s", ErrOperationNotSupported, kind)
}
