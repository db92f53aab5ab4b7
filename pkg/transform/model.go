package transform

import (
	"math"

	"geofit/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// Model is a parametric 2D transform fitted by linear least squares.
//
// The three stages run in order: ConstructA builds the design matrix from
// observed input coordinates, Solve fits the parameters against the observed
// outputs, and Inference applies the parameters to a design matrix of new
// points. Targets and results are interleaved as [x'0, y'0, x'1, y'1, ...].
type Model interface {
	Kind() Kind
	// ParamCount is the number of design-matrix columns and fitted parameters.
	ParamCount() int

	ConstructA(x, y []float64) Status
	Solve(a mat.Matrix, y []float64) Status
	Inference(a mat.Matrix) Status

	// DesignMatrix returns a copy of the design matrix from the last
	// successful ConstructA, or nil.
	DesignMatrix() mat.Matrix
	// Parameters returns a copy of the fitted parameters, or nil before Solve.
	Parameters() []float64
	// Results returns a copy of the last inference output, or nil.
	Results() []float64

	// Transform converts the fitted parameters to a 2x3 affine matrix.
	// It reports false before Solve or for families that are not affine.
	Transform() (geometry.AffineTransform, bool)
	// Predict runs inference on points without touching the model's own
	// design matrix and returns the predicted points.
	Predict(points []geometry.Point2D) ([]geometry.Point2D, Status)
}

// maxCondition bounds the condition number of AᵗA accepted by Solve.
const maxCondition = 1e15

// model holds the state and the algorithm shared by every family.
type model struct {
	kind    Kind
	layout  layout
	norm    geometry.AffineTransform
	a       *mat.Dense
	params  *mat.VecDense
	results *mat.VecDense
}

func newModel(kind Kind, l layout) model {
	return model{kind: kind, layout: l, norm: geometry.Identity()}
}

func (m *model) Kind() Kind { return m.kind }

func (m *model) ParamCount() int { return m.layout.cols() }

// ConstructA rebuilds the design matrix with two rows per point. Previously
// fitted parameters and results are dropped on success, and the input
// normalization is recomputed from x and y.
func (m *model) ConstructA(x, y []float64) (st Status) {
	defer recoverStatus(&st)

	if len(x) != len(y) {
		return Errorf(CodeInvalidInput, "X and Y must have the same size (%d != %d)", len(x), len(y))
	}
	if len(x) == 0 {
		return Errorf(CodeInvalidInput, "at least one point is required")
	}
	if i, ok := firstNonFinite(x); ok {
		return Errorf(CodeInvalidInput, "X[%d] is not finite", i)
	}
	if i, ok := firstNonFinite(y); ok {
		return Errorf(CodeInvalidInput, "Y[%d] is not finite", i)
	}

	m.norm = m.layout.normalize(x, y)
	m.a = m.design(x, y)
	m.params = nil
	m.results = nil
	return OK()
}

func (m *model) design(x, y []float64) *mat.Dense {
	a := mat.NewDense(2*len(x), m.layout.cols(), nil)
	for i := range x {
		p := m.norm.Apply(geometry.NewPoint2D(x[i], y[i]))
		m.layout.fill(a.RawRowView(2*i), a.RawRowView(2*i+1), p.X, p.Y)
	}
	return a
}

// Solve fits the parameters through the normal equations AᵗA·θ = Aᵗy using
// a Cholesky factorization of AᵗA.
func (m *model) Solve(a mat.Matrix, y []float64) (st Status) {
	defer recoverStatus(&st)

	if a == nil {
		return Errorf(CodeNullPointer, "design matrix is nil")
	}
	rows, cols := a.Dims()
	if rows != len(y) {
		return Errorf(CodeInvalidInput, "A rows and Y size must match (%d != %d)", rows, len(y))
	}
	if cols != m.layout.cols() {
		return Errorf(CodeInvalidInput, "A has %d columns, %s model expects %d", cols, m.kind, m.layout.cols())
	}
	if i, ok := firstNonFinite(y); ok {
		return Errorf(CodeInvalidInput, "Y[%d] is not finite", i)
	}

	var ata mat.SymDense
	ata.SymOuterK(1, a.T())

	var aty mat.VecDense
	aty.MulVec(a.T(), mat.NewVecDense(len(y), append([]float64(nil), y...)))

	var chol mat.Cholesky
	if ok := chol.Factorize(&ata); !ok {
		return Errorf(CodeFailure, "normal equations are not positive definite: system is rank deficient")
	}
	if cond := chol.Cond(); cond > maxCondition {
		return Errorf(CodeFailure, "normal equations are ill-conditioned (cond %.3g): points are too close to degenerate for %d parameters", cond, cols)
	}

	theta := mat.NewVecDense(cols, nil)
	if err := chol.SolveVecTo(theta, &aty); err != nil {
		return Errorf(CodeFailure, "cholesky solve: %v", err)
	}
	if _, ok := firstNonFinite(theta.RawVector().Data); ok {
		return Errorf(CodeFailure, "solution is not finite")
	}

	m.params = theta
	return OK()
}

// Inference sets results = A · parameters.
func (m *model) Inference(a mat.Matrix) (st Status) {
	defer recoverStatus(&st)

	if m.params == nil {
		return Errorf(CodeNullPointer, "parameters are not set: call Solve first")
	}
	if a == nil {
		return Errorf(CodeNullPointer, "design matrix is nil")
	}
	rows, cols := a.Dims()
	if cols != m.params.Len() {
		return Errorf(CodeInvalidInput, "A columns and coefficients size must match (%d != %d)", cols, m.params.Len())
	}

	results := mat.NewVecDense(rows, nil)
	results.MulVec(a, m.params)
	m.results = results
	return OK()
}

func (m *model) DesignMatrix() mat.Matrix {
	if m.a == nil {
		return nil
	}
	return mat.DenseCopyOf(m.a)
}

func (m *model) Parameters() []float64 {
	return vecCopy(m.params)
}

func (m *model) Results() []float64 {
	return vecCopy(m.results)
}

func (m *model) Transform() (geometry.AffineTransform, bool) {
	if m.params == nil {
		return geometry.AffineTransform{}, false
	}
	t, ok := m.layout.affine(m.params.RawVector().Data)
	if !ok {
		return geometry.AffineTransform{}, false
	}
	return t.Compose(m.norm), true
}

func (m *model) Predict(points []geometry.Point2D) ([]geometry.Point2D, Status) {
	if len(points) == 0 {
		return nil, Errorf(CodeInvalidInput, "no points to predict")
	}
	xs, ys := geometry.Coordinates(points)
	if st := m.Inference(m.design(xs, ys)); !st.OK() {
		return nil, st
	}
	out, err := geometry.Deinterleave(m.results.RawVector().Data)
	if err != nil {
		return nil, Errorf(CodeFailure, "%v", err)
	}
	return out, OK()
}

// recoverStatus turns a panic raised by the matrix library into a failed status.
func recoverStatus(st *Status) {
	if r := recover(); r != nil {
		*st = Errorf(CodeFailure, "%v", r)
	}
}

func vecCopy(v *mat.VecDense) []float64 {
	if v == nil {
		return nil
	}
	return mat.Col(nil, 0, v)
}

func firstNonFinite(values []float64) (int, bool) {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i, true
		}
	}
	return 0, false
}
