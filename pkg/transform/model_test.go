package transform_test

import (
	"math"
	"testing"

	"geofit/pkg/geometry"
	"geofit/pkg/transform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const tol = 1e-9

var samplePoints = []geometry.Point2D{
	{X: 0, Y: 0},
	{X: 10, Y: 0},
	{X: 0, Y: 10},
	{X: 7, Y: 3},
	{X: 2, Y: 9},
	{X: -4, Y: 5},
}

// fit runs the full pipeline on src -> dst using the model's own design matrix.
func fit(t *testing.T, m transform.Model, src, dst []geometry.Point2D) {
	t.Helper()
	xs, ys := geometry.Coordinates(src)
	require.True(t, m.ConstructA(xs, ys).OK())
	st := m.Solve(m.DesignMatrix(), geometry.Interleave(dst))
	require.True(t, st.OK(), st.String())
}

func TestConstructA_SampleRows(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{4, 5, 6}

	tests := []struct {
		name  string
		model transform.Model
		cols  int
		row0  []float64
		row1  []float64
	}{
		{"affine", transform.NewAffine(), 6, []float64{1, 4, 0, 0, 1, 0}, []float64{0, 0, 1, 4, 0, 1}},
		{"conformal", transform.NewConformal(), 4, []float64{1, -4, 1, 0}, []float64{4, 1, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := tt.model.ConstructA(x, y)
			require.True(t, st.OK(), st.String())

			a := tt.model.DesignMatrix()
			require.NotNil(t, a)
			rows, cols := a.Dims()
			assert.Equal(t, 6, rows)
			assert.Equal(t, tt.cols, cols)
			assert.Equal(t, tt.cols, tt.model.ParamCount())
			assert.Equal(t, tt.row0, mat.Row(nil, 0, a))
			assert.Equal(t, tt.row1, mat.Row(nil, 1, a))
		})
	}
}

func TestConstructA_LastPointRows(t *testing.T) {
	m := transform.NewAffine()
	require.True(t, m.ConstructA([]float64{1, 2, 3}, []float64{4, 5, 6}).OK())

	a := m.DesignMatrix()
	assert.Equal(t, []float64{3, 6, 0, 0, 1, 0}, mat.Row(nil, 4, a))
	assert.Equal(t, []float64{0, 0, 3, 6, 0, 1}, mat.Row(nil, 5, a))
}

func TestConstructA_InvalidInput(t *testing.T) {
	for _, m := range []transform.Model{transform.NewAffine(), transform.NewConformal()} {
		t.Run(m.Kind().String(), func(t *testing.T) {
			st := m.ConstructA([]float64{1, 2}, []float64{1})
			assert.False(t, st.OK())
			assert.Equal(t, transform.CodeInvalidInput, st.Code())
			assert.ErrorIs(t, st.Err(), transform.ErrInvalidInput)
			assert.Nil(t, m.DesignMatrix())

			st = m.ConstructA(nil, nil)
			assert.Equal(t, transform.CodeInvalidInput, st.Code())

			st = m.ConstructA([]float64{math.NaN()}, []float64{1})
			assert.Equal(t, transform.CodeInvalidInput, st.Code())
		})
	}
}

func TestConstructA_MismatchKeepsFittedState(t *testing.T) {
	m := transform.NewAffine()
	truth := geometry.AffineTransform{A: 1, B: 0.5, TX: 3, C: -0.2, D: 1.1, TY: 4}
	fit(t, m, samplePoints, truth.ApplyAll(samplePoints))
	require.True(t, m.Inference(m.DesignMatrix()).OK())

	params := m.Parameters()
	results := m.Results()

	st := m.ConstructA([]float64{1, 2, 3}, []float64{1, 2})
	require.Equal(t, transform.CodeInvalidInput, st.Code())
	assert.Equal(t, params, m.Parameters())
	assert.Equal(t, results, m.Results())
}

func TestConstructA_DiscardsStaleState(t *testing.T) {
	m := transform.NewConformal()
	fit(t, m, samplePoints, samplePoints)
	require.True(t, m.Inference(m.DesignMatrix()).OK())

	require.True(t, m.ConstructA([]float64{1}, []float64{2}).OK())
	assert.Nil(t, m.Parameters())
	assert.Nil(t, m.Results())

	rows, _ := m.DesignMatrix().Dims()
	assert.Equal(t, 2, rows)
}

func TestAffine_RoundTrip(t *testing.T) {
	truth := []float64{1.2, -0.3, 0.4, 0.9, 5, -2}
	m := transform.NewAffine()
	xs, ys := geometry.Coordinates(samplePoints)
	require.True(t, m.ConstructA(xs, ys).OK())

	a := m.DesignMatrix()
	var target mat.VecDense
	target.MulVec(a, mat.NewVecDense(len(truth), truth))

	st := m.Solve(a, target.RawVector().Data)
	require.True(t, st.OK(), st.String())
	assert.InDeltaSlice(t, truth, m.Parameters(), tol)

	tr, ok := m.Transform()
	require.True(t, ok)
	assert.InDelta(t, 1.2, tr.A, tol)
	assert.InDelta(t, -0.3, tr.B, tol)
	assert.InDelta(t, 0.4, tr.C, tol)
	assert.InDelta(t, 0.9, tr.D, tol)
	assert.InDelta(t, 5.0, tr.TX, tol)
	assert.InDelta(t, -2.0, tr.TY, tol)
}

func TestAffine_ShearAndReflection(t *testing.T) {
	truth := geometry.AffineTransform{A: -1, B: 0.7, TX: 12, C: 0, D: 2.5, TY: -8}
	m := transform.NewAffine()
	fit(t, m, samplePoints[:3], truth.ApplyAll(samplePoints[:3]))

	got, ok := m.Transform()
	require.True(t, ok)
	assert.InDeltaSlice(t, flatten(truth), flatten(got), tol)
}

func TestConformal_RecoversSimilarity(t *testing.T) {
	const s, theta, tx, ty = 2.5, math.Pi / 6, 3.0, -1.0
	truth := geometry.Similarity(s, theta, tx, ty)

	m := transform.NewConformal()
	fit(t, m, samplePoints, truth.ApplyAll(samplePoints))

	assert.InDeltaSlice(t,
		[]float64{s * math.Cos(theta), s * math.Sin(theta), tx, ty},
		m.Parameters(), tol)
	assert.InDelta(t, s, m.Scale(), tol)
	assert.InDelta(t, theta, m.Rotation(), tol)

	fresh := []geometry.Point2D{{X: 1, Y: 1}, {X: 4, Y: -2}, {X: -3, Y: 6}}
	pred, st := m.Predict(fresh)
	require.True(t, st.OK(), st.String())

	// Distance ratios and relative angles survive a similarity.
	for i := 1; i < len(fresh); i++ {
		ratio := pred[i].Distance(pred[0]) / fresh[i].Distance(fresh[0])
		assert.InDelta(t, s, ratio, tol)
	}
	srcAngle := angle(fresh[2].Sub(fresh[0])) - angle(fresh[1].Sub(fresh[0]))
	dstAngle := angle(pred[2].Sub(pred[0])) - angle(pred[1].Sub(pred[0]))
	assert.InDelta(t, math.Remainder(srcAngle, 2*math.Pi), math.Remainder(dstAngle, 2*math.Pi), tol)
}

func TestConformal_ExactFitTwoPoints(t *testing.T) {
	src := []geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 0}}
	dst := []geometry.Point2D{{X: 5, Y: 5}, {X: 5, Y: 7}}

	m := transform.NewConformal()
	fit(t, m, src, dst)
	assert.InDelta(t, 2, m.Scale(), tol)
	assert.InDelta(t, math.Pi/2, m.Rotation(), tol)

	require.True(t, m.Inference(m.DesignMatrix()).OK())
	assert.InDeltaSlice(t, geometry.Interleave(dst), m.Results(), tol)
}

func TestConformal_LeastSquaresResidual(t *testing.T) {
	truth := geometry.Similarity(1, 0.2, 10, 20)
	dst := truth.ApplyAll(samplePoints)
	dst[3].X += 0.5

	m := transform.NewConformal()
	fit(t, m, samplePoints, dst)
	require.True(t, m.Inference(m.DesignMatrix()).OK())

	pred := m.Results()
	obs := geometry.Interleave(dst)
	var sse float64
	for i := range pred {
		sse += (pred[i] - obs[i]) * (pred[i] - obs[i])
	}
	assert.Greater(t, sse, 0.0)
	assert.Less(t, sse, 0.25)
}

func TestSolve_InvalidInput(t *testing.T) {
	m := transform.NewAffine()
	require.True(t, m.ConstructA([]float64{1, 2, 3}, []float64{4, 5, 6}).OK())

	st := m.Solve(m.DesignMatrix(), []float64{1, 2, 3})
	assert.Equal(t, transform.CodeInvalidInput, st.Code())
	assert.Nil(t, m.Parameters())

	st = m.Solve(mat.NewDense(2, 4, nil), []float64{1, 2})
	assert.Equal(t, transform.CodeInvalidInput, st.Code())

	st = m.Solve(nil, []float64{1})
	assert.Equal(t, transform.CodeNullPointer, st.Code())
}

func TestSolve_DegenerateFails(t *testing.T) {
	tests := []struct {
		name  string
		model transform.Model
		x, y  []float64
	}{
		{"affine coincident", transform.NewAffine(), []float64{0, 0, 0}, []float64{0, 0, 0}},
		{"conformal coincident", transform.NewConformal(), []float64{0, 0}, []float64{0, 0}},
		// Normalization rescales the axes but keeps a line a line.
		{"polynomial collinear", mustPolynomial(t, 2), []float64{0, 1, 2, 3, 4, 5, 6}, []float64{0, 2, 4, 6, 8, 10, 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, tt.model.ConstructA(tt.x, tt.y).OK())
			target := make([]float64, 2*len(tt.x))
			st := tt.model.Solve(tt.model.DesignMatrix(), target)
			assert.Equal(t, transform.CodeFailure, st.Code())
			assert.ErrorIs(t, st.Err(), transform.ErrFailure)
			assert.Nil(t, tt.model.Parameters())
		})
	}
}

func TestInference_BeforeSolve(t *testing.T) {
	m := transform.NewAffine()
	require.True(t, m.ConstructA([]float64{1, 2, 3}, []float64{4, 5, 6}).OK())

	st := m.Inference(m.DesignMatrix())
	assert.False(t, st.OK())
	assert.Equal(t, transform.CodeNullPointer, st.Code())
	assert.Nil(t, m.Results())
}

func TestInference_ColumnMismatch(t *testing.T) {
	m := transform.NewAffine()
	fit(t, m, samplePoints, samplePoints)

	st := m.Inference(mat.NewDense(4, 4, nil))
	assert.Equal(t, transform.CodeInvalidInput, st.Code())
	assert.Nil(t, m.Results())

	st = m.Inference(nil)
	assert.Equal(t, transform.CodeNullPointer, st.Code())
}

func TestInference_ResultsLengthAndParamsUnchanged(t *testing.T) {
	m := transform.NewConformal()
	fit(t, m, samplePoints, samplePoints)
	params := m.Parameters()

	other := transform.NewConformal()
	require.True(t, other.ConstructA([]float64{1, 2}, []float64{3, 4}).OK())

	require.True(t, m.Inference(other.DesignMatrix()).OK())
	assert.Len(t, m.Results(), 4)
	assert.Equal(t, params, m.Parameters())
	assert.InDeltaSlice(t, []float64{1, 3, 2, 4}, m.Results(), tol)
}

func TestAccessors_ReturnCopies(t *testing.T) {
	m := transform.NewAffine()
	fit(t, m, samplePoints, samplePoints)

	p := m.Parameters()
	p[0] = 99
	assert.NotEqual(t, 99.0, m.Parameters()[0])

	a := m.DesignMatrix().(*mat.Dense)
	a.Set(0, 0, 99)
	assert.NotEqual(t, 99.0, m.DesignMatrix().At(0, 0))
}

func TestTransform_BeforeSolve(t *testing.T) {
	_, ok := transform.NewAffine().Transform()
	assert.False(t, ok)
}

func TestPredict(t *testing.T) {
	truth := geometry.AffineTransform{A: 0.5, B: 0.1, TX: 100, C: -0.1, D: 0.5, TY: 200}
	m := transform.NewAffine()
	fit(t, m, samplePoints, truth.ApplyAll(samplePoints))
	designRows, _ := m.DesignMatrix().Dims()

	fresh := []geometry.Point2D{{X: 50, Y: 60}}
	got, st := m.Predict(fresh)
	require.True(t, st.OK())
	require.Len(t, got, 1)
	want := truth.Apply(fresh[0])
	assert.InDelta(t, want.X, got[0].X, 1e-8)
	assert.InDelta(t, want.Y, got[0].Y, 1e-8)

	rows, _ := m.DesignMatrix().Dims()
	assert.Equal(t, designRows, rows)

	_, st = m.Predict(nil)
	assert.Equal(t, transform.CodeInvalidInput, st.Code())
}

func mustPolynomial(t *testing.T, degree int) *transform.Polynomial {
	t.Helper()
	p, err := transform.NewPolynomial(degree)
	require.NoError(t, err)
	return p
}

func angle(v geometry.Point2D) float64 {
	return math.Atan2(v.Y, v.X)
}

func flatten(t geometry.AffineTransform) []float64 {
	return []float64{t.A, t.B, t.TX, t.C, t.D, t.TY}
}
