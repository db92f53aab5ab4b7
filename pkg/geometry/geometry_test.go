package geometry_test

import (
	"math"
	"testing"

	"geofit/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterleave(t *testing.T) {
	pts := []geometry.Point2D{{X: 1, Y: 2}, {X: 3, Y: 4}}
	flat := geometry.Interleave(pts)
	assert.Equal(t, []float64{1, 2, 3, 4}, flat)

	back, err := geometry.Deinterleave(flat)
	require.NoError(t, err)
	assert.Equal(t, pts, back)

	_, err = geometry.Deinterleave([]float64{1, 2, 3})
	assert.Error(t, err)

	xs, ys := geometry.Coordinates(pts)
	assert.Equal(t, []float64{1, 3}, xs)
	assert.Equal(t, []float64{2, 4}, ys)
}

func TestAffineTransform_InverseAndCompose(t *testing.T) {
	tr := geometry.AffineTransform{A: 2, B: 1, TX: 3, C: -1, D: 1.5, TY: -4}
	inv, ok := tr.Inverse()
	require.True(t, ok)

	id := tr.Compose(inv)
	assert.InDelta(t, 1, id.A, 1e-12)
	assert.InDelta(t, 0, id.B, 1e-12)
	assert.InDelta(t, 0, id.TX, 1e-12)
	assert.InDelta(t, 1, id.D, 1e-12)

	p := geometry.NewPoint2D(7, -2)
	q := inv.Apply(tr.Apply(p))
	assert.InDelta(t, p.X, q.X, 1e-12)
	assert.InDelta(t, p.Y, q.Y, 1e-12)

	_, ok = geometry.AffineTransform{A: 1, B: 2, C: 2, D: 4}.Inverse()
	assert.False(t, ok)
}

func TestSimilarity(t *testing.T) {
	tr := geometry.Similarity(3, math.Pi/4, 1, 2)
	assert.InDelta(t, math.Pi/4, tr.Rotation(), 1e-12)
	sx, sy := tr.Scale()
	assert.InDelta(t, 3, sx, 1e-12)
	assert.InDelta(t, 3, sy, 1e-12)

	a, b := geometry.NewPoint2D(0, 0), geometry.NewPoint2D(1, 1)
	assert.InDelta(t, 3*a.Distance(b), tr.Apply(a).Distance(tr.Apply(b)), 1e-12)
}

func TestConvexHullAndSpread(t *testing.T) {
	square := []geometry.Point2D{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	hull := geometry.ConvexHull(square)
	assert.Len(t, hull, 4)
	assert.InDelta(t, 4, geometry.PolygonArea(hull), 1e-12)
	assert.InDelta(t, 1, geometry.Spread(square), 1e-12)

	diagonal := []geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}
	assert.Zero(t, geometry.Spread(diagonal))

	triangle := []geometry.Point2D{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 4}}
	assert.InDelta(t, 0.5, geometry.Spread(triangle), 1e-12)
}

func TestBoundingBoxAndCentroid(t *testing.T) {
	pts := []geometry.Point2D{{X: -1, Y: 2}, {X: 3, Y: -2}, {X: 1, Y: 0}}
	assert.Equal(t, geometry.Rect{X: -1, Y: -2, Width: 4, Height: 4}, geometry.BoundingBox(pts))
	assert.Equal(t, geometry.Point2D{X: 1, Y: 0}, geometry.Centroid(pts))
	assert.Equal(t, geometry.Rect{}, geometry.BoundingBox(nil))
}
