package gcp_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"geofit/internal/gcp"
	"geofit/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# id  x     y     X        Y        Z
P1   10.0  20.0  5000.0   8000.0   101.5
P2   110.0 20.0  5100.0   8000.0   99.0

P3   10.0  120.0 5000.0   8100.0   100.0 0
P4   60.0  70.0  5050.0   8050.0   100.2 icp
P5   90    30    5080     8010     check
`

func TestParse(t *testing.T) {
	points, err := gcp.Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, points, 5)

	assert.Equal(t, gcp.Point{
		ID:     "P1",
		Image:  geometry.Point2D{X: 10, Y: 20},
		Ground: geometry.Point2D{X: 5000, Y: 8000},
		Z:      101.5,
	}, points[0])
	assert.False(t, points[2].Check)
	assert.True(t, points[3].Check)
	assert.True(t, points[4].Check)
	assert.Zero(t, points[4].Z)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
		line  string
	}{
		{"empty", "# nothing\n\n", gcp.ErrNoPoints, ""},
		{"too few columns", "P1 1 2 3\n", gcp.ErrMalformed, "line 1"},
		{"bad number", "P1 1 2 x 4\n", gcp.ErrMalformed, "line 1"},
		{"bad flag", "P1 1 2 3 4 5 maybe\n", gcp.ErrMalformed, "line 1"},
		{"bad z with flag", "P1 1 2 3 4 z icp\n", gcp.ErrMalformed, "line 1"},
		{"duplicate", "P1 1 2 3 4\n\nP1 5 6 7 8\n", gcp.ErrDuplicateID, "line 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gcp.Parse(strings.NewReader(tt.input))
			require.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), tt.line)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.txt")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	points, err := gcp.Load(path)
	require.NoError(t, err)
	assert.Len(t, points, 5)

	_, err = gcp.Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSplitAndObservations(t *testing.T) {
	points, err := gcp.Parse(strings.NewReader(sample))
	require.NoError(t, err)

	gcps, icps := gcp.Split(points)
	require.Len(t, gcps, 3)
	require.Len(t, icps, 2)
	assert.Equal(t, "P4", icps[0].ID)

	x, y, target := gcp.Observations(gcps)
	assert.Equal(t, []float64{10, 110, 10}, x)
	assert.Equal(t, []float64{20, 20, 120}, y)
	assert.Equal(t, []float64{5000, 8000, 5100, 8000, 5000, 8100}, target)
}
