// Package warp loads images and resamples them through a fitted transform.
package warp

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"
	"strings"

	"geofit/pkg/geometry"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	_ "golang.org/x/image/tiff"
)

// MaxPixels bounds the number of pixels in an output grid.
const MaxPixels = 1 << 27

var (
	ErrSingular      = errors.New("warp: transform is not invertible")
	ErrInvalidSize   = errors.New("warp: output size must be positive")
	ErrTooLarge      = errors.New("warp: output grid too large")
	ErrUnknownFilter = errors.New("warp: unknown interpolation")
)

// Interpolation returns the resampling kernel for name: nearest, bilinear
// or catmullrom.
func Interpolation(name string) (draw.Interpolator, error) {
	switch strings.ToLower(name) {
	case "nearest":
		return draw.NearestNeighbor, nil
	case "", "bilinear":
		return draw.BiLinear, nil
	case "catmullrom", "bicubic":
		return draw.CatmullRom, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
}

// Load decodes a PNG, JPEG or TIFF image.
func Load(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// SavePNG encodes img as PNG at path.
func SavePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return file.Close()
}

// Grid is a north-up raster in ground coordinates. The top-left corner of
// pixel (0, 0) sits at (MinX, MaxY); columns run east and rows run south,
// GSD ground units apart.
type Grid struct {
	MinX, MaxY    float64
	GSD           float64
	Width, Height int
}

// GridFor returns the grid covering the footprint of src under the
// image-to-ground transform t. A gsd of zero keeps the source pixel area.
func GridFor(src image.Rectangle, t geometry.AffineTransform, gsd float64) (Grid, error) {
	if gsd == 0 {
		gsd = math.Sqrt(math.Abs(t.Det()))
	}
	if !(gsd > 0) || math.IsInf(gsd, 0) {
		return Grid{}, fmt.Errorf("%w: ground sample distance %g", ErrInvalidSize, gsd)
	}

	box := geometry.BoundingBox(t.ApplyAll([]geometry.Point2D{
		{X: float64(src.Min.X), Y: float64(src.Min.Y)},
		{X: float64(src.Max.X), Y: float64(src.Min.Y)},
		{X: float64(src.Min.X), Y: float64(src.Max.Y)},
		{X: float64(src.Max.X), Y: float64(src.Max.Y)},
	}))
	// The epsilon keeps exact multiples of gsd from gaining a column.
	w := math.Ceil(box.Width/gsd - 1e-9)
	h := math.Ceil(box.Height/gsd - 1e-9)
	g := Grid{MinX: box.X, MaxY: box.Y + box.Height, GSD: gsd}
	if err := checkSize(w, h); err != nil {
		return Grid{}, err
	}
	g.Width, g.Height = int(w), int(h)
	return g, nil
}

func checkSize(w, h float64) error {
	if math.IsNaN(w) || math.IsNaN(h) || w < 1 || h < 1 {
		return fmt.Errorf("%w: %gx%g", ErrInvalidSize, w, h)
	}
	if w*h > MaxPixels {
		return fmt.Errorf("%w: %.0fx%.0f exceeds %d pixels", ErrTooLarge, w, h, MaxPixels)
	}
	return nil
}

// PixelToGround maps output pixel coordinates to ground coordinates.
func (g Grid) PixelToGround() geometry.AffineTransform {
	return geometry.AffineTransform{
		A: g.GSD, TX: g.MinX,
		D: -g.GSD, TY: g.MaxY,
	}
}

// GroundToPixel maps ground coordinates to output pixel coordinates.
func (g Grid) GroundToPixel() geometry.AffineTransform {
	return geometry.AffineTransform{
		A: 1 / g.GSD, TX: -g.MinX / g.GSD,
		D: -1 / g.GSD, TY: g.MaxY / g.GSD,
	}
}

// Affine resamples src onto grid through the image-to-ground transform t.
// Grid pixels outside the source footprint are transparent.
func Affine(src image.Image, t geometry.AffineTransform, grid Grid, interp draw.Interpolator) (*image.RGBA, error) {
	if !(grid.GSD > 0) {
		return nil, fmt.Errorf("%w: ground sample distance %g", ErrInvalidSize, grid.GSD)
	}
	if err := checkSize(float64(grid.Width), float64(grid.Height)); err != nil {
		return nil, err
	}
	if _, ok := t.Inverse(); !ok {
		return nil, ErrSingular
	}
	if interp == nil {
		interp = draw.BiLinear
	}

	dst := image.NewRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	s2d := grid.GroundToPixel().Compose(t)
	interp.Transform(dst, toAff3(s2d), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// WriteWorldFile writes the six-line world file that georeferences an image
// rendered on grid. Coordinates refer to pixel centres.
func WriteWorldFile(path string, grid Grid) error {
	p := grid.PixelToGround()
	centre := p.Apply(geometry.NewPoint2D(0.5, 0.5))
	body := fmt.Sprintf("%.10f\n%.10f\n%.10f\n%.10f\n%.10f\n%.10f\n",
		p.A, p.C, p.B, p.D, centre.X, centre.Y)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("failed to write world file: %w", err)
	}
	return nil
}

func toAff3(t geometry.AffineTransform) f64.Aff3 {
	return f64.Aff3{
		t.A, t.B, t.TX,
		t.C, t.D, t.TY,
	}
}
