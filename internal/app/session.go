// Package app ties control points, the active transform model and the
// accuracy report together for the command-line tools.
package app

import (
	"errors"
	"fmt"
	"log"

	"geofit/internal/config"
	"geofit/internal/correct"
	"geofit/internal/evaluate"
	"geofit/internal/gcp"
	"geofit/pkg/geometry"
	"geofit/pkg/transform"
)

// minSpread is the hull-to-bounding-box ratio below which control points
// are reported as nearly collinear.
const minSpread = 0.01

var ErrTooFewPoints = errors.New("app: too few control points")

// EventType identifies session events.
type EventType int

const (
	EventModelSelected EventType = iota
	EventPointsLoaded
	EventFitComplete
	EventWarning
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Session holds the runtime-selected model and the loaded control points.
type Session struct {
	Config *config.Config
	Points []gcp.Point

	ctx       *transform.Context
	listeners map[EventType][]EventListener
}

// Result is the outcome of one fit.
type Result struct {
	Kind       transform.Kind
	Parameters []float64
	Transform  geometry.AffineTransform
	HasAffine  bool

	GCPs []gcp.Point
	ICPs []gcp.Point

	// Fit compares predictions with the GCPs used for fitting.
	Fit evaluate.Report
	// Check compares predictions with the held-out ICPs; nil without ICPs.
	Check *evaluate.Report
	// Correction is the residual interpolation applied to the ICP
	// predictions. Corrected is Check after it, or nil when no correction
	// is configured or there are no ICPs.
	Correction correct.Method
	Corrected  *evaluate.Report
}

// NewSession creates a session. A non-nil logger traces every model call.
func NewSession(cfg *config.Config, logger *log.Logger) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	var opts []transform.ContextOption
	if logger != nil {
		opts = append(opts, transform.WithLogger(logger))
	}
	return &Session{
		Config:    cfg,
		ctx:       transform.NewContext(opts...),
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	for _, listener := range s.listeners[event] {
		listener(data)
	}
}

// Context returns the model context.
func (s *Session) Context() *transform.Context {
	return s.ctx
}

// SelectModel installs a fresh model of the given family.
func (s *Session) SelectModel(kind transform.Kind) error {
	m, err := transform.New(kind, transform.WithDegree(s.Config.Degree))
	if err != nil {
		return err
	}
	s.ctx.SetModel(m)
	s.Emit(EventModelSelected, m)
	return nil
}

// SelectModelByName parses name and installs the model.
func (s *Session) SelectModelByName(name string) error {
	kind, err := transform.ParseKind(name)
	if err != nil {
		return err
	}
	return s.SelectModel(kind)
}

// LoadPoints reads a control point file into the session.
func (s *Session) LoadPoints(path string) error {
	points, err := gcp.Load(path)
	if err != nil {
		return err
	}
	s.Points = points
	s.Emit(EventPointsLoaded, points)
	return nil
}

// Fit fits the active model on the session's GCPs and checks it on the ICPs.
func (s *Session) Fit() (*Result, error) {
	m := s.ctx.Model()
	if m == nil {
		return nil, fmt.Errorf("fit: %w", errNoModel())
	}

	gcps, icps := gcp.Split(s.Points)
	need := minPoints(m)
	if len(gcps) < need {
		return nil, fmt.Errorf("%w: %s model needs %d GCPs, have %d", ErrTooFewPoints, m.Kind(), need, len(gcps))
	}
	if spread := geometry.Spread(gcp.ImagePoints(gcps)); spread < minSpread && m.Kind() != transform.KindConformal {
		s.Emit(EventWarning, fmt.Sprintf("control points are nearly collinear (spread %.4f)", spread))
	}

	x, y, target := gcp.Observations(gcps)
	if st := s.ctx.ConstructA(x, y); !st.OK() {
		return nil, fmt.Errorf("construct design matrix: %w", st.Err())
	}
	a := m.DesignMatrix()
	if st := s.ctx.Solve(a, target); !st.OK() {
		return nil, fmt.Errorf("solve: %w", st.Err())
	}
	if st := s.ctx.Inference(a); !st.OK() {
		return nil, fmt.Errorf("inference: %w", st.Err())
	}

	fitReport, err := evaluate.Compare(m.Results(), target)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Kind:       m.Kind(),
		Parameters: m.Parameters(),
		GCPs:       gcps,
		ICPs:       icps,
		Fit:        fitReport,
	}
	res.Transform, res.HasAffine = m.Transform()

	if len(icps) > 0 {
		pred, st := m.Predict(gcp.ImagePoints(icps))
		if !st.OK() {
			return nil, fmt.Errorf("predict check points: %w", st.Err())
		}
		check, err := evaluate.Compare(geometry.Interleave(pred), geometry.Interleave(gcp.GroundPoints(icps)))
		if err != nil {
			return nil, err
		}
		res.Check = &check

		if err := s.correctChecks(res, pred); err != nil {
			return nil, err
		}
	}

	s.Emit(EventFitComplete, res)
	return res, nil
}

// correctChecks interpolates the GCP residuals onto the ICP predictions.
func (s *Session) correctChecks(res *Result, pred []geometry.Point2D) error {
	method, err := correct.ParseMethod(s.Config.Correction)
	if err != nil || method == correct.None {
		return err
	}
	norm, err := correct.ParseNorm(s.Config.Norm)
	if err != nil {
		return err
	}

	residuals := make([]geometry.Point2D, len(res.Fit.Residuals))
	for i, r := range res.Fit.Residuals {
		residuals[i] = geometry.NewPoint2D(r.DX, r.DY)
	}
	ip, err := correct.New(method, gcp.ImagePoints(res.GCPs), residuals, norm)
	if err != nil {
		return fmt.Errorf("%s correction: %w", method, err)
	}

	adjusted := correct.Apply(ip, gcp.ImagePoints(res.ICPs), pred)
	report, err := evaluate.Compare(geometry.Interleave(adjusted), geometry.Interleave(gcp.GroundPoints(res.ICPs)))
	if err != nil {
		return err
	}
	res.Correction = method
	res.Corrected = &report
	return nil
}

func errNoModel() error {
	return transform.Errorf(transform.CodeNullPointer, "No model set").Err()
}

func minPoints(m transform.Model) int {
	switch v := m.(type) {
	case *transform.Polynomial:
		return v.MinPoints()
	case *transform.Conformal:
		return 2
	default:
		return 3
	}
}
