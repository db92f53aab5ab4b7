package transform

import (
	"log"

	"gonum.org/v1/gonum/mat"
)

const noModelMessage = "No model set"

// Context holds at most one active Model and forwards the pipeline
// operations to it, so the family can be chosen and swapped at runtime.
// The zero value is an empty context.
type Context struct {
	current Model
	logger  *log.Logger
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithLogger records every forwarded call and its status.
func WithLogger(l *log.Logger) ContextOption {
	return func(c *Context) {
		c.logger = l
	}
}

// NewContext returns an empty context.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetModel installs m, replacing any previous model. A nil m, including a
// nil *Affine, *Conformal or *Polynomial, empties the context.
func (c *Context) SetModel(m Model) {
	if isNilModel(m) {
		m = nil
	}
	c.current = m
	if c.logger != nil && m != nil {
		c.logger.Printf("context: active model %s", m.Kind())
	}
}

// Model returns the active model, or nil.
func (c *Context) Model() Model {
	return c.current
}

// ConstructA forwards to the active model's ConstructA. An empty context
// reports CodeNullPointer.
func (c *Context) ConstructA(x, y []float64) Status {
	if c.current == nil {
		return c.trace("constructA", Errorf(CodeNullPointer, noModelMessage))
	}
	return c.trace("constructA", c.current.ConstructA(x, y))
}

// Solve forwards to the active model's Solve. An empty context reports
// CodeNullPointer.
func (c *Context) Solve(a mat.Matrix, y []float64) Status {
	if c.current == nil {
		return c.trace("solve", Errorf(CodeNullPointer, noModelMessage))
	}
	return c.trace("solve", c.current.Solve(a, y))
}

// Inference forwards to the active model's Inference. An empty context
// reports CodeNullPointer.
func (c *Context) Inference(a mat.Matrix) Status {
	if c.current == nil {
		return c.trace("inference", Errorf(CodeNullPointer, noModelMessage))
	}
	return c.trace("inference", c.current.Inference(a))
}

func isNilModel(m Model) bool {
	switch v := m.(type) {
	case nil:
		return true
	case *Affine:
		return v == nil
	case *Conformal:
		return v == nil
	case *Polynomial:
		return v == nil
	}
	return false
}

func (c *Context) trace(op string, st Status) Status {
	if c.logger != nil {
		c.logger.Printf("context: %s: %s", op, st)
	}
	return st
}
