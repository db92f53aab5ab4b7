// Package transform estimates parametric 2D point-to-point transformations
// from matched observation pairs and applies them to new points.
//
// Each family (Affine, Conformal, Polynomial) implements Model, a three-stage
// pipeline: ConstructA builds the design matrix from observed coordinates,
// Solve fits parameters by least squares through the normal equations, and
// Inference evaluates the parameters on a design matrix of new points.
// Every operation returns a Status instead of panicking or returning error;
// Status.Err converts a failed status to an error for callers that prefer it.
//
//	m := transform.NewAffine()
//	if st := m.ConstructA(xs, ys); !st.OK() {
//		return st.Err()
//	}
//	if st := m.Solve(m.DesignMatrix(), target); !st.OK() {
//		return st.Err()
//	}
//
// Context holds one model selected at runtime and forwards the same calls.
package transform
