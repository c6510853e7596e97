// Package geom provides the 2D affine transform primitive used throughout
// driftview.
//
// A scene is navigated entirely through compositions of affine transforms:
// edge transforms describe how a child node's frame maps into its parent's,
// and the viewport transform carries accumulated pan/zoom. The package keeps
// the math self-contained so the scene packages never depend on a rendering
// backend.
package geom

import "math"

// Matrix is a 2D affine transformation in 2x3 row-major form:
//
//	| A  B  C |
//	| D  E  F |
//
// representing the mapping:
//
//	x' = A*x + B*y + C
//	y' = D*x + E*y + F
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation.
func Identity() Matrix {
	return Matrix{
		A: 1, B: 0, C: 0,
		D: 0, E: 1, F: 0,
	}
}

// Translate returns a translation by (x, y).
func Translate(x, y float64) Matrix {
	return Matrix{
		A: 1, B: 0, C: x,
		D: 0, E: 1, F: y,
	}
}

// Scale returns a scaling by (x, y) about the origin.
func Scale(x, y float64) Matrix {
	return Matrix{
		A: x, B: 0, C: 0,
		D: 0, E: y, F: 0,
	}
}

// Rotate returns a rotation by angle radians about the origin.
func Rotate(angle float64) Matrix {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Matrix{
		A: cos, B: -sin, C: 0,
		D: sin, E: cos, F: 0,
	}
}

// Shear returns a shearing by (x, y) about the origin.
func Shear(x, y float64) Matrix {
	return Matrix{
		A: 1, B: x, C: 0,
		D: y, E: 1, F: 0,
	}
}

// ScaleAbout returns a uniform scaling by factor centered on (cx, cy).
// It is equivalent to Translate(cx, cy) ∘ Scale(factor) ∘ Translate(-cx, -cy)
// and is the building block for pointer-centered zoom.
func ScaleAbout(cx, cy, factor float64) Matrix {
	return Translate(cx, cy).Multiply(Scale(factor, factor)).Multiply(Translate(-cx, -cy))
}

// Multiply composes two transforms (m ∘ other): the result applies other
// first, then m.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformPoint applies the transformation to a point.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// Invert returns the exact analytic inverse of the matrix and true, or the
// identity and false if the matrix is singular. Re-centering relies on the
// inverse being exact modulo floating point, so no iterative approximation
// is used.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.A*m.E - m.B*m.D
	if math.Abs(det) < 1e-12 {
		return Identity(), false
	}

	invDet := 1.0 / det
	return Matrix{
		A: m.E * invDet,
		B: -m.B * invDet,
		C: (m.B*m.F - m.C*m.E) * invDet,
		D: -m.D * invDet,
		E: m.A * invDet,
		F: (m.C*m.D - m.A*m.F) * invDet,
	}, true
}

// Translation returns the translation component (C, F) of the matrix.
func (m Matrix) Translation() (x, y float64) {
	return m.C, m.F
}

// IsIdentity reports whether the matrix is exactly the identity.
func (m Matrix) IsIdentity() bool {
	return m.A == 1 && m.B == 0 && m.C == 0 &&
		m.D == 0 && m.E == 1 && m.F == 0
}

// IsTranslation reports whether the matrix is a pure translation.
func (m Matrix) IsTranslation() bool {
	return m.A == 1 && m.B == 0 && m.D == 0 && m.E == 1
}

// Equal reports whether every component of m is within tol of other.
func (m Matrix) Equal(other Matrix, tol float64) bool {
	return math.Abs(m.A-other.A) <= tol &&
		math.Abs(m.B-other.B) <= tol &&
		math.Abs(m.C-other.C) <= tol &&
		math.Abs(m.D-other.D) <= tol &&
		math.Abs(m.E-other.E) <= tol &&
		math.Abs(m.F-other.F) <= tol
}
