package geometry

import (
	"gonum.org/v1/gonum/spatial/r3"
)

func TriangleArea(a, b, c r3.Vec) float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}

// TriangleNormal is the unit normal of a counterclockwise triangle, zero for a
// degenerate one.
func TriangleNormal(a, b, c r3.Vec) r3.Vec {
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	if l := r3.Norm(n); l > 0 {
		return r3.Scale(1/l, n)
	}
	return r3.Vec{}
}

func TriangleCentroid(a, b, c r3.Vec) r3.Vec {
	return r3.Scale(1./3., r3.Add(r3.Add(a, b), c))
}

// Normalize returns the unit vector along v, v itself when it is zero.
func Normalize(v r3.Vec) r3.Vec {
	if l := r3.Norm(v); l > 0 {
		return r3.Scale(1/l, v)
	}
	return v
}
