package geometry

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// BaryType tells which feature of a triangle holds the closest point.
type BaryType uint8

const (
	BARY_NODE BaryType = iota
	BARY_EDGE
	BARY_TRIANGLE
)

func (bt BaryType) String() string {
	switch bt {
	case BARY_NODE:
		return "NODE"
	case BARY_EDGE:
		return "EDGE"
	default:
		return "TRIANGLE"
	}
}

// ClosestPointOnTriangle finds the point of triangle abc nearest to p and its
// barycentric weights. Vertex and edge regions produce exact zero weights.
func ClosestPointOnTriangle(p, a, b, c r3.Vec) (q r3.Vec, w [3]float64, bt BaryType) {
	var (
		ab = r3.Sub(b, a)
		ac = r3.Sub(c, a)
		ap = r3.Sub(p, a)
		d1 = r3.Dot(ab, ap)
		d2 = r3.Dot(ac, ap)
	)
	if d1 <= 0 && d2 <= 0 {
		return a, [3]float64{1, 0, 0}, BARY_NODE
	}
	bp := r3.Sub(p, b)
	d3, d4 := r3.Dot(ab, bp), r3.Dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b, [3]float64{0, 1, 0}, BARY_NODE
	}
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return r3.Add(a, r3.Scale(v, ab)), [3]float64{1 - v, v, 0}, BARY_EDGE
	}
	cp := r3.Sub(p, c)
	d5, d6 := r3.Dot(ab, cp), r3.Dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c, [3]float64{0, 0, 1}, BARY_NODE
	}
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		v := d2 / (d2 - d6)
		return r3.Add(a, r3.Scale(v, ac)), [3]float64{1 - v, 0, v}, BARY_EDGE
	}
	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		v := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return r3.Add(b, r3.Scale(v, r3.Sub(c, b))), [3]float64{0, 1 - v, v}, BARY_EDGE
	}
	var (
		denom = 1 / (va + vb + vc)
		v     = vb * denom
		ww    = vc * denom
	)
	q = r3.Add(a, r3.Add(r3.Scale(v, ab), r3.Scale(ww, ac)))
	w = [3]float64{1 - v - ww, v, ww}
	for i := range w {
		if w[i] < 0 {
			w[i] = 0
		}
	}
	return q, w, BARY_TRIANGLE
}
