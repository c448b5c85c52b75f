// Package coords maps positions between a layout tool's coordinate space
// and PDF user space.
package coords

type Matrix [6]float64

type Point struct{ X, Y float64 }

func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }
func Scale(sx, sy float64) Matrix     { return Matrix{sx, 0, 0, sy, 0, 0} }

// Multiply returns m followed by o.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2], m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2], m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4], m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

func (m Matrix) Transform(p Point) Point {
	return Point{X: m[0]*p.X + m[2]*p.Y + m[4], Y: m[1]*p.X + m[3]*p.Y + m[5]}
}

// FromTopLeft converts coordinates with the origin at the top of a page of
// the given height and y growing downwards.
func FromTopLeft(height float64) Matrix {
	return Scale(1, -1).Multiply(Translate(0, height))
}

// TransformRect returns the bounding box [llx lly urx ury] of r after m.
func (m Matrix) TransformRect(r [4]float64) [4]float64 {
	a := m.Transform(Point{r[0], r[1]})
	b := m.Transform(Point{r[2], r[3]})
	return [4]float64{min(a.X, b.X), min(a.Y, b.Y), max(a.X, b.X), max(a.Y, b.Y)}
}

// TransformQuad maps each x, y pair of quad. Point order is kept.
func (m Matrix) TransformQuad(quad []float64) []float64 {
	out := make([]float64, len(quad))
	for i := 0; i+1 < len(quad); i += 2 {
		p := m.Transform(Point{quad[i], quad[i+1]})
		out[i], out[i+1] = p.X, p.Y
	}
	return out
}

// Quad returns the quad points covering rect in annotation order: upper
// left, upper right, lower left, lower right.
func Quad(r [4]float64) []float64 {
	return []float64{r[0], r[3], r[2], r[3], r[0], r[1], r[2], r[1]}
}
