// Package geom provides the small set of planar primitives shared by the
// layout, placement, scene and export packages.
//
// All coordinates are logical canvas units with the origin at the top-left
// corner and Y growing downwards.
package geom

import "math"

// Point is a position on the logical canvas.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle described by its top-left corner and size.
// A Rect with non-positive width or height is empty.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

// R is shorthand for constructing a Rect.
func R(left, top, width, height float64) Rect {
	return Rect{Left: left, Top: top, Width: width, Height: height}
}

// FromEdges builds a Rect from its four edges.
func FromEdges(left, top, right, bottom float64) Rect {
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// CenterX returns the horizontal center.
func (r Rect) CenterX() float64 { return r.Left + r.Width/2 }

// CenterY returns the vertical center.
func (r Rect) CenterY() float64 { return r.Top + r.Height/2 }

// Center returns the center point.
func (r Rect) Center() Point { return Point{X: r.CenterX(), Y: r.CenterY()} }

// Empty reports whether r encloses no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Union returns the smallest rectangle containing both r and o.
// Empty rectangles are ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return FromEdges(
		math.Min(r.Left, o.Left),
		math.Min(r.Top, o.Top),
		math.Max(r.Right(), o.Right()),
		math.Max(r.Bottom(), o.Bottom()),
	)
}

// Intersect returns the overlap of r and o, or the zero Rect when they are disjoint.
func (r Rect) Intersect(o Rect) Rect {
	left := math.Max(r.Left, o.Left)
	top := math.Max(r.Top, o.Top)
	right := math.Min(r.Right(), o.Right())
	bottom := math.Min(r.Bottom(), o.Bottom())
	if right <= left || bottom <= top {
		return Rect{}
	}
	return FromEdges(left, top, right, bottom)
}

// Contains reports whether o lies entirely inside r, allowing eps of slack on
// every edge.
func (r Rect) Contains(o Rect, eps float64) bool {
	return o.Left >= r.Left-eps &&
		o.Top >= r.Top-eps &&
		o.Right() <= r.Right()+eps &&
		o.Bottom() <= r.Bottom()+eps
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.Left += dx
	r.Top += dy
	return r
}

// Scale returns r with every coordinate multiplied by k.
func (r Rect) Scale(k float64) Rect {
	return Rect{Left: r.Left * k, Top: r.Top * k, Width: r.Width * k, Height: r.Height * k}
}

// Inset shrinks r by d on every side. The result never has negative size.
func (r Rect) Inset(d float64) Rect {
	w := math.Max(0, r.Width-2*d)
	h := math.Max(0, r.Height-2*d)
	return Rect{Left: r.Left + d, Top: r.Top + d, Width: w, Height: h}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
