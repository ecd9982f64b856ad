package geom

import "math"

// Path is a set of closed polygonal contours, used for glyph masks.
type Path struct {
	Contours [][]Point
}

// Empty reports whether the path has no points.
func (p Path) Empty() bool {
	for _, c := range p.Contours {
		if len(c) > 0 {
			return false
		}
	}
	return true
}

// Bounds returns the axis-aligned bounding box of all contour points.
func (p Path) Bounds() Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range p.Contours {
		for _, pt := range c {
			minX = math.Min(minX, pt.X)
			minY = math.Min(minY, pt.Y)
			maxX = math.Max(maxX, pt.X)
			maxY = math.Max(maxY, pt.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return Rect{}
	}
	return FromEdges(minX, minY, maxX, maxY)
}

// Transform returns a copy of p with every point mapped to (x*k+dx, y*k+dy).
func (p Path) Transform(k, dx, dy float64) Path {
	out := Path{Contours: make([][]Point, len(p.Contours))}
	for i, c := range p.Contours {
		nc := make([]Point, len(c))
		for j, pt := range c {
			nc[j] = Point{X: pt.X*k + dx, Y: pt.Y*k + dy}
		}
		out.Contours[i] = nc
	}
	return out
}

// UnionBounds returns the bounding box enclosing every path in ps.
func UnionBounds(ps []Path) Rect {
	var r Rect
	for _, p := range ps {
		r = r.Union(p.Bounds())
	}
	return r
}
