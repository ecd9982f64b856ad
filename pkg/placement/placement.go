// Package placement keeps a photo covering its clip window while the user drags
// and scales it.
//
// Two invariants hold after [Enforce]:
//
//   - Cover: the scaled image is at least as large as the clip region on both
//     axes, so no transparent gap shows through the window.
//   - No gap: the scaled image's bounding box contains the clip region.
//
// Enforce is total, idempotent and allocation-free; it is called on every
// pointer-move tick.
package placement

import (
	"math"

	"github.com/matzehuels/printframe/pkg/geom"
)

// Epsilon absorbs floating-point slack in the invariant checks.
const Epsilon = 1e-6

// Placement is the mutable geometry of an image node. X and Y locate the
// visual centre of the scaled image on the canvas.
type Placement struct {
	NativeWidth  float64
	NativeHeight float64

	X, Y           float64
	ScaleX, ScaleY float64

	// Clip is the absolute window the image is seen through. Nil means the
	// image is unconstrained.
	Clip *geom.Rect
}

// Bounds returns the scaled image's bounding box on the canvas.
func (p *Placement) Bounds() geom.Rect {
	w := p.NativeWidth * math.Abs(p.ScaleX)
	h := p.NativeHeight * math.Abs(p.ScaleY)
	return geom.Rect{Left: p.X - w/2, Top: p.Y - h/2, Width: w, Height: h}
}

// VisibleBounds returns the clip region if there is one, otherwise the image
// bounds.
func (p *Placement) VisibleBounds() geom.Rect {
	if p.Clip != nil {
		return *p.Clip
	}
	return p.Bounds()
}

// CoverScale is the smallest uniform scale at which an image of the given
// native size covers clip.
func CoverScale(nativeW, nativeH float64, clip geom.Rect) float64 {
	if nativeW <= 0 || nativeH <= 0 {
		return 1
	}
	return math.Max(clip.Width/nativeW, clip.Height/nativeH)
}

// CoverPlace sets p to the cover-fit scale centred on clip and attaches clip.
func CoverPlace(p *Placement, clip geom.Rect) {
	c := clip
	p.Clip = &c
	s := CoverScale(p.NativeWidth, p.NativeHeight, clip)
	p.ScaleX, p.ScaleY = s, s
	p.X, p.Y = clip.CenterX(), clip.CenterY()
}

// Enforce applies the cover and boundary constraints to p in place. Nodes
// without a clip region or without a usable native size are left untouched.
func Enforce(p *Placement) {
	if p.Clip == nil || p.NativeWidth <= 0 || p.NativeHeight <= 0 {
		return
	}
	clip := *p.Clip

	// Cover.
	minScale := CoverScale(p.NativeWidth, p.NativeHeight, clip)
	if math.Abs(p.ScaleX) < minScale || math.Abs(p.ScaleY) < minScale {
		p.ScaleX = math.Copysign(minScale, nonZero(p.ScaleX))
		p.ScaleY = math.Copysign(minScale, nonZero(p.ScaleY))
	}

	// Boundary, each axis on its own.
	w := p.NativeWidth * math.Abs(p.ScaleX)
	h := p.NativeHeight * math.Abs(p.ScaleY)
	p.X = clampAxis(p.X, w, clip.Left, clip.Width)
	p.Y = clampAxis(p.Y, h, clip.Top, clip.Height)
}

// Valid reports whether p satisfies both invariants within [Epsilon].
func Valid(p *Placement) bool {
	if p.Clip == nil {
		return true
	}
	b := p.Bounds()
	if b.Width < p.Clip.Width-Epsilon || b.Height < p.Clip.Height-Epsilon {
		return false
	}
	return b.Contains(*p.Clip, Epsilon)
}

// clampAxis returns the centre coordinate that closes any gap between an image
// of the given extent and the clip span [lo, lo+span].
func clampAxis(center, extent, lo, span float64) float64 {
	hi := lo + span
	if extent <= span+Epsilon {
		// Within float slack of the window after cover: centre it.
		return lo + span/2
	}
	half := extent / 2
	if center-half > lo {
		center = lo + half
	}
	if center+half < hi {
		center = hi - half
	}
	return center
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
