package fonts

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/printframe/pkg/geom"
)

// outlinePPEM is the resolution glyphs are loaded at. Coordinates are
// divided by it again so outlines come out in em units.
const outlinePPEM = 1000

// Curve flattening resolution.
const (
	quadSteps  = 8
	cubicSteps = 12
)

// Outlines turns runes into polygonal glyph outlines in em units with the
// baseline at y=0 and y growing downwards. It satisfies layout.GlyphSource.
// Outlines is safe for concurrent use.
type Outlines struct {
	f   *opentype.Font
	mu  sync.Mutex
	buf sfnt.Buffer
}

// NewOutlines returns an outline source for family name.
func NewOutlines(name string) (*Outlines, error) {
	f, err := Font(name)
	if err != nil {
		return nil, err
	}
	return &Outlines{f: f}, nil
}

// Glyph returns the outline and advance of r. ok is false when the font has
// no glyph for r. Blank glyphs such as space return an empty outline.
func (o *Outlines) Glyph(r rune) (geom.Path, float64, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	idx, err := o.f.GlyphIndex(&o.buf, r)
	if err != nil || idx == 0 {
		return geom.Path{}, 0, false
	}
	ppem := fixed.I(outlinePPEM)
	adv, err := o.f.GlyphAdvance(&o.buf, idx, ppem, font.HintingNone)
	if err != nil {
		return geom.Path{}, 0, false
	}
	segs, err := o.f.LoadGlyph(&o.buf, idx, ppem, nil)
	if err != nil {
		return geom.Path{}, 0, false
	}
	return flatten(segs), unit(adv), true
}

func unit(v fixed.Int26_6) float64 { return fromFixed(v) / outlinePPEM }

func point(p fixed.Point26_6) geom.Point {
	return geom.Point{X: unit(p.X), Y: unit(p.Y)}
}

// flatten converts segments into closed polygons.
func flatten(segs sfnt.Segments) geom.Path {
	var (
		path geom.Path
		cur  []geom.Point
		pen  geom.Point
	)
	closeContour := func() {
		if len(cur) > 2 {
			path.Contours = append(path.Contours, cur)
		}
		cur = nil
	}
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			closeContour()
			pen = point(s.Args[0])
			cur = append(cur, pen)
		case sfnt.SegmentOpLineTo:
			pen = point(s.Args[0])
			cur = append(cur, pen)
		case sfnt.SegmentOpQuadTo:
			c, end := point(s.Args[0]), point(s.Args[1])
			for i := 1; i <= quadSteps; i++ {
				t := float64(i) / quadSteps
				cur = append(cur, quad(pen, c, end, t))
			}
			pen = end
		case sfnt.SegmentOpCubeTo:
			c1, c2, end := point(s.Args[0]), point(s.Args[1]), point(s.Args[2])
			for i := 1; i <= cubicSteps; i++ {
				t := float64(i) / cubicSteps
				cur = append(cur, cubic(pen, c1, c2, end, t))
			}
			pen = end
		}
	}
	closeContour()
	return path
}

func quad(p0, p1, p2 geom.Point, t float64) geom.Point {
	u := 1 - t
	return geom.Point{
		X: u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
		Y: u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
	}
}

func cubic(p0, p1, p2, p3 geom.Point, t float64) geom.Point {
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return geom.Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}
