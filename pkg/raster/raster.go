// Package raster paints a scene graph region into a bitmap.
//
// Rendering walks the printable nodes in draw order, so placeholders of empty
// slots never reach the bitmap. Images are filtered, scaled about
// their centre and clipped to their window (or glyph mask); texts are set
// with faces sized for the output resolution so they stay crisp; shapes are
// filled and stroked. Pixels outside every node stay fully transparent.
package raster

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"

	"github.com/matzehuels/printframe/pkg/errors"
	"github.com/matzehuels/printframe/pkg/fonts"
	"github.com/matzehuels/printframe/pkg/geom"
	"github.com/matzehuels/printframe/pkg/scene"
)

// DefaultMaxPixels bounds the size of a single render.
const DefaultMaxPixels = 300_000_000

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger for debug output.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMaxPixels overrides [DefaultMaxPixels].
func WithMaxPixels(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxPixels = n
		}
	}
}

// Renderer rasterizes graphs. It is stateless and safe for concurrent use.
type Renderer struct {
	logger    *log.Logger
	maxPixels int
}

// New returns a renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{logger: log.Default(), maxPixels: DefaultMaxPixels}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render paints region of g at k output pixels per logical unit.
func Render(ctx context.Context, g *scene.Graph, region geom.Rect, k float64) (image.Image, error) {
	return New().Render(ctx, g, region, k)
}

// Render paints region of g at k output pixels per logical unit. The graph
// is only read. Failures are reported as RASTERIZATION errors.
func (r *Renderer) Render(ctx context.Context, g *scene.Graph, region geom.Rect, k float64) (img image.Image, err error) {
	w := int(math.Round(region.Width * k))
	h := int(math.Round(region.Height * k))
	if w <= 0 || h <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return nil, errors.New(errors.ErrCodeRasterization, "invalid output size %dx%d", w, h)
	}
	if w*h > r.maxPixels {
		return nil, errors.New(errors.ErrCodeRasterization, "output %dx%d exceeds %d pixels", w, h, r.maxPixels)
	}

	defer func() {
		if p := recover(); p != nil {
			img = nil
			err = errors.Wrap(errors.ErrCodeRasterization, fmt.Errorf("%v", p), "render %dx%d", w, h)
		}
	}()

	p := &painter{
		dc:     gg.NewContext(w, h),
		region: region,
		k:      k,
	}
	g.WalkPrintable(func(_ scene.NodeID, n *scene.Node) bool {
		if err = ctx.Err(); err != nil {
			return false
		}
		switch n.Kind {
		case scene.KindShape:
			p.shape(n.Shape)
		case scene.KindImage:
			p.image(n.Image)
		case scene.KindText:
			err = p.text(n.Text)
		}
		return err == nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeRasterization, err, "render")
	}

	r.logger.Debug("rasterized", "width", w, "height", h, "multiplier", k)
	return p.dc.Image(), nil
}

// painter maps logical coordinates into the output bitmap.
type painter struct {
	dc     *gg.Context
	region geom.Rect
	k      float64
}

func (p *painter) pt(x, y float64) (float64, float64) {
	return (x - p.region.Left) * p.k, (y - p.region.Top) * p.k
}

func (p *painter) rect(r geom.Rect) {
	x, y := p.pt(r.Left, r.Top)
	p.dc.DrawRectangle(x, y, r.Width*p.k, r.Height*p.k)
}

func (p *painter) path(path geom.Path) {
	for _, c := range path.Contours {
		if len(c) == 0 {
			continue
		}
		p.dc.NewSubPath()
		for i, pt := range c {
			x, y := p.pt(pt.X, pt.Y)
			if i == 0 {
				p.dc.MoveTo(x, y)
			} else {
				p.dc.LineTo(x, y)
			}
		}
		p.dc.ClosePath()
	}
}

func (p *painter) shape(s *scene.ShapeNode) {
	if s.Fill != "" {
		if s.Mask.Empty() {
			p.rect(s.Rect)
		} else {
			p.dc.SetFillRuleEvenOdd()
			p.path(s.Mask)
		}
		p.dc.SetHexColor(s.Fill)
		p.dc.Fill()
	}
	if s.Stroke != "" && s.StrokeWidth > 0 {
		p.rect(s.Rect)
		p.dc.SetHexColor(s.Stroke)
		p.dc.SetLineWidth(s.StrokeWidth * p.k)
		p.dc.Stroke()
	}
}

func (p *painter) image(n *scene.ImageNode) {
	if n.Image == nil {
		return
	}
	if n.Clip != nil {
		if n.Mask.Empty() {
			p.rect(*n.Clip)
		} else {
			p.dc.SetFillRuleEvenOdd()
			p.path(n.Mask)
		}
		p.dc.Clip()
		// Pop does not restore the clip mask.
		defer p.dc.ResetClip()
	}

	src := ApplyFilters(n.Image, n.Filters)
	sx, sy := n.ScaleX*p.k, n.ScaleY*p.k
	src, sx, sy = prescale(src, sx, sy)

	x, y := p.pt(n.X, n.Y)
	p.dc.Push()
	p.dc.Translate(x, y)
	p.dc.Scale(sx, sy)
	p.dc.DrawImageAnchored(src, 0, 0, 0.5, 0.5)
	p.dc.Pop()
}

func (p *painter) text(t *scene.TextNode) error {
	if t.Text == "" || t.Size <= 0 {
		return nil
	}
	face, err := fonts.NewFace(t.Font, t.Size*p.k)
	if err != nil {
		return err
	}
	defer face.Close()

	var ax float64
	switch t.Align {
	case scene.AlignCenter:
		ax = 0.5
	case scene.AlignRight:
		ax = 1
	}
	x, y := p.pt(t.X, t.Y)
	p.dc.SetFontFace(face)
	p.dc.SetHexColor(t.Fill)
	p.dc.DrawStringAnchored(t.Text, x, y, ax, 0.5)
	return nil
}
