package scene

import (
	"context"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/printframe/pkg/fonts"
	"github.com/matzehuels/printframe/pkg/geom"
	"github.com/matzehuels/printframe/pkg/layout"
	"github.com/matzehuels/printframe/pkg/observability"
)

// placeholderIcon is drawn in the middle of empty slots.
const placeholderIcon = "+"

// minStrip is the smallest derived text band worth drawing into.
const minStrip = 16

// bandScale sizes an added text band relative to its font size, leaving
// room above and below the line.
const bandScale = 1.6

// Builder assembles graphs from layout results.
type Builder struct {
	defaults NodeStyleDefaults
	glyphs   layout.GlyphSource
	logger   *log.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithGlyphs sets the outline source of the lettered template.
func WithGlyphs(src layout.GlyphSource) BuilderOption {
	return func(b *Builder) { b.glyphs = src }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder returns a builder using defaults. Unless [WithGlyphs] is given,
// letters are outlined with the defaults' letter font.
func NewBuilder(defaults NodeStyleDefaults, opts ...BuilderOption) *Builder {
	b := &Builder{defaults: defaults, logger: log.Default()}
	for _, opt := range opts {
		opt(b)
	}
	if b.glyphs == nil {
		if o, err := fonts.NewOutlines(defaults.LetterFont); err == nil {
			b.glyphs = o
		}
	}
	return b
}

// Defaults returns the builder's style defaults.
func (b *Builder) Defaults() NodeStyleDefaults { return b.defaults }

// Layout computes the layout p asks for. Texts whose band the style leaves
// at zero get one sized from the defaults, so a header or signature is never
// dropped for lack of room.
func (b *Builder) Layout(p Params) (layout.Result, error) {
	return layout.Compute(layout.Request{
		Template:    p.Template,
		Count:       p.SlotCount(),
		AspectRatio: p.AspectRatio,
		Style:       b.style(p),
		Word:        p.Word,
		Glyphs:      b.glyphs,
	})
}

func (b *Builder) style(p Params) layout.Style {
	st := p.Style
	need := p.textBands()
	if need.header {
		st.Header = b.defaults.HeaderSize * bandScale
	}
	if need.footer {
		st.Footer = b.defaults.FooterSize * bandScale
	}
	return st
}

// Compose lays out p and builds its graph.
func (b *Builder) Compose(ctx context.Context, p Params) (*Graph, error) {
	start := time.Now()
	res, err := b.Layout(p)
	if err != nil {
		return nil, err
	}
	g := b.Build(res, p)
	d := time.Since(start)
	b.logger.Debug("built scene", "template", res.Template, "slots", len(res.Slots), "nodes", g.Len(), "duration", d)
	observability.Scene().OnBuild(ctx, res.Template, g.Len(), d)
	return g, nil
}

// Build produces a complete graph for res from p. Slots beyond the supplied
// images, and slots whose image is nil, get a placeholder.
func (b *Builder) Build(res layout.Result, p Params) *Graph {
	canvas := res.Canvas
	canvas.Height = res.TotalHeight
	g := NewGraph(res.Template, canvas)
	full := geom.R(0, 0, canvas.Width, canvas.Height)

	g.add(Node{Kind: KindShape, Shape: &ShapeNode{
		Role: RoleBackground,
		Rect: full,
		Fill: p.Background,
	}})

	g.slots = make([]NodeID, 0, len(res.Slots))
	for i, slot := range res.Slots {
		var id NodeID
		if i < len(p.Images) && p.Images[i].Image != nil {
			id = g.add(Node{Kind: KindImage, Image: newImageNode(i, slot.Rect(), slot.Mask, p.Images[i], p.Filters, p.AdjustAt(i))})
		} else {
			id = b.placeholder(g, i, slot)
		}
		g.slots = append(g.slots, id)
	}

	header, footer := headerBand(res, canvas), footerBand(res, canvas)
	pad := b.defaults.TextPadding
	b.text(g, p, LabelHeader, header, b.defaults.HeaderFont, b.defaults.HeaderSize,
		AlignCenter, header.CenterX(), header.Width-2*pad)
	b.text(g, p, LabelSignature, footer, b.defaults.Font, b.defaults.FooterSize,
		AlignLeft, footer.Left+pad, footer.Width/2-2*pad)
	b.text(g, p, LabelDate, footer, b.defaults.Font, b.defaults.FooterSize,
		AlignRight, footer.Right()-pad, footer.Width/2-2*pad)

	if p.Style.Border > 0 {
		g.add(Node{Kind: KindShape, Shape: &ShapeNode{
			Role:        RoleBorder,
			Rect:        full.Inset(p.Style.Border / 2),
			Stroke:      b.defaults.borderColor(p.BorderColor),
			StrokeWidth: p.Style.Border,
		}})
	}
	return g
}

// placeholder adds the stand-in group of an empty slot.
func (b *Builder) placeholder(g *Graph, i int, slot layout.Slot) NodeID {
	r := slot.Rect()
	box := g.push(Node{Kind: KindShape, Shape: &ShapeNode{
		Role: RolePlaceholder,
		Rect: r,
		Mask: slot.Mask,
		Fill: b.defaults.PlaceholderFill,
	}})
	icon := &TextNode{
		Text:     placeholderIcon,
		Font:     fonts.Bold,
		Fill:     b.defaults.PlaceholderIcon,
		Align:    AlignCenter,
		X:        r.CenterX(),
		Y:        r.CenterY(),
		BaseSize: math.Min(r.Width, r.Height) * 0.35,
	}
	icon.Fit()
	iconID := g.push(Node{Kind: KindText, Text: icon})
	return g.add(Node{Kind: KindGroup, Group: &GroupNode{
		Children:    []NodeID{box, iconID},
		Placeholder: true,
		Slot:        i,
	}})
}

// text adds the node of a labelled text field. Fields without a band are
// kept hidden so textual updates still find them.
func (b *Builder) text(g *Graph, p Params, label Label, band geom.Rect, family string, size float64, align Align, x, maxWidth float64) {
	tp := p.Texts[label]
	t := &TextNode{
		Label:    label,
		Text:     tp.Text,
		Font:     family,
		Fill:     b.defaults.textColor(tp.Color),
		Align:    align,
		X:        x,
		Y:        band.CenterY(),
		BaseSize: math.Min(size, band.Height*0.7),
		MaxWidth: math.Max(maxWidth, 0),
	}
	t.Fit()
	g.add(Node{Kind: KindText, Text: t, Hidden: band.Empty()})
}

// headerBand is the layout's header band, or the strip above the first
// slot when the template has none.
func headerBand(res layout.Result, canvas layout.Canvas) geom.Rect {
	if !res.HeaderBand.Empty() {
		return res.HeaderBand
	}
	if len(res.Slots) == 0 {
		return geom.Rect{}
	}
	top := math.Inf(1)
	for _, s := range res.Slots {
		top = math.Min(top, s.Y)
	}
	return strip(geom.R(0, 0, canvas.Width, top))
}

// footerBand is the layout's footer band, or the strip below the last slot.
func footerBand(res layout.Result, canvas layout.Canvas) geom.Rect {
	if !res.FooterBand.Empty() {
		return res.FooterBand
	}
	if len(res.Slots) == 0 {
		return geom.Rect{}
	}
	bottom := math.Inf(-1)
	for _, s := range res.Slots {
		bottom = math.Max(bottom, s.Rect().Bottom())
	}
	return strip(geom.FromEdges(0, bottom, canvas.Width, canvas.Height))
}

func strip(r geom.Rect) geom.Rect {
	if r.Height < minStrip {
		return geom.Rect{}
	}
	return r
}
