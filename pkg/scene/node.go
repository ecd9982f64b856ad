package scene

import (
	"image"

	"github.com/matzehuels/printframe/pkg/fonts"
	"github.com/matzehuels/printframe/pkg/geom"
	"github.com/matzehuels/printframe/pkg/placement"
)

// NodeID addresses a node in its graph's arena.
type NodeID int

// Kind tags the variant a Node holds.
type Kind uint8

const (
	KindImage Kind = iota
	KindText
	KindShape
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	case KindShape:
		return "shape"
	case KindGroup:
		return "group"
	}
	return "unknown"
}

// Node is a tagged variant. Exactly the field matching Kind is set.
type Node struct {
	Kind   Kind
	Hidden bool

	Image *ImageNode
	Text  *TextNode
	Shape *ShapeNode
	Group *GroupNode
}

// Printable reports whether n belongs in a print. Placeholder groups mark
// empty slots while editing and are left out of exports.
func (n *Node) Printable() bool {
	return n.Kind != KindGroup || !n.Group.Placeholder
}

// Filters is the per-image filter chain.
type Filters struct {
	Grayscale bool `json:"grayscale" toml:"grayscale"`
	// Brightness is an offset in percent, -100..100.
	Brightness float64 `json:"brightness" toml:"brightness"`
}

// ImageNode is a decoded photo shown through a slot window.
type ImageNode struct {
	ID    string
	Image image.Image
	Slot  int

	placement.Placement
	Filters Filters

	// Mask further restricts the clip to a glyph outline.
	Mask geom.Path
}

// Align is the horizontal anchor of a text node.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// lineHeight is the text box height relative to the font size.
const lineHeight = 1.2

// TextNode is a single line of text anchored at (X, Y); Y is the vertical
// centre of the line.
type TextNode struct {
	Label Label
	Text  string
	Font  string
	Fill  string
	Align Align
	X, Y  float64

	// BaseSize is the requested size; Size is BaseSize shrunk to MaxWidth.
	BaseSize float64
	Size     float64
	MaxWidth float64

	// Width is the measured advance of Text at Size.
	Width float64
}

// Fit recomputes Size and Width for the current text.
func (t *TextNode) Fit() {
	t.Size = t.BaseSize
	size, err := fonts.FitSize(t.Font, t.BaseSize, t.Text, t.MaxWidth)
	if err == nil {
		t.Size = size
	}
	w, err := fonts.Measure(t.Font, t.Size, t.Text)
	if err != nil {
		// Unknown family: approximate with half an em per rune.
		w = float64(len([]rune(t.Text))) * t.Size / 2
	}
	t.Width = w
}

// Bounds returns the text's box on the canvas.
func (t *TextNode) Bounds() geom.Rect {
	if t.Text == "" || t.Size <= 0 {
		return geom.Rect{}
	}
	left := t.X
	switch t.Align {
	case AlignCenter:
		left -= t.Width / 2
	case AlignRight:
		left -= t.Width
	}
	h := t.Size * lineHeight
	return geom.R(left, t.Y-h/2, t.Width, h)
}

// ShapeRole says what a shape is for.
type ShapeRole uint8

const (
	RoleBackground ShapeRole = iota
	RoleBorder
	RolePlaceholder
)

// ShapeNode is a filled and/or stroked rectangle, or a filled glyph mask.
type ShapeNode struct {
	Role        ShapeRole
	Rect        geom.Rect
	Mask        geom.Path
	Fill        string
	Stroke      string
	StrokeWidth float64
}

// Bounds returns the painted area. Unpainted shapes are empty.
func (s *ShapeNode) Bounds() geom.Rect {
	stroked := s.Stroke != "" && s.StrokeWidth > 0
	if s.Fill == "" && !stroked {
		return geom.Rect{}
	}
	r := s.Rect
	if !s.Mask.Empty() {
		r = s.Mask.Bounds()
	}
	if stroked {
		r = r.Inset(-s.StrokeWidth / 2)
	}
	return r
}

// GroupNode bundles children drawn in order.
type GroupNode struct {
	Children []NodeID
	// Placeholder marks the stand-in for an empty slot.
	Placeholder bool
	Slot        int
}
