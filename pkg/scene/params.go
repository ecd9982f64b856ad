package scene

import (
	"image"
	"math"

	"github.com/matzehuels/printframe/pkg/errors"
	"github.com/matzehuels/printframe/pkg/geom"
	"github.com/matzehuels/printframe/pkg/layout"
	"github.com/matzehuels/printframe/pkg/placement"
)

// Label names a text field of the composition.
type Label string

const (
	LabelHeader    Label = "header"
	LabelSignature Label = "signature"
	LabelDate      Label = "date"
)

// Labels lists the text fields in draw order.
var Labels = []Label{LabelHeader, LabelSignature, LabelDate}

// TextParams is the user-editable part of a text field.
type TextParams struct {
	Text  string `json:"text"`
	Color string `json:"color,omitempty"`
}

// ImageRef is a decoded photo and its stable identity.
type ImageRef struct {
	ID    string
	Image image.Image
}

// Params is a snapshot of everything the user can edit.
type Params struct {
	Template    string
	Images      []ImageRef
	AspectRatio float64
	// Slots is the number of windows; zero means one per image.
	Slots int
	// Word is the cut-out word of the lettered template.
	Word  string
	Style layout.Style

	Filters     Filters
	Background  string
	BorderColor string

	Texts map[Label]TextParams

	// Adjust holds the per-photo adjustments, indexed like Images. Missing
	// entries mean no adjustment.
	Adjust []Adjust
}

// AdjustAt returns the adjustment of image i.
func (p Params) AdjustAt(i int) Adjust {
	if i < 0 || i >= len(p.Adjust) {
		return Adjust{}
	}
	return p.Adjust[i]
}

// MaxZoom bounds [Adjust.Zoom].
const MaxZoom = 10

// Adjust moves and scales a photo inside its window, relative to the cover
// fit: the centre moves by (OffsetX, OffsetY) logical units and the scale is
// multiplied by Zoom, where zero means 1. The placement constraints have the
// last word, so zooming out below cover or dragging past an edge is clamped.
type Adjust struct {
	OffsetX float64 `json:"offset_x,omitempty" toml:"offset_x"`
	OffsetY float64 `json:"offset_y,omitempty" toml:"offset_y"`
	Zoom    float64 `json:"zoom,omitempty" toml:"zoom"`
}

// Validate rejects non-finite offsets and zooms outside [0, MaxZoom].
func (a Adjust) Validate() error {
	for _, v := range []float64{a.OffsetX, a.OffsetY, a.Zoom} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidInput, "photo adjustment must be finite")
		}
	}
	if a.Zoom < 0 || a.Zoom > MaxZoom {
		return errors.New(errors.ErrCodeInvalidInput, "photo zoom must be between 0 and %d, got %g", MaxZoom, a.Zoom)
	}
	return nil
}

// place cover-fits p into clip, applies a and enforces the constraints.
func (a Adjust) place(p *placement.Placement, clip geom.Rect) {
	placement.CoverPlace(p, clip)
	if a.Zoom > 0 {
		p.ScaleX *= a.Zoom
		p.ScaleY *= a.Zoom
	}
	p.X += a.OffsetX
	p.Y += a.OffsetY
	placement.Enforce(p)
}

// adjustOf reads back the adjustment that reproduces p.
func adjustOf(p *placement.Placement) Adjust {
	if p.Clip == nil {
		return Adjust{}
	}
	clip := *p.Clip
	cover := placement.CoverScale(p.NativeWidth, p.NativeHeight, clip)
	a := Adjust{
		OffsetX: snap(p.X-clip.CenterX(), 0),
		OffsetY: snap(p.Y-clip.CenterY(), 0),
		Zoom:    snap(math.Abs(p.ScaleX)/cover, 1),
	}
	if a.Zoom == 1 {
		a.Zoom = 0
	}
	return a
}

// snap returns want when v is within float noise of it.
func snap(v, want float64) float64 {
	if math.Abs(v-want) < placement.Epsilon {
		return want
	}
	return v
}

// SlotCount returns the number of windows the layout should provide.
func (p Params) SlotCount() int {
	if p.Slots > 0 {
		return p.Slots
	}
	return len(p.Images)
}

// Change classifies the difference between two snapshots. Higher values
// subsume lower ones.
type Change uint8

const (
	ChangeNone Change = iota
	ChangeTextual
	ChangeCosmetic
	ChangeStructural
)

func (c Change) String() string {
	switch c {
	case ChangeNone:
		return "none"
	case ChangeTextual:
		return "textual"
	case ChangeCosmetic:
		return "cosmetic"
	case ChangeStructural:
		return "structural"
	}
	return "unknown"
}

// Classify returns the highest class of change between prev and next.
func Classify(prev, next Params) Change {
	switch {
	case prev.Template != next.Template,
		prev.SlotCount() != next.SlotCount(),
		prev.AspectRatio != next.AspectRatio,
		prev.Word != next.Word,
		prev.Style != next.Style,
		prev.textBands() != next.textBands(),
		!sameImages(prev.Images, next.Images):
		return ChangeStructural
	case prev.Filters != next.Filters,
		!sameAdjust(prev, next),
		prev.Background != next.Background,
		prev.BorderColor != next.BorderColor:
		return ChangeCosmetic
	case !sameTexts(prev.Texts, next.Texts):
		return ChangeTextual
	}
	return ChangeNone
}

// bandNeeds records which text bands a snapshot asks the layout to add.
type bandNeeds struct{ header, footer bool }

// textBands reports the bands p needs but its style does not reserve:
// header text without a header band, or signature/date text without a
// footer band. Such bands are sized from the style defaults.
func (p Params) textBands() bandNeeds {
	has := func(l Label) bool { return p.Texts[l].Text != "" }
	return bandNeeds{
		header: p.Style.Header == 0 && has(LabelHeader),
		footer: p.Style.Footer == 0 && (has(LabelSignature) || has(LabelDate)),
	}
}

func sameImages(a, b []ImageRef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

func sameAdjust(a, b Params) bool {
	for i := range max(len(a.Adjust), len(b.Adjust)) {
		if a.AdjustAt(i) != b.AdjustAt(i) {
			return false
		}
	}
	return true
}

func sameTexts(a, b map[Label]TextParams) bool {
	for _, l := range Labels {
		if a[l] != b[l] {
			return false
		}
	}
	return true
}
