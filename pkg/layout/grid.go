package layout

import (
	"github.com/matzehuels/printframe/pkg/geom"
)

// Canvas is the logical drawing surface of a template. Padding is a
// symmetric margin reserved for editor chrome around the artwork; it is not
// part of the exported content.
type Canvas struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Padding float64 `json:"padding"`
}

// Padded returns the size of the canvas including its padding on both
// sides, the extent a view has to fit.
func (c Canvas) Padded() (w, h float64) {
	return c.Width + 2*c.Padding, c.Height + 2*c.Padding
}

// DefaultCanvas is the logical surface used by the grid templates.
var DefaultCanvas = Canvas{Width: 1000, Height: 1000, Padding: 40}

// Style holds the geometric style flags of a grid layout, in logical units.
type Style struct {
	// Gap is the spacing between neighbouring photos.
	Gap float64 `json:"gap" toml:"gap"`
	// Border is the frame width around the whole artwork.
	Border float64 `json:"border" toml:"border"`
	// Header is the height of the title band above the photos.
	Header float64 `json:"header" toml:"header"`
	// Footer is the height of the signature/date band below the photos.
	Footer float64 `json:"footer" toml:"footer"`
}

// Slot is one photo window. It owns no content.
type Slot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Column int     `json:"column"`
	Row    int     `json:"row"`

	// Mask, when non-empty, further restricts the window to a glyph outline.
	Mask geom.Path `json:"-"`
}

// Rect returns the slot as a rectangle.
func (s Slot) Rect() geom.Rect { return geom.R(s.X, s.Y, s.Width, s.Height) }

// Result is the output of a layout computation.
type Result struct {
	Template    string  `json:"template"`
	Canvas      Canvas  `json:"canvas"`
	Slots       []Slot  `json:"slots"`
	Columns     []int   `json:"columns,omitempty"`
	TotalHeight float64 `json:"total_height"`

	// HeaderBand and FooterBand locate the text bands, if any.
	HeaderBand geom.Rect `json:"header_band"`
	FooterBand geom.Rect `json:"footer_band"`
}

// Grid lays out count photos of the given aspect ratio (width/height) on
// canvas. Columns share the content width; each row is columnWidth/aspect
// tall; columns are top-aligned. The returned canvas height equals
// TotalHeight. A non-positive aspect ratio is treated as square.
func Grid(canvas Canvas, count int, aspect float64, style Style) Result {
	return gridIn(canvas, geom.R(0, 0, canvas.Width, 0), count, aspect, style)
}

// gridIn lays the grid out inside area; only area's Left, Top and Width are
// used, the height follows from the content.
func gridIn(canvas Canvas, area geom.Rect, count int, aspect float64, style Style) Result {
	if aspect <= 0 {
		aspect = 1
	}
	cols := Columns(count)

	contentLeft := area.Left + style.Border
	contentTop := area.Top + style.Border + style.Header
	contentWidth := area.Width - 2*style.Border
	if contentWidth < 0 {
		contentWidth = 0
	}

	res := Result{Template: TemplateGrid, Columns: cols}
	var innerHeight float64
	if len(cols) > 0 {
		colWidth := contentWidth / float64(len(cols))
		rowHeight := colWidth / aspect
		innerHeight = float64(MaxRows(cols)) * rowHeight

		res.Slots = make([]Slot, 0, count)
		for c, n := range cols {
			for r := 0; r < n; r++ {
				cell := geom.R(
					contentLeft+float64(c)*colWidth,
					contentTop+float64(r)*rowHeight,
					colWidth,
					rowHeight,
				).Inset(style.Gap / 2)
				res.Slots = append(res.Slots, Slot{
					X: cell.Left, Y: cell.Top,
					Width: cell.Width, Height: cell.Height,
					Column: c, Row: r,
				})
			}
		}
	}

	if style.Header > 0 {
		res.HeaderBand = geom.R(contentLeft, area.Top+style.Border, contentWidth, style.Header)
	}
	if style.Footer > 0 {
		res.FooterBand = geom.R(contentLeft, contentTop+innerHeight, contentWidth, style.Footer)
	}

	res.TotalHeight = area.Top + 2*style.Border + style.Header + innerHeight + style.Footer
	res.Canvas = canvas
	res.Canvas.Height = res.TotalHeight
	return res
}
