package layout

import (
	"math"
	"unicode/utf8"

	"github.com/matzehuels/printframe/pkg/geom"
)

// Calibrated geometry of the fixed-slot templates, as fractions of the canvas.
var (
	dualCanvas = Canvas{Width: 1200, Height: 900, Padding: 40}
	dualLeft   = geom.R(0.05, 0.08, 0.43, 0.70)
	dualRight  = geom.R(0.52, 0.08, 0.43, 0.70)
	dualFooter = geom.R(0.05, 0.82, 0.90, 0.12)

	lettersCanvas = Canvas{Width: 1600, Height: 900, Padding: 40}
	lettersBand   = geom.R(0.05, 0.18, 0.90, 0.56)
	lettersFooter = geom.R(0.05, 0.80, 0.90, 0.12)

	shirtCanvas    = Canvas{Width: 1000, Height: 1200, Padding: 40}
	shirtPrintArea = geom.R(0.27, 0.22, 0.46, 0)
)

// ReferenceWord is the word the lettered template was calibrated against.
const ReferenceWord = "LOVE"

// GlyphSource supplies glyph outlines in a y-down unit space with the
// baseline at y=0. Advance is the horizontal distance to the next glyph.
type GlyphSource interface {
	Glyph(r rune) (outline geom.Path, advance float64, ok bool)
}

func fracRect(c Canvas, f geom.Rect) geom.Rect {
	return geom.R(f.Left*c.Width, f.Top*c.Height, f.Width*c.Width, f.Height*c.Height)
}

// DualWindow returns the two calibrated windows of the dual layout.
func DualWindow() Result {
	c := dualCanvas
	left, right := fracRect(c, dualLeft), fracRect(c, dualRight)
	return Result{
		Template: TemplateDual,
		Canvas:   c,
		Slots: []Slot{
			{X: left.Left, Y: left.Top, Width: left.Width, Height: left.Height, Column: 0},
			{X: right.Left, Y: right.Top, Width: right.Width, Height: right.Height, Column: 1},
		},
		FooterBand:  fracRect(c, dualFooter),
		TotalHeight: c.Height,
	}
}

// Letters lays word out as glyph-shaped windows. The reference word is fitted
// into the calibrated band; any other word is normalized to the reference's
// height and centre. Runes the source cannot outline are skipped.
func Letters(word string, src GlyphSource) Result {
	c := lettersCanvas
	band := fracRect(c, lettersBand)
	res := Result{
		Template:    TemplateLetters,
		Canvas:      c,
		FooterBand:  fracRect(c, lettersFooter),
		TotalHeight: c.Height,
	}
	if src == nil || word == "" {
		return res
	}

	ref := fitToBand(setWord(ReferenceWord, src), band)
	glyphs := setWord(word, src)
	if word != ReferenceWord {
		glyphs = NormalizeAll(ref, glyphs)
	} else {
		glyphs = ref
	}

	for i, g := range glyphs {
		if g.Empty() {
			continue
		}
		b := g.Bounds()
		res.Slots = append(res.Slots, Slot{
			X: b.Left, Y: b.Top, Width: b.Width, Height: b.Height,
			Column: i, Mask: g,
		})
	}
	return res
}

// setWord places the glyphs of word side by side at unit scale.
func setWord(word string, src GlyphSource) []geom.Path {
	out := make([]geom.Path, 0, utf8.RuneCountInString(word))
	var pen float64
	for _, r := range word {
		outline, adv, ok := src.Glyph(r)
		if !ok {
			out = append(out, geom.Path{})
			continue
		}
		out = append(out, outline.Transform(1, pen, 0))
		pen += adv
	}
	return out
}

// fitToBand uniformly scales the glyph set to fit band and centres it there.
func fitToBand(glyphs []geom.Path, band geom.Rect) []geom.Path {
	b := geom.UnionBounds(glyphs)
	if b.Empty() {
		return glyphs
	}
	k := math.Min(band.Width/b.Width, band.Height/b.Height)
	dx := band.CenterX() - b.CenterX()*k
	dy := band.CenterY() - b.CenterY()*k
	out := make([]geom.Path, len(glyphs))
	for i, g := range glyphs {
		out[i] = g.Transform(k, dx, dy)
	}
	return out
}

// Shirt lays out a grid inside the garment's chest print area. The garment
// canvas only grows when the grid would run past its lower margin.
func Shirt(count int, aspect float64, style Style) Result {
	c := shirtCanvas
	area := fracRect(c, shirtPrintArea)
	res := gridIn(c, area, count, aspect, style)
	res.Template = TemplateShirt

	bottomMargin := c.Height * 0.08
	res.TotalHeight = math.Max(c.Height, res.TotalHeight+bottomMargin)
	res.Canvas.Height = res.TotalHeight
	return res
}
