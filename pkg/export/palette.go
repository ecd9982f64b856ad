package export

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/ericpauley/go-quantize/quantize"
)

const (
	// maxSamples bounds the number of pixels the palette is computed from.
	maxSamples = 1 << 18

	// opaqueCutoff splits pixels into transparent ones, which map to the
	// dedicated transparent entry, and opaque ones, which are quantized on
	// RGB alone. Partially transparent edge pixels above the cutoff print
	// as solid colour.
	opaqueCutoff = 0x80
)

// Quantize reduces img to at most n palette entries. Transparent pixels get
// one entry of their own; the remaining entries are opaque colours chosen by
// median cut, and opaque pixels are mapped onto them with Floyd-Steinberg
// dithering. Opaque input pixels therefore stay opaque.
func Quantize(img image.Image, n int) *image.Paletted {
	b := img.Bounds()
	flat, transparent := flatten(img)

	colours := n
	if transparent {
		colours--
	}
	pal := MedianCut(img, max(colours, 1))

	// Transparent pixels take pal[0] exactly, so they add no dithering
	// error of their own.
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if flat.NRGBAAt(x, y).A == 0 {
				flat.Set(x, y, pal[0])
			}
		}
	}
	dst := image.NewPaletted(b, pal)
	draw.FloydSteinberg.Draw(dst, b, flat, b.Min)
	if !transparent {
		return dst
	}

	clearIdx := uint8(len(pal))
	dst.Palette = append(pal, color.NRGBA{})
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if isTransparent(img.At(x, y)) {
				dst.SetColorIndex(x, y, clearIdx)
			}
		}
	}
	return dst
}

// MedianCut returns at most n opaque colours representative of the opaque
// pixels of img. An image without opaque pixels yields a single black entry.
func MedianCut(img image.Image, n int) color.Palette {
	if n < 1 {
		n = 1
	}
	px := opaqueSamples(img)
	if px.Bounds().Empty() {
		return color.Palette{color.NRGBA{A: 0xff}}
	}
	q := quantize.MedianCutQuantizer{}
	pal := q.Quantize(make(color.Palette, 0, n), px)
	for i, c := range pal {
		nc := color.NRGBAModel.Convert(c).(color.NRGBA)
		nc.A = 0xff
		pal[i] = nc
	}
	if len(pal) == 0 {
		pal = append(pal, color.NRGBA{A: 0xff})
	}
	return pal
}

// flatten copies img into an NRGBA with every opaque pixel at full alpha
// and every transparent pixel cleared. It reports whether any pixel was
// transparent.
func flatten(img image.Image) (*image.NRGBA, bool) {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	transparent := false
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A < opaqueCutoff {
				transparent = true
				continue
			}
			c.A = 0xff
			out.SetNRGBA(x, y, c)
		}
	}
	return out, transparent
}

func isTransparent(c color.Color) bool {
	_, _, _, a := c.RGBA()
	return a>>8 < opaqueCutoff
}

// opaqueSamples lays the opaque pixels of img, strided over large images,
// out in a single row.
func opaqueSamples(img image.Image) *image.NRGBA {
	b := img.Bounds()
	step := 1
	for b.Dx()*b.Dy()/step > maxSamples {
		step++
	}
	px := make([]uint8, 0, 4*(b.Dx()*b.Dy()/step+1))
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if i%step == 0 {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				if c.A >= opaqueCutoff {
					px = append(px, c.R, c.G, c.B, 0xff)
				}
			}
			i++
		}
	}
	return &image.NRGBA{Pix: px, Stride: len(px), Rect: image.Rect(0, 0, len(px)/4, 1)}
}
