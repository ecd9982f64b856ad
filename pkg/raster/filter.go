package raster

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/printframe/pkg/scene"
)

// ApplyFilters returns img with the filter chain applied. The input is never
// modified; without filters img itself is returned.
func ApplyFilters(img image.Image, f scene.Filters) image.Image {
	out := img
	if f.Grayscale {
		out = imaging.Grayscale(out)
	}
	if f.Brightness != 0 {
		out = imaging.AdjustBrightness(out, math.Max(-100, math.Min(100, f.Brightness)))
	}
	return out
}

// prescale shrinks img with a Lanczos filter when it would be drawn below
// its native resolution, returning the scales left to apply.
func prescale(img image.Image, sx, sy float64) (image.Image, float64, float64) {
	ax, ay := math.Abs(sx), math.Abs(sy)
	if ax >= 1 || ay >= 1 || ax == 0 || ay == 0 {
		return img, sx, sy
	}
	b := img.Bounds()
	tw := int(math.Ceil(float64(b.Dx()) * ax))
	th := int(math.Ceil(float64(b.Dy()) * ay))
	if tw < 1 || th < 1 {
		return img, sx, sy
	}
	small := imaging.Resize(img, tw, th, imaging.Lanczos)
	return small,
		sx * float64(b.Dx()) / float64(tw),
		sy * float64(b.Dy()) / float64(th)
}
