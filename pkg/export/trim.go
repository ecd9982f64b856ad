package export

import (
	"image"

	"github.com/disintegration/imaging"
)

// OpaqueBounds returns the smallest rectangle containing every pixel with
// non-zero alpha. It is empty when the image is fully transparent.
func OpaqueBounds(img image.Image) image.Rectangle {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1

	mark := func(x, y int) {
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}

	switch m := img.(type) {
	case *image.RGBA:
		alphaScan(m.Pix, m.Stride, b, mark)
	case *image.NRGBA:
		alphaScan(m.Pix, m.Stride, b, mark)
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
					mark(x, y)
				}
			}
		}
	}
	if maxX < minX {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// alphaScan visits 4-byte-per-pixel buffers whose alpha is the last byte.
func alphaScan(pix []byte, stride int, b image.Rectangle, mark func(x, y int)) {
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := pix[(y-b.Min.Y)*stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[(x-b.Min.X)*4+3] != 0 {
				mark(x, y)
			}
		}
	}
}

// AlphaTrim crops img to its opaque bounds. ok is false when no pixel is
// opaque.
func AlphaTrim(img image.Image) (out *image.NRGBA, rect image.Rectangle, ok bool) {
	rect = OpaqueBounds(img)
	if rect.Empty() {
		return nil, rect, false
	}
	return imaging.Crop(img, rect), rect, true
}
