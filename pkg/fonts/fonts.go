// Package fonts provides the embedded Go font families used for text nodes
// and lettered cut-out windows.
//
// The fonts ship with golang.org/x/image, making them available without
// external files. Parsed fonts are cached after first use; faces are cheap to
// create and must not be shared between goroutines.
package fonts

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Family names.
const (
	Regular = "regular"
	Bold    = "bold"
	Italic  = "italic"
	Mono    = "mono"
)

// Default is the family used when a text node names none.
const Default = Regular

var ttf = map[string][]byte{
	Regular: goregular.TTF,
	Bold:    gobold.TTF,
	Italic:  goitalic.TTF,
	Mono:    gomono.TTF,
}

// Cache for parsed fonts (parsed once on first access).
var (
	parsed   = map[string]*opentype.Font{}
	parsedMu sync.Mutex
)

// Families returns the available family names, sorted.
func Families() []string {
	out := make([]string, 0, len(ttf))
	for name := range ttf {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Font returns the parsed font of family name. An empty name selects [Default].
func Font(name string) (*opentype.Font, error) {
	if name == "" {
		name = Default
	}
	parsedMu.Lock()
	defer parsedMu.Unlock()
	if f, ok := parsed[name]; ok {
		return f, nil
	}
	data, ok := ttf[name]
	if !ok {
		return nil, fmt.Errorf("unknown font family %q", name)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	parsed[name] = f
	return f, nil
}

// NewFace returns a new face of family name at size points (72 dpi, so one
// point equals one logical unit).
func NewFace(name string, size float64) (font.Face, error) {
	f, err := Font(name)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// Measure returns the advance width of s set in family name at size, in
// logical units.
func Measure(name string, size float64, s string) (float64, error) {
	face, err := NewFace(name, size)
	if err != nil {
		return 0, err
	}
	defer face.Close()
	return fromFixed(font.MeasureString(face, s)), nil
}

// FitSize returns the largest size not above size at which s fits within
// maxWidth. A non-positive maxWidth disables the budget.
func FitSize(name string, size float64, s string, maxWidth float64) (float64, error) {
	if maxWidth <= 0 || s == "" {
		return size, nil
	}
	w, err := Measure(name, size, s)
	if err != nil {
		return 0, err
	}
	if w <= maxWidth {
		return size, nil
	}
	// Advance widths scale linearly with size when unhinted.
	return size * maxWidth / w, nil
}

func fromFixed(v fixed.Int26_6) float64 { return float64(v) / 64 }
