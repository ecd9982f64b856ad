package errors

import (
	"math"
	"regexp"
)

// Bounds accepted for export requests.
const (
	MinDPI     = 72
	MaxDPI     = 1200
	MinWidthCm = 1.0
	MaxWidthCm = 200.0
)

// ValidateDPI checks that dpi is a usable print density.
func ValidateDPI(dpi int) error {
	if dpi < MinDPI || dpi > MaxDPI {
		return New(ErrCodeInvalidInput, "dpi must be between %d and %d, got %d", MinDPI, MaxDPI, dpi)
	}
	return nil
}

// ValidateWidthCm checks the physical output width.
func ValidateWidthCm(cm float64) error {
	if math.IsNaN(cm) || cm < MinWidthCm || cm > MaxWidthCm {
		return New(ErrCodeInvalidInput, "width must be between %.0f and %.0f cm, got %v", MinWidthCm, MaxWidthCm, cm)
	}
	return nil
}

// ValidateAspectRatio checks a photo aspect ratio (width/height).
func ValidateAspectRatio(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return New(ErrCodeInvalidInput, "aspect ratio must be positive, got %v", r)
	}
	if r < 0.1 || r > 10 {
		return New(ErrCodeInvalidInput, "aspect ratio %v is out of range (0.1-10)", r)
	}
	return nil
}

// ValidatePalette checks a palette size; zero disables palette reduction.
func ValidatePalette(n int) error {
	if n == 0 {
		return nil
	}
	if n < 2 || n > 256 {
		return New(ErrCodeInvalidInput, "palette must be 0 (off) or between 2 and 256 colors, got %d", n)
	}
	return nil
}

// ValidateBrightness checks a brightness offset in percent.
func ValidateBrightness(b float64) error {
	if math.IsNaN(b) || b < -100 || b > 100 {
		return New(ErrCodeInvalidInput, "brightness must be between -100 and 100, got %v", b)
	}
	return nil
}

// hexColorRegex matches #rgb and #rrggbb colors.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateHexColor checks a CSS-style hex color. Empty is allowed and means
// "use the default".
func ValidateHexColor(s string) error {
	if s == "" {
		return nil
	}
	if !hexColorRegex.MatchString(s) {
		return New(ErrCodeInvalidColor, "invalid color %q (want #rgb or #rrggbb)", s)
	}
	return nil
}
