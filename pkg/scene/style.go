package scene

import "github.com/matzehuels/printframe/pkg/fonts"

// NodeStyleDefaults carries the style values node constructors fall back to
// when a Params snapshot leaves them unset.
type NodeStyleDefaults struct {
	Font       string
	HeaderFont string
	LetterFont string

	HeaderSize float64
	FooterSize float64
	// TextPadding is the horizontal inset of texts inside their band.
	TextPadding float64

	TextColor   string
	BorderColor string

	PlaceholderFill string
	PlaceholderIcon string
}

// DefaultStyle returns the stock defaults.
func DefaultStyle() NodeStyleDefaults {
	return NodeStyleDefaults{
		Font:            fonts.Regular,
		HeaderFont:      fonts.Bold,
		LetterFont:      fonts.Bold,
		HeaderSize:      48,
		FooterSize:      24,
		TextPadding:     12,
		TextColor:       "#222222",
		BorderColor:     "#000000",
		PlaceholderFill: "#e6e6e6",
		PlaceholderIcon: "#9a9a9a",
	}
}

// textColor returns c or the default text colour.
func (d NodeStyleDefaults) textColor(c string) string {
	if c != "" {
		return c
	}
	return d.TextColor
}

func (d NodeStyleDefaults) borderColor(c string) string {
	if c != "" {
		return c
	}
	return d.BorderColor
}
