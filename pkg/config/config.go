// Package config reads printframe project files.
//
// A project file is TOML and describes one composition: the template, the
// photos, the text fields, the style and the export settings.
//
//	template = "grid"
//	aspect_ratio = 1.0
//	photos = ["a.jpg", "b.jpg"]
//
//	[text]
//	header = "Summer 2026"
//	signature = "M."
//	date = "2026-07-01"
//	color = "#222222"
//
//	[style]
//	grayscale = false
//	brightness = 0.0
//	background = "#ffffff"
//	gap = 8
//
//	[export]
//	width_cm = 20
//	dpi = 300
//	palette = 0
//
//	[[adjust]]        # first photo: nudge right, zoom in
//	offset_x = 12.0
//	zoom = 1.5
//
// Relative photo paths are resolved against the directory of the project
// file. Missing values are filled by [Project.SetDefaults]; [Project.Validate]
// reports the first invalid value as an INVALID_CONFIG error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/printframe/pkg/errors"
	"github.com/matzehuels/printframe/pkg/export"
	"github.com/matzehuels/printframe/pkg/layout"
	"github.com/matzehuels/printframe/pkg/scene"
)

// DefaultAspectRatio is the photo aspect ratio used when none is given.
const DefaultAspectRatio = 1.0

// Project is a parsed project file.
type Project struct {
	Template    string   `toml:"template"`
	AspectRatio float64  `toml:"aspect_ratio"`
	Slots       int      `toml:"slots"`
	Word        string   `toml:"word"`
	Photos      []string `toml:"photos"`

	Text   Text   `toml:"text"`
	Style  Style  `toml:"style"`
	Export Export `toml:"export"`

	// Adjust moves and zooms photos inside their windows, in photo order.
	Adjust []scene.Adjust `toml:"adjust"`

	// Dir is the directory relative photo paths are resolved against.
	Dir string `toml:"-"`
}

// Text holds the text fields.
type Text struct {
	Header    string `toml:"header"`
	Signature string `toml:"signature"`
	Date      string `toml:"date"`
	Color     string `toml:"color"`
}

// Style holds the look of the composition.
type Style struct {
	Grayscale   bool    `toml:"grayscale"`
	Brightness  float64 `toml:"brightness"`
	Background  string  `toml:"background"`
	BorderColor string  `toml:"border_color"`
	Gap         float64 `toml:"gap"`
	Border      float64 `toml:"border"`
	Header      float64 `toml:"header"`
	Footer      float64 `toml:"footer"`
}

// Export holds the print settings.
type Export struct {
	WidthCm float64 `toml:"width_cm"`
	DPI     int     `toml:"dpi"`
	Palette int     `toml:"palette"`
}

// Load reads, defaults and validates the project file at path.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read project file")
	}
	p, err := Parse(data)
	if err != nil {
		return nil, err
	}
	p.Dir = filepath.Dir(path)
	return p, nil
}

// Parse decodes, defaults and validates a project file.
func Parse(data []byte) (*Project, error) {
	var p Project
	md, err := toml.Decode(string(data), &p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse project file")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
	}
	p.SetDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetDefaults fills unset values.
func (p *Project) SetDefaults() {
	if p.Template == "" {
		p.Template = layout.TemplateGrid
	}
	if p.AspectRatio == 0 {
		p.AspectRatio = DefaultAspectRatio
	}
	if p.Export.WidthCm == 0 {
		p.Export.WidthCm = export.DefaultWidthCm
	}
	if p.Export.DPI == 0 {
		p.Export.DPI = export.DefaultDPI
	}
}

// Validate checks every value and returns the first problem.
func (p *Project) Validate() error {
	if _, err := layout.Lookup(p.Template); err != nil {
		return invalid("template", err)
	}
	if p.Slots < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "slots: cannot be negative")
	}
	checks := []struct {
		field string
		err   error
	}{
		{"aspect_ratio", errors.ValidateAspectRatio(p.AspectRatio)},
		{"text.color", errors.ValidateHexColor(p.Text.Color)},
		{"style.background", errors.ValidateHexColor(p.Style.Background)},
		{"style.border_color", errors.ValidateHexColor(p.Style.BorderColor)},
		{"style.brightness", errors.ValidateBrightness(p.Style.Brightness)},
		{"export.width_cm", errors.ValidateWidthCm(p.Export.WidthCm)},
		{"export.dpi", errors.ValidateDPI(p.Export.DPI)},
		{"export.palette", errors.ValidatePalette(p.Export.Palette)},
	}
	for _, c := range checks {
		if c.err != nil {
			return invalid(c.field, c.err)
		}
	}
	for name, v := range map[string]float64{
		"style.gap":    p.Style.Gap,
		"style.border": p.Style.Border,
		"style.header": p.Style.Header,
		"style.footer": p.Style.Footer,
	} {
		if v < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s: cannot be negative", name)
		}
	}
	for i, a := range p.Adjust {
		if err := a.Validate(); err != nil {
			return invalid(fmt.Sprintf("adjust[%d]", i), err)
		}
	}
	return nil
}

func invalid(field string, err error) error {
	return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s: %s", field, errors.UserMessage(err))
}

// PhotoPaths returns the photo paths resolved against the project directory.
func (p *Project) PhotoPaths() []string {
	out := make([]string, len(p.Photos))
	for i, ph := range p.Photos {
		if filepath.IsAbs(ph) || p.Dir == "" {
			out[i] = ph
		} else {
			out[i] = filepath.Join(p.Dir, ph)
		}
	}
	return out
}

// LayoutStyle returns the geometric style flags.
func (p *Project) LayoutStyle() layout.Style {
	return layout.Style{
		Gap:    p.Style.Gap,
		Border: p.Style.Border,
		Header: p.Style.Header,
		Footer: p.Style.Footer,
	}
}

// ToParams returns the scene parameters of the project with the given
// decoded photos.
func (p *Project) ToParams(images []scene.ImageRef) scene.Params {
	texts := make(map[scene.Label]scene.TextParams, len(scene.Labels))
	for label, s := range map[scene.Label]string{
		scene.LabelHeader:    p.Text.Header,
		scene.LabelSignature: p.Text.Signature,
		scene.LabelDate:      p.Text.Date,
	} {
		if s != "" {
			texts[label] = scene.TextParams{Text: s, Color: p.Text.Color}
		}
	}
	return scene.Params{
		Template:    p.Template,
		Images:      images,
		AspectRatio: p.AspectRatio,
		Slots:       p.Slots,
		Word:        p.Word,
		Style:       p.LayoutStyle(),
		Filters: scene.Filters{
			Grayscale:  p.Style.Grayscale,
			Brightness: p.Style.Brightness,
		},
		Background:  p.Style.Background,
		BorderColor: p.Style.BorderColor,
		Texts:       texts,
		Adjust:      p.Adjust,
	}
}

// ExportRequest returns the export settings of the project.
func (p *Project) ExportRequest() export.Request {
	return export.Request{
		WidthCm: p.Export.WidthCm,
		DPI:     p.Export.DPI,
		Palette: p.Export.Palette,
	}
}

// String summarizes the project for logs.
func (p *Project) String() string {
	return fmt.Sprintf("%s, %d photos, %gcm at %d dpi", p.Template, len(p.Photos), p.Export.WidthCm, p.Export.DPI)
}
