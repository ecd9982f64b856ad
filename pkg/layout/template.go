package layout

import (
	"sort"

	"github.com/matzehuels/printframe/pkg/errors"
)

// Template names.
const (
	TemplateGrid    = "grid"
	TemplateDual    = "dual"
	TemplateLetters = "letters"
	TemplateShirt   = "shirt"
)

// Template describes a print template.
type Template struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// FixedSlots is the slot count of fixed-slot templates, zero for grids.
	FixedSlots int `json:"fixed_slots,omitempty"`
	// MaxPhotos bounds the photo count accepted by grid templates.
	MaxPhotos int `json:"max_photos,omitempty"`
}

var templates = map[string]Template{
	TemplateGrid: {
		Name:        TemplateGrid,
		Description: "Photo collage in balanced columns",
		MaxPhotos:   30,
	},
	TemplateDual: {
		Name:        TemplateDual,
		Description: "Two side-by-side windows with a caption band",
		FixedSlots:  2,
	},
	TemplateLetters: {
		Name:        TemplateLetters,
		Description: "Photos cut out by the letters of a four-letter word",
		FixedSlots:  4,
	},
	TemplateShirt: {
		Name:        TemplateShirt,
		Description: "Photo grid on a garment chest print area",
		MaxPhotos:   9,
	},
}

// Lookup returns the template registered under name.
func Lookup(name string) (Template, error) {
	t, ok := templates[name]
	if !ok {
		return Template{}, errors.New(errors.ErrCodeInvalidTemplate, "unknown template %q", name)
	}
	return t, nil
}

// Templates returns all templates sorted by name.
func Templates() []Template {
	out := make([]Template, 0, len(templates))
	for _, t := range templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the sorted template names.
func Names() []string {
	ts := Templates()
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	return names
}

// Request carries the inputs of [Compute].
type Request struct {
	Template    string
	Count       int
	AspectRatio float64
	Style       Style
	// Word and Glyphs are used by the lettered template only.
	Word   string
	Glyphs GlyphSource
}

// Compute dispatches req to the layout algorithm of its template.
func Compute(req Request) (Result, error) {
	t, err := Lookup(req.Template)
	if err != nil {
		return Result{}, err
	}
	if req.Count < 0 {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "photo count cannot be negative")
	}
	if t.MaxPhotos > 0 && req.Count > t.MaxPhotos {
		return Result{}, errors.New(errors.ErrCodeInvalidInput,
			"template %s accepts at most %d photos, got %d", t.Name, t.MaxPhotos, req.Count)
	}

	switch t.Name {
	case TemplateGrid:
		return Grid(DefaultCanvas, req.Count, req.AspectRatio, req.Style), nil
	case TemplateShirt:
		return Shirt(req.Count, req.AspectRatio, req.Style), nil
	case TemplateDual:
		return DualWindow(), nil
	case TemplateLetters:
		word := req.Word
		if word == "" {
			word = ReferenceWord
		}
		return Letters(word, req.Glyphs), nil
	}
	return Result{}, errors.New(errors.ErrCodeUnsupported, "template %q has no layout", t.Name)
}
