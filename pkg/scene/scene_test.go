package scene

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/printframe/pkg/errors"
	"github.com/matzehuels/printframe/pkg/geom"
	"github.com/matzehuels/printframe/pkg/layout"
	"github.com/matzehuels/printframe/pkg/placement"
)

func photo(id string, w, h int) ImageRef {
	return ImageRef{ID: id, Image: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func photos(n int) []ImageRef {
	out := make([]ImageRef, n)
	for i := range out {
		out[i] = photo(fmt.Sprintf("p%d", i), 200, 100)
	}
	return out
}

func gridParams(n int) Params {
	return Params{
		Template:    layout.TemplateGrid,
		Images:      photos(n),
		AspectRatio: 1,
		Background:  "#ffffff",
		Style:       layout.Style{Header: 60, Footer: 40},
		Texts: map[Label]TextParams{
			LabelHeader:    {Text: "Summer"},
			LabelSignature: {Text: "M."},
			LabelDate:      {Text: "2026-07-01"},
		},
	}
}

func compose(t *testing.T, p Params) *Graph {
	t.Helper()
	g, err := NewBuilder(DefaultStyle()).Compose(context.Background(), p)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	return g
}

func TestBuildGrid(t *testing.T) {
	g := compose(t, gridParams(4))

	if g.Slots() != 4 {
		t.Fatalf("Slots() = %d, want 4", g.Slots())
	}
	imgs := g.Images()
	if len(imgs) != 4 {
		t.Fatalf("got %d image nodes, want 4", len(imgs))
	}
	for i, img := range imgs {
		if img.Clip == nil {
			t.Fatalf("image %d has no clip", i)
		}
		if !placement.Valid(&img.Placement) {
			t.Errorf("image %d violates cover: bounds %+v clip %+v", i, img.Bounds(), *img.Clip)
		}
		if img.X != img.Clip.CenterX() || img.Y != img.Clip.CenterY() {
			t.Errorf("image %d not centred on its slot", i)
		}
	}

	var first Kind = 255
	g.Walk(func(_ NodeID, n *Node) bool {
		first = n.Kind
		return false
	})
	if first != KindShape {
		t.Errorf("first drawn node kind = %v, want background shape", first)
	}

	if want := geom.R(0, 0, g.Canvas.Width, g.Canvas.Height); g.Bounds() != want {
		t.Errorf("Bounds() = %+v, want %+v", g.Bounds(), want)
	}
}

func TestBuildTexts(t *testing.T) {
	g := compose(t, gridParams(4))

	h, ok := g.Text(LabelHeader)
	if !ok {
		t.Fatal("no header node")
	}
	if h.Text != "Summer" || h.Fill != DefaultStyle().TextColor {
		t.Errorf("header = %q fill %q", h.Text, h.Fill)
	}
	if h.Y != 30 {
		t.Errorf("header centred at y=%v, want 30", h.Y)
	}
	if h.Size <= 0 || h.Size > h.BaseSize {
		t.Errorf("header size %v (base %v)", h.Size, h.BaseSize)
	}

	sig, _ := g.Text(LabelSignature)
	date, _ := g.Text(LabelDate)
	if sig.Align != AlignLeft || date.Align != AlignRight {
		t.Errorf("footer alignment sig=%v date=%v", sig.Align, date.Align)
	}
	if sig.Y != date.Y {
		t.Errorf("footer texts on different lines: %v vs %v", sig.Y, date.Y)
	}
}

func TestBuildAddsTextBands(t *testing.T) {
	p := gridParams(4)
	p.Style = layout.Style{}
	g := compose(t, p)

	if got := g.Unplaced(); len(got) != 0 {
		t.Fatalf("unplaced labels %v", got)
	}
	d := DefaultStyle()
	headerBand := d.HeaderSize * bandScale
	h, _ := g.Text(LabelHeader)
	if math.Abs(h.Y-headerBand/2) > 1e-9 || h.BaseSize != d.HeaderSize {
		t.Errorf("header at y=%v size %v, want y=%v size %v", h.Y, h.BaseSize, headerBand/2, d.HeaderSize)
	}
	for _, img := range g.Images() {
		if img.Clip.Top < headerBand-1e-9 {
			t.Errorf("slot %d starts at %v, inside the header band", img.Slot, img.Clip.Top)
		}
	}
	sig, _ := g.Text(LabelSignature)
	if sig.Y <= h.Y || sig.BaseSize != d.FooterSize {
		t.Errorf("signature at y=%v size %v", sig.Y, sig.BaseSize)
	}
	for _, id := range g.Order() {
		if n := g.Node(id); n.Kind == KindText && n.Hidden {
			t.Errorf("%s text hidden", n.Text.Label)
		}
	}
}

func TestBuildWithoutTextsReservesNoBands(t *testing.T) {
	p := gridParams(4)
	p.Style = layout.Style{}
	p.Texts = nil
	g := compose(t, p)

	hidden := 0
	for _, id := range g.Order() {
		if n := g.Node(id); n.Kind == KindText && n.Hidden {
			hidden++
		}
	}
	if hidden != 3 {
		t.Errorf("hidden text nodes = %d, want 3", hidden)
	}
	if _, ok := g.Text(LabelHeader); !ok {
		t.Error("hidden header should still exist for textual updates")
	}
	if top := g.Images()[0].Clip.Top; top != 0 {
		t.Errorf("first slot at y=%v, want 0", top)
	}
	if got := g.Unplaced(); len(got) != 0 {
		t.Errorf("unplaced labels %v", got)
	}
}

func TestClassifyAddedBand(t *testing.T) {
	prev := gridParams(2)
	prev.Style = layout.Style{}
	prev.Texts = map[Label]TextParams{LabelHeader: {Text: "Summer"}}

	tests := []struct {
		name  string
		texts map[Label]TextParams
		want  Change
	}{
		{"header edited", map[Label]TextParams{LabelHeader: {Text: "Winter"}}, ChangeTextual},
		{"header cleared", nil, ChangeStructural},
		{"signature added", map[Label]TextParams{LabelHeader: {Text: "Summer"}, LabelSignature: {Text: "M."}}, ChangeStructural},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := prev
			next.Texts = tt.texts
			if got := Classify(prev, next); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildBorder(t *testing.T) {
	p := gridParams(2)
	p.Style.Border = 10
	g := compose(t, p)

	borders := g.Shapes(RoleBorder)
	if len(borders) != 1 {
		t.Fatalf("got %d border shapes", len(borders))
	}
	want := geom.R(0, 0, g.Canvas.Width, g.Canvas.Height)
	if got := borders[0].Bounds(); got != want {
		t.Errorf("border bounds %+v, want %+v", got, want)
	}
	if borders[0].Stroke != DefaultStyle().BorderColor {
		t.Errorf("border stroke = %q", borders[0].Stroke)
	}
}

func TestPlaceholders(t *testing.T) {
	p := gridParams(2)
	p.Slots = 4
	g := compose(t, p)

	if len(g.Images()) != 2 {
		t.Fatalf("got %d images, want 2", len(g.Images()))
	}
	for slot := 2; slot < 4; slot++ {
		id, _ := g.SlotNode(slot)
		n := g.Node(id)
		if n.Kind != KindGroup || !n.Group.Placeholder || n.Group.Slot != slot {
			t.Errorf("slot %d node = %+v, want placeholder group", slot, n)
		}
	}

	groupID, _ := g.SlotNode(2)
	children := append([]NodeID(nil), g.Node(groupID).Group.Children...)

	if err := g.ReplacePlaceholder(2, photo("late", 300, 300), Filters{Grayscale: true}); err != nil {
		t.Fatalf("ReplacePlaceholder: %v", err)
	}
	id, _ := g.SlotNode(2)
	if id != groupID {
		t.Errorf("replacement moved from node %d to %d", groupID, id)
	}
	n := g.Node(id)
	if n.Kind != KindImage || n.Image.ID != "late" || n.Image.Slot != 2 {
		t.Fatalf("slot 2 after replace = %+v", n)
	}
	if !n.Image.Filters.Grayscale {
		t.Error("filters not applied to replacement")
	}
	if !placement.Valid(&n.Image.Placement) {
		t.Error("replacement does not cover its slot")
	}
	if len(g.Images()) != 3 {
		t.Errorf("got %d images after replace, want 3", len(g.Images()))
	}
	for _, c := range children {
		if !g.Node(c).Hidden {
			t.Errorf("placeholder child %d still visible", c)
		}
	}
}

func TestReplacePlaceholderErrors(t *testing.T) {
	p := gridParams(2)
	p.Slots = 3
	g := compose(t, p)

	tests := []struct {
		name string
		slot int
		ref  ImageRef
	}{
		{"occupied slot", 0, photo("x", 10, 10)},
		{"out of range", 7, photo("x", 10, 10)},
		{"negative", -1, photo("x", 10, 10)},
		{"nil image", 2, ImageRef{ID: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ReplacePlaceholder(tt.slot, tt.ref, Filters{})
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestPrintBoundsLeaveOutPlaceholders(t *testing.T) {
	g := compose(t, Params{Template: layout.TemplateGrid, Images: photos(1), Slots: 2, AspectRatio: 1})
	img := g.Images()[0]
	if got := g.PrintBounds(); got != *img.Clip {
		t.Errorf("PrintBounds() = %+v, want the photo window %+v", got, *img.Clip)
	}
	if g.Bounds().Width <= g.PrintBounds().Width {
		t.Errorf("Bounds() %+v should include the placeholder", g.Bounds())
	}

	var walked, printed int
	g.Walk(func(_ NodeID, n *Node) bool {
		if !n.Printable() {
			walked++
		}
		return true
	})
	g.WalkPrintable(func(_ NodeID, n *Node) bool {
		if !n.Printable() || (n.Kind == KindShape && n.Shape.Role == RolePlaceholder) {
			printed++
		}
		return true
	})
	if walked != 1 || printed != 0 {
		t.Errorf("placeholder groups: %d walked, %d printed; want 1 and 0", walked, printed)
	}

	empty := compose(t, Params{Template: layout.TemplateGrid, Slots: 2, AspectRatio: 1})
	if empty.Empty() || !empty.PrintEmpty() {
		t.Errorf("placeholder-only scene: Empty %v, PrintEmpty %v", empty.Empty(), empty.PrintEmpty())
	}
}

func TestEmptyGraph(t *testing.T) {
	if !NewGraph(layout.TemplateGrid, layout.DefaultCanvas).Empty() {
		t.Error("new graph should be empty")
	}
	var nilGraph *Graph
	if !nilGraph.Empty() {
		t.Error("nil graph should be empty")
	}

	g := compose(t, Params{Template: layout.TemplateGrid})
	if !g.Empty() {
		t.Errorf("graph without photos, background or text should be empty, bounds %+v", g.Bounds())
	}
}

func TestClassify(t *testing.T) {
	base := gridParams(3)
	with := func(f func(p *Params)) Params {
		p := base
		p.Images = append([]ImageRef(nil), base.Images...)
		p.Texts = map[Label]TextParams{}
		for k, v := range base.Texts {
			p.Texts[k] = v
		}
		f(&p)
		return p
	}

	tests := []struct {
		name string
		next Params
		want Change
	}{
		{"identical", with(func(*Params) {}), ChangeNone},
		{"header text", with(func(p *Params) { p.Texts[LabelHeader] = TextParams{Text: "Winter"} }), ChangeTextual},
		{"date colour", with(func(p *Params) { p.Texts[LabelDate] = TextParams{Text: "2026-07-01", Color: "#ff0000"} }), ChangeTextual},
		{"grayscale", with(func(p *Params) { p.Filters.Grayscale = true }), ChangeCosmetic},
		{"brightness", with(func(p *Params) { p.Filters.Brightness = 20 }), ChangeCosmetic},
		{"background", with(func(p *Params) { p.Background = "#000000" }), ChangeCosmetic},
		{"filter and text", with(func(p *Params) {
			p.Filters.Grayscale = true
			p.Texts[LabelHeader] = TextParams{Text: "Winter"}
		}), ChangeCosmetic},
		{"image added", with(func(p *Params) { p.Images = append(p.Images, photo("p9", 10, 10)) }), ChangeStructural},
		{"image swapped", with(func(p *Params) { p.Images[1] = photo("other", 10, 10) }), ChangeStructural},
		{"aspect", with(func(p *Params) { p.AspectRatio = 1.5 }), ChangeStructural},
		{"template", with(func(p *Params) { p.Template = layout.TemplateShirt }), ChangeStructural},
		{"gap", with(func(p *Params) { p.Style.Gap = 4 }), ChangeStructural},
		{"structural wins", with(func(p *Params) {
			p.AspectRatio = 2
			p.Filters.Grayscale = true
			p.Texts[LabelHeader] = TextParams{Text: "Winter"}
		}), ChangeStructural},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(base, tt.next); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpdaterCosmeticKeepsGeometry(t *testing.T) {
	b := NewBuilder(DefaultStyle())
	u := NewUpdater(b)
	prev := gridParams(4)
	g := compose(t, prev)
	before := g.Images()[0].Placement

	next := prev
	next.Filters = Filters{Grayscale: true, Brightness: -10}
	next.Background = "#eeeeee"

	got, change, err := u.Apply(context.Background(), g, prev, next)
	if err != nil {
		t.Fatal(err)
	}
	if change != ChangeCosmetic || got != g {
		t.Fatalf("change = %v, same graph = %v", change, got == g)
	}
	for i, img := range g.Images() {
		if img.Filters != next.Filters {
			t.Errorf("image %d filters = %+v", i, img.Filters)
		}
	}
	if g.Images()[0].Placement.X != before.X || g.Images()[0].ScaleX != before.ScaleX {
		t.Error("cosmetic update moved an image")
	}
	if bg := g.Shapes(RoleBackground)[0]; bg.Fill != "#eeeeee" {
		t.Errorf("background fill = %q", bg.Fill)
	}
}

func TestUpdaterTextualRefits(t *testing.T) {
	u := NewUpdater(NewBuilder(DefaultStyle()))
	prev := gridParams(4)
	g := compose(t, prev)

	next := prev
	next.Texts = map[Label]TextParams{
		LabelHeader:    {Text: strings.Repeat("A very long header line ", 6), Color: "#aa0000"},
		LabelSignature: prev.Texts[LabelSignature],
		LabelDate:      prev.Texts[LabelDate],
	}
	got, change, err := u.Apply(context.Background(), g, prev, next)
	if err != nil || change != ChangeTextual || got != g {
		t.Fatalf("Apply = %v, %v (same graph %v)", change, err, got == g)
	}
	h, _ := g.Text(LabelHeader)
	if h.Fill != "#aa0000" {
		t.Errorf("fill = %q", h.Fill)
	}
	if h.Size >= h.BaseSize {
		t.Errorf("long header not shrunk: size %v base %v", h.Size, h.BaseSize)
	}
	if h.Width > h.MaxWidth+1 {
		t.Errorf("width %v exceeds budget %v", h.Width, h.MaxWidth)
	}
}

func TestUpdaterStructuralRebuilds(t *testing.T) {
	u := NewUpdater(NewBuilder(DefaultStyle()))
	prev := gridParams(2)
	g := compose(t, prev)
	oldLen := g.Len()

	next := gridParams(5)
	got, change, err := u.Apply(context.Background(), g, prev, next)
	if err != nil {
		t.Fatal(err)
	}
	if change != ChangeStructural || got == g {
		t.Fatalf("change = %v, new graph = %v", change, got != g)
	}
	if len(got.Images()) != 5 {
		t.Errorf("rebuilt graph has %d images", len(got.Images()))
	}
	if g.Len() != oldLen || len(g.Images()) != 2 {
		t.Error("structural update modified the previous graph")
	}
}

func TestUpdaterStructuralError(t *testing.T) {
	u := NewUpdater(NewBuilder(DefaultStyle()))
	prev := gridParams(2)
	g := compose(t, prev)

	next := prev
	next.Template = "poster"
	got, _, err := u.Apply(context.Background(), g, prev, next)
	if !errors.Is(err, errors.ErrCodeInvalidTemplate) {
		t.Fatalf("err = %v", err)
	}
	if got != g {
		t.Error("failed rebuild should keep the previous graph")
	}
}

func TestUpdaterNilGraph(t *testing.T) {
	u := NewUpdater(NewBuilder(DefaultStyle()))
	p := gridParams(1)
	g, change, err := u.Apply(context.Background(), nil, p, p)
	if err != nil || change != ChangeStructural || g == nil {
		t.Fatalf("Apply(nil) = %v, %v, %v", g, change, err)
	}
}

func TestLettersBuildsMaskedWindows(t *testing.T) {
	p := Params{Template: layout.TemplateLetters, Images: photos(4)}
	g := compose(t, p)
	imgs := g.Images()
	if len(imgs) != 4 {
		t.Fatalf("got %d images, want 4", len(imgs))
	}
	for i, img := range imgs {
		if img.Mask.Empty() {
			t.Errorf("letter %d has no mask", i)
		}
	}
}

func TestAdjustPlacesWithinConstraints(t *testing.T) {
	tests := []struct {
		name   string
		adjust Adjust
		check  func(t *testing.T, img *ImageNode, cover float64)
	}{
		{"none", Adjust{}, func(t *testing.T, img *ImageNode, cover float64) {
			if img.ScaleX != cover || img.X != img.Clip.CenterX() {
				t.Errorf("scale %v x %v, want cover fit", img.ScaleX, img.X)
			}
		}},
		{"zoom", Adjust{Zoom: 2}, func(t *testing.T, img *ImageNode, cover float64) {
			if math.Abs(img.ScaleX-2*cover) > 1e-9 {
				t.Errorf("scale %v, want %v", img.ScaleX, 2*cover)
			}
		}},
		{"zoom below cover", Adjust{Zoom: 0.5}, func(t *testing.T, img *ImageNode, cover float64) {
			if img.ScaleX != cover {
				t.Errorf("scale %v, want cover %v", img.ScaleX, cover)
			}
		}},
		{"offset clamped", Adjust{OffsetX: 1e6, OffsetY: -1e6}, func(t *testing.T, img *ImageNode, cover float64) {
			b := img.Bounds()
			if math.Abs(b.Left-img.Clip.Left) > placement.Epsilon {
				t.Errorf("left edge %v, want flush with window %v", b.Left, img.Clip.Left)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := gridParams(2)
			p.Adjust = []Adjust{tt.adjust}
			img := compose(t, p).Images()[0]
			if !placement.Valid(&img.Placement) {
				t.Fatalf("placement %+v violates the constraints", img.Placement)
			}
			tt.check(t, img, placement.CoverScale(img.NativeWidth, img.NativeHeight, *img.Clip))
		})
	}
}

func TestAdjustValidate(t *testing.T) {
	tests := []struct {
		adjust Adjust
		ok     bool
	}{
		{Adjust{}, true},
		{Adjust{OffsetX: -40, Zoom: 3}, true},
		{Adjust{Zoom: -1}, false},
		{Adjust{Zoom: MaxZoom + 1}, false},
		{Adjust{OffsetY: math.NaN()}, false},
		{Adjust{OffsetX: math.Inf(1)}, false},
	}
	for _, tt := range tests {
		err := tt.adjust.Validate()
		if (err == nil) != tt.ok {
			t.Errorf("Validate(%+v) = %v", tt.adjust, err)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Validate(%+v) code = %s", tt.adjust, errors.GetCode(err))
		}
	}
}

func TestMoveAndScaleImage(t *testing.T) {
	p := gridParams(2)
	g := compose(t, p)
	img := g.Images()[0]
	cover := img.ScaleX

	// 200x100 photos in square windows overflow horizontally only.
	a, err := g.MoveImage(0, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(a.OffsetX-10) > 1e-9 || a.OffsetY != 0 || a.Zoom != 0 {
		t.Errorf("adjust after move = %+v, want x offset only", a)
	}
	if !placement.Valid(&img.Placement) {
		t.Fatal("move broke the constraints")
	}

	a, err = g.ScaleImage(0, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if img.ScaleX != cover || !placement.Valid(&img.Placement) {
		t.Errorf("scaled below cover: %v < %v", img.ScaleX, cover)
	}
	a, err = g.ScaleImage(0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(a.Zoom-MaxZoom) > 1e-9 {
		t.Errorf("zoom = %v, want capped at %v", a.Zoom, MaxZoom)
	}

	// Rebuilding from the returned adjustment reproduces the placement.
	p.Adjust = []Adjust{a}
	again := compose(t, p).Images()[0]
	if math.Abs(again.X-img.X) > 1e-6 || math.Abs(again.ScaleX-img.ScaleX) > 1e-6 {
		t.Errorf("rebuilt at x=%v scale=%v, want x=%v scale=%v", again.X, again.ScaleX, img.X, img.ScaleX)
	}

	p.Images = p.Images[:1]
	p.Slots = 2
	g = compose(t, p)
	if _, err := g.MoveImage(1, 1, 1); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("move on placeholder: err = %v", err)
	}
	if _, err := g.MoveImage(5, 1, 1); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("move out of range: err = %v", err)
	}
	if _, err := g.ScaleImage(0, 0); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("zero scale: err = %v", err)
	}
}

func TestUpdaterAdjustIsCosmetic(t *testing.T) {
	u := NewUpdater(NewBuilder(DefaultStyle()))
	prev := gridParams(2)
	g := compose(t, prev)

	next := prev
	next.Adjust = []Adjust{{OffsetX: 15}}
	got, change, err := u.Apply(context.Background(), g, prev, next)
	if err != nil || change != ChangeCosmetic || got != g {
		t.Fatalf("Apply = %v, %v, same graph %v", change, err, got == g)
	}
	img := g.Images()[0]
	if math.Abs(img.X-(img.Clip.CenterX()+15)) > 1e-9 {
		t.Errorf("x = %v, want moved by 15 from %v", img.X, img.Clip.CenterX())
	}
	if Classify(next, next) != ChangeNone {
		t.Error("identical adjustments classified as a change")
	}
}
