package fonts

import (
	"reflect"
	"testing"

	"github.com/matzehuels/printframe/pkg/geom"
)

func TestFamilies(t *testing.T) {
	want := []string{Bold, Italic, Mono, Regular}
	if got := Families(); !reflect.DeepEqual(got, want) {
		t.Errorf("Families() = %v, want %v", got, want)
	}
}

func TestFontCachesParse(t *testing.T) {
	a, err := Font(Regular)
	if err != nil {
		t.Fatalf("Font: %v", err)
	}
	b, err := Font("")
	if err != nil {
		t.Fatalf("Font(default): %v", err)
	}
	if a != b {
		t.Error("default family should resolve to the cached regular font")
	}
	if _, err := Font("comic"); err == nil {
		t.Error("unknown family should fail")
	}
}

func TestMeasure(t *testing.T) {
	small, err := Measure(Regular, 12, "Summer")
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	large, err := Measure(Regular, 24, "Summer")
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if small <= 0 || large <= small {
		t.Errorf("widths small=%v large=%v", small, large)
	}
	if empty, _ := Measure(Regular, 12, ""); empty != 0 {
		t.Errorf("empty string width = %v", empty)
	}
}

func TestFitSize(t *testing.T) {
	text := "A rather long signature line"
	w, err := Measure(Bold, 40, text)
	if err != nil {
		t.Fatal(err)
	}

	size, err := FitSize(Bold, 40, text, w/2)
	if err != nil {
		t.Fatal(err)
	}
	if size >= 40 || size <= 0 {
		t.Fatalf("FitSize = %v, want below 40", size)
	}
	fitted, _ := Measure(Bold, size, text)
	if fitted > w/2+1 {
		t.Errorf("fitted width %v exceeds budget %v", fitted, w/2)
	}

	if same, _ := FitSize(Bold, 40, text, 0); same != 40 {
		t.Errorf("no budget should keep size, got %v", same)
	}
	if same, _ := FitSize(Bold, 40, text, w*2); same != 40 {
		t.Errorf("roomy budget should keep size, got %v", same)
	}
}

func TestOutlines(t *testing.T) {
	o, err := NewOutlines(Bold)
	if err != nil {
		t.Fatalf("NewOutlines: %v", err)
	}

	l, adv, ok := o.Glyph('L')
	if !ok {
		t.Fatal("no glyph for L")
	}
	if adv <= 0 || adv > 2 {
		t.Errorf("advance = %v, want em-scale value", adv)
	}
	b := l.Bounds()
	if b.Empty() {
		t.Fatal("L outline is empty")
	}
	// Capitals sit on the baseline and rise above it in y-down space.
	if b.Bottom() > 0.01 || b.Top >= 0 {
		t.Errorf("L bounds %+v not above the baseline", b)
	}

	o2, _, _ := o.Glyph('O')
	if len(o2.Contours) < 2 {
		t.Errorf("O should have an inner and outer contour, got %d", len(o2.Contours))
	}

	sp, adv, ok := o.Glyph(' ')
	if !ok || !sp.Empty() || adv <= 0 {
		t.Errorf("space: ok=%v empty=%v adv=%v", ok, sp.Empty(), adv)
	}
}

func TestFlattenClosesContours(t *testing.T) {
	p := geom.Path{}
	if !p.Empty() {
		t.Fatal("zero path should be empty")
	}
	if got := flatten(nil); !got.Empty() {
		t.Errorf("flatten(nil) = %+v", got)
	}
}

func TestCurveEndpoints(t *testing.T) {
	p0, p1, p2, p3 := geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 2}, geom.Point{X: 3, Y: 2}, geom.Point{X: 4, Y: 0}
	if got := quad(p0, p1, p3, 1); got != p3 {
		t.Errorf("quad(t=1) = %v, want %v", got, p3)
	}
	if got := cubic(p0, p1, p2, p3, 0); got != p0 {
		t.Errorf("cubic(t=0) = %v, want %v", got, p0)
	}
	mid := cubic(p0, p1, p2, p3, 0.5)
	if mid.X != 2 || mid.Y != 1.5 {
		t.Errorf("cubic(t=0.5) = %v, want {2 1.5}", mid)
	}
}
