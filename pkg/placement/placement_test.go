package placement

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/printframe/pkg/geom"
)

func clipPtr(r geom.Rect) *geom.Rect { return &r }

func TestEnforceCover(t *testing.T) {
	p := Placement{
		NativeWidth: 400, NativeHeight: 200,
		X: 50, Y: 50, ScaleX: 0.1, ScaleY: 0.1,
		Clip: clipPtr(geom.R(0, 0, 100, 100)),
	}
	Enforce(&p)

	// Height ratio dominates: 100/200 = 0.5.
	if p.ScaleX != 0.5 || p.ScaleY != 0.5 {
		t.Fatalf("scale = (%v,%v), want (0.5,0.5)", p.ScaleX, p.ScaleY)
	}
	if !Valid(&p) {
		t.Errorf("placement invalid after Enforce: %+v bounds=%+v", p, p.Bounds())
	}
}

func TestEnforceSnapsBothAxesWhenOneIsLow(t *testing.T) {
	p := Placement{
		NativeWidth: 100, NativeHeight: 100,
		X: 50, Y: 50, ScaleX: 3, ScaleY: 0.2,
		Clip: clipPtr(geom.R(0, 0, 100, 100)),
	}
	Enforce(&p)
	if p.ScaleX != 1 || p.ScaleY != 1 {
		t.Errorf("scale = (%v,%v), want (1,1)", p.ScaleX, p.ScaleY)
	}
}

func TestEnforceBoundary(t *testing.T) {
	clip := geom.R(100, 100, 200, 100)
	tests := []struct {
		name         string
		x, y         float64
		wantX, wantY float64
	}{
		{"gap on left edge", 400, 150, 300, 150},
		{"gap on right edge", 0, 150, 100, 150},
		{"gap on top edge", 200, 400, 200, 300},
		{"gap on bottom edge", 200, -100, 200, 0},
		{"already inside", 210, 140, 210, 140},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 400x400 image at scale 1 inside a 200x100 window.
			p := Placement{
				NativeWidth: 400, NativeHeight: 400,
				X: tt.x, Y: tt.y, ScaleX: 1, ScaleY: 1,
				Clip: clipPtr(clip),
			}
			Enforce(&p)
			if math.Abs(p.X-tt.wantX) > Epsilon || math.Abs(p.Y-tt.wantY) > Epsilon {
				t.Errorf("centre = (%v,%v), want (%v,%v)", p.X, p.Y, tt.wantX, tt.wantY)
			}
			if !Valid(&p) {
				t.Errorf("placement invalid: bounds=%+v clip=%+v", p.Bounds(), clip)
			}
		})
	}
}

func TestEnforceWithoutClipIsNoop(t *testing.T) {
	p := Placement{NativeWidth: 10, NativeHeight: 10, X: 1, Y: 2, ScaleX: 0.01, ScaleY: 0.01}
	before := p
	Enforce(&p)
	if p != before {
		t.Errorf("Enforce changed unclipped placement: %+v", p)
	}
}

func TestEnforceInvariantsRandomized(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	for i := 0; i < 2000; i++ {
		clip := geom.R(
			rng.Float64()*500-250,
			rng.Float64()*500-250,
			1+rng.Float64()*800,
			1+rng.Float64()*800,
		)
		p := Placement{
			NativeWidth:  1 + rng.Float64()*4000,
			NativeHeight: 1 + rng.Float64()*4000,
			X:            rng.Float64()*2000 - 1000,
			Y:            rng.Float64()*2000 - 1000,
			ScaleX:       rng.Float64() * 3,
			ScaleY:       rng.Float64() * 3,
			Clip:         clipPtr(clip),
		}

		Enforce(&p)

		b := p.Bounds()
		if b.Width < clip.Width-Epsilon || b.Height < clip.Height-Epsilon {
			t.Fatalf("case %d: cover violated: bounds=%+v clip=%+v", i, b, clip)
		}
		if !b.Contains(clip, Epsilon) {
			t.Fatalf("case %d: gap left: bounds=%+v clip=%+v", i, b, clip)
		}

		once := p
		Enforce(&p)
		if p.X != once.X || p.Y != once.Y || p.ScaleX != once.ScaleX || p.ScaleY != once.ScaleY {
			t.Fatalf("case %d: Enforce not idempotent: %+v then %+v", i, once, p)
		}
	}
}

func TestCoverPlace(t *testing.T) {
	p := Placement{NativeWidth: 300, NativeHeight: 100}
	CoverPlace(&p, geom.R(10, 10, 100, 100))

	if p.ScaleX != 1 || p.ScaleY != 1 {
		t.Errorf("scale = (%v,%v), want 1", p.ScaleX, p.ScaleY)
	}
	if p.X != 60 || p.Y != 60 {
		t.Errorf("centre = (%v,%v), want (60,60)", p.X, p.Y)
	}
	if !Valid(&p) {
		t.Error("cover placement should be valid")
	}
}

func TestVisibleBounds(t *testing.T) {
	p := Placement{NativeWidth: 100, NativeHeight: 100, X: 50, Y: 50, ScaleX: 2, ScaleY: 2}
	if got := p.VisibleBounds(); got != geom.R(-50, -50, 200, 200) {
		t.Errorf("unclipped VisibleBounds() = %+v", got)
	}
	p.Clip = clipPtr(geom.R(0, 0, 10, 10))
	if got := p.VisibleBounds(); got != geom.R(0, 0, 10, 10) {
		t.Errorf("clipped VisibleBounds() = %+v", got)
	}
}

func BenchmarkEnforce(b *testing.B) {
	clip := geom.R(0, 0, 300, 200)
	p := Placement{NativeWidth: 1200, NativeHeight: 900, ScaleX: 0.5, ScaleY: 0.5, Clip: &clip}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.X = float64(i%700) - 200
		p.Y = float64(i%500) - 150
		Enforce(&p)
	}
}
