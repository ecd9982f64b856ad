package scene

import (
	"context"
	"time"

	"github.com/matzehuels/printframe/pkg/observability"
)

// Updater brings a graph from one parameter snapshot to the next with the
// least work.
type Updater struct {
	builder *Builder
}

// NewUpdater returns an updater that rebuilds through b.
func NewUpdater(b *Builder) *Updater {
	return &Updater{builder: b}
}

// Apply classifies the change from prev to next and applies it. Textual and
// cosmetic changes mutate g in place and return it. Structural changes, or a
// nil g, return a freshly built graph and leave g untouched; on error the
// caller keeps g.
func (u *Updater) Apply(ctx context.Context, g *Graph, prev, next Params) (*Graph, Change, error) {
	start := time.Now()
	change := Classify(prev, next)
	if g == nil {
		change = ChangeStructural
	}

	switch change {
	case ChangeStructural:
		ng, err := u.builder.Compose(ctx, next)
		if err != nil {
			return g, change, err
		}
		g = ng
	case ChangeCosmetic:
		u.applyCosmetic(g, next)
		u.applyTextual(g, next)
	case ChangeTextual:
		u.applyTextual(g, next)
	}

	if change != ChangeNone {
		observability.Scene().OnUpdate(ctx, change.String(), time.Since(start))
	}
	return g, change, nil
}

// applyCosmetic updates filters, colours and photo adjustments. Layout
// geometry is untouched; photos are re-placed inside their unchanged windows.
func (u *Updater) applyCosmetic(g *Graph, p Params) {
	d := u.builder.defaults
	for i := range g.nodes {
		n := &g.nodes[i]
		switch n.Kind {
		case KindImage:
			n.Image.Filters = p.Filters
			if n.Image.Clip != nil {
				p.AdjustAt(n.Image.Slot).place(&n.Image.Placement, *n.Image.Clip)
			}
		case KindShape:
			switch n.Shape.Role {
			case RoleBackground:
				n.Shape.Fill = p.Background
			case RoleBorder:
				n.Shape.Stroke = d.borderColor(p.BorderColor)
			}
		}
	}
}

// applyTextual updates label strings and colours and refits them to their
// width budget.
func (u *Updater) applyTextual(g *Graph, p Params) {
	d := u.builder.defaults
	for _, label := range Labels {
		t, ok := g.Text(label)
		if !ok {
			continue
		}
		tp := p.Texts[label]
		t.Fill = d.textColor(tp.Color)
		if t.Text != tp.Text {
			t.Text = tp.Text
			t.Fit()
		}
	}
}
