package scene

import (
	"math"

	"github.com/matzehuels/printframe/pkg/errors"
	"github.com/matzehuels/printframe/pkg/geom"
	"github.com/matzehuels/printframe/pkg/layout"
	"github.com/matzehuels/printframe/pkg/placement"
)

// Graph is the retained scene of one composition.
type Graph struct {
	// Template names the layout the graph was built from.
	Template string
	// Canvas is the logical surface; its height is the layout's total height.
	Canvas layout.Canvas

	nodes []Node
	order []NodeID
	// slots maps a slot index to its image node or placeholder group.
	slots []NodeID
}

// NewGraph returns an empty graph on canvas.
func NewGraph(template string, canvas layout.Canvas) *Graph {
	return &Graph{Template: template, Canvas: canvas}
}

// Len returns the number of nodes in the arena, reachable or not.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node with the given id, or nil if id is out of range.
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return &g.nodes[id]
}

// Order returns the root draw order. The slice must not be modified.
func (g *Graph) Order() []NodeID { return g.order }

// Slots returns the number of slots.
func (g *Graph) Slots() int { return len(g.slots) }

// SlotNode returns the node occupying slot.
func (g *Graph) SlotNode(slot int) (NodeID, bool) {
	if slot < 0 || slot >= len(g.slots) {
		return 0, false
	}
	return g.slots[slot], true
}

// push appends n to the arena without placing it in the draw order.
func (g *Graph) push(n Node) NodeID {
	g.nodes = append(g.nodes, n)
	return NodeID(len(g.nodes) - 1)
}

// add appends n to the arena and to the root draw order.
func (g *Graph) add(n Node) NodeID {
	id := g.push(n)
	g.order = append(g.order, id)
	return id
}

// Walk calls fn for every visible node in draw order, descending into groups
// after visiting them. Walk stops when fn returns false.
func (g *Graph) Walk(fn func(id NodeID, n *Node) bool) {
	g.walk(false, fn)
}

// WalkPrintable is [Graph.Walk] without the subtrees left out of prints.
func (g *Graph) WalkPrintable(fn func(id NodeID, n *Node) bool) {
	g.walk(true, fn)
}

func (g *Graph) walk(printOnly bool, fn func(id NodeID, n *Node) bool) {
	var visit func(ids []NodeID) bool
	visit = func(ids []NodeID) bool {
		for _, id := range ids {
			n := g.Node(id)
			if n == nil || n.Hidden || (printOnly && !n.Printable()) {
				continue
			}
			if !fn(id, n) {
				return false
			}
			if n.Kind == KindGroup && !visit(n.Group.Children) {
				return false
			}
		}
		return true
	}
	visit(g.order)
}

// Images returns the image nodes in draw order.
func (g *Graph) Images() []*ImageNode {
	var out []*ImageNode
	g.Walk(func(_ NodeID, n *Node) bool {
		if n.Kind == KindImage {
			out = append(out, n.Image)
		}
		return true
	})
	return out
}

// Text returns the text node carrying label.
func (g *Graph) Text(label Label) (*TextNode, bool) {
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.Kind == KindText && n.Text.Label == label {
			return n.Text, true
		}
	}
	return nil, false
}

// Unplaced returns the labels that carry text but have no band to be drawn
// in, so they would be missing from an export.
func (g *Graph) Unplaced() []Label {
	var out []Label
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.Kind == KindText && n.Hidden && n.Text.Label != "" && n.Text.Text != "" {
			out = append(out, n.Text.Label)
		}
	}
	return out
}

// Shapes returns all shapes with the given role, hidden or not.
func (g *Graph) Shapes(role ShapeRole) []*ShapeNode {
	var out []*ShapeNode
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.Kind == KindShape && n.Shape.Role == role {
			out = append(out, n.Shape)
		}
	}
	return out
}

// NodeBounds returns the visible area of n. Clipped images report their
// clip region.
func (g *Graph) NodeBounds(n *Node) geom.Rect {
	switch n.Kind {
	case KindImage:
		if n.Image.Image == nil {
			return geom.Rect{}
		}
		return n.Image.VisibleBounds()
	case KindText:
		return n.Text.Bounds()
	case KindShape:
		return n.Shape.Bounds()
	case KindGroup:
		var r geom.Rect
		for _, id := range n.Group.Children {
			if c := g.Node(id); c != nil && !c.Hidden {
				r = r.Union(g.NodeBounds(c))
			}
		}
		return r
	}
	return geom.Rect{}
}

// Bounds returns the union of the visible bounds of all root nodes.
func (g *Graph) Bounds() geom.Rect { return g.bounds(false) }

// PrintBounds is [Graph.Bounds] without placeholders: the region an export
// covers.
func (g *Graph) PrintBounds() geom.Rect { return g.bounds(true) }

func (g *Graph) bounds(printOnly bool) geom.Rect {
	var r geom.Rect
	for _, id := range g.order {
		n := g.Node(id)
		if n == nil || n.Hidden || (printOnly && !n.Printable()) {
			continue
		}
		r = r.Union(g.NodeBounds(n))
	}
	return r
}

// Empty reports whether nothing in the graph would paint.
func (g *Graph) Empty() bool { return g == nil || g.Bounds().Empty() }

// PrintEmpty reports whether an export of g would have nothing to print.
func (g *Graph) PrintEmpty() bool { return g == nil || g.PrintBounds().Empty() }

// ReplacePlaceholder swaps the placeholder group of slot for a cover-fitted
// image node. The new node takes over the group's id and draw position; the
// group's children are hidden.
func (g *Graph) ReplacePlaceholder(slot int, ref ImageRef, filters Filters) error {
	id, ok := g.SlotNode(slot)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "slot %d out of range (0-%d)", slot, len(g.slots)-1)
	}
	if ref.Image == nil {
		return errors.New(errors.ErrCodeInvalidInput, "slot %d: no image", slot)
	}
	n := g.Node(id)
	if n.Kind != KindGroup || !n.Group.Placeholder {
		return errors.New(errors.ErrCodeInvalidInput, "slot %d is not a placeholder", slot)
	}

	for _, child := range n.Group.Children {
		if c := g.Node(child); c != nil {
			c.Hidden = true
		}
	}
	var mask geom.Path
	var clip geom.Rect
	for _, child := range n.Group.Children {
		if c := g.Node(child); c != nil && c.Kind == KindShape && c.Shape.Role == RolePlaceholder {
			clip, mask = c.Shape.Rect, c.Shape.Mask
		}
	}
	*n = Node{Kind: KindImage, Image: newImageNode(slot, clip, mask, ref, filters, Adjust{})}
	return nil
}

// imageAt returns the image node filling slot.
func (g *Graph) imageAt(slot int) (*ImageNode, error) {
	id, ok := g.SlotNode(slot)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "slot %d out of range (0-%d)", slot, len(g.slots)-1)
	}
	n := g.Node(id)
	if n.Kind != KindImage {
		return nil, errors.New(errors.ErrCodeInvalidInput, "slot %d has no photo", slot)
	}
	return n.Image, nil
}

// MoveImage drags the photo in slot by (dx, dy) logical units. The photo
// stops where an edge of the window would show; the returned adjustment
// reproduces the final position on a rebuild.
func (g *Graph) MoveImage(slot int, dx, dy float64) (Adjust, error) {
	img, err := g.imageAt(slot)
	if err != nil {
		return Adjust{}, err
	}
	img.X += dx
	img.Y += dy
	placement.Enforce(&img.Placement)
	return adjustOf(&img.Placement), nil
}

// ScaleImage multiplies the scale of the photo in slot by k around its
// centre. The photo never shrinks below the cover scale of its window.
func (g *Graph) ScaleImage(slot int, k float64) (Adjust, error) {
	if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return Adjust{}, errors.New(errors.ErrCodeInvalidInput, "scale factor must be positive, got %g", k)
	}
	img, err := g.imageAt(slot)
	if err != nil {
		return Adjust{}, err
	}
	cover := placement.CoverScale(img.NativeWidth, img.NativeHeight, *img.Clip)
	if math.Abs(img.ScaleX)*k > cover*MaxZoom {
		k = cover * MaxZoom / math.Abs(img.ScaleX)
	}
	img.ScaleX *= k
	img.ScaleY *= k
	placement.Enforce(&img.Placement)
	return adjustOf(&img.Placement), nil
}

func newImageNode(slot int, clip geom.Rect, mask geom.Path, ref ImageRef, filters Filters, adj Adjust) *ImageNode {
	b := ref.Image.Bounds()
	img := &ImageNode{
		ID:      ref.ID,
		Image:   ref.Image,
		Slot:    slot,
		Filters: filters,
		Mask:    mask,
	}
	img.NativeWidth = float64(b.Dx())
	img.NativeHeight = float64(b.Dy())
	adj.place(&img.Placement, clip)
	return img
}
