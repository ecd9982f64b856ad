package layout

import "github.com/matzehuels/printframe/pkg/geom"

// Normalization is a uniform scale followed by a translation.
type Normalization struct {
	Scale  float64
	DX, DY float64
}

// Apply maps p through n.
func (n Normalization) Apply(p geom.Path) geom.Path {
	return p.Transform(n.Scale, n.DX, n.DY)
}

// Normalize returns the transform that gives the alternate glyph set the same
// height and centre as the reference set. Each set is measured by the union of
// its paths' bounding boxes. Empty or flat inputs yield the identity.
func Normalize(reference, alternate []geom.Path) Normalization {
	ref := geom.UnionBounds(reference)
	alt := geom.UnionBounds(alternate)
	if ref.Empty() || alt.Empty() {
		return Normalization{Scale: 1}
	}
	k := ref.Height / alt.Height
	return Normalization{
		Scale: k,
		DX:    ref.CenterX() - alt.CenterX()*k,
		DY:    ref.CenterY() - alt.CenterY()*k,
	}
}

// NormalizeAll applies Normalize to alternate and returns the mapped paths.
func NormalizeAll(reference, alternate []geom.Path) []geom.Path {
	n := Normalize(reference, alternate)
	out := make([]geom.Path, len(alternate))
	for i, p := range alternate {
		out[i] = n.Apply(p)
	}
	return out
}
