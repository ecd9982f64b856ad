// Package layout distributes photographs into print-template slots.
//
// # Overview
//
// Every function here is pure: given a photo count, an aspect ratio and a
// [Style], it returns an ordered list of [Slot] rectangles plus the total
// height of the finished artwork. The height is fed back into the logical
// [Canvas] so the editing surface always exactly fits the generated content.
//
// # Grid templates
//
// [Columns] decides how many photos go into each column. Counts 1–9 come from
// a hand-tuned table (5 is 2-1-2, 7 is 2-3-2, 8 is 3-2-3) because an equal
// split looks unbalanced; larger counts are spread over three columns.
// [Grid] turns the distribution into rectangles: columns share the content
// width equally, every row is columnWidth/aspectRatio tall, and columns are
// top-aligned so the tallest column decides the height.
//
//	res := layout.Grid(layout.DefaultCanvas, 4, 1.0, layout.Style{})
//	// res.Columns == []int{2, 2}
//	// res.TotalHeight == 2 * (contentWidth / 2)
//
// # Fixed-slot templates
//
// [DualWindow] and [Letters] use pre-calibrated window positions. For lettered
// cut-outs, [Normalize] computes the uniform scale and offset that makes an
// alternate word match the height and centre of the reference word, so any
// four-letter word sits where the calibrated one did.
//
// [Lookup] resolves a template by name and [Compute] dispatches to the right
// algorithm.
package layout
