// Package scene holds the retained node graph of a composition and keeps it
// in step with the user's parameters.
//
// # Graph
//
// A [Graph] is an arena of tagged [Node] values addressed by [NodeID]. Each
// node is exactly one of an image, a text, a shape or a group. The root draw
// order lists the top-level nodes; groups list their children. Nodes never
// hold pointers to each other.
//
// # Building and updating
//
// [Builder] turns a layout result and a [Params] snapshot into a complete
// graph: the background, one cover-fitted image or placeholder per slot, the
// header, signature and date texts and an optional border frame. Style values
// that are not part of Params come from an explicit [NodeStyleDefaults] value.
//
// [Classify] compares two snapshots and returns the cheapest [Change] that
// brings a graph from one to the other. [Updater] applies it: textual and
// cosmetic changes mutate nodes in place, structural changes build a new
// graph which the caller swaps in with a single assignment.
//
// [Debouncer] coalesces bursts of parameter edits into one update.
package scene
