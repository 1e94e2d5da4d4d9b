// Package mindmap implements the tree containment and mutation engine behind
// nest: a mind map in which every parent's circle visually encloses the
// circles of its children.
//
// # Overview
//
// A map is a forest of circles. Each node has a center, a radius and an
// ordered list of children. Whenever a node changes shape or position, the
// engine re-fits every ancestor so that the containment invariant holds
// again: a parent's circle encloses the axis-aligned bounding box of its
// children's circles, expanded by a fixed padding.
//
// The enclosing radius is deliberately computed from the bounding square's
// half-extent rather than a true minimum enclosing circle. The
// over-approximation keeps layouts stable across sessions and must not be
// replaced by a tighter computation.
//
// # Basic Usage
//
// Create a [Map], add nodes, and mutate it through its operations:
//
//	m := mindmap.New()
//	root := m.AddRoot("plan")
//	m.SelectToggle(root)
//	child, _ := m.AddChild("groceries")
//	m.Move(child, 200, 180)
//
// Structural operations ([Map.AddChild], [Map.InsertParent],
// [Map.DeleteSubtree]) act on the current selection; geometric operations
// ([Map.Resize], [Map.Move]) address nodes directly. All of them restore the
// containment invariant before returning, except where noted in their
// documentation.
//
// # Creation Order
//
// Independently of the tree, every node remembers the node created
// immediately before it in [Node.Predecessor]. The resulting singly-linked
// chain exists purely so renderers can draw creation-order arrows; it is
// never consulted by the containment engine and deletions leave it alone
// (readers skip references to nodes that no longer exist).
//
// # Concurrency
//
// Map and Store instances are not safe for concurrent use. The engine is
// built for a single-actor, event-driven shell where each mutation runs to
// completion before the next input is processed. Shells that accept
// concurrent input must serialize mutations externally, treating one
// operation as the atomic unit.
package mindmap
