package mindmap

// NodeID identifies a node within a single map document.
// IDs are assigned monotonically starting at 1 and are never reused
// during a session, so a dangling reference can always be recognized.
type NodeID int64

// NodeRef is an optional reference to a node. The zero value references
// nothing. Using an explicit option type instead of a zero-means-none
// convention keeps "no parent" distinguishable from any real id.
type NodeRef struct {
	id NodeID
	ok bool
}

// Ref returns a NodeRef pointing at id.
func Ref(id NodeID) NodeRef { return NodeRef{id: id, ok: true} }

// Get returns the referenced id and true, or zero and false when the
// reference is empty.
func (r NodeRef) Get() (NodeID, bool) { return r.id, r.ok }

// IsSet reports whether the reference points at a node.
func (r NodeRef) IsSet() bool { return r.ok }

// Is reports whether the reference points at exactly id.
// An empty reference matches nothing.
func (r NodeRef) Is(id NodeID) bool { return r.ok && r.id == id }

// Clear empties the reference in place.
func (r *NodeRef) Clear() { *r = NodeRef{} }

// Node is a single circle in the map.
//
// X and Y are the circle's center in a shared 2-D plane; Radius is always at
// least [MinRadius]. Children holds the ids of directly nested nodes in
// insertion order; the order is load-bearing for parent insertion, which
// substitutes in place. Predecessor points at the node created immediately
// before this one, anywhere in the document, and exists only for
// creation-order arrows.
type Node struct {
	ID     NodeID
	Label  string
	X, Y   float64
	Radius float64

	Parent      NodeRef
	Children    []NodeID
	Predecessor NodeRef
}

// Contains reports whether the point (x, y) lies inside the node's circle.
// Points exactly on the boundary count as inside.
func (n *Node) Contains(x, y float64) bool {
	dx, dy := x-n.X, y-n.Y
	return dx*dx+dy*dy <= n.Radius*n.Radius
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return !n.Parent.IsSet() }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }
