package mindmap

// Geometry constants shared by the engine and its shells. All values are in
// plane units (pixels at scale 1).
const (
	// MinRadius is the absolute floor for any node's radius, leaf or parent.
	MinRadius = 10.0

	// Padding is the gap kept between a parent's circle and the bounding
	// box of its children when the parent is auto-fit.
	Padding = 15.0

	// DefaultRadius is the radius of a freshly created root node.
	DefaultRadius = 40.0

	// ChildRadius is the radius of a freshly created child node, slightly
	// smaller than its parent default so new children read as nested.
	ChildRadius = DefaultRadius / 1.2

	// ResizeStep is the radius increment used by grow/shrink shells.
	ResizeStep = 10.0
)

// Root placement. The first root lands at the origin point; each further
// root is offset from the previous one by the step vector so successive
// trees do not stack on top of each other.
const (
	rootOriginX, rootOriginY = 160.0, 120.0
	rootStepX, rootStepY     = 90.0, 70.0
)

// box is an axis-aligned bounding rectangle.
type box struct {
	minX, minY, maxX, maxY float64
}

func (b box) centerX() float64 { return (b.minX + b.maxX) / 2 }
func (b box) centerY() float64 { return (b.minY + b.maxY) / 2 }

// halfExtent returns the larger of the box's half-width and half-height.
func (b box) halfExtent() float64 {
	hw := (b.maxX - b.minX) / 2
	hh := (b.maxY - b.minY) / 2
	if hw > hh {
		return hw
	}
	return hh
}

// childrenBox computes the union of the (center ± radius) squares of n's
// children. Child ids that no longer resolve are skipped; ok is false when
// no child resolved at all.
func (s *Store) childrenBox(n *Node) (b box, ok bool) {
	for _, id := range n.Children {
		c, found := s.nodes[id]
		if !found {
			continue
		}
		cb := box{c.X - c.Radius, c.Y - c.Radius, c.X + c.Radius, c.Y + c.Radius}
		if !ok {
			b, ok = cb, true
			continue
		}
		b.minX = min(b.minX, cb.minX)
		b.minY = min(b.minY, cb.minY)
		b.maxX = max(b.maxX, cb.maxX)
		b.maxY = max(b.maxY, cb.maxY)
	}
	return b, ok
}

// FitToChildren re-centers the node on the bounding box of its children's
// circles and sets its radius to the box's half-extent plus [Padding].
// Nodes without children, and ids that do not resolve, are left untouched.
//
// The half-extent formula over-approximates the true minimum enclosing
// circle on purpose; it must not be replaced by a tighter fit, or documents
// laid out by earlier versions would shift on load.
//
// FitToChildren is idempotent: calling it twice with unchanged children
// yields the same center and radius.
func (s *Store) FitToChildren(id NodeID) {
	n, ok := s.nodes[id]
	if !ok || n.IsLeaf() {
		return
	}
	b, ok := s.childrenBox(n)
	if !ok {
		return
	}
	n.X = b.centerX()
	n.Y = b.centerY()
	n.Radius = b.halfExtent() + Padding
}

// PropagateUp restores the containment invariant along id's ancestor chain.
// It starts at id's parent (never the node itself) and calls
// [Store.FitToChildren] on each ancestor exactly once, closest first, until
// it reaches a root. The order is mandatory: every ancestor's bounding box
// reads the already-updated geometry of the node below it.
//
// A missing id anywhere in the walk ends it silently. Propagation targets
// can go stale when a deletion raced ahead, and that is a no-op, not a
// fault.
func (s *Store) PropagateUp(id NodeID) {
	n, ok := s.nodes[id]
	if !ok {
		return
	}
	ref := n.Parent
	for {
		pid, ok := ref.Get()
		if !ok {
			return
		}
		p, found := s.nodes[pid]
		if !found {
			return
		}
		s.FitToChildren(pid)
		ref = p.Parent
	}
}
