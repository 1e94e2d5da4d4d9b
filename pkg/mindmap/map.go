package mindmap

import (
	"errors"
	"slices"
)

var (
	// ErrNoSelection is returned by [Map.AddChild], [Map.InsertParent] and
	// [Map.DeleteSubtree] when no node is currently selected. The operation
	// has no target and nothing is changed.
	ErrNoSelection = errors.New("no node selected")

	// ErrNotFound is returned when an operation references an id that is no
	// longer present in the store, e.g. a stale target after a deletion.
	// Nothing is changed.
	ErrNotFound = errors.New("node not found")
)

// Hooks connects a Map to its shell. Both fields are optional; a nil hook
// is simply skipped.
type Hooks struct {
	// Commit receives a snapshot of the document after every completed
	// mutation. Shells persist the map here. Intermediate drag moves do not
	// commit; the drag session commits once when it ends.
	Commit func(Snapshot)

	// Change fires after every model change, including intermediate drag
	// moves. Shells re-render or broadcast here.
	Change func()
}

// Map is a mind map document together with its editor state: the node
// store, the current selection and the latest-created pointer feeding the
// creation-order chain.
//
// Mutations leave the tree well-formed and the containment invariant intact
// (except where a method documents otherwise), then commit and signal a
// change through [Hooks]. Map is not safe for concurrent use.
type Map struct {
	store    *Store
	selected NodeRef
	latest   NodeRef
	hooks    Hooks
}

// New creates an empty map with no hooks attached.
func New() *Map {
	return &Map{store: NewStore()}
}

// SetHooks attaches shell callbacks. Replaces any previously set hooks.
func (m *Map) SetHooks(h Hooks) { m.hooks = h }

// Store exposes the underlying node store for read access by renderers.
// Mutating it directly bypasses invariant maintenance.
func (m *Map) Store() *Store { return m.store }

// Node returns the node with the given id, or nil and false if not found.
func (m *Map) Node(id NodeID) (*Node, bool) { return m.store.Node(id) }

// Len returns the number of nodes in the document.
func (m *Map) Len() int { return m.store.Len() }

// commit persists and signals one completed mutation.
func (m *Map) commit() {
	if m.hooks.Commit != nil {
		m.hooks.Commit(m.Snapshot())
	}
	m.changed()
}

func (m *Map) changed() {
	if m.hooks.Change != nil {
		m.hooks.Change()
	}
}

// =============================================================================
// Selection
// =============================================================================

// Selected returns the currently selected node id, if any.
func (m *Map) Selected() (NodeID, bool) { return m.selected.Get() }

// SelectToggle selects id, or clears the selection when id is already
// selected. Returns [ErrNotFound] if the id does not resolve.
func (m *Map) SelectToggle(id NodeID) error {
	if _, ok := m.store.Node(id); !ok {
		return ErrNotFound
	}
	if m.selected.Is(id) {
		m.selected.Clear()
	} else {
		m.selected = Ref(id)
	}
	m.changed()
	return nil
}

// requireSelection resolves the current selection to a live node.
func (m *Map) requireSelection() (*Node, error) {
	id, ok := m.selected.Get()
	if !ok {
		return nil, ErrNoSelection
	}
	n, ok := m.store.Node(id)
	if !ok {
		return nil, ErrNotFound
	}
	return n, nil
}

// =============================================================================
// Node creation
// =============================================================================

// newNode allocates a node and threads it onto the creation-order chain.
func (m *Map) newNode(n Node) *Node {
	n.Predecessor = m.latest
	node := m.store.Create(n)
	m.latest = Ref(node.ID)
	return node
}

// AddRoot creates a new tree root. The first root lands at a fixed origin;
// each further root is offset from the most recently placed root by a fixed
// step vector. Roots have no ancestors, so no propagation happens.
func (m *Map) AddRoot(label string) NodeID {
	x, y := rootOriginX, rootOriginY
	if roots := m.store.Roots(); len(roots) > 0 {
		if prev, ok := m.store.Node(roots[len(roots)-1]); ok {
			x, y = prev.X+rootStepX, prev.Y+rootStepY
		}
	}
	n := m.newNode(Node{Label: label, X: x, Y: y, Radius: DefaultRadius})
	m.commit()
	return n.ID
}

// AddChild creates a new child under the currently selected node and
// re-fits the selected node and all of its ancestors around it.
// The child starts at its parent's center with [ChildRadius] and is
// appended to the end of the parent's children, preserving sibling order.
// Returns [ErrNoSelection] or [ErrNotFound].
func (m *Map) AddChild(label string) (NodeID, error) {
	parent, err := m.requireSelection()
	if err != nil {
		return 0, err
	}
	return m.addChildTo(parent, label), nil
}

// AddChildTo is [Map.AddChild] with an explicit parent id instead of the
// selection. Returns [ErrNotFound] if the parent does not resolve.
func (m *Map) AddChildTo(parent NodeID, label string) (NodeID, error) {
	p, ok := m.store.Node(parent)
	if !ok {
		return 0, ErrNotFound
	}
	return m.addChildTo(p, label), nil
}

func (m *Map) addChildTo(parent *Node, label string) NodeID {
	child := m.newNode(Node{
		Label:  label,
		X:      parent.X,
		Y:      parent.Y,
		Radius: ChildRadius,
		Parent: Ref(parent.ID),
	})
	parent.Children = append(parent.Children, child.ID)
	m.store.PropagateUp(child.ID)
	m.commit()
	return child.ID
}

// InsertParent wraps the currently selected node in a new parent: the new
// node takes the child's place in the tree (same parent, same sibling
// index) and the child becomes its only nested node. The new parent is
// fitted to its child immediately, then the old ancestor chain re-fits.
// Returns [ErrNoSelection] or [ErrNotFound].
func (m *Map) InsertParent(label string) (NodeID, error) {
	child, err := m.requireSelection()
	if err != nil {
		return 0, err
	}
	return m.insertParentOver(child, label), nil
}

// InsertParentOver is [Map.InsertParent] with an explicit child id instead
// of the selection. Returns [ErrNotFound] if the child does not resolve.
func (m *Map) InsertParentOver(child NodeID, label string) (NodeID, error) {
	c, ok := m.store.Node(child)
	if !ok {
		return 0, ErrNotFound
	}
	return m.insertParentOver(c, label), nil
}

func (m *Map) insertParentOver(child *Node, label string) NodeID {
	parent := m.newNode(Node{
		Label:    label,
		X:        child.X,
		Y:        child.Y,
		Radius:   DefaultRadius,
		Parent:   child.Parent,
		Children: []NodeID{child.ID},
	})

	// Substitute in place: the new node must occupy exactly the index the
	// child held in the grandparent's children, not be re-appended.
	if gpID, ok := child.Parent.Get(); ok {
		if gp, found := m.store.Node(gpID); found {
			for i, id := range gp.Children {
				if id == child.ID {
					gp.Children[i] = parent.ID
					break
				}
			}
		}
	}
	child.Parent = Ref(parent.ID)

	// The new node is sized directly around its one child; propagation
	// starts at its parent and walks the old grandparent chain.
	m.store.FitToChildren(parent.ID)
	m.store.PropagateUp(parent.ID)
	m.commit()
	return parent.ID
}

// =============================================================================
// Deletion
// =============================================================================

// DeleteSubtree removes the currently selected node and every descendant,
// then clears the selection. Returns [ErrNoSelection] or [ErrNotFound].
//
// Surviving ancestors are intentionally NOT re-fit: they keep their
// pre-deletion size and position even when that leaves them oversized.
// Long-standing documents depend on this, so it is preserved as
// compatibility behavior rather than corrected here.
func (m *Map) DeleteSubtree() error {
	n, err := m.requireSelection()
	if err != nil {
		return err
	}
	m.deleteSubtree(n)
	return nil
}

// DeleteSubtreeAt is [Map.DeleteSubtree] with an explicit root id instead
// of the selection. Returns [ErrNotFound] if the id does not resolve.
func (m *Map) DeleteSubtreeAt(id NodeID) error {
	n, ok := m.store.Node(id)
	if !ok {
		return ErrNotFound
	}
	m.deleteSubtree(n)
	return nil
}

func (m *Map) deleteSubtree(n *Node) {
	// Collect the subtree with an explicit worklist over the children
	// links. Deep chains stay off the call stack.
	doomed := []NodeID{n.ID}
	for stack := []NodeID{n.ID}; len(stack) > 0; {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, ok := m.store.Node(id)
		if !ok {
			continue
		}
		doomed = append(doomed, node.Children...)
		stack = append(stack, node.Children...)
	}

	// Detach the subtree root from its parent, then drop every record.
	if pid, ok := n.Parent.Get(); ok {
		if p, found := m.store.Node(pid); found {
			p.Children = slices.DeleteFunc(p.Children, func(id NodeID) bool { return id == n.ID })
		}
	}
	for _, id := range doomed {
		m.store.Delete(id)
		if m.latest.Is(id) {
			m.latest.Clear()
		}
	}
	m.selected.Clear()
	m.commit()
}

// =============================================================================
// Geometry
// =============================================================================

// Resize grows or shrinks a node's radius by delta.
//
// Growing is unconditional and never moves the node. Shrinking is clamped:
// the radius never drops below [MinRadius], nor below what the node needs
// to enclose its current children plus padding, and a shrinking node with
// children is always re-centered on their bounding box, whether or not the
// clamp bound. Ancestors re-fit afterwards either way.
// Returns [ErrNotFound].
func (m *Map) Resize(id NodeID, delta float64) error {
	n, ok := m.store.Node(id)
	if !ok {
		return ErrNotFound
	}
	if delta >= 0 {
		n.Radius += delta
	} else {
		floor := MinRadius
		b, hasChildren := m.store.childrenBox(n)
		if hasChildren {
			floor = max(floor, b.halfExtent()+Padding)
			n.X = b.centerX()
			n.Y = b.centerY()
		}
		n.Radius = max(n.Radius+delta, floor)
	}
	m.store.PropagateUp(id)
	m.commit()
	return nil
}

// Move sets a node's center to the given coordinates, unclamped, and
// re-fits its ancestors around the new position. The node's radius is
// untouched and its children stay at their absolute coordinates.
//
// The moved node itself is never re-fit to its own children here, so a
// dragged parent can sit off-center above them until a later mutation
// recenters it. Preserved as-is; shells must not auto-correct it.
// Returns [ErrNotFound].
func (m *Map) Move(id NodeID, x, y float64) error {
	d, err := m.StartDrag(id)
	if err != nil {
		return err
	}
	d.MoveTo(x, y)
	d.End()
	return nil
}

// ClearAll discards every node, the selection and the latest-created
// pointer, and restarts id allocation. The cleared document is committed.
func (m *Map) ClearAll() {
	m.store.Reset()
	m.selected.Clear()
	m.latest.Clear()
	m.commit()
}

// =============================================================================
// Dragging
// =============================================================================

// Drag is an in-flight drag session produced by [Map.StartDrag]. Each
// pointer move maps to one [Drag.MoveTo]; releasing the pointer maps to
// [Drag.End]. Intermediate moves propagate and signal a change for live
// feedback but do not commit; End commits exactly once.
type Drag struct {
	m     *Map
	id    NodeID
	moved bool
	done  bool
}

// StartDrag begins a drag session on the given node.
// Returns [ErrNotFound] if the id does not resolve.
func (m *Map) StartDrag(id NodeID) (*Drag, error) {
	if _, ok := m.store.Node(id); !ok {
		return nil, ErrNotFound
	}
	return &Drag{m: m, id: id}, nil
}

// MoveTo applies one incremental drag position: the node's center is set
// verbatim, ancestors re-fit, and the shell is signalled to re-render.
// A node deleted mid-session makes this a no-op.
func (d *Drag) MoveTo(x, y float64) {
	n, ok := d.m.store.Node(d.id)
	if !ok {
		return
	}
	n.X, n.Y = x, y
	d.m.store.PropagateUp(d.id)
	d.moved = true
	d.m.changed()
}

// Moved reports whether any MoveTo was applied. Shells use it to tell a
// click (select) from an actual drag on release.
func (d *Drag) Moved() bool { return d.moved }

// End finishes the session and commits the final position. There is no
// cancel path: releasing the pointer anywhere, including outside every
// node, commits. Calling End again is a no-op.
func (d *Drag) End() {
	if d.done {
		return
	}
	d.done = true
	d.m.commit()
}
