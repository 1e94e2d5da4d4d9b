package mindmap

import "slices"

// Store is the flat arena holding every node of a map document, keyed by id.
// It owns identity allocation and nothing else: no validation beyond
// existence checks, no invariant enforcement. Structural rules live in the
// mutation operations, geometric rules in the containment engine.
//
// The zero value is not usable - use NewStore. Store is not safe for
// concurrent use without external synchronization.
type Store struct {
	nodes  map[NodeID]*Node
	order  []NodeID // insertion order, deletions removed
	nextID NodeID
}

// NewStore creates an empty store whose first allocated id will be 1.
func NewStore() *Store {
	return &Store{
		nodes:  make(map[NodeID]*Node),
		nextID: 1,
	}
}

// Create inserts a node with caller-supplied geometry and topology fields,
// allocating a fresh id for it. Any ID set on the argument is overwritten.
// The returned pointer refers to the stored record, so later modifications
// through it are visible to the store.
func (s *Store) Create(n Node) *Node {
	n.ID = s.nextID
	s.nextID++
	node := &n
	s.nodes[node.ID] = node
	s.order = append(s.order, node.ID)
	return node
}

// put inserts a node under its existing id, advancing the id counter past
// it. Used when restoring persisted documents; ignores duplicates.
func (s *Store) put(n Node) {
	if _, exists := s.nodes[n.ID]; exists {
		return
	}
	node := &n
	s.nodes[node.ID] = node
	s.order = append(s.order, node.ID)
	if node.ID >= s.nextID {
		s.nextID = node.ID + 1
	}
}

// Node returns the node with the given id and true, or nil and false if not
// found. The pointer refers to the stored record.
func (s *Store) Node(id NodeID) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Delete removes a single record without touching any relations. Callers
// must already have detached the node from its parent; deleting an id that
// does not exist is a no-op.
func (s *Store) Delete(id NodeID) {
	if _, ok := s.nodes[id]; !ok {
		return
	}
	delete(s.nodes, id)
	s.order = slices.DeleteFunc(s.order, func(o NodeID) bool { return o == id })
}

// IDs returns all current ids in insertion order. The returned slice is a
// copy and can be modified freely.
func (s *Store) IDs() []NodeID { return slices.Clone(s.order) }

// Len returns the number of nodes in the store.
func (s *Store) Len() int { return len(s.nodes) }

// NextID returns the id the next Create call will assign.
// The counter only ever increases within a session.
func (s *Store) NextID() NodeID { return s.nextID }

// Roots returns the ids of all nodes without a parent, in insertion order.
func (s *Store) Roots() []NodeID {
	var roots []NodeID
	for _, id := range s.order {
		if n := s.nodes[id]; n.IsRoot() {
			roots = append(roots, id)
		}
	}
	return roots
}

// Reset empties the store and restarts id allocation at 1.
// A cleared document begins a fresh session.
func (s *Store) Reset() {
	s.nodes = make(map[NodeID]*Node)
	s.order = nil
	s.nextID = 1
}
