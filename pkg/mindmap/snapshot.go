package mindmap

// Snapshot is the canonical serialization format for a map document.
// Used for persistence, API responses, and cross-tool export.
//
// The format is designed for round-trip fidelity: snapshot → restore →
// snapshot produces identical results, including the id counter, so a
// reloaded document keeps allocating fresh ids where the session left off.
// The selection is deliberately not part of it; selections are transient
// editor state.
type Snapshot struct {
	Nodes  []NodeRecord `json:"nodes" bson:"nodes"`
	Latest *int64       `json:"latest,omitempty" bson:"latest,omitempty"`
	NextID int64        `json:"next_id" bson:"next_id"`
}

// NodeRecord is the serialized form of a single node. Optional references
// flatten to nullable ids.
type NodeRecord struct {
	ID          int64   `json:"id" bson:"id"`
	Label       string  `json:"label" bson:"label"`
	X           float64 `json:"x" bson:"x"`
	Y           float64 `json:"y" bson:"y"`
	Radius      float64 `json:"radius" bson:"radius"`
	Parent      *int64  `json:"parent,omitempty" bson:"parent,omitempty"`
	Children    []int64 `json:"children,omitempty" bson:"children,omitempty"`
	Predecessor *int64  `json:"predecessor,omitempty" bson:"predecessor,omitempty"`
}

// Snapshot exports the document in insertion order.
func (m *Map) Snapshot() Snapshot {
	ids := m.store.IDs()
	snap := Snapshot{
		Nodes:  make([]NodeRecord, 0, len(ids)),
		Latest: refToPtr(m.latest),
		NextID: int64(m.store.NextID()),
	}
	for _, id := range ids {
		n, ok := m.store.Node(id)
		if !ok {
			continue
		}
		rec := NodeRecord{
			ID:          int64(n.ID),
			Label:       n.Label,
			X:           n.X,
			Y:           n.Y,
			Radius:      n.Radius,
			Parent:      refToPtr(n.Parent),
			Predecessor: refToPtr(n.Predecessor),
		}
		for _, c := range n.Children {
			rec.Children = append(rec.Children, int64(c))
		}
		snap.Nodes = append(snap.Nodes, rec)
	}
	return snap
}

// Restore replaces the document with the snapshot's contents. Record order
// becomes insertion order; duplicate ids keep the first record. Restore is
// tolerant of references to absent nodes - readers skip them - and never
// validates geometry. The selection is cleared.
//
// The id counter resumes at the snapshot's NextID, or past the highest
// restored id when the snapshot predates counter persistence.
func (m *Map) Restore(snap Snapshot) {
	m.store.Reset()
	m.selected.Clear()
	for _, rec := range snap.Nodes {
		n := Node{
			ID:          NodeID(rec.ID),
			Label:       rec.Label,
			X:           rec.X,
			Y:           rec.Y,
			Radius:      rec.Radius,
			Parent:      refFromPtr(rec.Parent),
			Predecessor: refFromPtr(rec.Predecessor),
		}
		for _, c := range rec.Children {
			n.Children = append(n.Children, NodeID(c))
		}
		m.store.put(n)
	}
	if NodeID(snap.NextID) > m.store.nextID {
		m.store.nextID = NodeID(snap.NextID)
	}
	m.latest = refFromPtr(snap.Latest)
	m.changed()
}

func refToPtr(r NodeRef) *int64 {
	id, ok := r.Get()
	if !ok {
		return nil
	}
	v := int64(id)
	return &v
}

func refFromPtr(p *int64) NodeRef {
	if p == nil {
		return NodeRef{}
	}
	return Ref(NodeID(*p))
}
