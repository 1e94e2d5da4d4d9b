// Package scene turns a mind map document into a flat, renderer-agnostic
// draw list: circles in paint order, creation-order arrows, and tree links.
// Every renderer (SVG, PNG, DOT, the terminal canvas) consumes the same
// scene so they cannot disagree about geometry.
package scene

import (
	"slices"

	"github.com/4TheSolutions/nest/pkg/mindmap"
)

const (
	// LabelInset is the distance from a circle's top edge down to the
	// center of its label. Labels sit near the top so nested children
	// keep the middle of the circle free.
	LabelInset = 12.0

	// Margin is the whitespace kept around the content bounding box.
	Margin = 20.0
)

// Circle is one node ready for drawing. LabelX/LabelY is the center of the
// label, which doubles as the anchor point for creation-order arrows; it is
// distinct from the circle center on purpose.
type Circle struct {
	ID       mindmap.NodeID `json:"id"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	R        float64        `json:"r"`
	Label    string         `json:"label"`
	LabelX   float64        `json:"label_x"`
	LabelY   float64        `json:"label_y"`
	Depth    int            `json:"depth"`
	Selected bool           `json:"selected,omitempty"`
}

// Arrow connects two label anchors along the creation-order chain,
// pointing from the earlier node to the later one.
type Arrow struct {
	From mindmap.NodeID `json:"from"`
	To   mindmap.NodeID `json:"to"`
	X1   float64        `json:"x1"`
	Y1   float64        `json:"y1"`
	X2   float64        `json:"x2"`
	Y2   float64        `json:"y2"`
}

// Link is a parent/child tree edge, used by structural exports.
type Link struct {
	Parent mindmap.NodeID `json:"parent"`
	Child  mindmap.NodeID `json:"child"`
}

// Scene is the complete draw list for one document.
type Scene struct {
	Circles []Circle `json:"circles"`
	Arrows  []Arrow  `json:"arrows,omitempty"`
	Links   []Link   `json:"links,omitempty"`

	// Content bounding box including Margin. Zero for an empty scene.
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Empty reports whether there is nothing to draw.
func (s *Scene) Empty() bool { return len(s.Circles) == 0 }

// Width returns the width of the content box.
func (s *Scene) Width() float64 { return s.MaxX - s.MinX }

// Height returns the height of the content box.
func (s *Scene) Height() float64 { return s.MaxY - s.MinY }

// Build assembles the scene for the map's current state.
//
// Circles are ordered parents before children (depth, then id) so painters
// draw containers underneath their contents. Arrows follow each node's
// predecessor reference; references to nodes that no longer exist are
// skipped, as the chain is not rewired when nodes are deleted.
func Build(m *mindmap.Map) *Scene {
	st := m.Store()
	ids := st.IDs()
	sc := &Scene{}
	if len(ids) == 0 {
		return sc
	}

	depths := make(map[mindmap.NodeID]int, len(ids))
	for _, id := range ids {
		depths[id] = depth(st, id)
	}

	selected, _ := m.Selected()
	for _, id := range ids {
		n, ok := st.Node(id)
		if !ok {
			continue
		}
		sc.Circles = append(sc.Circles, Circle{
			ID:       n.ID,
			X:        n.X,
			Y:        n.Y,
			R:        n.Radius,
			Label:    n.Label,
			LabelX:   n.X,
			LabelY:   n.Y - n.Radius + LabelInset,
			Depth:    depths[id],
			Selected: n.ID == selected,
		})
	}
	slices.SortStableFunc(sc.Circles, func(a, b Circle) int {
		if a.Depth != b.Depth {
			return a.Depth - b.Depth
		}
		return int(a.ID - b.ID)
	})

	anchors := make(map[mindmap.NodeID][2]float64, len(sc.Circles))
	for _, c := range sc.Circles {
		anchors[c.ID] = [2]float64{c.LabelX, c.LabelY}
	}
	for _, id := range ids {
		n, ok := st.Node(id)
		if !ok {
			continue
		}
		for _, child := range n.Children {
			if _, found := st.Node(child); found {
				sc.Links = append(sc.Links, Link{Parent: id, Child: child})
			}
		}
		pred, ok := n.Predecessor.Get()
		if !ok {
			continue
		}
		from, found := anchors[pred]
		if !found {
			continue
		}
		to := anchors[id]
		sc.Arrows = append(sc.Arrows, Arrow{
			From: pred, To: id,
			X1: from[0], Y1: from[1],
			X2: to[0], Y2: to[1],
		})
	}

	sc.MinX, sc.MinY = sc.Circles[0].X, sc.Circles[0].Y
	sc.MaxX, sc.MaxY = sc.MinX, sc.MinY
	for _, c := range sc.Circles {
		sc.MinX = min(sc.MinX, c.X-c.R)
		sc.MinY = min(sc.MinY, c.Y-c.R)
		sc.MaxX = max(sc.MaxX, c.X+c.R)
		sc.MaxY = max(sc.MaxY, c.Y+c.R)
	}
	sc.MinX -= Margin
	sc.MinY -= Margin
	sc.MaxX += Margin
	sc.MaxY += Margin
	return sc
}

// depth counts parent hops to the root. Hand-edited documents can contain
// parent cycles; the walk is capped at the store size.
func depth(st *mindmap.Store, id mindmap.NodeID) int {
	d := 0
	for range st.Len() {
		n, ok := st.Node(id)
		if !ok {
			return d
		}
		pid, ok := n.Parent.Get()
		if !ok {
			return d
		}
		id = pid
		d++
	}
	return d
}
