// Package pkg provides the core libraries for Nest mind maps.
//
// # Overview
//
// Nest edits tree-shaped mind maps drawn as nested circles: every node is a
// circle, and a parent circle always encloses the bounding box of its
// children plus padding. The pkg directory is organized into five areas:
//
//  1. [mindmap] - Domain logic (node store, mutations, containment engine)
//  2. [scene] - The draw list derived from a document
//  3. [render] - Visual exports (SVG, PNG, Graphviz DOT)
//  4. [storage] - Document persistence (file, memory, Redis, MongoDB)
//  5. [config] - TOML configuration
//
// # Architecture
//
// The typical data flow through Nest:
//
//	Editor / HTTP API
//	         ↓
//	    [mindmap] package (mutations + containment invariant)
//	         ↓
//	    [scene] package (paint-ordered circles, labels, arrows)
//	         ↓
//	    [render] package (SVG/PNG/DOT output)
//
// Persistence runs alongside: every completed mutation commits a
// [mindmap.Snapshot] through the shell's hooks into a [storage.Store].
//
// # Quick Start
//
// Build a small map and render it:
//
//	import (
//	    "github.com/4TheSolutions/nest/pkg/mindmap"
//	    "github.com/4TheSolutions/nest/pkg/render"
//	    "github.com/4TheSolutions/nest/pkg/scene"
//	)
//
//	// 1. Build the document
//	m := mindmap.New()
//	root := m.AddRoot("plan")
//	_ = m.SelectToggle(root)
//	_, _ = m.AddChild("research")
//
//	// 2. Derive the draw list
//	sc := scene.Build(m)
//
//	// 3. Render to SVG
//	svg := render.RenderSVG(sc)
//
// [mindmap]: https://pkg.go.dev/github.com/4TheSolutions/nest/pkg/mindmap
// [scene]: https://pkg.go.dev/github.com/4TheSolutions/nest/pkg/scene
// [render]: https://pkg.go.dev/github.com/4TheSolutions/nest/pkg/render
// [storage]: https://pkg.go.dev/github.com/4TheSolutions/nest/pkg/storage
// [config]: https://pkg.go.dev/github.com/4TheSolutions/nest/pkg/config
package pkg
