package mindmap_test

import (
	"fmt"

	"github.com/4TheSolutions/nest/pkg/mindmap"
)

func ExampleMap() {
	// Build a small map: a root with two children.
	m := mindmap.New()
	root := m.AddRoot("trip")
	_ = m.SelectToggle(root)
	packing, _ := m.AddChild("packing")
	_, _ = m.AddChild("route")

	_ = m.Move(packing, 300, 120)

	fmt.Println("Nodes:", m.Len())
	r, _ := m.Node(root)
	fmt.Println("Root children:", len(r.Children))
	fmt.Printf("Root radius: %.1f\n", r.Radius)
	// Output:
	// Nodes: 3
	// Root children: 2
	// Root radius: 118.3
}

func ExampleMap_InsertParent() {
	// Wrapping a node keeps its place among its siblings.
	m := mindmap.New()
	root := m.AddRoot("home")
	kitchen, _ := m.AddChildTo(root, "kitchen")
	garden, _ := m.AddChildTo(root, "garden")

	_ = m.SelectToggle(garden)
	wrap, _ := m.InsertParent("outside")

	r, _ := m.Node(root)
	fmt.Println("First child is kitchen:", r.Children[0] == kitchen)
	fmt.Println("Second child is the wrapper:", r.Children[1] == wrap)

	g, _ := m.Node(garden)
	fmt.Println("Garden's parent is the wrapper:", g.Parent.Is(wrap))
	// Output:
	// First child is kitchen: true
	// Second child is the wrapper: true
	// Garden's parent is the wrapper: true
}

func ExampleMap_DeleteSubtree() {
	m := mindmap.New()
	root := m.AddRoot("projects")
	old, _ := m.AddChildTo(root, "old")
	_, _ = m.AddChildTo(old, "notes")
	_, _ = m.AddChildTo(root, "current")

	_ = m.SelectToggle(old)
	_ = m.DeleteSubtree()

	fmt.Println("Nodes left:", m.Len())
	// Output:
	// Nodes left: 2
}
