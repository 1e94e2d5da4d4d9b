package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/4TheSolutions/nest/pkg/scene"
)

// DOTOptions configures structural DOT export.
type DOTOptions struct {
	// Chain includes the creation-order chain as dashed, rank-neutral
	// edges alongside the tree.
	Chain bool
}

// ToDOT converts the scene's structure to Graphviz DOT: tree links as solid
// edges, and optionally the creation-order chain as dashed ones. Geometry
// is discarded; Graphviz lays the tree out on its own. Render the result
// with [RenderTreeSVG] or [RenderTreePNG].
func ToDOT(sc *scene.Scene, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph nest {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12, fixedsize=false];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("\n")

	for _, c := range sc.Circles {
		fmt.Fprintf(&buf, "  %d [label=%q, fillcolor=%q];\n", c.ID, c.Label, fillFor(c.Depth))
	}

	buf.WriteString("\n")
	for _, l := range sc.Links {
		fmt.Fprintf(&buf, "  %d -> %d;\n", l.Parent, l.Child)
	}
	if opts.Chain {
		for _, a := range sc.Arrows {
			fmt.Fprintf(&buf, "  %d -> %d [style=dashed, color=%q, constraint=false];\n", a.From, a.To, arrowStroke)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderTreeSVG renders a DOT graph to SVG using Graphviz.
func RenderTreeSVG(dot string) ([]byte, error) {
	var buf bytes.Buffer
	if err := renderTree(dot, graphviz.SVG, &buf); err != nil {
		return nil, err
	}
	return fixViewBox(buf.Bytes()), nil
}

// RenderTreePNG renders a DOT graph to PNG using Graphviz.
func RenderTreePNG(dot string) ([]byte, error) {
	var buf bytes.Buffer
	if err := renderTree(dot, graphviz.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderTree(dot string, format graphviz.Format, buf *bytes.Buffer) error {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	if err := gv.Render(ctx, g, format, buf); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

var (
	svgOpenTagRe = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe    = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// fixViewBox replaces Graphviz's pt-based width and height attributes with
// pixel values derived from the viewBox, which browsers otherwise scale
// down.
func fixViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	open := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgOpenTagRe.ReplaceAll(svg, []byte(open))
}
