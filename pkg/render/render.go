// Package render produces visual exports of a mind map scene: hand-assembled
// SVG, rasterized PNG, and Graphviz DOT for structural views. All renderers
// read the same [scene.Scene], so output geometry is identical across
// formats.
package render

// Depth palette shared by the SVG and PNG painters. Fills cycle as circles
// nest deeper; strokes stay uniform so nesting reads through color alone.
var depthFills = []string{
	"#dbeafe", // depth 0: blue
	"#dcfce7", // green
	"#fef9c3", // yellow
	"#fce7f3", // pink
	"#e0e7ff", // violet
	"#f1f5f9", // slate
}

const (
	circleStroke   = "#334155"
	selectedStroke = "#e11d48"
	arrowStroke    = "#64748b"
	labelColor     = "#1f2937"

	labelFontSize = 13.0
	strokeWidth   = 1.5
	selectedWidth = 3.0
)

func fillFor(depth int) string {
	if depth < 0 {
		depth = 0
	}
	return depthFills[depth%len(depthFills)]
}
