package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/4TheSolutions/nest/pkg/fonts"
	"github.com/4TheSolutions/nest/pkg/scene"
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	scale  float64
	arrows bool
}

// WithScale multiplies the rendered width and height. The viewBox is
// unchanged, so coordinates stay in plane units.
func WithScale(s float64) SVGOption { return func(r *svgRenderer) { r.scale = s } }

// WithoutArrows omits the creation-order arrows.
func WithoutArrows() SVGOption { return func(r *svgRenderer) { r.arrows = false } }

// RenderSVG renders the scene as a standalone SVG document. Circles are
// emitted in the scene's paint order, so parents lie underneath their
// children; labels and arrows are painted on top.
func RenderSVG(sc *scene.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{scale: 1, arrows: true}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		r.scale = 1
	}

	minX, minY, w, h := sc.MinX, sc.MinY, sc.Width(), sc.Height()
	if sc.Empty() {
		minX, minY, w, h = 0, 0, 200, 150
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		minX, minY, w, h, w*r.scale, h*r.scale)
	fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#ffffff"/>`+"\n", minX, minY, w, h)

	if r.arrows && len(sc.Arrows) > 0 {
		renderArrowDefs(&buf)
	}

	for _, c := range sc.Circles {
		stroke, width := circleStroke, strokeWidth
		if c.Selected {
			stroke, width = selectedStroke, selectedWidth
		}
		fmt.Fprintf(&buf, `  <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="%s" stroke-width="%.1f"/>`+"\n",
			c.X, c.Y, c.R, fillFor(c.Depth), stroke, width)
	}

	if r.arrows {
		for _, a := range sc.Arrows {
			fmt.Fprintf(&buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1.5" stroke-dasharray="5 4" marker-end="url(#arrowhead)"/>`+"\n",
				a.X1, a.Y1, a.X2, a.Y2, arrowStroke)
		}
	}

	for _, c := range sc.Circles {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="%.0f" fill="%s">%s</text>`+"\n",
			c.LabelX, c.LabelY, fonts.FontFamily, labelFontSize, labelColor, html.EscapeString(c.Label))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderArrowDefs(buf *bytes.Buffer) {
	fmt.Fprintf(buf, `  <defs><marker id="arrowhead" markerWidth="10" markerHeight="8" refX="9" refY="4" orient="auto"><path d="M0,0 L10,4 L0,8 z" fill="%s"/></marker></defs>`+"\n",
		arrowStroke)
}
