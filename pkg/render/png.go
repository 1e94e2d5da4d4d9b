package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fogleman/gg"

	"github.com/4TheSolutions/nest/pkg/fonts"
	"github.com/4TheSolutions/nest/pkg/scene"
)

// RenderPNG rasterizes the scene. A scale of 2.0 doubles the resolution for
// high-DPI displays; scales at or below zero fall back to 1.
func RenderPNG(sc *scene.Scene, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}

	w, h := sc.Width(), sc.Height()
	if sc.Empty() {
		w, h = 200, 150
	}
	dc := gg.NewContext(int(math.Ceil(w*scale)), int(math.Ceil(h*scale)))
	dc.SetHexColor("#ffffff")
	dc.Clear()
	dc.Scale(scale, scale)
	dc.Translate(-sc.MinX, -sc.MinY)

	face, err := fonts.Face(labelFontSize * scale)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	dc.SetFontFace(face)

	for _, c := range sc.Circles {
		dc.DrawCircle(c.X, c.Y, c.R)
		dc.SetHexColor(fillFor(c.Depth))
		dc.FillPreserve()
		if c.Selected {
			dc.SetHexColor(selectedStroke)
			dc.SetLineWidth(selectedWidth)
		} else {
			dc.SetHexColor(circleStroke)
			dc.SetLineWidth(strokeWidth)
		}
		dc.Stroke()
	}

	dc.SetHexColor(arrowStroke)
	dc.SetLineWidth(1.5)
	for _, a := range sc.Arrows {
		dc.SetDash(5, 4)
		dc.DrawLine(a.X1, a.Y1, a.X2, a.Y2)
		dc.Stroke()
		dc.SetDash()
		drawArrowhead(dc, a.X1, a.Y1, a.X2, a.Y2)
	}

	// Glyphs are drawn at face size regardless of the context matrix, so
	// the face is sized for device pixels up front.
	dc.SetHexColor(labelColor)
	for _, c := range sc.Circles {
		dc.DrawStringAnchored(c.Label, c.LabelX, c.LabelY, 0.5, 0.35)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawArrowhead(dc *gg.Context, fromX, fromY, toX, toY float64) {
	dx, dy := toX-fromX, toY-fromY
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx, dy = dx/length, dy/length

	const size, spread = 7.0, 0.45
	dc.MoveTo(toX, toY)
	dc.LineTo(toX-size*dx+size*dy*spread, toY-size*dy-size*dx*spread)
	dc.LineTo(toX-size*dx-size*dy*spread, toY-size*dy+size*dx*spread)
	dc.ClosePath()
	dc.Fill()
}
