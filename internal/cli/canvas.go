package cli

import "math"

// World units per terminal cell. Rows cover twice the world distance of
// columns because terminal cells are roughly twice as tall as they are
// wide; scaling the axes separately keeps circles round on screen.
const (
	unitX = 4.0
	unitY = 8.0
)

// toScreen converts a world point to the cell containing it, given the
// world coordinates of the viewport's top-left corner.
func toScreen(panX, panY, x, y float64) (int, int) {
	return int(math.Floor((x - panX) / unitX)), int(math.Floor((y - panY) / unitY))
}

// toWorld converts a cell to the world point at its center.
func toWorld(panX, panY float64, cx, cy int) (float64, float64) {
	return panX + (float64(cx)+0.5)*unitX, panY + (float64(cy)+0.5)*unitY
}

// canvas is the rune grid the editor plots a scene onto. Plots outside the
// grid are silently clipped, so callers never need to pre-clamp.
type canvas struct {
	width  int
	height int
	cells  [][]rune
}

func newCanvas(width, height int) *canvas {
	cells := make([][]rune, height)
	for i := range cells {
		cells[i] = make([]rune, width)
		for j := range cells[i] {
			cells[i][j] = ' '
		}
	}
	return &canvas{width: width, height: height, cells: cells}
}

func (c *canvas) set(x, y int, r rune) {
	if y < 0 || y >= c.height || x < 0 || x >= c.width {
		return
	}
	c.cells[y][x] = r
}

// drawCircle plots the outline of a world-space circle by sweeping the
// perimeter at cell resolution.
func (c *canvas) drawCircle(panX, panY, cx, cy, r float64, ring rune) {
	steps := int(2 * math.Pi * r / unitX)
	if steps < 12 {
		steps = 12
	}
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		sx, sy := toScreen(panX, panY, cx+r*math.Cos(a), cy+r*math.Sin(a))
		c.set(sx, sy, ring)
	}
}

// drawLabel centers text on a world anchor point.
func (c *canvas) drawLabel(panX, panY, x, y float64, label string) {
	runes := []rune(label)
	sx, sy := toScreen(panX, panY, x, y)
	start := sx - len(runes)/2
	for i, r := range runes {
		c.set(start+i, sy, r)
	}
}

// drawArrow plots a dotted line between two world points with an arrowhead
// just short of the target, leaving the endpoint cells for the labels
// drawn on top.
func (c *canvas) drawArrow(panX, panY, x1, y1, x2, y2 float64) {
	fx, fy := toScreen(panX, panY, x1, y1)
	tx, ty := toScreen(panX, panY, x2, y2)
	if fx == tx && fy == ty {
		return
	}

	head := arrowHead(x2-x1, y2-y1)

	// Bresenham over cells. Track the cell before the endpoint so the
	// head lands there instead of under the target's label.
	dx, sx := abs(tx-fx), 1
	if fx > tx {
		sx = -1
	}
	dy, sy := -abs(ty-fy), 1
	if fy > ty {
		sy = -1
	}
	err := dx + dy

	x, y := fx, fy
	prevX, prevY := fx, fy
	for x != tx || y != ty {
		if x != fx || y != fy {
			c.set(x, y, '·')
		}
		prevX, prevY = x, y
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
	if prevX != fx || prevY != fy {
		c.set(prevX, prevY, head)
	}
}

// arrowHead picks the head rune by the dominant screen-space direction.
func arrowHead(dx, dy float64) rune {
	if math.Abs(dx)/unitX >= math.Abs(dy)/unitY {
		if dx > 0 {
			return '▶'
		}
		return '◀'
	}
	if dy > 0 {
		return '▼'
	}
	return '▲'
}

// lines renders the grid as one string per row.
func (c *canvas) lines() []string {
	rows := make([]string, c.height)
	for i, row := range c.cells {
		rows[i] = string(row)
	}
	return rows
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
