package plot

import "math"

type lineStyle struct {
	name   string
	period int
	on     int
}

var (
	solid  = lineStyle{name: "solid", period: 1, on: 1}
	dotted = lineStyle{name: "dotted", period: 4, on: 1}
	dashed = lineStyle{name: "dashed", period: 6, on: 3}
)

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

// canvas is a grid of braille cells, each holding 2x4 dots.
type canvas struct {
	cells [][]uint8
}

func newCanvas(width, height int) *canvas {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return &canvas{cells: cells}
}

func (c *canvas) dotWidth() int {
	if len(c.cells) == 0 {
		return 0
	}
	return len(c.cells[0]) * 2
}

func (c *canvas) dotHeight() int {
	return len(c.cells) * 4
}

func (c *canvas) set(x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(c.cells) || cellX >= len(c.cells[cellY]) {
		return
	}
	c.cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

func (c *canvas) line(x0, y0, x1, y1 int, style lineStyle) {
	drawLine(x0, y0, x1, y1, func(x, y int) {
		if style.shouldPlot(x + y) {
			c.set(x, y)
		}
	})
}

func (c *canvas) circle(x, y int) {
	c.set(x-1, y)
	c.set(x+1, y)
	c.set(x, y-1)
	c.set(x, y+1)
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func brailleDotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}

// composeCell merges every layer at (x, y); the first layer with dots owns the colour.
func composeCell(layers []*canvas, x, y int) (uint8, int) {
	var mask uint8
	owner := -1
	for i, l := range layers {
		if y < 0 || y >= len(l.cells) || x < 0 || x >= len(l.cells[y]) {
			continue
		}
		m := l.cells[y][x]
		if m == 0 {
			continue
		}
		if owner == -1 {
			owner = i
		}
		mask |= m
	}
	return mask, owner
}
