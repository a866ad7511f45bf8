package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tleroux/myosim/internal/experiment"
)

const (
	width       = 70
	height      = 22
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer draws the chain and its muscle paths as ASCII frames at a
// capped frame rate. Joint positions come from the generalized
// coordinates; muscle paths from the via-points' cached world positions.
type LiveRenderer struct {
	model     *experiment.Model
	frameRate int
	lastFrame time.Time
	canvas    [][]rune
	scale     float64
}

func NewLiveRenderer(model *experiment.Model, frameRate int) *LiveRenderer {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}

	reach := 0.0
	for _, l := range model.Chain.Links() {
		reach += l.Length
	}
	scale := 1.0
	if reach > 0 {
		scale = float64(height-8) / reach
	}

	return &LiveRenderer{
		model:     model,
		frameRate: frameRate,
		canvas:    canvas,
		scale:     scale,
	}
}

func (r *LiveRenderer) OnStep(q []float64, t float64) {
	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	r.clear()
	r.drawChain(q)
	r.drawMuscles()
	r.render(q, t)
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) line(x1, y1, x2, y2 int, c rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		r.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// toScreen maps world coordinates to the canvas; characters are roughly
// twice as tall as wide, so x is stretched.
func (r *LiveRenderer) toScreen(wx, wy float64) (int, int) {
	ox, oy := width/3, 5
	return ox + int(wx*r.scale*2), oy - int(wy*r.scale)
}

func (r *LiveRenderer) drawChain(q []float64) {
	px, py := r.toScreen(0, 0)
	r.set(px, py, '+')

	wx, wy, phi := 0.0, 0.0, 0.0
	for i, l := range r.model.Chain.Links() {
		if i < len(q) {
			phi += q[i]
		}
		nx := wx + l.Length*math.Cos(phi)
		ny := wy + l.Length*math.Sin(phi)

		sx1, sy1 := r.toScreen(wx, wy)
		sx2, sy2 := r.toScreen(nx, ny)
		r.line(sx1, sy1, sx2, sy2, '#')
		r.set(sx2, sy2, 'o')

		wx, wy = nx, ny
	}
}

func (r *LiveRenderer) drawMuscles() {
	for _, m := range r.model.Muscles.Muscles() {
		nodes := m.Nodes()
		for i := 1; i < len(nodes); i++ {
			p1 := nodes[i-1].Global()
			p2 := nodes[i].Global()
			x1, y1 := r.toScreen(p1.X, p1.Y)
			x2, y2 := r.toScreen(p2.X, p2.Y)
			r.line(x1, y1, x2, y2, '.')
		}
	}
}

func (r *LiveRenderer) render(q []float64, t float64) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.2fs\n", r.model.Name, t))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	stateStr := "  "
	for i, v := range q {
		if i >= 4 {
			break
		}
		stateStr += fmt.Sprintf("q%d=%.2f ", i, v)
	}
	b.WriteString(stateStr + "\n")

	muscleStr := "  "
	for i, m := range r.model.Muscles.Muscles() {
		if i >= 3 {
			muscleStr += "..."
			break
		}
		muscleStr += fmt.Sprintf("%s=%.3fm ", m.Name(), m.Length())
	}
	b.WriteString(muscleStr + "\n")

	fmt.Print(b.String())
}

func (r *LiveRenderer) Start() { fmt.Print(hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Print(showCursor) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
