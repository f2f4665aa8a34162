package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/whale2d/sim2d/internal/component"
	"github.com/whale2d/sim2d/internal/core/ecs"
	"github.com/whale2d/sim2d/internal/input"
	"github.com/whale2d/sim2d/internal/world"
)

// Terminal cells are roughly twice as tall as wide.
const cellAspect = 2.0

var (
	styleStatic = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleBody   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleGround = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorTeal)
)

// viewer draws the world on a terminal and feeds key presses into the
// simulation's key state. The camera sits at the screen centre, y up.
type viewer struct {
	screen       tcell.Screen
	cellsPerUnit float64
	events       chan tcell.Event
}

func newViewer(screen tcell.Screen, cellsPerUnit float64) *viewer {
	if cellsPerUnit <= 0 {
		cellsPerUnit = 1
	}
	screen.HideCursor()
	return &viewer{
		screen:       screen,
		cellsPerUnit: cellsPerUnit,
		events:       make(chan tcell.Event, 100),
	}
}

// start polls terminal events on a separate goroutine; the simulation loop
// reads them from the returned channel between ticks.
func (v *viewer) start() <-chan tcell.Event {
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(v.events)
				return
			}
			v.events <- ev
		}
	}()
	return v.events
}

// handle applies one terminal event, reporting false when the user quits.
func (v *viewer) handle(ev tcell.Event, keys *input.Keys) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune && ev.Rune() == 'q' {
			return false
		}
		for _, code := range keyCodes(ev) {
			keys.Press(code)
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// keyCodes maps a terminal key onto the codes controller scripts test.
// Terminals report no modifier for letters, so an upper-case letter stands
// for the letter with ShiftLeft held.
func keyCodes(ev *tcell.EventKey) []string {
	switch ev.Key() {
	case tcell.KeyLeft:
		return []string{"KeyA"}
	case tcell.KeyRight:
		return []string{"KeyD"}
	case tcell.KeyUp:
		return []string{"Space"}
	case tcell.KeyRune:
	default:
		return nil
	}
	r := ev.Rune()
	switch {
	case r == ' ':
		return []string{"Space"}
	case r >= 'a' && r <= 'z':
		return []string{"Key" + strings.ToUpper(string(r))}
	case r >= 'A' && r <= 'Z':
		return []string{"Key" + string(r), "ShiftLeft"}
	}
	return nil
}

// project maps a world position to a screen cell.
func (v *viewer) project(x, y float64, ws *world.State, w, h int) (int, int) {
	cam := ws.Camera.Position
	sx := float64(w)/2 + (x-cam.X)*v.cellsPerUnit*cellAspect
	sy := float64(h)/2 - (y-cam.Y)*v.cellsPerUnit
	return int(math.Floor(sx)), int(math.Floor(sy))
}

// unproject maps a cell centre back to world space.
func (v *viewer) unproject(cx, cy int, ws *world.State, w, h int) (float64, float64) {
	cam := ws.Camera.Position
	x := (float64(cx)+0.5-float64(w)/2)/(v.cellsPerUnit*cellAspect) + cam.X
	y := (float64(h)/2-float64(cy)-0.5)/v.cellsPerUnit + cam.Y
	return x, y
}

func (v *viewer) draw(ws *world.State) {
	v.screen.Clear()
	w, h := v.screen.Size()

	ecs.Each2(ws.Transforms, ws.Colliders, func(id ecs.EntityID, t *component.Transform, c *component.Collider) {
		style := styleStatic
		if rb, ok := ws.Bodies.Get(id); ok && !rb.Immovable() {
			style = styleBody
		}
		if res, ok := ws.Collisions.Get(id); ok && res.HasHitBottom() {
			style = styleGround
		}
		v.drawShape(ws, t, c.Shape(), style, w, h)
	})

	// sprite frame and facing at the entity centre
	ecs.Each2(ws.Transforms, ws.Sprites, func(_ ecs.EntityID, t *component.Transform, sp *component.Sprite) {
		x, y := v.project(t.Position.X, t.Position.Y, ws, w, h)
		glyph := '>'
		if t.FacingLeft() {
			glyph = '<'
		}
		v.screen.SetContent(x, y, glyph, nil, styleBody)
		if f, ok := sp.Frame(); ok {
			v.screen.SetContent(x+1, y, rune('0'+f%10), nil, styleBody)
		}
	})

	status := fmt.Sprintf(" tick %d  digest %016x  keys %s  [a/d move, space jump, q quit] ",
		ws.Tick(), ws.Digest(), strings.Join(ws.Keys.Pressed(), ","))
	for i, r := range status {
		if i >= w {
			break
		}
		v.screen.SetContent(i, 0, r, nil, styleStatus)
	}
	v.screen.Show()
}

func (v *viewer) drawShape(ws *world.State, t *component.Transform, s component.Shape, style tcell.Style, w, h int) {
	var hx, hy float64
	switch s.Kind {
	case component.ShapeCircle:
		hx, hy = s.Radius, s.Radius
	case component.ShapeRect:
		hx, hy = s.Width/2, s.Height/2
	default:
		return
	}
	x0, y0 := v.project(t.Position.X-hx, t.Position.Y+hy, ws, w, h)
	x1, y1 := v.project(t.Position.X+hx, t.Position.Y-hy, ws, w, h)
	for cy := max(y0, 1); cy <= min(y1, h-1); cy++ {
		for cx := max(x0, 0); cx <= min(x1, w-1); cx++ {
			px, py := v.unproject(cx, cy, ws, w, h)
			dx, dy := px-t.Position.X, py-t.Position.Y
			switch s.Kind {
			case component.ShapeCircle:
				if dx*dx+dy*dy <= s.Radius*s.Radius {
					v.screen.SetContent(cx, cy, 'o', nil, style)
				}
			case component.ShapeRect:
				if math.Abs(dx) <= hx && math.Abs(dy) <= hy {
					v.screen.SetContent(cx, cy, '#', nil, style)
				}
			}
		}
	}
}

func (v *viewer) close() {
	v.screen.Fini()
}
