package core

// Button is the mouse button that triggered a pointer event.
type Button int

const (
	ButtonLeft Button = iota + 1
	ButtonRight
	ButtonMiddle
)

// Point is an absolute pointer coordinate.
type Point struct {
	X, Y float32
}

// Pan tracks a left-button grab-and-drag gesture. The zero value is idle.
type Pan struct {
	dragging bool
	last     Point
}

// Press starts a drag on the left button and reports whether it did.
func (p *Pan) Press(b Button, at Point) bool {
	if b != ButtonLeft {
		return false
	}
	p.dragging = true
	p.last = at
	return true
}

// Move returns the pointer delta since the last observed position.
// ok is false when no drag is active.
func (p *Pan) Move(at Point) (dx, dy float32, ok bool) {
	if !p.dragging {
		return 0, 0, false
	}
	dx, dy = at.X-p.last.X, at.Y-p.last.Y
	p.last = at
	return dx, dy, true
}

// Release ends a drag on the left button and reports whether one was active.
func (p *Pan) Release(b Button) bool {
	if b != ButtonLeft || !p.dragging {
		return false
	}
	p.dragging = false
	return true
}

// Dragging reports whether a drag is in progress
func (p *Pan) Dragging() bool {
	return p.dragging
}

// Last is the last observed pointer position of the active drag.
func (p *Pan) Last() Point {
	return p.last
}

// ApplyDelta moves a scroll offset against the pointer delta.
func ApplyDelta(offset Point, dx, dy float32) Point {
	return Point{X: offset.X - dx, Y: offset.Y - dy}
}

// ClampOffset keeps an offset inside [0, content-viewport] on each axis.
func ClampOffset(offset, content, viewport Point) Point {
	return Point{
		X: clampAxis(offset.X, content.X-viewport.X),
		Y: clampAxis(offset.Y, content.Y-viewport.Y),
	}
}

func clampAxis(v, limit float32) float32 {
	if limit < 0 {
		limit = 0
	}
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}
