package design

import (
	"errors"
	"fmt"
	"math"

	"canva-clone/core"
)

// Handle names one of the eight resize grips around a selected element.
type Handle string

const (
	HandleTopLeft     Handle = "top-left"
	HandleTop         Handle = "top"
	HandleTopRight    Handle = "top-right"
	HandleRight       Handle = "right"
	HandleBottomRight Handle = "bottom-right"
	HandleBottom      Handle = "bottom"
	HandleBottomLeft  Handle = "bottom-left"
	HandleLeft        Handle = "left"
)

var ErrUnknownHandle = errors.New("unknown resize handle")

// Handles lists every resize handle, clockwise from the top-left corner.
var Handles = []Handle{
	HandleTopLeft, HandleTop, HandleTopRight, HandleRight,
	HandleBottomRight, HandleBottom, HandleBottomLeft, HandleLeft,
}

// axes reports which edge the handle moves on each axis: -1 for the near
// edge (left/top), +1 for the far edge (right/bottom), 0 when the axis is
// untouched.
func (h Handle) axes() (ax, ay int, ok bool) {
	switch h {
	case HandleTopLeft:
		return -1, -1, true
	case HandleTop:
		return 0, -1, true
	case HandleTopRight:
		return 1, -1, true
	case HandleRight:
		return 1, 0, true
	case HandleBottomRight:
		return 1, 1, true
	case HandleBottom:
		return 0, 1, true
	case HandleBottomLeft:
		return -1, 1, true
	case HandleLeft:
		return -1, 0, true
	}
	return 0, 0, false
}

func (h Handle) Valid() bool {
	_, _, ok := h.axes()
	return ok
}

// ResizeRect returns r after dragging handle h by (dx, dy), kept inside canvas.
//
// Far handles (right, bottom) grow the size by the delta and leave the
// origin in place. Near handles (left, top) shrink the size by the delta
// and shift the origin by it, so the opposite edge stays put. The result is
// then clamped in three steps: size to core.MinElementSize, position into
// the canvas, and size again so the far edge does not pass the canvas edge.
func ResizeRect(r core.Rect, h Handle, dx, dy float64, canvas core.Rect) (core.Rect, error) {
	ax, ay, ok := h.axes()
	if !ok {
		return r, fmt.Errorf("%w: %q", ErrUnknownHandle, h)
	}

	x, w := resizeAxis(r.X, r.Width, dx, ax)
	y, hgt := resizeAxis(r.Y, r.Height, dy, ay)

	x, y = clampInto(x, y, w, hgt, canvas)
	w = math.Min(canvas.Width-x, w)
	hgt = math.Min(canvas.Height-y, hgt)

	return core.Rect{X: x, Y: y, Width: w, Height: hgt}, nil
}

func resizeAxis(pos, size, delta float64, edge int) (float64, float64) {
	switch edge {
	case -1:
		return pos + delta, core.ClampSize(size - delta)
	case 1:
		return pos, core.ClampSize(size + delta)
	}
	return pos, size
}

// clampInto keeps a box of the given size fully inside canvas, as far as it fits.
func clampInto(x, y, w, h float64, canvas core.Rect) (float64, float64) {
	x = math.Max(0, math.Min(canvas.Width-w, x))
	y = math.Max(0, math.Min(canvas.Height-h, y))
	return x, y
}
