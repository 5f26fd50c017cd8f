package design

import "canva-clone/core"

// gesture tracks a pointer drag on one element. The element's bounds at
// the start are kept so every event is computed from the same origin, and
// the pre-gesture snapshot is pushed to history only once.
type gesture struct {
	id       string
	start    core.Rect
	recorded bool
}

// BeginGesture starts a drag on the element with the given id, ending any
// gesture already in progress. It reports false when the id is unknown.
func (s *Store) BeginGesture(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		s.gesture = nil
		return false
	}
	s.gesture = &gesture{id: id, start: s.elements[i].Bounds()}
	return true
}

// InGesture reports whether a gesture is in progress.
func (s *Store) InGesture() bool {
	return s.gesture != nil
}

// EndGesture finishes the current gesture. It reports whether the gesture
// changed the document.
func (s *Store) EndGesture() bool {
	g := s.gesture
	s.gesture = nil
	return g != nil && g.recorded
}

// DragBy moves the gesture's element to its start position plus (dx, dy),
// the total pointer travel since BeginGesture, keeping it inside the canvas.
func (s *Store) DragBy(dx, dy float64) bool {
	g, i := s.activeGesture()
	if g == nil {
		return false
	}
	el := s.elements[i]
	x, y := clampInto(g.start.X+dx, g.start.Y+dy, el.Width, el.Height, s.design.Canvas())
	return s.applyGesture(i, core.Rect{X: x, Y: y, Width: el.Width, Height: el.Height})
}

// DragHandle resizes the gesture's element as if handle h had been dragged
// by (dx, dy) from where it was at BeginGesture.
func (s *Store) DragHandle(h Handle, dx, dy float64) (bool, error) {
	g, i := s.activeGesture()
	if g == nil {
		return false, nil
	}
	r, err := ResizeRect(g.start, h, dx, dy, s.design.Canvas())
	if err != nil {
		return false, err
	}
	return s.applyGesture(i, r), nil
}

func (s *Store) activeGesture() (*gesture, int) {
	if s.gesture == nil {
		return nil, -1
	}
	i := s.indexOf(s.gesture.id)
	if i < 0 {
		s.gesture = nil
		return nil, -1
	}
	return s.gesture, i
}

// applyGesture sets the element bounds, pushing history on the first
// change of the gesture.
func (s *Store) applyGesture(i int, r core.Rect) bool {
	if s.elements[i].Bounds() == r {
		return false
	}
	if !s.gesture.recorded {
		s.hist.push(core.CloneElements(s.elements))
		s.gesture.recorded = true
	}
	s.setBounds(i, r)
	s.touch()
	return true
}
