package design

import (
	"canva-clone/core"
)

// DuplicateOffset is how far a duplicated element is shifted on both axes.
const DuplicateOffset = 20.0

// Add validates in, appends the new element on top and selects it.
func (s *Store) Add(in core.ElementInput) (string, error) {
	el, err := in.Build(s.newID())
	if err != nil {
		return "", err
	}
	if in.ZIndex == nil {
		el.ZIndex = s.nextZ()
	}

	s.record()
	s.elements = append(s.elements, el)
	s.selection = []string{el.ID}
	s.touch()
	return el.ID, nil
}

func (s *Store) nextZ() int {
	if z, ok := s.maxZ(); ok {
		return z + 1
	}
	return 0
}

// Update merges p into the element with the given id. Unknown ids are
// ignored. A patch carrying a payload for another kind is rejected.
func (s *Store) Update(id string, p core.Patch) error {
	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	if err := p.CheckKind(s.elements[i].Kind); err != nil {
		return err
	}

	s.record()
	s.elements[i].Apply(p)
	s.touch()
	return nil
}

// Delete removes the element with the given id. It reports whether an
// element was removed.
func (s *Store) Delete(id string) bool {
	return s.removeWhere(func(el core.Element) bool { return el.ID == id })
}

// DeleteSelected removes every selected element and reports how many were
// removed.
func (s *Store) DeleteSelected() int {
	if len(s.selection) == 0 {
		return 0
	}
	selected := make(map[string]struct{}, len(s.selection))
	for _, id := range s.selection {
		selected[id] = struct{}{}
	}
	before := len(s.elements)
	s.removeWhere(func(el core.Element) bool {
		_, ok := selected[el.ID]
		return ok
	})
	return before - len(s.elements)
}

func (s *Store) removeWhere(match func(core.Element) bool) bool {
	found := false
	for _, el := range s.elements {
		if match(el) {
			found = true
			break
		}
	}
	if !found {
		return false
	}

	s.record()
	kept := make([]core.Element, 0, len(s.elements))
	for _, el := range s.elements {
		if !match(el) {
			kept = append(kept, el)
		}
	}
	s.elements = kept
	s.pruneSelection()
	s.touch()
	return true
}

// Move shifts an element by (dx, dy) from its current position.
func (s *Store) Move(id string, dx, dy float64) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.record()
	s.elements[i].X += dx
	s.elements[i].Y += dy
	s.touch()
}

// Resize sets an element's size, raising each dimension to the minimum.
// The position is left alone.
func (s *Store) Resize(id string, width, height float64) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.record()
	s.elements[i].Width = core.ClampSize(width)
	s.elements[i].Height = core.ClampSize(height)
	s.touch()
}

// ResizeByHandle resizes an element as if handle were dragged by (dx, dy),
// keeping it inside the canvas.
func (s *Store) ResizeByHandle(id string, h Handle, dx, dy float64) error {
	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	r, err := ResizeRect(s.elements[i].Bounds(), h, dx, dy, s.design.Canvas())
	if err != nil {
		return err
	}
	s.record()
	s.setBounds(i, r)
	s.touch()
	return nil
}

func (s *Store) setBounds(i int, r core.Rect) {
	el := &s.elements[i]
	el.X, el.Y, el.Width, el.Height = r.X, r.Y, r.Width, r.Height
}

// BringToFront gives the element the highest z-index and moves it to the
// end of the rendering order.
func (s *Store) BringToFront(id string) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	z, _ := s.maxZ()

	s.record()
	el := s.elements[i]
	el.ZIndex = z + 1
	s.elements = append(append(s.elements[:i:i], s.elements[i+1:]...), el)
	s.touch()
}

// SendToBack gives the element the lowest z-index and moves it to the
// start of the rendering order.
func (s *Store) SendToBack(id string) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	z, _ := s.minZ()

	s.record()
	el := s.elements[i]
	el.ZIndex = z - 1
	rest := append(s.elements[:i:i], s.elements[i+1:]...)
	s.elements = append([]core.Element{el}, rest...)
	s.touch()
}

// Duplicate copies an element under a new id, offset by DuplicateOffset,
// places the copy on top and selects it. It returns the new id, or "" when
// id is unknown.
func (s *Store) Duplicate(id string) string {
	i := s.indexOf(id)
	if i < 0 {
		return ""
	}
	dup := s.elements[i].Clone()
	dup.ID = s.newID()
	dup.X += DuplicateOffset
	dup.Y += DuplicateOffset
	dup.ZIndex = s.nextZ()

	s.record()
	s.elements = append(s.elements, dup)
	s.selection = []string{dup.ID}
	s.touch()
	return dup.ID
}
