package design

import (
	"slices"

	"canva-clone/core"
)

// Select changes the selection. Without multi the selection becomes just
// id; with multi, id is toggled in or out. Unknown ids are ignored.
func (s *Store) Select(id string, multi bool) {
	if s.indexOf(id) < 0 {
		return
	}
	if !multi {
		s.selection = []string{id}
		return
	}
	if i := slices.Index(s.selection, id); i >= 0 {
		s.selection = slices.Delete(s.selection, i, i+1)
		return
	}
	s.selection = append(s.selection, id)
}

func (s *Store) ClearSelection() {
	s.selection = nil
}

// IsSelected reports whether id is part of the selection.
func (s *Store) IsSelected(id string) bool {
	return slices.Contains(s.selection, id)
}

// ElementAt returns the topmost element whose bounds contain (x, y).
// Rotation is ignored.
func (s *Store) ElementAt(x, y float64) (core.Element, bool) {
	var (
		hit   core.Element
		found bool
	)
	for _, el := range s.elements {
		if !el.Bounds().Contains(x, y) {
			continue
		}
		// later elements render above earlier ones at equal z
		if !found || el.ZIndex >= hit.ZIndex {
			hit, found = el, true
		}
	}
	if !found {
		return core.Element{}, false
	}
	return hit.Clone(), true
}

// SelectInRect selects every element touching r, in rendering order, and
// returns the selected ids. With add the hits are added to the current
// selection instead of replacing it.
func (s *Store) SelectInRect(r core.Rect, add bool) []string {
	if !add {
		s.selection = nil
	}
	for _, el := range s.elements {
		if el.Bounds().Intersects(r) && !slices.Contains(s.selection, el.ID) {
			s.selection = append(s.selection, el.ID)
		}
	}
	return s.Selection()
}
