// Package design holds the editable design document: its elements, the
// current selection, canvas properties and a bounded undo/redo history.
//
// A Store is not safe for concurrent use. Callers that share one across
// goroutines must serialise access themselves (see package session).
package design

import (
	"time"

	"canva-clone/core"

	"github.com/oklog/ulid/v2"
)

type (
	// Store is the single source of truth for one design document.
	Store struct {
		kv        core.KeyValueStore
		design    core.Design
		elements  []core.Element
		selection []string
		hist      *history
		gesture   *gesture

		newID func() string
		now   func() time.Time
	}

	// Option configures a Store.
	Option func(*Store)
)

// WithIDGenerator replaces the ULID generator used for element and design ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithClock replaces time.Now for timestamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

// WithHistoryLimit sets how many undo entries are kept.
func WithHistoryLimit(n int) Option {
	return func(s *Store) { s.hist = newHistory(n) }
}

// New returns a store holding the default empty design. kv may be nil, in
// which case Save and Load fail with an error.
func New(kv core.KeyValueStore, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		hist:  newHistory(DefaultHistoryLimit),
		newID: func() string { return ulid.Make().String() },
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reset(s.defaultDesign())
	return s
}

// defaultDesign returns an empty design with a fresh id, so designs started
// from a missing or unreadable record never share an identity.
func (s *Store) defaultDesign() core.Design {
	now := s.now()
	return core.Design{
		ID:         s.newID(),
		Name:       core.DefaultDesignName,
		Width:      core.DefaultCanvasW,
		Height:     core.DefaultCanvasH,
		Background: core.DefaultBackground,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// reset installs d with no elements, selection, history or gesture.
func (s *Store) reset(d core.Design) {
	s.design = d
	s.elements = []core.Element{}
	s.selection = nil
	s.gesture = nil
	s.hist.reset()
}

// Design returns the canvas-level metadata.
func (s *Store) Design() core.Design {
	return s.design
}

// Elements returns a deep copy of the element list in rendering order.
func (s *Store) Elements() []core.Element {
	return core.CloneElements(s.elements)
}

// Element returns a copy of the element with the given id.
func (s *Store) Element(id string) (core.Element, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.elements[i].Clone(), true
	}
	return core.Element{}, false
}

// Selection returns the selected ids in selection order.
func (s *Store) Selection() []string {
	out := make([]string, len(s.selection))
	copy(out, s.selection)
	return out
}

func (s *Store) CanUndo() bool { return s.hist.canUndo() }
func (s *Store) CanRedo() bool { return s.hist.canRedo() }

// Snapshot returns a copy of everything a view needs to draw the document.
func (s *Store) Snapshot() core.Snapshot {
	return core.Snapshot{
		Design:    s.design,
		Elements:  s.Elements(),
		Selection: s.Selection(),
		CanUndo:   s.CanUndo(),
		CanRedo:   s.CanRedo(),
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.elements {
		if s.elements[i].ID == id {
			return i
		}
	}
	return -1
}

// record pushes the current element list onto the undo stack. Any
// gesture in progress ends, since the edit is not part of it.
func (s *Store) record() {
	s.gesture = nil
	s.hist.push(core.CloneElements(s.elements))
}

func (s *Store) touch() {
	s.design.UpdatedAt = s.now()
}

// pruneSelection drops selected ids that no longer reference an element.
func (s *Store) pruneSelection() {
	if len(s.selection) == 0 {
		return
	}
	kept := s.selection[:0]
	for _, id := range s.selection {
		if s.indexOf(id) >= 0 {
			kept = append(kept, id)
		}
	}
	s.selection = kept
}

func (s *Store) maxZ() (int, bool) {
	if len(s.elements) == 0 {
		return 0, false
	}
	z := s.elements[0].ZIndex
	for _, el := range s.elements[1:] {
		if el.ZIndex > z {
			z = el.ZIndex
		}
	}
	return z, true
}

func (s *Store) minZ() (int, bool) {
	if len(s.elements) == 0 {
		return 0, false
	}
	z := s.elements[0].ZIndex
	for _, el := range s.elements[1:] {
		if el.ZIndex < z {
			z = el.ZIndex
		}
	}
	return z, true
}

// Undo restores the element list recorded before the last mutation.
// It reports whether anything changed.
func (s *Store) Undo() bool {
	s.gesture = nil
	prev, ok := s.hist.undo(s.elements)
	if !ok {
		return false
	}
	s.elements = prev
	s.pruneSelection()
	s.touch()
	return true
}

// Redo reapplies the last undone mutation. It reports whether anything changed.
func (s *Store) Redo() bool {
	s.gesture = nil
	next, ok := s.hist.redo(s.elements)
	if !ok {
		return false
	}
	s.elements = next
	s.pruneSelection()
	s.touch()
	return true
}

// SetBackground changes the canvas colour. Canvas properties are not part
// of the undo timeline.
func (s *Store) SetBackground(color string) {
	s.design.Background = color
	s.touch()
}

// SetCanvasSize changes the canvas dimensions, raising each to the minimum
// element size. Like the background it is not undoable.
func (s *Store) SetCanvasSize(width, height float64) {
	s.design.Width = core.ClampSize(width)
	s.design.Height = core.ClampSize(height)
	s.touch()
}

func (s *Store) Rename(name string) {
	if name == "" {
		name = core.DefaultDesignName
	}
	s.design.Name = name
	s.touch()
}

// NewDesign replaces the document with an empty design of the given size.
// Non-positive sizes fall back to the defaults.
func (s *Store) NewDesign(name string, width, height float64) core.Design {
	if name == "" {
		name = core.DefaultDesignName
	}
	if width <= 0 {
		width = core.DefaultCanvasW
	}
	if height <= 0 {
		height = core.DefaultCanvasH
	}
	now := s.now()
	s.reset(core.Design{
		ID:         s.newID(),
		Name:       name,
		Width:      core.ClampSize(width),
		Height:     core.ClampSize(height),
		Background: core.DefaultBackground,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	return s.design
}

// Clear empties the document, the selection and the history. The design
// id, name and canvas are kept.
func (s *Store) Clear() {
	d := s.design
	d.Background = core.DefaultBackground
	d.UpdatedAt = s.now()
	s.reset(d)
}
