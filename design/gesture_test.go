package design

import (
	"testing"
)

func TestGesture_DragCoalescesHistory(t *testing.T) {
	s := newTestStore(nil)
	id := mustAdd(t, s, rect(100, 100, 50, 50))
	s.hist.reset()

	if !s.BeginGesture(id) {
		t.Fatal("BeginGesture() = false")
	}
	for i := 1; i <= 30; i++ {
		s.DragBy(float64(i), float64(2*i))
	}
	if !s.EndGesture() {
		t.Error("EndGesture() = false after moving")
	}

	el, _ := s.Element(id)
	if el.X != 130 || el.Y != 160 {
		t.Errorf("position = %v,%v, want 130,160", el.X, el.Y)
	}
	if n := len(s.hist.past); n != 1 {
		t.Errorf("history entries = %d, want 1", n)
	}

	s.Undo()
	el, _ = s.Element(id)
	if el.X != 100 || el.Y != 100 {
		t.Errorf("position after undo = %v,%v, want 100,100", el.X, el.Y)
	}
}

func TestGesture_DragClampsToCanvas(t *testing.T) {
	s := newTestStore(nil)
	id := mustAdd(t, s, rect(100, 100, 50, 50))

	s.BeginGesture(id)
	s.DragBy(5000, -5000)
	s.EndGesture()

	el, _ := s.Element(id)
	if el.X != 750 || el.Y != 0 {
		t.Errorf("position = %v,%v, want 750,0", el.X, el.Y)
	}
}

func TestGesture_NoMovementNoHistory(t *testing.T) {
	s := newTestStore(nil)
	id := mustAdd(t, s, rect(100, 100, 50, 50))
	s.hist.reset()

	s.BeginGesture(id)
	s.DragBy(0, 0)
	if s.EndGesture() {
		t.Error("EndGesture() = true without movement")
	}
	if s.CanUndo() {
		t.Error("empty gesture pushed history")
	}
}

func TestGesture_HandleDragFromStartRect(t *testing.T) {
	s := newTestStore(nil)
	id := mustAdd(t, s, rect(100, 100, 50, 50))
	s.hist.reset()

	s.BeginGesture(id)
	for _, d := range []float64{5, 10, 20} {
		if _, err := s.DragHandle(HandleTopLeft, d, d); err != nil {
			t.Fatalf("DragHandle() failed: %v", err)
		}
	}
	s.EndGesture()

	el, _ := s.Element(id)
	if el.X != 120 || el.Y != 120 || el.Width != 30 || el.Height != 30 {
		t.Errorf("bounds = %+v, want 120,120 30x30", el.Bounds())
	}
	if n := len(s.hist.past); n != 1 {
		t.Errorf("history entries = %d, want 1", n)
	}
}

func TestGesture_UnknownElement(t *testing.T) {
	s := newTestStore(nil)
	if s.BeginGesture("missing") {
		t.Error("BeginGesture() = true for unknown id")
	}
	if s.DragBy(10, 10) {
		t.Error("DragBy() without a gesture changed the document")
	}
}

func TestGesture_OtherEditEndsGesture(t *testing.T) {
	s := newTestStore(nil)
	id := mustAdd(t, s, rect(100, 100, 50, 50))
	s.hist.reset()

	s.BeginGesture(id)
	s.DragBy(10, 0)
	s.Resize(id, 80, 80)

	if s.InGesture() {
		t.Error("InGesture() = true after an unrelated edit")
	}
	if n := len(s.hist.past); n != 2 {
		t.Errorf("history entries = %d, want 2", n)
	}
}
