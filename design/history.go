package design

import "canva-clone/core"

// DefaultHistoryLimit is the number of undo entries kept per document.
const DefaultHistoryLimit = 50

// history is a linear undo/redo timeline of element-list snapshots.
// past is ordered oldest to newest; future[0] is the next redo.
type history struct {
	past   [][]core.Element
	future [][]core.Element
	limit  int
}

func newHistory(limit int) *history {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &history{limit: limit}
}

// push records a snapshot taken before a mutation and drops the redo branch.
func (h *history) push(snapshot []core.Element) {
	h.past = append(h.past, snapshot)
	if over := len(h.past) - h.limit; over > 0 {
		// copy so evicted snapshots are not kept alive by the backing array
		h.past = append([][]core.Element(nil), h.past[over:]...)
	}
	h.future = nil
}

// undo swaps present with the newest past entry.
func (h *history) undo(present []core.Element) ([]core.Element, bool) {
	if len(h.past) == 0 {
		return nil, false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append([][]core.Element{present}, h.future...)
	return prev, true
}

// redo swaps present with the front of future.
func (h *history) redo(present []core.Element) ([]core.Element, bool) {
	if len(h.future) == 0 {
		return nil, false
	}
	next := h.future[0]
	h.future = h.future[1:]
	h.past = append(h.past, present)
	if over := len(h.past) - h.limit; over > 0 {
		h.past = h.past[over:]
	}
	return next, true
}

func (h *history) canUndo() bool { return len(h.past) > 0 }
func (h *history) canRedo() bool { return len(h.future) > 0 }

func (h *history) reset() {
	h.past = nil
	h.future = nil
}
