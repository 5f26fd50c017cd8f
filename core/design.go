package core

import "time"

const (
	DefaultDesignName = "Untitled Design"
	DefaultCanvasW    = 800.0
	DefaultCanvasH    = 600.0
	DefaultBackground = "#ffffff"
)

type (
	// Design is the canvas-level metadata of a document. The element list is
	// carried next to it by the store and in the persisted record.
	Design struct {
		ID         string    `json:"id"`
		Name       string    `json:"name"`
		Width      float64   `json:"width"`
		Height     float64   `json:"height"`
		Background string    `json:"backgroundColor"`
		CreatedAt  time.Time `json:"createdAt"`
		UpdatedAt  time.Time `json:"updatedAt"`
	}

	// Snapshot is a read-only view of a document handed out to callers.
	Snapshot struct {
		Design    Design    `json:"design"`
		Elements  []Element `json:"elements"`
		Selection []string  `json:"selection"`
		CanUndo   bool      `json:"canUndo"`
		CanRedo   bool      `json:"canRedo"`
	}

	// Record is the persisted form of a document.
	Record struct {
		Elements   []Element `json:"elements"`
		Background string    `json:"canvasBackgroundColor"`
		Design     *Design   `json:"design"`
	}
)

// Canvas returns the design's canvas as a rectangle anchored at the origin.
func (d Design) Canvas() Rect {
	return Rect{Width: d.Width, Height: d.Height}
}
