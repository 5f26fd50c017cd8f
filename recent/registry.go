// Package recent keeps the short list of recently created designs shown on
// the home screen. The list lives in memory and is written through to the
// key-value backend after every change.
package recent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"canva-clone/core"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultKey is the storage key of the registry.
	DefaultKey = "recentDesigns"
	// MaxEntries is how many summaries are kept.
	MaxEntries = 10
)

type (
	// Summary describes one recent design.
	Summary struct {
		ID          string    `json:"id"`
		Label       string    `json:"label"`
		Thumbnail   string    `json:"image"`
		CreatedAt   time.Time `json:"createdAt"`
		IsCompleted bool      `json:"isCompleted"`
		// DesignID links the summary to a saved design record, if any.
		DesignID string `json:"designId,omitempty"`
	}

	// SummaryInput is a summary before it has an id and a creation time.
	SummaryInput struct {
		Label       string `json:"label"`
		Thumbnail   string `json:"image"`
		IsCompleted bool   `json:"isCompleted"`
		DesignID    string `json:"designId,omitempty"`
	}

	// SummaryPatch changes the set fields of a summary.
	SummaryPatch struct {
		Label       *string `json:"label,omitempty"`
		Thumbnail   *string `json:"image,omitempty"`
		IsCompleted *bool   `json:"isCompleted,omitempty"`
	}

	Registry struct {
		mu    sync.RWMutex
		kv    core.KeyValueStore
		key   string
		items []Summary
		now   func() time.Time
	}
)

// NewRegistry returns an empty registry stored under key in kv. An empty key
// means DefaultKey. Call Load to read existing entries.
func NewRegistry(kv core.KeyValueStore, key string) *Registry {
	if key == "" {
		key = DefaultKey
	}
	return &Registry{kv: kv, key: key, now: time.Now}
}

// Load replaces the in-memory list with the stored one. Missing or
// unreadable data leaves the registry empty.
func (r *Registry) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := logrus.WithField("key", r.key)
	data, err := r.kv.Get(ctx, r.key)
	if errors.Is(err, core.ErrNotFound) {
		r.items = nil
		return nil
	}
	if err != nil {
		log.WithField("error", err).Error("Failed to load recent designs")
		return fmt.Errorf("load recent designs: %w", err)
	}

	var items []Summary
	if err := json.Unmarshal(data, &items); err != nil {
		log.WithField("error", err).Warn("Recent designs are unreadable, starting empty")
		r.items = nil
		return nil
	}
	if len(items) > MaxEntries {
		items = items[:MaxEntries]
	}
	r.items = items
	log.Infof("Loaded %d recent designs", len(items))
	return nil
}

// Add prepends a new summary, dropping the oldest beyond MaxEntries.
func (r *Registry) Add(ctx context.Context, in SummaryInput) (Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		ID:          uuid.NewString(),
		Label:       in.Label,
		Thumbnail:   in.Thumbnail,
		CreatedAt:   r.now(),
		IsCompleted: in.IsCompleted,
		DesignID:    in.DesignID,
	}
	items := append([]Summary{s}, r.items...)
	if len(items) > MaxEntries {
		items = items[:MaxEntries]
	}
	r.items = items
	return s, r.persist(ctx)
}

// Update applies p to the summary with the given id.
func (r *Registry) Update(ctx context.Context, id string, p SummaryPatch) (Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return Summary{}, fmt.Errorf("recent design %s: %w", id, core.ErrNotFound)
	}
	s := &r.items[i]
	if p.Label != nil {
		s.Label = *p.Label
	}
	if p.Thumbnail != nil {
		s.Thumbnail = *p.Thumbnail
	}
	if p.IsCompleted != nil {
		s.IsCompleted = *p.IsCompleted
	}
	return *s, r.persist(ctx)
}

// Remove deletes the summary with the given id. Unknown ids are ignored.
func (r *Registry) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil
	}
	r.items = append(r.items[:i:i], r.items[i+1:]...)
	return r.persist(ctx)
}

func (r *Registry) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = nil
	return r.persist(ctx)
}

// List returns the summaries, newest first.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Summary, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Registry) Get(id string) (Summary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		return r.items[i], true
	}
	return Summary{}, false
}

// FindByDesign returns the newest summary linked to designID.
func (r *Registry) FindByDesign(designID string) (Summary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.items {
		if designID != "" && s.DesignID == designID {
			return s, true
		}
	}
	return Summary{}, false
}

func (r *Registry) indexOf(id string) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

// persist writes the list through. The caller holds r.mu.
func (r *Registry) persist(ctx context.Context) error {
	items := r.items
	if items == nil {
		items = []Summary{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode recent designs: %w", err)
	}
	if err := r.kv.Set(ctx, r.key, data); err != nil {
		logrus.WithFields(logrus.Fields{"key": r.key, "error": err}).Error("Failed to save recent designs")
		return fmt.Errorf("save recent designs: %w", err)
	}
	return nil
}
