// Package session serialises access to design stores shared by the HTTP
// API, the MCP tools and the autosave job.
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"canva-clone/core"
	"canva-clone/design"
	"canva-clone/export"
	"canva-clone/recent"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	EventDesignChanged = "design-changed"
	EventDesignSaved   = "design-saved"
	EventSessionClosed = "session-closed"
)

type (
	// Notifier receives an event after every change to a session.
	Notifier interface {
		Publish(sessionID, event string, payload any)
	}

	// OpenRequest describes the design a new session starts from. With Key
	// set the design is loaded from storage; otherwise a new design is
	// created with the given name and canvas size.
	//
	// Keys are relative to the owner's scope (core.UserScope), the same key
	// space the raw key-value API exposes.
	OpenRequest struct {
		Key    string  `json:"key,omitempty"`
		Name   string  `json:"name,omitempty"`
		Width  float64 `json:"width,omitempty"`
		Height float64 `json:"height,omitempty"`
	}

	// Info summarises a session for listings.
	Info struct {
		ID       string    `json:"id"`
		Owner    string    `json:"owner"`
		DesignID string    `json:"designId"`
		Name     string    `json:"name"`
		Key      string    `json:"key"`
		Dirty    bool      `json:"dirty"`
		OpenedAt time.Time `json:"openedAt"`
	}

	Manager struct {
		mu       sync.RWMutex
		sessions map[string]*Session

		kv           core.KeyValueStore
		recent       *recent.Registry
		capturer     *export.Capturer
		notifier     Notifier
		historyLimit int
	}

	// Session is one open design. All access to its store goes through Do
	// and View, which hold the session lock.
	Session struct {
		id       string
		owner    string
		openedAt time.Time

		mu    sync.Mutex
		store *design.Store
		key   string
		dirty bool

		m *Manager
	}

	Option func(*Manager)
)

func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

func WithRecent(r *recent.Registry) Option {
	return func(m *Manager) { m.recent = r }
}

func WithCapturer(c *export.Capturer) Option {
	return func(m *Manager) { m.capturer = c }
}

func WithHistoryLimit(n int) Option {
	return func(m *Manager) { m.historyLimit = n }
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, string, any) {}

func NewManager(kv core.KeyValueStore, opts ...Option) *Manager {
	m := &Manager{
		sessions:     make(map[string]*Session),
		kv:           kv,
		notifier:     nopNotifier{},
		historyLimit: design.DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetNotifier replaces the notifier. It is meant for wiring at startup,
// before sessions are opened.
func (m *Manager) SetNotifier(n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n == nil {
		n = nopNotifier{}
	}
	m.notifier = n
}

func (m *Manager) publish(sessionID, event string, payload any) {
	m.mu.RLock()
	n := m.notifier
	m.mu.RUnlock()
	n.Publish(sessionID, event, payload)
}

// Open starts a session for owner.
func (m *Manager) Open(ctx context.Context, owner string, req OpenRequest) (*Session, error) {
	store := design.New(m.kv, design.WithHistoryLimit(m.historyLimit))

	key := req.Key
	if key != "" {
		full, err := core.ScopedKey(owner, key)
		if err != nil {
			return nil, err
		}
		if err := store.Load(ctx, full); err != nil {
			return nil, err
		}
	} else {
		d := store.NewDesign(req.Name, req.Width, req.Height)
		key = design.KeyFor(d.ID)
	}

	s := &Session{
		id:       uuid.NewString(),
		owner:    owner,
		openedAt: time.Now(),
		store:    store,
		key:      key,
		m:        m,
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"session_id": s.id,
		"owner":      owner,
		"design_id":  store.Design().ID,
		"key":        key,
	}).Info("Session opened")
	return s, nil
}

// Get returns owner's session with the given id.
func (m *Manager) Get(owner, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || s.owner != owner {
		return nil, fmt.Errorf("session %s: %w", id, core.ErrSessionNotFound)
	}
	return s, nil
}

// Lookup returns any session by id. It is used by read-only listeners that
// already know the id.
func (m *Manager) Lookup(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// List returns owner's sessions, oldest first.
func (m *Manager) List(owner string) []Info {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if s.owner == owner {
			sessions = append(sessions, s)
		}
	}
	m.mu.RUnlock()

	infos := make([]Info, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].OpenedAt.Before(infos[j].OpenedAt) })
	return infos
}

// Close ends owner's session, saving it first when save is set.
func (m *Manager) Close(ctx context.Context, owner, id string, save bool) error {
	s, err := m.Get(owner, id)
	if err != nil {
		return err
	}
	if save {
		if _, err := s.Save(ctx); err != nil {
			return err
		}
	}

	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()

	m.publish(id, EventSessionClosed, map[string]string{"sessionId": id})
	logrus.WithField("session_id", id).Info("Session closed")
	return nil
}

// AutosaveDirty saves every session changed since its last save and
// returns how many were saved.
func (m *Manager) AutosaveDirty(ctx context.Context) int {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	saved := 0
	for _, s := range sessions {
		if !s.Dirty() {
			continue
		}
		if _, err := s.Save(ctx); err != nil {
			logrus.WithField("session_id", s.id).WithError(err).Error("Autosave failed")
			continue
		}
		saved++
	}
	return saved
}

func (s *Session) ID() string    { return s.id }
func (s *Session) Owner() string { return s.owner }

func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.store.Design()
	return Info{
		ID:       s.id,
		Owner:    s.owner,
		DesignID: d.ID,
		Name:     d.Name,
		Key:      s.key,
		Dirty:    s.dirty,
		OpenedAt: s.openedAt,
	}
}

// StorageKey is the backend key the session saves to.
func (s *Session) StorageKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	full, _ := core.ScopedKey(s.owner, s.key)
	return full
}

func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Do runs fn with exclusive access to the store, then marks the session
// changed and notifies listeners with the new snapshot. When fn fails
// nothing is published.
func (s *Session) Do(fn func(*design.Store) error) (core.Snapshot, error) {
	s.mu.Lock()
	if err := fn(s.store); err != nil {
		s.mu.Unlock()
		return core.Snapshot{}, err
	}
	s.dirty = true
	snap := s.store.Snapshot()
	s.mu.Unlock()

	s.m.publish(s.id, EventDesignChanged, snap)
	return snap, nil
}

// View runs fn with exclusive access to the store without marking the
// session changed.
func (s *Session) View(fn func(*design.Store)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.store)
}

func (s *Session) Snapshot() core.Snapshot {
	var snap core.Snapshot
	s.View(func(st *design.Store) { snap = st.Snapshot() })
	return snap
}

// Save writes the design under the session key, captures a thumbnail and
// records the design in the recent-designs registry. The returned summary
// is empty when no registry is configured.
func (s *Session) Save(ctx context.Context) (recent.Summary, error) {
	s.mu.Lock()
	full, err := core.ScopedKey(s.owner, s.key)
	if err != nil {
		s.mu.Unlock()
		return recent.Summary{}, err
	}
	if err := s.store.Save(ctx, full); err != nil {
		s.mu.Unlock()
		return recent.Summary{}, err
	}
	s.dirty = false
	snap := s.store.Snapshot()
	s.mu.Unlock()

	summary, err := s.m.remember(ctx, snap)
	if err != nil {
		return recent.Summary{}, err
	}
	s.m.publish(s.id, EventDesignSaved, map[string]string{"designId": snap.Design.ID})
	return summary, nil
}

// Load replaces the session's design with the one stored under key and
// makes key the session's save location. The session is clean afterwards.
func (s *Session) Load(ctx context.Context, key string) (core.Snapshot, error) {
	if key == "" {
		key = design.CurrentDesignKey
	}
	full, err := core.ScopedKey(s.owner, key)
	if err != nil {
		return core.Snapshot{}, err
	}

	s.mu.Lock()
	if err := s.store.Load(ctx, full); err != nil {
		s.mu.Unlock()
		return core.Snapshot{}, err
	}
	s.key = key
	s.dirty = false
	snap := s.store.Snapshot()
	s.mu.Unlock()

	s.m.publish(s.id, EventDesignChanged, snap)
	return snap, nil
}

// NewDesign replaces the session's design with an empty one saved under its
// own per-design key.
func (s *Session) NewDesign(name string, width, height float64) (core.Snapshot, error) {
	return s.Do(func(st *design.Store) error {
		d := st.NewDesign(name, width, height)
		s.key = design.KeyFor(d.ID)
		return nil
	})
}

// remember stores a thumbnail and adds or refreshes the design's recent entry.
func (m *Manager) remember(ctx context.Context, snap core.Snapshot) (recent.Summary, error) {
	if m.recent == nil {
		return recent.Summary{}, nil
	}

	thumb := ""
	if m.capturer != nil {
		uri, err := m.capturer.Capture(ctx, snap)
		if err != nil {
			logrus.WithField("design_id", snap.Design.ID).WithError(err).Warn("Failed to capture thumbnail")
		} else {
			thumb = uri
		}
	}

	if existing, ok := m.recent.FindByDesign(snap.Design.ID); ok {
		patch := recent.SummaryPatch{Label: &snap.Design.Name}
		if thumb != "" {
			patch.Thumbnail = &thumb
		}
		return m.recent.Update(ctx, existing.ID, patch)
	}
	return m.recent.Add(ctx, recent.SummaryInput{
		Label:     snap.Design.Name,
		Thumbnail: thumb,
		DesignID:  snap.Design.ID,
	})
}
