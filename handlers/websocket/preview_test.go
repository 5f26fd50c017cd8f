package websocket

import (
	"context"
	"errors"
	"testing"
	"time"

	"canva-clone/auth"
	"canva-clone/core"
	"canva-clone/design"
	"canva-clone/session"
	"canva-clone/stores/memory"
)

func TestWrapAck_CallbackShapes(t *testing.T) {
	payload := map[string]any{"status": "ok"}

	var gotArgs []any
	var gotErr error
	wrapAck(func(args []any, err error) { gotArgs, gotErr = args, err })(payload, nil)
	if len(gotArgs) != 1 || gotErr != nil {
		t.Errorf("func([]any, error) got %v, %v", gotArgs, gotErr)
	}

	gotArgs = nil
	wrapAck(func(args ...any) { gotArgs = args })(payload, nil)
	if len(gotArgs) != 1 {
		t.Errorf("func(...any) got %v", gotArgs)
	}

	var gotMap map[string]any
	wrapAck(func(m map[string]any) { gotMap = m })(payload, nil)
	if gotMap["status"] != "ok" {
		t.Errorf("func(map) got %v", gotMap)
	}

	boom := errors.New("boom")
	wrapAck(func(err error, m map[string]any) { gotErr, gotMap = err, m })(payload, boom)
	if gotErr != boom || gotMap == nil {
		t.Errorf("func(error, map) got %v, %v", gotErr, gotMap)
	}

	if wrapAck("not a func") != nil {
		t.Error("wrapAck() accepted a non-function")
	}
}

func TestExtractAck(t *testing.T) {
	ack, args := extractAck([]any{"s1", "token", func(...any) {}})
	if ack == nil || len(args) != 2 {
		t.Errorf("extractAck() = %v, %v", ack != nil, args)
	}

	ack, args = extractAck([]any{"s1"})
	if ack != nil || len(args) != 1 {
		t.Errorf("extractAck() without callback = %v, %v", ack != nil, args)
	}
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	m := session.NewManager(memory.NewStore())
	h := NewHub(m)
	defer h.Close()

	anon, _ := m.Open(ctx, "anonymous", session.OpenRequest{})
	alice, _ := m.Open(ctx, "alice", session.OpenRequest{})

	auth.Init("")
	if _, err := h.authorize(anon.ID(), ""); err != nil {
		t.Errorf("authorize() anonymous failed: %v", err)
	}
	if _, err := h.authorize(alice.ID(), ""); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("authorize() of another owner's session = %v", err)
	}
	if _, err := h.authorize("missing", ""); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("authorize() of unknown session = %v", err)
	}

	auth.Init("test-secret")
	defer auth.Init("")
	token, _ := auth.CreateJWT("alice", "", time.Hour)
	if _, err := h.authorize(alice.ID(), token); err != nil {
		t.Errorf("authorize() with token failed: %v", err)
	}
	if _, err := h.authorize(alice.ID(), "garbage"); err == nil {
		t.Error("authorize() accepted a bad token")
	}
}

func TestHub_IsSessionNotifier(t *testing.T) {
	m := session.NewManager(memory.NewStore())
	h := NewHub(m)
	defer h.Close()

	s, _ := m.Open(context.Background(), "anonymous", session.OpenRequest{})
	// publishing to a room without sockets is a no-op
	if _, err := s.Do(func(st *design.Store) error { return nil }); err != nil {
		t.Fatalf("Do() failed: %v", err)
	}
}

func TestTrack(t *testing.T) {
	h := &Hub{watchers: make(map[string]int)}
	h.track("s1", 1)
	h.track("s1", 1)
	h.track("s2", 1)
	h.track("s2", -1)

	w := h.Watchers()
	if w["s1"] != 2 {
		t.Errorf("watchers[s1] = %d, want 2", w["s1"])
	}
	if _, ok := w["s2"]; ok {
		t.Error("session without watchers still listed")
	}
}

func TestOnConnection_IgnoresMissingSocket(t *testing.T) {
	h := &Hub{watchers: make(map[string]int)}
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("onConnection() panicked: %v", r)
		}
	}()
	h.onConnection()
	h.onConnection("not a socket")
}
