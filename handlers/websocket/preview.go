// Package websocket pushes design changes to Socket.IO clients watching a
// session. Clients only listen; edits go through the HTTP API.
package websocket

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"canva-clone/auth"
	"canva-clone/core"
	"canva-clone/middleware"
	"canva-clone/session"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

const roomPrefix = "design:"

type ackFunc func(payload map[string]any, err error)

// Hub fans session events out to the sockets that joined the session.
type Hub struct {
	srv *socketio.Server
	m   *session.Manager

	mu       sync.RWMutex
	watchers map[string]int
}

func roomFor(sessionID string) socketio.Room {
	return socketio.Room(roomPrefix + sessionID)
}

// NewHub creates the Socket.IO server and registers it as the manager's
// notifier.
func NewHub(m *session.Manager) *Hub {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(5000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	h := &Hub{
		srv:      socketio.NewServer(nil, opts),
		m:        m,
		watchers: make(map[string]int),
	}
	h.srv.On("connection", h.onConnection)
	m.SetNotifier(h)
	return h
}

// Server returns the Socket.IO server for mounting.
func (h *Hub) Server() *socketio.Server {
	return h.srv
}

func (h *Hub) Close() {
	h.srv.Close(nil)
}

// Publish implements session.Notifier.
func (h *Hub) Publish(sessionID, event string, payload any) {
	if err := h.srv.To(roomFor(sessionID)).Emit(event, payload); err != nil {
		logrus.WithFields(logrus.Fields{
			"session_id": sessionID,
			"event":      event,
			"error":      err,
		}).Warn("Failed to push event")
	}
}

// Watchers returns how many sockets watch each session.
func (h *Hub) Watchers() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]int, len(h.watchers))
	for k, v := range h.watchers {
		out[k] = v
	}
	return out
}

func (h *Hub) track(sessionID string, delta int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.watchers[sessionID] + delta
	if n <= 0 {
		delete(h.watchers, sessionID)
		return
	}
	h.watchers[sessionID] = n
}

// authorize returns the session a client may watch. With authentication
// enabled the token's subject must own the session.
func (h *Hub) authorize(sessionID, token string) (*session.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}
	s, ok := h.m.Lookup(sessionID)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, core.ErrSessionNotFound)
	}
	owner := middleware.AnonymousOwner
	if auth.Enabled() {
		claims, err := auth.ParseJWT(token)
		if err != nil {
			return nil, fmt.Errorf("invalid token: %w", err)
		}
		owner = claims.Subject
	}
	if s.Owner() != owner {
		return nil, fmt.Errorf("session %s: %w", sessionID, core.ErrSessionNotFound)
	}
	return s, nil
}

func (h *Hub) onConnection(clients ...any) {
	if len(clients) == 0 {
		logrus.Warn("Connection event without a socket")
		return
	}
	socket, ok := clients[0].(*socketio.Socket)
	if !ok {
		return
	}
	joined := make(map[string]bool)
	var mu sync.Mutex

	socket.On("join-design", func(datas ...any) {
		ack, args := extractAck(datas)
		sessionID, token := stringArg(args, 0), stringArg(args, 1)

		s, err := h.authorize(sessionID, token)
		if err != nil {
			respond(socket, ack, "join-design-ack", map[string]any{"status": "error", "error": err.Error()}, err)
			return
		}

		mu.Lock()
		first := !joined[sessionID]
		joined[sessionID] = true
		mu.Unlock()
		if first {
			socket.Join(roomFor(sessionID))
			h.track(sessionID, 1)
		}
		logrus.WithFields(logrus.Fields{
			"socket_id":  socket.Id(),
			"session_id": sessionID,
		}).Debug("Socket joined design")

		respond(socket, ack, "join-design-ack", map[string]any{"status": "ok", "sessionId": sessionID}, nil)
		socket.Emit(session.EventDesignChanged, s.Snapshot())
	})

	socket.On("leave-design", func(datas ...any) {
		ack, args := extractAck(datas)
		sessionID := stringArg(args, 0)

		mu.Lock()
		was := joined[sessionID]
		delete(joined, sessionID)
		mu.Unlock()
		if was {
			socket.Leave(roomFor(sessionID))
			h.track(sessionID, -1)
		}
		respond(socket, ack, "", map[string]any{"status": "ok"}, nil)
	})

	socket.On("disconnecting", func(...any) {
		mu.Lock()
		defer mu.Unlock()
		for id := range joined {
			h.track(id, -1)
		}
		joined = map[string]bool{}
	})

	socket.On("disconnect", func(...any) {
		socket.RemoveAllListeners("")
	})
}

func stringArg(args []any, i int) string {
	if i >= len(args) {
		return ""
	}
	s, _ := args[i].(string)
	return s
}

func respond(socket *socketio.Socket, ack ackFunc, event string, payload map[string]any, err error) {
	if ack != nil {
		ack(payload, err)
	}
	if event != "" {
		socket.Emit(event, payload)
	}
}

// extractAck splits a trailing acknowledgement callback off the event
// arguments.
func extractAck(datas []any) (ackFunc, []any) {
	if len(datas) == 0 {
		return nil, datas
	}
	ack := wrapAck(datas[len(datas)-1])
	if ack == nil {
		return nil, datas
	}
	return ack, datas[:len(datas)-1]
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// wrapAck adapts whatever callback shape the client library delivered.
// Error parameters receive err, slice parameters receive the payload as
// their only item and the first other parameter receives the payload.
func wrapAck(candidate any) ackFunc {
	fn := reflect.ValueOf(candidate)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil
	}
	typ := fn.Type()

	return func(payload map[string]any, err error) {
		args := make([]reflect.Value, typ.NumIn())
		payloadUsed := false
		for i := range args {
			in := typ.In(i)
			var v any
			switch {
			case in == errorType:
				if err != nil {
					v = err
				}
			case in.Kind() == reflect.Slice && in.Elem().Kind() == reflect.Interface:
				v = []any{payload}
				payloadUsed = true
			case !payloadUsed:
				v = payload
				payloadUsed = true
			}
			args[i] = valueFor(v, in)
		}
		if typ.IsVariadic() {
			fn.CallSlice(args)
			return
		}
		fn.Call(args)
	}
}

func valueFor(v any, typ reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(typ)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(typ) {
		return rv
	}
	return reflect.Zero(typ)
}
