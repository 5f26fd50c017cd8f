package designs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"canva-clone/auth"
	"canva-clone/export"
	"canva-clone/middleware"
	"canva-clone/session"
	"canva-clone/stores/memory"

	"github.com/go-chi/chi/v5"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	m := session.NewManager(memory.NewStore())
	return &testServer{t: t, handler: Routes(m)}
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	ts.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) open() string {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/", `{"name":"Flyer","width":400,"height":300}`)
	if rec.Code != http.StatusCreated {
		ts.t.Fatalf("open session: status %d: %s", rec.Code, rec.Body.String())
	}
	var res OpenResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		ts.t.Fatalf("Failed to decode response: %v", err)
	}
	return res.Session.ID
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var res Response
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return res
}

func TestHandleOpen(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodPost, "/", `{"name":"Flyer","width":400,"height":300}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Status code mismatch: got %d, want %d", rec.Code, http.StatusCreated)
	}
	var res OpenResponse
	json.NewDecoder(rec.Body).Decode(&res)
	if res.Snapshot.Design.Name != "Flyer" || res.Snapshot.Design.Width != 400 {
		t.Errorf("design = %+v", res.Snapshot.Design)
	}
	if res.Session.Owner != "anonymous" {
		t.Errorf("owner = %q, want anonymous", res.Session.Owner)
	}
}

func TestHandleOpen_EmptyBody(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodPost, "/", "")
	if rec.Code != http.StatusCreated {
		t.Errorf("Status code mismatch: got %d, want %d", rec.Code, http.StatusCreated)
	}
}

func TestHandleGet_UnknownSession(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/nope/", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Status code mismatch: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestElementLifecycle(t *testing.T) {
	ts := newTestServer(t)
	id := ts.open()
	base := "/" + id

	rec := ts.do(http.MethodPost, base+"/elements", `{"type":"shape","x":10,"y":10,"width":50,"height":50}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: status %d: %s", rec.Code, rec.Body.String())
	}
	added := decodeResponse(t, rec)
	if added.ElementID == "" || len(added.Snapshot.Elements) != 1 {
		t.Fatalf("add response = %+v", added)
	}
	el := base + "/elements/" + added.ElementID

	rec = ts.do(http.MethodPatch, el+"/", `{"shape":{"fill":"#ff0000"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeResponse(t, rec).Snapshot.Elements[0].Shape.Fill; got != "#ff0000" {
		t.Errorf("fill = %s, want #ff0000", got)
	}

	rec = ts.do(http.MethodPost, el+"/move", `{"dx":5,"dy":-5}`)
	moved := decodeResponse(t, rec).Snapshot.Elements[0]
	if moved.X != 15 || moved.Y != 5 {
		t.Errorf("moved to (%v, %v), want (15, 5)", moved.X, moved.Y)
	}

	rec = ts.do(http.MethodPost, el+"/resize", `{"handle":"bottom-right","dx":20,"dy":10}`)
	resized := decodeResponse(t, rec).Snapshot.Elements[0]
	if resized.Width != 70 || resized.Height != 60 {
		t.Errorf("resized to %vx%v, want 70x60", resized.Width, resized.Height)
	}

	rec = ts.do(http.MethodPost, el+"/duplicate", "")
	if n := len(decodeResponse(t, rec).Snapshot.Elements); n != 2 {
		t.Errorf("after duplicate: %d elements, want 2", n)
	}

	rec = ts.do(http.MethodDelete, el+"/", "")
	if res := decodeResponse(t, rec); !res.Changed || len(res.Snapshot.Elements) != 1 {
		t.Errorf("delete response = %+v", res)
	}

	rec = ts.do(http.MethodDelete, el+"/", "")
	if decodeResponse(t, rec).Changed {
		t.Error("deleting a missing element reported a change")
	}
}

func TestHandleAddElement_Invalid(t *testing.T) {
	ts := newTestServer(t)
	base := "/" + ts.open()

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{`, http.StatusBadRequest},
		{"unknown kind", `{"type":"video","width":10,"height":10}`, http.StatusBadRequest},
		{"kind mismatch", `{"type":"text","shape":{"shapeType":"circle"}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(http.MethodPost, base+"/elements", tt.body)
			if rec.Code != tt.code {
				t.Errorf("Status code mismatch: got %d, want %d (%s)", rec.Code, tt.code, rec.Body.String())
			}
		})
	}
}

func TestHandleResize_UnknownHandle(t *testing.T) {
	ts := newTestServer(t)
	base := "/" + ts.open()
	added := decodeResponse(t, ts.do(http.MethodPost, base+"/elements", `{"type":"shape","width":50,"height":50}`))

	rec := ts.do(http.MethodPost, base+"/elements/"+added.ElementID+"/resize", `{"handle":"middle","dx":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status code mismatch: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUndoRedo(t *testing.T) {
	ts := newTestServer(t)
	base := "/" + ts.open()
	ts.do(http.MethodPost, base+"/elements", `{"type":"text"}`)

	res := decodeResponse(t, ts.do(http.MethodPost, base+"/undo", ""))
	if !res.Changed || len(res.Snapshot.Elements) != 0 || !res.Snapshot.CanRedo {
		t.Errorf("undo response = %+v", res)
	}
	res = decodeResponse(t, ts.do(http.MethodPost, base+"/redo", ""))
	if !res.Changed || len(res.Snapshot.Elements) != 1 {
		t.Errorf("redo response = %+v", res)
	}
	res = decodeResponse(t, ts.do(http.MethodPost, base+"/redo", ""))
	if res.Changed {
		t.Error("redo with empty future reported a change")
	}
}

func TestSelection(t *testing.T) {
	ts := newTestServer(t)
	base := "/" + ts.open()
	a := decodeResponse(t, ts.do(http.MethodPost, base+"/elements", `{"type":"shape","x":0,"y":0,"width":50,"height":50}`)).ElementID
	b := decodeResponse(t, ts.do(http.MethodPost, base+"/elements", `{"type":"shape","x":200,"y":200,"width":50,"height":50}`)).ElementID

	res := decodeResponse(t, ts.do(http.MethodPut, base+"/selection/", `{"elementId":"`+a+`","multi":true}`))
	if len(res.Snapshot.Selection) != 2 {
		t.Errorf("selection = %v, want both elements", res.Snapshot.Selection)
	}

	res = decodeResponse(t, ts.do(http.MethodPost, base+"/selection/rect", `{"rect":{"x":190,"y":190,"width":20,"height":20}}`))
	if len(res.Snapshot.Selection) != 1 || res.Snapshot.Selection[0] != b {
		t.Errorf("marquee selection = %v, want [%s]", res.Snapshot.Selection, b)
	}

	rec := ts.do(http.MethodGet, base+"/hit?x=10&y=10", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), a) {
		t.Errorf("hit test: %d %s", rec.Code, rec.Body.String())
	}
	if rec := ts.do(http.MethodGet, base+"/hit?x=150&y=150", ""); rec.Code != http.StatusNotFound {
		t.Errorf("hit test on empty space: %d", rec.Code)
	}

	res = decodeResponse(t, ts.do(http.MethodDelete, base+"/selection/elements", ""))
	if len(res.Snapshot.Elements) != 1 || len(res.Snapshot.Selection) != 0 {
		t.Errorf("after delete selected: %+v", res.Snapshot)
	}
}

func TestGesture(t *testing.T) {
	ts := newTestServer(t)
	base := "/" + ts.open()
	id := decodeResponse(t, ts.do(http.MethodPost, base+"/elements", `{"type":"shape","x":10,"y":10,"width":50,"height":50}`)).ElementID

	if rec := ts.do(http.MethodPost, base+"/gesture/", `{"elementId":"missing"}`); rec.Code != http.StatusNotFound {
		t.Errorf("gesture on missing element: %d", rec.Code)
	}
	ts.do(http.MethodPost, base+"/gesture/", `{"elementId":"`+id+`"}`)
	ts.do(http.MethodPost, base+"/gesture/drag", `{"dx":10,"dy":10}`)
	res := decodeResponse(t, ts.do(http.MethodPost, base+"/gesture/drag", `{"dx":1000,"dy":20}`))
	el := res.Snapshot.Elements[0]
	// clamped to the 400x300 canvas
	if el.X != 350 || el.Y != 30 {
		t.Errorf("dragged to (%v, %v), want (350, 30)", el.X, el.Y)
	}
	if !decodeResponse(t, ts.do(http.MethodDelete, base+"/gesture/", "")).Changed {
		t.Error("ending a moving gesture reported no change")
	}

	// the whole drag is a single undo step
	res = decodeResponse(t, ts.do(http.MethodPost, base+"/undo", ""))
	if el := res.Snapshot.Elements[0]; el.X != 10 || el.Y != 10 {
		t.Errorf("after undo at (%v, %v), want (10, 10)", el.X, el.Y)
	}
}

func TestCanvasAndClear(t *testing.T) {
	ts := newTestServer(t)
	base := "/" + ts.open()
	ts.do(http.MethodPost, base+"/elements", `{"type":"text"}`)

	res := decodeResponse(t, ts.do(http.MethodPut, base+"/canvas", `{"backgroundColor":"#eeeeee","width":1000}`))
	d := res.Snapshot.Design
	if d.Background != "#eeeeee" || d.Width != 1000 || d.Height != 300 {
		t.Errorf("design = %+v", d)
	}

	res = decodeResponse(t, ts.do(http.MethodPost, base+"/clear", ""))
	if len(res.Snapshot.Elements) != 0 || res.Snapshot.CanUndo || res.Snapshot.Design.Background != "#ffffff" {
		t.Errorf("after clear: %+v", res.Snapshot)
	}
}

func TestSaveLoadAndExport(t *testing.T) {
	ts := newTestServer(t)
	id := ts.open()
	base := "/" + id
	ts.do(http.MethodPost, base+"/elements", `{"type":"shape","width":40,"height":40}`)

	if rec := ts.do(http.MethodPost, base+"/save", ""); rec.Code != http.StatusOK {
		t.Fatalf("save: status %d: %s", rec.Code, rec.Body.String())
	}

	ts.do(http.MethodPost, base+"/elements", `{"type":"text"}`)
	var info OpenResponse
	json.NewDecoder(ts.do(http.MethodGet, base+"/", "").Body).Decode(&info)

	res := decodeResponse(t, ts.do(http.MethodPost, base+"/load", `{"key":"`+info.Session.Key+`"}`))
	if len(res.Snapshot.Elements) != 1 {
		t.Errorf("after load: %d elements, want 1", len(res.Snapshot.Elements))
	}

	rec := ts.do(http.MethodGet, base+"/export.json", "")
	if !strings.Contains(rec.Body.String(), `"canvasBackgroundColor"`) {
		t.Errorf("export.json = %s", rec.Body.String())
	}
	rec = ts.do(http.MethodGet, base+"/export.pdf", "")
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Error("export.pdf did not return a PDF")
	}
	rec = ts.do(http.MethodGet, base+"/export.png", "")
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("export.png did not return a PNG")
	}
}

func TestExportPNG_RejectsOversizedImage(t *testing.T) {
	ts := newTestServer(t)
	base := "/" + ts.open()

	rec := ts.do(http.MethodGet, fmt.Sprintf("%s/export.png?width=%d&height=48", base, export.MaxRenderSide+1), "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status code mismatch: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	rec = ts.do(http.MethodGet, base+"/export.png?width=64&height=48", "")
	if rec.Code != http.StatusOK || !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Errorf("small export: status %d", rec.Code)
	}
}

func TestHandleOpen_RejectsEscapingKey(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodPost, "/", `{"key":"../bob/notes"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status code mismatch: got %d, want %d", rec.Code, http.StatusBadRequest)
	}

	base := "/" + ts.open()
	rec = ts.do(http.MethodPost, base+"/load", `{"key":"../bob/notes"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("load: status %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSessions_OwnersCannotReachEachOthersKeys(t *testing.T) {
	auth.Init("test-secret")
	defer auth.Init("")
	alice, _ := auth.CreateJWT("alice", "", time.Hour)
	bob, _ := auth.CreateJWT("bob", "", time.Hour)

	store := memory.NewStore()
	r := chi.NewRouter()
	r.Use(middleware.AuthJWT)
	r.Mount("/sessions", Routes(session.NewManager(store)))
	send := func(method, path, body, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	// bob saves a design
	rec := send(http.MethodPost, "/sessions/", `{"name":"Bob's poster"}`, bob)
	var bobs OpenResponse
	json.NewDecoder(rec.Body).Decode(&bobs)
	send(http.MethodPost, "/sessions/"+bobs.Session.ID+"/elements", `{"type":"shape","width":40,"height":40}`, bob)
	if rec := send(http.MethodPost, "/sessions/"+bobs.Session.ID+"/save", "", bob); rec.Code != http.StatusOK {
		t.Fatalf("bob save: status %d: %s", rec.Code, rec.Body.String())
	}
	stored, err := store.Get(context.Background(), "users/bob/"+bobs.Session.Key)
	if err != nil {
		t.Fatalf("bob's design not stored under his scope: %v", err)
	}

	// alice asks for the same key and saves over it
	rec = send(http.MethodPost, "/sessions/", `{"key":"`+bobs.Session.Key+`"}`, alice)
	if rec.Code != http.StatusCreated {
		t.Fatalf("alice open: status %d: %s", rec.Code, rec.Body.String())
	}
	var alices OpenResponse
	json.NewDecoder(rec.Body).Decode(&alices)
	if alices.Snapshot.Design.Name == "Bob's poster" || len(alices.Snapshot.Elements) != 0 {
		t.Errorf("alice read bob's design: %+v", alices.Snapshot)
	}
	send(http.MethodPost, "/sessions/"+alices.Session.ID+"/save", "", alice)

	after, _ := store.Get(context.Background(), "users/bob/"+bobs.Session.Key)
	if !bytes.Equal(after, stored) {
		t.Error("alice's save overwrote bob's design")
	}

	// bob's session id is not usable by alice
	if rec := send(http.MethodPost, "/sessions/"+bobs.Session.ID+"/save", "", alice); rec.Code != http.StatusNotFound {
		t.Errorf("alice save on bob's session: status %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleClose(t *testing.T) {
	ts := newTestServer(t)
	id := ts.open()

	if rec := ts.do(http.MethodDelete, "/"+id+"/?save=true", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("close: status %d", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/"+id+"/", ""); rec.Code != http.StatusNotFound {
		t.Errorf("closed session still served: %d", rec.Code)
	}
	var list []session.Info
	json.NewDecoder(ts.do(http.MethodGet, "/", "").Body).Decode(&list)
	if len(list) != 0 {
		t.Errorf("List = %v, want empty", list)
	}
}
