// Package designs exposes editing sessions over HTTP.
package designs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"canva-clone/core"
	"canva-clone/design"
	"canva-clone/export"
	"canva-clone/middleware"
	"canva-clone/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type (
	// Response is returned by every mutating route.
	Response struct {
		ElementID string        `json:"elementId,omitempty"`
		Changed   bool          `json:"changed"`
		Snapshot  core.Snapshot `json:"snapshot"`
	}

	OpenResponse struct {
		Session  session.Info  `json:"session"`
		Snapshot core.Snapshot `json:"snapshot"`
	}

	deltaRequest struct {
		DX float64 `json:"dx"`
		DY float64 `json:"dy"`
	}

	resizeRequest struct {
		Width  float64       `json:"width"`
		Height float64       `json:"height"`
		Handle design.Handle `json:"handle,omitempty"`
		DX     float64       `json:"dx"`
		DY     float64       `json:"dy"`
	}

	selectRequest struct {
		ElementID string `json:"elementId"`
		Multi     bool   `json:"multi"`
	}

	marqueeRequest struct {
		Rect core.Rect `json:"rect"`
		Add  bool      `json:"add"`
	}

	gestureRequest struct {
		ElementID string `json:"elementId"`
	}

	handleDragRequest struct {
		Handle design.Handle `json:"handle"`
		DX     float64       `json:"dx"`
		DY     float64       `json:"dy"`
	}

	canvasRequest struct {
		Name       *string  `json:"name,omitempty"`
		Background *string  `json:"backgroundColor,omitempty"`
		Width      *float64 `json:"width,omitempty"`
		Height     *float64 `json:"height,omitempty"`
	}

	keyRequest struct {
		Key string `json:"key"`
	}
)

// Routes returns the session API, to be mounted under a JWT-aware group.
func Routes(m *session.Manager) chi.Router {
	r := chi.NewRouter()
	r.Get("/", HandleList(m))
	r.Post("/", HandleOpen(m))
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", HandleGet(m))
		r.Delete("/", HandleClose(m))

		r.Post("/elements", HandleAddElement(m))
		r.Route("/elements/{elementID}", func(r chi.Router) {
			r.Patch("/", HandleUpdateElement(m))
			r.Delete("/", HandleDeleteElement(m))
			r.Post("/move", HandleMoveElement(m))
			r.Post("/resize", HandleResizeElement(m))
			r.Post("/front", HandleBringToFront(m))
			r.Post("/back", HandleSendToBack(m))
			r.Post("/duplicate", HandleDuplicate(m))
		})

		r.Get("/hit", HandleHitTest(m))
		r.Route("/selection", func(r chi.Router) {
			r.Put("/", HandleSelect(m))
			r.Delete("/", HandleClearSelection(m))
			r.Post("/rect", HandleSelectInRect(m))
			r.Delete("/elements", HandleDeleteSelected(m))
		})

		r.Route("/gesture", func(r chi.Router) {
			r.Post("/", HandleBeginGesture(m))
			r.Post("/drag", HandleDrag(m))
			r.Post("/handle", HandleDragHandle(m))
			r.Delete("/", HandleEndGesture(m))
		})

		r.Post("/undo", HandleUndo(m))
		r.Post("/redo", HandleRedo(m))
		r.Put("/canvas", HandleCanvas(m))
		r.Post("/clear", HandleClear(m))
		r.Post("/new", HandleNewDesign(m))

		r.Post("/save", HandleSave(m))
		r.Post("/load", HandleLoad(m))
		r.Get("/export.json", HandleExportJSON(m))
		r.Get("/export.pdf", HandleExportPDF(m))
		r.Get("/export.png", HandleExportPNG(m))
	})
	return r
}

func HandleList(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, m.List(middleware.Owner(r)))
	}
}

func HandleOpen(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req session.OpenRequest
		if r.ContentLength != 0 && !decode(w, r, &req) {
			return
		}
		s, err := m.Open(r.Context(), middleware.Owner(r), req)
		if err != nil {
			writeError(w, r, err, "Failed to open session")
			return
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, OpenResponse{Session: s.Info(), Snapshot: s.Snapshot()})
	}
}

func HandleGet(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookup(m, w, r)
		if !ok {
			return
		}
		render.JSON(w, r, OpenResponse{Session: s.Info(), Snapshot: s.Snapshot()})
	}
}

func HandleClose(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		save, _ := strconv.ParseBool(r.URL.Query().Get("save"))
		if err := m.Close(r.Context(), middleware.Owner(r), chi.URLParam(r, "id"), save); err != nil {
			writeError(w, r, err, "Failed to close session")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleAddElement(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in core.ElementInput
		if !decode(w, r, &in) {
			return
		}
		var id string
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			var err error
			id, err = st.Add(in)
			return Response{ElementID: id, Changed: true}, err
		}, http.StatusCreated)
	}
}

func HandleUpdateElement(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p core.Patch
		if !decode(w, r, &p) {
			return
		}
		id := chi.URLParam(r, "elementID")
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			_, found := st.Element(id)
			return Response{ElementID: id, Changed: found}, st.Update(id, p)
		}, http.StatusOK)
	}
}

func HandleDeleteElement(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "elementID")
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			return Response{ElementID: id, Changed: st.Delete(id)}, nil
		}, http.StatusOK)
	}
}

func HandleMoveElement(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deltaRequest
		if !decode(w, r, &req) {
			return
		}
		id := chi.URLParam(r, "elementID")
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			_, found := st.Element(id)
			st.Move(id, req.DX, req.DY)
			return Response{ElementID: id, Changed: found}, nil
		}, http.StatusOK)
	}
}

// HandleResizeElement sets the size directly, or drags a handle when the
// request names one.
func HandleResizeElement(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resizeRequest
		if !decode(w, r, &req) {
			return
		}
		id := chi.URLParam(r, "elementID")
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			_, found := st.Element(id)
			if req.Handle != "" {
				return Response{ElementID: id, Changed: found}, st.ResizeByHandle(id, req.Handle, req.DX, req.DY)
			}
			st.Resize(id, req.Width, req.Height)
			return Response{ElementID: id, Changed: found}, nil
		}, http.StatusOK)
	}
}

func HandleBringToFront(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "elementID")
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			_, found := st.Element(id)
			st.BringToFront(id)
			return Response{ElementID: id, Changed: found}, nil
		}, http.StatusOK)
	}
}

func HandleSendToBack(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "elementID")
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			_, found := st.Element(id)
			st.SendToBack(id)
			return Response{ElementID: id, Changed: found}, nil
		}, http.StatusOK)
	}
}

func HandleDuplicate(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		src := chi.URLParam(r, "elementID")
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			id := st.Duplicate(src)
			if id == "" {
				return Response{ElementID: src}, nil
			}
			return Response{ElementID: id, Changed: true}, nil
		}, http.StatusOK)
	}
}

func HandleHitTest(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
		y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
		if errX != nil || errY != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "x and y query parameters are required"})
			return
		}
		s, ok := lookup(m, w, r)
		if !ok {
			return
		}
		var (
			el    core.Element
			found bool
		)
		s.View(func(st *design.Store) { el, found = st.ElementAt(x, y) })
		if !found {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "No element at point"})
			return
		}
		render.JSON(w, r, el)
	}
}

func HandleSelect(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req selectRequest
		if !decode(w, r, &req) {
			return
		}
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			_, found := st.Element(req.ElementID)
			st.Select(req.ElementID, req.Multi)
			return Response{ElementID: req.ElementID, Changed: found}, nil
		}, http.StatusOK)
	}
}

func HandleClearSelection(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			changed := len(st.Selection()) > 0
			st.ClearSelection()
			return Response{Changed: changed}, nil
		}, http.StatusOK)
	}
}

func HandleSelectInRect(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req marqueeRequest
		if !decode(w, r, &req) {
			return
		}
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			ids := st.SelectInRect(req.Rect, req.Add)
			return Response{Changed: len(ids) > 0}, nil
		}, http.StatusOK)
	}
}

func HandleDeleteSelected(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			return Response{Changed: st.DeleteSelected() > 0}, nil
		}, http.StatusOK)
	}
}

func HandleBeginGesture(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gestureRequest
		if !decode(w, r, &req) {
			return
		}
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			if !st.BeginGesture(req.ElementID) {
				return Response{}, core.ErrNotFound
			}
			return Response{ElementID: req.ElementID}, nil
		}, http.StatusOK)
	}
}

func HandleDrag(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deltaRequest
		if !decode(w, r, &req) {
			return
		}
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			return Response{Changed: st.DragBy(req.DX, req.DY)}, nil
		}, http.StatusOK)
	}
}

func HandleDragHandle(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req handleDragRequest
		if !decode(w, r, &req) {
			return
		}
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			changed, err := st.DragHandle(req.Handle, req.DX, req.DY)
			return Response{Changed: changed}, err
		}, http.StatusOK)
	}
}

func HandleEndGesture(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			return Response{Changed: st.EndGesture()}, nil
		}, http.StatusOK)
	}
}

func HandleUndo(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			return Response{Changed: st.Undo()}, nil
		}, http.StatusOK)
	}
}

func HandleRedo(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			return Response{Changed: st.Redo()}, nil
		}, http.StatusOK)
	}
}

// HandleCanvas changes the set canvas properties. Omitted dimensions keep
// their current value.
func HandleCanvas(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req canvasRequest
		if !decode(w, r, &req) {
			return
		}
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			if req.Name != nil {
				st.Rename(*req.Name)
			}
			if req.Background != nil {
				st.SetBackground(*req.Background)
			}
			if req.Width != nil || req.Height != nil {
				d := st.Design()
				width, height := d.Width, d.Height
				if req.Width != nil {
					width = *req.Width
				}
				if req.Height != nil {
					height = *req.Height
				}
				st.SetCanvasSize(width, height)
			}
			return Response{Changed: true}, nil
		}, http.StatusOK)
	}
}

func HandleClear(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutate(m, w, r, func(st *design.Store) (Response, error) {
			st.Clear()
			return Response{Changed: true}, nil
		}, http.StatusOK)
	}
}

func HandleNewDesign(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req session.OpenRequest
		if r.ContentLength != 0 && !decode(w, r, &req) {
			return
		}
		s, ok := lookup(m, w, r)
		if !ok {
			return
		}
		snap, err := s.NewDesign(req.Name, req.Width, req.Height)
		if err != nil {
			writeError(w, r, err, "Failed to create design")
			return
		}
		render.JSON(w, r, Response{Changed: true, Snapshot: snap})
	}
}

func HandleSave(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookup(m, w, r)
		if !ok {
			return
		}
		summary, err := s.Save(r.Context())
		if err != nil {
			writeError(w, r, err, "Failed to save design")
			return
		}
		render.JSON(w, r, map[string]any{"session": s.Info(), "recent": summary})
	}
}

// HandleLoad replaces the session's design with a stored one. An empty key
// loads the current design.
func HandleLoad(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req keyRequest
		if r.ContentLength != 0 && !decode(w, r, &req) {
			return
		}
		s, ok := lookup(m, w, r)
		if !ok {
			return
		}
		snap, err := s.Load(r.Context(), req.Key)
		if err != nil {
			writeError(w, r, err, "Failed to load design")
			return
		}
		render.JSON(w, r, Response{Changed: true, Snapshot: snap})
	}
}

func HandleExportJSON(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookup(m, w, r)
		if !ok {
			return
		}
		var (
			data []byte
			err  error
		)
		s.View(func(st *design.Store) { data, err = st.Export() })
		if err != nil {
			writeError(w, r, err, "Failed to export design")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

func HandleExportPDF(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookup(m, w, r)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		if err := export.PDF(s.Snapshot(), w); err != nil {
			logrus.WithField("session_id", s.ID()).WithError(err).Error("Failed to export PDF")
		}
	}
}

func HandleExportPNG(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookup(m, w, r)
		if !ok {
			return
		}
		width, _ := strconv.Atoi(r.URL.Query().Get("width"))
		height, _ := strconv.Atoi(r.URL.Query().Get("height"))
		if width > export.MaxRenderSide || height > export.MaxRenderSide {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": fmt.Sprintf("width and height must not exceed %d", export.MaxRenderSide)})
			return
		}
		w.Header().Set("Content-Type", "image/png")
		if err := export.Thumbnail(s.Snapshot(), width, height, w); err != nil {
			logrus.WithField("session_id", s.ID()).WithError(err).Error("Failed to export PNG")
		}
	}
}

// mutate runs fn on the caller's session and writes the response with the
// resulting snapshot.
func mutate(m *session.Manager, w http.ResponseWriter, r *http.Request, fn func(*design.Store) (Response, error), status int) {
	s, ok := lookup(m, w, r)
	if !ok {
		return
	}
	var res Response
	snap, err := s.Do(func(st *design.Store) error {
		var err error
		res, err = fn(st)
		return err
	})
	if err != nil {
		writeError(w, r, err, "Operation failed")
		return
	}
	res.Snapshot = snap
	render.Status(r, status)
	render.JSON(w, r, res)
}

func lookup(m *session.Manager, w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := m.Get(middleware.Owner(r), chi.URLParam(r, "id"))
	if err != nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "Session not found"})
		return nil, false
	}
	return s, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid request body"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, core.ErrInvalidElement), errors.Is(err, core.ErrKindMismatch), errors.Is(err, design.ErrUnknownHandle),
		errors.Is(err, core.ErrInvalidKey):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": err.Error()})
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrSessionNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": err.Error()})
	default:
		logrus.WithFields(logrus.Fields{
			"error": err,
			"path":  r.URL.Path,
		}).Error(msg)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": msg})
	}
}
