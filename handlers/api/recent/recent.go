// Package recent serves the recent-designs registry.
package recent

import (
	"encoding/json"
	"errors"
	"net/http"

	"canva-clone/core"
	"canva-clone/export"
	"canva-clone/recent"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

func Routes(reg *recent.Registry, capturer *export.Capturer) chi.Router {
	r := chi.NewRouter()
	r.Get("/", HandleList(reg))
	r.Post("/", HandleAdd(reg))
	r.Delete("/", HandleClear(reg))
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", HandleGet(reg))
		r.Patch("/", HandleUpdate(reg))
		r.Delete("/", HandleRemove(reg))
		r.Get("/thumbnail", HandleThumbnail(reg, capturer))
	})
	return r
}

func HandleList(reg *recent.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, reg.List())
	}
}

func HandleAdd(reg *recent.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in recent.SummaryInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Invalid request body"})
			return
		}
		s, err := reg.Add(r.Context(), in)
		if err != nil {
			serverError(w, r, err, "Failed to add recent design")
			return
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, s)
	}
}

func HandleGet(reg *recent.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := reg.Get(chi.URLParam(r, "id"))
		if !ok {
			notFound(w, r)
			return
		}
		render.JSON(w, r, s)
	}
}

func HandleUpdate(reg *recent.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p recent.SummaryPatch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Invalid request body"})
			return
		}
		s, err := reg.Update(r.Context(), chi.URLParam(r, "id"), p)
		if errors.Is(err, core.ErrNotFound) {
			notFound(w, r)
			return
		}
		if err != nil {
			serverError(w, r, err, "Failed to update recent design")
			return
		}
		render.JSON(w, r, s)
	}
}

func HandleRemove(reg *recent.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reg.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
			serverError(w, r, err, "Failed to remove recent design")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleClear(reg *recent.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reg.Clear(r.Context()); err != nil {
			serverError(w, r, err, "Failed to clear recent designs")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleThumbnail serves the PNG captured for a summary.
func HandleThumbnail(reg *recent.Registry, capturer *export.Capturer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := reg.Get(chi.URLParam(r, "id"))
		if !ok || s.Thumbnail == "" || capturer == nil {
			notFound(w, r)
			return
		}
		data, err := capturer.Open(r.Context(), s.Thumbnail)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error": err,
				"uri":   s.Thumbnail,
			}).Warn("Failed to open thumbnail")
			notFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, map[string]string{"error": "Recent design not found"})
}

func serverError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	logrus.WithField("error", err).Error(msg)
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, map[string]string{"error": msg})
}
