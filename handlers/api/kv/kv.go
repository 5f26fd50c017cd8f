// Package kv gives each user raw access to their own slice of the
// key-value backend.
package kv

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"canva-clone/core"
	"canva-clone/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// MaxValueSize bounds a stored value.
const MaxValueSize = 10 << 20

// scope is the key prefix owned by the request's user.
func scope(r *http.Request) string {
	return core.UserScope(middleware.Owner(r))
}

func HandleList(store core.KeyValueStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefix := scope(r)
		keys, err := store.List(r.Context(), prefix+r.URL.Query().Get("prefix"))
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":  err,
				"prefix": prefix,
			}).Error("Failed to list keys")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to list keys"})
			return
		}

		out := make([]string, 0, len(keys))
		for _, k := range keys {
			out = append(out, strings.TrimPrefix(k, prefix))
		}
		render.JSON(w, r, out)
	}
}

func HandleGet(store core.KeyValueStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		if key == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Key is required"})
			return
		}

		data, err := store.Get(r.Context(), scope(r)+key)
		if errors.Is(err, core.ErrNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Key not found"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error": err,
				"key":   key,
			}).Error("Failed to get value")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to get value"})
			return
		}

		w.Header().Set("Content-Type", http.DetectContentType(data))
		w.Write(data)
	}
}

func HandlePut(store core.KeyValueStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		if key == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Key is required"})
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, MaxValueSize+1))
		defer r.Body.Close()
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error": err,
				"key":   key,
			}).Error("Failed to read request body")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to read request body"})
			return
		}
		if len(body) > MaxValueSize {
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, map[string]string{"error": "Value too large"})
			return
		}

		if err := store.Set(r.Context(), scope(r)+key, body); err != nil {
			logrus.WithFields(logrus.Fields{
				"error": err,
				"key":   key,
			}).Error("Failed to save value")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to save value"})
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleDelete(store core.KeyValueStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		if key == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Key is required"})
			return
		}

		if err := store.Remove(r.Context(), scope(r)+key); err != nil {
			logrus.WithFields(logrus.Fields{
				"error": err,
				"key":   key,
			}).Error("Failed to delete value")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to delete value"})
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
