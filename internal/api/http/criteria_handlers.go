package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/ipa-grading/internal/grading"
	"github.com/mind-engage/ipa-grading/internal/rubric"
	"github.com/mind-engage/ipa-grading/internal/storage"
)

const maxRubricBytes = 4 << 20

func CriteriaHandler(rb *grading.Rubric) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rb)
	}
}

// MountRubrics exposes the versioned rubric artifacts under prefix. Uploads
// are validated before they are stored and take effect on the next start.
func MountRubrics(r chi.Router, bs storage.BlobStore, prefix string) {
	// GET /rubrics -> version keys in load order
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		keys, err := bs.List(prefix)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"versions": keys})
	})

	// PUT /rubrics/{name}
	r.Put("/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if err := checkRubricName(name); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRubricBytes))
		if err != nil {
			http.Error(w, "read error: "+err.Error(), bodyErrorStatus(err))
			return
		}
		rb, err := rubric.Decode(bytes.NewReader(raw), rubric.FormatFor(name))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rep := rubric.Validate(rb)
		w.Header().Set("Content-Type", "application/json")
		if rep.Err() != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(rep)
			return
		}
		key := path.Join(prefix, name)
		if _, err := bs.Put(key, bytes.NewReader(raw)); err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"key": key, "warnings": rep.Warnings})
	})

	// GET /rubrics/{name} -> raw artifact
	r.Get("/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if err := checkRubricName(name); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		key := path.Join(prefix, name)
		rc, err := bs.Get(key)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer rc.Close()
		if rubric.FormatFor(key) == rubric.FormatYAML {
			w.Header().Set("Content-Type", "application/yaml")
		} else {
			w.Header().Set("Content-Type", "application/json")
		}
		_, _ = io.Copy(w, rc)
	})
}

// checkRubricName accepts a plain file name with a rubric extension.
func checkRubricName(name string) error {
	if name != path.Base(name) || strings.HasPrefix(name, ".") {
		return errors.New("bad name")
	}
	switch path.Ext(name) {
	case ".json", ".yaml", ".yml":
		return nil
	}
	return errors.New("name must end in .json, .yaml or .yml")
}
