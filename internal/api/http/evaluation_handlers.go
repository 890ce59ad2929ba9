package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/ipa-grading/internal/auth/middleware"
	"github.com/mind-engage/ipa-grading/internal/evaluation"
	"github.com/mind-engage/ipa-grading/internal/grading"
	"github.com/mind-engage/ipa-grading/internal/metrics"
)

type criterionView struct {
	grading.Criterion
	TickedRequirements []string `json:"ticked_requirements"`
	Note               *string  `json:"note"`
}

// ListEvaluationsHandler returns the rubric merged with the caller's ticks
// and notes.
func ListEvaluationsHandler(rb *grading.Rubric, store evaluation.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		evals, err := store.LoadEvaluations(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			log.Printf("load evaluations: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]criterionView, 0, len(rb.Criteria))
		for _, c := range rb.Criteria {
			ev := evals[c.ID]
			ticked := ev.TickedRequirements
			if ticked == nil {
				ticked = []string{}
			}
			out = append(out, criterionView{Criterion: c, TickedRequirements: ticked, Note: ev.Note})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"categories": rb.Categories,
			"criterias":  out,
		})
	}
}

type saveRequest struct {
	TickedRequirements []string        `json:"tickedRequirements"`
	Note               json.RawMessage `json:"note"`
}

// input maps the request onto a store input. A missing "note" key leaves the
// stored note alone; null or "" deletes it.
func (s saveRequest) input() (evaluation.Input, error) {
	in := evaluation.Input{Ticked: s.TickedRequirements}
	if s.Note == nil {
		return in, nil
	}
	in.NoteSet = true
	var note *string
	if err := json.Unmarshal(s.Note, &note); err != nil {
		return in, errors.New("note must be a string or null")
	}
	in.Note = note
	return in, nil
}

func SaveEvaluationHandler(rb *grading.Rubric, store evaluation.Store, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "criteriaID")
		if _, ok := rb.Criterion(id); !ok {
			http.Error(w, "criterion not found", http.StatusNotFound)
			return
		}
		var req saveRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		in, err := req.input()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := store.SaveEvaluation(r.Context(), auth.SubjectFromContext(r.Context()), id, in); err != nil {
			log.Printf("save evaluation %s: %v", id, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		m.EvaluationSaves.Inc()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}
}

// CalculateHandler scores the caller's evaluations with the project method
// from their profile.
func CalculateHandler(rb *grading.Rubric, store evaluation.Store, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())
		p, err := store.GetProfile(r.Context(), userID)
		if errors.Is(err, evaluation.ErrNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("calculate: profile: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		evals, err := store.LoadEvaluations(r.Context(), userID)
		if err != nil {
			log.Printf("calculate: load: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		start := time.Now()
		rep := grading.ScoreRubric(rb, evals, p.ProjectMethod)
		m.ObserveCalculation(string(p.ProjectMethod), start, rep.FinalGrade)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rep)
	}
}

func ExportHandler(store evaluation.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		evals, err := store.LoadEvaluations(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			log.Printf("export: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		snap := evaluation.SnapshotOf(evals)
		snap.ExportedAt = time.Now().UTC().Format(time.RFC3339)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="ipa-evaluations.json"`)
		_ = json.NewEncoder(w).Encode(snap)
	}
}

// ImportHandler replaces the caller's evaluations with an exported snapshot.
// Criteria the rubric does not know are skipped.
func ImportHandler(rb *grading.Rubric, store evaluation.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var snap evaluation.Snapshot
		if !decodeJSON(w, r, &snap) {
			return
		}
		evals := grading.Evaluations{}
		skipped := []string{}
		for id, ev := range snap.ToEvaluations() {
			if _, ok := rb.Criterion(id); !ok {
				skipped = append(skipped, id)
				continue
			}
			evals[id] = ev
		}
		if err := store.ReplaceEvaluations(r.Context(), auth.SubjectFromContext(r.Context()), evals); err != nil {
			log.Printf("import: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":  true,
			"imported": len(evals),
			"skipped":  len(skipped),
		})
	}
}
