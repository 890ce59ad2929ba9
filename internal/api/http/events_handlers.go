package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	syncx "github.com/mind-engage/ipa-grading/internal/sync"
)

// EventsHandler pages through the audit log: GET /events?since=<seq>&limit=<n>.
func EventsHandler(events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var since int64
		if s := q.Get("since"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil || v < 0 {
				http.Error(w, "since must be a non-negative integer", http.StatusBadRequest)
				return
			}
			since = v
		}
		limit, _ := strconv.Atoi(q.Get("limit"))
		evs, err := events.Since(r.Context(), since, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		next := since
		if len(evs) > 0 {
			next = evs[len(evs)-1].Seq
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"events": evs, "next": next})
	}
}
