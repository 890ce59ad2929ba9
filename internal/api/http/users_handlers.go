package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	auth "github.com/mind-engage/ipa-grading/internal/auth/middleware"
	"github.com/mind-engage/ipa-grading/internal/evaluation"
	"github.com/mind-engage/ipa-grading/internal/rbac"
)

func GetProfileHandler(store evaluation.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := store.GetProfile(r.Context(), auth.SubjectFromContext(r.Context()))
		if errors.Is(err, evaluation.ErrNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("get profile: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p)
	}
}

func UpdateProfileHandler(store evaluation.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd evaluation.ProfileUpdate
		if !decodeJSON(w, r, &upd) {
			return
		}
		if upd.ProjectMethod != nil && !upd.ProjectMethod.Valid() {
			http.Error(w, `projectMethod must be "Agil", "Linear" or empty`, http.StatusBadRequest)
			return
		}
		p, err := store.UpdateProfile(r.Context(), auth.SubjectFromContext(r.Context()), upd)
		if errors.Is(err, evaluation.ErrNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("update profile: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p)
	}
}

func ListUsersHandler(store evaluation.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := store.ListUsers(r.Context(), r.URL.Query().Get("role"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(users)
	}
}

// CreateUserHandler lets an admin create accounts of any role.
func CreateUserHandler(store evaluation.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			credentials
			Role string `json:"role"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Role == "" {
			req.Role = rbac.RoleCandidate
		}
		createUser(w, r, store, req.Username, req.Password, req.Role)
	}
}
