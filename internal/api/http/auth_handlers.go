package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	auth "github.com/mind-engage/ipa-grading/internal/auth/middleware"
	"github.com/mind-engage/ipa-grading/internal/evaluation"
	"github.com/mind-engage/ipa-grading/internal/metrics"
	"github.com/mind-engage/ipa-grading/internal/rbac"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func LoginHandler(store evaluation.Store, a *auth.AuthService, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentials
		if !decodeJSON(w, r, &req) {
			return
		}
		u, err := store.GetUserByUsername(r.Context(), strings.TrimSpace(req.Username))
		if err != nil && !errors.Is(err, evaluation.ErrNotFound) {
			log.Printf("login: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
			m.Logins.WithLabelValues("denied").Inc()
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(u.ID, u.Role)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		m.Logins.WithLabelValues("ok").Inc()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"token":  tok,
			"userId": u.ID,
			"role":   u.Role,
		})
	}
}

// RegisterHandler creates a candidate account.
func RegisterHandler(store evaluation.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentials
		if !decodeJSON(w, r, &req) {
			return
		}
		createUser(w, r, store, req.Username, req.Password, rbac.RoleCandidate)
	}
}

func createUser(w http.ResponseWriter, r *http.Request, store evaluation.Store, username, password, role string) {
	username = strings.TrimSpace(username)
	if username == "" {
		http.Error(w, "username required", http.StatusBadRequest)
		return
	}
	if !rbac.ValidRole(role) {
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}
	hash, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	u, err := store.CreateUser(r.Context(), username, hash, role)
	if errors.Is(err, evaluation.ErrDuplicateUser) {
		http.Error(w, "username already exists", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Printf("create user %q: %v", username, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(u)
}
