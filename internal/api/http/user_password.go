package http

import (
	"errors"
	"net/http"

	auth "github.com/mind-engage/ipa-grading/internal/auth/middleware"
	"github.com/mind-engage/ipa-grading/internal/evaluation"
)

type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func ChangePasswordHandler(store evaluation.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())

		var req changePasswordReq
		if !decodeJSON(w, r, &req) {
			return
		}

		u, err := store.GetUser(r.Context(), userID)
		if errors.Is(err, evaluation.ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !auth.CheckPassword(u.PasswordHash, req.OldPassword) {
			http.Error(w, "incorrect old password", http.StatusForbidden)
			return
		}

		hash, err := auth.HashPassword(req.NewPassword)
		if errors.Is(err, auth.ErrPasswordTooShort) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := store.SetPasswordHash(r.Context(), userID, hash); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
