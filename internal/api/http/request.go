package http

import (
	"encoding/json"
	"errors"
	"net/http"
)

// maxBodyBytes caps JSON request bodies; an export of a full rubric stays
// well below it.
const maxBodyBytes = 1 << 20

// decodeJSON reads a capped JSON body into v. On failure it writes the
// error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil {
		return true
	}
	if status := bodyErrorStatus(err); status == http.StatusRequestEntityTooLarge {
		http.Error(w, "request body too large", status)
		return false
	}
	http.Error(w, "bad json", http.StatusBadRequest)
	return false
}

func bodyErrorStatus(err error) int {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
