// internal/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quizfire/quizfire/internal/game"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps game error kinds onto HTTP statuses. Unknown errors
// become a 500 with a generic message so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	var ge *game.Error
	if !errors.As(err, &ge) {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch ge.Kind {
	case game.KindValidation, game.KindEmptyPack:
		status = http.StatusBadRequest
	case game.KindUnauthorized:
		status = http.StatusUnauthorized
	case game.KindNotFound:
		status = http.StatusNotFound
	case game.KindInvalidState, game.KindAlreadyAnswered:
		status = http.StatusConflict
	}
	writeJSON(w, status, errorBody{Error: ge.Message, Code: string(ge.Kind)})
}

// decodeBody parses a JSON request body into dst, rejecting unknown
// fields so client typos surface as 400s instead of silent defaults.
func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return game.NewError(game.KindValidation, "invalid request body: %v", err)
	}
	return nil
}
