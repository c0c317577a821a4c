package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vovakirdan/gridfolio/internal/board"
)

// Machine-readable error codes returned in API error bodies.
const (
	codeInvalidInput = "INVALID_INPUT"
	codeInvalidKind  = "INVALID_KIND"
	codeNotFound     = "NOT_FOUND"
	codeConflict     = "CONFLICT"
	codeNoSpace      = "NO_SPACE"
	codeInternal     = "INTERNAL_ERROR"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// statusFor maps store errors to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, board.ErrUnknownWidget):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, board.ErrUnknownKind):
		return http.StatusBadRequest, codeInvalidKind
	case errors.Is(err, board.ErrSingleInstance), errors.Is(err, board.ErrDuplicateID):
		return http.StatusConflict, codeConflict
	case errors.Is(err, board.ErrNoSpace):
		return http.StatusConflict, codeNoSpace
	case errors.Is(err, board.ErrInvalidWidget), errors.Is(err, board.ErrNotExpandable):
		return http.StatusUnprocessableEntity, codeInvalidInput
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err.Error())
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // Client went away
}
