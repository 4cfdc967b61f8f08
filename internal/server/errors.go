package server

import (
	"errors"
	"net/http"
)

// Failure taxonomy for room mutations. Every mutating call either commits
// fully or returns one of these (or a validation error) with no state change.
var (
	ErrUnauthenticated = errors.New("session cookies missing or invalid")
	ErrUnauthorized    = errors.New("only the host can perform this action")
	ErrInvalidState    = errors.New("operation not allowed in the current story state")
	ErrInvalidVote     = errors.New("vote value is not in the room's deck")
	ErrNotFound        = errors.New("not found")
)

func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidVote):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}
