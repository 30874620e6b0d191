package api

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/samcharles93/matcore/internal/engine"
	"github.com/samcharles93/matcore/internal/instruction"
	"github.com/samcharles93/matcore/pkg/csvio"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// classify maps an error to an HTTP status and an error type.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, instruction.ErrInvalidInstruction),
		errors.Is(err, csvio.ErrInvalidProperties):
		return http.StatusBadRequest, "invalid_request_error"
	case errors.Is(err, csvio.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound, "not_found_error"
	case errors.Is(err, csvio.ErrEmptyInput),
		errors.Is(err, csvio.ErrColumnMismatch),
		errors.Is(err, csvio.ErrEmptyField),
		errors.Is(err, csvio.ErrParseValue),
		errors.Is(err, csvio.ErrTooManyRows):
		return http.StatusBadRequest, "format_error"
	case errors.Is(err, engine.ErrNoOutput):
		return http.StatusUnprocessableEntity, "no_output_error"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}
