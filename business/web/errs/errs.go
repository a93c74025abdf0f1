// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/vedhavyas/subspace/foundation/blockchain/archiver"
	"github.com/vedhavyas/subspace/foundation/blockchain/codec"
	"github.com/vedhavyas/subspace/foundation/blockchain/dsn"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/state"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (re *Trusted) Error() string {
	return re.Err.Error()
}

// Unwrap returns the wrapped error.
func (re *Trusted) Unwrap() error {
	return re.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var re *Trusted
	return errors.As(err, &re)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var re *Trusted
	if !errors.As(err, &re) {
		return nil
	}
	return re
}

// =============================================================================

// FromNode wraps errors of the archival node with the status clients
// should see. Unknown errors are returned untouched and end up as a 500.
func FromNode(err error) error {
	switch {
	case err == nil:
		return nil

	case errors.Is(err, dsn.ErrNotFound):
		return NewTrusted(err, http.StatusNotFound)

	case errors.Is(err, state.ErrQueueFull), errors.Is(err, state.ErrShutdown):
		return NewTrusted(err, http.StatusServiceUnavailable)

	case errors.Is(err, archiver.ErrNonSequentialBlock):
		return NewTrusted(err, http.StatusConflict)

	case errors.Is(err, archiver.ErrNotEnoughPieces):
		return NewTrusted(err, http.StatusUnprocessableEntity)

	case errors.Is(err, pieces.ErrInvalidSize), errors.Is(err, pieces.ErrZeroTotalPieces),
		errors.Is(err, codec.ErrTrailingBytes), errors.Is(err, codec.ErrInvalidTag):
		return NewTrusted(err, http.StatusBadRequest)
	}

	return err
}
