// Package ferr holds the closed client/server error taxonomy shared by the
// body, extractor and pipeline layers.
//
// Every error that can reach the request pipeline carries a Kind, which maps
// to exactly one HTTP status. Handlers and extractors are free to return a
// plain Go error; the pipeline wraps anything that isn't already a *ferr.Error
// as KindInternal before writing the status-only response.
package ferr

import (
	"errors"
	"io"
	"net/http"
	"os"
)

// Kind is a closed enumeration of the client/server error classes the
// pipeline knows how to turn into a status-coded response.
type Kind int

const (
	KindBadRequest Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindPayloadTooLarge
	KindRequestTimeout
	KindUnprocessable
	KindRangeNotSatisfiable
	KindInternal
	KindNotImplemented
	KindGatewayTimeout
	KindExpectationFailed
)

// Status returns the HTTP status code associated with a Kind.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindRequestTimeout:
		return http.StatusRequestTimeout
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindRangeNotSatisfiable:
		return http.StatusRequestedRangeNotSatisfiable
	case KindNotImplemented:
		return http.StatusNotImplemented
	case KindGatewayTimeout:
		return http.StatusGatewayTimeout
	case KindExpectationFailed:
		return http.StatusExpectationFailed
	default:
		return http.StatusInternalServerError
	}
}

// IsClient reports whether the kind belongs to the 4xx client-error family.
func (k Kind) IsClient() bool {
	return k.Status() >= 400 && k.Status() < 500
}

// Error is the single error type that crosses the extractor/handler/pipeline
// boundary. Apart from FromBodyIO(nil), nothing here returns a nil *Error;
// use nil Go errors for success.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Kind.Status())
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind with a static message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap attaches a kind to an existing error, preserving it for errors.Unwrap.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// NotFound is a convenience constructor mirroring the pipeline's synthesized
// 404 for an unmatched route.
func NotFound(msg string) *Error { return New(KindNotFound, msg) }

// Internal wraps any error that escaped a handler or extractor as a 500,
// the pipeline's default when a returned error carries no *Error already.
func Internal(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(KindInternal, err)
}

// FromBodyIO maps an io-style error observed while reading a Body into the
// client/server Kind the pipeline needs: not-found -> 404,
// permission-denied -> 401, unexpected-eof -> 413, timed-out -> 408,
// invalid-data -> 400, other common kinds -> 417.
func FromBodyIO(err error) *Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrNotExist):
		return Wrap(KindNotFound, err)
	case errors.Is(err, os.ErrPermission):
		return Wrap(KindUnauthorized, err)
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, ErrPayloadTooLarge):
		return Wrap(KindPayloadTooLarge, err)
	case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, ErrTimedOut):
		return Wrap(KindRequestTimeout, err)
	case errors.Is(err, ErrInvalidData):
		return Wrap(KindBadRequest, err)
	default:
		return Wrap(KindExpectationFailed, err)
	}
}

// Sentinel io-style categories a Body implementation raises; FromBodyIO
// classifies these (and the stdlib ones) into a Kind.
var (
	ErrPayloadTooLarge = errors.New("ferr: payload too large")
	ErrTimedOut        = errors.New("ferr: timed out")
	ErrInvalidData     = errors.New("ferr: invalid data")
)
