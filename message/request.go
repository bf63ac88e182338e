// Package message implements the Request/Response pair: a parsed header
// plus a body.Body, kept in their own package so both the extractor
// machinery and the root fire package can depend on them without a cycle.
package message

import (
	"errors"

	"github.com/fire-lib/fire-http/body"
	"github.com/fire-lib/fire-http/header"
)

// ErrAlreadyTaken is returned by TakeOnce when a second extractor in the
// same handler's tuple tries to consume the Request, violating its
// single-assignment ownership cell.
var ErrAlreadyTaken = errors.New("message: request already taken by an earlier extractor")

// Request is the parsed header plus body.Body pair.
type Request struct {
	Header *header.RequestHeader
	body   body.Body
	taken  bool
}

// NewRequest builds a Request from a parsed header and body.
func NewRequest(h *header.RequestHeader, b body.Body) *Request {
	return &Request{Header: h, body: b}
}

// Body returns a pointer to the body for non-consuming access (size probes,
// streaming into a handler without taking ownership).
func (r *Request) Body() *body.Body { return &r.body }

// TakeOnce hands back the Request for exclusive use by the one extractor in
// a handler's tuple that consumes it (the "&Request" builtin extractor).
// A second call fails with ErrAlreadyTaken.
func (r *Request) TakeOnce() (*Request, error) {
	if r.taken {
		return nil, ErrAlreadyTaken
	}
	r.taken = true
	return r, nil
}

// Taken reports whether TakeOnce has already succeeded once.
func (r *Request) Taken() bool { return r.taken }
