// Package extractor implements a validate/prepare/extract protocol: a
// type-directed mechanism that converts a parsed request plus router-held
// state into handler arguments, with validation at server startup and
// preparation at request time.
//
// Go generics plus the hand-written composition helpers in the root fire
// package (Handle1, Handle2, Handle3, Handle4) stand in for a derive-macro-style
// code generator -- see DESIGN.md.
package extractor

import (
	"github.com/fire-lib/fire-http/header"
	"github.com/fire-lib/fire-http/message"
	"github.com/fire-lib/fire-http/resources"
	"github.com/fire-lib/fire-http/router"
	"github.com/fire-lib/fire-http/state"
)

// Extractor produces one handler argument of type T through a three-step
// protocol.
type Extractor[T any] interface {
	// Validate asserts all statically-checkable prerequisites at server
	// build time: the named resource is present, the parameter name is
	// declared on the route, any required state slot will exist by the
	// time Prepare runs. It may panic; it must not block.
	Validate(names []string, plan *state.Plan, res *resources.Map) error

	// Prepare runs once per request, before the handler, in extractor
	// declaration order. It may read the request header and populate the
	// per-request state map. It may suspend.
	Prepare(h *header.RequestHeader, params router.Params, st *state.Map, res *resources.Map) (Prepared, error)

	// Extract runs at handler entry, in argument order, and must not
	// block. It may consume the owned request (at most one extractor in a
	// tuple may do so, enforced by message.Request.TakeOnce).
	Extract(p Prepared, req *message.Request, params router.Params, st *state.Map, res *resources.Map) (T, error)
}

// Prepared is the type-erased value threaded from Prepare to Extract for
// one extractor invocation.
type Prepared any

// contains reports whether name is present in names, used by the builtin
// extractors' Validate implementations.
func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
