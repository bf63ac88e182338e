package fire

import (
	"net/http"

	"github.com/fire-lib/fire-http/resources"
	"github.com/fire-lib/fire-http/router"
)

// RawHandler is the "still-upgradable request" hook: it receives the
// engine's own http.ResponseWriter/http.Request pair, still hijackable,
// because a WebSocket upgrade (gorilla/websocket.Upgrader) needs exactly
// that -- a parsed message.Request has already committed to an
// HTTP-semantics body and can't un-become a raw connection.
//
// ServeRaw must do exactly one of:
//   - answer directly (write a response, or hijack for WS) and return
//     declined=false, err=nil;
//   - decline, writing no status or body, and return declined=true;
//     headers already set on w are kept on the response the normal
//     router then produces;
//   - fail, returning declined=false and a non-nil error the pipeline turns
//     into a status-only response.
type RawHandler interface {
	ServeRaw(w http.ResponseWriter, r *http.Request, params router.Params, res *resources.Map) (declined bool, err error)
}

// RawHandlerFunc adapts a plain function to RawHandler.
type RawHandlerFunc func(w http.ResponseWriter, r *http.Request, params router.Params, res *resources.Map) (bool, error)

func (f RawHandlerFunc) ServeRaw(w http.ResponseWriter, r *http.Request, params router.Params, res *resources.Map) (bool, error) {
	return f(w, r, params, res)
}
