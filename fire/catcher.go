package fire

import (
	"github.com/fire-lib/fire-http/message"
	"github.com/fire-lib/fire-http/resources"
)

// Catcher runs after a route (or the synthesized 404/error response) has
// produced a Response, in insertion order, and may rewrite it. Each
// catcher decides by its own predicate whether to modify the response; it
// sees the originating request and the process-wide Resources so it can
// vary its behavior by path or header, or consult a shared handle such as
// a template renderer. A non-nil error replaces the response with its
// status, the same way a handler error does.
type Catcher interface {
	Catch(req *message.Request, resp *message.Response, res *resources.Map) (*message.Response, error)
}

// CatcherFunc adapts a plain function to Catcher.
type CatcherFunc func(req *message.Request, resp *message.Response, res *resources.Map) (*message.Response, error)

func (f CatcherFunc) Catch(req *message.Request, resp *message.Response, res *resources.Map) (*message.Response, error) {
	return f(req, resp, res)
}

// CatchStatus rewrites only responses carrying the given status code.
func CatchStatus(code int, fn func(req *message.Request, resp *message.Response, res *resources.Map) (*message.Response, error)) Catcher {
	return CatcherFunc(func(req *message.Request, resp *message.Response, res *resources.Map) (*message.Response, error) {
		if resp.Header.Status != code {
			return resp, nil
		}
		return fn(req, resp, res)
	})
}

// CatchClientErrors rewrites any 4xx response.
func CatchClientErrors(fn func(req *message.Request, resp *message.Response, res *resources.Map) (*message.Response, error)) Catcher {
	return CatcherFunc(func(req *message.Request, resp *message.Response, res *resources.Map) (*message.Response, error) {
		if resp.Header.Status < 400 || resp.Header.Status >= 500 {
			return resp, nil
		}
		return fn(req, resp, res)
	})
}

// CatchServerErrors rewrites any 5xx response.
func CatchServerErrors(fn func(req *message.Request, resp *message.Response, res *resources.Map) (*message.Response, error)) Catcher {
	return CatcherFunc(func(req *message.Request, resp *message.Response, res *resources.Map) (*message.Response, error) {
		if resp.Header.Status < 500 {
			return resp, nil
		}
		return fn(req, resp, res)
	})
}
