package fire

import (
	"context"

	"github.com/fire-lib/fire-http/extractor"
	"github.com/fire-lib/fire-http/message"
	"github.com/fire-lib/fire-http/resources"
	"github.com/fire-lib/fire-http/router"
	"github.com/fire-lib/fire-http/state"
)

// Handler is the one dynamic-dispatch interface per routing slot. Validate
// runs once at Build time over every registered route; Serve runs once
// per matched request.
type Handler interface {
	Validate(names []string, plan *state.Plan, res *resources.Map) error
	Serve(ctx context.Context, req *message.Request, params router.Params, res *resources.Map) (*message.Response, error)
}

// HandlerFunc adapts a plain function with no extractor arguments into a
// Handler, the zero-argument case alongside the Handle1..Handle4 family
// below.
type HandlerFunc func(ctx context.Context) (*message.Response, error)

func (f HandlerFunc) Validate([]string, *state.Plan, *resources.Map) error { return nil }

func (f HandlerFunc) Serve(ctx context.Context, _ *message.Request, _ router.Params, _ *resources.Map) (*message.Response, error) {
	return f(ctx)
}

// Handle1 composes a single extractor.Extractor[A] with a handler function.
func Handle1[A any](e1 extractor.Extractor[A], fn func(ctx context.Context, a A) (*message.Response, error)) Handler {
	return &handler1[A]{e1: e1, fn: fn}
}

type handler1[A any] struct {
	e1 extractor.Extractor[A]
	fn func(context.Context, A) (*message.Response, error)
}

func (h *handler1[A]) Validate(names []string, plan *state.Plan, res *resources.Map) error {
	return h.e1.Validate(names, plan, res)
}

func (h *handler1[A]) Serve(ctx context.Context, req *message.Request, params router.Params, res *resources.Map) (*message.Response, error) {
	st := state.New()
	p1, err := h.e1.Prepare(req.Header, params, st, res)
	if err != nil {
		return nil, err
	}
	a1, err := h.e1.Extract(p1, req, params, st, res)
	if err != nil {
		return nil, err
	}
	return h.fn(ctx, a1)
}

// Handle2 composes two extractors in declaration order: both Prepare steps
// run before either Extract, so an earlier extractor can populate state a
// later one's Extract depends on.
func Handle2[A, B any](e1 extractor.Extractor[A], e2 extractor.Extractor[B], fn func(ctx context.Context, a A, b B) (*message.Response, error)) Handler {
	return &handler2[A, B]{e1: e1, e2: e2, fn: fn}
}

type handler2[A, B any] struct {
	e1 extractor.Extractor[A]
	e2 extractor.Extractor[B]
	fn func(context.Context, A, B) (*message.Response, error)
}

func (h *handler2[A, B]) Validate(names []string, plan *state.Plan, res *resources.Map) error {
	if err := h.e1.Validate(names, plan, res); err != nil {
		return err
	}
	return h.e2.Validate(names, plan, res)
}

func (h *handler2[A, B]) Serve(ctx context.Context, req *message.Request, params router.Params, res *resources.Map) (*message.Response, error) {
	st := state.New()
	p1, err := h.e1.Prepare(req.Header, params, st, res)
	if err != nil {
		return nil, err
	}
	p2, err := h.e2.Prepare(req.Header, params, st, res)
	if err != nil {
		return nil, err
	}
	a1, err := h.e1.Extract(p1, req, params, st, res)
	if err != nil {
		return nil, err
	}
	b1, err := h.e2.Extract(p2, req, params, st, res)
	if err != nil {
		return nil, err
	}
	return h.fn(ctx, a1, b1)
}

// Handle3 composes three extractors, the common shape for "path param +
// resource + owned request" handlers.
func Handle3[A, B, C any](e1 extractor.Extractor[A], e2 extractor.Extractor[B], e3 extractor.Extractor[C], fn func(ctx context.Context, a A, b B, c C) (*message.Response, error)) Handler {
	return &handler3[A, B, C]{e1: e1, e2: e2, e3: e3, fn: fn}
}

type handler3[A, B, C any] struct {
	e1 extractor.Extractor[A]
	e2 extractor.Extractor[B]
	e3 extractor.Extractor[C]
	fn func(context.Context, A, B, C) (*message.Response, error)
}

func (h *handler3[A, B, C]) Validate(names []string, plan *state.Plan, res *resources.Map) error {
	if err := h.e1.Validate(names, plan, res); err != nil {
		return err
	}
	if err := h.e2.Validate(names, plan, res); err != nil {
		return err
	}
	return h.e3.Validate(names, plan, res)
}

func (h *handler3[A, B, C]) Serve(ctx context.Context, req *message.Request, params router.Params, res *resources.Map) (*message.Response, error) {
	st := state.New()
	p1, err := h.e1.Prepare(req.Header, params, st, res)
	if err != nil {
		return nil, err
	}
	p2, err := h.e2.Prepare(req.Header, params, st, res)
	if err != nil {
		return nil, err
	}
	p3, err := h.e3.Prepare(req.Header, params, st, res)
	if err != nil {
		return nil, err
	}
	a1, err := h.e1.Extract(p1, req, params, st, res)
	if err != nil {
		return nil, err
	}
	b1, err := h.e2.Extract(p2, req, params, st, res)
	if err != nil {
		return nil, err
	}
	c1, err := h.e3.Extract(p3, req, params, st, res)
	if err != nil {
		return nil, err
	}
	return h.fn(ctx, a1, b1, c1)
}

// Handle4 composes four extractors, the common shape for "path param +
// resource + state + owned request" handlers.
func Handle4[A, B, C, D any](e1 extractor.Extractor[A], e2 extractor.Extractor[B], e3 extractor.Extractor[C], e4 extractor.Extractor[D], fn func(ctx context.Context, a A, b B, c C, d D) (*message.Response, error)) Handler {
	return &handler4[A, B, C, D]{e1: e1, e2: e2, e3: e3, e4: e4, fn: fn}
}

type handler4[A, B, C, D any] struct {
	e1 extractor.Extractor[A]
	e2 extractor.Extractor[B]
	e3 extractor.Extractor[C]
	e4 extractor.Extractor[D]
	fn func(context.Context, A, B, C, D) (*message.Response, error)
}

func (h *handler4[A, B, C, D]) Validate(names []string, plan *state.Plan, res *resources.Map) error {
	if err := h.e1.Validate(names, plan, res); err != nil {
		return err
	}
	if err := h.e2.Validate(names, plan, res); err != nil {
		return err
	}
	if err := h.e3.Validate(names, plan, res); err != nil {
		return err
	}
	return h.e4.Validate(names, plan, res)
}

func (h *handler4[A, B, C, D]) Serve(ctx context.Context, req *message.Request, params router.Params, res *resources.Map) (*message.Response, error) {
	st := state.New()
	p1, err := h.e1.Prepare(req.Header, params, st, res)
	if err != nil {
		return nil, err
	}
	p2, err := h.e2.Prepare(req.Header, params, st, res)
	if err != nil {
		return nil, err
	}
	p3, err := h.e3.Prepare(req.Header, params, st, res)
	if err != nil {
		return nil, err
	}
	p4, err := h.e4.Prepare(req.Header, params, st, res)
	if err != nil {
		return nil, err
	}
	a1, err := h.e1.Extract(p1, req, params, st, res)
	if err != nil {
		return nil, err
	}
	b1, err := h.e2.Extract(p2, req, params, st, res)
	if err != nil {
		return nil, err
	}
	c1, err := h.e3.Extract(p3, req, params, st, res)
	if err != nil {
		return nil, err
	}
	d1, err := h.e4.Extract(p4, req, params, st, res)
	if err != nil {
		return nil, err
	}
	return h.fn(ctx, a1, b1, c1, d1)
}
