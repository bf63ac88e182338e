package extractor

import (
	"fmt"

	"github.com/fire-lib/fire-http/ferr"
	"github.com/fire-lib/fire-http/header"
	"github.com/fire-lib/fire-http/message"
	"github.com/fire-lib/fire-http/resources"
	"github.com/fire-lib/fire-http/router"
	"github.com/fire-lib/fire-http/state"
)

// RequestExtractor is the "&Request" builtin: it takes the owned request
// exactly once.
type RequestExtractor struct{}

func (RequestExtractor) Validate([]string, *state.Plan, *resources.Map) error { return nil }

func (RequestExtractor) Prepare(*header.RequestHeader, router.Params, *state.Map, *resources.Map) (Prepared, error) {
	return nil, nil
}

func (RequestExtractor) Extract(_ Prepared, req *message.Request, _ router.Params, _ *state.Map, _ *resources.Map) (*message.Request, error) {
	taken, err := req.TakeOnce()
	if err != nil {
		return nil, ferr.Wrap(ferr.KindInternal, err)
	}
	return taken, nil
}

// ResourceExtractor resolves a shared value of type T from Resources,
// validated to exist at server-build time.
type ResourceExtractor[T any] struct{}

func (ResourceExtractor[T]) Validate(_ []string, _ *state.Plan, res *resources.Map) error {
	if !resources.Has[T](res) {
		var zero T
		return fmt.Errorf("extractor: resource of type %T is not registered", zero)
	}
	return nil
}

func (ResourceExtractor[T]) Prepare(*header.RequestHeader, router.Params, *state.Map, *resources.Map) (Prepared, error) {
	return nil, nil
}

func (ResourceExtractor[T]) Extract(_ Prepared, _ *message.Request, _ router.Params, _ *state.Map, res *resources.Map) (T, error) {
	v, ok := resources.Get[T](res)
	if !ok {
		var zero T
		return zero, ferr.New(ferr.KindInternal, "resource missing at request time")
	}
	return v, nil
}

// PathParamExtractor resolves a single named path parameter, validated to
// be declared on the route pattern.
type PathParamExtractor struct {
	Name string
}

func (p PathParamExtractor) Validate(names []string, _ *state.Plan, _ *resources.Map) error {
	if !contains(names, p.Name) {
		return fmt.Errorf("extractor: path parameter %q is not declared on this route", p.Name)
	}
	return nil
}

func (PathParamExtractor) Prepare(*header.RequestHeader, router.Params, *state.Map, *resources.Map) (Prepared, error) {
	return nil, nil
}

func (p PathParamExtractor) Extract(_ Prepared, _ *message.Request, params router.Params, _ *state.Map, _ *resources.Map) (string, error) {
	v, ok := params[p.Name]
	if !ok {
		return "", ferr.New(ferr.KindBadRequest, fmt.Sprintf("missing path parameter %q", p.Name))
	}
	return v, nil
}

// HeaderExtractor hands the handler the parsed RequestHeader without taking
// ownership of the Request -- reading the header never competes with the
// single-assignment body ownership cell.
type HeaderExtractor struct{}

func (HeaderExtractor) Validate([]string, *state.Plan, *resources.Map) error { return nil }

func (HeaderExtractor) Prepare(*header.RequestHeader, router.Params, *state.Map, *resources.Map) (Prepared, error) {
	return nil, nil
}

func (HeaderExtractor) Extract(_ Prepared, req *message.Request, _ router.Params, _ *state.Map, _ *resources.Map) (*header.RequestHeader, error) {
	return req.Header, nil
}

// ParamsExtractor hands the handler the full captured PathParams map.
type ParamsExtractor struct{}

func (ParamsExtractor) Validate([]string, *state.Plan, *resources.Map) error { return nil }

func (ParamsExtractor) Prepare(*header.RequestHeader, router.Params, *state.Map, *resources.Map) (Prepared, error) {
	return nil, nil
}

func (ParamsExtractor) Extract(_ Prepared, _ *message.Request, params router.Params, _ *state.Map, _ *resources.Map) (router.Params, error) {
	return params, nil
}

// ResourcesExtractor hands the handler the whole Resources map.
type ResourcesExtractor struct{}

func (ResourcesExtractor) Validate([]string, *state.Plan, *resources.Map) error { return nil }

func (ResourcesExtractor) Prepare(*header.RequestHeader, router.Params, *state.Map, *resources.Map) (Prepared, error) {
	return nil, nil
}

func (ResourcesExtractor) Extract(_ Prepared, _ *message.Request, _ router.Params, _ *state.Map, res *resources.Map) (*resources.Map, error) {
	return res, nil
}

// StateExtractor resolves a value of type T that an earlier extractor's
// Prepare step populated into the per-request state map, validated against
// the Plan at build time.
type StateExtractor[T any] struct{}

func (StateExtractor[T]) Validate(_ []string, plan *state.Plan, _ *resources.Map) error {
	if !state.WillExist[T](plan) {
		var zero T
		return fmt.Errorf("extractor: no earlier extractor declares state of type %T", zero)
	}
	return nil
}

func (StateExtractor[T]) Prepare(*header.RequestHeader, router.Params, *state.Map, *resources.Map) (Prepared, error) {
	return nil, nil
}

func (StateExtractor[T]) Extract(_ Prepared, _ *message.Request, _ router.Params, st *state.Map, _ *resources.Map) (T, error) {
	v, ok := state.Get[T](st)
	if !ok {
		var zero T
		return zero, ferr.New(ferr.KindInternal, "declared state slot missing at request time")
	}
	return v, nil
}
