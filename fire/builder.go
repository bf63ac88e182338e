package fire

import (
	"fmt"
	"net/http"

	"github.com/fire-lib/fire-http/resources"
	"github.com/fire-lib/fire-http/router"
	"github.com/fire-lib/fire-http/state"
)

type routeEntry struct {
	path    router.RoutePath
	handler Handler
}

type rawEntry struct {
	path    router.RoutePath
	handler RawHandler
}

// Builder assembles routes, raw routes, catchers and resources before Build
// freezes everything into a Fire, mirroring the staged
// construct-then-ListenAndServe shape of net/http.Server.
type Builder struct {
	opts      Options
	resources *resources.Map
	routes    []routeEntry
	raws      []rawEntry
	catchers  []Catcher
}

// New returns an empty Builder seeded with the default configuration,
// overridden by opts.
func New(opts ...Option) *Builder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Builder{opts: o, resources: resources.New()}
}

// Resource installs a process-wide value of type T, retrievable by any
// handler through extractor.ResourceExtractor[T]. A free function rather
// than a method because Go methods cannot introduce a new type parameter.
func Resource[T any](b *Builder, value T) *Builder {
	resources.Set(b.resources, value)
	return b
}

// Route registers a normal route, validated against the extractor tuple at
// Build time. method == "" registers the wildcard-method slot, matched
// when no method-specific route exists for the path.
func (b *Builder) Route(method, pattern string, h Handler) *Builder {
	rp, err := router.NewRoutePath(method, pattern)
	if err != nil {
		panic(fmt.Sprintf("fire: invalid route pattern %q: %v", pattern, err))
	}
	b.routes = append(b.routes, routeEntry{path: rp, handler: h})
	return b
}

func (b *Builder) Get(pattern string, h Handler) *Builder {
	return b.Route(http.MethodGet, pattern, h)
}

func (b *Builder) Post(pattern string, h Handler) *Builder {
	return b.Route(http.MethodPost, pattern, h)
}

func (b *Builder) Put(pattern string, h Handler) *Builder {
	return b.Route(http.MethodPut, pattern, h)
}

func (b *Builder) Patch(pattern string, h Handler) *Builder {
	return b.Route(http.MethodPatch, pattern, h)
}

func (b *Builder) Delete(pattern string, h Handler) *Builder {
	return b.Route(http.MethodDelete, pattern, h)
}

// Raw registers a raw route, the WebSocket-upgrade and CORS-preflight
// extension point. Raw routes bypass the extractor machinery entirely;
// they see the still-upgradable http.ResponseWriter and http.Request
// directly.
func (b *Builder) Raw(method, pattern string, h RawHandler) *Builder {
	rp, err := router.NewRoutePath(method, pattern)
	if err != nil {
		panic(fmt.Sprintf("fire: invalid raw route pattern %q: %v", pattern, err))
	}
	b.raws = append(b.raws, rawEntry{path: rp, handler: h})
	return b
}

// Catch appends a catcher, run in insertion order after routing.
func (b *Builder) Catch(c Catcher) *Builder {
	b.catchers = append(b.catchers, c)
	return b
}

// Build validates every registered route's extractor tuple against the
// resources installed so far, freezes Resources, builds both radix trees,
// and returns the immutable Fire ready for Ignite.
func (b *Builder) Build() (*Fire, error) {
	normal := router.New[Handler]()
	raw := router.New[RawHandler]()

	for _, e := range b.routes {
		plan := state.NewPlan()
		if err := e.handler.Validate(e.path.ParamsNames(), plan, b.resources); err != nil {
			return nil, fmt.Errorf("fire: route %s %s: %w", e.path.Method, e.path.Pattern, err)
		}
		if err := normal.Insert(e.path, e.handler); err != nil {
			return nil, fmt.Errorf("fire: route %s %s: %w", e.path.Method, e.path.Pattern, err)
		}
	}
	for _, e := range b.raws {
		if err := raw.Insert(e.path, e.handler); err != nil {
			return nil, fmt.Errorf("fire: raw route %s %s: %w", e.path.Method, e.path.Pattern, err)
		}
	}
	normal.Build()
	raw.Build()
	b.resources.Freeze()

	return &Fire{
		opts:      b.opts,
		normal:    normal,
		raw:       raw,
		catchers:  b.catchers,
		resources: b.resources,
	}, nil
}
