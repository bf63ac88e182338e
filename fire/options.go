// Package fire is the root package: the builder, pipeline and server that
// tie the router, extractor, body, header, ws and wsstream packages
// together.
//
// Construction is staged the way net/http.Server is staged (fields set,
// then ListenAndServe), but configured through functional options rather
// than exported struct fields.
package fire

import (
	"log"
	"time"

	"github.com/fire-lib/fire-http/internal/obslog"
)

// Options holds the server's tunable defaults.
type Options struct {
	BodyLimit      int64
	RequestTimeout time.Duration
	Keepalive      time.Duration
	ChannelDepth   int
	Logger         *obslog.Logger
	StdErrorLog    *log.Logger
}

func defaultOptions() Options {
	return Options{
		BodyLimit:      4096,
		RequestTimeout: 60 * time.Second,
		Keepalive:      30 * time.Second,
		ChannelDepth:   10,
		Logger:         obslog.New(),
	}
}

// Option configures a Builder at construction time.
type Option func(*Options)

// WithBodyLimit overrides the default 4096-byte request body size limit.
func WithBodyLimit(n int64) Option {
	return func(o *Options) { o.BodyLimit = n }
}

// WithRequestTimeout overrides the default 60s request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *Options) { o.RequestTimeout = d }
}

// WithKeepalive overrides the default 30s WebSocket keepalive interval.
func WithKeepalive(d time.Duration) Option {
	return func(o *Options) { o.Keepalive = d }
}

// WithChannelDepth overrides the default inter-task channel depth of 10.
func WithChannelDepth(n int) Option {
	return func(o *Options) { o.ChannelDepth = n }
}

// WithLogger replaces the default console obslog.Logger.
func WithLogger(l *obslog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithStdErrorLog sets net/http.Server's own ErrorLog, the one raw
// *log.Logger knob the underlying engine itself needs independent of
// anything fire-http logs through obslog.
func WithStdErrorLog(l *log.Logger) Option {
	return func(o *Options) { o.StdErrorLog = l }
}
