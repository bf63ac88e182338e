// Pipeline and server wiring: bytes in from net/http, a Request built, raw
// routes then normal routes consulted, a Response produced and run
// through catchers, bytes out.
//
// Fire wraps net/http.Server directly (a ListenAndServe-equivalent entry
// point) rather than reimplementing HTTP/1.1 connection handling.
package fire

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fire-lib/fire-http/body"
	"github.com/fire-lib/fire-http/ferr"
	"github.com/fire-lib/fire-http/header"
	"github.com/fire-lib/fire-http/message"
	"github.com/fire-lib/fire-http/resources"
	"github.com/fire-lib/fire-http/router"
	"github.com/google/uuid"
)

// Fire is the immutable, built server: two radix trees (raw, normal),
// catchers in insertion order, frozen Resources, and the options table.
type Fire struct {
	opts      Options
	normal    *router.Router[Handler]
	raw       *router.Router[RawHandler]
	catchers  []Catcher
	resources *resources.Map
}

// ServeHTTP implements http.Handler, so a Fire can be handed straight to
// net/http.Server or net/http/httptest.
func (f *Fire) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	connID := uuid.NewString()
	log := f.opts.Logger.With().Str("conn_id", connID).Str("method", r.Method).Str("path", r.URL.Path).Logger()

	if rawHandler, params, ok := f.raw.Lookup(r.Method, r.URL.Path); ok {
		declined, err := rawHandler.ServeRaw(w, r, params, f.resources)
		if !declined {
			if err != nil {
				ferrErr := ferr.Internal(err)
				log.Error().Err(err).Int("status", ferrErr.Kind.Status()).Msg("raw route failed")
				f.writeStatusOnly(w, ferrErr.Kind.Status())
			}
			return
		}
	}

	reqHeader := &header.RequestHeader{
		PeerAddr: r.RemoteAddr,
		Method:   r.Method,
		URI:      r.URL,
		Header:   header.Map(r.Header),
	}
	reqHeader.SynthesizeURI(r.TLS != nil)

	ctx, cancel := context.WithTimeout(r.Context(), f.opts.RequestTimeout)
	defer cancel()

	b := body.FromIncoming(r.Body, body.Constraints{MaxBytes: f.opts.BodyLimit, Timeout: f.opts.RequestTimeout})
	req := message.NewRequest(reqHeader, b)

	var resp *message.Response
	handler, params, ok := f.normal.Lookup(r.Method, r.URL.Path)
	if !ok {
		resp = message.StatusOnly(http.StatusNotFound)
	} else {
		out, err := handler.Serve(ctx, req, params, f.resources)
		if err != nil {
			ferrErr := ferr.Internal(err)
			if !ferrErr.Kind.IsClient() {
				log.Error().Err(err).Msg("handler failed")
			}
			resp = message.StatusOnly(ferrErr.Kind.Status())
		} else {
			resp = out
		}
	}

	for _, c := range f.catchers {
		out, err := c.Catch(req, resp, f.resources)
		if err != nil {
			ferrErr := ferr.Internal(err)
			log.Error().Err(err).Msg("catcher failed")
			resp = message.StatusOnly(ferrErr.Kind.Status())
			continue
		}
		resp = out
	}

	log.Info().Int("status", resp.Header.Status).Msg("request handled")
	f.writeResponse(w, resp)
}

func (f *Fire) writeStatusOnly(w http.ResponseWriter, code int) {
	f.writeResponse(w, message.StatusOnly(code))
}

func (f *Fire) writeResponse(w http.ResponseWriter, resp *message.Response) {
	resp.Header.Materialize()
	for k, vv := range resp.Header.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}

	rc, length := (*resp.Body()).IntoOutgoing()
	defer rc.Close()
	if length >= 0 {
		w.Header().Set("Content-Length", itoa(length))
	}
	w.WriteHeader(resp.Header.Status)
	if resp.Header.Status == http.StatusNotModified || resp.Header.Status < 200 {
		return
	}
	copyBody(w, rc)
}

// Ignite starts the HTTP server on addr and blocks until ctx is canceled, at
// which point it drains in-flight connections via net/http.Server.Shutdown
// and returns its error (nil on a clean shutdown). If the listener fails
// first, Ignite returns that error without waiting for ctx.
func (f *Fire) Ignite(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      f,
		ReadTimeout:  f.opts.RequestTimeout,
		WriteTimeout: f.opts.RequestTimeout,
		ErrorLog:     f.opts.StdErrorLog,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
