package fire

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/fire-lib/fire-http/resources"
	"github.com/fire-lib/fire-http/router"
	"github.com/fire-lib/fire-http/ws"
	"github.com/fire-lib/fire-http/wsstream"
)

var upgrader = websocket.Upgrader{
	// Origin checking belongs to the application (typically via a CORS raw
	// route registered alongside this one); fire-http itself stays
	// unopinionated here, the same way it stays unopinionated about auth.
	CheckOrigin: func(*http.Request) bool { return true },
}

// WebSocket registers a raw route at pattern that upgrades the connection
// and hands the caller a wsstream.Dispatcher to install action handlers
// onto via wsstream.HandleSender/wsstream.HandleReceiver, then runs the
// dispatch loop until the connection closes. wire is called once per
// connection, before Run starts; it only installs handler factories, it
// never spawns one itself -- the dispatcher spawns a factory's handler the
// moment the peer actually requests that action's stream.
func (b *Builder) WebSocket(pattern string, wire func(ctx context.Context, d *wsstream.Dispatcher)) *Builder {
	opts := b.opts
	handler := func(w http.ResponseWriter, r *http.Request, _ router.Params, _ *resources.Map) (bool, error) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return false, err
		}
		socket := ws.New(conn)
		dispatcher := wsstream.NewDispatcher(socket, opts.Logger).
			WithKeepalive(opts.Keepalive).
			WithChannelDepth(opts.ChannelDepth)

		// net/http cancels r.Context() as soon as this handler returns, so
		// the dispatcher's lifetime is detached from it.
		ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
		wire(ctx, dispatcher)

		go func() {
			defer cancel()
			if err := dispatcher.Run(ctx); err != nil {
				opts.Logger.Warn().Err(err).Msg("wsstream: dispatcher terminated")
			}
		}()
		return false, nil
	}
	return b.Raw(http.MethodGet, pattern, RawHandlerFunc(handler))
}
