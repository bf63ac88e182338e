// Package wsstream implements a JSON-over-WebSocket stream multiplexer:
// one Dispatcher per upgraded connection, holding two tables keyed by
// action -- Senders (peer pushes data in) and Receivers (this side pushes
// data out) -- and spawning a per-action handler task the moment the peer
// requests one.
//
// Every frame carries an action name plus one of six message kinds. A
// *Request frame asks the dispatcher to open a stream; the dispatcher
// installs a channel, acknowledges (or replies *Close if nothing is
// registered for that action), and spawns the handler. A *Close frame,
// from either side, tears the stream back down.
package wsstream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fire-lib/fire-http/internal/obslog"
	"github.com/fire-lib/fire-http/ws"
)

// StreamKind is Sender (peer pushes data into this side) or Receiver (this
// side pushes data to the peer), named from the perspective of whichever
// end first requested the stream.
type StreamKind int

const (
	StreamKindSender StreamKind = iota
	StreamKindReceiver
)

// MessageKind tags what a Frame carries. Each has an associated StreamKind.
type MessageKind string

const (
	SenderRequest   MessageKind = "SenderRequest"
	SenderMessage   MessageKind = "SenderMessage"
	SenderClose     MessageKind = "SenderClose"
	ReceiverRequest MessageKind = "ReceiverRequest"
	ReceiverMessage MessageKind = "ReceiverMessage"
	ReceiverClose   MessageKind = "ReceiverClose"
)

// Kind returns the StreamKind a MessageKind belongs to.
func (k MessageKind) Kind() StreamKind {
	switch k {
	case SenderRequest, SenderMessage, SenderClose:
		return StreamKindSender
	default:
		return StreamKindReceiver
	}
}

// Frame is the wire shape of every message exchanged once a connection has
// been multiplexed: action identifies the logical stream family, kind
// says what the frame means, data is an arbitrary JSON value (absent on
// request/close frames that carry no payload).
type Frame struct {
	Kind   MessageKind     `json:"kind"`
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// channelDepth is the default bounded capacity of every per-action channel:
// backpressure over unbounded growth.
const channelDepth = 10

// DefaultKeepalive is how often the dispatcher pings an idle connection.
const DefaultKeepalive = 30 * time.Second

// senderHandler is installed by HandleSender: given the stream's lifetime
// context and the channel the dispatcher forwards inbound SenderMessage
// frames onto, it runs until it returns or ctx is done.
type senderHandler func(ctx context.Context, frames <-chan Frame) error

// receiverHandler is installed by HandleReceiver: given the stream's
// lifetime context and the channel it should enqueue outbound
// ReceiverMessage frames onto, it runs until it returns or ctx is done.
type receiverHandler func(ctx context.Context, frames chan<- Frame, wake chan<- struct{}) error

// stream is one active (request-acked, handler-spawned) entry in the
// Senders or Receivers table.
type stream struct {
	frames chan Frame
	cancel context.CancelFunc
}

// streamDone is what a handler task posts to the shared close channel on
// completion: its identity and a trailer (the handler's serialized error,
// or nil).
type streamDone struct {
	action  string
	kind    StreamKind
	trailer json.RawMessage
}

// Dispatcher owns one upgraded connection's multiplexing: a reader
// goroutine feeding d.incoming, a keepalive timer, the round-robin
// outbound drain and the shared handler-completion channel, all driven
// from Run's single select loop so only one goroutine ever writes frames
// to the socket.
type Dispatcher struct {
	socket    *ws.Socket
	log       *obslog.Logger
	keepalive time.Duration
	depth     int

	mu               sync.Mutex
	senderHandlers   map[string]senderHandler
	receiverHandlers map[string]receiverHandler
	activeSenders    map[string]*stream
	activeReceivers  map[string]*stream
	order            []string // activeReceivers round-robin order
	cursor           int

	incoming  chan Frame
	wake      chan struct{}
	done      chan streamDone
	closeCh   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewDispatcher builds a Dispatcher over an already-upgraded socket. A nil
// logger is replaced with a no-op one.
func NewDispatcher(socket *ws.Socket, log *obslog.Logger) *Dispatcher {
	if log == nil {
		log = obslog.Nop()
	}
	return &Dispatcher{
		socket:           socket,
		log:              log,
		keepalive:        DefaultKeepalive,
		depth:            channelDepth,
		senderHandlers:   make(map[string]senderHandler),
		receiverHandlers: make(map[string]receiverHandler),
		activeSenders:    make(map[string]*stream),
		activeReceivers:  make(map[string]*stream),
		incoming:         make(chan Frame, channelDepth),
		wake:             make(chan struct{}, 1),
		done:             make(chan streamDone, 1),
		closeCh:          make(chan struct{}),
	}
}

// WithKeepalive overrides the default 30s keepalive ping interval.
func (d *Dispatcher) WithKeepalive(interval time.Duration) *Dispatcher {
	d.keepalive = interval
	return d
}

// WithChannelDepth overrides the default per-action channel capacity of 10,
// per fire.WithChannelDepth. Must be called before Run starts.
func (d *Dispatcher) WithChannelDepth(depth int) *Dispatcher {
	if depth > 0 {
		d.depth = depth
	}
	return d
}

// HandleSender registers the handler that is spawned when the peer sends a
// SenderRequest for action: it receives inbound SenderMessage payloads
// through a typed Receiver[In] until the stream is closed. Must be called
// before Run starts.
func HandleSender[In any](d *Dispatcher, action string, fn func(ctx context.Context, in Receiver[In]) error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.senderHandlers[action] = func(ctx context.Context, frames <-chan Frame) error {
		return fn(ctx, Receiver[In]{ch: frames})
	}
}

// HandleReceiver registers the handler that is spawned when the peer sends
// a ReceiverRequest for action: it pushes outbound data through a typed
// Sender[Out], delivered to the peer as ReceiverMessage frames, until it
// returns. Must be called before Run starts.
func HandleReceiver[Out any](d *Dispatcher, action string, fn func(ctx context.Context, out Sender[Out]) error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.receiverHandlers[action] = func(ctx context.Context, frames chan<- Frame, wake chan<- struct{}) error {
		return fn(ctx, Sender[Out]{action: action, ch: frames, wake: wake})
	}
}

// Run drives the dispatch loop until ctx is canceled, the peer disconnects,
// or Close is called. It returns the terminating error, nil on a clean
// close.
func (d *Dispatcher) Run(ctx context.Context) error {
	readErrCh := make(chan error, 1)
	go d.readLoop(readErrCh)

	ticker := time.NewTicker(d.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.Close()
			return ctx.Err()
		case <-d.closeCh:
			return nil
		case err := <-readErrCh:
			d.Close()
			return err
		case f := <-d.incoming:
			d.routeInbound(ctx, f)
		case ev := <-d.done:
			d.finishStream(ev)
		case <-ticker.C:
			if err := d.socket.Ping(); err != nil {
				d.Close()
				return err
			}
		case <-d.wake:
			d.drainOne()
		}
	}
}

// readLoop is the one goroutine allowed to call socket.Receive, per
// gorilla/websocket's single-reader contract.
func (d *Dispatcher) readLoop(errCh chan<- error) {
	for {
		data, err := d.socket.Receive()
		if err != nil {
			errCh <- err
			return
		}
		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			d.log.Warn().Err(err).Msg("wsstream: dropping malformed frame")
			continue
		}
		select {
		case d.incoming <- f:
		case <-d.closeCh:
			return
		}
	}
}

// routeInbound applies the state-transition table: *Request frames open a
// stream (acking or replying *Close), *Message frames forward into an
// already-open Sender stream, *Close frames tear one down.
func (d *Dispatcher) routeInbound(ctx context.Context, f Frame) {
	switch f.Kind {
	case SenderRequest:
		d.openStream(ctx, f.Action, StreamKindSender)
	case ReceiverRequest:
		d.openStream(ctx, f.Action, StreamKindReceiver)
	case SenderMessage:
		d.mu.Lock()
		s, ok := d.activeSenders[f.Action]
		d.mu.Unlock()
		if !ok {
			d.log.Warn().Str("action", f.Action).Msg("wsstream: SenderMessage for unregistered action, dropping")
			return
		}
		select {
		case s.frames <- f:
		default:
			d.log.Warn().Str("action", f.Action).Msg("wsstream: sender channel full, dropping frame")
		}
	case ReceiverMessage:
		d.log.Warn().Str("action", f.Action).Msg("wsstream: protocol violation: peer sent ReceiverMessage")
	case SenderClose:
		d.removeStream(&d.activeSenders, f.Action, nil)
	case ReceiverClose:
		d.removeStream(&d.activeReceivers, f.Action, &d.order)
	}
}

// openStream implements the *Request row of the state table: a duplicate
// request for an action already open is dropped silently; a request with
// no registered handler gets an immediate matching *Close; otherwise a
// channel is installed, the request is acked, and the handler is spawned.
func (d *Dispatcher) openStream(parent context.Context, action string, kind StreamKind) {
	switch kind {
	case StreamKindSender:
		d.mu.Lock()
		if _, exists := d.activeSenders[action]; exists {
			d.mu.Unlock()
			return
		}
		handler, ok := d.senderHandlers[action]
		if !ok {
			d.mu.Unlock()
			d.writeFrame(Frame{Kind: SenderClose, Action: action})
			return
		}
		ctx, cancel := context.WithCancel(parent)
		frames := make(chan Frame, d.depth)
		d.activeSenders[action] = &stream{frames: frames, cancel: cancel}
		d.mu.Unlock()

		d.writeFrame(Frame{Kind: SenderRequest, Action: action})
		d.spawn(action, StreamKindSender, func() error { return handler(ctx, frames) })

	case StreamKindReceiver:
		d.mu.Lock()
		if _, exists := d.activeReceivers[action]; exists {
			d.mu.Unlock()
			return
		}
		handler, ok := d.receiverHandlers[action]
		if !ok {
			d.mu.Unlock()
			d.writeFrame(Frame{Kind: ReceiverClose, Action: action})
			return
		}
		ctx, cancel := context.WithCancel(parent)
		frames := make(chan Frame, d.depth)
		d.activeReceivers[action] = &stream{frames: frames, cancel: cancel}
		d.order = append(d.order, action)
		d.mu.Unlock()

		d.writeFrame(Frame{Kind: ReceiverRequest, Action: action})
		d.spawn(action, StreamKindReceiver, func() error { return handler(ctx, frames, d.wake) })
	}
}

// removeStream drops a peer-initiated *Close target from the given table,
// canceling the handler's context so a blocked Recv/Send returns. order is
// non-nil only for the Receivers table, which also needs its round-robin
// slot reclaimed.
func (d *Dispatcher) removeStream(table *map[string]*stream, action string, order *[]string) {
	d.mu.Lock()
	s, ok := (*table)[action]
	if ok {
		delete(*table, action)
		if order != nil {
			*order = removeString(*order, action)
			if d.cursor >= len(*order) {
				d.cursor = 0
			}
		}
	}
	d.mu.Unlock()
	if ok {
		s.cancel()
	}
}

// spawn runs a handler in a panic-contained goroutine and posts its
// completion (with a serialized trailer) to d.done.
func (d *Dispatcher) spawn(action string, kind StreamKind, run func() error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		trailer := d.runContained(action, run)
		select {
		case d.done <- streamDone{action: action, kind: kind, trailer: trailer}:
		case <-d.closeCh:
		}
	}()
}

func (d *Dispatcher) runContained(action string, run func() error) (trailer json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Str("action", action).Msg("wsstream: handler panicked, stream terminated")
			trailer = nil
		}
	}()
	return encodeTrailer(run())
}

func encodeTrailer(err error) json.RawMessage {
	if err == nil {
		return nil
	}
	data, merr := json.Marshal(err.Error())
	if merr != nil {
		return nil
	}
	return data
}

// finishStream handles a handler-completion event: it removes the stream's
// table entry (if the peer hasn't already done so with an explicit *Close)
// and, only then, sends the matching *Close frame carrying the trailer. For
// a Receiver stream, frames the handler queued but the round-robin drain
// has not yet sent are written before that *Close.
func (d *Dispatcher) finishStream(ev streamDone) {
	switch ev.kind {
	case StreamKindSender:
		d.mu.Lock()
		_, ok := d.activeSenders[ev.action]
		delete(d.activeSenders, ev.action)
		d.mu.Unlock()
		if ok {
			d.writeFrame(Frame{Kind: SenderClose, Action: ev.action, Data: ev.trailer})
		}
	case StreamKindReceiver:
		d.mu.Lock()
		s, ok := d.activeReceivers[ev.action]
		delete(d.activeReceivers, ev.action)
		d.order = removeString(d.order, ev.action)
		if d.cursor >= len(d.order) {
			d.cursor = 0
		}
		d.mu.Unlock()
		if ok {
			// The handler has returned, so nothing more arrives on s.frames:
			// flush what it queued before the close frame.
			for pending := true; pending; {
				select {
				case f := <-s.frames:
					d.writeFrame(f)
				default:
					pending = false
				}
			}
			d.writeFrame(Frame{Kind: ReceiverClose, Action: ev.action, Data: ev.trailer})
		}
	}
}

func removeString(ss []string, s string) []string {
	out := ss[:0]
	for _, v := range ss {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

// drainOne advances the round-robin cursor by exactly one ready receiver
// stream per call, draining a single frame from it, so no action can
// starve its neighbors by staying perpetually full. If more frames are
// likely pending it re-arms wake itself instead of waiting for the next
// producer signal.
func (d *Dispatcher) drainOne() {
	d.mu.Lock()
	order := append([]string(nil), d.order...)
	start := d.cursor
	d.mu.Unlock()

	n := len(order)
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		action := order[idx]
		d.mu.Lock()
		s, ok := d.activeReceivers[action]
		d.mu.Unlock()
		if !ok {
			continue
		}

		select {
		case f := <-s.frames:
			d.writeFrame(f)
			d.mu.Lock()
			d.cursor = (idx + 1) % n
			d.mu.Unlock()
			d.rewake()
			return
		default:
		}
	}
}

func (d *Dispatcher) rewake() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) writeFrame(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		d.log.Error().Err(err).Msg("wsstream: failed to marshal outbound frame")
		return
	}
	if err := d.socket.Send(data); err != nil {
		d.log.Warn().Err(err).Msg("wsstream: failed to write outbound frame")
	}
}

// Close tears down the underlying socket and stops Run, idempotently.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.closeCh)
		_ = d.socket.Close()
	})
}

// Wait blocks until every handler goroutine spawned so far returns.
func (d *Dispatcher) Wait() { d.wg.Wait() }
