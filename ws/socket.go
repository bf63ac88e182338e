// Package ws wraps a single upgraded connection in a thin Send/Receive
// surface, translating the framework's JSON message model onto
// gorilla/websocket's frame-oriented Conn. Ping/pong is a background
// concern handled internally rather than something the caller juggles.
package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultPongWait is the read deadline New arms and every pong refreshes;
// wsstream.Dispatcher's 30s keepalive ping keeps it from expiring on an
// idle connection. DefaultPingPeriod is nine tenths of it.
const (
	DefaultPongWait   = 60 * time.Second
	DefaultPingPeriod = (DefaultPongWait * 9) / 10
)

// ErrClosed is returned by Receive/Send once the socket has seen a close
// frame or had Close called on it.
var ErrClosed = errors.New("ws: socket closed")

// Socket is a single upgraded connection. Receive must only ever be called
// from one goroutine at a time (gorilla/websocket's Conn.ReadMessage
// contract); Send is internally serialized so multiple writer goroutines
// (wsstream's per-action handlers) may share one Socket safely.
type Socket struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	closeOnce sync.Once
	closed    chan struct{}
}

// New wraps an already-upgraded *websocket.Conn and arms its pong handler.
// Ping/pong is handled internally and never surfaced to the caller as a
// distinct message kind.
func New(conn *websocket.Conn) *Socket {
	s := &Socket{conn: conn, closed: make(chan struct{})}
	conn.SetReadDeadline(time.Now().Add(DefaultPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(DefaultPongWait))
		return nil
	})
	return s
}

// Receive blocks for the next text or binary frame's raw payload. A close
// frame with a normal-closure or going-away code is reported as ErrClosed;
// any other read error is returned as is. Either way the socket is marked
// closed.
func (s *Socket) Receive() ([]byte, error) {
	select {
	case <-s.closed:
		return nil, ErrClosed
	default:
	}
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		s.markClosed()
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, ErrClosed
		}
		return nil, err
	}
	return data, nil
}

// Deserialize receives one frame and JSON-decodes it into T.
func Deserialize[T any](s *Socket) (T, error) {
	var zero T
	data, err := s.Receive()
	if err != nil {
		return zero, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, err
	}
	return v, nil
}

// Send writes a text frame, safe for concurrent callers.
func (s *Socket) Send(data []byte) error {
	select {
	case <-s.closed:
		return ErrClosed
	default:
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Serialize JSON-encodes v and sends it as one text frame.
func Serialize[T any](s *Socket, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Send(data)
}

// Ping writes a ping control frame, used by wsstream's keepalive timer.
func (s *Socket) Ping() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

// Close sends a close frame and tears down the connection. Safe to call
// more than once and from any goroutine.
func (s *Socket) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(5*time.Second))
		s.writeMu.Unlock()
		err = s.conn.Close()
		close(s.closed)
	})
	return err
}

func (s *Socket) markClosed() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// Done returns a channel closed once the socket has stopped accepting
// traffic, for select-loop callers like wsstream.Dispatcher.
func (s *Socket) Done() <-chan struct{} { return s.closed }
