package wsstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/fire-lib/fire-http/ws"
	"github.com/fire-lib/fire-http/wsstream"
)

// dialPair returns a raw gorilla client connection and the corresponding
// server-side *ws.Socket, so tests can drive the wire protocol frame by
// frame exactly as a real peer would, independent of wsstream's own types.
func dialPair(t *testing.T) (client *gorilla.Conn, server *ws.Socket, closeSrv func()) {
	t.Helper()
	upgrader := gorilla.Upgrader{}
	serverReady := make(chan *ws.Socket, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverReady <- ws.New(conn)
	}))

	url := "ws" + srv.URL[len("http"):]
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	return conn, <-serverReady, srv.Close
}

func sendFrame(t *testing.T, conn *gorilla.Conn, f wsstream.Frame) {
	t.Helper()
	data, err := json.Marshal(f)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(gorilla.TextMessage, data))
}

func recvFrame(t *testing.T, conn *gorilla.Conn) wsstream.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(1500 * time.Millisecond))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var f wsstream.Frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

// TestDispatcherReceiverRequestLifecycle exercises the scenario a ping
// receiver action walks through: the client opens a Receiver stream and
// waits, the dispatcher acks, spawns the handler, relays every message it
// sends, then closes the stream once the handler returns.
func TestDispatcherReceiverRequestLifecycle(t *testing.T) {
	client, server, closeSrv := dialPair(t)
	defer closeSrv()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	d := wsstream.NewDispatcher(server, nil).WithKeepalive(time.Hour)
	wsstream.HandleReceiver[map[string]string](d, "ping", func(ctx context.Context, out wsstream.Sender[map[string]string]) error {
		for i := 0; i < 2; i++ {
			if err := out.Send(ctx, map[string]string{"name": "ping"}); err != nil {
				return err
			}
		}
		return nil
	})
	go d.Run(ctx)
	defer d.Close()

	sendFrame(t, client, wsstream.Frame{Kind: wsstream.ReceiverRequest, Action: "ping"})

	ack := recvFrame(t, client)
	require.Equal(t, wsstream.ReceiverRequest, ack.Kind)
	require.Equal(t, "ping", ack.Action)

	for i := 0; i < 2; i++ {
		msg := recvFrame(t, client)
		require.Equal(t, wsstream.ReceiverMessage, msg.Kind)
		require.Equal(t, "ping", msg.Action)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(msg.Data, &payload))
		require.Equal(t, "ping", payload["name"])
	}

	closeF := recvFrame(t, client)
	require.Equal(t, wsstream.ReceiverClose, closeF.Kind)
	require.Equal(t, "ping", closeF.Action)
}

// TestDispatcherSenderRequestLifecycle exercises the push direction: the
// client opens a Sender stream and pushes two messages; the handler reads
// both and returns on its own, and the dispatcher replies with the matching
// close frame carrying a null trailer.
func TestDispatcherSenderRequestLifecycle(t *testing.T) {
	client, server, closeSrv := dialPair(t)
	defer closeSrv()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got := make(chan string, 2)
	d := wsstream.NewDispatcher(server, nil).WithKeepalive(time.Hour)
	wsstream.HandleSender[string](d, "upload", func(ctx context.Context, in wsstream.Receiver[string]) error {
		for i := 0; i < 2; i++ {
			v, ok, err := in.Recv(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			got <- v
		}
		return nil
	})
	go d.Run(ctx)
	defer d.Close()

	sendFrame(t, client, wsstream.Frame{Kind: wsstream.SenderRequest, Action: "upload"})
	ack := recvFrame(t, client)
	require.Equal(t, wsstream.SenderRequest, ack.Kind)

	sendFrame(t, client, wsstream.Frame{Kind: wsstream.SenderMessage, Action: "upload", Data: rawJSON(t, "one")})
	sendFrame(t, client, wsstream.Frame{Kind: wsstream.SenderMessage, Action: "upload", Data: rawJSON(t, "two")})

	require.Equal(t, "one", <-got)
	require.Equal(t, "two", <-got)

	closeF := recvFrame(t, client)
	require.Equal(t, wsstream.SenderClose, closeF.Kind)
	require.Equal(t, "upload", closeF.Action)
	require.Nil(t, closeF.Data)
}

// TestDispatcherUnknownActionRepliesWithClose covers the no-handler-
// registered branch of the *Request row: the dispatcher must reply with
// the matching *Close immediately rather than silently dropping the frame.
func TestDispatcherUnknownActionRepliesWithClose(t *testing.T) {
	client, server, closeSrv := dialPair(t)
	defer closeSrv()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	d := wsstream.NewDispatcher(server, nil).WithKeepalive(time.Hour)
	go d.Run(ctx)
	defer d.Close()

	sendFrame(t, client, wsstream.Frame{Kind: wsstream.SenderRequest, Action: "nope"})
	f := recvFrame(t, client)
	require.Equal(t, wsstream.SenderClose, f.Kind)
	require.Equal(t, "nope", f.Action)

	sendFrame(t, client, wsstream.Frame{Kind: wsstream.ReceiverRequest, Action: "nope"})
	f2 := recvFrame(t, client)
	require.Equal(t, wsstream.ReceiverClose, f2.Kind)
	require.Equal(t, "nope", f2.Action)
}

// TestDispatcherDuplicateRequestDropped asserts a second *Request for an
// action already open is ignored: only one ack and one handler invocation
// happen, not two.
func TestDispatcherDuplicateRequestDropped(t *testing.T) {
	client, server, closeSrv := dialPair(t)
	defer closeSrv()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	spawns := make(chan struct{}, 4)
	d := wsstream.NewDispatcher(server, nil).WithKeepalive(time.Hour)
	wsstream.HandleReceiver[string](d, "once", func(ctx context.Context, out wsstream.Sender[string]) error {
		spawns <- struct{}{}
		<-ctx.Done()
		return nil
	})
	go d.Run(ctx)
	defer d.Close()

	sendFrame(t, client, wsstream.Frame{Kind: wsstream.ReceiverRequest, Action: "once"})
	ack := recvFrame(t, client)
	require.Equal(t, wsstream.ReceiverRequest, ack.Kind)

	sendFrame(t, client, wsstream.Frame{Kind: wsstream.ReceiverRequest, Action: "once"})

	select {
	case <-spawns:
	case <-time.After(time.Second):
		t.Fatal("expected the handler to spawn once")
	}
	select {
	case <-spawns:
		t.Fatal("duplicate request must not spawn a second handler")
	case <-time.After(200 * time.Millisecond):
	}
}

// TestDispatcherFansOutMultipleActionsFairly covers the round-robin
// outbound drain: two Receiver streams producing at the same rate must
// not let one starve the other.
func TestDispatcherFansOutMultipleActionsFairly(t *testing.T) {
	client, server, closeSrv := dialPair(t)
	defer closeSrv()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	d := wsstream.NewDispatcher(server, nil).WithKeepalive(time.Hour)
	for _, action := range []string{"a", "b"} {
		action := action
		wsstream.HandleReceiver[string](d, action, func(ctx context.Context, out wsstream.Sender[string]) error {
			for i := 0; i < 3; i++ {
				if err := out.Send(ctx, action); err != nil {
					return err
				}
			}
			return nil
		})
	}
	go d.Run(ctx)
	defer d.Close()

	sendFrame(t, client, wsstream.Frame{Kind: wsstream.ReceiverRequest, Action: "a"})
	sendFrame(t, client, wsstream.Frame{Kind: wsstream.ReceiverRequest, Action: "b"})
	require.Equal(t, wsstream.ReceiverRequest, recvFrame(t, client).Kind)
	require.Equal(t, wsstream.ReceiverRequest, recvFrame(t, client).Kind)

	seen := map[string]int{}
	closed := map[string]bool{}
	for len(closed) < 2 {
		f := recvFrame(t, client)
		switch f.Kind {
		case wsstream.ReceiverMessage:
			seen[f.Action]++
		case wsstream.ReceiverClose:
			closed[f.Action] = true
		}
	}
	require.Equal(t, 3, seen["a"])
	require.Equal(t, 3, seen["b"])
}

func TestMessageKindConstantsAreDistinct(t *testing.T) {
	all := []wsstream.MessageKind{
		wsstream.SenderRequest, wsstream.SenderMessage, wsstream.SenderClose,
		wsstream.ReceiverRequest, wsstream.ReceiverMessage, wsstream.ReceiverClose,
	}
	seen := map[wsstream.MessageKind]bool{}
	for _, k := range all {
		require.False(t, seen[k], "duplicate MessageKind %v", k)
		seen[k] = true
	}
	require.Equal(t, wsstream.StreamKindSender, wsstream.SenderRequest.Kind())
	require.Equal(t, wsstream.StreamKindSender, wsstream.SenderMessage.Kind())
	require.Equal(t, wsstream.StreamKindSender, wsstream.SenderClose.Kind())
	require.Equal(t, wsstream.StreamKindReceiver, wsstream.ReceiverRequest.Kind())
	require.Equal(t, wsstream.StreamKindReceiver, wsstream.ReceiverMessage.Kind())
	require.Equal(t, wsstream.StreamKindReceiver, wsstream.ReceiverClose.Kind())
}
