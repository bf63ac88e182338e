package wsstream

import (
	"context"
	"encoding/json"
)

// Receiver is the typed read side of a Sender-direction stream: the
// dispatcher forwards inbound SenderMessage frames onto it until the
// stream closes, whether the peer sent SenderClose or ctx was canceled.
// Its zero value is not usable; a Receiver is only obtained through a
// HandleSender callback.
type Receiver[T any] struct {
	ch <-chan Frame
}

// Recv waits for the next value. ok is false once the stream has closed;
// a non-nil err additionally means the last payload failed to decode.
func (r Receiver[T]) Recv(ctx context.Context) (v T, ok bool, err error) {
	select {
	case <-ctx.Done():
		return v, false, nil
	case f, open := <-r.ch:
		if !open {
			return v, false, nil
		}
		if err := json.Unmarshal(f.Data, &v); err != nil {
			return v, true, err
		}
		return v, true, nil
	}
}

// Sender is the typed write side of a Receiver-direction stream: values
// passed to Send are JSON-encoded and delivered to the peer as
// ReceiverMessage frames. Its zero value is not usable; a Sender is only
// obtained through a HandleReceiver callback.
type Sender[T any] struct {
	action string
	ch     chan<- Frame
	wake   chan<- struct{}
}

// Send enqueues v for delivery, blocking if the stream's bounded channel
// is already full. Returns ctx.Err() if ctx is done first.
func (s Sender[T]) Send(ctx context.Context, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case s.ch <- Frame{Kind: ReceiverMessage, Action: s.action, Data: data}:
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}
