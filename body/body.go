// Package body implements a polymorphic request/response body: a closed
// sum of empty, buffered-bytes, incoming (chunked), sync-reader,
// async-reader and async-bytes-stream variants, each carrying an optional
// size limit and wall-clock timeout.
//
// The mutex-guarded read/close state machine tracks isClosed/hasSawEOF;
// the size-limit wrapper subtracts remaining budget with saturation at
// zero rather than going negative.
package body

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/fire-lib/fire-http/ferr"
)

// Kind identifies which variant a Body currently holds.
type Kind int

const (
	KindEmpty Kind = iota
	KindBytes
	KindIncoming
	KindSyncReader
	KindAsyncReader
	KindAsyncBytesStream
)

// Chunk is one element of an async byte stream, mirroring the shape a JSON
// or multipart decoder would pull chunks through.
type Chunk struct {
	Data []byte
	Err  error
}

// Constraints bound how much a Body will yield and how long it may take.
// Both are optional; the zero value means "no limit".
type Constraints struct {
	MaxBytes int64
	Timeout  time.Duration
}

// Body is the polymorphic container. The zero value is the *empty*
// variant, the default for a body that has already been taken.
type Body struct {
	kind   Kind
	mu     sync.Mutex
	closed bool

	bytes  []byte // KindBytes: never empty -- a zero-length payload stays KindEmpty
	reader io.Reader
	stream <-chan Chunk

	constraints Constraints
	deadline    time.Time // set lazily by the first IntoXxx call, not at construction
}

// Empty returns the empty-body variant.
func Empty() Body { return Body{kind: KindEmpty} }

// FromBytes builds the bytes variant. A zero-length slice collapses to
// Empty, per the invariant that *bytes* never holds zero length.
func FromBytes(b []byte) Body {
	if len(b) == 0 {
		return Empty()
	}
	return Body{kind: KindBytes, bytes: b}
}

// FromIncoming wraps the HTTP engine's chunked request body stream.
func FromIncoming(r io.Reader, c Constraints) Body {
	return Body{kind: KindIncoming, reader: r, constraints: c}
}

// FromSyncReader wraps a blocking byte source (e.g. an *os.File).
func FromSyncReader(r io.Reader, c Constraints) Body {
	return Body{kind: KindSyncReader, reader: r, constraints: c}
}

// FromAsyncReader wraps a non-blocking byte source (already safe to read
// from an event loop goroutine without stalling it).
func FromAsyncReader(r io.Reader, c Constraints) Body {
	return Body{kind: KindAsyncReader, reader: r, constraints: c}
}

// FromAsyncBytesStream wraps a lazily-produced sequence of chunks, such as a
// JSON encoder streaming array elements.
func FromAsyncBytesStream(ch <-chan Chunk, c Constraints) Body {
	return Body{kind: KindAsyncBytesStream, stream: ch, constraints: c}
}

// Kind reports which variant this Body holds.
func (b *Body) Kind() Kind { return b.kind }

// Close releases the backing source, if any. It is safe to call more than
// once and safe to call on the empty/bytes variants.
func (b *Body) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if rc, ok := b.reader.(io.Closer); ok {
		return rc.Close()
	}
	return nil
}

// Len is defined only for the empty and bytes variants; it returns -1 for
// any streaming variant.
func (b *Body) Len() int {
	switch b.kind {
	case KindEmpty:
		return 0
	case KindBytes:
		return len(b.bytes)
	default:
		return -1
	}
}

// startClock lazily arms the timeout on first use: the clock starts at the
// first IntoXxx call, not at body construction.
func (b *Body) startClock() {
	if b.constraints.Timeout > 0 && b.deadline.IsZero() {
		b.deadline = time.Now().Add(b.constraints.Timeout)
	}
}

func (b *Body) remaining() time.Duration {
	if b.deadline.IsZero() {
		return 0
	}
	d := time.Until(b.deadline)
	if d < 0 {
		return 0
	}
	return d
}

// IntoBytes awaits full materialization of the body under both constraints.
func (b *Body) IntoBytes(ctx context.Context) ([]byte, error) {
	switch b.kind {
	case KindEmpty:
		return nil, nil
	case KindBytes:
		return b.bytes, nil
	}

	b.startClock()
	r := b.limitingReader()

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(r)
		done <- result{data, err}
	}()

	if b.deadline.IsZero() {
		res := <-done
		return res.data, wrapReadErr(res.err)
	}

	timer := time.NewTimer(b.remaining())
	defer timer.Stop()
	select {
	case res := <-done:
		return res.data, wrapReadErr(res.err)
	case <-timer.C:
		return nil, ferr.Wrap(ferr.KindRequestTimeout, ferr.ErrTimedOut)
	case <-ctx.Done():
		return nil, ferr.Wrap(ferr.KindRequestTimeout, ctx.Err())
	}
}

// SyncReader is the result of IntoSyncReader. RequiresIsolation advertises
// whether reading from it may block a goroutine for longer than is safe on
// a shared event-loop worker -- true iff it was adapted from a non-blocking
// source.
type SyncReader struct {
	io.ReadCloser
	isolated bool
}

// RequiresIsolation reports whether this reader was adapted from an async
// source and should be driven from an isolated goroutine/thread pool.
func (s *SyncReader) RequiresIsolation() bool { return s.isolated }

// IntoSyncReader returns a blocking io.ReadCloser applying the same
// constraints progressively as the handler consumes it.
func (b *Body) IntoSyncReader() *SyncReader {
	b.startClock()
	switch b.kind {
	case KindEmpty:
		return &SyncReader{ReadCloser: io.NopCloser(bytes.NewReader(nil))}
	case KindBytes:
		return &SyncReader{ReadCloser: io.NopCloser(bytes.NewReader(b.bytes))}
	case KindAsyncReader, KindAsyncBytesStream:
		// Adapting a non-blocking source to a blocking one requires isolation.
		r := b.IntoAsyncReader()
		return &SyncReader{ReadCloser: &timeoutReader{b: b, r: io.NopCloser(r)}, isolated: true}
	default:
		return &SyncReader{ReadCloser: &timeoutReader{b: b, r: io.NopCloser(b.limitingReader())}}
	}
}

// IntoAsyncReader returns a non-blocking-safe io.Reader view over the body.
func (b *Body) IntoAsyncReader() io.Reader {
	b.startClock()
	switch b.kind {
	case KindEmpty:
		return bytes.NewReader(nil)
	case KindBytes:
		return bytes.NewReader(b.bytes)
	case KindAsyncBytesStream:
		return &streamReader{b: b, ch: b.stream}
	default:
		return b.limitingReader()
	}
}

// IntoAsyncBytesStream returns a channel of chunks honoring the same
// constraints; terminates the channel (closing it) on EOF or error.
func (b *Body) IntoAsyncBytesStream(ctx context.Context) <-chan Chunk {
	b.startClock()
	out := make(chan Chunk, 1)
	if b.kind == KindAsyncBytesStream {
		go b.relayStream(ctx, out)
		return out
	}
	go func() {
		defer close(out)
		r := b.IntoAsyncReader()
		buf := make([]byte, 32*1024)
		for {
			select {
			case <-ctx.Done():
				out <- Chunk{Err: ctx.Err()}
				return
			default:
			}
			n, err := r.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				out <- Chunk{Data: chunk}
			}
			if err != nil {
				if err != io.EOF {
					out <- Chunk{Err: wrapReadErr(err)}
				}
				return
			}
		}
	}()
	return out
}

func (b *Body) relayStream(ctx context.Context, out chan<- Chunk) {
	defer close(out)
	var sent int64
	for {
		select {
		case <-ctx.Done():
			out <- Chunk{Err: ctx.Err()}
			return
		case c, ok := <-b.stream:
			if !ok {
				return
			}
			if c.Err != nil {
				out <- c
				return
			}
			if b.constraints.MaxBytes > 0 {
				sent += int64(len(c.Data))
				if sent > b.constraints.MaxBytes {
					out <- Chunk{Err: ferr.Wrap(ferr.KindPayloadTooLarge, ferr.ErrPayloadTooLarge)}
					return
				}
			}
			if b.remainingTimedOut() {
				out <- Chunk{Err: ferr.Wrap(ferr.KindRequestTimeout, ferr.ErrTimedOut)}
				return
			}
			out <- c
		}
	}
}

func (b *Body) remainingTimedOut() bool {
	return !b.deadline.IsZero() && time.Now().After(b.deadline)
}

func wrapReadErr(err error) error {
	if err == nil {
		return nil
	}
	return ferr.FromBodyIO(err)
}

// limitingReader wraps the backing reader with monotonic size-limit
// accounting.
func (b *Body) limitingReader() io.Reader {
	if b.constraints.MaxBytes <= 0 {
		return b.reader
	}
	return &limitedReader{r: b.reader, remaining: b.constraints.MaxBytes}
}

// limitedReader saturates to an error on underflow rather than silently
// truncating.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	if int64(n) <= l.remaining {
		l.remaining -= int64(n)
		return n, err
	}
	n = int(l.remaining)
	l.remaining = 0
	return n, ferr.Wrap(ferr.KindPayloadTooLarge, ferr.ErrPayloadTooLarge)
}

// streamReader adapts an async chunk channel to io.Reader for handlers that
// want to pull via the Read contract instead of ranging the channel.
type streamReader struct {
	b   *Body
	ch  <-chan Chunk
	buf []byte
}

func (s *streamReader) Read(p []byte) (int, error) {
	for len(s.buf) == 0 {
		c, ok := <-s.ch
		if !ok {
			return 0, io.EOF
		}
		if c.Err != nil {
			return 0, c.Err
		}
		s.buf = c.Data
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

// timeoutReader is IntoSyncReader's ReadCloser, applying the deadline across
// however many Read calls the handler issues.
type timeoutReader struct {
	b *Body
	r io.ReadCloser
}

func (t *timeoutReader) Read(p []byte) (int, error) {
	if t.b.remainingTimedOut() {
		return 0, ferr.Wrap(ferr.KindRequestTimeout, ferr.ErrTimedOut)
	}
	n, err := t.r.Read(p)
	if err == io.EOF {
		return n, err
	}
	return n, wrapReadErr(err)
}

func (t *timeoutReader) Close() error { return t.r.Close() }
