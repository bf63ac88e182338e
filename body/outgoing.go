package body

import (
	"bytes"
	"io"
)

// IntoOutgoing converts the Body into the (io.ReadCloser, contentLength)
// pair the HTTP engine's outgoing body contract expects, where
// contentLength is -1 for any streaming variant whose total size isn't
// known up front.
func (b *Body) IntoOutgoing() (io.ReadCloser, int64) {
	switch b.kind {
	case KindEmpty:
		return io.NopCloser(bytes.NewReader(nil)), 0
	case KindBytes:
		return io.NopCloser(bytes.NewReader(b.bytes)), int64(len(b.bytes))
	default:
		return b.IntoSyncReader(), -1
	}
}
