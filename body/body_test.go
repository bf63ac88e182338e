package body_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fire-lib/fire-http/body"
)

func TestEmptyBodyCollapse(t *testing.T) {
	b := body.FromBytes(nil)
	assert.Equal(t, body.KindEmpty, b.Kind())
	assert.Equal(t, 0, b.Len())
}

func TestBytesRoundTrip(t *testing.T) {
	b := body.FromBytes([]byte("Hello, World!"))
	require.Equal(t, body.KindBytes, b.Kind())
	require.Equal(t, 13, b.Len())

	data, err := b.IntoBytes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", string(data))
}

func TestIntoBytesRespectsSizeLimit(t *testing.T) {
	r := strings.NewReader(strings.Repeat("x", 100))
	b := body.FromIncoming(r, body.Constraints{MaxBytes: 10})

	_, err := b.IntoBytes(context.Background())
	require.Error(t, err)
}

func TestIntoBytesRespectsTimeout(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	b := body.FromIncoming(pr, body.Constraints{Timeout: 10 * time.Millisecond})

	_, err := b.IntoBytes(context.Background())
	require.Error(t, err)
}

func TestIntoSyncReaderFromAsyncRequiresIsolation(t *testing.T) {
	ch := make(chan body.Chunk, 1)
	ch <- body.Chunk{Data: []byte("ok")}
	close(ch)
	b := body.FromAsyncBytesStream(ch, body.Constraints{})

	sr := b.IntoSyncReader()
	assert.True(t, sr.RequiresIsolation())
	data, err := io.ReadAll(sr)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

func TestAsyncBytesStreamEnforcesLimit(t *testing.T) {
	ch := make(chan body.Chunk, 2)
	ch <- body.Chunk{Data: []byte("0123456789")}
	ch <- body.Chunk{Data: []byte("overflow")}
	close(ch)
	b := body.FromAsyncBytesStream(ch, body.Constraints{MaxBytes: 10})

	out := b.IntoAsyncBytesStream(context.Background())
	first := <-out
	require.NoError(t, first.Err)
	second := <-out
	require.Error(t, second.Err)
}
