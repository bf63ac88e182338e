package header_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fire-lib/fire-http/header"
)

func TestMapAddSetGetDel(t *testing.T) {
	m := header.Map{}
	m.Add("content-length", "0")
	m.Add("Content-Length", "1")
	assert.Equal(t, []string{"0", "1"}, m["Content-Length"])
	assert.Equal(t, "0", m.Get("content-length"))

	m.Set("content-length", "5")
	assert.Equal(t, "5", m.Get("Content-Length"))

	m.Del("Content-Length")
	assert.Equal(t, "", m.Get("content-length"))
}

func TestAddEncodedDecodesUTF8(t *testing.T) {
	m := header.Map{}
	require.NoError(t, m.AddEncoded("X-Name", "caf%C3%A9"))
	assert.Equal(t, "café", m.Get("X-Name"))
}

func TestParseContentTypeKnownWithCharset(t *testing.T) {
	ct := header.ParseContentType("text/plain; charset=utf-8")
	mime, ok := ct.MIME()
	require.True(t, ok)
	assert.Equal(t, header.MIMETextPlain, mime)
	assert.Equal(t, "text/plain; charset=utf-8", ct.Wire())
}

func TestParseContentTypeUnknown(t *testing.T) {
	ct := header.ParseContentType("application/x-custom-thing")
	assert.Equal(t, header.ContentTypeUnknown, ct.Kind())
	assert.Equal(t, "application/x-custom-thing", ct.Wire())
}

func TestResponseHeaderMaterializeOnlyWhenSet(t *testing.T) {
	h := header.NewResponseHeader()
	h.Materialize()
	assert.Equal(t, "", h.Header.Get("Content-Type"))

	h.SetContentType(header.KnownContentType(header.MIMEApplicationJSON))
	h.Materialize()
	assert.Equal(t, "application/json; charset=utf-8", h.Header.Get("Content-Type"))
}

func TestMIMEByExtension(t *testing.T) {
	m, ok := header.MIMEByExtension(".css")
	require.True(t, ok)
	assert.Equal(t, header.MIMETextCSS, m)
}
