package header

// ResponseHeader is the parsed, body-less half of a response.
type ResponseHeader struct {
	Status      int
	contentType ContentType
	Header      Map
}

// NewResponseHeader builds a 200 OK response header with no content-type
// and an empty header map.
func NewResponseHeader() *ResponseHeader {
	return &ResponseHeader{Status: 200, Header: Map{}}
}

func (h *ResponseHeader) ContentType() ContentType { return h.contentType }

func (h *ResponseHeader) SetContentType(ct ContentType) { h.contentType = ct }

// Materialize writes the content-type into the header map, but only when
// it isn't *none*; deferred until wire-serialization time rather than set
// eagerly on every mutation.
func (h *ResponseHeader) Materialize() {
	if h.contentType.Kind() != ContentTypeNone {
		h.Header.Set("Content-Type", h.contentType.Wire())
	}
}
