package header

import "net/url"

// RequestHeader is the parsed, body-less half of a request.
type RequestHeader struct {
	PeerAddr string
	Method   string
	URI      *url.URL
	Header   Map
}

// ContentType parses the Content-Type header value, if any.
func (h *RequestHeader) ContentType() ContentType {
	return ParseContentType(h.Header.Get("Content-Type"))
}

// SynthesizeURI fills in scheme and host on h.URI from the Host header when
// the engine handed us a request-line-only target.
func (h *RequestHeader) SynthesizeURI(tls bool) {
	if h.URI == nil {
		h.URI = &url.URL{}
	}
	if h.URI.Host == "" {
		h.URI.Host = h.Header.Get("Host")
	}
	if h.URI.Scheme == "" {
		if tls {
			h.URI.Scheme = "https"
		} else {
			h.URI.Scheme = "http"
		}
	}
}
