package message

import (
	"encoding/json"

	"github.com/fire-lib/fire-http/body"
	"github.com/fire-lib/fire-http/header"
)

// Response is the parsed header plus body.Body pair.
type Response struct {
	Header *header.ResponseHeader
	body   body.Body
}

// NewResponse builds a 200 OK response with an empty body, as a chainable
// builder.
func NewResponse() *Response {
	return &Response{Header: header.NewResponseHeader(), body: body.Empty()}
}

// Status sets the status code and returns the Response for chaining.
func (r *Response) Status(code int) *Response {
	r.Header.Status = code
	return r
}

// ContentType sets the content-type and returns the Response for chaining.
func (r *Response) ContentType(ct header.ContentType) *Response {
	r.Header.SetContentType(ct)
	return r
}

// WithBody replaces the body and returns the Response for chaining.
func (r *Response) WithBody(b body.Body) *Response {
	r.body = b
	return r
}

// Bytes is a convenience constructor for a 200 response carrying b, with the
// given MIME as its content-type.
func Bytes(mime header.MIME, b []byte) *Response {
	return NewResponse().ContentType(header.KnownContentType(mime)).WithBody(body.FromBytes(b))
}

// Text builds a 200 text/plain response.
func Text(s string) *Response {
	return Bytes(header.MIMETextPlain, []byte(s))
}

// JSON builds a 200 application/json response by marshaling v.
func JSON(v any) (*Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Bytes(header.MIMEApplicationJSON, data), nil
}

// StatusOnly builds a bodyless response carrying only a status code, the
// shape the pipeline synthesizes for a failed extractor/handler/raw-route.
func StatusOnly(code int) *Response {
	return NewResponse().Status(code)
}

// Redirect builds a redirect response.
func Redirect(location string, code int) *Response {
	r := NewResponse().Status(code)
	r.Header.Header.Set("Location", location)
	return r
}

// Body returns a pointer to the body.
func (r *Response) Body() *body.Body { return &r.body }
