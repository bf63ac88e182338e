package header

import "strings"

// ContentTypeKind tags which arm of the ContentType union is active.
type ContentTypeKind int

const (
	ContentTypeNone ContentTypeKind = iota
	ContentTypeKnown
	ContentTypeUnknown
)

// ContentType is a tagged union: *none*, *known-mime*, or *unknown-string*
// (for a Content-Type the MIME table doesn't recognize).
type ContentType struct {
	kind    ContentTypeKind
	known   MIME
	unknown string
}

// NoContentType is the *none* arm.
func NoContentType() ContentType { return ContentType{kind: ContentTypeNone} }

// KnownContentType is the *known-mime* arm.
func KnownContentType(m MIME) ContentType { return ContentType{kind: ContentTypeKnown, known: m} }

// UnknownContentType is the *unknown-string* arm, for a literal the table
// doesn't recognize.
func UnknownContentType(s string) ContentType { return ContentType{kind: ContentTypeUnknown, unknown: s} }

func (c ContentType) Kind() ContentTypeKind { return c.kind }

func (c ContentType) MIME() (MIME, bool) {
	if c.kind == ContentTypeKnown {
		return c.known, true
	}
	return MIMENone, false
}

// Wire renders the Content-Type header value, appending "; charset=utf-8"
// for known, UTF-8-capable MIME types.
func (c ContentType) Wire() string {
	switch c.kind {
	case ContentTypeNone:
		return ""
	case ContentTypeUnknown:
		return c.unknown
	default:
		s := c.known.String()
		if c.known.UTF8Capable() {
			s += "; charset=utf-8"
		}
		return s
	}
}

// ParseContentType recognizes the exact MIME literal (ignoring a trailing
// "; charset=..." parameter) against the closed table, falling back to the
// *unknown-string* arm.
func ParseContentType(raw string) ContentType {
	if raw == "" {
		return NoContentType()
	}
	literal := raw
	if i := strings.IndexByte(raw, ';'); i >= 0 {
		literal = strings.TrimSpace(raw[:i])
	}
	if m, ok := mimeByWire(literal); ok {
		return KnownContentType(m)
	}
	return UnknownContentType(raw)
}
