// Package header implements the typed header map, content-type union and
// MIME table, plus the RequestHeader/ResponseHeader pair.
//
// Map's Add/Set/Get/Del/Write/Clone surface follows the conventions of a
// canonical-key, multi-value header map, generalized with percent-decoded
// insertion/retrieval and a typed Deserialize helper.
package header

import (
	"encoding/json"
	"io"
	"net/textproto"
	"net/url"
	"sort"
)

// Map is the header value map: a case-insensitive multi-value string map
// that additionally accepts percent-encoded values.
type Map map[string][]string

// canonicalKey normalizes a header name the way HTTP/1.1 field names are
// canonically written. Delegated to net/textproto rather than hand-rolled
// -- see DESIGN.md.
func canonicalKey(key string) string {
	return textproto.CanonicalMIMEHeaderKey(key)
}

// Add appends an ASCII value to key, keeping any existing values.
func (m Map) Add(key, value string) {
	key = canonicalKey(key)
	m[key] = append(m[key], value)
}

// AddEncoded percent-decodes value (so any UTF-8 payload can ride in a
// header) before appending it.
func (m Map) AddEncoded(key, value string) error {
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return err
	}
	m.Add(key, decoded)
	return nil
}

// Set replaces all values for key with the single given value.
func (m Map) Set(key, value string) {
	m[canonicalKey(key)] = []string{value}
}

// Get returns the first raw value for key, or "" if absent.
func (m Map) Get(key string) string {
	if m == nil {
		return ""
	}
	v := m[canonicalKey(key)]
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// GetDecoded percent-decodes the first value for key.
func (m Map) GetDecoded(key string) (string, error) {
	return url.QueryUnescape(m.Get(key))
}

// Deserialize JSON-decodes the first value for key as a T. An absent or
// empty value yields io.EOF.
func Deserialize[T any](m Map, key string) (T, error) {
	var zero T
	v := m.Get(key)
	if v == "" {
		return zero, io.EOF
	}
	var out T
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return zero, err
	}
	return out, nil
}

// Del removes all values for key.
func (m Map) Del(key string) {
	delete(m, canonicalKey(key))
}

// Clone returns a deep copy of m.
func (m Map) Clone() Map {
	m2 := make(Map, len(m))
	for k, vv := range m {
		vv2 := make([]string, len(vv))
		copy(vv2, vv)
		m2[k] = vv2
	}
	return m2
}

// Write serializes m in wire format (key: value\r\n per value, keys sorted),
// excluding any key present in exclude.
func (m Map) Write(w io.Writer, exclude map[string]bool) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		if exclude == nil || !exclude[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range m[k] {
			if _, err := io.WriteString(w, k+": "+v+"\r\n"); err != nil {
				return err
			}
		}
	}
	return nil
}
