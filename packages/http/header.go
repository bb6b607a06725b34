package http

import (
	"net/http"
	"sort"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// HeaderMap maps canonical header names to values.
type HeaderMap map[string]string

// stripBlock removes every space and carriage return from a hand-typed block.
// Values therefore never contain spaces ("a, b" becomes "a,b").
func stripBlock(raw string) string {
	return strings.NewReplacer(" ", "", "\r", "").Replace(raw)
}

// ParseHeaders parses a newline separated block of "Name: Value" lines.
// A single malformed line fails the whole block.
func ParseHeaders(raw string) (HeaderMap, error) {
	headers := make(HeaderMap)

	for _, line := range strings.Split(stripBlock(raw), "\n") {
		if line == "" {
			continue
		}

		name, value, found := strings.Cut(line, ":")
		if !found || name == "" || value == "" {
			return nil, newError(KindMalformedHeader, quote(line), nil)
		}
		if !httpguts.ValidHeaderFieldName(name) || !httpguts.ValidHeaderFieldValue(value) {
			return nil, newError(KindMalformedHeader, quote(line), nil)
		}

		headers[http.CanonicalHeaderKey(name)] = value
	}

	return headers, nil
}

// Get looks a header up case-insensitively.
func (h HeaderMap) Get(name string) (string, bool) {
	v, ok := h[http.CanonicalHeaderKey(name)]
	return v, ok
}

// ContentType returns the Content-Type value, if one was supplied.
func (h HeaderMap) ContentType() (string, bool) {
	return h.Get("Content-Type")
}

// Without returns a copy of h minus the named header.
func (h HeaderMap) Without(name string) HeaderMap {
	name = http.CanonicalHeaderKey(name)
	out := make(HeaderMap, len(h))
	for k, v := range h {
		if k != name {
			out[k] = v
		}
	}
	return out
}

// Names returns the header names in sorted order.
func (h HeaderMap) Names() []string {
	names := make([]string, 0, len(h))
	for k := range h {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func quote(s string) string {
	return `"` + s + `"`
}
