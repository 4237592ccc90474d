package httpwire

import "strings"

// Header is an ordered sequence of name/value pairs. Unlike net/http's
// map-based representation, order is preserved: the raw header block
// is part of the parsed Request's observable data.
type Header [][2]string

// Add appends a name/value pair, preserving arrival order.
func (h *Header) Add(name, value string) {
	*h = append(*h, [2]string{name, value})
}

// Get returns the first value for name, matched case-insensitively, and
// whether it was found.
func (h Header) Get(name string) (string, bool) {
	for _, kv := range h {
		if strings.EqualFold(kv[0], name) {
			return kv[1], true
		}
	}
	return "", false
}

// Pairs exposes the underlying [][2]string slice.
func (h Header) Pairs() [][2]string {
	return h
}
