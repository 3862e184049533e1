package headers

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	crlf     = "\r\n"
	tchars   = "!#$%&'*+-.^_`|~"
	joinWith = ", "
)

// Headers stores field names lowercased.
type Headers map[string]string

func NewHeaders() Headers {
	return Headers{}
}

// Parse consumes at most one field line from data. It returns done once
// the empty line ending the header block has been consumed.
func (h Headers) Parse(data []byte) (n int, done bool, err error) {
	idx := bytes.Index(data, []byte(crlf))
	if idx == -1 {
		return 0, false, nil
	}
	if idx == 0 {
		return len(crlf), true, nil
	}

	line := data[:idx]
	name, value, ok := bytes.Cut(line, []byte(":"))
	if !ok {
		return 0, false, fmt.Errorf("malformed header line (no colon): %q", line)
	}
	if len(name) == 0 {
		return 0, false, fmt.Errorf("malformed field-name (empty): %q", line)
	}
	if bytes.ContainsAny(name, " \t") {
		return 0, false, fmt.Errorf("malformed field-name (whitespace): %q", line)
	}
	for _, c := range name {
		if !isTokenChar(c) {
			return 0, false, fmt.Errorf("invalid character in field-name: %q", line)
		}
	}

	h.Set(string(name), string(bytes.TrimSpace(value)))
	return idx + len(crlf), false, nil
}

func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte(tchars, c) >= 0
}

// Set appends to an existing field rather than replacing it.
func (h Headers) Set(key, value string) {
	key = strings.ToLower(key)
	if v, ok := h[key]; ok {
		h[key] = v + joinWith + value
		return
	}
	h[key] = value
}

func (h Headers) Replace(key, value string) {
	h[strings.ToLower(key)] = value
}

func (h Headers) Get(key string) string {
	return h[strings.ToLower(key)]
}

func (h Headers) Del(key string) {
	delete(h, strings.ToLower(key))
}

// Keys returns the field names in sorted order.
func (h Headers) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bytes renders the header block, including the terminating empty line,
// with title-cased names in sorted order.
func (h Headers) Bytes() []byte {
	caser := cases.Title(language.English)

	var buf bytes.Buffer
	for _, k := range h.Keys() {
		buf.WriteString(caser.String(k))
		buf.WriteString(": ")
		buf.WriteString(h[k])
		buf.WriteString(crlf)
	}
	buf.WriteString(crlf)
	return buf.Bytes()
}
