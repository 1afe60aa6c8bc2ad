// Package header implements the STOMP header model: an ordered, duplicate-tolerant
// list of (name, value) pairs together with the wire escaping rules from the
// STOMP 1.2 spec.
package header

import "strings"

// Header is a single (name, value) pair. Both are Unicode strings; on the wire
// the characters \n, \r, :, \\ are escaped in both name and value.
type Header struct {
	Name  string
	Value string
}

// New builds a raw header from an already-unescaped name and value.
func New(name, value string) Header {
	return Header{Name: name, Value: value}
}

// List is an ordered, duplicate-tolerant sequence of headers. Insertion order
// is preserved; lookups return the first match.
type List []Header

// Add appends a header, preserving any existing header with the same name.
func (l List) Add(name, value string) List {
	return append(l, Header{Name: name, Value: value})
}

// Get returns the value of the first header matching name, and whether one
// was found at all.
func (l List) Get(name string) (string, bool) {
	for _, h := range l {
		if h.Name == name {
			return h.Value, true
		}
	}
	return "", false
}

// Has reports whether any header with the given name is present.
func (l List) Has(name string) bool {
	_, ok := l.Get(name)
	return ok
}

// escaper replaces raw control characters with their two-character wire escapes.
var escaper = strings.NewReplacer(
	"\\", "\\\\",
	"\r", "\\r",
	"\n", "\\n",
	":", "\\c",
)

// Escape renders s for the wire: \n, \r, :, \\ become their escape sequences.
// strings.NewReplacer scans the input once and never rescans the text it
// substitutes, so the backslashes introduced by one escape are not escaped
// again.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape reverses Escape. An escape sequence the grammar doesn't recognize
// is passed through literally (the backslash and the following byte), which
// matches the codec's character-by-character decode loop.
func Unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'c':
			b.WriteByte(':')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte(s[i])
			b.WriteByte(s[i+1])
		}
		i++
	}
	return b.String()
}
