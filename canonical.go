package avro

import (
	"strings"

	json "github.com/goccy/go-json"
)

// CanonicalForm renders s as the Avro Parsing Canonical Form: a
// no-whitespace JSON string with non-essential attributes (doc, aliases,
// default, order) stripped, named references expanded to fullnames, each
// named type inlined exactly once at its first occurrence and referred to
// by fullname thereafter, and object keys emitted in the fixed order name,
// type, fields, symbols, items, values, size.
func CanonicalForm(s *Schema) string {
	var b strings.Builder
	writeCanonical(&b, s, make(map[*Schema]bool))
	return b.String()
}

func writeCanonical(b *strings.Builder, s *Schema, seen map[*Schema]bool) {
	switch s.Kind() {
	case KindRecord:
		if seen[s] {
			writeJSONString(b, s.Fullname())
			return
		}
		seen[s] = true
		b.WriteByte('{')
		b.WriteString(`"name":`)
		writeJSONString(b, s.Fullname())
		b.WriteString(`,"type":"record","fields":[`)
		for i, f := range s.Fields() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('{')
			b.WriteString(`"name":`)
			writeJSONString(b, f.Name)
			b.WriteString(`,"type":`)
			writeCanonical(b, f.Type, seen)
			b.WriteByte('}')
		}
		b.WriteString(`]}`)
	case KindEnum:
		if seen[s] {
			writeJSONString(b, s.Fullname())
			return
		}
		seen[s] = true
		b.WriteByte('{')
		b.WriteString(`"name":`)
		writeJSONString(b, s.Fullname())
		b.WriteString(`,"type":"enum","symbols":[`)
		for i, sym := range s.Symbols() {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSONString(b, sym)
		}
		b.WriteString(`]}`)
	case KindFixed:
		if seen[s] {
			writeJSONString(b, s.Fullname())
			return
		}
		seen[s] = true
		b.WriteByte('{')
		b.WriteString(`"name":`)
		writeJSONString(b, s.Fullname())
		b.WriteString(`,"type":"fixed","size":`)
		b.WriteString(itoa(s.Size()))
		b.WriteByte('}')
	case KindArray:
		b.WriteString(`{"type":"array","items":`)
		writeCanonical(b, s.Items(), seen)
		b.WriteByte('}')
	case KindMap:
		b.WriteString(`{"type":"map","values":`)
		writeCanonical(b, s.Values(), seen)
		b.WriteByte('}')
	case KindUnion:
		b.WriteByte('[')
		for i, br := range s.Branches() {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, br, seen)
		}
		b.WriteByte(']')
	default:
		writeJSONString(b, s.Kind().String())
	}
}

func writeJSONString(b *strings.Builder, s string) {
	out, _ := json.Marshal(s)
	b.Write(out)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Equal reports whether s and other are structurally equal: their Parsing
// Canonical Forms are byte-identical.
func (s *Schema) Equal(other *Schema) bool {
	if s == other {
		return true
	}
	return CanonicalForm(s) == CanonicalForm(other)
}
