package avro

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Encode appends the binary encoding of v against schema s to dst and
// returns the extended slice. Encoding is entirely schema-directed: no tag
// bytes are written beyond what the Avro wire format itself specifies
// (union branch indices, block counts, string/bytes length prefixes).
func Encode(dst []byte, s *Schema, v Value) ([]byte, error) {
	switch s.Kind() {
	case KindNull:
		if v.Kind() != KindNull {
			return nil, encodeErr(s, "expected null value, got %s", v.Kind())
		}
		return dst, nil
	case KindBoolean:
		if v.Kind() != KindBoolean {
			return nil, encodeErr(s, "expected boolean value, got %s", v.Kind())
		}
		if v.Bool() {
			return append(dst, 1), nil
		}
		return append(dst, 0), nil
	case KindInt:
		if v.Kind() != KindInt {
			return nil, encodeErr(s, "expected int value, got %s", v.Kind())
		}
		return appendLong(dst, int64(v.Int())), nil
	case KindLong:
		if v.Kind() != KindLong {
			return nil, encodeErr(s, "expected long value, got %s", v.Kind())
		}
		return appendLong(dst, v.Long()), nil
	case KindFloat:
		if v.Kind() != KindFloat {
			return nil, encodeErr(s, "expected float value, got %s", v.Kind())
		}
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v.Float32()))
		return append(dst, buf[:]...), nil
	case KindDouble:
		if v.Kind() != KindDouble {
			return nil, encodeErr(s, "expected double value, got %s", v.Kind())
		}
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v.Float64()))
		return append(dst, buf[:]...), nil
	case KindBytes:
		if v.Kind() != KindBytes {
			return nil, encodeErr(s, "expected bytes value, got %s", v.Kind())
		}
		return appendBytesValue(dst, v.Bytes()), nil
	case KindString:
		if v.Kind() != KindString {
			return nil, encodeErr(s, "expected string value, got %s", v.Kind())
		}
		return appendBytesValue(dst, v.Bytes()), nil
	case KindFixed:
		if v.Kind() != KindFixed {
			return nil, encodeErr(s, "expected fixed value, got %s", v.Kind())
		}
		if len(v.Bytes()) != s.Size() {
			return nil, encodeErr(s, "fixed size mismatch: schema wants %d bytes, value has %d", s.Size(), len(v.Bytes()))
		}
		return append(dst, v.Bytes()...), nil
	case KindEnum:
		if v.Kind() != KindEnum {
			return nil, encodeErr(s, "expected enum value, got %s", v.Kind())
		}
		_, idx := v.EnumSymbol()
		if idx < 0 || idx >= len(s.Symbols()) || s.Symbols()[idx] != v.symbol {
			return nil, encodeErr(s, "enum symbol %q is not declared by %s", v.symbol, s.Fullname())
		}
		return appendLong(dst, int64(idx)), nil
	case KindArray:
		if v.Kind() != KindArray {
			return nil, encodeErr(s, "expected array value, got %s", v.Kind())
		}
		return encodeArray(dst, s, v.Items())
	case KindMap:
		if v.Kind() != KindMap {
			return nil, encodeErr(s, "expected map value, got %s", v.Kind())
		}
		return encodeMap(dst, s, v.Entries())
	case KindRecord:
		if v.Kind() != KindRecord {
			return nil, encodeErr(s, "expected record value, got %s", v.Kind())
		}
		return encodeRecord(dst, s, v)
	case KindUnion:
		return encodeUnion(dst, s, v)
	default:
		return nil, encodeErr(s, "unsupported schema kind %s", s.Kind())
	}
}

func appendBytesValue(dst []byte, b []byte) []byte {
	dst = appendLong(dst, int64(len(b)))
	return append(dst, b...)
}

// encodeArray writes items as a single block followed by a zero-length
// terminator. A writer is free to emit multiple blocks; this
// implementation always emits one, which is a valid encoding any
// conforming reader must accept.
func encodeArray(dst []byte, s *Schema, items []Value) ([]byte, error) {
	if len(items) == 0 {
		return appendLong(dst, 0), nil
	}
	dst = appendLong(dst, int64(len(items)))
	for i, item := range items {
		var err error
		dst, err = Encode(dst, s.Items(), item)
		if err != nil {
			return nil, encodeErr(s, "array item %d: %w", i, err)
		}
	}
	return appendLong(dst, 0), nil
}

func encodeMap(dst []byte, s *Schema, entries []MapEntry) ([]byte, error) {
	if len(entries) == 0 {
		return appendLong(dst, 0), nil
	}
	dst = appendLong(dst, int64(len(entries)))
	for _, e := range entries {
		dst = appendBytesValue(dst, []byte(e.Key))
		var err error
		dst, err = Encode(dst, s.Values(), e.Value)
		if err != nil {
			return nil, encodeErr(s, "map entry %q: %w", e.Key, err)
		}
	}
	return appendLong(dst, 0), nil
}

func encodeRecord(dst []byte, s *Schema, v Value) ([]byte, error) {
	fields := s.Fields()
	for i, f := range fields {
		fv, ok := v.FieldByName(f.Name)
		if !ok {
			// Fall back to positional alignment: a caller building a Value
			// directly may omit field names for convenience.
			if i < len(v.Fields()) {
				fv = v.Fields()[i].Value
			} else if f.HasDefault {
				fv = f.Default
			} else {
				return nil, encodeErr(s, "missing value for field %q", f.Name)
			}
		}
		var err error
		dst, err = Encode(dst, f.Type, fv)
		if err != nil {
			return nil, encodeErr(s, "field %q: %w", f.Name, err)
		}
	}
	return dst, nil
}

// encodeUnion picks the first branch matching v's variant, or uses v's own
// recorded branch index/inner value if v was built with NewUnion.
func encodeUnion(dst []byte, s *Schema, v Value) ([]byte, error) {
	if v.Kind() == KindUnion {
		idx, inner := v.Union()
		if idx < 0 || idx >= len(s.Branches()) {
			return nil, encodeErr(s, "union branch index %d out of range", idx)
		}
		dst = appendLong(dst, int64(idx))
		return Encode(dst, s.Branches()[idx], inner)
	}
	for i, b := range s.Branches() {
		if branchMatches(b, v) {
			dst = appendLong(dst, int64(i))
			return Encode(dst, b, v)
		}
	}
	return nil, encodeErr(s, "no union branch matches value of kind %s", v.Kind())
}

// branchMatches reports whether branch is a plausible schema for encoding
// v: the branch has v's kind and, for fixed, v's byte length. Names of
// named schemas are not compared, so the first record or enum branch wins
// for a record or enum value.
func branchMatches(branch *Schema, v Value) bool {
	if branch.Kind() != v.Kind() {
		return false
	}
	if branch.Kind() == KindFixed {
		return len(v.Bytes()) == branch.Size()
	}
	return true
}

// validUTF8 reports whether b is well-formed UTF-8, used by the decoder to
// reject a string value whose bytes are not valid UTF-8.
func validUTF8(b []byte) bool {
	return utf8.Valid(b)
}
