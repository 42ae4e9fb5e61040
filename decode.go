package avro

import (
	"encoding/binary"
	"math"
)

// Decode decodes one value of schema s from data starting at offset 0,
// returning the value and the number of bytes consumed. Decoding is
// schema-directed: the decoder never infers shape from the bytes alone, and
// a truncated or malformed input surfaces as a DecodeError located at the
// byte offset where the problem was detected.
func Decode(s *Schema, data []byte) (Value, int, error) {
	return decodeAt(s, data, 0)
}

func decodeAt(s *Schema, data []byte, off int) (Value, int, error) {
	switch s.Kind() {
	case KindNull:
		return NewNull(), 0, nil
	case KindBoolean:
		if off >= len(data) {
			return Value{}, 0, decodeErr(off, "truncated boolean")
		}
		b := data[off]
		if b != 0 && b != 1 {
			return Value{}, 0, decodeErr(off, "invalid boolean byte 0x%02x", b)
		}
		return NewBoolean(b == 1), 1, nil
	case KindInt:
		n, sz, err := getLong(data, off)
		if err != nil {
			return Value{}, 0, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return Value{}, 0, decodeErr(off, "int value %d out of 32-bit range", n)
		}
		return NewInt(int32(n)), sz, nil
	case KindLong:
		n, sz, err := getLong(data, off)
		if err != nil {
			return Value{}, 0, err
		}
		return NewLong(n), sz, nil
	case KindFloat:
		if off+4 > len(data) {
			return Value{}, 0, decodeErr(off, "truncated float")
		}
		bits := binary.LittleEndian.Uint32(data[off : off+4])
		return NewFloat(math.Float32frombits(bits)), 4, nil
	case KindDouble:
		if off+8 > len(data) {
			return Value{}, 0, decodeErr(off, "truncated double")
		}
		bits := binary.LittleEndian.Uint64(data[off : off+8])
		return NewDouble(math.Float64frombits(bits)), 8, nil
	case KindBytes:
		b, sz, err := decodeByteString(data, off)
		if err != nil {
			return Value{}, 0, err
		}
		return NewBytes(b), sz, nil
	case KindString:
		b, sz, err := decodeByteString(data, off)
		if err != nil {
			return Value{}, 0, err
		}
		if !validUTF8(b) {
			return Value{}, 0, decodeErr(off, "invalid UTF-8 in string")
		}
		return NewString(string(b)), sz, nil
	case KindFixed:
		if off+s.Size() > len(data) {
			return Value{}, 0, decodeErr(off, "truncated fixed(%d)", s.Size())
		}
		buf := make([]byte, s.Size())
		copy(buf, data[off:off+s.Size()])
		return Value{kind: KindFixed, bytesVal: buf}, s.Size(), nil
	case KindEnum:
		idx, sz, err := getLong(data, off)
		if err != nil {
			return Value{}, 0, err
		}
		if idx < 0 || int(idx) >= len(s.Symbols()) {
			return Value{}, 0, decodeErr(off, "enum index %d out of range for %d symbols", idx, len(s.Symbols()))
		}
		v, err := NewEnumByIndex(s, int(idx))
		if err != nil {
			return Value{}, 0, decodeErr(off, "%s", err)
		}
		return v, sz, nil
	case KindArray:
		return decodeArray(s, data, off)
	case KindMap:
		return decodeMap(s, data, off)
	case KindRecord:
		return decodeRecord(s, data, off)
	case KindUnion:
		return decodeUnion(s, data, off)
	default:
		return Value{}, 0, decodeErr(off, "unsupported schema kind %s", s.Kind())
	}
}

func decodeByteString(data []byte, off int) ([]byte, int, error) {
	n, sz, err := getLong(data, off)
	if err != nil {
		return nil, 0, err
	}
	if n < 0 {
		return nil, 0, decodeErr(off, "negative length %d", n)
	}
	start := off + sz
	end := start + int(n)
	if end < start || end > len(data) {
		return nil, 0, decodeErr(off, "truncated payload: need %d bytes, have %d", n, len(data)-start)
	}
	buf := make([]byte, n)
	copy(buf, data[start:end])
	return buf, sz + int(n), nil
}

// decodeBlocked implements the array/map block framing shared by both
// kinds: a sequence of blocks, each a long count (negative meaning a
// byte-length prefix follows, for skippability) terminated by a zero count.
func decodeBlocked(data []byte, off int, decodeItem func(off int) (int, error)) (int, error) {
	total := 0
	for {
		count, sz, err := getLong(data, off+total)
		if err != nil {
			return 0, err
		}
		total += sz
		if count == 0 {
			return total, nil
		}
		n := count
		if n < 0 {
			n = -n
			blockLen, bsz, err := getLong(data, off+total)
			if err != nil {
				return 0, err
			}
			if blockLen < 0 {
				return 0, decodeErr(off+total, "negative block byte-length %d", blockLen)
			}
			total += bsz
			blockStart := total
			for i := int64(0); i < n; i++ {
				consumed, err := decodeItem(off + total)
				if err != nil {
					return 0, err
				}
				total += consumed
			}
			if int64(total-blockStart) != blockLen {
				return 0, decodeErr(off+blockStart, "block byte-length mismatch: header says %d, consumed %d", blockLen, total-blockStart)
			}
			continue
		}
		for i := int64(0); i < n; i++ {
			consumed, err := decodeItem(off + total)
			if err != nil {
				return 0, err
			}
			total += consumed
		}
	}
}

func decodeArray(s *Schema, data []byte, off int) (Value, int, error) {
	var items []Value
	total, err := decodeBlocked(data, off, func(itemOff int) (int, error) {
		v, sz, err := decodeAt(s.Items(), data, itemOff)
		if err != nil {
			return 0, err
		}
		items = append(items, v)
		return sz, nil
	})
	if err != nil {
		return Value{}, 0, err
	}
	return NewArray(items), total, nil
}

func decodeMap(s *Schema, data []byte, off int) (Value, int, error) {
	var entries []MapEntry
	total, err := decodeBlocked(data, off, func(itemOff int) (int, error) {
		key, ksz, err := decodeByteString(data, itemOff)
		if err != nil {
			return 0, err
		}
		v, vsz, err := decodeAt(s.Values(), data, itemOff+ksz)
		if err != nil {
			return 0, err
		}
		entries = append(entries, MapEntry{Key: string(key), Value: v})
		return ksz + vsz, nil
	})
	if err != nil {
		return Value{}, 0, err
	}
	return NewMap(entries), total, nil
}

func decodeRecord(s *Schema, data []byte, off int) (Value, int, error) {
	fields := make([]NamedValue, 0, len(s.Fields()))
	total := 0
	for _, f := range s.Fields() {
		v, sz, err := decodeAt(f.Type, data, off+total)
		if err != nil {
			return Value{}, 0, err
		}
		fields = append(fields, NamedValue{Name: f.Name, Value: v})
		total += sz
	}
	return NewRecord(fields...), total, nil
}

func decodeUnion(s *Schema, data []byte, off int) (Value, int, error) {
	idx, sz, err := getLong(data, off)
	if err != nil {
		return Value{}, 0, err
	}
	if idx < 0 || int(idx) >= len(s.Branches()) {
		return Value{}, 0, decodeErr(off, "union index %d out of range for %d branches", idx, len(s.Branches()))
	}
	inner, isz, err := decodeAt(s.Branches()[idx], data, off+sz)
	if err != nil {
		return Value{}, 0, err
	}
	return NewUnion(int(idx), inner), sz + isz, nil
}
